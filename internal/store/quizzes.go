package store

import (
	"context"
	"fmt"

	"github.com/pathakanu/muditam/internal/model"
	"gorm.io/gorm/clause"
)

// UpsertQuiz stores quiz as the only quiz of its phone number.
func (s *Store) UpsertQuiz(ctx context.Context, quiz *model.Quiz) (*model.Quiz, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"answers", "height", "weight", "hba1c"}),
	}).Create(quiz).Error
	if err != nil {
		return nil, fmt.Errorf("upsert quiz: %w", err)
	}
	return s.QuizByPhone(ctx, quiz.Phone)
}

// QuizByPhone loads the quiz of phone.
func (s *Store) QuizByPhone(ctx context.Context, phone string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&quiz).Error; err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}
