package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pathakanu/muditam/internal/model"
	"gorm.io/gorm"
)

// UpsertReminder sets the time of the (userID, category) reminder, creating it on first write.
// A pair never has more than one record.
func (s *Store) UpsertReminder(ctx context.Context, userID uint, category, hhmm string) (*model.Reminder, error) {
	var reminder model.Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND type = ?", userID, category).First(&reminder).Error
		if err == nil {
			reminder.Time = hhmm
			return tx.Save(&reminder).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		reminder = model.Reminder{UserID: userID, Type: category, Time: hhmm}
		return tx.Create(&reminder).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert reminder: %w", err)
	}
	return &reminder, nil
}

// RemindersByUser lists the reminders owned by userID.
func (s *Store) RemindersByUser(ctx context.Context, userID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("type ASC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// RemindersDueAt returns every reminder whose time equals hhmm, with its owner loaded.
func (s *Store) RemindersDueAt(ctx context.Context, hhmm string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).Preload("User").Where("time = ?", hhmm).Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("reminders due at %s: %w", hhmm, err)
	}
	return reminders, nil
}

// DeleteReminder removes the (userID, category) reminder.
func (s *Store) DeleteReminder(ctx context.Context, userID uint, category string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND type = ?", userID, category).Delete(&model.Reminder{})
	if res.Error != nil {
		return fmt.Errorf("delete reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
