package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pathakanu/muditam/internal/model"
	"gorm.io/gorm"
)

// ProfileUpdate carries the optional profile fields of a user update.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name              *string
	YearOfBirth       *string
	Gender            *string
	Email             *string
	PreferredLanguage *string
	Avatar            *string
}

func (p ProfileUpdate) columns() map[string]any {
	cols := make(map[string]any)
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("name", p.Name)
	set("year_of_birth", p.YearOfBirth)
	set("gender", p.Gender)
	set("email", p.Email)
	set("preferred_language", p.PreferredLanguage)
	set("avatar", p.Avatar)
	return cols
}

// UserByPhone loads the user owning phone.
func (s *Store) UserByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UserByID loads the user with the given primary key.
func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUserIfAbsent inserts user unless a user with the same phone exists.
// It returns the stored user and whether it was created.
func (s *Store) CreateUserIfAbsent(ctx context.Context, user *model.User) (*model.User, bool, error) {
	existing, err := s.UserByPhone(ctx, user.Phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

// UpdateProfile applies the non-nil fields of update to the user owning phone.
func (s *Store) UpdateProfile(ctx context.Context, phone string, update ProfileUpdate) (*model.User, error) {
	user, err := s.UserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	cols := update.columns()
	if len(cols) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.UserByPhone(ctx, phone)
}

// MarkPurchased flags the user as a buyer and adds productIDs to the purchased set.
// The user is created when the phone is unknown.
func (s *Store) MarkPurchased(ctx context.Context, phone string, productIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Where("phone = ?", phone).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = model.User{Phone: phone}
		case err != nil:
			return err
		}

		user.HasPurchased = true
		for _, id := range productIDs {
			if !slices.Contains(user.PurchasedProducts, id) {
				user.PurchasedProducts = append(user.PurchasedProducts, id)
			}
		}
		return tx.Save(&user).Error
	})
}

// UpdateKitProgress moves the user to kit newKit and marks the previous kit as completed.
func (s *Store) UpdateKitProgress(ctx context.Context, phone string, newKit int) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone = ?", phone).First(&user).Error; err != nil {
			return notFound(err)
		}
		user.CurrentKitNumber = newKit
		if prev := newKit - 1; prev >= 1 && !slices.Contains(user.CompletedKits, prev) {
			user.CompletedKits = append(user.CompletedKits, prev)
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SavePushToken stores the Expo push token of the user with the given id.
func (s *Store) SavePushToken(ctx context.Context, userID uint, token string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("expo_push_token", token)
	if res.Error != nil {
		return fmt.Errorf("save push token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordVideoFeedback sets the like/dislike status of videoID for the user owning phone.
func (s *Store) RecordVideoFeedback(ctx context.Context, phone, videoID, status string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone = ?", phone).First(&user).Error; err != nil {
			return notFound(err)
		}
		idx := slices.IndexFunc(user.LikedVideos, func(v model.LikedVideo) bool { return v.VideoID == videoID })
		if idx >= 0 {
			user.LikedVideos[idx].Status = status
		} else {
			user.LikedVideos = append(user.LikedVideos, model.LikedVideo{VideoID: videoID, Status: status})
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
