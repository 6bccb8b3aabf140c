package store

import (
	"context"
	"fmt"

	"github.com/pathakanu/muditam/internal/model"
	"gorm.io/gorm/clause"
)

// SaveCart replaces the items of the cart owned by phone, creating the cart if needed.
func (s *Store) SaveCart(ctx context.Context, phone string, items []model.CartItem) (*model.Cart, error) {
	if items == nil {
		items = []model.CartItem{}
	}
	cart := &model.Cart{Phone: phone, Items: items}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"items"}),
	}).Create(cart).Error
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.CartByPhone(ctx, phone)
}

// CartByPhone loads the cart owned by phone.
func (s *Store) CartByPhone(ctx context.Context, phone string) (*model.Cart, error) {
	var cart model.Cart
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&cart).Error; err != nil {
		return nil, notFound(err)
	}
	return &cart, nil
}
