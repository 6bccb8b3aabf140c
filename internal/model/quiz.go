package model

import "time"

// Quiz holds the onboarding questionnaire of a user, one per phone number.
type Quiz struct {
	ID        uint           `gorm:"primaryKey" json:"_id"`
	Phone     string         `gorm:"uniqueIndex;not null" json:"phone"`
	Answers   map[string]any `gorm:"serializer:json;not null" json:"answers"`
	Height    float64        `gorm:"not null" json:"height"`
	Weight    float64        `gorm:"not null" json:"weight"`
	HbA1c     float64        `gorm:"column:hba1c;not null" json:"hba1c"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}
