package model

import "time"

// Reminder categories with a dedicated notification body.
const (
	CategoryWater = "water"
	CategoryFood  = "food"
	CategoryWalk  = "walk"
)

// Reminder is a daily push notification slot for one (user, category) pair.
// Time is a zero-padded 24h "HH:MM" string in server local time.
type Reminder struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	UserID    uint      `gorm:"index:idx_reminder_owner_type;not null" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Type      string    `gorm:"index:idx_reminder_owner_type;not null" json:"type"`
	Time      string    `gorm:"index;size:5;not null" json:"time"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
