package model

import "time"

// Language values accepted for User.PreferredLanguage.
const (
	LanguageEnglish = "English"
	LanguageHindi   = "Hindi"
)

// Video feedback values accepted for LikedVideo.Status.
const (
	VideoLike    = "like"
	VideoDislike = "dislike"
)

// LikedVideo records a user's reaction to an in-app video.
type LikedVideo struct {
	VideoID string `json:"videoId"`
	Status  string `json:"status"`
}

// User is an app account keyed by phone number.
type User struct {
	ID                uint         `gorm:"primaryKey" json:"_id"`
	Phone             string       `gorm:"uniqueIndex;not null" json:"phone"`
	Name              string       `json:"name"`
	YearOfBirth       string       `json:"yearOfBirth"`
	Gender            string       `json:"gender"`
	PreferredLanguage string       `gorm:"not null;default:English" json:"preferredLanguage"`
	Email             string       `json:"email"`
	Avatar            string       `gorm:"not null;default:''" json:"avatar"`
	HasPurchased      bool         `gorm:"not null;default:false" json:"hasPurchased"`
	CurrentKitNumber  int          `gorm:"not null;default:1" json:"currentKitNumber"`
	CompletedKits     []int        `gorm:"serializer:json" json:"completedKits"`
	PurchasedProducts []string     `gorm:"serializer:json" json:"purchasedProducts"`
	ExpoPushToken     string       `json:"expoPushToken,omitempty"`
	LikedVideos       []LikedVideo `gorm:"serializer:json" json:"likedVideos"`
	CreatedAt         time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}
