package models

import "time"

// RefreshToken stores a hashed representation of a refresh token. The raw token is
// handed to the client once and never persisted.
type RefreshToken struct {
	TokenHash string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ExpiresAt time.Time `gorm:"index;not null"`
	// Revoked only ever goes from false to true.
	Revoked bool `gorm:"default:false;not null"`
}
