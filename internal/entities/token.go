package entities

import "time"

type OAuthToken struct {
	ID           string `gorm:"primaryKey"`
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	ReissuedAt   time.Time
	UpdatedAt    time.Time
}
