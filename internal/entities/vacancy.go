package entities

import (
	"strings"
	"time"
)

// Vacancy mirrors an hh.ru vacancy. Info holds the latest raw payload.
type Vacancy struct {
	ID            int
	HhID          string `gorm:"uniqueIndex;not null"`
	Info          []byte
	InfoUpdatedAt time.Time
	CreatedAt     time.Time
}

// Applicant mirrors an hh.ru resume.
type Applicant struct {
	ID              int
	HhID            string `gorm:"uniqueIndex;not null"`
	Resume          []byte
	ResumeUpdatedAt time.Time
	CreatedAt       time.Time
}

// Response is a candidate negotiation. It is written once and never updated.
type Response struct {
	ID         int
	HhID       string `gorm:"uniqueIndex;not null"`
	RefusalURL *string
	CreatedAt  time.Time
}

func (r Response) HasRefusalURL() bool {
	return r.RefusalURL != nil && strings.TrimSpace(*r.RefusalURL) != ""
}
