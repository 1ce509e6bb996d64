package entities

import "time"

type IssueStatus string

const (
	IssueStatusOpen        IssueStatus = "open"
	IssueStatusRefusalSent IssueStatus = "refusal_sent"
)

type Issue struct {
	ID           int
	Project      string
	Subject      string
	Description  string
	Status       IssueStatus `gorm:"default:open"`
	AuthorID     int
	VacancyID    string
	ResumeID     string
	HhResponseID string `gorm:"index"`
	Payload      []byte
	LockVersion  int `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Journal is an audit note on an issue. Rows are never updated.
type Journal struct {
	ID        int
	IssueID   int `gorm:"index"`
	UserID    int
	Notes     string
	CreatedAt time.Time
}
