package repositories

import (
	"context"

	"github.com/maxaizer/hh-hire/internal/entities"
	"gorm.io/gorm"
)

type Journals struct {
	db *gorm.DB
}

func NewJournalsRepository(db *gorm.DB) *Journals {
	return &Journals{db: db}
}

func (j *Journals) Create(ctx context.Context, journal *entities.Journal) error {
	return conn(ctx, j.db).Create(journal).Error
}

func (j *Journals) GetByIssue(ctx context.Context, issueID int) ([]entities.Journal, error) {
	var journals []entities.Journal
	if err := conn(ctx, j.db).Order("id").Find(&journals, "issue_id = ?", issueID).Error; err != nil {
		return nil, err
	}
	return journals, nil
}
