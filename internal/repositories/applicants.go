package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/maxaizer/hh-hire/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Applicants struct {
	db *gorm.DB
}

func NewApplicantsRepository(db *gorm.DB) *Applicants {
	return &Applicants{db: db}
}

func (a *Applicants) Save(ctx context.Context, hhID string, resume []byte) error {
	return conn(ctx, a.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hh_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"resume", "resume_updated_at"}),
	}).Create(&entities.Applicant{
		HhID:            hhID,
		Resume:          resume,
		ResumeUpdatedAt: time.Now(),
	}).Error
}

func (a *Applicants) GetByHhID(ctx context.Context, hhID string) (*entities.Applicant, error) {
	var applicant entities.Applicant
	if err := conn(ctx, a.db).First(&applicant, "hh_id = ?", hhID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &applicant, nil
}

func (a *Applicants) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, a.db).Model(&entities.Applicant{}).Count(&count).Error
	return count, err
}
