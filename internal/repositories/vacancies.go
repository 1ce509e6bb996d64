package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/maxaizer/hh-hire/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Vacancies struct {
	db *gorm.DB
}

func NewVacanciesRepository(db *gorm.DB) *Vacancies {
	return &Vacancies{db: db}
}

// Save creates the vacancy on first sight and overwrites its payload afterwards.
func (v *Vacancies) Save(ctx context.Context, hhID string, info []byte) error {
	return conn(ctx, v.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hh_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"info", "info_updated_at"}),
	}).Create(&entities.Vacancy{
		HhID:          hhID,
		Info:          info,
		InfoUpdatedAt: time.Now(),
	}).Error
}

func (v *Vacancies) GetByHhID(ctx context.Context, hhID string) (*entities.Vacancy, error) {
	var vacancy entities.Vacancy
	if err := conn(ctx, v.db).First(&vacancy, "hh_id = ?", hhID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vacancy, nil
}

func (v *Vacancies) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, v.db).Model(&entities.Vacancy{}).Count(&count).Error
	return count, err
}
