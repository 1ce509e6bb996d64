package repositories

import (
	"context"
	"errors"

	"github.com/maxaizer/hh-hire/internal/entities"
	"gorm.io/gorm"
)

type Responses struct {
	db *gorm.DB
}

func NewResponsesRepository(db *gorm.DB) *Responses {
	return &Responses{db: db}
}

func (r *Responses) Exists(ctx context.Context, hhID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entities.Response{}).Where("hh_id = ?", hhID).Count(&count).Error
	return count > 0, err
}

func (r *Responses) Create(ctx context.Context, response *entities.Response) error {
	return conn(ctx, r.db).Create(response).Error
}

func (r *Responses) GetByHhID(ctx context.Context, hhID string) (*entities.Response, error) {
	var response entities.Response
	if err := conn(ctx, r.db).First(&response, "hh_id = ?", hhID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

func (r *Responses) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entities.Response{}).Count(&count).Error
	return count, err
}
