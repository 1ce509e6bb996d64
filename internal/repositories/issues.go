package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/maxaizer/hh-hire/internal/entities"
	"gorm.io/gorm"
)

type Issues struct {
	db *gorm.DB
}

func NewIssuesRepository(db *gorm.DB) *Issues {
	return &Issues{db: db}
}

func (i *Issues) Create(ctx context.Context, issue *entities.Issue) error {
	return conn(ctx, i.db).Create(issue).Error
}

func (i *Issues) GetByID(ctx context.Context, id int) (*entities.Issue, error) {
	var issue entities.Issue
	if err := conn(ctx, i.db).First(&issue, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

func (i *Issues) GetByHhResponseID(ctx context.Context, hhResponseID string) ([]entities.Issue, error) {
	var issues []entities.Issue
	if err := conn(ctx, i.db).Find(&issues, "hh_response_id = ?", hhResponseID).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// Update saves the issue status. It fails with entities.ErrStaleObject when the
// row was changed since the issue was loaded.
func (i *Issues) Update(ctx context.Context, issue *entities.Issue) error {
	return i.updateVersioned(ctx, issue, map[string]any{"status": issue.Status})
}

// Touch bumps the issue version without changing its fields, the same way a new journal does.
func (i *Issues) Touch(ctx context.Context, issue *entities.Issue) error {
	return i.updateVersioned(ctx, issue, map[string]any{})
}

func (i *Issues) updateVersioned(ctx context.Context, issue *entities.Issue, fields map[string]any) error {
	now := time.Now()
	fields["lock_version"] = issue.LockVersion + 1
	fields["updated_at"] = now

	res := conn(ctx, i.db).Model(&entities.Issue{}).
		Where("id = ? AND lock_version = ?", issue.ID, issue.LockVersion).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entities.ErrStaleObject
	}

	issue.LockVersion++
	issue.UpdatedAt = now
	return nil
}
