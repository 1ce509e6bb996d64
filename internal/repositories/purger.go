package repositories

import (
	"context"
	"fmt"

	"github.com/maxaizer/hh-hire/internal/entities"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Purger struct {
	db *DbContext
}

func NewPurger(db *DbContext) *Purger {
	return &Purger{db: db}
}

// Rollback removes everything the synchronization created: imported issues with
// their journals, responses, applicants and vacancies. Meant for debugging only.
func (p *Purger) Rollback(ctx context.Context) error {
	return p.db.Transaction(ctx, func(ctx context.Context) error {
		tx := conn(ctx, p.db.DB)

		imported := tx.Model(&entities.Issue{}).Select("id").Where("hh_response_id <> ''")

		steps := []struct {
			name  string
			query func() *gorm.DB
		}{
			{"journals", func() *gorm.DB { return tx.Where("issue_id IN (?)", imported).Delete(&entities.Journal{}) }},
			{"issues", func() *gorm.DB { return tx.Where("hh_response_id <> ''").Delete(&entities.Issue{}) }},
			{"responses", func() *gorm.DB { return tx.Where("1 = 1").Delete(&entities.Response{}) }},
			{"applicants", func() *gorm.DB { return tx.Where("1 = 1").Delete(&entities.Applicant{}) }},
			{"vacancies", func() *gorm.DB { return tx.Where("1 = 1").Delete(&entities.Vacancy{}) }},
		}

		for _, step := range steps {
			res := step.query()
			if res.Error != nil {
				return fmt.Errorf("failed to remove %s: %w", step.name, res.Error)
			}
			log.Infof("rollback removed %d %s", res.RowsAffected, step.name)
		}
		return nil
	})
}
