package hh

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
)

type Resume struct {
	ID         string             `json:"id"`
	FirstName  string             `json:"first_name"`
	LastName   string             `json:"last_name"`
	MiddleName string             `json:"middle_name"`
	BirthDate  string             `json:"birth_date"`
	Area       *Area              `json:"area"`
	Photo      *ResumePhoto       `json:"photo"`
	Salary     *ResumeSalary      `json:"salary"`
	Experience []ResumeExperience `json:"experience"`
	Skills     string             `json:"skills"`
	Url        string             `json:"alternate_url"`
	Contacts   []ResumeContact    `json:"contact"`

	Raw json.RawMessage `json:"-"`
}

type ResumePhoto struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
}

type ResumeSalary struct {
	Amount   *int   `json:"amount"`
	Currency string `json:"currency"`
}

type ResumeExperience struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Start       string  `json:"start"`
	End         *string `json:"end"`
	Description string  `json:"description"`
}

type ResumeContact struct {
	Type struct {
		ID string `json:"id"`
	} `json:"type"`
	// Value is a string for emails and an object for phones.
	Value json.RawMessage `json:"value"`
}

func (r Resume) City() string {
	if r.Area == nil {
		return ""
	}
	return r.Area.Name
}

func (r Resume) PhotoURL() string {
	if r.Photo == nil {
		return ""
	}
	return r.Photo.Medium
}

func (r Resume) SalaryAmount() *int {
	if r.Salary == nil {
		return nil
	}
	return r.Salary.Amount
}

func (r Resume) Email() string {
	contact, found := lo.Find(r.Contacts, func(c ResumeContact) bool {
		return c.Type.ID == "email"
	})
	if !found {
		return ""
	}

	var email string
	if err := json.Unmarshal(contact.Value, &email); err != nil {
		return ""
	}
	return email
}

func (r Resume) FullName() string {
	parts := lo.Compact([]string{r.LastName, r.FirstName, r.MiddleName})
	return strings.Join(parts, " ")
}
