package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maxaizer/hh-hire/internal/entities"
)

type issueCreator interface {
	Create(ctx context.Context, issue *entities.Issue) error
}

// IssueBuilder turns a new hh response into an open issue in the hiring project.
type IssueBuilder struct {
	issues   issueCreator
	project  string
	authorID int
}

func NewIssueBuilder(issues issueCreator, project string, authorID int) (*IssueBuilder, error) {
	if issues == nil {
		return nil, errors.New("issue repository is nil")
	}
	if authorID <= 0 {
		return nil, errors.New("author id must be positive")
	}
	return &IssueBuilder{issues: issues, project: project, authorID: authorID}, nil
}

func (b *IssueBuilder) Build(ctx context.Context, payload IssuePayload) (*entities.Issue, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue payload: %w", err)
	}

	issue := &entities.Issue{
		Project:      b.project,
		Subject:      issueSubject(payload),
		Description:  issueDescription(payload),
		Status:       entities.IssueStatusOpen,
		AuthorID:     b.authorID,
		VacancyID:    payload.VacancyID,
		ResumeID:     payload.ResumeID,
		HhResponseID: payload.HhResponseID,
		Payload:      raw,
	}

	if err = b.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func issueSubject(payload IssuePayload) string {
	name := payload.ApplicantName()
	if name == "" {
		name = "резюме " + payload.ResumeID
	}
	return payload.VacancyName + ": " + name
}

func issueDescription(p IssuePayload) string {
	var sb strings.Builder

	line := func(label, value string) {
		if value != "" {
			sb.WriteString(label + ": " + value + "\n")
		}
	}

	line("Вакансия", p.VacancyName)
	line("Город вакансии", p.VacancyCity)
	line("Город кандидата", p.ApplicantCity)
	line("Дата рождения", p.BirthDate)
	line("Email", p.ApplicantEmail)
	if p.Salary != nil {
		line("Желаемая зарплата", strconv.Itoa(*p.Salary))
	}
	line("Резюме", p.ResumeURL)
	line("Ссылка на вакансию", p.VacancyURL)
	line("Фото", p.PhotoURL)

	if len(p.Experience) > 0 {
		sb.WriteString("\nОпыт работы:\n")
		for _, exp := range p.Experience {
			end := "по настоящее время"
			if exp.End != nil {
				end = *exp.End
			}
			sb.WriteString(fmt.Sprintf("- %s, %s (%s - %s)\n", exp.Company, exp.Position, exp.Start, end))
		}
	}

	if p.Skills != "" {
		sb.WriteString("\nО себе:\n" + p.Skills + "\n")
	}

	if p.CoverLetter != "" {
		sb.WriteString("\nСопроводительное письмо:\n" + p.CoverLetter + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
