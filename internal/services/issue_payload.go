package services

import "github.com/maxaizer/hh-hire/internal/clients/hh"

// IssuePayload is everything a new issue is built from: the vacancy, the resume and the response.
type IssuePayload struct {
	VacancyID      string                `json:"vacancy_id"`
	VacancyName    string                `json:"vacancy_name"`
	VacancyCity    string                `json:"vacancy_city"`
	VacancyURL     string                `json:"vacancy_link"`
	ResumeID       string                `json:"resume_id"`
	ResumeURL      string                `json:"resume_link"`
	HhResponseID   string                `json:"hh_response_id"`
	ApplicantCity  string                `json:"applicant_city"`
	ApplicantEmail string                `json:"applicant_email"`
	FirstName      string                `json:"applicant_first_name"`
	LastName       string                `json:"applicant_last_name"`
	MiddleName     string                `json:"applicant_middle_name"`
	BirthDate      string                `json:"applicant_birth_date"`
	PhotoURL       string                `json:"applicant_photo"`
	Salary         *int                  `json:"salary"`
	Experience     []hh.ResumeExperience `json:"experience"`
	Skills         string                `json:"description"`
	CoverLetter    string                `json:"cover_letter"`
}

func NewIssuePayload(vacancy hh.Vacancy, resume hh.Resume, hhResponseID, coverLetter string) IssuePayload {
	return IssuePayload{
		VacancyID:      vacancy.ID,
		VacancyName:    vacancy.Name,
		VacancyCity:    vacancy.City(),
		VacancyURL:     vacancy.Url,
		ResumeID:       resume.ID,
		ResumeURL:      resume.Url,
		HhResponseID:   hhResponseID,
		ApplicantCity:  resume.City(),
		ApplicantEmail: resume.Email(),
		FirstName:      resume.FirstName,
		LastName:       resume.LastName,
		MiddleName:     resume.MiddleName,
		BirthDate:      resume.BirthDate,
		PhotoURL:       resume.PhotoURL(),
		Salary:         resume.SalaryAmount(),
		Experience:     resume.Experience,
		Skills:         resume.Skills,
		CoverLetter:    coverLetter,
	}
}

func (p IssuePayload) ApplicantName() string {
	return hh.Resume{FirstName: p.FirstName, LastName: p.LastName, MiddleName: p.MiddleName}.FullName()
}
