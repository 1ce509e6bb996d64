package events

const (
	IssueCreatedTopic     = "IssueCreatedEvent"
	RefusalProcessedTopic = "RefusalProcessedEvent"
)

type IssueCreated struct {
	IssueID       int
	Subject       string
	VacancyName   string
	ApplicantName string
	ResumeURL     string
}

type RefusalProcessed struct {
	IssueID int
	Sent    bool
	Error   string
}
