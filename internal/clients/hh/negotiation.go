package hh

import "github.com/samber/lo"

const (
	refusalActionName   = "Отказ"
	refusalTemplateName = "Шаблон быстрого отказа на отклик"
)

type Negotiation struct {
	ID          string              `json:"id"`
	MessagesURL string              `json:"messages_url"`
	Resume      *NegotiationResume  `json:"resume"`
	Actions     []NegotiationAction `json:"actions"`
}

type NegotiationResume struct {
	ID  string `json:"id"`
	Url string `json:"url"`
}

type NegotiationAction struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Templates []MessageTemplate `json:"templates"`
}

type MessageTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Url  string `json:"url"`
}

func (n Negotiation) HasResume() bool {
	return n.Resume != nil && n.Resume.Url != ""
}

// RefusalURL returns the url of the quick refusal template or "" if hh.ru offers none.
func (n Negotiation) RefusalURL() string {
	action, found := lo.Find(n.Actions, func(a NegotiationAction) bool {
		return a.Name == refusalActionName
	})
	if !found {
		return ""
	}

	template, found := lo.Find(action.Templates, func(t MessageTemplate) bool {
		return t.Name == refusalTemplateName
	})
	if !found {
		return ""
	}
	return template.Url
}

type Message struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Items []Message `json:"items"`
}

type RefusalTemplate struct {
	Mail struct {
		Text string `json:"text"`
	} `json:"mail"`
}
