package hh

import (
	"encoding/json"
	"fmt"
)

type VacancyScope string

const (
	ActiveVacancies   VacancyScope = "active"
	ArchivedVacancies VacancyScope = "archived"
)

func ParseVacancyScope(s string) (VacancyScope, error) {
	switch VacancyScope(s) {
	case ActiveVacancies:
		return ActiveVacancies, nil
	case ArchivedVacancies:
		return ArchivedVacancies, nil
	default:
		return "", fmt.Errorf("invalid vacancy scope: %q", s)
	}
}

type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Vacancy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Area *Area  `json:"area"`
	Url  string `json:"alternate_url"`

	Raw json.RawMessage `json:"-"`
}

func (v Vacancy) City() string {
	if v.Area == nil {
		return ""
	}
	return v.Area.Name
}

// decodeRawItems decodes every item into T and keeps a copy of its raw JSON.
func decodeRawItems[T any](items []json.RawMessage, setRaw func(*T, json.RawMessage)) ([]T, error) {
	result := make([]T, 0, len(items))
	for _, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("error decoding item: %w", err)
		}
		setRaw(&item, raw)
		result = append(result, item)
	}
	return result, nil
}
