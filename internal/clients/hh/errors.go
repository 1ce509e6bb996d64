package hh

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

type APIError struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type errorsResponse struct {
	Errors []APIError `json:"errors"`
}

// RequestError is returned for every non-success status received from hh.ru.
type RequestError struct {
	StatusCode int
	Errors     []APIError
}

func (e *RequestError) Error() string {
	details := lo.Map(e.Errors, func(item APIError, _ int) string {
		return item.Type + ": " + item.Value
	})
	if len(details) == 0 {
		return fmt.Sprintf("hh request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("hh request failed with status %d: %s", e.StatusCode, strings.Join(details, "; "))
}

// TokenExpired reports whether hh.ru rejected the request because the access token expired.
func (e *RequestError) TokenExpired() bool {
	return e.StatusCode == http.StatusForbidden && lo.ContainsBy(e.Errors, func(item APIError) bool {
		return item.Type == "oauth" && item.Value == "token_expired"
	})
}
