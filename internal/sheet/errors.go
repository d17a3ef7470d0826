package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/resellerdash/internal/infra"
)

// Failure categories. None of them escape the Gateway: they are logged,
// counted and replaced with defaults.
var (
	ErrTransport  = errors.New("sheet: transport failure")
	ErrMalformed  = errors.New("sheet: malformed response body")
	ErrRejected   = errors.New("sheet: upstream reported failure")
	ErrNoEndpoint = errors.New("sheet: no endpoint configured")
)

// StatusError is returned when the endpoint answers outside 2xx.
type StatusError struct {
	StatusCode int
	Status     string
	Title      string // <title> of an HTML error page, if any
}

func (e *StatusError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("sheet: upstream returned HTTP %d: %s", e.StatusCode, e.Title)
	}
	return fmt.Sprintf("sheet: upstream returned HTTP %d", e.StatusCode)
}

// Fetch outcomes, used as log and metric labels.
const (
	OutcomeOK          = "ok"
	OutcomeTransport   = "transport"
	OutcomeStatus      = "status"
	OutcomeMalformed   = "malformed"
	OutcomeRejected    = "rejected"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeNoEndpoint  = "unconfigured"
	OutcomeCancelled   = "cancelled"
)

// Outcome classifies a fetch error.
func Outcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, infra.ErrCircuitOpen):
		return OutcomeCircuitOpen
	case errors.Is(err, ErrNoEndpoint):
		return OutcomeNoEndpoint
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled
	case errors.As(err, &statusErr):
		return OutcomeStatus
	case errors.Is(err, ErrMalformed):
		return OutcomeMalformed
	case errors.Is(err, ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeTransport
	}
}

const snippetLen = 120

// describeBody summarizes an unparseable body for the log. Apps Script
// serves HTML error pages, so the page title is the useful part.
func describeBody(body []byte) string {
	if title := pageTitle(body); title != "" {
		return fmt.Sprintf("html page %q", title)
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty body"
	}
	if len(s) > snippetLen {
		s = s[:snippetLen] + "..."
	}
	return fmt.Sprintf("body %q", s)
}

// pageTitle returns the <title> of an HTML document, or "" when body is not
// HTML.
func pageTitle(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
