package wiki

import (
	"errors"
	"fmt"
)

// Client errors.
var (
	ErrTransport            = errors.New("wikipedia api transport error")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrParse                = errors.New("wikipedia api response could not be parsed")
	ErrAPI                  = errors.New("wikipedia api returned an error")
	ErrInvalidLimit         = errors.New("article limit must be non-negative")
)

// StatusError reports a non-200 answer from the API.
type StatusError struct {
	Label      string
	StatusCode int
}

func (e *StatusError) Error() string {
	topic := ""
	if e.Label != "" {
		topic = fmt.Sprintf("- Pulling %s ", e.Label)
	}

	return fmt.Sprintf("Wikipedia API call error %s - Error Code: %d", topic, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatusCode
}

// ParseError carries the full payload that could not be interpreted.
type ParseError struct {
	Err     error
	Label   string
	Payload string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrParse, e.Label, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// APIError is the MediaWiki "error" object returned with a 200 status.
type APIError struct {
	Code  string `json:"code"`
	Info  string `json:"info"`
	Label string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s): %s: %s", ErrAPI, e.Label, e.Code, e.Info)
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}
