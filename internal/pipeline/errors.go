package pipeline

import (
	"errors"
	"fmt"

	"mostviewed/internal/normalizer"
	"mostviewed/internal/wiki"
)

// Stage names a step of a run.
type Stage string

// Run stages in execution order.
const (
	StageInitStore Stage = "init-store"
	StageFetch     Stage = "fetch"
	StageEnrich    Stage = "enrich"
	StageDisplay   Stage = "display"
)

// Kind classifies a failure.
type Kind string

// Failure kinds.
const (
	KindTransport   Kind = "transport"
	KindParse       Kind = "parse"
	KindPersistence Kind = "persistence"
	KindContent     Kind = "content"
)

// StageError is a failure recorded during a run. Title is empty for stage-wide failures.
type StageError struct {
	Err   error
	Stage Stage
	Kind  Kind
	Title string
}

func (e *StageError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%s [%s] %q: %v", e.Stage, e.Kind, e.Title, e.Err)
	}

	return fmt.Sprintf("%s [%s]: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// classifySource separates unparseable answers from transport failures.
func classifySource(err error) Kind {
	if errors.Is(err, wiki.ErrParse) || errors.Is(err, normalizer.ErrEmptyTitle) ||
		errors.Is(err, normalizer.ErrNegativeCount) || errors.Is(err, normalizer.ErrIllegalTitle) {
		return KindParse
	}

	return KindTransport
}
