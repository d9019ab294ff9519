package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"mostviewed/internal/models"
)

// Validation errors.
var (
	ErrEmptyTitle    = errors.New("ranking entry has an empty title")
	ErrNegativeCount = errors.New("ranking entry has a negative view count")
	ErrIllegalTitle  = errors.New("ranking entry title contains illegal characters")
)

// illegalTitleChars may never appear in a MediaWiki page title.
const illegalTitleChars = "#<>[]|{}"

// Validator checks ranking entries before they are enriched.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate rejects entries that cannot become an article record.
func (v *Validator) Validate(top models.TopArticle) error {
	if strings.TrimSpace(top.Title) == "" {
		return ErrEmptyTitle
	}

	if top.Count < 0 {
		return fmt.Errorf("%w: %q has %d", ErrNegativeCount, top.Title, top.Count)
	}

	if i := strings.IndexAny(top.Title, illegalTitleChars); i >= 0 {
		return fmt.Errorf("%w: %q at offset %d", ErrIllegalTitle, top.Title, i)
	}

	return nil
}
