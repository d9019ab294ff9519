// Package normalizer turns ranking entries into article records ready for enrichment.
package normalizer

import (
	"fmt"

	"mostviewed/internal/models"
)

// Processor validates a ranking entry and transforms it into an article record.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a processor with the given transformer.
func NewProcessor(transformer *Transformer) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: transformer,
	}
}

// Process returns the record for top. Editor, content and fetch time are left empty.
func (p *Processor) Process(top models.TopArticle) (*models.Article, error) {
	// 1. Validate the ranking entry
	if err := p.validator.Validate(top); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Normalize title and derive URL
	return p.transformer.Transform(top), nil
}
