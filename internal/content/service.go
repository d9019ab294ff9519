package content

import (
	"context"
	"fmt"
	"time"

	"mostviewed/internal/config"
	"mostviewed/internal/logger"
)

// Service retrieves a page and returns its Markdown rendition.
type Service struct {
	fetcher   *Fetcher
	converter *Converter
	logger    *logger.Logger
}

// NewService wires a fetcher and a converter.
func NewService(fetcher *Fetcher, converter *Converter, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}

	return &Service{
		fetcher:   fetcher,
		converter: converter,
		logger:    log,
	}
}

// NewServiceFromConfig builds the service from the wikipedia and content sections.
func NewServiceFromConfig(cfg *config.Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}

	fetcher := NewFetcher(
		cfg.Wikipedia.UserAgent,
		WithTimeout(cfg.Wikipedia.GetTimeout()),
		WithMaxBodyKb(cfg.Content.MaxBodyKb),
		WithFetchLogger(log),
	)

	converter := NewConverter(
		WithReadability(cfg.Content.Readability),
		WithTableFormatting(cfg.Content.FormatTables),
	)

	return NewService(fetcher, converter, log)
}

// ConvertPage fetches pageURL and converts the body to Markdown.
func (s *Service) ConvertPage(ctx context.Context, pageURL string) (string, error) {
	start := time.Now()

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	markdown, err := s.converter.Convert(body, pageURL)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", pageURL, err)
	}

	s.logger.Debug("page converted", "url", pageURL, "chars", len(markdown), "duration", time.Since(start))

	return markdown, nil
}
