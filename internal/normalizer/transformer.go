package normalizer

import (
	"strings"

	"mostviewed/internal/config"
	"mostviewed/internal/models"
)

// Transformer maps ranking entries to article records.
type Transformer struct {
	articleBaseURL    string
	searchPlaceholder string
	searchTitle       string
}

// NewTransformer creates a transformer. The search placeholder is renamed to searchTitle.
func NewTransformer(articleBaseURL, searchPlaceholder, searchTitle string) *Transformer {
	return &Transformer{
		articleBaseURL:    articleBaseURL,
		searchPlaceholder: searchPlaceholder,
		searchTitle:       searchTitle,
	}
}

// NewTransformerFromConfig reads the base URL and the search rename from cfg.
func NewTransformerFromConfig(cfg *config.Config) *Transformer {
	return NewTransformer(cfg.Wikipedia.ArticleBaseURL, cfg.Fetch.SearchPlaceholder, cfg.Fetch.SearchTitle)
}

// Transform builds the record. The URL is derived from the raw title.
func (t *Transformer) Transform(top models.TopArticle) *models.Article {
	return &models.Article{
		Title:      t.NormalizeTitle(top.Title),
		URL:        t.ArticleURL(top.Title),
		ViewsCount: top.Count,
	}
}

// NormalizeTitle renames the search placeholder and leaves every other title unchanged.
func (t *Transformer) NormalizeTitle(title string) string {
	if t.searchPlaceholder != "" && title == t.searchPlaceholder {
		return t.searchTitle
	}

	return title
}

// ArticleURL joins the base URL and the title with spaces replaced by underscores.
func (t *Transformer) ArticleURL(title string) string {
	return t.articleBaseURL + strings.ReplaceAll(title, " ", "_")
}
