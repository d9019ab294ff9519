package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mostviewed/internal/config"
	"mostviewed/internal/content"
	"mostviewed/internal/formatter"
	"mostviewed/internal/models"
	"mostviewed/internal/pipeline"
	"mostviewed/internal/render"
	"mostviewed/internal/store"
	"mostviewed/internal/wiki"
	"mostviewed/internal/wiki/wikitest"
)

// fullRanking returns Main Page, the search placeholder and n articles with strictly decreasing counts.
func fullRanking(n int) []models.TopArticle {
	tops := []models.TopArticle{
		{Title: "Main Page", Count: 8_000_000},
		{Title: "Special:Search", Count: 1_500_000},
	}

	for i := 0; i < n; i++ {
		tops = append(tops, models.TopArticle{Title: fmt.Sprintf("Topic %02d", i+1), Count: int64(500_000 - i*10_000)})
	}

	return tops
}

func newFlow(t *testing.T, srv *wikitest.Server, mutate func(*config.Config)) (*pipeline.Pipeline, *store.Store, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.Wikipedia.APIURL = srv.APIURL()
	cfg.Wikipedia.ArticleBaseURL = srv.ArticleBaseURL()
	cfg.Store.Path = filepath.Join(t.TempDir(), "wikipedia_articles.db")

	if mutate != nil {
		mutate(cfg)
	}

	client := wiki.NewClient(cfg.Wikipedia.APIURL, cfg.Wikipedia.UserAgent, wiki.WithTimeout(cfg.Wikipedia.GetTimeout()))
	st := store.New(cfg.Store.Path)

	return pipeline.New(cfg, client, content.NewServiceFromConfig(cfg, nil), st), st, cfg
}

func TestPipelineFlow_TwentyArticles(t *testing.T) {
	srv := wikitest.NewServer(fullRanking(25))
	defer srv.Close()

	srv.Editors["Topic 01"] = "FirstEditor"
	srv.Editors["Search"] = "SearchBot"

	p, st, cfg := newFlow(t, srv, nil)

	// Leftover file from a previous run must not survive.
	if err := os.WriteFile(st.Path(), []byte("stale"), 0o644); err != nil {
		t.Fatalf("Failed to seed stale store: %v", err)
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if limits := srv.Limits(); len(limits) != 1 || limits[0] != 22 {
		t.Fatalf("Expected one ranking request for 22 entries, got %v", limits)
	}

	if result.Fetched != 22 || result.Inserted != 22 {
		t.Errorf("Expected 22 fetched and stored, got %d / %d", result.Fetched, result.Inserted)
	}

	if len(result.Rows) != 20 {
		t.Fatalf("Expected 20 display rows, got %d", len(result.Rows))
	}

	for i, row := range result.Rows {
		if row.Rank != i+1 {
			t.Errorf("Row %d has rank %d", i, row.Rank)
		}

		if row.Title == "Main Page" || row.Title == "Search" {
			t.Errorf("Reserved title %q in display rows", row.Title)
		}

		if views, err := formatter.ParseViews(row.ViewsFormatted); err != nil || views != row.ViewsCount {
			t.Errorf("Formatted views %q do not round-trip to %d", row.ViewsFormatted, row.ViewsCount)
		}
	}

	if got := result.Rows[0].Editor(); got != "FirstEditor" {
		t.Errorf("Expected FirstEditor, got %q", got)
	}

	if result.Rows[1].LastEditor != nil {
		t.Errorf("Expected NULL editor for a page without revisions, got %q", *result.Rows[1].LastEditor)
	}

	md, err := st.Markdown(context.Background(), "Topic 01")
	if err != nil {
		t.Fatalf("Markdown lookup failed: %v", err)
	}

	if !strings.Contains(md, "# Topic 01") || strings.Contains(md, "var x") {
		t.Errorf("Unexpected converted markdown:\n%s", md)
	}

	if !strings.Contains(md, "| Key   | Value    |") {
		t.Errorf("Expected aligned table in markdown:\n%s", md)
	}

	var page bytes.Buffer

	view := render.NewView(result.Rows, render.OptionsFromConfig(cfg))
	if err := render.HTML(&page, view); err != nil {
		t.Fatalf("HTML render failed: %v", err)
	}

	if n := strings.Count(page.String(), "Open Article"); n != 20 {
		t.Errorf("Expected 20 article links, got %d", n)
	}
}

func TestPipelineFlow_EmptyRanking(t *testing.T) {
	srv := wikitest.NewServer(nil)
	defer srv.Close()

	p, st, _ := newFlow(t, srv, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(result.Rows))
	}

	if len(result.Notices) != 1 || result.Notices[0].Message != pipeline.NoArticlesMessage {
		t.Errorf("Expected the no-articles warning, got %+v", result.Notices)
	}

	if n, err := st.Count(context.Background()); err != nil || n != 0 {
		t.Errorf("Expected empty store, got %d (%v)", n, err)
	}
}

func TestPipelineFlow_RankingUnavailable(t *testing.T) {
	srv := wikitest.NewServer(fullRanking(3))
	defer srv.Close()

	srv.RankingStatus = 503

	p, _, _ := newFlow(t, srv, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("Expected one stage error, got %v", result.Errors)
	}

	var statusErr *wiki.StatusError
	if !errors.As(result.Errors[0], &statusErr) || statusErr.StatusCode != 503 {
		t.Errorf("Expected a 503 status error, got %v", result.Errors[0])
	}

	if !strings.Contains(result.Notices[0].Message, "Error Code: 503") {
		t.Errorf("Unexpected notice %q", result.Notices[0].Message)
	}
}

func TestPipelineFlow_ContentFailurePolicies(t *testing.T) {
	tests := []struct {
		name         string
		policy       string
		wantInserted int
		wantFetches  int
	}{
		{"skip", config.PolicySkip, 5, 6},
		{"abort", config.PolicyAbort, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := wikitest.NewServer(fullRanking(4))
			defer srv.Close()

			srv.FailPages["Topic_02"] = true

			p, st, _ := newFlow(t, srv, func(c *config.Config) {
				c.Enrichment.OnContentError = tt.policy
			})

			result, err := p.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if result.Inserted != tt.wantInserted {
				t.Errorf("Inserted = %d, want %d", result.Inserted, tt.wantInserted)
			}

			if got := len(srv.PageFetches()); got != tt.wantFetches {
				t.Errorf("Page fetches = %d, want %d", got, tt.wantFetches)
			}

			if n, err := st.Count(context.Background()); err != nil || n != tt.wantInserted {
				t.Errorf("Store holds %d rows (%v), want %d", n, err, tt.wantInserted)
			}

			if len(result.Errors) != 1 || result.Errors[0].Kind != pipeline.KindContent {
				t.Errorf("Expected one content error, got %v", result.Errors)
			}
		})
	}
}
