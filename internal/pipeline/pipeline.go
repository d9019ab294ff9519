// Package pipeline runs the four stages of a most-viewed run: store setup, ranking
// fetch, per-article enrichment and the display query.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"mostviewed/internal/config"
	"mostviewed/internal/logger"
	"mostviewed/internal/models"
	"mostviewed/internal/normalizer"
	"mostviewed/internal/wiki"
)

// NoArticlesMessage is the warning shown when the ranking is empty.
const NoArticlesMessage = "No articles to process..."

// ErrCanceled wraps the context error when a run stops early.
var ErrCanceled = errors.New("run canceled")

// ArticleSource provides the ranking and revision lookups.
type ArticleSource interface {
	MostViewed(ctx context.Context, n int) ([]models.TopArticle, error)
	LastEditor(ctx context.Context, title string) (string, bool, error)
}

// PageConverter returns the Markdown rendition of an article page.
type PageConverter interface {
	ConvertPage(ctx context.Context, pageURL string) (string, error)
}

// Store persists article records.
type Store interface {
	Initialize(ctx context.Context) error
	Insert(ctx context.Context, article *models.Article) error
	Ranked(ctx context.Context, excluded []string) ([]models.RankedArticle, error)
}

// Result summarizes a run.
type Result struct {
	StartedAt time.Time              `json:"startedAt"`
	RunID     string                 `json:"runId"`
	Rows      []models.RankedArticle `json:"rows"`
	Notices   []models.Notice        `json:"notices"`
	Errors    []*StageError          `json:"-"`
	Duration  time.Duration          `json:"duration"`
	Fetched   int                    `json:"fetched"`
	Inserted  int                    `json:"inserted"`
	Skipped   int                    `json:"skipped"`
	Aborted   bool                   `json:"aborted"`
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%s fetched, %s stored, %s skipped, %s displayed in %s",
		humanize.Comma(int64(r.Fetched)),
		humanize.Comma(int64(r.Inserted)),
		humanize.Comma(int64(r.Skipped)),
		humanize.Comma(int64(len(r.Rows))),
		r.Duration.Round(time.Millisecond),
	)

	if r.Aborted {
		s += " (enrichment aborted)"
	}

	return s
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithClock replaces the clock used for StartedAt and Duration.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline sequences a single run. It is not safe for concurrent Run calls.
type Pipeline struct {
	source    ArticleSource
	converter PageConverter
	store     Store
	processor *normalizer.Processor
	reporter  Reporter
	logger    *logger.Logger
	now       func() time.Time
	reserved  []string
	topN      int
	abort     bool
}

// New creates a pipeline from explicit configuration and collaborators.
func New(cfg *config.Config, source ArticleSource, converter PageConverter, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    source,
		converter: converter,
		store:     store,
		processor: normalizer.NewProcessor(normalizer.NewTransformerFromConfig(cfg)),
		reporter:  nopReporter{},
		logger:    logger.NewNop(),
		now:       time.Now,
		reserved:  cfg.Fetch.ReservedTitles,
		topN:      cfg.Fetch.TopN,
		abort:     cfg.Enrichment.AbortOnContentError(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// run holds the state of one Run call.
type run struct {
	*Pipeline
	log    *logger.Logger
	result *Result
}

func (r *run) fail(stage Stage, kind Kind, title string, err error) *StageError {
	se := &StageError{Stage: stage, Kind: kind, Title: title, Err: err}
	r.result.Errors = append(r.result.Errors, se)

	n := models.Notice{Level: models.NoticeError, Message: err.Error()}

	var parseErr *wiki.ParseError
	if errors.As(err, &parseErr) {
		n.Detail = parseErr.Payload
	}

	r.publish(n)

	return se
}

func (r *run) notify(level models.NoticeLevel, message string) {
	r.publish(models.Notice{Level: level, Message: message})
}

func (r *run) publish(n models.Notice) {
	r.result.Notices = append(r.result.Notices, n)
	r.reporter.Notice(n)

	var args []any
	if n.Detail != "" {
		args = append(args, "payload", n.Detail)
	}

	switch n.Level {
	case models.NoticeError:
		r.log.Error(fmt.Sprintf("❌ %s", n.Message), args...)
	case models.NoticeWarning:
		r.log.Warn(fmt.Sprintf("⚠️  %s", n.Message), args...)
	default:
		r.log.Info(n.Message, args...)
	}
}

func (r *run) canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		r.notify(models.NoticeError, "Run canceled")
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	return nil
}

// Run executes every stage. Failures are collected in the result; the returned
// error is set when the display query fails or the context is canceled.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	r := &run{
		Pipeline: p,
		result:   &Result{RunID: uuid.NewString(), StartedAt: p.now()},
	}
	r.log = p.logger.With("run_id", r.result.RunID)

	defer func() {
		r.result.Duration = p.now().Sub(r.result.StartedAt)
	}()

	r.log.Info("🚀 Starting most-viewed run")

	// 1. Store setup
	initialized := r.initStore(ctx)

	if err := r.canceled(ctx); err != nil {
		return r.result, err
	}

	// 2. Ranking fetch
	var tops []models.TopArticle
	if initialized {
		tops = r.fetch(ctx)
	}

	if err := r.canceled(ctx); err != nil {
		return r.result, err
	}

	// 3. Enrichment
	switch {
	case !initialized:
		// No store, no fetch.
	case len(tops) == 0:
		r.notify(models.NoticeWarning, NoArticlesMessage)
	default:
		if err := r.enrich(ctx, tops); err != nil {
			return r.result, err
		}
	}

	// 4. Display query
	if err := r.display(ctx); err != nil {
		return r.result, err
	}

	r.result.Duration = p.now().Sub(r.result.StartedAt)
	r.log.Info(fmt.Sprintf("✨ Run complete: %s", r.result.Summary()))

	return r.result, nil
}

func (r *run) initStore(ctx context.Context) bool {
	r.reporter.StageStarted(StageInitStore, "Please wait: Initiating Database")

	if err := r.store.Initialize(ctx); err != nil {
		r.fail(StageInitStore, KindPersistence, "", err)
		return false
	}

	r.reporter.StageFinished(StageInitStore, "Done: Database Initiated")

	return true
}

func (r *run) fetch(ctx context.Context) []models.TopArticle {
	r.reporter.StageStarted(StageFetch, "Please wait: Loading Wikipedia Mostviewed Articles")

	tops, err := r.source.MostViewed(ctx, r.topN)
	if err != nil {
		r.fail(StageFetch, classifySource(err), "", err)
		return nil
	}

	r.result.Fetched = len(tops)
	r.log.Info(fmt.Sprintf("✅ Fetched %d ranking entries", len(tops)))
	r.reporter.StageFinished(StageFetch, fmt.Sprintf("Done: Wikipedia %d Mostviewed Articles Loaded", r.topN))

	return tops
}

func (r *run) enrich(ctx context.Context, tops []models.TopArticle) error {
	r.reporter.StageStarted(StageEnrich, "Please wait: Checking Articles Revisions and Downloading HTML")

	for _, top := range tops {
		if err := r.canceled(ctx); err != nil {
			return err
		}

		article, err := r.processor.Process(top)
		if err != nil {
			r.fail(StageEnrich, KindParse, top.Title, err)
			r.result.Skipped++

			continue
		}

		editor, ok, err := r.source.LastEditor(ctx, article.Title)

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return r.canceled(ctx)
			}

			r.fail(StageEnrich, classifySource(err), article.Title, err)
		case ok:
			article.LastEditor = &editor
		default:
			r.log.Debug("no revisions, editor left empty", "title", article.Title)
		}

		r.log.Info(fmt.Sprintf("Extracting markdown for Article: %s", article.Title))

		markdown, err := r.converter.ConvertPage(ctx, article.URL)
		if err != nil {
			if ctx.Err() != nil {
				return r.canceled(ctx)
			}

			r.fail(StageEnrich, KindContent, article.Title, err)
			r.result.Skipped++

			if r.abort {
				r.result.Aborted = true
				r.notify(models.NoticeWarning, fmt.Sprintf("Enrichment stopped after content failure on %q", article.Title))

				break
			}

			continue
		}

		article.Content = markdown

		if err := r.store.Insert(ctx, article); err != nil {
			r.fail(StageEnrich, KindPersistence, article.Title, err)
			r.result.Skipped++

			continue
		}

		r.result.Inserted++
		r.log.Info(fmt.Sprintf("Article successfully saved in DB: %s", article.Title))
	}

	r.reporter.StageFinished(StageEnrich, "Done: Wikipedia Mostviewed Articles Parsed and Stored in DB")

	return nil
}

func (r *run) display(ctx context.Context) error {
	r.reporter.StageStarted(StageDisplay, "Please wait: Loading charts data")

	rows, err := r.store.Ranked(ctx, r.reserved)
	if err != nil {
		return r.fail(StageDisplay, KindPersistence, "", err)
	}

	r.result.Rows = rows
	r.reporter.StageFinished(StageDisplay, "")

	return nil
}
