package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mostviewed/internal/config"
	"mostviewed/internal/formatter"
	"mostviewed/internal/models"
	"mostviewed/internal/store"
	"mostviewed/internal/wiki"
)

type fakeSource struct {
	rankErr    error
	editorErr  map[string]error
	editors    map[string]string
	tops       []models.TopArticle
	gotN       int
	editorAsks []string
}

func (f *fakeSource) MostViewed(_ context.Context, n int) ([]models.TopArticle, error) {
	f.gotN = n
	if f.rankErr != nil {
		return nil, f.rankErr
	}

	return f.tops, nil
}

func (f *fakeSource) LastEditor(_ context.Context, title string) (string, bool, error) {
	f.editorAsks = append(f.editorAsks, title)

	if err := f.editorErr[title]; err != nil {
		return "", false, err
	}

	editor, ok := f.editors[title]

	return editor, ok, nil
}

type fakeConverter struct {
	fail map[string]bool
	urls []string
}

func (f *fakeConverter) ConvertPage(_ context.Context, pageURL string) (string, error) {
	f.urls = append(f.urls, pageURL)

	if f.fail[pageURL] {
		return "", fmt.Errorf("fetch %s: boom", pageURL)
	}

	return "# " + pageURL, nil
}

type recordingReporter struct {
	events  []string
	notices []models.Notice
}

func (r *recordingReporter) StageStarted(stage Stage, message string) {
	r.events = append(r.events, "start "+string(stage)+": "+message)
}

func (r *recordingReporter) StageFinished(stage Stage, message string) {
	r.events = append(r.events, "finish "+string(stage)+": "+message)
}

func (r *recordingReporter) Notice(n models.Notice) {
	r.notices = append(r.notices, n)
}

type brokenStore struct {
	*store.Store
	initErr error
}

func (b *brokenStore) Initialize(context.Context) error {
	return b.initErr
}

func ranking(n int) []models.TopArticle {
	tops := []models.TopArticle{
		{Title: "Main Page", Count: 9_000_000},
		{Title: "Special:Search", Count: 2_000_000},
	}

	for i := 0; i < n; i++ {
		tops = append(tops, models.TopArticle{Title: fmt.Sprintf("Article %02d", i+1), Count: int64(100_000 - i*1_000)})
	}

	return tops
}

func newTestPipeline(t *testing.T, cfg *config.Config, src *fakeSource, conv *fakeConverter, opts ...Option) (*Pipeline, *store.Store) {
	t.Helper()

	st := store.New(filepath.Join(t.TempDir(), "articles.db"))

	return New(cfg, src, conv, st, opts...), st
}

func TestRun_FullRanking(t *testing.T) {
	cfg := config.Default()
	src := &fakeSource{tops: ranking(20), editors: map[string]string{"Article 01": "Gopher"}}
	conv := &fakeConverter{}
	rep := &recordingReporter{}

	p, st := newTestPipeline(t, cfg, src, conv, WithReporter(rep))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, src.gotN)
	assert.Equal(t, 22, res.Fetched)
	assert.Equal(t, 22, res.Inserted)
	assert.Zero(t, res.Skipped)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Errors)

	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 22, count)

	require.Len(t, res.Rows, 20, "reserved titles are excluded from the display")

	for i, row := range res.Rows {
		assert.Equal(t, i+1, row.Rank)
		assert.NotEqual(t, "Main Page", row.Title)
		assert.NotEqual(t, "Search", row.Title)

		parsed, err := formatter.ParseViews(row.ViewsFormatted)
		require.NoError(t, err)
		assert.Equal(t, row.ViewsCount, parsed)

		if i > 0 {
			assert.GreaterOrEqual(t, res.Rows[i-1].ViewsCount, row.ViewsCount)
		}
	}

	assert.Equal(t, "Gopher", res.Rows[0].Editor())
	assert.Nil(t, res.Rows[1].LastEditor, "no revisions leaves the editor NULL")

	assert.Contains(t, src.editorAsks, "Search", "editor lookup uses the normalized title")
	assert.Contains(t, conv.urls, "https://en.wikipedia.org/wiki/Special:Search", "URL keeps the raw title")

	assert.Equal(t, []string{
		"start init-store: Please wait: Initiating Database",
		"finish init-store: Done: Database Initiated",
		"start fetch: Please wait: Loading Wikipedia Mostviewed Articles",
		"finish fetch: Done: Wikipedia 20 Mostviewed Articles Loaded",
		"start enrich: Please wait: Checking Articles Revisions and Downloading HTML",
		"finish enrich: Done: Wikipedia Mostviewed Articles Parsed and Stored in DB",
		"start display: Please wait: Loading charts data",
		"finish display: ",
	}, rep.events)
	assert.Contains(t, res.Summary(), "22 fetched, 22 stored, 0 skipped, 20 displayed")
}

func TestRun_EmptyRanking(t *testing.T) {
	rep := &recordingReporter{}
	p, st := newTestPipeline(t, config.Default(), &fakeSource{}, &fakeConverter{}, WithReporter(rep))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Inserted)
	require.Len(t, rep.notices, 1)
	assert.Equal(t, models.Notice{Level: models.NoticeWarning, Message: NoArticlesMessage}, rep.notices[0])

	for _, e := range rep.events {
		assert.NotContains(t, e, "enrich", "enrichment is skipped on an empty ranking")
	}

	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRun_RankingFailure(t *testing.T) {
	status := &wiki.StatusError{Label: "Most Viewed Articles", StatusCode: 503}
	p, _ := newTestPipeline(t, config.Default(), &fakeSource{rankErr: status}, &fakeConverter{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, StageFetch, res.Errors[0].Stage)
	assert.Equal(t, KindTransport, res.Errors[0].Kind)
	assert.ErrorIs(t, res.Errors[0], wiki.ErrUnexpectedStatusCode)

	require.Len(t, res.Notices, 2)
	assert.Contains(t, res.Notices[0].Message, "Error Code: 503")
	assert.Equal(t, NoArticlesMessage, res.Notices[1].Message)
	assert.Empty(t, res.Rows)
}

func TestRun_RankingParseFailure(t *testing.T) {
	payload := `{"batchcomplete":"","query":{"mostviewed":"unexpected"}}`
	parseErr := &wiki.ParseError{Label: "Most Viewed Articles", Err: errors.New("missing list"), Payload: payload}
	rep := &recordingReporter{}
	p, _ := newTestPipeline(t, config.Default(), &fakeSource{rankErr: parseErr}, &fakeConverter{}, WithReporter(rep))

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindParse, res.Errors[0].Kind)

	require.NotEmpty(t, res.Notices)
	assert.Contains(t, res.Notices[0].Message, "missing list")
	assert.Equal(t, payload, res.Notices[0].Detail, "the full payload is shown with the error")
	assert.Equal(t, payload, rep.notices[0].Detail)
}

func TestRun_ContentFailureSkip(t *testing.T) {
	src := &fakeSource{tops: ranking(5)}
	conv := &fakeConverter{fail: map[string]bool{"https://en.wikipedia.org/wiki/Article_02": true}}

	p, st := newTestPipeline(t, config.Default(), src, conv)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.Aborted)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindContent, res.Errors[0].Kind)
	assert.Equal(t, "Article 02", res.Errors[0].Title)

	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, count, "rows equal topics whose conversion succeeded")
	assert.Len(t, res.Rows, 4)
}

func TestRun_ContentFailureAbort(t *testing.T) {
	cfg := config.Default()
	cfg.Enrichment.OnContentError = config.PolicyAbort

	src := &fakeSource{tops: ranking(5)}
	conv := &fakeConverter{fail: map[string]bool{"https://en.wikipedia.org/wiki/Article_02": true}}

	p, st := newTestPipeline(t, cfg, src, conv)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Aborted)
	assert.Equal(t, 3, res.Inserted, "Main Page, Search and Article 01 are stored before the failure")
	assert.Len(t, conv.urls, 4, "no page is fetched after the failure")

	count, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, res.Rows, 1)
	assert.Contains(t, res.Summary(), "enrichment aborted")
}

func TestRun_EditorFailureKeepsRow(t *testing.T) {
	src := &fakeSource{
		tops:      ranking(1),
		editorErr: map[string]error{"Article 01": fmt.Errorf("%w: connection reset", wiki.ErrTransport)},
	}

	p, _ := newTestPipeline(t, config.Default(), src, &fakeConverter{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Inserted)
	require.Len(t, res.Rows, 1)
	assert.Nil(t, res.Rows[0].LastEditor)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindTransport, res.Errors[0].Kind)
}

func TestRun_InvalidEntrySkipped(t *testing.T) {
	tops := append(ranking(1), models.TopArticle{Title: "Bad|Title", Count: 5})
	p, _ := newTestPipeline(t, config.Default(), &fakeSource{tops: tops}, &fakeConverter{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindParse, res.Errors[0].Kind)
}

func TestRun_InitFailure(t *testing.T) {
	st := &brokenStore{
		Store:   store.New(filepath.Join(t.TempDir(), "never.db")),
		initErr: fmt.Errorf("%w: read-only file system", store.ErrInit),
	}
	src := &fakeSource{tops: ranking(3)}

	res, err := New(config.Default(), src, &fakeConverter{}, st).Run(context.Background())
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageDisplay, se.Stage)
	assert.Equal(t, KindPersistence, se.Kind)

	require.NotNil(t, res)
	assert.Zero(t, src.gotN, "ranking is not fetched without a store")
	assert.Equal(t, StageInitStore, res.Errors[0].Stage)
	assert.ErrorIs(t, res.Errors[0], store.ErrInit)

	for _, n := range res.Notices {
		assert.NotEqual(t, NoArticlesMessage, n.Message, "no ranking was requested, so none came back empty")
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newTestPipeline(t, config.Default(), &fakeSource{tops: ranking(2)}, &fakeConverter{})

	res, err := p.Run(ctx)
	require.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Inserted)
}

func TestRun_ZeroTopN(t *testing.T) {
	cfg := config.Default()
	cfg.Fetch.TopN = 0

	src := &fakeSource{tops: ranking(0)}
	rep := &recordingReporter{}
	p, _ := newTestPipeline(t, cfg, src, &fakeConverter{}, WithReporter(rep))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, src.gotN)
	assert.Equal(t, 2, res.Inserted)
	assert.Empty(t, res.Rows)
	assert.True(t, containsEvent(rep.events, "Done: Wikipedia 0 Mostviewed Articles Loaded"))
}

func containsEvent(events []string, fragment string) bool {
	for _, e := range events {
		if strings.Contains(e, fragment) {
			return true
		}
	}

	return false
}
