// Package wikitest provides an in-process MediaWiki stand-in for tests.
package wikitest

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"mostviewed/internal/models"
)

// APIPath and WikiPath are the routes served.
const (
	APIPath  = "/w/api.php"
	WikiPath = "/wiki/"
)

// Server is a fake Wikipedia. Ranking entries beyond the requested limit are cut.
type Server struct {
	*httptest.Server

	// Editors maps a title to its single revision author. Missing titles have no revisions.
	Editors map[string]string
	// FailPages lists page paths (after /wiki/) answered with 500.
	FailPages map[string]bool
	// RankingStatus, when set, is returned for ranking requests instead of data.
	RankingStatus int

	ranking []models.TopArticle

	mu          sync.Mutex
	limits      []int
	pageFetches []string
}

// NewServer starts a server that ranks entries in the given order.
func NewServer(ranking []models.TopArticle) *Server {
	s := &Server{
		Editors:   map[string]string{},
		FailPages: map[string]bool{},
		ranking:   ranking,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(APIPath, s.handleAPI)
	mux.HandleFunc(WikiPath, s.handlePage)
	s.Server = httptest.NewServer(mux)

	return s
}

// APIURL is the api.php endpoint.
func (s *Server) APIURL() string {
	return s.URL + APIPath
}

// ArticleBaseURL is the prefix article titles are appended to.
func (s *Server) ArticleBaseURL() string {
	return s.URL + WikiPath
}

// Limits returns every pvimlimit received.
func (s *Server) Limits() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]int(nil), s.limits...)
}

// PageFetches returns every article path requested, in order.
func (s *Server) PageFetches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.pageFetches...)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("list") == "mostviewed":
		s.handleRanking(w, q.Get("pvimlimit"))
	case q.Get("prop") == "revisions":
		s.handleRevisions(w, q.Get("titles"))
	default:
		writeJSON(w, map[string]any{"error": map[string]string{"code": "badquery", "info": "unsupported query"}})
	}
}

func (s *Server) handleRanking(w http.ResponseWriter, rawLimit string) {
	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		http.Error(w, "bad pvimlimit", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.mu.Unlock()

	if s.RankingStatus != 0 {
		w.WriteHeader(s.RankingStatus)
		return
	}

	entries := s.ranking
	if len(entries) > limit {
		entries = entries[:limit]
	}

	if entries == nil {
		entries = []models.TopArticle{}
	}

	writeJSON(w, map[string]any{"query": map[string]any{"mostviewed": entries}})
}

func (s *Server) handleRevisions(w http.ResponseWriter, title string) {
	page := map[string]any{"title": title}
	if editor, ok := s.Editors[title]; ok {
		page["revisions"] = []map[string]string{{"user": editor}}
	}

	writeJSON(w, map[string]any{"query": map[string]any{"pages": map[string]any{"1": page}}})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, WikiPath)

	s.mu.Lock()
	s.pageFetches = append(s.pageFetches, name)
	s.mu.Unlock()

	if s.FailPages[name] {
		http.Error(w, "upstream failure", http.StatusInternalServerError)
		return
	}

	title := html.EscapeString(strings.ReplaceAll(name, "_", " "))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html><html><head><title>%[1]s</title><script>var x;</script></head>
<body><h1>%[1]s</h1><p><b>%[1]s</b> is an article. See <a href="/wiki/Main_Page">the main page</a>.</p>
<table><tr><th>Key</th><th>Value</th></tr><tr><td>Title</td><td>%[1]s</td></tr></table></body></html>`, title)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
