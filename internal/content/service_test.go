package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mostviewed/internal/config"
)

func TestService_ConvertPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wiki/Missing" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte(`<html><body><h1>Go</h1><p>See <a href="/wiki/Gopher">gopher</a>.</p></body></html>`))
	}))
	defer srv.Close()

	cfg := config.Default()
	svc := NewServiceFromConfig(cfg, nil)

	md, err := svc.ConvertPage(context.Background(), srv.URL+"/wiki/Go")
	require.NoError(t, err)
	assert.Contains(t, md, "# Go")
	assert.Contains(t, md, "[gopher]("+srv.URL+"/wiki/Gopher)")

	_, err = svc.ConvertPage(context.Background(), srv.URL+"/wiki/Missing")
	assert.ErrorIs(t, err, ErrUnexpectedStatusCode)
}

func TestService_ConvertPage_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("x", 4096) + "</p></body></html>"))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Content.MaxBodyKb = 2

	md, err := NewServiceFromConfig(cfg, nil).ConvertPage(context.Background(), srv.URL+"/wiki/Huge")
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Empty(t, md)
}
