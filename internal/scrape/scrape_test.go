package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Acme Coffee</title><style>body { color: red; }</style></head>
<body>
  <nav><a href="/">Home</a><a href="/about">About</a></nav>
  <script>window.track = function() {};</script>
  <h1>Acme   Coffee</h1>
  <p>Small-batch beans roasted weekly.</p>
  <ul><li>Free shipping</li><li>Cancel anytime</li></ul>
  <footer>© Acme 2026</footer>
</body>
</html>`

func TestExtractTextSkipsChromeAndScripts(t *testing.T) {
	text, err := ExtractText(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Contains(t, text, "Acme Coffee")
	assert.Contains(t, text, "Small-batch beans roasted weekly.")
	assert.Contains(t, text, "Free shipping")
	assert.NotContains(t, text, "window.track")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "About", "nav links should be skipped")
	assert.NotContains(t, text, "© Acme", "footer should be skipped")
}

func TestExtractTextCollapsesWhitespace(t *testing.T) {
	text, err := ExtractText(strings.NewReader("<p>a    b\t\tc</p>"))
	require.NoError(t, err)
	assert.Equal(t, "a b c", text)
}

func TestFetchTextHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s := NewScraper(5 * time.Second)
	text, err := s.FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Small-batch beans roasted weekly.")
}

func TestFetchTextNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewScraper(5 * time.Second)
	_, err := s.FetchText(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "404")
}

func TestFetchTextRejectsBadURLs(t *testing.T) {
	s := NewScraper(5 * time.Second)
	for _, bad := range []string{"", "not a url", "ftp://example.com", "/relative/path"} {
		_, err := s.FetchText(context.Background(), bad)
		assert.Error(t, err, "url %q should be rejected", bad)
	}
}

func TestFetchTextEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><script>only();</script></body></html>"))
	}))
	defer srv.Close()

	s := NewScraper(5 * time.Second)
	_, err := s.FetchText(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "no readable text")
}
