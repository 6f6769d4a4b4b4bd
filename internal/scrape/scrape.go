package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	maxBodyBytes = 2 << 20 // 2MB of HTML is plenty for a landing page
	maxTextRunes = 100_000
)

// Scraper fetches a URL and extracts readable page text for AI analysis
type Scraper struct {
	httpClient *http.Client
}

// NewScraper creates a scraper with a bounded request timeout
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchText downloads the page and returns its visible text. Scripts,
// styles, and non-content chrome (nav, footer) are skipped.
func (s *Scraper) FetchText(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid URL: must be an absolute http(s) URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "MailMuseBot/1.0 (+business profile analysis)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("URL returned status %d", resp.StatusCode)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("page contains no readable text")
	}
	return text, nil
}

// ExtractText renders the visible text of an HTML document
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "svg", "iframe", "nav", "footer":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		// Keep block boundaries readable for the model
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "section", "article", "tr":
				b.WriteByte('\n')
			}
		}
	}
	walk(doc)

	return collapse(b.String()), nil
}

// collapse squeezes whitespace runs and caps the result length
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	text := strings.Join(out, "\n")

	runes := []rune(text)
	if len(runes) > maxTextRunes {
		text = string(runes[:maxTextRunes])
	}
	return text
}
