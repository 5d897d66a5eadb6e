// Package titles fills in missing tab titles by fetching the page and
// extracting the document title with readability.
package titles

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/lotas/tabclue/internal/applog"
	"github.com/lotas/tabclue/internal/types"
)

var skipPrefixes = []string{"about:", "moz-extension:", "file:", "chrome:", "resource:", "data:"}

// FetchTitle fetches a URL and extracts the page title.
// Returns an error for non-HTTP URLs or if extraction fails.
func FetchTitle(url string) (string, error) {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(url, prefix) {
			return "", fmt.Errorf("skipping non-HTTP URL: %s", url)
		}
	}

	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return "", fmt.Errorf("extract title from %s: %w", url, err)
	}
	if article.Title == "" {
		return "", fmt.Errorf("no title found at %s", url)
	}

	return article.Title, nil
}

// needsTitle reports whether a saved tab has no usable title.
func needsTitle(t types.Tab) bool {
	return t.Title == "" || t.Title == "Untitled"
}

// Fill walks the collection and fetches titles for tabs saved without
// one. It mutates tags in place, stamps UpdatedAt on changed tabs, and
// returns the number of titles filled. Fetch failures are logged and
// skipped.
func Fill(tags types.Collection, fetch func(url string) (string, error)) int {
	if fetch == nil {
		fetch = FetchTitle
	}

	filled := 0
	for ti := range tags {
		for gi := range tags[ti].Groups {
			for bi := range tags[ti].Groups[gi].Tabs {
				tab := &tags[ti].Groups[gi].Tabs[bi]
				if !needsTitle(*tab) {
					continue
				}
				title, err := fetch(tab.URL)
				if err != nil {
					applog.Warn("titles.fetch_failed", "url", tab.URL, "error", err.Error())
					continue
				}
				tab.Title = title
				tab.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
				filled++
			}
		}
	}
	return filled
}
