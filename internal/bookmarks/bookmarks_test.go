package bookmarks

import (
	"context"
	"errors"
	"testing"
)

// recordingChecker counts batched lookups and records which URLs were
// requested.
type recordingChecker struct {
	calls    int
	requests [][]string
	result   map[string]bool
	err      error
}

func (r *recordingChecker) Lookup(_ context.Context, urls []string) (map[string]bool, error) {
	r.calls++
	r.requests = append(r.requests, urls)
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func TestStatusBatchesUncachedOnly(t *testing.T) {
	checker := &recordingChecker{result: map[string]bool{
		"https://a.com": true,
		"https://b.com": false,
	}}
	c := NewCache(checker)

	got := c.Status(context.Background(), []string{"https://a.com", "https://b.com"})
	if !got["https://a.com"] || got["https://b.com"] {
		t.Errorf("first lookup = %v", got)
	}
	if checker.calls != 1 {
		t.Fatalf("expected one batched call, got %d", checker.calls)
	}
	if len(checker.requests[0]) != 2 {
		t.Errorf("batch = %v, want both URLs", checker.requests[0])
	}

	// Second read: everything cached, including the false result.
	got = c.Status(context.Background(), []string{"https://a.com", "https://b.com"})
	if checker.calls != 1 {
		t.Errorf("cached URLs must not be re-checked, calls=%d", checker.calls)
	}
	if !got["https://a.com"] || got["https://b.com"] {
		t.Errorf("cached result changed: %v", got)
	}
}

func TestStatusLooksUpOnlyNewURLs(t *testing.T) {
	checker := &recordingChecker{result: map[string]bool{"https://c.com": true}}
	c := NewCache(checker)

	c.Status(context.Background(), []string{"https://a.com"})
	c.Status(context.Background(), []string{"https://a.com", "https://c.com"})

	if checker.calls != 2 {
		t.Fatalf("calls = %d, want 2", checker.calls)
	}
	if len(checker.requests[1]) != 1 || checker.requests[1][0] != "https://c.com" {
		t.Errorf("second batch = %v, want only the new URL", checker.requests[1])
	}
}

func TestStatusDegradesSilentlyOnError(t *testing.T) {
	checker := &recordingChecker{err: errors.New("browser gone")}
	c := NewCache(checker)

	got := c.Status(context.Background(), []string{"https://a.com", "https://b.com"})
	if len(got) != 2 || got["https://a.com"] || got["https://b.com"] {
		t.Errorf("expected all false on checker failure, got %v", got)
	}
}

func TestNoopChecker(t *testing.T) {
	c := NewCache(NoopChecker{})
	got := c.Status(context.Background(), []string{"https://a.com"})
	if got["https://a.com"] {
		t.Error("noop checker must report not bookmarked")
	}
}

func TestResetDropsCache(t *testing.T) {
	checker := &recordingChecker{result: map[string]bool{"https://a.com": true}}
	c := NewCache(checker)

	c.Status(context.Background(), []string{"https://a.com"})
	c.Reset()
	c.Status(context.Background(), []string{"https://a.com"})

	if checker.calls != 2 {
		t.Errorf("expected re-lookup after Reset, calls=%d", checker.calls)
	}
}

func TestMissingURLsInResultAreFalse(t *testing.T) {
	checker := &recordingChecker{result: map[string]bool{}}
	c := NewCache(checker)

	got := c.Status(context.Background(), []string{"https://a.com"})
	if got["https://a.com"] {
		t.Error("URL absent from checker result must be false")
	}
}
