package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lotas/tabclue/internal/types"
)

type wireTab struct {
	ID         int    `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	FavIconURL string `json:"favIconUrl"`
}

// ParseSnapshot converts an IncomingMsg of type "snapshot" into the list
// of currently open tabs, in browser order.
func ParseSnapshot(msg IncomingMsg) ([]types.OpenTab, error) {
	var tabs []wireTab
	if err := json.Unmarshal(msg.Tabs, &tabs); err != nil {
		return nil, fmt.Errorf("parse tabs: %w", err)
	}

	open := make([]types.OpenTab, 0, len(tabs))
	for _, wt := range tabs {
		open = append(open, types.OpenTab{
			Handle:     wt.ID,
			URL:        wt.URL,
			Title:      wt.Title,
			FavIconURL: wt.FavIconURL,
		})
	}
	return open, nil
}

// WaitSnapshot blocks until the extension sends its open-tab snapshot,
// which it does right after connecting.
func (s *Server) WaitSnapshot(ctx context.Context, timeout time.Duration) ([]types.OpenTab, error) {
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-s.Messages():
			if msg.Type != "snapshot" {
				continue
			}
			return ParseSnapshot(msg)
		case <-deadline:
			return nil, fmt.Errorf("timed out waiting for extension (%s)", timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
