package bridge

import (
	"encoding/json"
	"testing"
)

func TestParseSnapshot(t *testing.T) {
	snapshot := `{
		"type": "snapshot",
		"tabs": [
			{"id": 1, "url": "https://example.com", "title": "Example", "favIconUrl": "https://example.com/favicon.ico"},
			{"id": 2, "url": "https://other.com", "title": "Other"}
		]
	}`

	var msg IncomingMsg
	if err := json.Unmarshal([]byte(snapshot), &msg); err != nil {
		t.Fatal(err)
	}

	open, err := ParseSnapshot(msg)
	if err != nil {
		t.Fatal(err)
	}

	if len(open) != 2 {
		t.Fatalf("got %d tabs, want 2", len(open))
	}
	if open[0].Handle != 1 {
		t.Errorf("tab Handle = %d, want 1", open[0].Handle)
	}
	if open[0].URL != "https://example.com" {
		t.Errorf("tab URL = %q", open[0].URL)
	}
	if open[0].FavIconURL != "https://example.com/favicon.ico" {
		t.Errorf("tab FavIconURL = %q", open[0].FavIconURL)
	}
	if open[1].FavIconURL != "" {
		t.Errorf("missing favicon should be empty, got %q", open[1].FavIconURL)
	}
}

func TestParseSnapshotEmpty(t *testing.T) {
	var msg IncomingMsg
	if err := json.Unmarshal([]byte(`{"type":"snapshot","tabs":[]}`), &msg); err != nil {
		t.Fatal(err)
	}
	open, err := ParseSnapshot(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Errorf("got %d tabs, want 0", len(open))
	}
}

func TestParseSnapshotMalformed(t *testing.T) {
	msg := IncomingMsg{Type: "snapshot", Tabs: json.RawMessage(`{"not":"an array"}`)}
	if _, err := ParseSnapshot(msg); err == nil {
		t.Error("expected error for malformed tabs")
	}
}

func TestDispatchRoutesResponses(t *testing.T) {
	s := New(0)

	ch := make(chan IncomingMsg, 1)
	s.mu.Lock()
	s.pending["cmd-42"] = ch
	s.mu.Unlock()

	s.dispatch(IncomingMsg{ID: "cmd-42", Bookmarks: map[string]bool{"https://a.com": true}})

	select {
	case resp := <-ch:
		if !resp.Bookmarks["https://a.com"] {
			t.Errorf("response payload lost: %+v", resp)
		}
	default:
		t.Fatal("response not routed to waiter")
	}

	// Unsolicited messages go to the Messages channel.
	s.dispatch(IncomingMsg{Type: "snapshot"})
	select {
	case msg := <-s.Messages():
		if msg.Type != "snapshot" {
			t.Errorf("unexpected message: %+v", msg)
		}
	default:
		t.Fatal("unsolicited message not delivered")
	}
}
