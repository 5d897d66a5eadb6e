package firefox

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
)

// mozlz4 builds a mozlz4 payload around the given plaintext.
func mozlz4(t *testing.T, plain []byte) []byte {
	t.Helper()
	dst := make([]byte, lz4.CompressBlockBound(len(plain)))
	n, err := lz4.CompressBlock(plain, dst, nil)
	if err != nil {
		t.Fatalf("lz4.CompressBlock failed: %v", err)
	}
	payload := append([]byte{}, mozLz4Magic...)
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(plain)))
	payload = append(payload, size...)
	return append(payload, dst[:n]...)
}

func TestDecompressMozLz4(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := []byte(`{"windows":[{"tabs":[]}]}`)
		got, err := DecompressMozLz4(mozlz4(t, original))
		if err != nil {
			t.Fatalf("DecompressMozLz4 returned error: %v", err)
		}
		if string(got) != string(original) {
			t.Errorf("expected %q, got %q", original, got)
		}
	})

	t.Run("invalid magic", func(t *testing.T) {
		if _, err := DecompressMozLz4([]byte("BADMAGIC\x00\x00\x00\x00some data")); err == nil {
			t.Fatal("expected error for invalid header, got nil")
		}
	})

	t.Run("truncated header", func(t *testing.T) {
		if _, err := DecompressMozLz4([]byte("mozLz40")); err == nil {
			t.Fatal("expected error for too-short data, got nil")
		}
	})
}

const sampleSession = `{
  "windows": [
    {
      "tabs": [
        {
          "entries": [{"url": "https://example.com", "title": "Example"}],
          "index": 1,
          "image": "https://example.com/favicon.ico"
        },
        {
          "entries": [
            {"url": "https://old.com", "title": "Old Page"},
            {"url": "https://current.com", "title": "Current Page"}
          ],
          "index": 2
        },
        {"entries": [], "index": 1}
      ]
    },
    {
      "tabs": [
        {
          "entries": [{"url": "https://second-window.com", "title": "Other"}],
          "index": 99
        }
      ]
    }
  ]
}`

func TestParseSessionTabs(t *testing.T) {
	tabs, err := ParseSessionTabs([]byte(sampleSession))
	if err != nil {
		t.Fatalf("ParseSessionTabs returned error: %v", err)
	}

	// Entry-less tab is skipped; both windows contribute.
	if len(tabs) != 3 {
		t.Fatalf("expected 3 tabs, got %d", len(tabs))
	}

	if tabs[0].URL != "https://example.com" || tabs[0].Title != "Example" {
		t.Errorf("tab 0: got %q / %q", tabs[0].URL, tabs[0].Title)
	}
	if tabs[0].FavIconURL != "https://example.com/favicon.ico" {
		t.Errorf("tab 0 favicon: got %q", tabs[0].FavIconURL)
	}
	if tabs[0].Handle != 0 {
		t.Errorf("session tabs carry no handle, got %d", tabs[0].Handle)
	}

	// index=2 selects entries[1].
	if tabs[1].URL != "https://current.com" {
		t.Errorf("tab 1: expected current entry, got %q", tabs[1].URL)
	}

	// Out-of-range index clamps to the last entry.
	if tabs[2].URL != "https://second-window.com" {
		t.Errorf("tab 2: got %q", tabs[2].URL)
	}
}

func TestParseSessionTabsMalformed(t *testing.T) {
	if _, err := ParseSessionTabs([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestReadSessionTabs(t *testing.T) {
	profileDir := t.TempDir()
	backupDir := filepath.Join(profileDir, "sessionstore-backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("no session file", func(t *testing.T) {
		if _, err := ReadSessionTabs(profileDir); err == nil {
			t.Fatal("expected error when no session file exists")
		}
	})

	t.Run("previous.jsonlz4 fallback", func(t *testing.T) {
		path := filepath.Join(backupDir, "previous.jsonlz4")
		if err := os.WriteFile(path, mozlz4(t, []byte(sampleSession)), 0644); err != nil {
			t.Fatal(err)
		}
		tabs, err := ReadSessionTabs(profileDir)
		if err != nil {
			t.Fatalf("ReadSessionTabs returned error: %v", err)
		}
		if len(tabs) != 3 {
			t.Fatalf("expected 3 tabs, got %d", len(tabs))
		}
	})

	t.Run("recovery.jsonlz4 preferred", func(t *testing.T) {
		recovery := `{"windows":[{"tabs":[{"entries":[{"url":"https://recovery.com","title":"R"}],"index":1}]}]}`
		path := filepath.Join(backupDir, "recovery.jsonlz4")
		if err := os.WriteFile(path, mozlz4(t, []byte(recovery)), 0644); err != nil {
			t.Fatal(err)
		}
		tabs, err := ReadSessionTabs(profileDir)
		if err != nil {
			t.Fatalf("ReadSessionTabs returned error: %v", err)
		}
		if len(tabs) != 1 || tabs[0].URL != "https://recovery.com" {
			t.Fatalf("expected recovery session to win, got %+v", tabs)
		}
	})
}
