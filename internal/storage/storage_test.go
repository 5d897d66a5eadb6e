package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testDB creates a temporary database for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testDB(t))
}

func TestOpenDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "tabclue.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	// Migrations are idempotent — reopening must not fail.
	db2, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("reopen OpenDB failed: %v", err)
	}
	db2.Close()
}

func TestGetMissingKey(t *testing.T) {
	s := testStore(t)

	value, ok, err := s.Get(KeyTagList)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("expected ok=false for missing key, got value %q", value)
	}
}

func TestSetThenGet(t *testing.T) {
	s := testStore(t)

	doc := []byte(`[{"id":"staging-area"}]`)
	if err := s.Set(KeyTagList, doc); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(KeyTagList)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after Set")
	}
	if string(got) != string(doc) {
		t.Errorf("Get = %q, want %q", got, doc)
	}
}

func TestSetReplacesWholeDocument(t *testing.T) {
	s := testStore(t)

	if err := s.Set(KeySettings, []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeySettings, []byte(`{"theme":"light"}`)); err != nil {
		t.Fatalf("Set (replace): %v", err)
	}

	got, _, err := s.Get(KeySettings)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"theme":"light"}` {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := testStore(t)

	s.Set(KeyTagList, []byte(`["tags"]`))
	s.Set(KeyRecycleBin, []byte(`[]`))

	got, _, err := s.Get(KeyTagList)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `["tags"]` {
		t.Errorf("tagList overwritten by recycleBin write: %q", got)
	}
}

func TestSubscribeDeliversNewValue(t *testing.T) {
	s := testStore(t)

	ch := s.Subscribe(KeyTagList)
	if err := s.Set(KeyTagList, []byte(`["v1"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	select {
	case got := <-ch:
		if string(got) != `["v1"]` {
			t.Errorf("notification = %q, want %q", got, `["v1"]`)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
}

func TestSubscribeKeepsNewestForSlowReader(t *testing.T) {
	s := testStore(t)

	ch := s.Subscribe(KeyTagList)
	s.Set(KeyTagList, []byte(`["v1"]`))
	s.Set(KeyTagList, []byte(`["v2"]`))

	select {
	case got := <-ch:
		if string(got) != `["v2"]` {
			t.Errorf("expected newest value, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := testStore(t)

	ch := s.Subscribe(KeySettings)
	s.Unsubscribe(KeySettings, ch)

	if _, open := <-ch; open {
		t.Error("expected channel closed after Unsubscribe")
	}

	// A Set after Unsubscribe must not panic.
	if err := s.Set(KeySettings, []byte(`{}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
}
