package progress

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	store, err := db.StoreFor("abcd")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}

	if got := store.Load(); len(got) != 0 {
		t.Errorf("Expected empty initial state, got %v", got)
	}

	if err := store.Save(State{1: true, 4: true}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded := store.Load()
	if !loaded.Solved(1) || !loaded.Solved(4) {
		t.Errorf("Expected levels 1 and 4 solved, got %v", loaded)
	}
	if loaded.Solved(2) {
		t.Error("Expected level 2 unsolved")
	}

	// A second save replaces, never appends.
	if err := store.Save(State{2: true}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	loaded = store.Load()
	if loaded.Solved(1) {
		t.Error("Expected old rows replaced")
	}
	if !loaded.Solved(2) {
		t.Error("Expected level 2 solved")
	}
}

func TestSQLiteStore_KeysAreIsolated(t *testing.T) {
	db := openTestDB(t)

	a, err := db.StoreFor("alpha")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}
	b, err := db.StoreFor("beta")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}

	if err := a.Save(State{1: true}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if len(b.Load()) != 0 {
		t.Error("Expected keys to be isolated")
	}
}

func TestSQLiteStore_Reset(t *testing.T) {
	db := openTestDB(t)

	store, err := db.StoreFor("abcd")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}
	if err := store.Save(State{1: true}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if got := store.Load(); len(got) != 0 {
		t.Errorf("Expected empty state after reset, got %v", got)
	}
}

func TestSQLiteDB_EmptyKey(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.StoreFor(""); err == nil {
		t.Error("Expected error for empty key")
	}
}
