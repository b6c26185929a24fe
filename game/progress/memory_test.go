package progress

import (
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()

	if got := store.Load(); len(got) != 0 {
		t.Errorf("Expected empty initial state, got %v", got)
	}

	state := State{1: true}
	if err := store.Save(state); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	// The store holds a copy, not the caller's map.
	state.MarkSolved(2)
	if store.Load().Solved(2) {
		t.Error("Expected store to be isolated from caller mutations")
	}
	if !store.Load().Solved(1) {
		t.Error("Expected saved state to load back")
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if got := store.Load(); len(got) != 0 {
		t.Errorf("Expected empty state after reset, got %v", got)
	}
}

func TestMemoryFactory_SharesByKey(t *testing.T) {
	factory := NewMemoryFactory()

	a, err := factory.StoreFor("alpha")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}
	if err := a.Save(State{1: true}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	again, err := factory.StoreFor("alpha")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}
	if !again.Load().Solved(1) {
		t.Error("Expected same key to share state")
	}

	other, err := factory.StoreFor("beta")
	if err != nil {
		t.Fatalf("Failed to get store: %v", err)
	}
	if len(other.Load()) != 0 {
		t.Error("Expected different keys to be isolated")
	}
}
