package bot

import (
	"errors"
	"testing"
)

func TestSessionBeginAndComplete(t *testing.T) {
	store := NewSessionStore()
	opts := []CategoryOption{
		{Ordinal: 1, ID: 10, Title: "Work"},
		{Ordinal: 2, ID: 20, Title: "Home"},
	}

	if err := store.Begin(111, 7, opts); err != nil {
		t.Fatalf("begin: %v", err)
	}
	sess, ok := store.Get(111)
	if !ok {
		t.Fatal("expected session after begin")
	}
	if sess.State() != StateAwaitingCategory {
		t.Fatalf("state = %s, expected %s", sess.State(), StateAwaitingCategory)
	}

	if err := store.Begin(111, 7, opts); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("second begin = %v, expected ErrAlreadyInProgress", err)
	}

	if err := store.SetCategory(111, opts[1]); err != nil {
		t.Fatalf("set category: %v", err)
	}
	sess, _ = store.Get(111)
	if sess.State() != StateAwaitingTitle {
		t.Fatalf("state = %s, expected %s", sess.State(), StateAwaitingTitle)
	}

	done, err := store.Complete(111, "clean the garage")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.UserID != 7 || done.CategoryID != 20 || done.CategoryTitle != "Home" || done.Title != "clean the garage" {
		t.Fatalf("unexpected completion: %+v", done)
	}
	if _, ok := store.Get(111); ok {
		t.Fatal("session should be cleared after complete")
	}
}

func TestSessionMutationsRequireDialog(t *testing.T) {
	store := NewSessionStore()

	if err := store.SetCategory(5, CategoryOption{ID: 1, Title: "x"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("set category = %v, expected ErrNoSession", err)
	}
	if _, err := store.Complete(5, "title"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("complete = %v, expected ErrNoSession", err)
	}
}

func TestSessionCompleteRequiresCategory(t *testing.T) {
	store := NewSessionStore()
	if err := store.Begin(1, 2, nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := store.Complete(1, "title"); !errors.Is(err, ErrNoCategory) {
		t.Fatalf("complete = %v, expected ErrNoCategory", err)
	}
	if _, ok := store.Get(1); !ok {
		t.Fatal("failed complete must not clear the session")
	}
}

func TestSessionCancelIdempotent(t *testing.T) {
	store := NewSessionStore()
	store.Cancel(42)

	if err := store.Begin(42, 1, nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	store.Cancel(42)
	store.Cancel(42)
	if _, ok := store.Get(42); ok {
		t.Fatal("session should be gone after cancel")
	}
	if store.Len() != 0 {
		t.Fatalf("len = %d, expected 0", store.Len())
	}
}
