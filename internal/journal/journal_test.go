package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	events := []Event{
		{SessionID: "s1", VideoKey: "canyon", Component: "transcript", Operation: "get", Outcome: OutcomeSuccess, Duration: 1500 * time.Millisecond},
		{SessionID: "s1", VideoKey: "canyon", Component: "content", Operation: "generate", Subject: "summary", Outcome: OutcomeFailed, Detail: "quota"},
		{SessionID: "s2", VideoKey: "other", Component: "export", Operation: "create", Outcome: OutcomeSuccess},
		{SessionID: "s1", VideoKey: "canyon", Component: "clips", Operation: "ensure", Subject: "2", Outcome: OutcomeCached},
	}
	for _, e := range events {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := store.List(ctx, "canyon", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 canyon events, got %d", len(all))
	}
	if all[0].Component != "transcript" || all[0].Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected first event %+v", all[0])
	}
	if all[1].Subject != "summary" || all[1].Detail != "quota" || all[1].Outcome != OutcomeFailed {
		t.Fatalf("unexpected second event %+v", all[1])
	}
	if all[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	recent, err := store.List(ctx, "canyon", 2)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(recent) != 2 || recent[0].Component != "content" || recent[1].Component != "clips" {
		t.Fatalf("unexpected recent events %+v", recent)
	}
}

func TestRecordRequiresVideoKey(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(context.Background(), Event{Component: "x"}); err == nil {
		t.Fatal("expected error for missing video key")
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(context.Background(), Event{VideoKey: "canyon", Component: "export", Operation: "create", Outcome: OutcomeSuccess}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	events, err := reopened.List(context.Background(), "canyon", 0)
	if err != nil || len(events) != 1 {
		t.Fatalf("expected persisted event, got %v, %v", events, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	if err := r.Record(context.Background(), Event{}); err != nil {
		t.Fatalf("Nop.Record returned %v", err)
	}
}
