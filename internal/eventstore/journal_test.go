package eventstore

import (
	"context"
	"testing"
	"time"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/results"
)

func newJournaledLifecycle(t *testing.T) (*lifecycle.Lifecycle, *SQLiteStore, *HistoryProjection) {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cat := catalog.Default()
	lc := lifecycle.New(cat, generator.NewSample(cat), results.New(cat))
	t.Cleanup(func() { _ = lc.Close(context.Background()) })

	projection := NewHistoryProjection(store, 10)
	lc.AddObserver(NewJournal(store, projection, "session-1"))
	return lc, store, projection
}

func TestJournalRecordsSuccessfulRequest(t *testing.T) {
	lc, store, projection := newJournaledLifecycle(t)

	s, err := lc.Submit(context.Background(), "https://example.com/org/repo", []string{"readme", "architecture"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	events, err := store.GetByRequestID(t.Context(), s.Request.ID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// requested, four transitions, settled
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	if events[0].Type() != TypeGenerationRequested {
		t.Errorf("first event = %s", events[0].Type())
	}
	if events[len(events)-1].Type() != TypeGenerationSettled {
		t.Errorf("last event = %s", events[len(events)-1].Type())
	}

	summary, ok := projection.Get(s.Request.ID)
	if !ok {
		t.Fatal("expected request in projection")
	}
	if summary.Status != "succeeded" {
		t.Errorf("status = %q", summary.Status)
	}
	if summary.Reference != "https://example.com/org/repo" || len(summary.DocTypes) != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestJournalRecordsRejectedReference(t *testing.T) {
	lc, _, projection := newJournaledLifecycle(t)

	if _, err := lc.Submit(context.Background(), "", nil); err == nil {
		t.Fatal("expected invalid reference")
	}

	history := projection.History("session-1")
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Status != "failed" || history[0].ErrorCategory != "validation" {
		t.Errorf("unexpected summary %+v", history[0])
	}
	if got := projection.History("other"); len(got) != 0 {
		t.Errorf("expected no history for other session, got %d", len(got))
	}
}

func TestHistoryProjectionRebuild(t *testing.T) {
	lc, store, _ := newJournaledLifecycle(t)

	for _, raw := range []string{"https://example.com/org/a", "https://example.com/org/b"} {
		if _, err := lc.Submit(context.Background(), raw, []string{"readme"}); err != nil {
			t.Fatalf("submit %s: %v", raw, err)
		}
	}

	fresh := NewHistoryProjection(store, 1)
	if err := fresh.Rebuild(t.Context()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	history := fresh.History("")
	if len(history) != 1 {
		t.Fatalf("expected bounded history of 1, got %d", len(history))
	}
	if history[0].Reference != "https://example.com/org/b" {
		t.Errorf("expected newest request first, got %s", history[0].Reference)
	}
}

func TestHistoryProjectionBoundsEachSession(t *testing.T) {
	projection := NewHistoryProjection(nil, 2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	settle := func(session, request string, offset int) {
		t.Helper()
		at := base.Add(time.Duration(offset) * time.Minute)
		requested, err := NewGenerationRequested(session, request, at, GenerationRequestedPayload{Reference: "https://example.com/org/" + request})
		if err != nil {
			t.Fatalf("requested event: %v", err)
		}
		projection.Apply(requested)
		settled, err := NewGenerationSettled(session, request, at.Add(time.Second), GenerationSettledPayload{State: statusSucceeded})
		if err != nil {
			t.Fatalf("settled event: %v", err)
		}
		projection.Apply(settled)
	}

	settle("session-a", "a1", 0)
	settle("session-b", "b1", 1)
	settle("session-b", "b2", 2)
	settle("session-b", "b3", 3)

	if got := projection.History("session-a"); len(got) != 1 || got[0].RequestID != "a1" {
		t.Fatalf("expected session-a to keep a1, got %+v", got)
	}
	got := projection.History("session-b")
	if len(got) != 2 || got[0].RequestID != "b3" || got[1].RequestID != "b2" {
		t.Fatalf("expected session-b history [b3 b2], got %+v", got)
	}
	if _, ok := projection.Get("b1"); ok {
		t.Error("expected b1 to be dropped once it fell out of session-b's history")
	}
	if _, ok := projection.Get("a1"); !ok {
		t.Error("expected a1 to survive session-b's trimming")
	}
	if all := projection.History(""); len(all) != 3 || all[0].RequestID != "b3" {
		t.Errorf("expected merged history of 3 newest first, got %+v", all)
	}
}
