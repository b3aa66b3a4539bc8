package chatlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/orchestrate"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent_RoundTripsTraceAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := RecordUser(ctx, s, "歯医者の予定を入れて"); err != nil {
		t.Fatalf("RecordUser() error = %v", err)
	}
	trace := []orchestrate.TraceRound{
		{Round: 1, Actions: []orchestrate.TraceAction{{Type: "create_custom_task"}}, Results: []string{"ok"}},
	}
	if err := RecordAssistant(ctx, s, "登録しました！", trace); err != nil {
		t.Fatalf("RecordAssistant() error = %v", err)
	}

	entries, err := Recent(ctx, s, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Role != model.RoleUser || entries[0].Content != "歯医者の予定を入れて" {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Role != model.RoleAssistant || entries[1].Content != "登録しました！" {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
	if len(entries[1].Trace) != 1 || entries[1].Trace[0].Round != 1 {
		t.Fatalf("entries[1].Trace = %+v", entries[1].Trace)
	}
}

func TestToMessages_DropsTrace(t *testing.T) {
	entries := []Entry{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi", Trace: []orchestrate.TraceRound{{Round: 1}}},
	}
	messages := ToMessages(entries)
	if len(messages) != 2 || messages[0].Role != "user" || messages[1].Content != "hi" {
		t.Fatalf("messages = %+v", messages)
	}
}

func TestClear_RemovesAllEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := RecordUser(ctx, s, "x"); err != nil {
		t.Fatalf("RecordUser() error = %v", err)
	}
	if err := Clear(ctx, s); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	entries, err := Recent(ctx, s, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v, want none after Clear", entries)
	}
}
