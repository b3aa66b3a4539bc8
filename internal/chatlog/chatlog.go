// Package chatlog persists the chat transcript and round-trips each
// assistant turn's execution trace through it, so a later process (or the
// `history` CLI subcommand) can replay what actually ran.
package chatlog

import (
	"context"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/llm"
	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/orchestrate"
	"github.com/javiermolinar/scheduleragent/internal/reply"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

// Entry is one transcript turn as read back from storage, with any
// attached execution trace already split out of its content.
type Entry struct {
	ID        int64
	Role      model.ChatRole
	Content   string
	Timestamp string
	Trace     []orchestrate.TraceRound
}

// RecordUser appends a user turn to the transcript.
func RecordUser(ctx context.Context, s *store.Store, content string) error {
	return append_(ctx, s, model.RoleUser, content)
}

// RecordAssistant appends an assistant turn to the transcript, attaching
// trace (if any) via the inline marker so it survives storage as plain text.
func RecordAssistant(ctx context.Context, s *store.Store, content string, trace []orchestrate.TraceRound) error {
	return append_(ctx, s, model.RoleAssistant, reply.AttachExecutionTrace(content, trace))
}

func append_(ctx context.Context, s *store.Store, role model.ChatRole, content string) error {
	h := &model.ChatHistory{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return s.AppendChatHistory(ctx, h)
}

// Recent returns the last n transcript entries, oldest first, splitting any
// attached execution trace back out of each entry's stored content.
func Recent(ctx context.Context, s *store.Store, n int) ([]Entry, error) {
	rows, err := s.RecentChatHistory(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(rows))
	for i, row := range rows {
		body, trace := reply.ExtractExecutionTrace(row.Content)
		out[i] = Entry{ID: row.ID, Role: row.Role, Content: body, Timestamp: row.Timestamp, Trace: trace}
	}
	return out, nil
}

// Clear deletes the entire stored transcript.
func Clear(ctx context.Context, s *store.Store) error {
	return s.ClearChatHistory(ctx)
}

// ToMessages renders entries as the plain role/content pairs an LLM client
// expects, dropping the execution trace (it's metadata for humans, not
// model input).
func ToMessages(entries []Entry) []llm.Message {
	out := make([]llm.Message, len(entries))
	for i, e := range entries {
		out[i] = llm.Message{Role: string(e.Role), Content: e.Content}
	}
	return out
}
