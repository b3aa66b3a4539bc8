package reply

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/javiermolinar/scheduleragent/internal/llm"
	"github.com/javiermolinar/scheduleragent/internal/orchestrate"
	"github.com/javiermolinar/scheduleragent/internal/tools"
)

type stubClient struct {
	reply string
	err   error
}

func (s stubClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return s.reply, s.err
}

func (s stubClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	return nil
}

func (s stubClient) ChatWithTools(ctx context.Context, messages []llm.Message, catalog []tools.Spec, choice llm.ToolChoice) (llm.ChatResult, error) {
	return llm.ChatResult{}, nil
}

func TestBuildFinalReply_NoResultsPassesModelReplyThrough(t *testing.T) {
	got := BuildFinalReply(context.Background(), stubClient{}, "こんにちは", "こんにちは！元気です。", nil, nil)
	if got != "こんにちは！元気です。" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildFinalReply_NoResultsEmptyReplyDefaultsToAcknowledgement(t *testing.T) {
	got := BuildFinalReply(context.Background(), stubClient{}, "x", "", nil, nil)
	if got != "了解しました。" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildFinalReply_UsesSummarizerOutputWhenNotMechanical(t *testing.T) {
	client := stubClient{reply: "歯医者の予定を10時に登録しました！ご参考までに🦷"}
	results := []string{"カスタムタスク「歯医者」(ID: 1) を 2026-07-31 の 10:00 に追加しました。"}

	got := BuildFinalReply(context.Background(), client, "歯医者の予定を入れて", "", results, nil)
	if got != client.reply {
		t.Fatalf("got %q, want summarizer reply", got)
	}
}

func TestBuildFinalReply_FallsBackWhenSummarizerErrors(t *testing.T) {
	client := stubClient{err: errors.New("boom")}
	results := []string{"カスタムタスク「歯医者」(ID: 1) を 2026-07-31 の 10:00 に追加しました。"}

	got := BuildFinalReply(context.Background(), client, "歯医者の予定を入れて", "", results, nil)
	if !strings.Contains(got, "「歯医者」を追加しました") {
		t.Fatalf("got %q, want fallback template mentioning the task", got)
	}
}

func TestBuildFinalReply_FallsBackWhenSummarizerLooksMechanical(t *testing.T) {
	client := stubClient{reply: "【実行結果】\n- カスタムタスク「歯医者」(ID: 1) を追加しました。"}
	results := []string{"カスタムタスク「歯医者」(ID: 1) を 2026-07-31 の 10:00 に追加しました。"}

	got := BuildFinalReply(context.Background(), client, "歯医者の予定を入れて", "", results, nil)
	if strings.Contains(got, "【実行結果】") {
		t.Fatalf("got %q, want mechanical markers stripped via fallback", got)
	}
}

func TestBuildFinalReply_HidesInternalControlErrorsFromFallback(t *testing.T) {
	client := stubClient{err: errors.New("boom")}
	errs := []string{"同一アクションが連続して提案されたため、重複実行を停止しました。"}

	got := BuildFinalReply(context.Background(), client, "タスクを追加して", "", nil, errs)
	if strings.Contains(got, "重複実行を停止しました") {
		t.Fatalf("got %q, want internal control error hidden", got)
	}
}

func TestBuildFinalReply_ShowsVisibleErrors(t *testing.T) {
	client := stubClient{err: errors.New("boom")}
	errs := []string{"カスタムタスク名を指定してください。"}

	got := BuildFinalReply(context.Background(), client, "タスクを追加して", "", nil, errs)
	if !strings.Contains(got, "カスタムタスク名を指定してください。") {
		t.Fatalf("got %q, want visible error surfaced", got)
	}
}

func TestIsVisibleError_MatchesOrchestrateInternalMarkers(t *testing.T) {
	if isVisibleError("進捗が得られない状態が続いたため処理を終了しました。") {
		t.Fatal("expected internal control error to be hidden")
	}
	if !orchestrate.IsInternalControlError("進捗が得られない状態が続いたため処理を終了しました。") {
		t.Fatal("sanity check: orchestrate marker mismatch")
	}
	if !isVisibleError("何かエラーが発生しました。") {
		t.Fatal("expected a normal error to remain visible")
	}
}

func TestRemoveNoScheduleLines(t *testing.T) {
	in := "タスクA\n予定なし\nタスクB"
	got := removeNoScheduleLines(in)
	if strings.Contains(got, "予定なし") {
		t.Fatalf("got %q, want the schedule-empty line removed", got)
	}
	if !strings.Contains(got, "タスクA") || !strings.Contains(got, "タスクB") {
		t.Fatalf("got %q, want other lines preserved", got)
	}
}

func TestFriendlyResultLines_AddCustomTask(t *testing.T) {
	lines := friendlyResultLines("カスタムタスク「歯医者」(ID: 1) を 2026-07-31 の 10:00 に追加しました。")
	if len(lines) != 1 || !strings.Contains(lines[0], "歯医者") || !strings.Contains(lines[0], "📅") {
		t.Fatalf("lines = %v", lines)
	}
}

func TestFriendlyResultLines_ToggleCustomTask(t *testing.T) {
	lines := friendlyResultLines("カスタムタスク「歯医者」を 完了 に更新しました。")
	if len(lines) != 1 || !strings.Contains(lines[0], "✅") {
		t.Fatalf("lines = %v", lines)
	}
}

func TestFriendlyResultLines_FallsBackToRawBulletForUnrecognizedResult(t *testing.T) {
	lines := friendlyResultLines("何か知らない結果文字列")
	if len(lines) != 1 || lines[0] != "・何か知らない結果文字列" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestAttachAndExtractExecutionTrace_RoundTrips(t *testing.T) {
	trace := []orchestrate.TraceRound{
		{Round: 1, Actions: []orchestrate.TraceAction{{Type: "create_custom_task", Params: map[string]any{"name": "歯医者"}}}, Results: []string{"ok"}},
	}
	content := "歯医者の予定を登録しました！"

	stored := AttachExecutionTrace(content, trace)
	if !strings.Contains(stored, execTraceMarkerPrefix) {
		t.Fatalf("stored = %q, want marker attached", stored)
	}

	body, got := ExtractExecutionTrace(stored)
	if body != content {
		t.Fatalf("body = %q, want %q", body, content)
	}
	if len(got) != 1 || got[0].Round != 1 || got[0].Actions[0].Type != "create_custom_task" {
		t.Fatalf("got = %+v", got)
	}
}

func TestExtractExecutionTrace_NoMarkerReturnsOriginal(t *testing.T) {
	body, trace := ExtractExecutionTrace("plain reply with no marker")
	if body != "plain reply with no marker" || trace != nil {
		t.Fatalf("body = %q, trace = %v", body, trace)
	}
}

func TestAttachExecutionTrace_EmptyTraceReturnsContentUnchanged(t *testing.T) {
	got := AttachExecutionTrace("hello", nil)
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}
