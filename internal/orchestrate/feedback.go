package orchestrate

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/scheduleragent/internal/dispatch"
)

// buildRoundFeedback renders the system message fed back to the LLM after a
// round executes: what ran, what it returned, inferred-step checklist,
// resolved-datetime memory, and fixed coaching text steering the model away
// from re-proposing the same thing.
func buildRoundFeedback(
	roundIndex int,
	actions []dispatch.Action,
	results []string,
	errs []string,
	steps []inferredStep,
	completedSteps int,
	resolvedMemory []resolvedEntry,
	duplicateWarning string,
) string {
	actionLines := "- (none)"
	if len(actions) > 0 {
		var lines []string
		for _, a := range actions {
			lines = append(lines, "- "+actionJSON(a))
		}
		actionLines = strings.Join(lines, "\n")
	}

	resultLines := joinOrNone(results)
	errorLines := joinOrNone(errs)
	progressLines := formatStepProgress(steps, completedSteps)

	resolvedLines := "- (none)"
	if len(resolvedMemory) > 0 {
		start := len(resolvedMemory) - 3
		if start < 0 {
			start = 0
		}
		var lines []string
		for _, item := range resolvedMemory[start:] {
			lines = append(lines, fmt.Sprintf(
				"- expression=%s => date=%s time=%s datetime=%s period_start=%s period_end=%s",
				item.Expression, item.Date, item.Time, item.DateTime, item.PeriodStart, item.PeriodEnd))
		}
		resolvedLines = strings.Join(lines, "\n")
	}

	duplicateLines := ""
	if duplicateWarning != "" {
		duplicateLines = "duplicate_warning:\n- " + duplicateWarning + "\n"
	}

	return fmt.Sprintf(
		"Execution round %d completed.\n"+
			"inferred_request_progress:\n%s\n"+
			"resolved_datetime_memory:\n%s\n"+
			"%s"+
			"executed_actions:\n%s\n"+
			"execution_results:\n%s\n"+
			"execution_errors:\n%s\n"+
			"元のユーザー要望を満たすために追加操作が必要ならツールを続けて呼んでください。\n"+
			"要望が満たされた場合はツールを呼ばず、自然な日本語の最終回答のみを返してください。\n"+
			"今日以外の日付を扱う場合（相対表現・曜日指定・明示日付を含む）は resolve_schedule_expression を先に実行してから参照/更新ツールを呼んでください。\n"+
			"resolve_schedule_expression が「日付表現を解釈できませんでした」を返した場合は、同じ expression を繰り返さず、記念日名や曖昧語を具体的な月日/ISO日付へ言い換えて再計算してください。\n"+
			"「その3日後」「その翌日」など参照語つき日時は、resolved_datetime_memory の直近 date を base_date に設定して計算してください。\n"+
			"直前と同じ参照/計算アクションを繰り返さず、next_expected_step を優先してください。\n"+
			"同じ作成・更新系のアクションを重複して実行しないでください。",
		roundIndex, progressLines, resolvedLines, duplicateLines, actionLines, resultLines, errorLines,
	)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func actionJSON(action dispatch.Action) string {
	return canonicalJSON(action)
}

// internalControlErrors are the synthetic error lines the loop itself
// appends to steer/terminate a run; reply post-processing must never let
// these reach the user.
var internalControlErrors = []string{
	"同一アクションが連続して提案されたため、重複実行を停止しました。",
	"進捗が得られない状態が続いたため処理を終了しました。",
}

// IsInternalControlError reports whether line is one of the loop's own
// termination/guard messages (exact match) or the two parameterized forms
// (same-read-streak stop, round-limit stop) it also emits.
func IsInternalControlError(line string) bool {
	for _, marker := range internalControlErrors {
		if line == marker {
			return true
		}
	}
	if strings.HasPrefix(line, "同じ参照/計算アクションが") && strings.HasSuffix(line, "処理を終了しました。") {
		return true
	}
	if strings.HasPrefix(line, "複数ステップ実行の上限") && strings.HasSuffix(line, "処理を終了しました。") {
		return true
	}
	if line == "同一の更新アクションが再提案されたため再実行をスキップしました。" {
		return true
	}
	return false
}
