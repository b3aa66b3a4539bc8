package orchestrate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
)

// inferredStep is one coarse stage the user's utterance is expected to walk
// through (e.g. "confirm the schedule" before "add a task").
type inferredStep struct {
	ID          string
	Label       string
	ActionTypes map[string]bool
}

type stepEvent struct {
	pos int
	id  string
}

var stepPatterns = []struct {
	id      string
	pattern *regexp.Regexp
}{
	{"confirm", regexp.MustCompile(`確認|見せて|見せる|一覧|表示|サマリー`)},
	{"add", regexp.MustCompile(`追加|入れて|登録`)},
	{"complete", regexp.MustCompile(`完了に|完了して|終わったら|チェックして`)},
	{"append_log", regexp.MustCompile(`日報.*追記|追記.*日報|日報.*メモ|メモ.*日報`)},
	{"reschedule", regexp.MustCompile(`ずらして|後ろに|前倒し|時間.*変更|時刻.*変更`)},
}

var stepDefinitions = map[string]struct {
	label       string
	actionTypes map[string]bool
}{
	"calculate":   {"日時計算", map[string]bool{"resolve_schedule_expression": true}},
	"confirm":     {"予定確認", map[string]bool{"list_tasks_in_period": true, "get_daily_summary": true, "get_day_log": true}},
	"add":         {"予定追加", map[string]bool{"create_custom_task": true, "add_routine": true, "add_step": true}},
	"complete":    {"完了更新", map[string]bool{"toggle_custom_task": true, "toggle_step": true}},
	"append_log":  {"日報更新", map[string]bool{"append_day_log": true, "update_log": true}},
	"reschedule":  {"時刻変更", map[string]bool{"update_custom_task_time": true, "update_step_time": true}},
}

// inferRequestedSteps scans userMessage for the coarse-step trigger phrases
// (in utterance order) and turns them into an ordered plan the orchestration
// loop can check executed action types against.
func inferRequestedSteps(userMessage string) []inferredStep {
	text := strings.TrimSpace(userMessage)
	if text == "" {
		return nil
	}

	var events []stepEvent
	for _, sp := range stepPatterns {
		for _, loc := range sp.pattern.FindAllStringIndex(text, -1) {
			events = append(events, stepEvent{pos: loc[0], id: sp.id})
		}
	}
	if dateresolve.IsRelativeDatetimeText(text) {
		events = append(events, stepEvent{pos: 0, id: "calculate"})
	}
	if len(events) == 0 {
		return nil
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].pos < events[j].pos })

	var steps []inferredStep
	for _, ev := range events {
		def, ok := stepDefinitions[ev.id]
		if !ok {
			continue
		}
		if len(steps) > 0 && steps[len(steps)-1].ID == ev.id {
			continue
		}
		steps = append(steps, inferredStep{ID: ev.id, Label: def.label, ActionTypes: def.actionTypes})
	}
	return steps
}

// formatStepProgress renders the checklist block embedded in round feedback
// (and the up-front planning message), marking the first `completed` steps
// done and naming the next expected one.
func formatStepProgress(steps []inferredStep, completed int) string {
	if len(steps) == 0 {
		return "(none)"
	}

	var lines []string
	nextLabel := ""
	for i, step := range steps {
		idx := i + 1
		done := idx <= completed
		marker := " "
		if done {
			marker = "x"
		}
		lines = append(lines, fmt.Sprintf("- [%s] %d. %s", marker, idx, step.Label))
		if !done && nextLabel == "" {
			nextLabel = step.Label
		}
	}
	if nextLabel != "" {
		lines = append(lines, "next_expected_step: "+nextLabel)
	} else {
		lines = append(lines, "next_expected_step: (all completed)")
	}
	return strings.Join(lines, "\n")
}
