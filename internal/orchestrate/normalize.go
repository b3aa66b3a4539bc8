package orchestrate

import (
	"regexp"
	"strings"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/dispatch"
)

var weekScopeConfirmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`確認`),
	regexp.MustCompile(`見せ`),
	regexp.MustCompile(`教えて`),
	regexp.MustCompile(`一覧`),
	regexp.MustCompile(`表示`),
	regexp.MustCompile(`把握`),
	regexp.MustCompile(`知りたい`),
	regexp.MustCompile(`ある\??$`),
	regexp.MustCompile(`あります\??$`),
	regexp.MustCompile(`入って`),
}

var weekScopeTokens = []string{"予定", "スケジュール", "タスク", "日程"}

// isWeekScopeConfirmationRequest reports whether userMessage looks like a
// plain "what's on my schedule this/next week" query with no specific
// weekday named.
func isWeekScopeConfirmationRequest(userMessage string) bool {
	text := strings.TrimSpace(userMessage)
	if text == "" {
		return false
	}
	if _, ok := dateresolve.ExtractRelativeWeekShift(text); !ok {
		return false
	}
	if _, ok := dateresolve.ExtractWeekday(text); ok {
		return false
	}

	hasSchedule := false
	for _, token := range weekScopeTokens {
		if strings.Contains(text, token) {
			hasSchedule = true
			break
		}
	}
	if !hasSchedule {
		return false
	}

	for _, pattern := range weekScopeConfirmPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// weekBounds returns the Monday..Sunday range enclosing date.
func weekBounds(date time.Time) (time.Time, time.Time) {
	calc := dateresolve.CalcWeekRange(date)
	start, _ := dateresolve.TryParseISODate(calc.PeriodStart)
	end, _ := dateresolve.TryParseISODate(calc.PeriodEnd)
	return start, end
}

// normalizeActionsForWeekScopeConfirmation rewrites a bare get_daily_summary
// (or a sub-week list_tasks_in_period) into the full enclosing week when the
// user's message reads as a week-scope confirmation query, so "再来週の予定
// 確認して" returns the whole week rather than a single day.
func normalizeActionsForWeekScopeConfirmation(actions []dispatch.Action, userMessage string) []dispatch.Action {
	if !isWeekScopeConfirmationRequest(userMessage) {
		return actions
	}

	normalized := make([]dispatch.Action, 0, len(actions))
	for _, action := range actions {
		switch action.Type {
		case "get_daily_summary":
			target, ok := dateresolve.TryParseISODate(toString(action.Args["date"]))
			if !ok {
				normalized = append(normalized, action)
				continue
			}
			start, end := weekBounds(target)
			normalized = append(normalized, dispatch.Action{
				Type: "list_tasks_in_period",
				Args: map[string]any{
					"start_date": start.Format("2006-01-02"),
					"end_date":   end.Format("2006-01-02"),
				},
			})

		case "list_tasks_in_period":
			start, okStart := dateresolve.TryParseISODate(toString(action.Args["start_date"]))
			end, okEnd := dateresolve.TryParseISODate(toString(action.Args["end_date"]))
			if !okStart || !okEnd {
				normalized = append(normalized, action)
				continue
			}
			if start.Equal(end) || (!start.After(end) && int(end.Sub(start).Hours()/24) < 6) {
				weekStart, weekEnd := weekBounds(start)
				updated := cloneAction(action)
				updated.Args["start_date"] = weekStart.Format("2006-01-02")
				updated.Args["end_date"] = weekEnd.Format("2006-01-02")
				normalized = append(normalized, updated)
			} else {
				normalized = append(normalized, action)
			}

		default:
			normalized = append(normalized, action)
		}
	}
	return normalized
}

var referenceDateTokens = []string{
	"その", "それ", "同日", "当日", "同じ日", "その日", "翌日", "翌々日", "前日", "前々日",
}

func hasReferenceDateToken(value string) bool {
	text := strings.TrimSpace(value)
	if text == "" {
		return false
	}
	for _, token := range referenceDateTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// injectBaseDateForReferenceResolves rewrites a resolve_schedule_expression
// whose expression carries a bare reference token ("その3日後" etc.) and no
// usable base_date into one anchored on the most recently resolved date in
// this run, replaying the resolution forward so later reference chains still
// anchor correctly within the same round.
func injectBaseDateForReferenceResolves(actions []dispatch.Action, resolvedMemory []resolvedEntry) []dispatch.Action {
	var lastResolvedDate time.Time
	haveLast := false
	for i := len(resolvedMemory) - 1; i >= 0; i-- {
		if parsed, ok := dateresolve.TryParseISODate(resolvedMemory[i].Date); ok {
			lastResolvedDate = parsed
			haveLast = true
			break
		}
	}
	if !haveLast {
		return actions
	}

	fallbackBaseTime := time.Now().Format("15:04")

	normalized := make([]dispatch.Action, 0, len(actions))
	for _, action := range actions {
		if action.Type != "resolve_schedule_expression" {
			normalized = append(normalized, action)
			continue
		}
		expression := toString(action.Args["expression"])
		if !hasReferenceDateToken(expression) {
			normalized = append(normalized, action)
			continue
		}
		if _, ok := dateresolve.TryParseISODate(toString(action.Args["base_date"])); ok {
			normalized = append(normalized, action)
			continue
		}

		updated := cloneAction(action)
		updated.Args["base_date"] = lastResolvedDate.Format("2006-01-02")
		normalized = append(normalized, updated)

		baseTime := dateresolve.NormalizeHHMM(toString(updated.Args["base_time"]), fallbackBaseTime)
		defaultTime := dateresolve.NormalizeHHMM(toString(updated.Args["default_time"]), baseTime)
		calc := dateresolve.ResolveScheduleExpression(expression, lastResolvedDate, baseTime, defaultTime)
		if !calc.OK {
			continue
		}
		if resolvedDate, ok := dateresolve.TryParseISODate(calc.Date); ok {
			lastResolvedDate = resolvedDate
		}
	}
	return normalized
}

func cloneAction(action dispatch.Action) dispatch.Action {
	args := make(map[string]any, len(action.Args))
	for k, v := range action.Args {
		args[k] = v
	}
	return dispatch.Action{Type: action.Type, Args: args}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
