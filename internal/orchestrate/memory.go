package orchestrate

import (
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/dispatch"
)

// resolvedEntry is one successfully-resolved datetime expression recorded
// during the current run, used to anchor reference-date tokens ("その3日後")
// in later resolve_schedule_expression calls.
type resolvedEntry struct {
	Expression  string
	Date        string
	Time        string
	DateTime    string
	PeriodStart string
	PeriodEnd   string
}

type resolvedKey struct {
	expression, date, time string
}

// extractResolvedMemoryFromActions re-resolves every resolve_schedule_expression
// in executed so its (expression,date,time,...) can be appended to the run's
// memory; it only records entries the expression actually resolved to.
func extractResolvedMemoryFromActions(executed []dispatch.Action, defaultDate time.Time) []resolvedEntry {
	fallbackBaseTime := time.Now().Format("15:04")

	var out []resolvedEntry
	for _, action := range executed {
		if action.Type != "resolve_schedule_expression" {
			continue
		}
		expression := toString(action.Args["expression"])
		if expression == "" {
			continue
		}
		baseDate := dateresolve.ParseDate(toString(action.Args["base_date"]), defaultDate)
		baseTime := dateresolve.NormalizeHHMM(toString(action.Args["base_time"]), fallbackBaseTime)
		defaultTime := dateresolve.NormalizeHHMM(toString(action.Args["default_time"]), baseTime)

		calc := dateresolve.ResolveScheduleExpression(expression, baseDate, baseTime, defaultTime)
		if !calc.OK {
			continue
		}
		out = append(out, resolvedEntry{
			Expression:  expression,
			Date:        calc.Date,
			Time:        calc.Time,
			DateTime:    calc.DateTime,
			PeriodStart: calc.PeriodStart,
			PeriodEnd:   calc.PeriodEnd,
		})
	}
	return out
}

// mergeResolvedMemory appends fresh entries to memory, deduping by
// (expression,date,time).
func mergeResolvedMemory(memory []resolvedEntry, fresh []resolvedEntry) []resolvedEntry {
	seen := make(map[resolvedKey]bool, len(memory))
	for _, item := range memory {
		seen[resolvedKey{item.Expression, item.Date, item.Time}] = true
	}
	for _, item := range fresh {
		key := resolvedKey{item.Expression, item.Date, item.Time}
		if seen[key] {
			continue
		}
		seen[key] = true
		memory = append(memory, item)
	}
	return memory
}
