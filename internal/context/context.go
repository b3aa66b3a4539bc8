// Package context builds the plain-text schedule snapshot handed to the LLM
// as the orchestration loop's grounding context on every round.
package context

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

// recentDayLogWindow is how many trailing days' journal entries are folded
// into the context (today, yesterday, the day before).
const recentDayLogWindow = 3

// Builder assembles the scheduler context string from the Schedule Store.
type Builder struct {
	store *store.Store
}

// New returns a context Builder backed by s.
func New(s *store.Store) *Builder {
	return &Builder{store: s}
}

// Build renders the full scheduler context for today, in section order:
// today_date, routines, today_custom_tasks, today_step_logs, recent_day_logs.
func (b *Builder) Build(ctx context.Context, today time.Time) (string, error) {
	today = dateresolve.TruncateToDay(today)
	todayStr := today.Format("2006-01-02")

	routines, err := b.store.ListRoutines(ctx)
	if err != nil {
		return "", fmt.Errorf("listing routines: %w", err)
	}

	todayLogs, err := b.store.ListDailyLogsByDate(ctx, todayStr)
	if err != nil {
		return "", fmt.Errorf("listing today's step logs: %w", err)
	}

	customTasks, err := b.store.ListCustomTasksByDate(ctx, todayStr)
	if err != nil {
		return "", fmt.Errorf("listing today's custom tasks: %w", err)
	}

	recentDates := make([]string, recentDayLogWindow)
	for i := 0; i < recentDayLogWindow; i++ {
		recentDates[i] = today.AddDate(0, 0, -i).Format("2006-01-02")
	}
	recentLogs, err := b.store.RecentDayLogs(ctx, recentDates)
	if err != nil {
		return "", fmt.Errorf("listing recent day logs: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "today_date: %s\n", todayStr)

	sb.WriteString("routines:\n")
	writeRoutineLines(&sb, ctx, b.store, routines)

	sb.WriteString("today_custom_tasks:\n")
	writeCustomTaskLines(&sb, customTasks)

	sb.WriteString("today_step_logs:\n")
	writeStepLogLines(&sb, todayLogs)

	sb.WriteString("recent_day_logs:\n")
	writeRecentDayLogLines(&sb, recentLogs)

	return strings.TrimRight(sb.String(), "\n"), nil
}

func writeRoutineLines(sb *strings.Builder, ctx context.Context, s *store.Store, routines []*model.Routine) {
	if len(routines) == 0 {
		return
	}
	for _, r := range routines {
		steps, err := s.ListStepsByRoutine(ctx, r.ID)
		if err != nil {
			steps = nil
		}
		stepDesc := "no steps"
		if len(steps) > 0 {
			parts := make([]string, len(steps))
			for i, st := range steps {
				parts[i] = fmt.Sprintf("[%d] %s %s (%s)", st.ID, st.Time, st.Name, st.Category)
			}
			stepDesc = strings.Join(parts, ", ")
		}
		fmt.Fprintf(sb, "- Routine %d: %s | days=%s | %s\n", r.ID, r.Name, r.Days, stepDesc)
	}
}

func writeCustomTaskLines(sb *strings.Builder, tasks []*model.CustomTask) {
	if len(tasks) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	sorted := append([]*model.CustomTask(nil), tasks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	for _, task := range sorted {
		memo := ""
		if task.Memo != "" {
			memo = " memo=" + task.Memo
		}
		fmt.Fprintf(sb, "- CustomTask %d: %s %s done=%t%s\n", task.ID, task.Time, task.Name, task.Done, memo)
	}
}

func writeStepLogLines(sb *strings.Builder, logs []*model.DailyLog) {
	if len(logs) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, log := range logs {
		memo := ""
		if log.Memo != "" {
			memo = " memo=" + log.Memo
		}
		fmt.Fprintf(sb, "- StepLog step_id=%d done=%t%s\n", log.StepID, log.Done, memo)
	}
}

func writeRecentDayLogLines(sb *strings.Builder, logs []*model.DayLog) {
	if len(logs) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, log := range logs {
		fmt.Fprintf(sb, "Date: %s | Content: %s\n", log.Date, log.Content)
	}
}
