package context

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

// TimelineItem is one entry in a day's merged routine-step/custom-task
// timeline, sorted by scheduled time.
type TimelineItem struct {
	Type        string // "routine" or "custom"
	RoutineName string
	Name        string
	Category    string
	Time        string
	ID          int64
	Done        bool
	Memo        string
}

// WeekdayRoutines returns the routines active on the given 0=Mon..6=Sun index.
func WeekdayRoutines(ctx context.Context, s *store.Store, mondayZeroWeekday int) ([]*model.Routine, error) {
	all, err := s.ListRoutines(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	var matched []*model.Routine
	for _, r := range all {
		if r.ActiveOn(mondayZeroWeekday) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Timeline merges the day's active routine steps and custom tasks into a
// single time-sorted view, and reports the completion rate (0-100).
func Timeline(ctx context.Context, s *store.Store, date time.Time) ([]TimelineItem, int, error) {
	dateStr := date.Format("2006-01-02")
	routines, err := WeekdayRoutines(ctx, s, dateresolve.MondayZero(date))
	if err != nil {
		return nil, 0, err
	}
	customTasks, err := s.ListCustomTasksByDate(ctx, dateStr)
	if err != nil {
		return nil, 0, fmt.Errorf("listing custom tasks: %w", err)
	}

	var items []TimelineItem
	total, completed := 0, 0

	for _, r := range routines {
		steps, err := s.ListStepsByRoutine(ctx, r.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("listing steps for routine %d: %w", r.ID, err)
		}
		for _, st := range steps {
			log, err := s.GetDailyLog(ctx, dateStr, st.ID)
			if err != nil {
				return nil, 0, fmt.Errorf("getting daily log for step %d: %w", st.ID, err)
			}
			item := TimelineItem{
				Type:        "routine",
				RoutineName: r.Name,
				Name:        st.Name,
				Category:    string(st.Category),
				Time:        st.Time,
				ID:          st.ID,
			}
			if log != nil {
				item.Done = log.Done
				item.Memo = log.Memo
			}
			items = append(items, item)
			total++
			if log != nil && log.Done {
				completed++
			}
		}
	}

	for _, task := range customTasks {
		items = append(items, TimelineItem{
			Type:        "custom",
			RoutineName: "Personal",
			Name:        task.Name,
			Category:    "Custom",
			Time:        task.Time,
			ID:          task.ID,
			Done:        task.Done,
			Memo:        task.Memo,
		})
		total++
		if task.Done {
			completed++
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Time < items[j].Time })

	rate := 0
	if total > 0 {
		rate = (completed * 100) / total
	}
	return items, rate, nil
}
