package context

import (
	gocontext "context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/model"
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

func createRoutine(t *testing.T, s *store.Store, r *model.Routine) *model.Routine {
	t.Helper()
	if err := s.CreateRoutine(gocontext.Background(), r); err != nil {
		t.Fatalf("CreateRoutine() error = %v", err)
	}
	return r
}

func createStep(t *testing.T, s *store.Store, st *model.Step) *model.Step {
	t.Helper()
	ctx := gocontext.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := tx.CreateStep(ctx, st); err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return st
}

func createCustomTask(t *testing.T, s *store.Store, ct *model.CustomTask) *model.CustomTask {
	t.Helper()
	ctx := gocontext.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := tx.CreateCustomTask(ctx, ct); err != nil {
		t.Fatalf("CreateCustomTask() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return ct
}

func upsertDailyLog(t *testing.T, s *store.Store, date string, stepID int64, done bool, memo string) {
	t.Helper()
	ctx := gocontext.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := tx.UpsertDailyLog(ctx, date, stepID, done, memo); err != nil {
		t.Fatalf("UpsertDailyLog() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func appendDayLog(t *testing.T, s *store.Store, date, content string) {
	t.Helper()
	ctx := gocontext.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := tx.AppendDayLog(ctx, date, content); err != nil {
		t.Fatalf("AppendDayLog() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func fixtureToday() time.Time {
	return time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
}

func TestBuild_EmptyState(t *testing.T) {
	s := newTestStore(t)
	b := New(s)

	out, err := b.Build(gocontext.Background(), fixtureToday())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantLines := []string{
		"today_date: 2026-07-31",
		"routines:",
		"today_custom_tasks:",
		"today_step_logs:",
		"recent_day_logs:",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("Build() output missing line %q, got:\n%s", line, out)
		}
	}

	noneCount := strings.Count(out, "(none)")
	if noneCount != 3 {
		t.Errorf("Build() (none) placeholder count = %d, want 3 (custom_tasks/step_logs/recent_day_logs; the routines section has no (none) fallback), got:\n%s", noneCount, out)
	}
}

func TestBuild_SectionOrder(t *testing.T) {
	s := newTestStore(t)
	b := New(s)

	out, err := b.Build(gocontext.Background(), fixtureToday())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	sections := []string{"today_date:", "routines:", "today_custom_tasks:", "today_step_logs:", "recent_day_logs:"}
	lastIdx := -1
	for _, section := range sections {
		idx := strings.Index(out, section)
		if idx == -1 {
			t.Fatalf("section %q not found", section)
		}
		if idx < lastIdx {
			t.Errorf("section %q appeared out of order", section)
		}
		lastIdx = idx
	}
}

func TestBuild_RoutineWithSteps(t *testing.T) {
	ctx := gocontext.Background()
	s := newTestStore(t)
	b := New(s)

	r := createRoutine(t, s, &model.Routine{Name: "Morning", Days: "0,1,2,3,4"})
	createStep(t, s, &model.Step{RoutineID: r.ID, Name: "Stretch", Time: "07:00", Category: model.CategoryLifestyle})
	createStep(t, s, &model.Step{RoutineID: r.ID, Name: "Check email", Time: "08:00", Category: model.CategoryOther})

	out, err := b.Build(ctx, fixtureToday())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(out, "Morning") {
		t.Errorf("Build() output missing routine name, got:\n%s", out)
	}
	if !strings.Contains(out, "07:00 Stretch") {
		t.Errorf("Build() output missing first step, got:\n%s", out)
	}
	if !strings.Contains(out, "08:00 Check email") {
		t.Errorf("Build() output missing second step, got:\n%s", out)
	}
}

func TestBuild_CustomTaskWithAndWithoutMemo(t *testing.T) {
	ctx := gocontext.Background()
	s := newTestStore(t)
	b := New(s)

	today := fixtureToday()
	dateStr := today.Format("2006-01-02")

	createCustomTask(t, s, &model.CustomTask{Date: dateStr, Name: "Dentist", Time: "10:00"})
	createCustomTask(t, s, &model.CustomTask{Date: dateStr, Name: "Call mom", Time: "18:00", Memo: "her birthday"})

	out, err := b.Build(ctx, today)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(out, "10:00 Dentist done=false") {
		t.Errorf("Build() output missing memo-less task, got:\n%s", out)
	}
	if !strings.Contains(out, "18:00 Call mom done=false memo=her birthday") {
		t.Errorf("Build() output missing task with memo, got:\n%s", out)
	}
}

func TestBuild_StepLogWithAndWithoutMemo(t *testing.T) {
	ctx := gocontext.Background()
	s := newTestStore(t)
	b := New(s)

	today := fixtureToday()
	dateStr := today.Format("2006-01-02")

	r := createRoutine(t, s, &model.Routine{Name: "Evening", Days: "0,1,2,3,4,5,6"})
	st1 := createStep(t, s, &model.Step{RoutineID: r.ID, Name: "Read", Time: "21:00", Category: model.CategoryOther})
	st2 := createStep(t, s, &model.Step{RoutineID: r.ID, Name: "Meditate", Time: "21:30", Category: model.CategoryOther})

	upsertDailyLog(t, s, dateStr, st1.ID, true, "")
	upsertDailyLog(t, s, dateStr, st2.ID, false, "skipped, too tired")

	out, err := b.Build(ctx, today)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(out, "step_id="+strconv.FormatInt(st1.ID, 10)+" done=true") {
		t.Errorf("Build() output missing memo-less step log, got:\n%s", out)
	}
	if !strings.Contains(out, "step_id="+strconv.FormatInt(st2.ID, 10)+" done=false memo=skipped, too tired") {
		t.Errorf("Build() output missing step log with memo, got:\n%s", out)
	}
}

func TestBuild_RecentDayLogsSkipsEmptyAndRespectsWindow(t *testing.T) {
	ctx := gocontext.Background()
	s := newTestStore(t)
	b := New(s)

	today := fixtureToday()
	twoDaysAgo := today.AddDate(0, 0, -2)
	threeDaysAgo := today.AddDate(0, 0, -3)

	appendDayLog(t, s, today.Format("2006-01-02"), "had a productive day")
	// yesterday left empty on purpose — must be skipped.
	appendDayLog(t, s, twoDaysAgo.Format("2006-01-02"), "lazy sunday")
	appendDayLog(t, s, threeDaysAgo.Format("2006-01-02"), "outside the window")

	out, err := b.Build(ctx, today)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(out, "had a productive day") {
		t.Errorf("Build() output missing today's log, got:\n%s", out)
	}
	if !strings.Contains(out, "lazy sunday") {
		t.Errorf("Build() output missing two-days-ago log, got:\n%s", out)
	}
	if strings.Contains(out, "outside the window") {
		t.Errorf("Build() output should not include log outside the 3-day window, got:\n%s", out)
	}
}

func TestTimeline_MergesRoutineStepsAndCustomTasksSortedByTime(t *testing.T) {
	ctx := gocontext.Background()
	s := newTestStore(t)

	today := fixtureToday()
	dateStr := today.Format("2006-01-02")

	r := createRoutine(t, s, &model.Routine{Name: "Work", Days: "0,1,2,3,4"})
	createStep(t, s, &model.Step{RoutineID: r.ID, Name: "Standup", Time: "09:30", Category: model.CategoryOther})
	createCustomTask(t, s, &model.CustomTask{Date: dateStr, Name: "Lunch with Sam", Time: "12:00"})

	items, rate, err := Timeline(ctx, s, today)
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Timeline() len(items) = %d, want 2", len(items))
	}
	if items[0].Name != "Standup" || items[1].Name != "Lunch with Sam" {
		t.Errorf("Timeline() items not sorted by time: %+v", items)
	}
	if rate != 0 {
		t.Errorf("Timeline() completion rate = %d, want 0 (nothing done)", rate)
	}
}

func TestTimeline_ExcludesRoutinesNotActiveOnWeekday(t *testing.T) {
	ctx := gocontext.Background()
	s := newTestStore(t)

	today := fixtureToday() // Friday = mondayZero 4
	r := createRoutine(t, s, &model.Routine{Name: "WeekendOnly", Days: "5,6"})
	createStep(t, s, &model.Step{RoutineID: r.ID, Name: "Sleep in", Time: "10:00", Category: model.CategoryOther})

	items, _, err := Timeline(ctx, s, today)
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Timeline() items = %+v, want none (routine inactive on Friday)", items)
	}
}
