package dispatch

import (
	"context"
	"path/filepath"
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

func fixtureDate() time.Time {
	return time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
}

func TestApply_CreateCustomTask(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	results, errs, modified, err := Apply(ctx, s, []Action{
		{Type: "create_custom_task", Args: map[string]any{"name": "Dentist", "time": "10:00"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v, want none", errs)
	}
	if len(results) != 1 || !strings.Contains(results[0], "Dentist") {
		t.Fatalf("Apply() results = %v", results)
	}
	if len(modified) != 1 || !strings.HasPrefix(modified[0], "item_custom_") {
		t.Fatalf("Apply() modified = %v", modified)
	}

	tasks, err := s.ListCustomTasksByDate(ctx, "2026-07-31")
	if err != nil {
		t.Fatalf("ListCustomTasksByDate() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Dentist" {
		t.Fatalf("persisted task = %+v", tasks)
	}
}

func TestApply_CreateCustomTask_RejectsRelativeDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, errs, _, err := Apply(ctx, s, []Action{
		{Type: "create_custom_task", Args: map[string]any{"name": "Dentist", "date": "明日"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("Apply() errs = %v, want exactly one rejecting the relative date", errs)
	}
}

func TestApply_CreateTasksInRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	results, errs, modified, err := Apply(ctx, s, []Action{
		{Type: "create_tasks_in_range", Args: map[string]any{
			"name": "Water plants", "start_date": "2026-07-31", "end_date": "2026-08-02",
		}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v", errs)
	}
	if len(results) != 1 {
		t.Fatalf("Apply() results = %v", results)
	}
	if len(modified) != 3 {
		t.Fatalf("Apply() modified = %v, want 3 created tasks", modified)
	}

	tasks, err := s.ListCustomTasksByDateRange(ctx, "2026-07-31", "2026-08-02")
	if err != nil {
		t.Fatalf("ListCustomTasksByDateRange() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("persisted tasks = %+v", tasks)
	}
}

func TestApply_CreateTasksInRange_RejectsExcessiveSpan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, errs, _, err := Apply(ctx, s, []Action{
		{Type: "create_tasks_in_range", Args: map[string]any{
			"name": "X", "start_date": "2020-01-01", "end_date": "2026-01-01",
		}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "365") {
		t.Fatalf("Apply() errs = %v, want a 365-day span rejection", errs)
	}
}

func TestApply_DeleteCustomTask_IsReachable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, _, modified, err := Apply(ctx, s, []Action{
		{Type: "create_custom_task", Args: map[string]any{"name": "Temp"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	taskIDStr := strings.TrimPrefix(modified[0], "item_custom_")

	tasks, err := s.ListCustomTasksByDate(ctx, "2026-07-31")
	if err != nil {
		t.Fatalf("ListCustomTasksByDate() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %+v", tasks)
	}
	taskID := tasks[0].ID
	if taskIDStr != itoaHelper(taskID) {
		t.Fatalf("mismatched task id bookkeeping: %s vs %d", taskIDStr, taskID)
	}

	results, errs, _, err := Apply(ctx, s, []Action{
		{Type: "delete_custom_task", Args: map[string]any{"task_id": float64(taskID)}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v, want none", errs)
	}
	if len(results) != 1 || !strings.Contains(results[0], "削除しました") {
		t.Fatalf("Apply() results = %v, want a deletion confirmation", results)
	}

	remaining, err := s.ListCustomTasksByDate(ctx, "2026-07-31")
	if err != nil {
		t.Fatalf("ListCustomTasksByDate() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("task still present after delete_custom_task: %+v", remaining)
	}
}

func itoaHelper(id int64) string {
	if id == 0 {
		return "0"
	}
	digits := ""
	for id > 0 {
		digits = string(rune('0'+id%10)) + digits
		id /= 10
	}
	return digits
}

func TestApply_UnknownActionType_IsValidationError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, errs, _, err := Apply(ctx, s, []Action{
		{Type: "not_a_real_action", Args: map[string]any{}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("Apply() errs = %v, want exactly one unknown-action error", errs)
	}
}

func TestApply_ToggleStepAndRoutineLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := &model.Routine{Name: "Morning", Days: "0,1,2,3,4"}
	if err := s.CreateRoutine(ctx, r); err != nil {
		t.Fatalf("CreateRoutine() error = %v", err)
	}

	_, errs, modified, err := Apply(ctx, s, []Action{
		{Type: "add_step", Args: map[string]any{"routine_id": float64(r.ID), "name": "Stretch", "time": "07:00"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v", errs)
	}
	stepIDStr := strings.TrimPrefix(modified[0], "item_routine_")

	steps, err := s.ListStepsByRoutine(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListStepsByRoutine() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("steps = %+v", steps)
	}
	stepID := steps[0].ID
	if stepIDStr != itoaHelper(stepID) {
		t.Fatalf("mismatched step id bookkeeping: %s vs %d", stepIDStr, stepID)
	}

	_, errs, _, err = Apply(ctx, s, []Action{
		{Type: "toggle_step", Args: map[string]any{"step_id": float64(stepID), "done": true, "memo": "felt great"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v", errs)
	}

	log, err := s.GetDailyLog(ctx, "2026-07-31", stepID)
	if err != nil {
		t.Fatalf("GetDailyLog() error = %v", err)
	}
	if log == nil || !log.Done || log.Memo != "felt great" {
		t.Fatalf("daily log = %+v", log)
	}
}

func TestApply_DeleteRoutine_FuzzyNameMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := &model.Routine{Name: "朝のルーチン", Days: "0,1,2,3,4"}
	if err := s.CreateRoutine(ctx, r); err != nil {
		t.Fatalf("CreateRoutine() error = %v", err)
	}

	results, errs, _, err := Apply(ctx, s, []Action{
		{Type: "delete_routine", Args: map[string]any{"routine_name": "朝"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v, want fuzzy match to succeed", errs)
	}
	if len(results) != 1 {
		t.Fatalf("Apply() results = %v", results)
	}

	remaining, err := s.ListRoutines(ctx)
	if err != nil {
		t.Fatalf("ListRoutines() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("routine not deleted: %+v", remaining)
	}
}

func TestApply_DeleteRoutine_AmbiguousNameIsValidationError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"朝の運動ルーチン", "朝の読書ルーチン"} {
		r := &model.Routine{Name: name, Days: "0,1,2,3,4"}
		if err := s.CreateRoutine(ctx, r); err != nil {
			t.Fatalf("CreateRoutine() error = %v", err)
		}
	}

	_, errs, _, err := Apply(ctx, s, []Action{
		{Type: "delete_routine", Args: map[string]any{"routine_name": "朝"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("Apply() errs = %v, want an ambiguous-match error", errs)
	}

	remaining, err := s.ListRoutines(ctx)
	if err != nil {
		t.Fatalf("ListRoutines() error = %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("routines should be untouched on ambiguous match: %+v", remaining)
	}
}

func TestApply_DeleteRoutine_All(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"A", "B"} {
		r := &model.Routine{Name: name, Days: "0,1,2,3,4"}
		if err := s.CreateRoutine(ctx, r); err != nil {
			t.Fatalf("CreateRoutine() error = %v", err)
		}
	}

	_, errs, _, err := Apply(ctx, s, []Action{
		{Type: "delete_routine", Args: map[string]any{"scope": "全部"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v", errs)
	}

	remaining, err := s.ListRoutines(ctx)
	if err != nil {
		t.Fatalf("ListRoutines() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("routines not all deleted: %+v", remaining)
	}
}

func TestApply_CalcActionsAreReadOnlyAndNeverDirty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	results, errs, _, err := Apply(ctx, s, []Action{
		{Type: "calc_date_offset", Args: map[string]any{"base_date": "2026-07-31", "offset_days": float64(1)}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v", errs)
	}
	if len(results) != 1 || !strings.Contains(results[0], "2026-08-01") {
		t.Fatalf("Apply() results = %v", results)
	}
	if !ReadOnly("calc_date_offset") {
		t.Error("calc_date_offset must be read-only")
	}
	if ReadOnly("resolve_schedule_expression") {
		t.Error("resolve_schedule_expression must not be read-only")
	}
}

func TestApply_GetDailySummary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := &model.Routine{Name: "Work", Days: "0,1,2,3,4"}
	if err := s.CreateRoutine(ctx, r); err != nil {
		t.Fatalf("CreateRoutine() error = %v", err)
	}
	if _, _, _, err := Apply(ctx, s, []Action{
		{Type: "add_step", Args: map[string]any{"routine_id": float64(r.ID), "name": "Standup", "time": "09:00"}},
	}, fixtureDate()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	results, errs, _, err := Apply(ctx, s, []Action{
		{Type: "get_daily_summary", Args: map[string]any{"date": "2026-07-31"}},
	}, fixtureDate())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Apply() errs = %v", errs)
	}
	if len(results) != 1 || !strings.Contains(results[0], "Standup") {
		t.Fatalf("Apply() results = %v", results)
	}
}

func TestApply_EmptyActionsReturnsNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	results, errs, modified, err := Apply(ctx, s, nil, fixtureDate())
	if err != nil || results != nil || errs != nil || modified != nil {
		t.Fatalf("Apply(nil) = %v, %v, %v, %v, want all nils/no error", results, errs, modified, err)
	}
}
