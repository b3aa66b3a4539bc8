// Package dispatch implements the Action Dispatcher: it takes the structured
// actions an LLM tool call proposed and applies them against the Schedule
// Store inside a single transaction, returning a human-readable result line
// (or validation error) per action plus the set of modified item ids.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

// Action is one tool call the orchestration loop wants applied.
type Action struct {
	Type string
	Args map[string]any
}

// calcActionTypes is the set of pure date/time calculators: they never touch
// the store and are always read-only.
var calcActionTypes = map[string]bool{
	"calc_date_offset":     true,
	"calc_month_boundary":  true,
	"calc_nearest_weekday": true,
	"calc_week_weekday":    true,
	"calc_week_range":      true,
	"calc_time_offset":     true,
	"get_date_info":        true,
}

// ReadOnly reports whether actionType never mutates the store. It mirrors
// tools.ReadOnly but lives here too so dispatch has no import-time
// dependency on the tool-catalog package.
func ReadOnly(actionType string) bool {
	if calcActionTypes[actionType] {
		return true
	}
	switch actionType {
	case "get_day_log", "list_tasks_in_period", "get_daily_summary":
		return true
	}
	return false
}

// Apply runs actions against s inside one transaction, committing only if at
// least one action mutated state. It returns a result line or error message
// per action (in order, errors separately), plus the ids of modified items
// for the orchestration loop's UI-refresh bookkeeping.
//
// A genuine system error (a failed query, a broken transaction) aborts the
// whole batch, rolls back, and is returned as err with all per-action
// progress discarded — matching the all-or-nothing behavior of the
// original action-application service's blanket exception handler.
func Apply(ctx context.Context, s *store.Store, actions []Action, defaultDate time.Time) (results []string, errs []string, modifiedIDs []string, err error) {
	if len(actions) == 0 {
		return nil, nil, nil, nil
	}

	tx, beginErr := s.Begin(ctx)
	if beginErr != nil {
		return nil, nil, nil, fmt.Errorf("beginning action transaction: %w", beginErr)
	}

	dirty := false
	for _, action := range actions {
		outcome, sysErr := dispatchOne(ctx, tx, action, defaultDate)
		if sysErr != nil {
			_ = tx.Rollback()
			return nil, nil, nil, fmt.Errorf("applying action %q: %w", action.Type, sysErr)
		}
		if outcome.validationError != "" {
			errs = append(errs, outcome.validationError)
			continue
		}
		results = append(results, outcome.result)
		if len(outcome.modifiedID) > 0 {
			modifiedIDs = append(modifiedIDs, outcome.modifiedID...)
		}
		if outcome.dirty {
			dirty = true
		}
	}

	if dirty {
		if commitErr := tx.Commit(); commitErr != nil {
			return nil, nil, nil, fmt.Errorf("committing actions: %w", commitErr)
		}
	} else {
		_ = tx.Rollback()
	}

	return results, errs, modifiedIDs, nil
}

// outcome is the per-action verdict: either a human-readable result, a
// validation error message (soft failure, doesn't abort the batch), or both
// a result and a flag that the store was mutated.
type outcome struct {
	result          string
	validationError string
	modifiedID      []string
	dirty           bool
}

func ok(result string, dirty bool, modifiedID ...string) (outcome, error) {
	return outcome{result: result, dirty: dirty, modifiedID: modifiedID}, nil
}

func invalid(format string, args ...any) (outcome, error) {
	return outcome{validationError: fmt.Sprintf(format, args...)}, nil
}

func dispatchOne(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	switch action.Type {
	case "calc_date_offset", "calc_month_boundary", "calc_nearest_weekday",
		"calc_week_weekday", "calc_week_range", "calc_time_offset", "get_date_info":
		return dispatchCalc(action)

	case "resolve_schedule_expression":
		return dispatchResolveScheduleExpression(action, defaultDate)

	case "create_custom_task":
		return dispatchCreateCustomTask(ctx, tx, action, defaultDate)
	case "create_tasks_in_range":
		return dispatchCreateTasksInRange(ctx, tx, action)
	case "delete_custom_task":
		return dispatchDeleteCustomTask(ctx, tx, action)
	case "toggle_custom_task":
		return dispatchToggleCustomTask(ctx, tx, action)
	case "update_custom_task_time":
		return dispatchUpdateCustomTaskTime(ctx, tx, action)
	case "rename_custom_task":
		return dispatchRenameCustomTask(ctx, tx, action)
	case "update_custom_task_memo":
		return dispatchUpdateCustomTaskMemo(ctx, tx, action)

	case "toggle_step":
		return dispatchToggleStep(ctx, tx, action, defaultDate)
	case "add_step":
		return dispatchAddStep(ctx, tx, action)
	case "delete_step":
		return dispatchDeleteStep(ctx, tx, action)
	case "update_step_time":
		return dispatchUpdateStepTime(ctx, tx, action)
	case "rename_step":
		return dispatchRenameStep(ctx, tx, action)
	case "update_step_memo":
		return dispatchUpdateStepMemo(ctx, tx, action)

	case "add_routine":
		return dispatchAddRoutine(ctx, tx, action)
	case "delete_routine":
		return dispatchDeleteRoutine(ctx, tx, action)
	case "update_routine_days":
		return dispatchUpdateRoutineDays(ctx, tx, action)

	case "update_log":
		return dispatchUpdateLog(ctx, tx, action, defaultDate)
	case "append_day_log":
		return dispatchAppendDayLog(ctx, tx, action, defaultDate)
	case "get_day_log":
		return dispatchGetDayLog(ctx, tx, action, defaultDate)

	case "list_tasks_in_period":
		return dispatchListTasksInPeriod(ctx, tx, action, defaultDate)
	case "get_daily_summary":
		return dispatchGetDailySummary(ctx, tx, action, defaultDate)
	}

	return invalid("未知のアクション: %s", action.Type)
}

func requireNoRelativeDate(field, value string) (string, bool) {
	if dateresolve.RequiresDateResolution(value) {
		return fmt.Sprintf("%s: 日付に相対表現が含まれています。resolve_schedule_expression か計算ツール(calc_*)で先に絶対日付へ変換してください。", field), false
	}
	return "", true
}
