package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

func weekdayRoutines(ctx context.Context, tx *store.Tx, mondayZeroWeekday int) ([]*model.Routine, error) {
	all, err := tx.ListRoutines(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*model.Routine
	for _, r := range all {
		if r.ActiveOn(mondayZeroWeekday) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func dispatchListTasksInPeriod(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	rawStart := argString(action.Args, "start_date")
	rawEnd := argString(action.Args, "end_date")
	if dateresolve.RequiresDateResolution(rawStart) || dateresolve.RequiresDateResolution(rawEnd) {
		return invalid("list_tasks_in_period: 相対日付が含まれています。計算ツール(calc_*)で先に絶対日付へ変換してください。")
	}
	start := dateresolve.ParseDate(rawStart, defaultDate)
	end := dateresolve.ParseDate(rawEnd, defaultDate)
	if start.After(end) {
		return invalid("list_tasks_in_period: 開始日が終了日より後です。")
	}

	var lines []string

	customTasks, err := tx.ListCustomTasksByDateRange(ctx, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return outcome{}, err
	}
	for _, task := range customTasks {
		memo := "なし"
		if task.Memo != "" {
			memo = task.Memo
		}
		lines = append(lines, fmt.Sprintf("カスタムタスク [%d]: %s %s - %s (完了: %t) (メモ: %s)",
			task.ID, task.Date, task.Time, task.Name, task.Done, memo))
	}

	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		dateStr := cur.Format("2006-01-02")
		routines, err := weekdayRoutines(ctx, tx, dateresolve.MondayZero(cur))
		if err != nil {
			return outcome{}, err
		}
		for _, r := range routines {
			steps, err := tx.ListStepsByRoutine(ctx, r.ID)
			if err != nil {
				return outcome{}, err
			}
			for _, st := range steps {
				log, err := tx.GetDailyLog(ctx, dateStr, st.ID)
				if err != nil {
					return outcome{}, err
				}
				status := "未完了"
				if log != nil && log.Done {
					status = "完了"
				}
				memo := "なし"
				switch {
				case log != nil && log.Memo != "":
					memo = log.Memo
				case st.Memo != "":
					memo = st.Memo
				}
				lines = append(lines, fmt.Sprintf("ルーチンステップ [%d]: %s %s - %s - %s (完了: %s) (メモ: %s)",
					st.ID, dateStr, st.Time, r.Name, st.Name, status, memo))
			}
		}
	}

	startStr, endStr := start.Format("2006-01-02"), end.Format("2006-01-02")
	if len(lines) == 0 {
		return ok2(fmt.Sprintf("%s から %s までのタスクは見つかりませんでした。", startStr, endStr))
	}
	return ok2(fmt.Sprintf("%s から %s までのタスク:\n%s", startStr, endStr, strings.Join(lines, "\n")))
}

func dispatchGetDailySummary(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	rawDate := argString(action.Args, "date")
	if msg, valid := requireNoRelativeDate("get_daily_summary", rawDate); !valid {
		return invalid("%s", msg)
	}
	target := dateresolve.ParseDate(rawDate, defaultDate)
	dateStr := target.Format("2006-01-02")

	var parts []string

	dayLog, err := tx.GetDayLog(ctx, dateStr)
	if err != nil {
		return outcome{}, err
	}
	if dayLog != nil && dayLog.Content != "" {
		parts = append(parts, "日報: "+dayLog.Content)
	} else {
		parts = append(parts, "日報: なし")
	}

	customTasks, err := tx.ListCustomTasksByDate(ctx, dateStr)
	if err != nil {
		return outcome{}, err
	}
	if len(customTasks) > 0 {
		parts = append(parts, "カスタムタスク:")
		for _, task := range customTasks {
			status := "未完了"
			if task.Done {
				status = "完了"
			}
			memo := "なし"
			if task.Memo != "" {
				memo = task.Memo
			}
			parts = append(parts, fmt.Sprintf("- %s %s (%s) (メモ: %s)", task.Time, task.Name, status, memo))
		}
	} else {
		parts = append(parts, "カスタムタスク: なし")
	}

	routines, err := weekdayRoutines(ctx, tx, dateresolve.MondayZero(target))
	if err != nil {
		return outcome{}, err
	}
	if len(routines) > 0 {
		parts = append(parts, "ルーチンステップ:")
		for _, r := range routines {
			steps, err := tx.ListStepsByRoutine(ctx, r.ID)
			if err != nil {
				return outcome{}, err
			}
			for _, st := range steps {
				log, err := tx.GetDailyLog(ctx, dateStr, st.ID)
				if err != nil {
					return outcome{}, err
				}
				status := "未完了"
				if log != nil && log.Done {
					status = "完了"
				}
				memo := "なし"
				switch {
				case log != nil && log.Memo != "":
					memo = log.Memo
				case st.Memo != "":
					memo = st.Memo
				}
				parts = append(parts, fmt.Sprintf("- %s %s - %s (%s) (メモ: %s)", st.Time, r.Name, st.Name, status, memo))
			}
		}
	} else {
		parts = append(parts, "ルーチンステップ: なし")
	}

	return ok2(fmt.Sprintf("%s の活動概要:\n%s", dateStr, strings.Join(parts, "\n")))
}
