package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

const dayLogModifiedID = "daily-log-card"

func dispatchUpdateLog(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	content := argStringTrimmed(action.Args, "content")
	if content == "" {
		return invalid("update_log: content が指定されていません。")
	}
	rawDate := argString(action.Args, "date")
	if msg, valid := requireNoRelativeDate("update_log", rawDate); !valid {
		return invalid("%s", msg)
	}
	date := dateresolve.ParseDate(rawDate, defaultDate)
	dateStr := date.Format("2006-01-02")

	if err := tx.UpsertDayLog(ctx, dateStr, content); err != nil {
		return outcome{}, err
	}
	return ok(fmt.Sprintf("%s の日報を更新しました。", dateStr), true, dayLogModifiedID)
}

func dispatchAppendDayLog(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	content := argStringTrimmed(action.Args, "content")
	if content == "" {
		return invalid("append_day_log: content が指定されていません。")
	}
	rawDate := argString(action.Args, "date")
	if msg, valid := requireNoRelativeDate("append_day_log", rawDate); !valid {
		return invalid("%s", msg)
	}
	date := dateresolve.ParseDate(rawDate, defaultDate)
	dateStr := date.Format("2006-01-02")

	if err := tx.AppendDayLog(ctx, dateStr, content); err != nil {
		return outcome{}, err
	}
	return ok(fmt.Sprintf("%s の日報に追記しました。", dateStr), true, dayLogModifiedID)
}

func dispatchGetDayLog(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	rawDate := argString(action.Args, "date")
	if msg, valid := requireNoRelativeDate("get_day_log", rawDate); !valid {
		return invalid("%s", msg)
	}
	date := dateresolve.ParseDate(rawDate, defaultDate)
	dateStr := date.Format("2006-01-02")

	dayLog, err := tx.GetDayLog(ctx, dateStr)
	if err != nil {
		return outcome{}, err
	}
	if dayLog != nil && dayLog.Content != "" {
		return ok2(fmt.Sprintf("%s の日報:\n%s", dateStr, dayLog.Content))
	}
	return ok2(fmt.Sprintf("%s の日報は見つかりませんでした。", dateStr))
}
