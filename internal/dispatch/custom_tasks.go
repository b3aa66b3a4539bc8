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

const maxRangeSpanDays = 365

func dispatchCreateCustomTask(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	name := argStringTrimmed(action.Args, "name")
	if name == "" {
		return invalid("create_custom_task: name が指定されていません。")
	}

	rawDate := argString(action.Args, "date")
	if msg, valid := requireNoRelativeDate("create_custom_task", rawDate); !valid {
		return invalid("%s", msg)
	}
	rawTime := argString(action.Args, "time")
	if dateresolve.IsRelativeDatetimeText(rawTime) {
		return invalid("create_custom_task: 時刻に相対表現が含まれています。resolve_schedule_expression で先に絶対時刻へ変換してください。")
	}

	date := dateresolve.ParseDate(rawDate, defaultDate)
	timeValue := strings.TrimSpace(rawTime)
	if timeValue == "" {
		timeValue = "00:00"
	}

	task := &model.CustomTask{
		Date: date.Format("2006-01-02"),
		Name: name,
		Time: timeValue,
		Memo: argStringTrimmed(action.Args, "memo"),
	}
	if err := tx.CreateCustomTask(ctx, task); err != nil {
		return outcome{}, err
	}

	result := fmt.Sprintf("カスタムタスク「%s」(ID: %d) を %s の %s に追加しました。", task.Name, task.ID, task.Date, task.Time)
	return ok(result, true, fmt.Sprintf("item_custom_%d", task.ID))
}

func dispatchCreateTasksInRange(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	name := argStringTrimmed(action.Args, "name")
	if name == "" {
		return invalid("create_tasks_in_range: name が指定されていません。")
	}

	rawStart := argString(action.Args, "start_date")
	rawEnd := argString(action.Args, "end_date")
	if dateresolve.RequiresDateResolution(rawStart) || dateresolve.RequiresDateResolution(rawEnd) {
		return invalid("create_tasks_in_range: 日付に相対表現が含まれています。計算ツール(calc_*)で先に絶対日付へ変換してください。")
	}

	start, okStart := dateresolve.TryParseISODate(rawStart)
	end, okEnd := dateresolve.TryParseISODate(rawEnd)
	if !okStart || !okEnd {
		return invalid("create_tasks_in_range: start_date / end_date が YYYY-MM-DD 形式ではありません。")
	}
	if start.After(end) {
		return invalid("create_tasks_in_range: start_date が end_date より後です。")
	}
	span := int(end.Sub(start).Hours()/24) + 1
	if span > maxRangeSpanDays {
		return invalid("create_tasks_in_range: 期間が長すぎます（最大365日）。")
	}

	timeValue := strings.TrimSpace(argString(action.Args, "time"))
	if timeValue == "" {
		timeValue = "00:00"
	}
	memo := argStringTrimmed(action.Args, "memo")

	var modified []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		dateStr := cur.Format("2006-01-02")
		task := &model.CustomTask{
			Date: dateStr,
			Name: name,
			Time: timeValue,
			Memo: memo,
		}
		if err := tx.CreateCustomTask(ctx, task); err != nil {
			return outcome{}, err
		}
		modified = append(modified, fmt.Sprintf("item_custom_%s", dateStr))
	}

	result := fmt.Sprintf("「%s」を %s から %s まで %d 件登録しました。", name, start.Format("2006-01-02"), end.Format("2006-01-02"), span)
	return outcome{result: result, dirty: true, modifiedID: modified}, nil
}

// dispatchDeleteCustomTask is the corrected home of the original's
// delete_custom_task handling — in the source it fell through an
// unreachable block after create_tasks_in_range's logic and never actually
// ran as its own branch.
func dispatchDeleteCustomTask(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	taskID, has := argInt64(action.Args, "task_id")
	if !has {
		return invalid("delete_custom_task: task_id が不正です。")
	}
	task, err := tx.GetCustomTask(ctx, taskID)
	if err != nil {
		return outcome{}, err
	}
	if task == nil {
		return invalid("task_id=%d が見つかりませんでした。", taskID)
	}
	if err := tx.DeleteCustomTask(ctx, taskID); err != nil {
		return outcome{}, err
	}
	return ok(fmt.Sprintf("カスタムタスク「%s」を削除しました。", task.Name), true)
}

func dispatchToggleCustomTask(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	taskID, has := argInt64(action.Args, "task_id")
	if !has {
		return invalid("toggle_custom_task: task_id が不正です。")
	}
	task, err := tx.GetCustomTask(ctx, taskID)
	if err != nil {
		return outcome{}, err
	}
	if task == nil {
		return invalid("task_id=%d が見つかりませんでした。", taskID)
	}

	done := dateresolve.BoolFromValue(action.Args["done"], true)
	memo := task.Memo
	if argHasKey(action.Args, "memo") {
		memo = argStringTrimmed(action.Args, "memo")
	}
	if err := tx.UpdateCustomTaskDoneMemo(ctx, taskID, done, memo); err != nil {
		return outcome{}, err
	}

	status := "未完了"
	if done {
		status = "完了"
	}
	result := fmt.Sprintf("カスタムタスク「%s」を %s に更新しました。", task.Name, status)
	return ok(result, true, fmt.Sprintf("item_custom_%d", taskID))
}

func dispatchUpdateCustomTaskTime(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	taskID, has := argInt64(action.Args, "task_id")
	newTime := argStringTrimmed(action.Args, "new_time")
	if newTime == "" {
		return invalid("update_custom_task_time: new_time が指定されていません。")
	}
	if !has {
		return invalid("update_custom_task_time: task_id が不正です。")
	}
	task, err := tx.GetCustomTask(ctx, taskID)
	if err != nil {
		return outcome{}, err
	}
	if task == nil {
		return invalid("task_id=%d が見つかりませんでした。", taskID)
	}
	if err := tx.UpdateCustomTaskTime(ctx, taskID, newTime); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("カスタムタスク「%s」の時刻を %s に更新しました。", task.Name, newTime)
	return ok(result, true, fmt.Sprintf("item_custom_%d", taskID))
}

func dispatchRenameCustomTask(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	taskID, has := argInt64(action.Args, "task_id")
	newName := argStringTrimmed(action.Args, "new_name")
	if newName == "" {
		return invalid("rename_custom_task: new_name が指定されていません。")
	}
	if !has {
		return invalid("rename_custom_task: task_id が不正です。")
	}
	task, err := tx.GetCustomTask(ctx, taskID)
	if err != nil {
		return outcome{}, err
	}
	if task == nil {
		return invalid("task_id=%d が見つかりませんでした。", taskID)
	}
	oldName := task.Name
	if err := tx.RenameCustomTask(ctx, taskID, newName); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("カスタムタスク「%s」の名前を「%s」に更新しました。", oldName, newName)
	return ok(result, true, fmt.Sprintf("item_custom_%d", taskID))
}

func dispatchUpdateCustomTaskMemo(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	taskID, has := argInt64(action.Args, "task_id")
	if !argHasKey(action.Args, "new_memo") {
		return invalid("update_custom_task_memo: new_memo が指定されていません。")
	}
	if !has {
		return invalid("update_custom_task_memo: task_id が不正です。")
	}
	task, err := tx.GetCustomTask(ctx, taskID)
	if err != nil {
		return outcome{}, err
	}
	if task == nil {
		return invalid("task_id=%d が見つかりませんでした。", taskID)
	}
	newMemo := argStringTrimmed(action.Args, "new_memo")
	if err := tx.UpdateCustomTaskMemo(ctx, taskID, newMemo); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("カスタムタスク「%s」のメモを更新しました。", task.Name)
	return ok(result, true, fmt.Sprintf("item_custom_%d", taskID))
}
