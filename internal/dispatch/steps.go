package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

func dispatchAddStep(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	routineID, hasRoutine := argInt64(action.Args, "routine_id")
	name := argStringTrimmed(action.Args, "name")
	if !hasRoutine {
		return invalid("add_step: routine_id が不正です。")
	}
	if name == "" {
		return invalid("add_step: name が指定されていません。")
	}

	timeValue := argString(action.Args, "time")
	if timeValue == "" {
		timeValue = "00:00"
	}
	category := model.Category(argString(action.Args, "category"))
	if !category.Valid() {
		category = model.CategoryOther
	}

	step := &model.Step{
		RoutineID: routineID,
		Name:      name,
		Time:      timeValue,
		Category:  category,
	}
	if err := tx.CreateStep(ctx, step); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("ルーチン(ID:%d)にステップ「%s」(ID: %d) を追加しました。", routineID, name, step.ID)
	return ok(result, true, fmt.Sprintf("item_routine_%d", step.ID))
}

func dispatchDeleteStep(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	stepID, has := argInt64(action.Args, "step_id")
	if !has {
		return invalid("delete_step: step_id が不正です。")
	}
	step, err := tx.GetStep(ctx, stepID)
	if err != nil {
		return outcome{}, err
	}
	if step == nil {
		return invalid("delete_step: step_id=%d が見つかりませんでした。", stepID)
	}
	if err := tx.DeleteStep(ctx, stepID); err != nil {
		return outcome{}, err
	}
	return ok(fmt.Sprintf("ステップ「%s」を削除しました。", step.Name), true)
}

func dispatchUpdateStepTime(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	stepID, has := argInt64(action.Args, "step_id")
	newTime := argStringTrimmed(action.Args, "new_time")
	if newTime == "" {
		return invalid("update_step_time: new_time が指定されていません。")
	}
	if !has {
		return invalid("update_step_time: step_id が不正です。")
	}
	step, err := tx.GetStep(ctx, stepID)
	if err != nil {
		return outcome{}, err
	}
	if step == nil {
		return invalid("step_id=%d が見つかりませんでした。", stepID)
	}
	if err := tx.UpdateStepTime(ctx, stepID, newTime); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("ステップ「%s」の時刻を %s に更新しました。", step.Name, newTime)
	return ok(result, true, fmt.Sprintf("item_routine_%d", stepID))
}

func dispatchRenameStep(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	stepID, has := argInt64(action.Args, "step_id")
	newName := argStringTrimmed(action.Args, "new_name")
	if newName == "" {
		return invalid("rename_step: new_name が指定されていません。")
	}
	if !has {
		return invalid("rename_step: step_id が不正です。")
	}
	step, err := tx.GetStep(ctx, stepID)
	if err != nil {
		return outcome{}, err
	}
	if step == nil {
		return invalid("step_id=%d が見つかりませんでした。", stepID)
	}
	oldName := step.Name
	if err := tx.RenameStep(ctx, stepID, newName); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("ステップ「%s」の名前を「%s」に更新しました。", oldName, newName)
	return ok(result, true, fmt.Sprintf("item_routine_%d", stepID))
}

func dispatchUpdateStepMemo(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	stepID, has := argInt64(action.Args, "step_id")
	if !argHasKey(action.Args, "new_memo") {
		return invalid("update_step_memo: new_memo が指定されていません。")
	}
	if !has {
		return invalid("update_step_memo: step_id が不正です。")
	}
	step, err := tx.GetStep(ctx, stepID)
	if err != nil {
		return outcome{}, err
	}
	if step == nil {
		return invalid("step_id=%d が見つかりませんでした。", stepID)
	}
	newMemo := argStringTrimmed(action.Args, "new_memo")
	if err := tx.UpdateStepMemo(ctx, stepID, newMemo); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("ステップ「%s」のメモを更新しました。", step.Name)
	return ok(result, true, fmt.Sprintf("item_routine_%d", stepID))
}

func dispatchToggleStep(ctx context.Context, tx *store.Tx, action Action, defaultDate time.Time) (outcome, error) {
	stepID, has := argInt64(action.Args, "step_id")
	if !has {
		return invalid("toggle_step: step_id が不正です。")
	}
	step, err := tx.GetStep(ctx, stepID)
	if err != nil {
		return outcome{}, err
	}
	if step == nil {
		return invalid("step_id=%d が見つかりませんでした。", stepID)
	}

	rawDate := argString(action.Args, "date")
	if msg, valid := requireNoRelativeDate("toggle_step", rawDate); !valid {
		return invalid("%s", msg)
	}
	date := dateresolve.ParseDate(rawDate, defaultDate)
	dateStr := date.Format("2006-01-02")

	existing, err := tx.GetDailyLog(ctx, dateStr, stepID)
	if err != nil {
		return outcome{}, err
	}
	done := dateresolve.BoolFromValue(action.Args["done"], true)
	memo := ""
	if existing != nil {
		memo = existing.Memo
	}
	if argHasKey(action.Args, "memo") {
		memo = argStringTrimmed(action.Args, "memo")
	}
	if err := tx.UpsertDailyLog(ctx, dateStr, stepID, done, memo); err != nil {
		return outcome{}, err
	}

	status := "未完了"
	if done {
		status = "完了"
	}
	result := fmt.Sprintf("ステップ「%s」(%s) を %s に更新しました。", step.Name, dateStr, status)
	return ok(result, true, fmt.Sprintf("item_routine_%d", stepID))
}
