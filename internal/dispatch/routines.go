package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/javiermolinar/scheduleragent/internal/model"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

func dispatchAddRoutine(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	name := argStringTrimmed(action.Args, "name")
	if name == "" {
		return invalid("add_routine: name が指定されていません。")
	}
	days := argString(action.Args, "days")
	if days == "" {
		days = "0,1,2,3,4"
	}

	routine := &model.Routine{
		Name:        name,
		Days:        days,
		Description: argString(action.Args, "description"),
	}
	if err := tx.CreateRoutine(ctx, routine); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("ルーチン「%s」(ID: %d) を追加しました。", routine.Name, routine.ID)
	return ok(result, true)
}

func dispatchUpdateRoutineDays(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	routineID, has := argInt64(action.Args, "routine_id")
	newDays := argStringTrimmed(action.Args, "new_days")
	if newDays == "" {
		return invalid("update_routine_days: new_days が指定されていません。")
	}
	if !has {
		return invalid("update_routine_days: routine_id が不正です。")
	}
	routine, err := tx.GetRoutine(ctx, routineID)
	if err != nil {
		return outcome{}, err
	}
	if routine == nil {
		return invalid("routine_id=%d が見つかりませんでした。", routineID)
	}
	if err := tx.UpdateRoutineDays(ctx, routineID, newDays); err != nil {
		return outcome{}, err
	}
	result := fmt.Sprintf("ルーチン「%s」の曜日を %s に更新しました。", routine.Name, newDays)
	return ok(result, true)
}

func dispatchDeleteRoutine(ctx context.Context, tx *store.Tx, action Action) (outcome, error) {
	routineName := argString(action.Args, "routine_name")
	deleteAll := isDeleteAllRoutineRequest(action, routineName)

	if rid, has := argInt64(action.Args, "routine_id"); has {
		routine, err := tx.GetRoutine(ctx, rid)
		if err != nil {
			return outcome{}, err
		}
		if routine == nil {
			return invalid("routine_id=%d が見つかりませんでした。", rid)
		}
		if err := tx.DeleteRoutine(ctx, rid); err != nil {
			return outcome{}, err
		}
		return ok(fmt.Sprintf("ルーチン「%s」を削除しました。", routine.Name), true)
	}

	routines, err := tx.ListRoutines(ctx)
	if err != nil {
		return outcome{}, err
	}

	if deleteAll {
		if len(routines) == 0 {
			return ok("削除対象のルーチンはありませんでした。", false)
		}
		count, err := tx.DeleteAllRoutines(ctx)
		if err != nil {
			return outcome{}, err
		}
		return ok(fmt.Sprintf("ルーチンを%d件削除しました。", count), true)
	}

	if strings.TrimSpace(routineName) == "" {
		return invalid("delete_routine: routine_id / routine_name / scope=all のいずれかを指定してください。")
	}

	matched, matchMode := matchRoutinesByName(routines, routineName)
	if len(matched) == 0 {
		return invalid("delete_routine: routine_name='%s' に一致するルーチンが見つかりませんでした。", strings.TrimSpace(routineName))
	}

	if matchMode != "exact" && len(matched) > 1 {
		limit := matched
		if len(limit) > 5 {
			limit = limit[:5]
		}
		parts := make([]string, len(limit))
		for i, r := range limit {
			parts[i] = fmt.Sprintf("%s(ID:%d)", r.Name, r.ID)
		}
		return invalid("delete_routine: routine_name に一致するルーチンが複数あります。候補: %s。routine_id またはより具体的な routine_name を指定してください。", strings.Join(parts, "、"))
	}

	for _, r := range matched {
		if err := tx.DeleteRoutine(ctx, r.ID); err != nil {
			return outcome{}, err
		}
	}
	if len(matched) == 1 {
		return ok(fmt.Sprintf("ルーチン「%s」を削除しました。", matched[0].Name), true)
	}
	return ok(fmt.Sprintf("ルーチン名「%s」に一致した %d 件を削除しました。", strings.TrimSpace(routineName), len(matched)), true)
}
