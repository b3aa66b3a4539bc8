// Package tools defines the catalog of functions the orchestration loop
// exposes to the LLM as tool calls: schedule mutations, schedule reads, date
// resolution, and the review-turn decision tool.
package tools

import "github.com/google/jsonschema-go/jsonschema"

// Spec is one entry in a tool catalog handed to an llm.Client.
type Spec struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// ReviewDecisionToolName is the function name the review turn must call to
// report its action/reply decision.
const ReviewDecisionToolName = "set_review_outcome"

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func integer(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

func boolean(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: description}
}

func build(name, description string, properties map[string]*jsonschema.Schema, required ...string) Spec {
	if required == nil {
		required = []string{}
	}
	return Spec{
		Name:        name,
		Description: description,
		Parameters: &jsonschema.Schema{
			Type:                 "object",
			Properties:           properties,
			Required:             required,
			AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
		},
	}
}

// Scheduler returns the tool catalog for schedule mutation/read actions,
// plus the date-resolution helpers (resolve_schedule_expression and the
// atomic calc_*/get_date_info tools).
func Scheduler() []Spec {
	specs := []Spec{
		build("create_custom_task",
			"日付・時間・名前を指定してカスタムタスクを追加します。日付を省略した場合は today_date を使ってください。",
			map[string]*jsonschema.Schema{
				"date": str("YYYY-MM-DD"),
				"name": str("タスク名"),
				"time": str("HH:MM (24時間表記)"),
				"memo": str("任意のメモ"),
			}, "name"),

		build("create_tasks_in_range",
			"開始日から終了日まで、毎日同じ名前のカスタムタスクをまとめて追加します（最大365日分、相対日付は不可）。",
			map[string]*jsonschema.Schema{
				"name":       str("タスク名"),
				"start_date": str("開始日 YYYY-MM-DD"),
				"end_date":   str("終了日 YYYY-MM-DD"),
				"time":       str("HH:MM (24時間表記、省略時は 00:00)"),
				"memo":       str("任意のメモ"),
			}, "name", "start_date", "end_date"),

		build("delete_custom_task",
			"指定したIDのカスタムタスクを削除します。",
			map[string]*jsonschema.Schema{
				"task_id": integer("カスタムタスクID"),
			}, "task_id"),

		build("toggle_step",
			"ステップの完了状態を更新します。日付が無い場合は today_date を利用してください。",
			map[string]*jsonschema.Schema{
				"date":    str("YYYY-MM-DD"),
				"step_id": integer("ステップID"),
				"done":    boolean("完了なら true"),
				"memo":    str("任意のメモ"),
			}, "step_id"),

		build("toggle_custom_task",
			"カスタムタスクの完了状態を更新します。",
			map[string]*jsonschema.Schema{
				"task_id": integer("カスタムタスクID"),
				"done":    boolean("完了なら true"),
				"memo":    str("任意のメモ"),
			}, "task_id"),

		build("update_custom_task_time",
			"カスタムタスクの予定時刻を変更します。",
			map[string]*jsonschema.Schema{
				"task_id":  integer("カスタムタスクID"),
				"new_time": str("HH:MM (24時間表記)"),
			}, "task_id", "new_time"),

		build("rename_custom_task",
			"カスタムタスクの名称を変更します。",
			map[string]*jsonschema.Schema{
				"task_id":  integer("カスタムタスクID"),
				"new_name": str("新しい名称"),
			}, "task_id", "new_name"),

		build("update_custom_task_memo",
			"カスタムタスクのメモを更新します。",
			map[string]*jsonschema.Schema{
				"task_id":  integer("カスタムタスクID"),
				"new_memo": str("更新後のメモ（空文字で削除可）"),
			}, "task_id", "new_memo"),

		build("update_log",
			"指定日付の日報を上書き保存します。日付が無い場合は today_date を使ってください。",
			map[string]*jsonschema.Schema{
				"date":    str("YYYY-MM-DD"),
				"content": str("日報本文"),
			}, "content"),

		build("append_day_log",
			"指定日付の日報に追記します。既存の内容は保持され、新しい内容が改行区切りで追加されます。日付が無い場合は today_date を使ってください。",
			map[string]*jsonschema.Schema{
				"date":    str("YYYY-MM-DD"),
				"content": str("追記する内容"),
			}, "content"),

		build("get_day_log",
			"指定日付の日報を取得します。日付が無い場合は today_date を使ってください。",
			map[string]*jsonschema.Schema{
				"date": str("YYYY-MM-DD"),
			}),

		build("add_routine",
			"新しいルーチンを追加します。days は 0=月, 6=日 のカンマ区切りです。",
			map[string]*jsonschema.Schema{
				"name":        str("ルーチン名"),
				"days":        str("例: 0,1,2,3,4"),
				"description": str("説明/メモ"),
			}, "name"),

		build("delete_routine",
			"指定IDまたは名前のルーチンを削除します。",
			map[string]*jsonschema.Schema{
				"routine_id":   integer("ルーチンID"),
				"routine_name": str("ルーチン名（IDが分からない場合のあいまい一致検索に使用）"),
			}),

		build("update_routine_days",
			"ルーチンの曜日設定を変更します。days は 0=月, 6=日 のカンマ区切りです。",
			map[string]*jsonschema.Schema{
				"routine_id": integer("ルーチンID"),
				"new_days":   str("例: 0,2,4"),
			}, "routine_id", "new_days"),

		build("add_step",
			"ルーチンにステップを追加します。",
			map[string]*jsonschema.Schema{
				"routine_id": integer("ルーチンID"),
				"name":       str("ステップ名"),
				"time":       str("HH:MM (24時間表記)"),
				"category":   str("カテゴリ (IoT / Browser / Lifestyle / Other)"),
			}, "routine_id", "name"),

		build("delete_step",
			"指定IDのステップを削除します。",
			map[string]*jsonschema.Schema{
				"step_id": integer("ステップID"),
			}, "step_id"),

		build("update_step_time",
			"ステップの時刻を変更します。",
			map[string]*jsonschema.Schema{
				"step_id":  integer("ステップID"),
				"new_time": str("HH:MM (24時間表記)"),
			}, "step_id", "new_time"),

		build("rename_step",
			"ステップ名を変更します。",
			map[string]*jsonschema.Schema{
				"step_id":  integer("ステップID"),
				"new_name": str("新しい名称"),
			}, "step_id", "new_name"),

		build("update_step_memo",
			"ステップのメモを更新します。",
			map[string]*jsonschema.Schema{
				"step_id":  integer("ステップID"),
				"new_memo": str("更新後のメモ（空文字で削除可）"),
			}, "step_id", "new_memo"),

		build("list_tasks_in_period",
			"指定期間のタスク・ルーチンステップ一覧を取得します。",
			map[string]*jsonschema.Schema{
				"start_date": str("YYYY-MM-DD"),
				"end_date":   str("YYYY-MM-DD"),
			}, "start_date", "end_date"),

		build("get_daily_summary",
			"指定日付のサマリーを生成して返します。日付が無い場合は today_date を利用してください。",
			map[string]*jsonschema.Schema{
				"date": str("YYYY-MM-DD"),
			}),

		build("resolve_schedule_expression",
			"自然言語の日時表現（相対日付・曜日・時刻表現など）を具体的な日付・時刻に解決します。他のアクションの date/time 引数を決める前に呼び出してください。",
			map[string]*jsonschema.Schema{
				"expression":   str("解決したい日時表現（例: 明日, 来週の月曜日, 午後3時）"),
				"base_date":    str("基準日 YYYY-MM-DD（省略時は today_date）"),
				"base_time":    str("基準時刻 HH:MM（省略時は 00:00）"),
				"default_time": str("expression に時刻表現が無い場合に使う時刻 HH:MM"),
			}, "expression"),
	}

	specs = append(specs, calcSpecs()...)
	return specs
}

func calcSpecs() []Spec {
	return []Spec{
		build("calc_date_offset",
			"基準日から指定日数後（負の値なら前）の日付を計算します。",
			map[string]*jsonschema.Schema{
				"base_date":   str("基準日 YYYY-MM-DD"),
				"offset_days": integer("オフセット日数（負の値可）"),
			}, "base_date", "offset_days"),

		build("calc_month_boundary",
			"指定月の月初または月末の日付を計算します。",
			map[string]*jsonschema.Schema{
				"year":     integer("年"),
				"month":    integer("月 (1-12)"),
				"boundary": str("'start' または 'end'"),
			}, "year", "month", "boundary"),

		build("calc_nearest_weekday",
			"基準日から最も近い指定曜日を探します。",
			map[string]*jsonschema.Schema{
				"base_date": str("基準日 YYYY-MM-DD"),
				"weekday":   integer("曜日 0(月)〜6(日)"),
				"direction": str("'forward' または 'backward'"),
			}, "base_date", "weekday", "direction"),

		build("calc_week_weekday",
			"基準日の週から指定週数ずらした週の、指定曜日の日付を計算します。",
			map[string]*jsonschema.Schema{
				"base_date":   str("基準日 YYYY-MM-DD"),
				"week_offset": integer("週オフセット（負の値可）"),
				"weekday":     integer("曜日 0(月)〜6(日)"),
			}, "base_date", "week_offset", "weekday"),

		build("calc_week_range",
			"基準日が含まれる週の月曜〜日曜の範囲を計算します。",
			map[string]*jsonschema.Schema{
				"base_date": str("基準日 YYYY-MM-DD"),
			}, "base_date"),

		build("calc_time_offset",
			"基準日時から指定分数を加減算します。日付の繰り上げ・繰り下げにも対応します。",
			map[string]*jsonschema.Schema{
				"base_date":      str("基準日 YYYY-MM-DD"),
				"base_time":      str("基準時刻 HH:MM"),
				"offset_minutes": integer("オフセット分数（負の値可）"),
			}, "base_date", "base_time", "offset_minutes"),

		build("get_date_info",
			"指定日付の曜日・年・月・日の情報を返します。",
			map[string]*jsonschema.Schema{
				"target_date": str("対象日 YYYY-MM-DD"),
			}, "target_date"),
	}
}

// Review returns the review-turn catalog: the decision tool plus the full
// scheduler catalog (a review turn may propose actions directly).
func Review() []Spec {
	decision := build(ReviewDecisionToolName,
		"レビュー結果をまとめます。actions を出す場合は別のツールコールとして発行してください。",
		map[string]*jsonschema.Schema{
			"action_required": boolean("自動アクションが必要か"),
			"should_reply":    boolean("ユーザーへ返信すべきか"),
			"reply":           str("返信メッセージ（省略可）"),
			"notes":           str("内部メモ/補足"),
		}, "action_required", "should_reply")

	return append([]Spec{decision}, Scheduler()...)
}

// ReadOnly is the set of scheduler action names that never mutate state.
// resolve_schedule_expression is deliberately excluded: though it performs
// no mutation, it is subject to the same write-fingerprint dedup as
// mutating actions so a model that calls it repeatedly on identical
// arguments doesn't loop forever.
var ReadOnly = map[string]bool{
	"get_day_log":           true,
	"list_tasks_in_period":  true,
	"get_daily_summary":     true,
	"calc_date_offset":      true,
	"calc_month_boundary":   true,
	"calc_nearest_weekday":  true,
	"calc_week_weekday":     true,
	"calc_week_range":       true,
	"calc_time_offset":      true,
	"get_date_info":         true,
}
