package dispatch

import (
	"encoding/json"
	"time"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
)

func resultJSON(label string, r dateresolve.Result) string {
	b, err := json.Marshal(r)
	if err != nil {
		return label + ": エンコードに失敗しました"
	}
	return "計算結果(" + label + "): " + string(b)
}

func dispatchCalc(action Action) (outcome, error) {
	switch action.Type {
	case "calc_date_offset":
		base, ok := dateresolve.TryParseISODate(argString(action.Args, "base_date"))
		if !ok {
			return invalid("calc_date_offset: base_date が不正です。YYYY-MM-DD で指定してください。")
		}
		offset, _ := argInt(action.Args, "offset_days")
		return ok2(resultJSON("calc_date_offset", dateresolve.CalcDateOffset(base, offset)))

	case "calc_month_boundary":
		year, _ := argInt(action.Args, "year")
		month, _ := argInt(action.Args, "month")
		boundary := argString(action.Args, "boundary")
		calc := dateresolve.CalcMonthBoundary(year, month, boundary)
		if !calc.OK {
			return invalid("calc_month_boundary: %s", calc.Error)
		}
		return ok2(resultJSON("calc_month_boundary", calc))

	case "calc_nearest_weekday":
		base, ok := dateresolve.TryParseISODate(argString(action.Args, "base_date"))
		if !ok {
			return invalid("calc_nearest_weekday: base_date が不正です。YYYY-MM-DD で指定してください。")
		}
		weekday, _ := argInt(action.Args, "weekday")
		direction := argString(action.Args, "direction")
		calc := dateresolve.CalcNearestWeekday(base, weekday, direction)
		if !calc.OK {
			return invalid("calc_nearest_weekday: %s", calc.Error)
		}
		return ok2(resultJSON("calc_nearest_weekday", calc))

	case "calc_week_weekday":
		base, ok := dateresolve.TryParseISODate(argString(action.Args, "base_date"))
		if !ok {
			return invalid("calc_week_weekday: base_date が不正です。YYYY-MM-DD で指定してください。")
		}
		weekOffset, _ := argInt(action.Args, "week_offset")
		weekday, _ := argInt(action.Args, "weekday")
		calc := dateresolve.CalcWeekWeekday(base, weekOffset, weekday)
		if !calc.OK {
			return invalid("calc_week_weekday: %s", calc.Error)
		}
		return ok2(resultJSON("calc_week_weekday", calc))

	case "calc_week_range":
		base, ok := dateresolve.TryParseISODate(argString(action.Args, "base_date"))
		if !ok {
			return invalid("calc_week_range: base_date が不正です。YYYY-MM-DD で指定してください。")
		}
		return ok2(resultJSON("calc_week_range", dateresolve.CalcWeekRange(base)))

	case "calc_time_offset":
		base, ok := dateresolve.TryParseISODate(argString(action.Args, "base_date"))
		if !ok {
			return invalid("calc_time_offset: base_date が不正です。YYYY-MM-DD で指定してください。")
		}
		baseTime := argString(action.Args, "base_time")
		offsetMinutes, _ := argInt(action.Args, "offset_minutes")
		calc := dateresolve.CalcTimeOffset(base, baseTime, offsetMinutes)
		if !calc.OK {
			return invalid("calc_time_offset: %s", calc.Error)
		}
		return ok2(resultJSON("calc_time_offset", calc))

	case "get_date_info":
		target, ok := dateresolve.TryParseISODate(argString(action.Args, "target_date"))
		if !ok {
			return invalid("get_date_info: date が不正です。YYYY-MM-DD で指定してください。")
		}
		return ok2(resultJSON("get_date_info", dateresolve.GetDateInfo(target)))
	}

	return invalid("未知の計算アクション: %s", action.Type)
}

// ok2 wraps a plain result string as a non-mutating, non-error outcome.
func ok2(result string) (outcome, error) {
	return outcome{result: result}, nil
}

func dispatchResolveScheduleExpression(action Action, defaultDate time.Time) (outcome, error) {
	expression := argString(action.Args, "expression")
	baseDate := defaultDate
	if v := argString(action.Args, "base_date"); v != "" {
		if parsed, ok := dateresolve.TryParseISODate(v); ok {
			baseDate = parsed
		}
	}
	baseTime := argString(action.Args, "base_time")
	defaultTime := argString(action.Args, "default_time")

	result := dateresolve.ResolveScheduleExpression(expression, baseDate, baseTime, defaultTime)
	if !result.OK {
		return invalid("resolve_schedule_expression: %s", result.Error)
	}
	return ok2(resultJSON("resolve_schedule_expression", result))
}
