package dateresolve

import "time"

// CalcDateOffset returns the date offsetDays after base (negative = before).
func CalcDateOffset(base time.Time, offsetDays int) Result {
	result := base.AddDate(0, 0, offsetDays)
	return Result{OK: true, Date: result.Format("2006-01-02"), Weekday: weekdayNameJA(result)}
}

// CalcMonthBoundary returns the first ("start") or last ("end") day of
// year/month.
func CalcMonthBoundary(year, month int, boundary string) Result {
	if month < 1 || month > 12 {
		return errResult("month は 1〜12 で指定してください: %d", month)
	}

	var result time.Time
	switch boundary {
	case "start":
		result = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	case "end":
		if month == 12 {
			result = time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		} else {
			result = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		}
	default:
		return errResult("boundary は 'start' または 'end' を指定してください: %s", boundary)
	}

	return Result{OK: true, Date: result.Format("2006-01-02"), Weekday: weekdayNameJA(result)}
}

// CalcNearestWeekday finds the nearest occurrence of weekday (0=Mon..6=Sun)
// from base in the given direction ("forward" or "backward"); if base
// already falls on weekday, base is returned unchanged.
func CalcNearestWeekday(base time.Time, weekday int, direction string) Result {
	if weekday < 0 || weekday > 6 {
		return errResult("weekday は 0(月)〜6(日) で指定してください: %d", weekday)
	}

	current := MondayZero(base)
	if current == weekday {
		return Result{OK: true, Date: base.Format("2006-01-02"), Weekday: weekdayNamesJA[weekday]}
	}

	var diff int
	switch direction {
	case "forward":
		diff = ((weekday-current)%7 + 7) % 7
	case "backward":
		diff = -(((current-weekday)%7 + 7) % 7)
	default:
		return errResult("direction は 'forward' または 'backward' を指定してください: %s", direction)
	}

	result := base.AddDate(0, 0, diff)
	return Result{OK: true, Date: result.Format("2006-01-02"), Weekday: weekdayNameJA(result)}
}

// CalcWeekWeekday returns the given weekday in the week weekOffset weeks
// from base's week (negative = earlier weeks).
func CalcWeekWeekday(base time.Time, weekOffset, weekday int) Result {
	if weekday < 0 || weekday > 6 {
		return errResult("weekday は 0(月)〜6(日) で指定してください: %d", weekday)
	}

	currentMonday := base.AddDate(0, 0, -MondayZero(base))
	targetMonday := currentMonday.AddDate(0, 0, weekOffset*7)
	result := targetMonday.AddDate(0, 0, weekday)
	return Result{OK: true, Date: result.Format("2006-01-02"), Weekday: weekdayNameJA(result)}
}

// CalcWeekRange returns the Monday-Sunday span containing base.
func CalcWeekRange(base time.Time) Result {
	monday := base.AddDate(0, 0, -MondayZero(base))
	sunday := monday.AddDate(0, 0, 6)
	return Result{
		OK:                 true,
		PeriodStart:        monday.Format("2006-01-02"),
		PeriodStartWeekday: weekdayNameJA(monday),
		PeriodEnd:          sunday.Format("2006-01-02"),
		PeriodEndWeekday:   weekdayNameJA(sunday),
	}
}

// CalcTimeOffset adds offsetMinutes to baseDate+baseTime, rolling over into
// adjacent days as needed.
func CalcTimeOffset(base time.Time, baseTime string, offsetMinutes int) Result {
	normalized := NormalizeHHMM(baseTime, "")
	if normalized == "" {
		return errResult("base_time の形式が不正です: %s", baseTime)
	}
	hour, minute := splitHHMM(normalized)
	baseDT := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	result := baseDT.Add(time.Duration(offsetMinutes) * time.Minute)
	return Result{
		OK:      true,
		Date:    result.Format("2006-01-02"),
		Time:    result.Format("15:04"),
		Weekday: weekdayNameJA(result),
	}
}

// GetDateInfo returns the weekday, year, month, and day for target.
func GetDateInfo(target time.Time) Result {
	return Result{
		OK:      true,
		Date:    target.Format("2006-01-02"),
		Weekday: weekdayNameJA(target),
		Year:    target.Year(),
		Month:   int(target.Month()),
		Day:     target.Day(),
	}
}
