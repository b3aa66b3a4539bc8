package dateresolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ResolveScheduleExpression is the general-purpose entry point the
// dispatcher's resolve_schedule_expression action calls: it turns any
// supported date/time phrase into a concrete date, time, and weekday,
// anchored at baseDate/baseTime, falling back to defaultTime when the
// expression carries no explicit time of its own.
func ResolveScheduleExpression(expression string, baseDate time.Time, baseTime, defaultTime string) Result {
	text := strings.TrimSpace(expression)
	if text == "" {
		return errResult("expression が空です。")
	}

	normalizedBaseTime := NormalizeHHMM(baseTime, "00:00")
	normalizedDefaultTime := NormalizeHHMM(defaultTime, normalizedBaseTime)

	baseHour, baseMinute := splitHHMM(normalizedBaseTime)
	baseDateTime := time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), baseHour, baseMinute, 0, 0, baseDate.Location())

	if delta, ok := ExtractRelativeTimeDelta(text); ok {
		resolved := baseDateTime.Add(delta)
		return Result{
			OK:       true,
			Date:     resolved.Format("2006-01-02"),
			Time:     resolved.Format("15:04"),
			DateTime: resolved.Format("2006-01-02T15:04"),
			Weekday:  weekdayNameJA(resolved),
			Source:   "relative_time_delta",
		}
	}

	resolvedDate, dateSource, ok := ResolveDateExpression(text, baseDate)
	if !ok {
		return errResult("日付表現を解釈できませんでした: %s", text)
	}

	resolvedTime := normalizedDefaultTime
	source := dateSource
	if explicitTime, ok := ExtractExplicitTime(text); ok {
		resolvedTime = explicitTime
		source = dateSource + "+explicit_time"
	}

	hour, minute := splitHHMM(resolvedTime)
	resolvedDateTime := time.Date(resolvedDate.Year(), resolvedDate.Month(), resolvedDate.Day(), hour, minute, 0, 0, resolvedDate.Location())

	result := Result{
		OK:       true,
		Date:     resolvedDate.Format("2006-01-02"),
		Time:     resolvedTime,
		DateTime: resolvedDateTime.Format("2006-01-02T15:04"),
		Weekday:  weekdayNameJA(resolvedDate),
		Source:   source,
	}

	if periodStart, periodEnd, ok := ResolveWeekPeriod(text, baseDate); ok {
		result.PeriodStart = periodStart.Format("2006-01-02")
		result.PeriodEnd = periodEnd.Format("2006-01-02")
	}

	return result
}

func splitHHMM(hhmm string) (int, int) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}

var numericRelativeRe = regexp.MustCompile(`(\d+)\s*(日|週|週間|時間|分)\s*(後|前|まえ)`)

var relativeDatetimeTokens = []string{
	"今日", "本日", "明日", "明後日", "昨日", "一昨日",
	"来週", "再来週", "先週", "今週", "次の", "今度の",
	"きょう", "あした", "あさって", "きのう", "おととい",
}

// IsRelativeDatetimeText reports whether text contains a relative or
// weekday-anchored date/time expression requiring resolution, as opposed to
// a literal value that can be used as-is.
func IsRelativeDatetimeText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	for _, token := range relativeDatetimeTokens {
		if strings.Contains(text, token) {
			return true
		}
	}

	if numericRelativeRe.MatchString(text) {
		return true
	}

	if jaWeekdayRe.MatchString(text) {
		return true
	}

	if enWeekdayRe.MatchString(strings.ToLower(text)) {
		return true
	}

	return false
}
