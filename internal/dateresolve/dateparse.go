package dateresolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoSlashRe  = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
	isoJaRe     = regexp.MustCompile(`(\d{4})年\s*(\d{1,2})月\s*(\d{1,2})日?`)
	monthDayRe  = regexp.MustCompile(`(\d{1,2})月\s*(\d{1,2})日`)
	slashMDRe   = regexp.MustCompile(`(?:^|\D)(\d{1,2})/(\d{1,2})(?:\D|$)`)
	dayShiftRe  = regexp.MustCompile(`(\d+)\s*日\s*(後|前|まえ)`)
	weekCountRe = regexp.MustCompile(`(\d+)\s*(?:週間|週)\s*(後|前|まえ)`)
)

var relativeDayKeywords = []struct {
	token  string
	offset int
}{
	{"一昨日", -2}, {"おととい", -2},
	{"昨日", -1}, {"きのう", -1},
	{"今日", 0}, {"本日", 0}, {"きょう", 0},
	{"明後日", 2}, {"あさって", 2},
	{"明日", 1}, {"あした", 1},
}

func safeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// looseParse tries a handful of common non-ISO layouts before giving up.
func looseParse(text string, base time.Time) (time.Time, bool) {
	layouts := []string{
		"2006/01/02", "2006/1/2",
		"Jan 2, 2006", "January 2, 2006",
		"2 Jan 2006", "02-01-2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveDateExpression resolves a free-text date expression relative to
// base, returning the resolved date, a source tag describing which rule
// fired, and whether resolution succeeded.
func ResolveDateExpression(expression string, base time.Time) (time.Time, string, bool) {
	text := strings.TrimSpace(expression)
	if text == "" {
		return time.Time{}, "empty", false
	}

	if m := isoSlashRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if t, ok := safeDate(y, mo, d); ok {
			return t, "explicit_date", true
		}
	}
	if m := isoJaRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if t, ok := safeDate(y, mo, d); ok {
			return t, "explicit_date", true
		}
	}

	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		if t, ok := safeDate(base.Year(), mo, d); ok {
			if t.Before(base) {
				if t2, ok2 := safeDate(base.Year()+1, mo, d); ok2 {
					t = t2
				}
			}
			return t, "month_day", true
		}
	}

	if m := slashMDRe.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		if t, ok := safeDate(base.Year(), mo, d); ok {
			if t.Before(base) {
				if t2, ok2 := safeDate(base.Year()+1, mo, d); ok2 {
					t = t2
				}
			}
			return t, "month_day_slash", true
		}
	}

	for _, kw := range relativeDayKeywords {
		if strings.Contains(text, kw.token) {
			return base.AddDate(0, 0, kw.offset), "relative_keyword", true
		}
	}

	if m := dayShiftRe.FindStringSubmatch(text); m != nil {
		days, _ := strconv.Atoi(m[1])
		sign := 1
		if m[2] == "前" || m[2] == "まえ" {
			sign = -1
		}
		return base.AddDate(0, 0, sign*days), "relative_day", true
	}

	if m := weekCountRe.FindStringSubmatch(text); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		sign := 1
		if m[2] == "前" || m[2] == "まえ" {
			sign = -1
		}
		return base.AddDate(0, 0, sign*weeks*7), "relative_week_count", true
	}

	if weekShift, ok := ExtractRelativeWeekShift(text); ok {
		weekday, hasWeekday := ExtractWeekday(text)
		if !hasWeekday {
			weekday = 0
		}
		currentMonday := base.AddDate(0, 0, -MondayZero(base))
		return currentMonday.AddDate(0, 0, weekShift*7+weekday), "relative_week", true
	}

	if weekday, ok := ExtractWeekday(text); ok {
		baseWD := MondayZero(base)
		if strings.Contains(text, "次の") || strings.Contains(text, "今度の") {
			daysAhead := ((weekday - baseWD) % 7 + 7) % 7
			if daysAhead == 0 {
				daysAhead = 7
			}
			return base.AddDate(0, 0, daysAhead), "next_weekday", true
		}

		daysAhead := ((weekday - baseWD) % 7 + 7) % 7
		if daysAhead == 0 && !strings.Contains(text, "今週") && !strings.Contains(text, "今日") && !strings.Contains(text, "本日") {
			daysAhead = 7
		}
		return base.AddDate(0, 0, daysAhead), "weekday", true
	}

	if t, ok := looseParse(text, base); ok {
		return t, "loose_parse", true
	}

	return time.Time{}, "unresolved", false
}

// ResolveWeekPeriod resolves a bare week-scope expression ("来週" with no
// weekday) to its Monday-Sunday span; returns ok=false when expression also
// names a weekday (it isn't a whole-week scope) or names no week shift.
func ResolveWeekPeriod(expression string, base time.Time) (start, end time.Time, ok bool) {
	text := strings.TrimSpace(expression)
	if text == "" {
		return time.Time{}, time.Time{}, false
	}

	weekShift, hasShift := ExtractRelativeWeekShift(text)
	if !hasShift {
		return time.Time{}, time.Time{}, false
	}
	if _, hasWeekday := ExtractWeekday(text); hasWeekday {
		return time.Time{}, time.Time{}, false
	}

	currentMonday := base.AddDate(0, 0, -MondayZero(base))
	start = currentMonday.AddDate(0, 0, weekShift*7)
	end = start.AddDate(0, 0, 6)
	return start, end, true
}
