package dateresolve

import (
	"regexp"
	"strings"
)

var jaWeekdayRe = regexp.MustCompile(`(月|火|水|木|金|土|日)(?:曜(?:日)?)`)

var jaWeekdayIndex = map[string]int{
	"月": 0, "火": 1, "水": 2, "木": 3, "金": 4, "土": 5, "日": 6,
}

var enWeekdayRe = regexp.MustCompile(`\b(mon(day)?|tue(sday)?|wed(nesday)?|thu(rsday)?|fri(day)?|sat(urday)?|sun(day)?)\b`)

var enWeekdayIndex = map[string]int{
	"monday": 0, "mon": 0,
	"tuesday": 1, "tue": 1,
	"wednesday": 2, "wed": 2,
	"thursday": 3, "thu": 3,
	"friday": 4, "fri": 4,
	"saturday": 5, "sat": 5,
	"sunday": 6, "sun": 6,
}

// ExtractWeekday finds a weekday name (Japanese kanji or English) in text,
// in the 0=Monday..6=Sunday scheme.
func ExtractWeekday(text string) (int, bool) {
	if m := jaWeekdayRe.FindStringSubmatch(text); m != nil {
		if idx, ok := jaWeekdayIndex[m[1]]; ok {
			return idx, true
		}
	}

	lower := strings.ToLower(text)
	if m := enWeekdayRe.FindStringSubmatch(lower); m != nil {
		if idx, ok := enWeekdayIndex[strings.ToLower(m[1])]; ok {
			return idx, true
		}
	}

	return 0, false
}

// ExtractRelativeWeekShift detects 今週/来週/再来週/先週-style week shift
// markers, returning the shift in whole weeks (0 = this week).
func ExtractRelativeWeekShift(text string) (int, bool) {
	switch {
	case strings.Contains(text, "再来週"), strings.Contains(text, "翌々週"):
		return 2, true
	case strings.Contains(text, "来週"), strings.Contains(text, "翌週"):
		return 1, true
	case strings.Contains(text, "先週"):
		return -1, true
	case strings.Contains(text, "今週"):
		return 0, true
	}
	return 0, false
}
