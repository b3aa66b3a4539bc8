package dateresolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	colonFullRe  = regexp.MustCompile(`^([01]?\d|2[0-3])\s*:\s*([0-5]\d)$`)
	colonFindRe  = regexp.MustCompile(`([01]?\d|2[0-3])\s*:\s*([0-5]\d)`)
	hourFullRe   = regexp.MustCompile(`^([01]?\d|2[0-3])\s*時(?:\s*([0-5]?\d)\s*分?)?$`)
	hourFindRe   = regexp.MustCompile(`([01]?\d|2[0-3])\s*時(?:\s*([0-5]?\d)\s*分?)?`)
	ampmFindRe   = regexp.MustCompile(`(午前|午後)\s*([0-1]?\d)\s*時(?:\s*([0-5]?\d)\s*分?|\s*(半))?`)
	halfFindRe   = regexp.MustCompile(`([01]?\d|2[0-3])\s*時\s*半`)
	hoursMinsRe  = regexp.MustCompile(`(\d+)\s*時間(?:\s*(\d+)\s*分)?\s*(後|前|まえ)`)
	minutesOnlyRe = regexp.MustCompile(`(\d+)\s*分\s*(後|前|まえ)`)
)

// NormalizeHHMM canonicalizes a time-of-day expression ("9:05", "9時", "正午")
// into "HH:MM", returning fallback when text doesn't match any known form.
func NormalizeHHMM(text, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}

	if m := colonFullRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", h, mi)
	}

	if m := hourFullRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi := 0
		if m[2] != "" {
			mi, _ = strconv.Atoi(m[2])
		}
		return fmt.Sprintf("%02d:%02d", h, mi)
	}

	switch text {
	case "正午":
		return "12:00"
	case "深夜", "真夜中":
		return "00:00"
	}

	return fallback
}

// ExtractExplicitTime searches free text for an explicit clock time,
// supporting 24h colon notation, 午前/午後 AM/PM, "H時半", and 正午/深夜.
func ExtractExplicitTime(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	if m := colonFindRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", h, mi), true
	}

	if m := ampmFindRe.FindStringSubmatch(text); m != nil {
		marker := m[1]
		h, _ := strconv.Atoi(m[2])
		mi := 0
		if m[3] != "" {
			mi, _ = strconv.Atoi(m[3])
		}
		if m[4] != "" {
			mi = 30
		}
		if h > 12 || mi > 59 {
			return "", false
		}
		if marker == "午後" && h < 12 {
			h += 12
		}
		if marker == "午前" && h == 12 {
			h = 0
		}
		return fmt.Sprintf("%02d:%02d", h, mi), true
	}

	if m := halfFindRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:30", h), true
	}

	if m := hourFindRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi := 0
		if m[2] != "" {
			mi, _ = strconv.Atoi(m[2])
		}
		return fmt.Sprintf("%02d:%02d", h, mi), true
	}

	if strings.Contains(text, "正午") {
		return "12:00", true
	}
	if strings.Contains(text, "深夜") || strings.Contains(text, "真夜中") {
		return "00:00", true
	}

	return "", false
}

// ExtractRelativeTimeDelta reads "N時間M分後/前" or "N分後/前" style phrases
// into a signed duration.
func ExtractRelativeTimeDelta(text string) (time.Duration, bool) {
	if text == "" {
		return 0, false
	}

	if m := hoursMinsRe.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		sign := 1
		if m[3] == "前" || m[3] == "まえ" {
			sign = -1
		}
		return time.Duration(sign*(hours*60+minutes)) * time.Minute, true
	}

	if m := minutesOnlyRe.FindStringSubmatch(text); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		sign := 1
		if m[2] == "前" || m[2] == "まえ" {
			sign = -1
		}
		return time.Duration(sign*minutes) * time.Minute, true
	}

	return 0, false
}
