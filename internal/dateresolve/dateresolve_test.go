package dateresolve

import (
	"testing"
	"time"
)

// Friday, 2026-07-31.
func fixtureBase() time.Time {
	return time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
}

func TestResolveScheduleExpression(t *testing.T) {
	base := fixtureBase()

	t.Run("relative keyword tomorrow", func(t *testing.T) {
		got := ResolveScheduleExpression("明日", base, "09:00", "00:00")
		if !got.OK || got.Date != "2026-08-01" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("explicit date with slash", func(t *testing.T) {
		got := ResolveScheduleExpression("2026/8/5", base, "09:00", "00:00")
		if !got.OK || got.Date != "2026-08-05" || got.Source != "explicit_date" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("month day rolls over to next year", func(t *testing.T) {
		got := ResolveScheduleExpression("1月5日", base, "09:00", "00:00")
		if !got.OK || got.Date != "2027-01-05" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("explicit time overrides default", func(t *testing.T) {
		got := ResolveScheduleExpression("明日の午後3時", base, "09:00", "00:00")
		if !got.OK || got.Time != "15:00" || got.Date != "2026-08-01" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("relative time delta offsets base time", func(t *testing.T) {
		got := ResolveScheduleExpression("2時間後", base, "09:00", "00:00")
		if !got.OK || got.Time != "11:00" || got.Source != "relative_time_delta" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("weekday without next prefix this week", func(t *testing.T) {
		// base is Friday (weekday index 4); Monday is 3 days ahead.
		got := ResolveScheduleExpression("月曜日", base, "09:00", "00:00")
		if !got.OK || got.Date != "2026-08-03" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("empty expression errors", func(t *testing.T) {
		got := ResolveScheduleExpression("   ", base, "09:00", "00:00")
		if got.OK {
			t.Fatalf("expected failure, got %+v", got)
		}
	})

	t.Run("unresolvable expression errors", func(t *testing.T) {
		got := ResolveScheduleExpression("asdkjfhalksdjf", base, "09:00", "00:00")
		if got.OK {
			t.Fatalf("expected failure, got %+v", got)
		}
	})

	t.Run("bare week scope carries period bounds", func(t *testing.T) {
		got := ResolveScheduleExpression("来週", base, "09:00", "00:00")
		if !got.OK || got.PeriodStart == "" || got.PeriodEnd == "" {
			t.Fatalf("got %+v", got)
		}
		if got.PeriodEnd != addDays(t, got.PeriodStart, 6) {
			t.Fatalf("expected 7-day span, got start=%s end=%s", got.PeriodStart, got.PeriodEnd)
		}
	})
}

func addDays(t *testing.T, iso string, days int) string {
	t.Helper()
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		t.Fatalf("bad iso date %q: %v", iso, err)
	}
	return d.AddDate(0, 0, days).Format("2006-01-02")
}

func TestIsRelativeDatetimeText(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"明日", true},
		{"来週の月曜日", true},
		{"Monday", true},
		{"2026-08-01", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsRelativeDatetimeText(tc.text); got != tc.want {
			t.Errorf("IsRelativeDatetimeText(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestRequiresDateResolution(t *testing.T) {
	if RequiresDateResolution("2026-08-01") {
		t.Error("expected plain ISO date to not require resolution")
	}
	if !RequiresDateResolution("明日") {
		t.Error("expected relative expression to require resolution")
	}
}

func TestCalcDateOffset(t *testing.T) {
	base := fixtureBase()
	got := CalcDateOffset(base, -2)
	if !got.OK || got.Date != "2026-07-29" {
		t.Fatalf("got %+v", got)
	}
}

func TestCalcMonthBoundary(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		got := CalcMonthBoundary(2026, 2, "start")
		if !got.OK || got.Date != "2026-02-01" {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("end of february non-leap", func(t *testing.T) {
		got := CalcMonthBoundary(2026, 2, "end")
		if !got.OK || got.Date != "2026-02-28" {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("end of december rolls into next year", func(t *testing.T) {
		got := CalcMonthBoundary(2026, 12, "end")
		if !got.OK || got.Date != "2026-12-31" {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("invalid month", func(t *testing.T) {
		got := CalcMonthBoundary(2026, 13, "start")
		if got.OK {
			t.Fatalf("expected failure, got %+v", got)
		}
	})
}

func TestCalcNearestWeekday(t *testing.T) {
	base := fixtureBase() // Friday, weekday index 4

	t.Run("same weekday returns base unchanged", func(t *testing.T) {
		got := CalcNearestWeekday(base, 4, "forward")
		if !got.OK || got.Date != "2026-07-31" {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("forward to monday", func(t *testing.T) {
		got := CalcNearestWeekday(base, 0, "forward")
		if !got.OK || got.Date != "2026-08-03" {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("backward to monday", func(t *testing.T) {
		got := CalcNearestWeekday(base, 0, "backward")
		if !got.OK || got.Date != "2026-07-27" {
			t.Fatalf("got %+v", got)
		}
	})
	t.Run("invalid weekday", func(t *testing.T) {
		got := CalcNearestWeekday(base, 9, "forward")
		if got.OK {
			t.Fatalf("expected failure, got %+v", got)
		}
	})
}

func TestCalcWeekRange_SevenDaySpan(t *testing.T) {
	base := fixtureBase()
	got := CalcWeekRange(base)
	if !got.OK {
		t.Fatalf("got %+v", got)
	}
	if addDays(t, got.PeriodStart, 6) != got.PeriodEnd {
		t.Fatalf("expected 7-day span, got %+v", got)
	}
	start, _ := time.Parse("2006-01-02", got.PeriodStart)
	if start.Weekday() != time.Monday {
		t.Fatalf("expected period_start to be a Monday, got %v", start.Weekday())
	}
}

func TestCalcWeekWeekday(t *testing.T) {
	base := fixtureBase()
	got := CalcWeekWeekday(base, 1, 2) // next week's Wednesday
	if !got.OK || got.Date != "2026-08-05" {
		t.Fatalf("got %+v", got)
	}
}

func TestCalcTimeOffset_RollsOverMidnight(t *testing.T) {
	base := fixtureBase()
	got := CalcTimeOffset(base, "23:30", 90)
	if !got.OK || got.Date != "2026-08-01" || got.Time != "01:00" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetDateInfo(t *testing.T) {
	base := fixtureBase()
	got := GetDateInfo(base)
	if !got.OK || got.Year != 2026 || got.Month != 7 || got.Day != 31 {
		t.Fatalf("got %+v", got)
	}
}

func TestNormalizeHHMM(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"9:05", "09:05"},
		{"9時", "09:00"},
		{"9時30分", "09:30"},
		{"正午", "12:00"},
		{"深夜", "00:00"},
		{"garbage", "00:00"},
	}
	for _, tc := range cases {
		if got := NormalizeHHMM(tc.in, "00:00"); got != tc.want {
			t.Errorf("NormalizeHHMM(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractExplicitTime(t *testing.T) {
	cases := []struct {
		text     string
		wantTime string
		wantOK   bool
	}{
		{"15:30に予定", "15:30", true},
		{"午後3時半に予定", "15:30", true},
		{"午前9時に予定", "09:00", true},
		{"正午に集合", "12:00", true},
		{"予定なし", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractExplicitTime(tc.text)
		if ok != tc.wantOK || got != tc.wantTime {
			t.Errorf("ExtractExplicitTime(%q) = (%q, %v), want (%q, %v)", tc.text, got, ok, tc.wantTime, tc.wantOK)
		}
	}
}
