package cronjob

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, expr string) Expression {
	t.Helper()
	e, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q) = _, %q, want <nil>", expr, err)
	}
	return e
}

func TestCursorNextDay(t *testing.T) {
	tests := []struct {
		from time.Time
		want time.Time
	}{
		{
			time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2023, 1, 30, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	e := mustParse(t, "0 0 0")
	for _, tt := range tests {
		c := newCursor(e, tt.from)
		c.nextDay()
		if got := c.Render(); !got.Equal(tt.want) {
			t.Errorf("nextDay(%v) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2023, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2023, time.April, 30},
		{2023, time.June, 30},
		{2023, time.September, 30},
		{2023, time.November, 30},
		{2023, time.January, 31},
		{2023, time.July, 31},
		{2023, time.August, 31},
		{2023, time.December, 31},
	}
	for _, tt := range tests {
		if got := daysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("daysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
		// time.Date 规范化第0天得到上个月最后一天
		last := time.Date(tt.year, tt.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if got := daysInMonth(tt.year, tt.month); got != last {
			t.Errorf("daysInMonth(%d, %s) = %d, time package says %d", tt.year, tt.month, got, last)
		}
	}
}

func TestCursorAdvanceCarry(t *testing.T) {
	e := mustParse(t, "02,59 39 17")
	c := newCursor(e, time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC))
	want := []time.Time{
		time.Date(2023, 12, 31, 17, 39, 2, 0, time.UTC),
		time.Date(2023, 12, 31, 17, 39, 59, 0, time.UTC),
		time.Date(2024, 1, 1, 17, 39, 2, 0, time.UTC),
		time.Date(2024, 1, 1, 17, 39, 59, 0, time.UTC),
		time.Date(2024, 1, 2, 17, 39, 2, 0, time.UTC),
	}
	for i, w := range want {
		if got := c.Render(); !got.Equal(w) {
			t.Errorf("Render() #%d = %v, want %v", i, got, w)
		}
		c.Advance()
	}
}

func TestCursorAdvanceIsMonotonic(t *testing.T) {
	for _, expr := range []string{"* * *", "0 0 0", "02,59 39 17", "0,30 * 0,23"} {
		e := mustParse(t, expr)
		c := newCursor(e, time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC))
		prev := c.Render()
		for i := 0; i < 200000; i++ {
			c.Advance()
			cur := c.Render()
			if !cur.After(prev) {
				t.Fatalf("%q: Render() after Advance #%d = %v, not after %v", expr, i, cur, prev)
			}
			if c.second < 0 || c.second >= len(e.Second) ||
				c.minute < 0 || c.minute >= len(e.Minute) ||
				c.hour < 0 || c.hour >= len(e.Hour) {
				t.Fatalf("%q: cursor index out of range: %+v", expr, c)
			}
			prev = cur
		}
	}
}

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) = _, %q, want <nil>", name, err)
	}
	return loc
}

func TestCursorSkipsDaylightSavingGap(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	c := newCursor(mustParse(t, "0 0 *"), time.Date(2024, 3, 10, 0, 0, 0, 0, ny))

	var got []time.Time
	for i := 0; i < 5; i++ {
		got = append(got, c.Render())
		c.Advance()
	}

	// 02:00 在当天不存在
	want := []time.Time{
		time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() -want +got\n%s", diff)
	}
}

func TestCursorAdvanceIsMonotonicAcrossDaylightSaving(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	tests := []struct {
		expr  string
		start time.Time
		steps int
	}{
		{expr: "* * *", start: time.Date(2024, 3, 9, 12, 0, 0, 0, ny), steps: 200000},
		{expr: "* * *", start: time.Date(2024, 11, 2, 12, 0, 0, 0, ny), steps: 200000},
		{expr: "0 0,30 *", start: time.Date(2024, 1, 1, 0, 0, 0, 0, ny), steps: 48 * 366},
		{expr: "0 0 2", start: time.Date(2024, 3, 1, 0, 0, 0, 0, ny), steps: 60},
	}
	for _, tc := range tests {
		c := newCursor(mustParse(t, tc.expr), tc.start)
		prev := c.Render()
		for i := 0; i < tc.steps; i++ {
			c.Advance()
			cur := c.Render()
			if !cur.After(prev) {
				t.Fatalf("%q: Render() after Advance #%d = %v, not after %v", tc.expr, i, cur, prev)
			}
			prev = cur
		}
	}
}
