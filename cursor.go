package cronjob

import "time"

// cursor 指向下一次候选触发时间
// 秒、分、时为对应 FieldSet 的下标，日期单独维护
type cursor struct {
	expr Expression

	second int
	minute int
	hour   int

	year  int
	month time.Month
	day   int
	loc   *time.Location
}

// newCursor 从anchor所在日期的第一个候选时间开始
func newCursor(expr Expression, anchor time.Time) *cursor {
	y, m, d := anchor.Date()
	return &cursor{
		expr:  expr,
		year:  y,
		month: m,
		day:   d,
		loc:   anchor.Location(),
	}
}

// Render 当前候选时间
func (c *cursor) Render() time.Time {
	return time.Date(c.year, c.month, c.day,
		c.expr.Hour[c.hour], c.expr.Minute[c.minute], c.expr.Second[c.second],
		0, c.loc)
}

// Advance 移动到下一个严格晚于当前的候选时间
// 夏令时跳过的本地时间会被 time.Date 归一化到不晚于前一个候选时间的时刻，这类候选直接跳过
func (c *cursor) Advance() {
	prev := c.Render()
	c.step()
	for !c.Render().After(prev) {
		c.step()
	}
}

// step 按秒、分、时、日依次进位
func (c *cursor) step() {
	if c.second < len(c.expr.Second)-1 {
		c.second++
		return
	}
	c.second = 0

	if c.minute < len(c.expr.Minute)-1 {
		c.minute++
		return
	}
	c.minute = 0

	if c.hour < len(c.expr.Hour)-1 {
		c.hour++
		return
	}
	c.hour = 0

	c.nextDay()
}

func (c *cursor) nextDay() {
	c.day++
	if c.day <= daysInMonth(c.year, c.month) {
		return
	}
	c.day = 1
	c.month++
	if c.month <= time.December {
		return
	}
	c.month = time.January
	c.year++
}

func daysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
