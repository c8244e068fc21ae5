package cronjob

import (
	"fmt"
	"strings"
	"time"

	_const "github.com/TimeWtr/cronjob/const"
	"github.com/robfig/cron/v3"
)

var _ cron.Schedule = Expression{}

// Expression 解析后的调度表达式，格式为 "<second> <minute> <hour>"
type Expression struct {
	source string
	Second FieldSet
	Minute FieldSet
	Hour   FieldSet
}

// Parse 解析调度表达式，字段数量必须为3
func Parse(expr string) (Expression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 3 {
		return Expression{}, fmt.Errorf("%w: expected 3 fields, got %d in %q",
			ErrInvalidExpression, len(fields), expr)
	}

	second, err := ParseField(fields[0], _const.UnitSecond)
	if err != nil {
		return Expression{}, err
	}
	minute, err := ParseField(fields[1], _const.UnitMinute)
	if err != nil {
		return Expression{}, err
	}
	hour, err := ParseField(fields[2], _const.UnitHour)
	if err != nil {
		return Expression{}, err
	}

	return Expression{
		source: expr,
		Second: second,
		Minute: minute,
		Hour:   hour,
	}, nil
}

func (e Expression) String() string {
	return e.source
}

// Next 返回严格晚于t的最近一次触发时间，使用t所在的时区
func (e Expression) Next(t time.Time) time.Time {
	c := newCursor(e, t)
	for !c.Render().After(t) {
		c.Advance()
	}
	return c.Render()
}
