package cronjob

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	_const "github.com/TimeWtr/cronjob/const"
)

// FieldSet 某个时间单位上所有合法取值，严格递增且非空
type FieldSet []int

// ParseField 解析单个表达式字段
// 支持的格式：
// 1. "*" 表示该单位的全部取值；
// 2. 逗号分隔的整数列表，例如 "02,59"，重复值会被合并。
func ParseField(token string, unit _const.Unit) (FieldSet, error) {
	lo, hi := unit.Bounds()
	if lo > hi {
		return nil, fmt.Errorf("%w: unknown unit %d", ErrInvalidExpression, unit)
	}

	if token == "*" {
		fs := make(FieldSet, 0, hi-lo+1)
		for v := lo; v <= hi; v++ {
			fs = append(fs, v)
		}
		return fs, nil
	}

	seen := make(map[int]struct{})
	for _, item := range strings.Split(token, ",") {
		if item == "" {
			return nil, fmt.Errorf("%w: empty %s entry in %q", ErrInvalidExpression, unit, token)
		}
		v, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %s entry %q is not a number", ErrInvalidExpression, unit, item)
		}
		if v < lo || v > hi {
			return nil, fmt.Errorf("%w: %s value %d out of range [%d-%d]",
				ErrInvalidExpression, unit, v, lo, hi)
		}
		seen[v] = struct{}{}
	}

	fs := make(FieldSet, 0, len(seen))
	for v := range seen {
		fs = append(fs, v)
	}
	sort.Ints(fs)
	return fs, nil
}

func (f FieldSet) Contains(v int) bool {
	i := sort.SearchInts(f, v)
	return i < len(f) && f[i] == v
}

func (f FieldSet) First() int {
	return f[0]
}

func (f FieldSet) Last() int {
	return f[len(f)-1]
}
