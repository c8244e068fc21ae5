package _const

// Unit 表达式中的时间单位
type Unit int

const (
	UnitSecond Unit = 0x00000001 // 秒
	UnitMinute Unit = 0x00000002 // 分
	UnitHour   Unit = 0x00000003 // 时
)

func (u Unit) String() string {
	switch u {
	case UnitSecond:
		return "second"
	case UnitMinute:
		return "minute"
	case UnitHour:
		return "hour"
	default:
		return "unknown"
	}
}

// Bounds 返回单位的取值范围，闭区间
func (u Unit) Bounds() (lo, hi int) {
	switch u {
	case UnitSecond, UnitMinute:
		return 0, 59
	case UnitHour:
		return 0, 23
	default:
		return 0, -1
	}
}
