package domain

import "time"

// Fire 一次回调执行的记录
type Fire struct {
	// JobName 任务名称
	JobName string
	// RunID 每次调用 Start 生成的唯一标识
	RunID string
	// Expression 任务的调度表达式
	Expression string
	// ScheduledAt 计划触发时间
	ScheduledAt time.Time
	// DispatchedAt 回调实际开始执行的时间
	DispatchedAt time.Time
	// Duration 回调执行耗时
	Duration time.Duration
	// Continue 回调的返回值，false表示回调要求停止任务
	Continue bool
}

// Upcoming 某个任务未来的一次触发
type Upcoming struct {
	JobName string
	At      time.Time
}
