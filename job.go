package cronjob

import (
	"time"

	_const "github.com/TimeWtr/cronjob/const"
)

// CronJob 单个定时任务，本身不是并发安全的，由 JobTracker 的锁保护
type CronJob struct {
	name      string
	expr      Expression
	cursor    *cursor
	status    _const.JobStatus
	startTime time.Time
}

type JobOption func(*jobConfig)

type jobConfig struct {
	name  string
	clock Clock
	loc   *time.Location
}

func WithName(name string) JobOption {
	return func(c *jobConfig) {
		c.name = name
	}
}

// WithClock 设置获取起始时间的时钟
func WithClock(clock Clock) JobOption {
	return func(c *jobConfig) {
		c.clock = clock
	}
}

// WithLocation 设置触发时间所在的时区，默认使用时钟返回时间的时区
func WithLocation(loc *time.Location) JobOption {
	return func(c *jobConfig) {
		c.loc = loc
	}
}

// NewCronJob 解析表达式并创建任务，起始时间在创建时确定
func NewCronJob(expr string, opts ...JobOption) (*CronJob, error) {
	cfg := jobConfig{clock: RealClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	start := cfg.clock.Now()
	if cfg.loc != nil {
		start = start.In(cfg.loc)
	}

	return &CronJob{
		name:      cfg.name,
		expr:      e,
		cursor:    newCursor(e, start),
		status:    _const.JobStatusIdle,
		startTime: start,
	}, nil
}

// SeekToStart 丢弃所有早于anchor的候选时间
func (j *CronJob) SeekToStart(anchor time.Time) {
	for j.cursor.Render().Before(anchor) {
		j.cursor.Advance()
	}
}

// PollDue 当前候选时间已到期时返回该时间并前进一次，否则返回false且不修改状态
// 如果错过了多个候选时间，每次调用只会补发一个，调用方会在短时间内连续收到多次触发
func (j *CronJob) PollDue(now time.Time) (time.Time, bool) {
	candidate := j.cursor.Render()
	if candidate.After(now) {
		return time.Time{}, false
	}
	j.cursor.Advance()
	return candidate, true
}

// Stop 停止任务，回调中可以直接调用
func (j *CronJob) Stop() {
	j.status = _const.JobStatusStopped
}

func (j *CronJob) Status() _const.JobStatus {
	return j.status
}

// Next 当前指向的候选触发时间
func (j *CronJob) Next() time.Time {
	return j.cursor.Render()
}

func (j *CronJob) Name() string {
	return j.name
}

func (j *CronJob) Expression() Expression {
	return j.expr
}

func (j *CronJob) StartTime() time.Time {
	return j.startTime
}

// transition 只允许合法的状态迁移
func (j *CronJob) transition(to _const.JobStatus) bool {
	if !j.status.CanTransition(to) {
		return false
	}
	j.status = to
	return true
}
