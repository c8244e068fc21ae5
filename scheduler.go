package cronjob

import (
	"context"
	"fmt"
	"time"

	_const "github.com/TimeWtr/cronjob/const"
	"github.com/TimeWtr/cronjob/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type Scheduler interface {
	// Register 注册定时任务
	Register(name, expr string, cb Callback) error
	// Run 启动所有已注册的任务，阻塞直到全部停止
	Run(ctx context.Context) error
	// Stop 停止指定任务
	Stop(name string) error
	// Upcoming 所有任务在from之后的前n次触发，按时间排序
	Upcoming(from time.Time, n int) []domain.Upcoming
}

type Options func(core *SchedulerCore)

// WithLimiter 设置所有任务同时执行的回调数量，limiter 不大于0时忽略
func WithLimiter(limiter int64) Options {
	return func(c *SchedulerCore) {
		if limiter > 0 {
			c.limiter = semaphore.NewWeighted(limiter)
		}
	}
}

func WithSchedulerClock(clock Clock) Options {
	return func(c *SchedulerCore) {
		c.clock = clock
	}
}

// WithSchedulerTick 设置每个任务后台协程的检查间隔
func WithSchedulerTick(d time.Duration) Options {
	return func(c *SchedulerCore) {
		c.tick = d
	}
}

// WithHistory 记录每一次回调
func WithHistory(r Recorder) Options {
	return func(c *SchedulerCore) {
		c.recorder = r
	}
}

func WithTimeZone(loc *time.Location) Options {
	return func(c *SchedulerCore) {
		c.loc = loc
	}
}

type SchedulerCore struct {
	logger Logger
	// 本地的任务注册中心
	jobs *registry
	// 限流，限制不同任务之间同时执行的回调数量
	limiter *semaphore.Weighted
	// 时间来源
	clock Clock
	// 检查间隔
	tick time.Duration
	// 触发历史
	recorder Recorder
	// 时区
	loc *time.Location
}

func NewScheduler(logger Logger, opts ...Options) Scheduler {
	if logger == nil {
		logger = NopLogger()
	}
	scheduler := &SchedulerCore{
		logger: logger,
		jobs:   newRegistry(8),
		clock:  RealClock{},
		tick:   DefaultTickInterval,
	}

	for _, opt := range opts {
		opt(scheduler)
	}

	if scheduler.limiter == nil {
		scheduler.limiter = semaphore.NewWeighted(_const.DefaultLimiter)
	}

	return scheduler
}

// Register 在 Run 之后注册的任务不会被启动
func (s *SchedulerCore) Register(name, expr string, cb Callback) error {
	if cb == nil {
		return fmt.Errorf("register %q: nil callback", name)
	}
	if _, ok := s.jobs.Get(name); ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}

	job, err := NewCronJob(expr,
		WithName(name),
		WithClock(s.clock),
		WithLocation(s.loc))
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}

	opts := []TrackerOption{
		WithTickInterval(s.tick),
		WithTrackerClock(s.clock),
		WithTrackerLogger(s.logger),
	}
	if s.recorder != nil {
		opts = append(opts, WithRecorder(s.recorder))
	}

	e := &entry{
		name:     name,
		schedule: job.Expression(),
		tracker:  NewJobTracker(job, opts...),
		cb:       cb,
	}
	if !s.jobs.Add(e) {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}

	var next time.Time
	e.tracker.Do(func(job *CronJob) {
		next = job.Next()
	})
	s.logger.Info("job registered", JobField(name),
		Field{Key: "expression", Val: expr},
		TimeField("next", next))
	return nil
}

func (s *SchedulerCore) Run(ctx context.Context) error {
	entries := s.jobs.All()
	if len(entries) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			err := e.tracker.Start(gctx, s.limit(gctx, e))
			if err != nil {
				return fmt.Errorf("job %q: %w", e.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *SchedulerCore) Stop(name string) error {
	e, ok := s.jobs.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	e.tracker.Stop()
	return nil
}

func (s *SchedulerCore) Upcoming(from time.Time, n int) []domain.Upcoming {
	return mergeUpcoming(s.jobs.All(), from, s.loc, n)
}

// limit 包装回调，执行前先获取令牌
func (s *SchedulerCore) limit(ctx context.Context, e *entry) Callback {
	return func(job *CronJob, fire time.Time) bool {
		if err := s.limiter.Acquire(ctx, 1); err != nil {
			// 只有ctx被取消时才会失败，任务随后会停止
			s.logger.Warn("failed to acquire limiter", JobField(e.name), ErrField(err))
			return true
		}
		defer s.limiter.Release(1)
		return e.cb(job, fire)
	}
}
