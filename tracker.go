package cronjob

import (
	"context"
	"fmt"
	"sync"
	"time"

	_const "github.com/TimeWtr/cronjob/const"
	"github.com/TimeWtr/cronjob/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTickInterval 后台协程检查到期时间的间隔
const DefaultTickInterval = time.Second

type TrackerOption func(t *JobTracker)

// WithTickInterval 设置后台协程的检查间隔
func WithTickInterval(d time.Duration) TrackerOption {
	return func(t *JobTracker) {
		if d > 0 {
			t.tick = d
		}
	}
}

func WithTrackerLogger(logger Logger) TrackerOption {
	return func(t *JobTracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithTrackerClock(clock Clock) TrackerOption {
	return func(t *JobTracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithRecorder 每次回调结束后记录一条触发记录
func WithRecorder(r Recorder) TrackerOption {
	return func(t *JobTracker) {
		t.recorder = r
	}
}

// JobTracker 持有任务并驱动调度
// 后台协程按固定间隔检查任务是否到期，把到期时间写入队列；
// 调用 Start 的协程从队列读取事件，在持有任务锁的情况下执行回调。
// 同一时刻最多只有一个回调在执行。
type JobTracker struct {
	mu       sync.Mutex
	job      *CronJob
	runID    string
	clock    Clock
	tick     time.Duration
	logger   Logger
	recorder Recorder
}

// NewJobTracker 包装任务，并将任务前进到起始时间之后的第一个候选时间
func NewJobTracker(job *CronJob, opts ...TrackerOption) *JobTracker {
	t := &JobTracker{
		job:    job,
		clock:  RealClock{},
		tick:   DefaultTickInterval,
		logger: NopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.logger = t.logger.With(JobField(job.Name()))
	job.SeekToStart(job.StartTime())
	return t
}

// Start 阻塞直到任务停止
// 任务正常停止时返回nil；ctx被取消时返回ctx.Err()；
// 后台协程异常时返回 ErrWorkerFailed。
// 回调 panic 不会被恢复，会在调用方协程继续传播。
func (t *JobTracker) Start(ctx context.Context, cb Callback) error {
	t.mu.Lock()
	t.runID = uuid.NewString()
	t.mu.Unlock()

	t.logger.Info("tracker started",
		Field{Key: "run_id", Val: t.RunID()},
		Field{Key: "expression", Val: t.job.Expression().String()},
		Field{Key: "tick", Val: t.tick.String()})

	q := newFireQueue()
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		defer q.Close()
		return t.work(wctx, q)
	})

	err := t.dispatch(ctx, q, cb)
	// 分发协程退出后唤醒仍在等待的后台协程
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err == nil {
		err = ctx.Err()
	}

	t.logger.Info("tracker stopped", ErrField(err))
	return err
}

// Stop 请求停止任务，两个协程会在下一次获取锁时退出
func (t *JobTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Stop()
}

func (t *JobTracker) Status() _const.JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job.Status()
}

// Do 在持有锁的情况下访问任务
func (t *JobTracker) Do(fn func(job *CronJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.job)
}

func (t *JobTracker) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// work 后台协程主循环
func (t *JobTracker) work(ctx context.Context, q *fireQueue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrWorkerFailed, r)
			t.logger.Error("tracker worker panicked", ErrField(err))
			q.Push(fireEvent{kind: fireFailed, err: err})
		}
	}()

	for {
		if t.poll(q) {
			return nil
		}

		select {
		case <-ctx.Done():
			// 取消视为外部停止请求，下一轮会发送停止信号
			t.Stop()
		case <-t.clock.After(t.tick):
		}
	}
}

// poll 返回true表示后台协程应该退出
func (t *JobTracker) poll(q *fireQueue) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.job.Status() {
	case _const.JobStatusIdle:
		if at, ok := t.job.PollDue(t.clock.Now()); ok {
			q.Push(fireEvent{kind: fireDue, at: at})
		}
	case _const.JobStatusStopped:
		q.Push(fireEvent{kind: fireStop})
		return true
	default:
		// 回调执行中，本轮跳过，继续等待下一次检查
	}
	return false
}

// dispatch 前台分发循环，队列是唯一的阻塞点
func (t *JobTracker) dispatch(ctx context.Context, q *fireQueue, cb Callback) error {
	for {
		ev, ok := q.Pop()
		if !ok {
			t.Stop()
			return ErrQueueClosed
		}

		if ev.kind == fireFailed {
			t.Stop()
			return ev.err
		}

		if t.handle(ctx, ev, cb) {
			return nil
		}
	}
}

// handle 返回true表示任务已停止
func (t *JobTracker) handle(ctx context.Context, ev fireEvent, cb Callback) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.job.Status() {
	case _const.JobStatusIdle:
		if ev.kind != fireDue {
			return false
		}
		t.job.transition(_const.JobStatusRunning)
		t.invoke(ctx, ev.at, cb)
	case _const.JobStatusStopped:
		return true
	}
	return false
}

// invoke 调用方必须持有锁
func (t *JobTracker) invoke(ctx context.Context, at time.Time, cb Callback) {
	started := t.clock.Now()
	completed := false
	defer func() {
		if !completed {
			t.job.Stop()
			t.logger.Error("callback panicked, job stopped", TimeField("fire", at))
		}
	}()

	t.logger.Debug("dispatching fire", TimeField("fire", at))
	next := cb(t.job, at)
	completed = true

	if next {
		t.job.transition(_const.JobStatusIdle)
	} else {
		t.job.transition(_const.JobStatusStopped)
	}

	t.record(ctx, domain.Fire{
		JobName:      t.job.Name(),
		RunID:        t.runID,
		Expression:   t.job.Expression().String(),
		ScheduledAt:  at,
		DispatchedAt: started,
		Duration:     t.clock.Now().Sub(started),
		Continue:     next,
	})
}

func (t *JobTracker) record(ctx context.Context, fire domain.Fire) {
	if t.recorder == nil {
		return
	}

	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := t.recorder.Record(lctx, fire); err != nil {
		t.logger.Warn("failed to record fire", TimeField("fire", fire.ScheduledAt), ErrField(err))
	}
}
