package repository

import (
	"context"
	"errors"
	"time"

	"github.com/TimeWtr/cronjob"
	"github.com/TimeWtr/cronjob/domain"
	"github.com/TimeWtr/cronjob/repository/dao"
)

var _ cronjob.Recorder = (*FireRepository)(nil)

type Options func(r *FireRepository)

// WithRetry 插入失败后以固定间隔最多重试 maxCount 次
func WithRetry(interval time.Duration, maxCount int) Options {
	return WithRetryStrategy(cronjob.NewFixedRetryStrategy(interval, maxCount))
}

// WithRetryStrategy 所有记录共用同一个策略
func WithRetryStrategy(s cronjob.RetryStrategy) Options {
	return func(r *FireRepository) {
		if s != nil {
			r.strategy = s
		}
	}
}

// FireRepository 触发历史，实现 cronjob.Recorder
type FireRepository struct {
	dao      dao.FireDAO
	strategy cronjob.RetryStrategy
}

func NewFireRepository(d dao.FireDAO, opts ...Options) *FireRepository {
	r := &FireRepository{
		dao:      d,
		strategy: cronjob.NewFixedRetryStrategy(0, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FireRepository) Record(ctx context.Context, fire domain.Fire) error {
	record := toRecord(fire)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for retries := 0; ; retries++ {
		err := r.dao.Insert(ctx, record)
		if err == nil {
			return nil
		}

		interval, serr := r.strategy.Next(retries)
		if serr != nil {
			return errors.Join(err, serr)
		}

		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			timer.Reset(interval)
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (r *FireRepository) ListByJob(ctx context.Context, jobName string, limit int) ([]domain.Fire, error) {
	records, err := r.dao.ListByJob(ctx, jobName, limit)
	if err != nil {
		return nil, err
	}

	res := make([]domain.Fire, 0, len(records))
	for _, record := range records {
		res = append(res, toDomain(record))
	}
	return res, nil
}

func toRecord(f domain.Fire) dao.FireRecord {
	return dao.FireRecord{
		JobName:      f.JobName,
		RunID:        f.RunID,
		Expression:   f.Expression,
		ScheduledAt:  f.ScheduledAt.UnixMilli(),
		DispatchedAt: f.DispatchedAt.UnixMilli(),
		DurationMs:   f.Duration.Milliseconds(),
		Continue:     f.Continue,
	}
}

func toDomain(r dao.FireRecord) domain.Fire {
	return domain.Fire{
		JobName:      r.JobName,
		RunID:        r.RunID,
		Expression:   r.Expression,
		ScheduledAt:  time.UnixMilli(r.ScheduledAt),
		DispatchedAt: time.UnixMilli(r.DispatchedAt),
		Duration:     time.Duration(r.DurationMs) * time.Millisecond,
		Continue:     r.Continue,
	}
}
