package cronjob

import (
	"time"
)

// RetryStrategy 失败重试的等待策略，实现必须是无状态的，可以被多个协程共用
type RetryStrategy interface {
	// Next 已经重试 retries 次之后，返回下一次重试前的等待时间
	// 不允许继续重试时返回 ErrOverMaxCount
	Next(retries int) (time.Duration, error)
}

// FixedRetryStrategy 固定间隔，最多重试 MaxCount 次
type FixedRetryStrategy struct {
	Interval time.Duration
	MaxCount int
}

// NewFixedRetryStrategy maxCount 为0时不重试
func NewFixedRetryStrategy(interval time.Duration, maxCount int) FixedRetryStrategy {
	return FixedRetryStrategy{
		Interval: interval,
		MaxCount: max(maxCount, 0),
	}
}

func (s FixedRetryStrategy) Next(retries int) (time.Duration, error) {
	if retries >= s.MaxCount {
		return 0, ErrOverMaxCount
	}
	return s.Interval, nil
}
