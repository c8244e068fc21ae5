package cronjob

import (
	"context"
	"time"

	"github.com/TimeWtr/cronjob/domain"
)

// Callback 用户回调，在持有任务锁的情况下同步执行
// 返回 true 表示继续调度，false 表示停止任务
// 回调发生 panic 时任务会被置为停止，panic 继续向上传播
type Callback func(job *CronJob, fire time.Time) bool

// Recorder 触发记录的存储抽象，只用于审计，不会用于恢复调度进度
type Recorder interface {
	Record(ctx context.Context, fire domain.Fire) error
}
