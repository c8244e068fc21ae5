package cronjob

import "errors"

var (
	// ErrInvalidExpression 表达式格式错误，只会在构造阶段返回
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrWorkerFailed 后台工作协程异常退出
	ErrWorkerFailed = errors.New("tracker worker failed")
	// ErrQueueClosed 事件通道在未收到停止信号的情况下被关闭
	ErrQueueClosed = errors.New("fire queue closed")
	// ErrJobExists 同名任务已注册
	ErrJobExists = errors.New("job already registered")
	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("job not found")
	// ErrOverMaxCount 重试次数超过上限
	ErrOverMaxCount = errors.New("over max count")
)
