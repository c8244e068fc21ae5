package _const

// JobStatus 定时任务的生命周期状态
type JobStatus int

const (
	JobStatusIdle    JobStatus = 0x00000001 // 空闲，等待下一次触发
	JobStatusRunning JobStatus = 0x00000002 // 回调执行中
	JobStatusStopped JobStatus = 0x00000003 // 已停止，终态
)

func (s JobStatus) String() string {
	switch s {
	case JobStatusIdle:
		return "Idle"
	case JobStatusRunning:
		return "Running"
	case JobStatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// CanTransition 判断状态迁移是否合法
// Idle -> Running | Stopped
// Running -> Idle | Stopped
// Stopped 为终态，不允许迁出
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case JobStatusIdle:
		return to == JobStatusRunning || to == JobStatusStopped
	case JobStatusRunning:
		return to == JobStatusIdle || to == JobStatusStopped
	default:
		return false
	}
}
