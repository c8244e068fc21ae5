package dao

import (
	"context"

	"gorm.io/gorm"
)

type FireDAO interface {
	Insert(ctx context.Context, r FireRecord) error
	// ListByJob 按计划触发时间倒序返回最近的记录
	ListByJob(ctx context.Context, jobName string, limit int) ([]FireRecord, error)
}

type GormFireDAO struct {
	db *gorm.DB
}

func NewGormFireDAO(db *gorm.DB) FireDAO {
	return &GormFireDAO{db: db}
}

// InitTables 创建或迁移表结构
func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&FireRecord{})
}

func (d *GormFireDAO) Insert(ctx context.Context, r FireRecord) error {
	return d.db.WithContext(ctx).Create(&r).Error
}

func (d *GormFireDAO) ListByJob(ctx context.Context, jobName string, limit int) ([]FireRecord, error) {
	var records []FireRecord
	err := d.db.WithContext(ctx).
		Where("job_name = ?", jobName).
		Order("scheduled_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

type FireRecord struct {
	// ID 在数据库中的ID信息
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// JobName 任务名称
	JobName string `gorm:"column:job_name;type:varchar(255);not null;index:idx_job_scheduled" json:"job_name"`
	// RunID 每次启动调度生成的标识
	RunID string `gorm:"column:run_id;type:varchar(64);not null" json:"run_id"`
	// Expression 调度表达式
	Expression string `gorm:"column:expression;type:varchar(255);not null" json:"expression"`
	// ScheduledAt 计划触发时间，unix毫秒
	ScheduledAt int64 `gorm:"column:scheduled_at;not null;index:idx_job_scheduled" json:"scheduled_at"`
	// DispatchedAt 实际执行时间，unix毫秒
	DispatchedAt int64 `gorm:"column:dispatched_at;not null" json:"dispatched_at"`
	// DurationMs 回调耗时
	DurationMs int64 `gorm:"column:duration_ms;not null" json:"duration_ms"`
	// Continue 回调是否要求继续调度
	Continue bool `gorm:"column:continued;not null" json:"continued"`
	// CreatedTime 创建时间
	CreatedTime int64 `gorm:"column:created_time;autoCreateTime:milli" json:"created_time"`
}

func (FireRecord) TableName() string {
	return "cron_fires"
}
