package model

import "time"

// Compression is the archive codec chosen for a task's sealed artifacts.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Task is a recurring, cron-scheduled backup plan attached to one connection.
type Task struct {
	ID                  string      `gorm:"column:id;type:text;primaryKey" json:"id"`
	Name                string      `gorm:"column:name;type:text;not null" json:"name"`
	ConnectionID        string      `gorm:"column:connection_id;type:text;not null;index" json:"connection_id"`
	DatabaseName        string      `gorm:"column:database_name;type:text" json:"database_name"`
	CronExpression      string      `gorm:"column:cron_expression;type:text;not null" json:"cron_expression"`
	Compression         Compression `gorm:"column:compression;type:text;not null;default:gzip" json:"compression"`
	CleanupDays         int         `gorm:"column:cleanup_days;not null;default:7" json:"cleanup_days"`
	NonTransactionalMode bool       `gorm:"column:non_transactional_mode;not null;default:false" json:"non_transactional_mode"`
	Enabled             bool        `gorm:"column:enabled;not null;default:true;index" json:"enabled"`
	LastFireAt          *time.Time  `gorm:"column:last_fire_at" json:"last_fire_at"`
	NextFireAt          *time.Time  `gorm:"column:next_fire_at;index" json:"next_fire_at"`
	CreatedAt           time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
