package model

import "time"

type JobType string

const (
	JobTypeBackup  JobType = "backup"
	JobTypeRestore JobType = "restore"
	JobTypeCleanup JobType = "cleanup"
)

type JobStatus string

const (
	JobPending     JobStatus = "pending"
	JobRunning     JobStatus = "running"
	JobCompressing JobStatus = "compressing"
	JobCompleted   JobStatus = "completed"
	JobFailed      JobStatus = "failed"
	JobCancelled   JobStatus = "cancelled"
)

// Terminal reports whether s is one of the three terminal job states.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

type RestoreMode string

const (
	RestoreOverwriteOriginal RestoreMode = "overwrite-original"
	RestoreCreateNew         RestoreMode = "create-new"
)

// Job is a single execution instance: a backup, a restore, or a cleanup sweep.
type Job struct {
	ID             string      `gorm:"column:id;type:text;primaryKey" json:"id"`
	Type           JobType     `gorm:"column:type;type:text;not null" json:"type"`
	TaskID         *string     `gorm:"column:task_id;type:text;index" json:"task_id"`
	ConnectionID   string      `gorm:"column:connection_id;type:text;not null;index" json:"connection_id"`
	Status         JobStatus   `gorm:"column:status;type:text;not null;index" json:"status"`
	Progress       int         `gorm:"column:progress;not null;default:0" json:"progress"`
	UsedDatabase   string      `gorm:"column:used_database;type:text;not null" json:"used_database"`
	ArtifactID     *string     `gorm:"column:artifact_id;type:text" json:"artifact_id"`
	RestoreMode    RestoreMode `gorm:"column:restore_mode;type:text" json:"restore_mode,omitempty"`
	NewDatabaseName string     `gorm:"column:new_database_name;type:text" json:"new_database_name,omitempty"`
	LogOutputPath  string      `gorm:"column:log_output_path;type:text" json:"log_output_path"`
	ErrorMessage   string      `gorm:"column:error_message;type:text" json:"error_message"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	StartedAt      *time.Time  `gorm:"column:started_at" json:"started_at"`
	CompletedAt    *time.Time  `gorm:"column:completed_at" json:"completed_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// TableProgressStatus is the per-table state tracked during a live job.
type TableProgressStatus string

const (
	TableProgressPending    TableProgressStatus = "pending"
	TableProgressInProgress TableProgressStatus = "in_progress"
	TableProgressCompleted  TableProgressStatus = "completed"
	TableProgressSkipped    TableProgressStatus = "skipped"
	TableProgressError      TableProgressStatus = "error"
)

// TableProgress is per-job, per-table state held in memory for live jobs and
// optionally persisted as a snapshot for detail views.
type TableProgress struct {
	ID           uint                 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	JobID        string               `gorm:"column:job_id;type:text;not null;index:idx_table_progress_job,priority:1" json:"job_id"`
	Name         string               `gorm:"column:name;type:text;not null;index:idx_table_progress_job,priority:2" json:"name"`
	Status       TableProgressStatus  `gorm:"column:status;type:text;not null" json:"status"`
	Percent      int                  `gorm:"column:percent;not null;default:0" json:"percent"`
	StartedAt    *time.Time           `gorm:"column:started_at" json:"started_at"`
	CompletedAt  *time.Time           `gorm:"column:completed_at" json:"completed_at"`
	ErrorMessage string               `gorm:"column:error_message;type:text" json:"error_message"`
}

func (TableProgress) TableName() string {
	return "table_progress"
}
