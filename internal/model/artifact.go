package model

import "time"

type ArchiveExtension string

const (
	ExtGzip ArchiveExtension = "gz"
	ExtZstd ArchiveExtension = "zst"
	ExtTar  ArchiveExtension = "tar"
)

type BackupKind string

const (
	BackupKindScheduled BackupKind = "scheduled"
	BackupKindManual    BackupKind = "manual"
	BackupKindUploaded  BackupKind = "uploaded"
	BackupKindExternal  BackupKind = "external"
)

// Artifact is a materialized archive on disk plus its persisted lookup row.
// The sidecar metadata.json written alongside the archive is the authoritative
// restore descriptor; this row is a derived index that rescan can rebuild.
type Artifact struct {
	ID           string      `gorm:"column:id;type:text;primaryKey" json:"id"`
	ConnectionID *string     `gorm:"column:connection_id;type:text;index" json:"connection_id"`
	UsedDatabase string      `gorm:"column:used_database;type:text;not null" json:"used_database"`
	TaskID       *string     `gorm:"column:task_id;type:text;index" json:"task_id"`
	DirName      string      `gorm:"column:dir_name;type:text;not null;uniqueIndex" json:"dir_name"`
	FilePath     string      `gorm:"column:file_path;type:text;not null" json:"file_path"`
	FileSize     int64       `gorm:"column:file_size;not null;default:0" json:"file_size"`
	Compression  Compression `gorm:"column:compression;type:text;not null" json:"compression"`
	Kind         BackupKind  `gorm:"column:kind;type:text;not null" json:"kind"`
	CreatedAt    time.Time   `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Artifact) TableName() string {
	return "artifacts"
}

// ArtifactMetadata is the UTF-8 JSON sidecar written next to every sealed
// archive. It is authoritative; the Artifact row is derived from it and may
// be rebuilt by a rescan.
type ArtifactMetadata struct {
	JobID        string      `json:"job_id"`
	TaskID       string      `json:"task_id,omitempty"`
	ConnectionID string      `json:"connection_id,omitempty"`
	UsedDatabase string      `json:"used_database"`
	CreatedAt    time.Time   `json:"created_at"`
	Compression  Compression `json:"compression"`
	Kind         BackupKind  `json:"kind"`
}
