package model

import "time"

// ConnectionVerdict is the outcome of the last connection test run against a
// DatabaseConnection.
type ConnectionVerdict string

const (
	VerdictUntested ConnectionVerdict = "untested"
	VerdictOK       ConnectionVerdict = "ok"
	VerdictFailed   ConnectionVerdict = "failed"
)

// DatabaseConnection is a named MySQL-compatible target server.
type DatabaseConnection struct {
	ID                string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	Name              string    `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	Host              string    `gorm:"column:host;type:text;not null" json:"host"`
	Port              int       `gorm:"column:port;not null;default:3306" json:"port"`
	Username          string    `gorm:"column:username;type:text;not null" json:"username"`
	Password          string    `gorm:"column:password;type:text;not null" json:"-"`
	DefaultDatabase   string    `gorm:"column:default_database;type:text" json:"default_database"`
	LastVerdict       ConnectionVerdict `gorm:"column:last_verdict;type:text;not null;default:untested" json:"last_verdict"`
	LastVerdictAt     *time.Time `gorm:"column:last_verdict_at" json:"last_verdict_at"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DatabaseConnection) TableName() string {
	return "database_connections"
}
