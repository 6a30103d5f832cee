// Package rdconfig loads rdumper.toml: a BurntSushi/toml decode into a
// typed struct, with defaults applied for anything the file omits.
package rdconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the recognized rdumper.toml shape, per the engine's external
// interfaces section.
type Config struct {
	RootDirectory             string `toml:"root_directory"`
	BackupDirectoryOverride   string `toml:"backup_directory_override"`
	LogDirectoryOverride      string `toml:"log_directory_override"`
	SchedulerTickSeconds      int    `toml:"scheduler_tick_seconds"`
	RetentionSweepHours       int    `toml:"retention_sweep_hours"`
	JobLogRetentionDays       int    `toml:"job_log_retention_days"`
	CancelGraceSeconds        int    `toml:"cancel_grace_seconds"`
	ArchiveStreamBufferBytes  int    `toml:"archive_stream_buffer_bytes"`
	DumperPath                string `toml:"dumper_path"`
	LoaderPath                string `toml:"loader_path"`
}

// Defaults returns the configuration with every documented default applied.
func Defaults() Config {
	return Config{
		RootDirectory:            "./data",
		SchedulerTickSeconds:     60,
		RetentionSweepHours:      6,
		JobLogRetentionDays:      14,
		CancelGraceSeconds:       10,
		ArchiveStreamBufferBytes: 256 * 1024,
		DumperPath:               "mydumper",
		LoaderPath:               "myloader",
	}
}

// Load reads path, falling back to Defaults() for any field the file omits.
// A missing file is not an error — the defaults alone are a valid config.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.SchedulerTickSeconds < 5 {
		cfg.SchedulerTickSeconds = 5
	}

	return cfg, nil
}

// BackupDir resolves the effective backup directory, honoring the override.
func (c Config) BackupDir() string {
	if c.BackupDirectoryOverride != "" {
		return c.BackupDirectoryOverride
	}
	return filepath.Join(c.RootDirectory, "backups")
}

// LogDir resolves the effective job-log directory, honoring the override.
func (c Config) LogDir() string {
	if c.LogDirectoryOverride != "" {
		return c.LogDirectoryOverride
	}
	return filepath.Join(c.RootDirectory, "logs")
}

// StateDBPath is the Persistence Gateway's embedded SQLite file.
func (c Config) StateDBPath() string {
	return filepath.Join(c.RootDirectory, "db", "state.db")
}
