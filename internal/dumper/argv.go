package dumper

import (
	"fmt"

	"github.com/casparjones/rdumper/internal/logging"
)

// DumpArgs assembles the dumper's argv, gated by CapabilitySet so a flag
// the installed binary doesn't advertise is simply omitted rather than
// passed blindly.
type DumpArgs struct {
	Target           ConnectionTarget
	Database         string
	OutputDir        string
	LogFile          string
	Threads          int
	NonTransactional bool
	Compression      string // "none", "gzip", "zstd"
	Capabilities     CapabilitySet
}

func BuildDumpArgv(a DumpArgs) []string {
	threads := a.Threads
	if threads <= 0 {
		threads = 4
	}

	argv := []string{
		"--host", a.Target.Host,
		"--port", fmt.Sprintf("%d", a.Target.Port),
		"--user", a.Target.Username,
		"--password", a.Target.Password,
		"--database", a.Database,
		"--outputdir", a.OutputDir,
		"--verbose", "3",
		"--threads", fmt.Sprintf("%d", threads),
		"--logfile", a.LogFile,
		"--triggers", "--events", "--routines",
	}

	if a.NonTransactional {
		if a.Capabilities.TrxTables {
			argv = append(argv, "--trx-tables", "0")
		}
		if a.Capabilities.NoBackupLocks {
			argv = append(argv, "--no-backup-locks")
		}
		if !a.Capabilities.TrxTables || !a.Capabilities.NoBackupLocks {
			logging.Warn(logging.Event{
				Category: logging.CategorySystem,
				Message:  "installed dumper lacks --trx-tables or --no-backup-locks; the missing flag is omitted from this non-transactional dump",
			})
		}
	} else {
		argv = append(argv, "--ignore-engines", NonTransactionalEngineList())
	}

	switch a.Compression {
	case "gzip":
		argv = append(argv, "--compress")
	case "zstd":
		if a.Capabilities.CompressProtocol {
			argv = append(argv, "--compress-protocol")
		}
	}

	return argv
}

// LoadArgs assembles the loader's argv.
type LoadArgs struct {
	Target      ConnectionTarget
	Database    string
	SourceDir   string
	Threads     int
	Overwrite   bool
}

func BuildLoadArgv(a LoadArgs) []string {
	threads := a.Threads
	if threads <= 0 {
		threads = 4
	}

	argv := []string{
		"--host", a.Target.Host,
		"--port", fmt.Sprintf("%d", a.Target.Port),
		"--user", a.Target.Username,
		"--password", a.Target.Password,
		"--database", a.Database,
		"--directory", a.SourceDir,
		"--verbose", "3",
		"--threads", fmt.Sprintf("%d", threads),
	}

	if a.Overwrite {
		argv = append(argv, "--overwrite-tables")
	}

	return argv
}
