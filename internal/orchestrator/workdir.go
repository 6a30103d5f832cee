package orchestrator

import "os"

// removeWorkDir clears a job's scratch dump/extract directory. Errors are
// swallowed by callers — a leftover scratch directory is a disk-hygiene
// concern, never a reason to fail an otherwise-terminal job.
func removeWorkDir(path string) error {
	return os.RemoveAll(path)
}
