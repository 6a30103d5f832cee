package artifact

import (
	"os"
	"path/filepath"

	"github.com/casparjones/rdumper/internal/logging"
)

// Delete removes the artifact's entire parent directory (archive + sidecar)
// idempotently: a missing directory is logged as a warning, not an error,
// since deletion must tolerate having already been performed or a prior
// manual cleanup.
func Delete(backupRoot, dirName string) error {
	dirPath := filepath.Join(backupRoot, dirName)

	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		logging.Warn(logging.Event{
			Category:   logging.CategorySystem,
			EntityType: "artifact_directory",
			EntityID:   dirName,
			Message:    "artifact directory already absent, nothing to delete",
		})
		return nil
	}

	return os.RemoveAll(dirPath)
}
