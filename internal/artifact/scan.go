package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/casparjones/rdumper/internal/logging"
	"github.com/casparjones/rdumper/internal/model"
)

// DiscoveredArtifact is one reconciled backup directory under the backup
// root, ready to be upserted into the Persistence Gateway's lookup index.
type DiscoveredArtifact struct {
	DirName  string
	FilePath string
	FileSize int64
	Meta     model.ArtifactMetadata
	Orphan   bool
}

var archiveSuffixes = []string{".tar.gz", ".tar.zst", ".tar"}

// Scan walks backupRoot: each subdirectory is expected to contain an archive
// file whose name matches the directory stem. A directory missing its
// metadata.json sidecar is still reported (Orphan=true) with a best-effort
// metadata reconstruction, so the rescan can still enumerate it for restore
// even though its provenance is unknown.
func Scan(backupRoot string) ([]DiscoveredArtifact, error) {
	entries, err := os.ReadDir(backupRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []DiscoveredArtifact
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		dirPath := filepath.Join(backupRoot, dirName)

		archivePath, size, found := findArchive(dirPath, dirName)
		if !found {
			logging.Warn(logging.Event{
				Category:   logging.CategorySystem,
				EntityType: "artifact_directory",
				EntityID:   dirName,
				Message:    "backup directory has no archive matching its directory stem, skipping",
			})
			continue
		}

		meta, err := ReadMetadataSidecar(dirPath)
		orphan := err != nil
		if orphan {
			meta = model.ArtifactMetadata{
				UsedDatabase: inferUsedDatabaseFromDirName(dirName),
				Kind:         model.BackupKindUploaded,
				Compression:  compressionFromArchivePath(archivePath),
			}
		}

		out = append(out, DiscoveredArtifact{
			DirName:  dirName,
			FilePath: archivePath,
			FileSize: size,
			Meta:     meta,
			Orphan:   orphan,
		})
	}

	return out, nil
}

func findArchive(dirPath, dirStem string) (path string, size int64, found bool) {
	for _, suffix := range archiveSuffixes {
		candidate := filepath.Join(dirPath, dirStem+suffix)
		if info, err := os.Stat(candidate); err == nil {
			return candidate, info.Size(), true
		}
	}
	return "", 0, false
}

func compressionFromArchivePath(path string) model.Compression {
	switch {
	case strings.HasSuffix(path, ".tar.gz"):
		return model.CompressionGzip
	case strings.HasSuffix(path, ".tar.zst"):
		return model.CompressionZstd
	default:
		return model.CompressionNone
	}
}

const uuidLength = 36 // e.g. "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// inferUsedDatabaseFromDirName recovers a best-effort "connection/database"
// label from an orphaned directory's name. uuid.NewString() has 4 internal
// hyphens, so a naive split on every "-" misparses the trailing UUID as
// extra segments; instead the fixed-width trailing UUID is stripped first
// and only the remainder is split on "-" into connection and database.
func inferUsedDatabaseFromDirName(dirName string) string {
	if len(dirName) <= uuidLength+1 {
		return dirName
	}
	sep := len(dirName) - uuidLength - 1
	if dirName[sep] != '-' || !uuidPattern.MatchString(dirName[sep+1:]) {
		return dirName
	}

	remainder := dirName[:sep]
	idx := strings.Index(remainder, "-")
	if idx < 0 {
		return remainder
	}
	conn, db := remainder[:idx], remainder[idx+1:]
	return conn + "/" + db
}
