// Package artifact is the artifact store: it owns the backup directory
// tree, the directory/archive naming rule, archive sealing, the sidecar
// metadata.json descriptor, and rescan-based reconciliation between the
// filesystem (authoritative) and the persisted lookup index (derived).
package artifact

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var sanitizeReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// Sanitize maps each of / \ : * ? " < > | to _. It is idempotent: applying
// it twice equals applying it once, since none of those characters appear
// in its own output.
func Sanitize(name string) string {
	return sanitizeReplacer.Replace(name)
}

// DirName builds the `<sanitized-connection-name>-<sanitized-database-name>-<uuid>`
// directory stem for a newly sealed artifact.
func DirName(connectionName, databaseName string) string {
	return fmt.Sprintf("%s-%s-%s", Sanitize(connectionName), Sanitize(databaseName), uuid.NewString())
}

// ArchiveFileName returns the archive file name within dirName: the
// directory stem plus the extension for ext.
func ArchiveFileName(dirName string, ext string) string {
	return fmt.Sprintf("%s.tar.%s", dirName, ext)
}
