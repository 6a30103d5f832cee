// Package orchestrator is the Job Orchestrator: it drives the job state
// machine, coordinating preflight, the Process Supervisor, the Progress
// Parser, and the Artifact Store to take a job from Pending through to a
// terminal state.
package orchestrator

import (
	"fmt"

	"github.com/casparjones/rdumper/internal/model"
)

// ResolveUsedDatabase forms the canonical "<connection.name>/<database>"
// string: task.DatabaseName overrides connection.DefaultDatabase. An empty
// result is a hard failure — the caller must create the job Failed with
// "no database resolved" rather than proceeding.
func ResolveUsedDatabase(connName, connDefaultDB, taskDB string) (usedDatabase string, database string, err error) {
	database = taskDB
	if database == "" {
		database = connDefaultDB
	}
	if database == "" {
		return "", "", fmt.Errorf("%w: no database resolved", model.ErrInvalidConfiguration)
	}
	return connName + "/" + database, database, nil
}
