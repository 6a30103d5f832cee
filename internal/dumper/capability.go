// Package dumper implements the Process Supervisor, the Progress Parser,
// and the Engine Preflight: everything that talks to the external
// mydumper/myloader binaries and the target MySQL-compatible server.
package dumper

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/casparjones/rdumper/internal/logging"
)

// CapabilitySet records which optional dumper/loader flags the installed
// tool version supports, probed once at process start by running the tool
// with its help query. Feature use is gated behind the probe result rather
// than hardcoding flag names across tool versions.
type CapabilitySet struct {
	TrxTables          bool
	NoBackupLocks      bool
	CompressProtocol   bool
}

// ProbeDumper runs dumperPath --help once and parses which optional flags it
// advertises. A probe failure (binary missing, non-zero exit) degrades to an
// empty CapabilitySet rather than aborting startup — every feature gated on
// it is then simply omitted with a diagnostic.
func ProbeDumper(ctx context.Context, dumperPath string) CapabilitySet {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, dumperPath, "--help").CombinedOutput()
	if err != nil {
		logging.Warn(logging.Event{
			Category: logging.CategorySystem,
			Message:  "dumper capability probe failed, all optional flags treated as unsupported: " + err.Error(),
		})
		return CapabilitySet{}
	}

	help := string(out)
	return CapabilitySet{
		TrxTables:        strings.Contains(help, "--trx-tables"),
		NoBackupLocks:    strings.Contains(help, "--no-backup-locks"),
		CompressProtocol: strings.Contains(help, "--compress-protocol"),
	}
}

// ProbeLoader runs loaderPath --help once. The loader's flag set is smaller;
// currently nothing the engine does is gated on it, but the probe still
// runs so a missing binary is diagnosed at startup rather than at first job.
func ProbeLoader(ctx context.Context, loaderPath string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := exec.CommandContext(ctx, loaderPath, "--help").Run(); err != nil {
		logging.Warn(logging.Event{
			Category: logging.CategorySystem,
			Message:  "loader capability probe failed: " + err.Error(),
		})
		return err
	}
	return nil
}
