package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/casparjones/rdumper/internal/dumper"
	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/rdconfig"
	"github.com/casparjones/rdumper/internal/store"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rdumper.toml", "path to rdumper.toml")
}

func loadConfig() rdconfig.Config {
	cfg, err := rdconfig.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	return cfg
}

func openGateway(cfg rdconfig.Config) *store.Gateway {
	g, err := store.Open(cfg.StateDBPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to open state database: %v", err)))
		os.Exit(1)
	}
	return g
}

// mustGateway is the one-liner most leaf commands need: load config, open
// the gateway, return both.
func mustGateway() (rdconfig.Config, *store.Gateway) {
	cfg := loadConfig()
	return cfg, openGateway(cfg)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// cmdContext is the background context one-shot CLI commands hand to the
// orchestrator. A CLI invocation has no signal-driven shutdown path of its
// own like serve does, so it is plain background.
func cmdContext() context.Context {
	return context.Background()
}

// probeCapsQuiet probes dumper capabilities without printing anything,
// for one-shot commands (task run) that need an Orchestrator but aren't
// the long-running serve process.
func probeCapsQuiet(cfg rdconfig.Config) dumper.CapabilitySet {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return dumper.ProbeDumper(ctx, cfg.DumperPath)
}

// waitForTerminal polls the gateway for jobID to reach a terminal state. A
// one-shot CLI invocation has no other way to observe its own background
// driver goroutine finish before the process exits.
func waitForTerminal(gateway *store.Gateway, jobID string) model.Job {
	for {
		job, err := gateway.GetJob(jobID)
		if err != nil {
			return model.Job{ID: jobID, Status: model.JobFailed, ErrorMessage: err.Error()}
		}
		if job.Status.Terminal() {
			return *job
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// reportJobOutcome prints the terminal status of a driven job in the CLI's
// usual title/success/error texture.
func reportJobOutcome(job model.Job) {
	switch job.Status {
	case model.JobCompleted:
		fmt.Println(successStyle.Render("[done] job completed"))
	case model.JobCancelled:
		fmt.Println(dimStyle.Render("job cancelled"))
	default:
		fmt.Println(errorStyle.Render(fmt.Sprintf("[error] job failed: %s", job.ErrorMessage)))
		os.Exit(1)
	}
}
