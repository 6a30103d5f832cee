package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casparjones/rdumper/internal/dumper"
	"github.com/casparjones/rdumper/internal/orchestrator"
	"github.com/casparjones/rdumper/internal/retention"
	"github.com/casparjones/rdumper/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the scheduler, retention workers, and job driver",
	Long:  "the long-running daemon process: ticks the scheduler, drives live jobs, and runs the retention sweeps",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, gateway := mustGateway()

	fmt.Println(titleStyle.Render("==> starting rdumper"))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(progressStyle.Render("  --> probing dumper/loader capabilities..."))
	caps := dumper.ProbeDumper(ctx, cfg.DumperPath)
	_ = dumper.ProbeLoader(ctx, cfg.LoaderPath)
	fmt.Printf("    %s trx-tables=%v no-backup-locks=%v compress-protocol=%v\n",
		dimStyle.Render("capabilities:"), caps.TrxTables, caps.NoBackupLocks, caps.CompressProtocol)

	orch := orchestrator.New(gateway, cfg, caps)
	worker := scheduler.New(gateway, orch, time.Duration(cfg.SchedulerTickSeconds)*time.Second)

	go worker.Run(ctx)
	go retention.RunBackupRetention(ctx, gateway, cfg.BackupDir(), time.Duration(cfg.RetentionSweepHours)*time.Hour)
	go retention.RunLogRetention(ctx, gateway, cfg.LogDir(), cfg.JobLogRetentionDays, time.Duration(cfg.RetentionSweepHours)*time.Hour)

	fmt.Println(successStyle.Render("  [done]") + " scheduler and retention workers running")
	fmt.Println()
	fmt.Println(dimStyle.Render("  root: ") + valueStyle.Render(cfg.RootDirectory))
	fmt.Println(dimStyle.Render("  tick: ") + valueStyle.Render(fmt.Sprintf("%ds", cfg.SchedulerTickSeconds)))
	fmt.Println()
	fmt.Println(dimStyle.Render("  press ctrl+c to stop"))

	<-ctx.Done()

	fmt.Println()
	fmt.Println(titleStyle.Render("==> shutting down"))
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
