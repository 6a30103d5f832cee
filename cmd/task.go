package cmd

import (
	"fmt"
	"os"

	"github.com/casparjones/rdumper/internal/cronexpr"
	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/orchestrator"
	"github.com/casparjones/rdumper/internal/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "manage scheduled backup tasks",
}

var (
	taskConnection        string
	taskDatabase          string
	taskCron              string
	taskCompression       string
	taskCleanupDays       int
	taskNonTransactional  bool
)

var taskAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "create a scheduled backup task",
	Args:  cobra.ExactArgs(1),
	Run:   runTaskAdd,
}

func runTaskAdd(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()
	name := args[0]

	if !utils.IsValidName(name) {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[error] name must be lowercase letters, digits, and hyphens only"))
		os.Exit(1)
	}

	conn, err := gateway.GetConnection(taskConnection)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] connection not found: %v", err)))
		os.Exit(1)
	}

	expr, err := cronexpr.Parse(taskCron)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] invalid cron expression: %v", err)))
		os.Exit(1)
	}

	compression := model.Compression(taskCompression)
	switch compression {
	case model.CompressionNone, model.CompressionGzip, model.CompressionZstd:
	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] unknown compression: %s", taskCompression)))
		os.Exit(1)
	}

	task := &model.Task{
		Name:                 name,
		ConnectionID:         conn.ID,
		DatabaseName:         taskDatabase,
		CronExpression:       taskCron,
		Compression:          compression,
		CleanupDays:          taskCleanupDays,
		NonTransactionalMode: taskNonTransactional,
		Enabled:              true,
	}

	next, err := expr.NextAfter(nowUTC())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to compute next run: %v", err)))
		os.Exit(1)
	}
	task.NextFireAt = &next

	if err := gateway.CreateTask(task); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to save task: %v", err)))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("[done] task created"))
	fmt.Printf("  %s %s\n", dimStyle.Render("id:"), valueStyle.Render(task.ID))
	fmt.Printf("  %s %s\n", dimStyle.Render("next run:"), valueStyle.Render(next.Format("2006-01-02 15:04:05 MST")))
}

var taskListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list scheduled tasks",
	Run:   runTaskList,
}

func runTaskList(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()

	tasks, err := gateway.ListTasks()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to list tasks: %v", err)))
		os.Exit(1)
	}

	if len(tasks) == 0 {
		fmt.Println(dimStyle.Render("no tasks defined"))
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> tasks (%d)", len(tasks))))
	fmt.Println()

	rows := [][]string{}
	for _, t := range tasks {
		enabled := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("disabled")
		if t.Enabled {
			enabled = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("enabled")
		}
		next := "-"
		if t.NextFireAt != nil {
			next = t.NextFireAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{t.ID, t.Name, t.CronExpression, string(t.Compression), enabled, next})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Align(lipgloss.Center)
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		}).
		Headers("id", "name", "cron", "compression", "status", "next run").
		Rows(rows...)

	fmt.Println(tbl)
}

var taskRemoveCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "delete a scheduled task",
	Args:  cobra.ExactArgs(1),
	Run:   runTaskRemove,
}

func runTaskRemove(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()
	if err := gateway.DeleteTask(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to delete task: %v", err)))
		os.Exit(1)
	}
	fmt.Println(successStyle.Render("[done] task deleted"))
}

var taskEnableCmd = &cobra.Command{
	Use:   "enable [id]",
	Short: "enable a scheduled task",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setTaskEnabled(args[0], true) },
}

var taskDisableCmd = &cobra.Command{
	Use:   "disable [id]",
	Short: "disable a scheduled task",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setTaskEnabled(args[0], false) },
}

func setTaskEnabled(id string, enabled bool) {
	_, gateway := mustGateway()
	if err := gateway.SetTaskEnabled(id, enabled); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to update task: %v", err)))
		os.Exit(1)
	}
	fmt.Println(successStyle.Render("[done] task updated"))
}

var taskRunCmd = &cobra.Command{
	Use:   "run [id]",
	Short: "trigger a task's backup immediately, outside its schedule",
	Args:  cobra.ExactArgs(1),
	Run:   runTaskRun,
}

func runTaskRun(cmd *cobra.Command, args []string) {
	cfg, gateway := mustGateway()
	taskID := args[0]

	task, err := gateway.GetTask(taskID)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] task not found: %v", err)))
		os.Exit(1)
	}

	conn, err := gateway.GetConnection(task.ConnectionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] connection not found: %v", err)))
		os.Exit(1)
	}

	orch := orchestrator.New(gateway, cfg, probeCapsQuiet(cfg))
	job, err := orch.TryStartBackup(cmdContext(), *task, *conn, model.BackupKindManual)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to start backup: %v", err)))
		os.Exit(1)
	}
	if job == nil {
		fmt.Println(dimStyle.Render("no job was started — a live job already exists for this task"))
		return
	}

	fmt.Println(progressStyle.Render("  --> running..."))
	reportJobOutcome(waitForTerminal(gateway, job.ID))
}

func init() {
	taskAddCmd.Flags().StringVar(&taskConnection, "connection", "", "connection id")
	taskAddCmd.Flags().StringVar(&taskDatabase, "database", "", "database name (overrides the connection's default)")
	taskAddCmd.Flags().StringVar(&taskCron, "cron", "0 2 * * *", "cron expression (5 fields, UTC)")
	taskAddCmd.Flags().StringVar(&taskCompression, "compression", "gzip", "none, gzip, or zstd")
	taskAddCmd.Flags().IntVar(&taskCleanupDays, "cleanup-days", 7, "days to retain artifacts for this task")
	taskAddCmd.Flags().BoolVar(&taskNonTransactional, "non-transactional", false, "include non-transactional tables in the dump")
	taskAddCmd.MarkFlagRequired("connection")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskRemoveCmd, taskEnableCmd, taskDisableCmd, taskRunCmd)
	rootCmd.AddCommand(taskCmd)
}
