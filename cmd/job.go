package cmd

import (
	"fmt"
	"os"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/orchestrator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "inspect and control backup/restore jobs",
}

var jobListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list jobs",
	Run:   runJobList,
}

func statusColor(s model.JobStatus) string {
	switch s {
	case model.JobCompleted:
		return "10"
	case model.JobFailed:
		return "9"
	case model.JobCancelled:
		return "240"
	case model.JobRunning, model.JobCompressing:
		return "14"
	default:
		return "245"
	}
}

func runJobList(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()

	jobs, err := gateway.ListJobs()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to list jobs: %v", err)))
		os.Exit(1)
	}

	if len(jobs) == 0 {
		fmt.Println(dimStyle.Render("no jobs yet"))
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> jobs (%d)", len(jobs))))
	fmt.Println()

	rows := [][]string{}
	for _, j := range jobs {
		status := lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor(j.Status))).Render(string(j.Status))
		rows = append(rows, []string{j.ID, string(j.Type), j.UsedDatabase, status, fmt.Sprintf("%d%%", j.Progress), j.CreatedAt.Format("2006-01-02 15:04")})
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
		Headers("id", "type", "database", "status", "progress", "created").
		Rows(rows...)

	fmt.Println(tbl)
}

var jobShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "show a job's detail, including per-table progress",
	Args:  cobra.ExactArgs(1),
	Run:   runJobShow,
}

func runJobShow(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()
	job, err := gateway.GetJob(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] job not found: %v", err)))
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("==> job detail"))
	fmt.Println()
	fmt.Printf("  %s %s\n", dimStyle.Render("id:"), valueStyle.Render(job.ID))
	fmt.Printf("  %s %s\n", dimStyle.Render("type:"), valueStyle.Render(string(job.Type)))
	fmt.Printf("  %s %s\n", dimStyle.Render("database:"), valueStyle.Render(job.UsedDatabase))
	status := lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor(job.Status))).Render(string(job.Status))
	fmt.Printf("  %s %s\n", dimStyle.Render("status:"), status)
	fmt.Printf("  %s %d%%\n", dimStyle.Render("progress:"), job.Progress)
	if job.ErrorMessage != "" {
		fmt.Printf("  %s %s\n", dimStyle.Render("error:"), errorStyle.Render(job.ErrorMessage))
	}
	fmt.Println()

	progress, err := gateway.TableProgressForJob(job.ID)
	if err != nil || len(progress) == 0 {
		return
	}

	fmt.Println(labelStyle.Render("  tables:"))
	rows := [][]string{}
	for _, p := range progress {
		rows = append(rows, []string{p.Name, string(p.Status), fmt.Sprintf("%d%%", p.Percent)})
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("table", "status", "percent").
		Rows(rows...)
	fmt.Println(tbl)
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "request cancellation of a live job",
	Args:  cobra.ExactArgs(1),
	Run:   runJobCancel,
}

func runJobCancel(cmd *cobra.Command, args []string) {
	cfg, gateway := mustGateway()
	jobID := args[0]

	job, err := gateway.GetJob(jobID)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] job not found: %v", err)))
		os.Exit(1)
	}
	if job.Status.Terminal() {
		fmt.Println(dimStyle.Render("job is already in a terminal state, nothing to cancel"))
		return
	}

	orch := orchestrator.New(gateway, cfg, probeCapsQuiet(cfg))
	if !orch.RequestCancel(jobID) {
		fmt.Println(errorStyle.Render("[error] no live driver for this job in this process — cancel must be issued against the running serve process"))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("[done] cancellation requested"))
}

func init() {
	jobCmd.AddCommand(jobListCmd, jobShowCmd, jobCancelCmd)
	rootCmd.AddCommand(jobCmd)
}
