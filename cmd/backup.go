package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/casparjones/rdumper/internal/artifact"
	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "inspect and manage sealed backup artifacts",
}

var backupListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list backup artifacts",
	Run:   runBackupList,
}

func runBackupList(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()

	artifacts, err := gateway.ListArtifacts()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to list backups: %v", err)))
		os.Exit(1)
	}

	if len(artifacts) == 0 {
		fmt.Println(dimStyle.Render("no backups found"))
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> backups (%d)", len(artifacts))))
	fmt.Println()

	rows := [][]string{}
	var total int64
	for _, a := range artifacts {
		total += a.FileSize
		rows = append(rows, []string{a.ID, a.UsedDatabase, string(a.Kind), string(a.Compression), utils.FormatBytes(a.FileSize), a.CreatedAt.Format("2006-01-02 15:04")})
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
		Headers("id", "database", "kind", "compression", "size", "created").
		Rows(rows...)

	fmt.Println(tbl)
	fmt.Println()
	fmt.Println(dimStyle.Render(fmt.Sprintf("  total: %s", utils.FormatBytes(total))))
}

var backupRemoveForce bool

var backupRemoveCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "delete a backup artifact",
	Args:  cobra.ExactArgs(1),
	Run:   runBackupRemove,
}

func runBackupRemove(cmd *cobra.Command, args []string) {
	cfg, gateway := mustGateway()
	id := args[0]

	a, err := gateway.GetArtifact(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] backup not found: %v", err)))
		os.Exit(1)
	}

	if !backupRemoveForce {
		fmt.Println(errorStyle.Render("[warn]  this backup will be permanently deleted"))
		fmt.Print(labelStyle.Render("type 'delete' to confirm: "))
		var confirmation string
		fmt.Scanln(&confirmation)
		if strings.TrimSpace(strings.ToLower(confirmation)) != "delete" {
			fmt.Println(labelStyle.Render("cancelled."))
			return
		}
	}

	if err := artifact.Delete(cfg.BackupDir(), a.DirName); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to delete backup files: %v", err)))
		os.Exit(1)
	}
	if err := gateway.DeleteArtifact(id); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to delete backup record: %v", err)))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("[done] backup deleted"))
}

var backupRescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "reconcile the backup directory tree against the persisted index",
	Run:   runBackupRescan,
}

func runBackupRescan(cmd *cobra.Command, args []string) {
	cfg, gateway := mustGateway()

	fmt.Println(titleStyle.Render("==> rescanning backup directory"))
	discovered, err := artifact.Scan(cfg.BackupDir())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] scan failed: %v", err)))
		os.Exit(1)
	}

	var orphaned int
	for _, d := range discovered {
		if d.Orphan {
			orphaned++
		}
		row := &model.Artifact{
			UsedDatabase: d.Meta.UsedDatabase,
			DirName:      d.DirName,
			FilePath:     d.FilePath,
			FileSize:     d.FileSize,
			Compression:  d.Meta.Compression,
			Kind:         d.Meta.Kind,
			CreatedAt:    d.Meta.CreatedAt,
		}
		if d.Meta.TaskID != "" {
			row.TaskID = &d.Meta.TaskID
		}
		if d.Meta.ConnectionID != "" {
			row.ConnectionID = &d.Meta.ConnectionID
		}
		if err := gateway.UpsertArtifactFromScan(row); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to reconcile %s: %v", d.DirName, err)))
		}
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("[done] reconciled %d backup(s), %d orphaned", len(discovered), orphaned)))
}

func init() {
	backupRemoveCmd.Flags().BoolVarP(&backupRemoveForce, "force", "f", false, "skip confirmation")
	backupCmd.AddCommand(backupListCmd, backupRemoveCmd, backupRescanCmd)
	rootCmd.AddCommand(backupCmd)
}
