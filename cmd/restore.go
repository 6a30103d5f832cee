package cmd

import (
	"fmt"
	"os"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	restoreArtifact   string
	restoreMode       string
	restoreNewDBName  string
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "restore a sealed backup artifact onto a connection",
	Run:   runRestore,
}

func runRestore(cmd *cobra.Command, args []string) {
	cfg, gateway := mustGateway()

	a, err := gateway.GetArtifact(restoreArtifact)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] artifact not found: %v", err)))
		os.Exit(1)
	}

	connID := ""
	if a.ConnectionID != nil {
		connID = *a.ConnectionID
	}
	conn, err := gateway.GetConnection(connID)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] the artifact's original connection no longer exists: %v", err)))
		os.Exit(1)
	}

	mode := model.RestoreMode(restoreMode)
	switch mode {
	case model.RestoreOverwriteOriginal:
	case model.RestoreCreateNew:
		if restoreNewDBName == "" {
			fmt.Fprintln(os.Stderr, errorStyle.Render("[error] --new-database is required for create-new mode"))
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] unknown restore mode: %s", restoreMode)))
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("==> starting restore"))
	fmt.Println()
	fmt.Printf("  %s %s\n", dimStyle.Render("artifact:"), valueStyle.Render(a.ID))
	fmt.Printf("  %s %s\n", dimStyle.Render("mode:"), valueStyle.Render(restoreMode))

	orch := orchestrator.New(gateway, cfg, probeCapsQuiet(cfg))
	job, err := orch.StartRestore(cmdContext(), *a, *conn, mode, restoreNewDBName)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to start restore: %v", err)))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(progressStyle.Render("  --> running..."))
	reportJobOutcome(waitForTerminal(gateway, job.ID))
}

func init() {
	restoreCmd.Flags().StringVar(&restoreArtifact, "artifact", "", "artifact id to restore")
	restoreCmd.Flags().StringVar(&restoreMode, "mode", "overwrite-original", "overwrite-original or create-new")
	restoreCmd.Flags().StringVar(&restoreNewDBName, "new-database", "", "target database name for create-new mode")
	restoreCmd.MarkFlagRequired("artifact")
	rootCmd.AddCommand(restoreCmd)
}
