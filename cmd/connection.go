package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/casparjones/rdumper/internal/dumper"
	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "manage database connections",
}

var (
	connHost     string
	connPort     int
	connUsername string
	connPassword string
	connDefault  string
)

var connectionAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "register a database connection",
	Args:  cobra.ExactArgs(1),
	Run:   runConnectionAdd,
}

func runConnectionAdd(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()
	name := args[0]

	if !utils.IsValidName(name) {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[error] name must be lowercase letters, digits, and hyphens only"))
		os.Exit(1)
	}

	conn := &model.DatabaseConnection{
		Name:            name,
		Host:            connHost,
		Port:            connPort,
		Username:        connUsername,
		Password:        connPassword,
		DefaultDatabase: connDefault,
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> adding connection: %s", name)))
	fmt.Println()
	fmt.Println(progressStyle.Render("  --> testing connection..."))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	target := dumper.ConnectionTarget{Host: connHost, Port: connPort, Username: connUsername, Password: connPassword, Database: connDefault}
	verdict := model.VerdictOK
	if err := dumper.TestConnection(ctx, target); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("  [warn] connection test failed: %v", err)))
		verdict = model.VerdictFailed
	} else {
		fmt.Println(successStyle.Render("  [done] connection reachable"))
	}
	now := time.Now().UTC()
	conn.LastVerdict = verdict
	conn.LastVerdictAt = &now

	if err := gateway.CreateConnection(conn); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to save connection: %v", err)))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("    %s %s\n", dimStyle.Render("id:"), valueStyle.Render(conn.ID))
	fmt.Println()
}

var connectionListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list database connections",
	Run:   runConnectionList,
}

func runConnectionList(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()

	conns, err := gateway.ListConnections()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to list connections: %v", err)))
		os.Exit(1)
	}

	if len(conns) == 0 {
		fmt.Println(dimStyle.Render("no connections registered"))
		fmt.Println(dimStyle.Render("add one with: rdumper connection add <name> --host ... --username ..."))
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> connections (%d)", len(conns))))
	fmt.Println()

	rows := [][]string{}
	for _, c := range conns {
		verdictColor := "10"
		switch c.LastVerdict {
		case model.VerdictFailed:
			verdictColor = "9"
		case model.VerdictUntested:
			verdictColor = "245"
		}
		verdict := lipgloss.NewStyle().Foreground(lipgloss.Color(verdictColor)).Render(string(c.LastVerdict))
		rows = append(rows, []string{c.ID, c.Name, c.Host + ":" + strconv.Itoa(c.Port), c.Username, verdict})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Align(lipgloss.Center)
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		}).
		Headers("id", "name", "host", "user", "last verdict").
		Rows(rows...)

	fmt.Println(t)
	fmt.Println()
}

var connectionRemoveForce bool

var connectionRemoveCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "remove a database connection",
	Args:  cobra.ExactArgs(1),
	Run:   runConnectionRemove,
}

func runConnectionRemove(cmd *cobra.Command, args []string) {
	_, gateway := mustGateway()
	id := args[0]

	if !connectionRemoveForce {
		fmt.Print(labelStyle.Render("type 'delete' to confirm: "))
		var confirmation string
		fmt.Scanln(&confirmation)
		if strings.TrimSpace(strings.ToLower(confirmation)) != "delete" {
			fmt.Println(labelStyle.Render("cancelled."))
			return
		}
	}

	if err := gateway.DeleteConnection(id); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to remove connection: %v", err)))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("[done] connection removed"))
}

func init() {
	connectionAddCmd.Flags().StringVar(&connHost, "host", "127.0.0.1", "server host")
	connectionAddCmd.Flags().IntVar(&connPort, "port", 3306, "server port")
	connectionAddCmd.Flags().StringVar(&connUsername, "username", "root", "server username")
	connectionAddCmd.Flags().StringVar(&connPassword, "password", "", "server password")
	connectionAddCmd.Flags().StringVar(&connDefault, "default-database", "", "default database")

	connectionRemoveCmd.Flags().BoolVarP(&connectionRemoveForce, "force", "f", false, "skip confirmation")

	connectionCmd.AddCommand(connectionAddCmd, connectionListCmd, connectionRemoveCmd)
	rootCmd.AddCommand(connectionCmd)
}
