package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/hook/registry"
	"github.com/lassohq/lasso/pkg/logger"
	"github.com/lassohq/lasso/pkg/provider"
	"github.com/lassohq/lasso/pkg/transfer"

	// Import all providers to register their hooks
	_ "github.com/lassohq/lasso/pkg/hook/gremlin"
	_ "github.com/lassohq/lasso/pkg/hook/http"
	_ "github.com/lassohq/lasso/pkg/hook/jira"
	_ "github.com/lassohq/lasso/pkg/hook/mysql"
	_ "github.com/lassohq/lasso/pkg/hook/postgres"
	_ "github.com/lassohq/lasso/pkg/hook/sendgrid"
	_ "github.com/lassohq/lasso/pkg/hook/trino"
	_ "github.com/lassohq/lasso/pkg/hook/winrm"
)

var version = "0.1.0"

// TransferJob is the YAML shape of a transfer job file.
type TransferJob struct {
	SourceConnID string   `yaml:"source_conn_id"`
	SQL          string   `yaml:"sql"`
	MySQLConnID  string   `yaml:"mysql_conn_id"`
	Table        string   `yaml:"table"`
	Preoperator  []string `yaml:"preoperator"`
	Postoperator []string `yaml:"postoperator"`
	BulkLoad     bool     `yaml:"bulk_load"`
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	defer func() { _ = logger.Sync() }()

	var connectionsFile string
	var logLevel string

	root := &cobra.Command{
		Use:   "lasso",
		Short: "Lasso - uniform hooks over external systems",
		Long: `Lasso wraps databases, APIs, and remote hosts behind a single connector
contract. Connection records name the target systems; hooks execute commands
against them; transfers move data between them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.Config{Level: logLevel, Encoding: "console"}); err != nil {
				return err
			}
			if connectionsFile != "" {
				return connection.LoadFile(connectionsFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&connectionsFile, "connections", "c", "", "Path to a YAML connections file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Lasso v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List installed providers as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := gojson.MarshalIndent(provider.List(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "hooks",
		Short: "List registered hook connection types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, connType := range registry.List() {
				fmt.Printf("  - %s\n", connType)
			}
		},
	})

	var connID, command string
	var timeout time.Duration

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a command against a connection",
		Long: `Run a command against the hook for the named connection. The connection's
type selects the hook; the command's meaning depends on it (SQL for
databases, JQL for Jira, a shell command for WinRM).

Example:
  lasso run --conn-id trino_default --command "SELECT 1"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(connID, command, timeout)
		},
	}
	runCmd.Flags().StringVar(&connID, "conn-id", "", "Connection id to run against (required)")
	runCmd.Flags().StringVar(&command, "command", "", "Command to run (required)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Command timeout")
	_ = runCmd.MarkFlagRequired("conn-id")
	_ = runCmd.MarkFlagRequired("command")
	root.AddCommand(runCmd)

	var jobFile string
	var transferTimeout time.Duration
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Run a transfer job",
		Long: `Run a transfer described by a YAML job file: a SQL query against a source
connection, landed in a MySQL table.

Example:
  lasso transfer --job job.yaml --connections connections.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(jobFile, transferTimeout)
		},
	}
	transferCmd.Flags().StringVar(&jobFile, "job", "", "Path to a YAML transfer job file (required)")
	transferCmd.Flags().DurationVar(&transferTimeout, "timeout", 30*time.Minute, "Transfer timeout")
	_ = transferCmd.MarkFlagRequired("job")
	root.AddCommand(transferCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func runCommand(connID, command string, timeout time.Duration) error {
	h, err := registry.Create(connID)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			logger.Get().Warn("failed to close hook", zap.Error(cerr))
		}
	}()

	runner, ok := h.(hook.Runner)
	if !ok {
		return fmt.Errorf("hook for connection %q does not support run", connID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := runner.Run(ctx, command)
	if err != nil {
		return err
	}

	out, err := gojson.MarshalIndent(result, "", "  ")
	if err != nil {
		// Not everything a hook returns is JSON-encodable.
		fmt.Printf("%v\n", result)
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func runTransfer(jobFile string, timeout time.Duration) error {
	data, err := os.ReadFile(jobFile)
	if err != nil {
		return fmt.Errorf("failed to read job file %s: %w", jobFile, err)
	}

	var job TransferJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("failed to parse job file %s: %w", jobFile, err)
	}

	src, err := registry.Create(job.SourceConnID)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Get().Warn("failed to close source hook", zap.Error(cerr))
		}
	}()

	fetcher, ok := src.(hook.RecordsFetcher)
	if !ok {
		return fmt.Errorf("hook for connection %q cannot fetch records", job.SourceConnID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	t := &transfer.SQLToMySQL{
		Source:       fetcher,
		SQL:          job.SQL,
		MySQLConnID:  job.MySQLConnID,
		Table:        job.Table,
		Preoperator:  job.Preoperator,
		Postoperator: job.Postoperator,
		BulkLoad:     job.BulkLoad,
	}
	return t.Execute(ctx)
}
