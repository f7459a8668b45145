package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sql2ldap/sql2ldap/internal/attrmap"
	"github.com/sql2ldap/sql2ldap/internal/gateway"
	"github.com/sql2ldap/sql2ldap/internal/server"
	"github.com/sql2ldap/sql2ldap/internal/sqlbackend"
	"github.com/sql2ldap/sql2ldap/pkg/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

const defaultConfigPath = "/etc/sql2ldap.toml"

func init() {
	// Suppress unstructured logs from ldapserver's library-internal
	// logging globally; all gateway logging goes through slog.
	log.SetOutput(io.Discard)
	log.SetFlags(0)
	log.SetPrefix("")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sql2ldapd",
	Short: "sql2ldapd - a read-only LDAP v3 gateway over a PostgreSQL table",
}

var (
	configPath string
	debugFlag  bool
)

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the TOML configuration file")
	serveCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable debug logging, including generated SQL and bindings")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LDAP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sql2ldapd version %s (commit: %s)\n", version, commit)
	},
}

func serve() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if debugFlag {
		cfg.Server.Debug = true
	}

	initLogging(cfg.Server.Debug)
	cfg.Print()
	runtime.GOMAXPROCS(cfg.Server.Threads)

	ctx := context.Background()

	backend, err := sqlbackend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to sql backend: %w", err)
	}
	defer backend.Close()

	mapping := attrmap.New()
	for attr, col := range cfg.Mappings {
		mapping.Insert(attr, col)
	}

	executor := &gateway.Executor{
		Suffix:  cfg.LDAP.Suffix,
		Mapping: mapping,
		SQL:     queryAdapter{backend},
	}

	srv := server.New(cfg, executor)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start ldap server: %w", err)
	}

	slog.Info("sql2ldapd is running", "address", fmt.Sprintf("%s:%d", cfg.Server.IP, cfg.Server.Port))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	srv.Stop()

	return nil
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// queryAdapter makes *sqlbackend.Backend satisfy gateway.Querier: its
// concrete []sqlbackend.Row slice needs boxing into []gateway.Row, since
// Go interfaces don't covary slice element types.
type queryAdapter struct {
	backend *sqlbackend.Backend
}

func (a queryAdapter) Query(ctx context.Context, selectClause, whereClause string, limit int, args []string) ([]gateway.Row, error) {
	rows, err := a.backend.Query(ctx, selectClause, whereClause, limit, args)
	if err != nil {
		return nil, err
	}
	out := make([]gateway.Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}
