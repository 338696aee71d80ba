package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sambeau/scql/config"
	"github.com/sambeau/scql/logging"
	"github.com/sambeau/scql/pkg/scql/catalog"
	"github.com/sambeau/scql/pkg/scql/code"
	"github.com/sambeau/scql/pkg/scql/schema"
	"github.com/sambeau/scql/pkg/scql/session"
)

// app holds what every command shares: streams, flags, and the loaded
// configuration and logger.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "scql",
		Short: "SCQL - shape-checked query language",
		Long: `SCQL analyses pipelines over multi-dimensional data sources as you type.
Every query is parsed, repaired if it ends in an unterminated string,
argument list or code cell, and checked for shape errors before it runs.

Examples:
  scql                                   start the REPL
  scql check '$iris_data | reshape[3 *]'
  scql describe mnist_images`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepl(cmd.Context())
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("scql version {{.Version}} (%s)\n", Commit))

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text, json")

	root.AddCommand(
		newReplCmd(a),
		newCheckCmd(a),
		newDescribeCmd(a),
		newCatalogCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and opens the logger.
// Precedence: flags > config file > defaults
func (a *app) setup() error {
	cfg, path, err := config.LoadWithPath(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	switch cfg.Logging.Output {
	case "", "stderr":
		a.log = logging.New(cfg.Logging, a.stderr)
	default:
		log, closer, err := logging.Open(cfg.Logging)
		if err != nil {
			return err
		}
		a.log, a.closer = log, closer
	}

	if path != "" {
		a.log.Debug("config loaded", "path", path)
	}
	return nil
}

// close releases what setup opened. Cobra skips post-run hooks when a
// command fails, so run calls this after every execution.
func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// newSession builds the registries from the configured catalogs.
func (a *app) newSession(ctx context.Context) (*session.Session, error) {
	data := schema.NewEmptyRegistry()
	if a.cfg.Catalog.Builtins {
		data = schema.NewRegistry()
	}

	for _, f := range a.cfg.Catalog.Files {
		sources, err := catalog.LoadFile(f)
		if err != nil {
			return nil, err
		}
		if err := catalog.Apply(data, sources); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		a.log.Debug("catalog loaded", "path", f, "sources", len(sources))
	}

	if a.cfg.Catalog.SQLite != "" {
		sources, err := catalog.LoadSQLite(ctx, a.cfg.Catalog.SQLite)
		if err != nil {
			return nil, err
		}
		if err := catalog.Apply(data, sources); err != nil {
			return nil, fmt.Errorf("%s: %w", a.cfg.Catalog.SQLite, err)
		}
		a.log.Debug("catalog loaded", "path", a.cfg.Catalog.SQLite, "sources", len(sources))
	}

	if a.cfg.Catalog.Database != "" {
		sources, err := catalog.LoadDatabase(ctx, a.cfg.Catalog.Database)
		if err != nil {
			return nil, err
		}
		if err := catalog.Apply(data, sources); err != nil {
			return nil, fmt.Errorf("catalog database: %w", err)
		}
		a.log.Debug("catalog loaded", "database", true, "sources", len(sources))
	}

	return session.New(data, code.NewRegistry(), a.log), nil
}
