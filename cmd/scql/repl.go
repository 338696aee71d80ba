package main

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sambeau/scql/pkg/scql/catalog"
	"github.com/sambeau/scql/pkg/scql/repl"
)

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell (default)",
		Long: `Start the interactive shell. Each line is analysed as a query; the shell
prints any repairs, problems with hints, and the shapes of the result.

When catalog.watch is set in the config, YAML catalogs are reloaded as they
change and applied between prompts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepl(cmd.Context())
		},
	}
}

func (a *app) runRepl(ctx context.Context) error {
	sess, err := a.newSession(ctx)
	if err != nil {
		return err
	}

	opts := repl.Options{
		Session: sess,
		Prompt:  a.cfg.REPL.Prompt,
		History: a.cfg.REPL.History,
		Width:   a.cfg.REPL.Width,
		Version: Version,
		Log:     a.log,
	}

	if a.cfg.Catalog.Watch {
		w, err := catalog.NewWatcher(a.cfg.Catalog.Files, a.log)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := w.Start(ctx); err != nil {
			return err
		}
		opts.Updates = w.Updates()
	}

	if f, ok := a.stdin.(*os.File); ok && f == os.Stdin && isatty.IsTerminal(f.Fd()) {
		repl.Start(a.stdout, opts)
		return nil
	}
	return repl.Run(a.stdin, a.stdout, opts)
}
