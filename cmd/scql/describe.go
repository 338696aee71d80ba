package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/help"
)

func newDescribeCmd(a *app) *cobra.Command {
	var asJSON, asMarkdown, asHTML bool

	cmd := &cobra.Command{
		Use:   "describe <topic>",
		Short: "Show help for a data source or function",
		Long: `Show help for a data source or function.

Topics:
  sources          List all data sources
  functions        List all functions
  <source>         A data source, with or without its $ (e.g. $iris_data)
  <function>       A function (e.g. reshape, zip)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}

			result, err := help.DescribeTopic(args[0], sess.Data(), sess.Code())
			if err != nil {
				var qe *errors.QueryError
				if stderrors.As(err, &qe) {
					fmt.Fprintln(a.stderr, qe.PrettyString())
					return &exitError{code: 1}
				}
				return err
			}

			switch {
			case asHTML:
				out, err := help.FormatHTML(result)
				if err != nil {
					return err
				}
				fmt.Fprint(a.stdout, out)
				return nil
			case asMarkdown:
				fmt.Fprint(a.stdout, help.FormatMarkdown(result))
				return nil
			case asJSON:
				data, err := help.FormatJSON(result)
				if err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
				fmt.Fprintln(a.stdout, string(data))
				return nil
			}

			text := help.FormatText(result, a.cfg.REPL.Width)
			fmt.Fprint(a.stdout, text)
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(a.stdout)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Output as Markdown")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Output as HTML")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown", "html")
	return cmd
}
