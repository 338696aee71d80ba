package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/help"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// checkResult is the JSON form of one analysis
type checkResult struct {
	Query    string               `json:"query"`
	Text     string               `json:"text"`
	Repaired bool                 `json:"repaired"`
	Valid    bool                 `json:"valid"`
	Tree     string               `json:"tree,omitempty"`
	Problems []*errors.QueryError `json:"problems"`
	Outputs  []outputShape        `json:"outputs,omitempty"`
}

type outputShape struct {
	Title   string             `json:"title,omitempty"`
	Dimens  []int64            `json:"dimens"`
	Records int64              `json:"records"`
	Columns []help.ColumnEntry `json:"columns,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	var showTree, asJSON bool

	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Analyse one query and report its shape",
		Long: `Run one analysis cycle over a query with the caret at its end.

Prints the repaired text if repair was needed, every problem with its
position and hints, and the shapes of the result when the query is valid.
Exits with status 1 when the query is not valid.

Examples:
  scql check '$mnist_images | reshape[70000 *] | zip'
  scql check --tree '$iris_data, $mnist_labels | reshape[*], reshape[*]'
  scql check --json '$iris_data | reshape[7]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, strings.Join(args, " "), showTree, asJSON)
		},
	}
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the syntax tree")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, query string, showTree, asJSON bool) error {
	sess, err := a.newSession(cmd.Context())
	if err != nil {
		return err
	}

	analysis := sess.Update(query, len(query))
	result := checkResult{
		Query:    query,
		Text:     analysis.Text,
		Repaired: analysis.Repaired,
		Valid:    analysis.Valid,
		Problems: sess.Problems(analysis),
	}
	if result.Problems == nil {
		result.Problems = []*errors.QueryError{}
	}
	if showTree {
		result.Tree = ast.Render(analysis.Tree, analysis.Tree.Root)
	}

	var outputs []*schema.Schema
	if analysis.Valid {
		if outputs, err = sess.Execute(analysis); err != nil {
			return err
		}
		for _, s := range outputs {
			result.Outputs = append(result.Outputs, toOutputShape(s))
		}
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(a.stdout, string(data))
	} else {
		a.printCheck(result, outputs)
	}

	if !result.Valid {
		return &exitError{code: 1}
	}
	return nil
}

func (a *app) printCheck(result checkResult, outputs []*schema.Schema) {
	if result.Repaired {
		fmt.Fprintf(a.stdout, "repaired: %s\n", result.Text)
	}
	if result.Tree != "" {
		fmt.Fprintln(a.stdout, result.Tree)
	}
	for _, p := range result.Problems {
		fmt.Fprintln(a.stdout, p.PrettyString())
	}
	if !result.Valid {
		fmt.Fprintln(a.stdout, "invalid")
		return
	}
	fmt.Fprintln(a.stdout, "valid")
	for _, s := range outputs {
		fmt.Fprintln(a.stdout, s.Describe())
	}
}

func toOutputShape(s *schema.Schema) outputShape {
	out := outputShape{Title: s.Title, Dimens: s.Dimens}
	if n, ok := s.Records(); ok {
		out.Records = n
	}
	for _, c := range s.Columns {
		out.Columns = append(out.Columns, help.ColumnEntry{
			Label:   c.Label,
			Type:    c.Type.String(),
			Count:   c.Count,
			Extents: c.Extents,
		})
	}
	return out
}
