// Package repl is the interactive SCQL shell: every line is analysed as a
// query and answered with repairs, problems and result shapes.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"

	"github.com/sambeau/scql/pkg/scql/catalog"
	"github.com/sambeau/scql/pkg/scql/session"
)

const SCQL_LOGO = `
█▀ █▀▀ █▀█ █░░
▄█ █▄▄ ▀▀█ █▄▄ `

// Options configures a REPL run.
type Options struct {
	Session *session.Session
	Prompt  string
	History string // history file, "" for none
	Width   int
	Version string
	Updates <-chan catalog.Update // catalog reloads, may be nil
	Log     *slog.Logger
}

// Start runs the line-editing REPL on the terminal until the user quits.
func Start(out io.Writer, opts Options) {
	sh := NewShell(opts.Session, out, opts.Width, opts.Log)

	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)
	line.SetCompleter(sh.Complete)

	if opts.History != "" {
		if f, err := os.Open(opts.History); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.History); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintf(out, "%s", SCQL_LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	for {
		drainUpdates(sh, opts.Updates)

		input, err := line.Prompt(prompt(opts))
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		if input != "" {
			line.AppendHistory(input)
		}
		if sh.Eval(input) {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

// Run reads lines from in without line editing, for piped input.
func Run(in io.Reader, out io.Writer, opts Options) error {
	sh := NewShell(opts.Session, out, opts.Width, opts.Log)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		drainUpdates(sh, opts.Updates)
		if sh.Eval(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

func prompt(opts Options) string {
	if opts.Prompt == "" {
		return "scql> "
	}
	return opts.Prompt
}

// drainUpdates applies every pending catalog reload without blocking.
// It runs between prompts so that no reload lands mid-analysis.
func drainUpdates(sh *Shell, updates <-chan catalog.Update) {
	if updates == nil {
		return
	}
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			sh.ApplyUpdate(u)
		default:
			return
		}
	}
}
