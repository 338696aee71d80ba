package repl

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/catalog"
	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/help"
	"github.com/sambeau/scql/pkg/scql/session"
)

// Shell evaluates REPL input one line at a time. It holds no terminal
// state, so the line editor and piped input share it.
type Shell struct {
	sess  *session.Session
	out   io.Writer
	width int
	log   *slog.Logger
	last  *session.Analysis
}

// NewShell creates a shell writing to out.
func NewShell(sess *session.Session, out io.Writer, width int, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Shell{sess: sess, out: out, width: width, log: log}
}

// Eval handles one line of input and reports whether the user asked to quit.
func (sh *Shell) Eval(input string) (quit bool) {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return false
	case trimmed == "exit" || trimmed == "quit":
		return true
	case strings.HasPrefix(trimmed, ":"):
		sh.command(trimmed)
		return false
	}

	sh.query(input)
	return false
}

// query runs one analysis cycle with the caret at the end of the line.
func (sh *Shell) query(text string) {
	a := sh.sess.Update(text, len(text))
	sh.last = a

	if a.Repaired {
		fmt.Fprintf(sh.out, "repaired: %s\n", a.Text)
	}
	if a.Stale {
		fmt.Fprintf(sh.out, "(showing previous query: %s)\n", a.Text)
	}

	problems := sh.sess.Problems(a)
	for _, p := range problems {
		io.WriteString(sh.out, p.PrettyString())
		io.WriteString(sh.out, "\n")
	}

	if !a.Valid {
		if len(problems) == 0 {
			fmt.Fprintln(sh.out, "not executable: code and compute cells have no shape")
		}
		return
	}
	if a.Stale {
		return
	}

	out, err := sh.sess.Execute(a)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	for _, s := range out {
		fmt.Fprintln(sh.out, s.Describe())
	}
}

// examples are shown by :help; each runs against the built-in sources.
var examples = []string{
	"$iris_data | reshape[3 *]",
	"$mnist_images, $mnist_labels | reshape[70000 *], reshape[*]",
	"$mnist_images | reshape[70000 *] | zip",
}

// command handles REPL meta-commands that start with ':'
func (sh *Shell) command(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(sh.out, "REPL Commands:")
		fmt.Fprintln(sh.out, "  :help, :h, :?        Show this help")
		fmt.Fprintln(sh.out, "  :tree                Show the syntax tree of the last query")
		fmt.Fprintln(sh.out, "  :at <line> <col>     Show what encloses a position in the last query")
		fmt.Fprintln(sh.out, "  :describe <topic>    Describe a source, a function, sources or functions")
		fmt.Fprintln(sh.out, "  :sources             List data sources")
		fmt.Fprintln(sh.out, "  :functions           List functions")
		fmt.Fprintln(sh.out, "  exit, quit           Exit the REPL")
		fmt.Fprintln(sh.out, "")
		fmt.Fprintln(sh.out, "Queries:")
		for _, q := range examples {
			fmt.Fprintf(sh.out, "  %s\n", q)
		}

	case ":tree":
		if sh.last == nil {
			fmt.Fprintln(sh.out, "(no query yet)")
			return
		}
		fmt.Fprintln(sh.out, ast.Render(sh.last.Tree, sh.last.Tree.Root))

	case ":at":
		sh.at(fields[1:])

	case ":describe", ":d":
		if len(fields) < 2 {
			fmt.Fprintln(sh.out, "usage: :describe <topic>")
			return
		}
		sh.describe(strings.Join(fields[1:], " "))

	case ":sources":
		sh.describe("sources")

	case ":functions":
		sh.describe("functions")

	default:
		fmt.Fprintf(sh.out, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
}

func (sh *Shell) at(args []string) {
	if sh.last == nil {
		fmt.Fprintln(sh.out, "(no query yet)")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(sh.out, "usage: :at <line> <col>")
		return
	}
	line, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(sh.out, "usage: :at <line> <col>")
		return
	}

	chain := sh.last.HelpAt(col, line)
	if len(chain) == 0 {
		fmt.Fprintf(sh.out, "nothing at %d:%d\n", line, col)
		return
	}
	for depth, h := range chain {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(sh.out, "%s%s%s", indent, h.Kind, h.Span)
		if h.Name != "" {
			fmt.Fprintf(sh.out, " %s", h.Name)
		}
		fmt.Fprintln(sh.out)
		if h.Diagnostic != "" {
			fmt.Fprintf(sh.out, "%s  ! %s\n", indent, strings.ReplaceAll(h.Diagnostic, "\n", "\n"+indent+"    "))
		}
		for _, d := range h.Schemas {
			fmt.Fprintf(sh.out, "%s  %s\n", indent, strings.ReplaceAll(d, "\n", "\n"+indent+"  "))
		}
	}
}

func (sh *Shell) describe(topic string) {
	result, err := help.DescribeTopic(topic, sh.sess.Data(), sh.sess.Code())
	if err != nil {
		var qe *errors.QueryError
		if stderrors.As(err, &qe) {
			fmt.Fprintln(sh.out, qe.PrettyString())
		} else {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
		}
		return
	}
	io.WriteString(sh.out, help.FormatText(result, sh.width))
}

// ApplyUpdate registers sources from a reloaded catalog file.
func (sh *Shell) ApplyUpdate(u catalog.Update) {
	if u.Err != nil {
		fmt.Fprintf(sh.out, "[catalog] %s: %v\n", u.Path, u.Err)
		return
	}
	if err := catalog.Apply(sh.sess.Data(), u.Sources); err != nil {
		fmt.Fprintf(sh.out, "[catalog] %s: %v\n", u.Path, err)
		return
	}
	sh.log.Info("catalog applied", "path", u.Path, "sources", len(u.Sources))
	fmt.Fprintf(sh.out, "[catalog] reloaded %d sources from %s\n", len(u.Sources), u.Path)
}

var commands = []string{":help", ":tree", ":at", ":describe", ":sources", ":functions"}

// Complete returns whole-line completions for the text left of the cursor:
// $source names, function names and meta-commands.
func (sh *Shell) Complete(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	start := strings.LastIndexAny(line, " \t|,([{") + 1
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	var candidates []string
	switch {
	case start == 0 && strings.HasPrefix(word, ":"):
		for _, c := range commands {
			if strings.HasPrefix(c, word) {
				candidates = append(candidates, c)
			}
		}
	case strings.HasPrefix(word, "$"):
		for _, name := range sh.sess.Data().Match(word[1:]) {
			candidates = append(candidates, "$"+name)
		}
	default:
		candidates = sh.sess.Code().Match(word)
	}

	res := make([]string, len(candidates))
	for i, c := range candidates {
		res[i] = head + c
	}
	return res
}
