package session

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/code"
	"github.com/sambeau/scql/pkg/scql/schema"
)

func newSession() *Session {
	return New(schema.NewRegistry(), code.NewRegistry(), nil)
}

func update(s *Session, text string) *Analysis {
	return s.Update(text, len(text))
}

func TestUpdateValid(t *testing.T) {
	s := newSession()
	a := update(s, "$iris_data | reshape[3 *]")
	assert.True(t, a.Valid)
	assert.False(t, a.Repaired)
	assert.False(t, a.Stale)
	assert.Empty(t, a.Errors)
	assert.Equal(t, 1, a.Generation)
	assert.Equal(t, a.Tree, a.Index.Tree())
	assert.Same(t, a, s.Last())
}

func TestUpdateRepairsString(t *testing.T) {
	a := update(newSession(), `"abc`)
	assert.True(t, a.Repaired)
	assert.Equal(t, `"abc"`, a.Text)
	assert.True(t, a.Valid)
}

func TestUpdateRepairsInnerThenOuter(t *testing.T) {
	a := update(newSession(), `reshape["ab`)
	require.True(t, a.Repaired)
	assert.Equal(t, `reshape["ab"]`, a.Text)
	assert.False(t, a.Stale)
	assert.Empty(t, a.Errors)
	// a string is not a dimension
	assert.False(t, a.Valid)
}

func TestUpdateRepairsCallAndCodeCell(t *testing.T) {
	s := newSession()

	a := update(s, "$mnist_images | reshape[70000 *")
	assert.Equal(t, "$mnist_images | reshape[70000 *]", a.Text)
	assert.True(t, a.Valid)

	a = update(s, "@{x + 1")
	assert.Equal(t, "@{x + 1}", a.Text)
	assert.True(t, a.Repaired)
	assert.False(t, a.Valid)
}

func TestUpdateRepairOnlyAtCaret(t *testing.T) {
	s := newSession()
	a := s.Update(`"abc`, 2)
	assert.False(t, a.Repaired)
	assert.False(t, a.Valid)
	require.NotEmpty(t, a.Errors)
	assert.Equal(t, "PARSE-0003", a.Errors[0].Code)
}

func TestUpdateFallsBackToLastGood(t *testing.T) {
	s := newSession()
	good := update(s, "$iris_data")
	require.True(t, good.Valid)

	a := update(s, "$iris_data | (reshape[2")
	assert.True(t, a.Stale)
	assert.Equal(t, good.Generation, a.Generation)
	assert.Equal(t, "$iris_data", a.Text)
	assert.True(t, a.Valid, "a stale analysis keeps its own validity")
	require.NotEmpty(t, a.Errors)
	assert.Equal(t, "PARSE-0004", a.Errors[0].Code)

	assert.False(t, s.Last().Stale, "the stored analysis is not marked")
}

func TestUpdateWithoutHistoryUsesPartialTree(t *testing.T) {
	s := newSession()
	a := update(s, "$iris_data )")
	assert.False(t, a.Stale)
	assert.False(t, a.Valid)
	require.NotEmpty(t, a.Errors)
	assert.Equal(t, "PARSE-0002", a.Errors[0].Code)
	require.NotNil(t, a.Tree)
	assert.Nil(t, s.Last())
}

func TestUpdateGenerationsAdvance(t *testing.T) {
	s := newSession()
	first := update(s, "$iris_data")
	second := update(s, "$iris_data | zip")
	assert.Less(t, first.Generation, second.Generation)
	assert.NotSame(t, first.Tree, second.Tree)
}

func TestUpdateBadCaretClamps(t *testing.T) {
	a := newSession().Update(`"abc`, 99)
	assert.Equal(t, `"abc"`, a.Text)
}

func TestUpdateLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(schema.NewRegistry(), code.NewRegistry(), log)
	update(s, "$iris_data")
	assert.Contains(t, buf.String(), "msg=analysis")
	assert.Contains(t, buf.String(), "valid=true")
}

func TestPosition(t *testing.T) {
	text := "ab\ncé"
	tests := []struct {
		offset int
		x, y   int
	}{
		{0, 1, 1},
		{2, 3, 1},
		{3, 1, 2},
		{4, 2, 2},
		{6, 3, 2},
		{99, 3, 2},
	}
	for _, tt := range tests {
		x, y := Position(text, tt.offset)
		assert.Equal(t, [2]int{tt.x, tt.y}, [2]int{x, y}, "offset %d", tt.offset)
	}

	assert.Equal(t, 6, Offset(text, 3, 2))
	assert.Equal(t, 4, Offset(text, 2, 2))
	assert.Equal(t, 2, Offset(text, 10, 1), "clamps to the end of the line")
	assert.Equal(t, 0, Offset(text, 1, 1))
}

func TestHelpAt(t *testing.T) {
	a := update(newSession(), "$iris_data | reshape[3 *]")
	chain := a.HelpAt(14, 1)
	var kinds []ast.Kind
	for _, h := range chain {
		kinds = append(kinds, h.Kind)
	}
	assert.Equal(t, []ast.Kind{ast.Pipeline, ast.StatementGroup, ast.FunctionCall, ast.Ident}, kinds)

	call := chain[2]
	assert.Equal(t, "reshape", call.Name)
	assert.Empty(t, call.Diagnostic)
	require.Len(t, call.Schemas, 1)
	assert.Contains(t, call.Schemas[0], "[3×50]")

	data := a.HelpAt(2, 1)
	assert.Equal(t, "iris_data", data[len(data)-1].Name)
}

func TestHelpAtDiagnostic(t *testing.T) {
	a := update(newSession(), "$iris_data | reshape[7]")
	chain := a.HelpAt(15, 1)
	require.Len(t, chain, 4)
	assert.Equal(t, "defined sizes have remainder of 3", chain[2].Diagnostic)
	assert.Empty(t, chain[2].Schemas)
}

func TestProblems(t *testing.T) {
	s := newSession()
	a := update(s, "$iris | reshape[7]")
	problems := s.Problems(a)
	require.Len(t, problems, 2)

	assert.Equal(t, "UNDEF-0001", problems[0].Code)
	assert.Equal(t, 1, problems[0].Column)
	assert.Contains(t, problems[0].Hints, "Did you mean `iris_data`?")

	assert.Equal(t, "SHAPE-0001", problems[1].Code)
	assert.Equal(t, "reshape: reshapes requires input data", problems[1].Message)
	assert.Equal(t, 9, problems[1].Column)
	assert.Contains(t, problems[1].Hints[0], "usage: reshape[")
}

func TestProblemsAmbiguousAndUnknownFunction(t *testing.T) {
	s := newSession()

	problems := s.Problems(update(s, "$mnist_"))
	require.Len(t, problems, 1)
	assert.Equal(t, "UNDEF-0003", problems[0].Code)

	problems = s.Problems(update(s, "$iris_data | transpose"))
	require.Len(t, problems, 1)
	assert.Equal(t, "UNDEF-0002", problems[0].Code)
}

func TestProblemsIgnoresArguments(t *testing.T) {
	s := newSession()
	problems := s.Problems(update(s, "$iris_data | reshape[$nope]"))
	require.Len(t, problems, 1)
	assert.Equal(t, "SHAPE-0001", problems[0].Code)
}

func TestProblemsStale(t *testing.T) {
	s := newSession()
	update(s, "$nope")
	a := update(s, "$nope | (zip")
	require.True(t, a.Stale)
	problems := s.Problems(a)
	require.Len(t, problems, 1)
	assert.Equal(t, "PARSE-0008", problems[0].Code)
}

func TestExecute(t *testing.T) {
	s := newSession()
	out, err := s.Execute(update(s, "$mnist_images | reshape[70000 *] | zip"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []int64{70000, 784}, out[0].Dimens)

	_, err = s.Execute(update(s, "$iris_data | reshape[7]"))
	assert.Error(t, err)
	_, err = s.Execute(nil)
	assert.Error(t, err)
}

func TestSetContext(t *testing.T) {
	s := newSession()
	s.SetContext([]*schema.Schema{s.Data().Get("iris_data")})
	a := update(s, "reshape[3 *]")
	assert.True(t, a.Valid)
}
