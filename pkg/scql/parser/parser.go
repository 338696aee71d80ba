// Package parser turns SCQL text into an ast.Tree.
//
// The parser never gives up on the tree: when it meets an error it records
// it (only the first one is kept), leaves ast.None in the slot it could not
// fill, and carries on. Unterminated strings, argument lists and code cells
// are flagged with MissingClose so the caller can try a one-character repair.
package parser

import (
	"strconv"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/lexer"
)

// Parser holds the token window and the tree being built. curToken is the
// next token to consume; prevToken the last one consumed.
type Parser struct {
	l      *lexer.Lexer
	tree   *ast.Tree
	errors []*errors.QueryError

	prevToken lexer.Token
	curToken  lexer.Token
	consumed  int
}

// mark remembers where a construct started.
type mark struct {
	tok      lexer.Token
	consumed int
}

// New creates a parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, tree: ast.NewTree()}
	p.nextToken()
	return p
}

// Parse parses text and reports whether it parsed cleanly. The tree is
// returned either way; on failure it is the best-effort partial tree.
func Parse(text string) (bool, *ast.Tree, []*errors.QueryError) {
	p := New(lexer.New(text))
	tree := p.ParseQuery()
	return len(p.errors) == 0, tree, p.errors
}

// Errors returns the recorded errors.
func (p *Parser) Errors() []*errors.QueryError {
	return p.errors
}

// ParseQuery parses a whole query. The root is always a Pipeline.
func (p *Parser) ParseQuery() *ast.Tree {
	p.tree.Root = p.parsePipeline()
	if !p.curTokenIs(lexer.EOF) {
		p.addError("PARSE-0002", p.curToken.Line, p.curToken.Column, map[string]any{"Token": p.curToken.Literal})
	}
	return p.tree
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.l.NextToken()
	p.consumed++
}

func (p *Parser) mark() mark {
	return mark{tok: p.curToken, consumed: p.consumed}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

// addError records an error. Only the first one is kept.
func (p *Parser) addError(code string, line, column int, data map[string]any) {
	if len(p.errors) > 0 {
		return
	}
	p.errors = append(p.errors, errors.NewWithPosition(code, line, column, data))
}

// expectedError reports what was wanted at the position just past the
// last consumed token.
func (p *Parser) expectedError(expected string) {
	got := p.curToken.Literal
	if p.curTokenIs(lexer.EOF) {
		got = "end of input"
	}
	line, column := p.curToken.Line, p.curToken.Column
	if p.prevToken.Line > 0 {
		line, column = p.prevToken.EndLine, p.prevToken.EndColumn
	}
	p.addError("PARSE-0001", line, column, map[string]any{"Expected": expected, "Got": got})
}

func tokenSpan(tok lexer.Token) ast.Span {
	return ast.Span{
		FirstLine:   tok.Line,
		FirstColumn: tok.Column,
		LastLine:    tok.EndLine,
		LastColumn:  tok.EndColumn,
	}
}

// spanFrom covers the tokens consumed since m. When nothing was consumed
// the span is zero-width at the token m started on.
func (p *Parser) spanFrom(m mark) ast.Span {
	if p.consumed == m.consumed {
		return ast.Span{
			FirstLine:   m.tok.Line,
			FirstColumn: m.tok.Column,
			LastLine:    m.tok.Line,
			LastColumn:  m.tok.Column,
		}
	}
	return ast.Span{
		FirstLine:   m.tok.Line,
		FirstColumn: m.tok.Column,
		LastLine:    p.prevToken.EndLine,
		LastColumn:  p.prevToken.EndColumn,
	}
}

// parsePipeline parses stage ('|' stage)*.
func (p *Parser) parsePipeline() ast.NodeID {
	m := p.mark()
	stages := []ast.NodeID{p.parseStage()}
	for p.curTokenIs(lexer.PIPE) {
		p.nextToken()
		stages = append(stages, p.parseStage())
	}
	return p.tree.Add(ast.Node{Kind: ast.Pipeline, Span: p.spanFrom(m), Children: stages})
}

// parseStage parses statement (',' statement)*.
func (p *Parser) parseStage() ast.NodeID {
	m := p.mark()
	slots := []ast.NodeID{p.parseStatement()}
	for p.curTokenIs(lexer.COMMA) {
		p.nextToken()
		slots = append(slots, p.parseStatement())
	}
	return p.tree.Add(ast.Node{Kind: ast.StatementGroup, Span: p.spanFrom(m), Children: slots})
}

// parseStatement parses one slot of a stage. It returns ast.None, without
// consuming anything, when no statement starts at the current token.
func (p *Parser) parseStatement() ast.NodeID {
	switch p.curToken.Type {
	case lexer.DATA:
		return p.parseLeaf(ast.DataCell)
	case lexer.IDENT:
		return p.parseFunctionCall()
	case lexer.LPAREN:
		return p.parseNestedPipeline()
	case lexer.CODE:
		return p.parseCodeCell()
	case lexer.CODEREF:
		return p.parseLeaf(ast.CodeCell)
	case lexer.COMPUTE:
		return p.parseLeaf(ast.ComputeCell)
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.ASTERISK, lexer.LBRACE:
		return p.parseLiteral()
	case lexer.ILLEGAL:
		p.illegal()
		return ast.None
	}
	p.expectedError("a statement")
	return ast.None
}

func (p *Parser) illegal() {
	p.addError("PARSE-0007", p.curToken.Line, p.curToken.Column, map[string]any{"Char": p.curToken.Literal})
	p.nextToken()
}

// parseLeaf turns the current token into a named node.
func (p *Parser) parseLeaf(kind ast.Kind) ast.NodeID {
	tok := p.curToken
	p.nextToken()
	return p.tree.Add(ast.Node{Kind: kind, Text: tok.Literal, Span: tokenSpan(tok)})
}

func (p *Parser) parseCodeCell() ast.NodeID {
	tok := p.curToken
	if tok.Unterminated {
		p.addError("PARSE-0005", tok.Line, tok.Column, nil)
	}
	p.nextToken()
	return p.tree.Add(ast.Node{Kind: ast.CodeCell, Text: tok.Literal, MissingClose: tok.Unterminated, Span: tokenSpan(tok)})
}

// parseLiteral parses INT, FLOAT, STRING, '*' or a {…} list.
func (p *Parser) parseLiteral() ast.NodeID {
	tok := p.curToken
	switch tok.Type {
	case lexer.INT:
		p.nextToken()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.addError("PARSE-0006", tok.Line, tok.Column, map[string]any{"Literal": tok.Literal})
			return ast.None
		}
		return p.tree.Add(ast.Node{Kind: ast.Integer, Int: v, Span: tokenSpan(tok)})
	case lexer.FLOAT:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addError("PARSE-0006", tok.Line, tok.Column, map[string]any{"Literal": tok.Literal})
			return ast.None
		}
		return p.tree.Add(ast.Node{Kind: ast.FloatNum, Float: v, Span: tokenSpan(tok)})
	case lexer.STRING:
		if tok.Unterminated {
			p.addError("PARSE-0003", tok.Line, tok.Column, nil)
		}
		p.nextToken()
		return p.tree.Add(ast.Node{Kind: ast.String, Text: tok.Literal, MissingClose: tok.Unterminated, Span: tokenSpan(tok)})
	case lexer.ASTERISK:
		p.nextToken()
		return p.tree.Add(ast.Node{Kind: ast.Glob, Span: tokenSpan(tok)})
	case lexer.LBRACE:
		return p.parseList()
	}
	p.expectedError("a value")
	return ast.None
}

// parseArgument parses one argument; identifiers stay plain Ident nodes.
func (p *Parser) parseArgument() ast.NodeID {
	switch p.curToken.Type {
	case lexer.IDENT:
		return p.parseLeaf(ast.Ident)
	case lexer.DATA:
		return p.parseLeaf(ast.DataCell)
	case lexer.ILLEGAL:
		p.illegal()
		return ast.None
	}
	return p.parseLiteral()
}

func isArgumentStart(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.DATA, lexer.INT, lexer.FLOAT, lexer.STRING, lexer.ASTERISK, lexer.LBRACE, lexer.ILLEGAL:
		return true
	}
	return false
}

// parseElements parses arguments up to the closing token. Commas are
// optional separators; a comma with nothing before it leaves an absent
// element. It reports whether the closing token was reached, consuming it.
func (p *Parser) parseElements(end lexer.TokenType) ([]ast.NodeID, bool) {
	var elems []ast.NodeID
	pending := false // an element is owed after a comma
	for {
		switch {
		case p.curTokenIs(end):
			if pending {
				elems = append(elems, ast.None)
			}
			p.nextToken()
			return elems, true
		case p.curTokenIs(lexer.COMMA):
			if pending || len(elems) == 0 {
				elems = append(elems, ast.None)
			}
			pending = true
			p.nextToken()
		case isArgumentStart(p.curToken.Type):
			elems = append(elems, p.parseArgument())
			pending = false
		default:
			if pending {
				elems = append(elems, ast.None)
			}
			return elems, false
		}
	}
}

// parseFunctionCall parses IDENT ['[' args ']'].
func (p *Parser) parseFunctionCall() ast.NodeID {
	m := p.mark()
	name := p.parseLeaf(ast.Ident)
	if !p.curTokenIs(lexer.LBRACKET) {
		return p.tree.Add(ast.Node{Kind: ast.FunctionCall, Name: name, Span: p.spanFrom(m)})
	}
	p.nextToken()

	args, closed := p.parseElements(lexer.RBRACKET)
	call := ast.Node{Kind: ast.FunctionCall, Name: name, Children: args, Span: p.spanFrom(m)}
	if !closed {
		if p.curTokenIs(lexer.EOF) {
			p.addError("PARSE-0004", p.curToken.Line, p.curToken.Column, map[string]any{"Function": m.tok.Literal})
			// An unterminated argument is closed first; the call follows
			// on the next round.
			call.MissingClose = !p.endsUnterminated(args)
			call.Span.LastLine, call.Span.LastColumn = p.curToken.Line, p.curToken.Column
		} else {
			p.expectedError("]")
		}
	}
	return p.tree.Add(call)
}

// endsUnterminated reports whether the last argument is itself missing
// its closing delimiter.
func (p *Parser) endsUnterminated(args []ast.NodeID) bool {
	if len(args) == 0 {
		return false
	}
	last := p.tree.Node(args[len(args)-1])
	return last != nil && last.MissingClose
}

func (p *Parser) parseList() ast.NodeID {
	m := p.mark()
	p.nextToken()
	elems, closed := p.parseElements(lexer.RBRACE)
	if !closed {
		p.expectedError("}")
	}
	return p.tree.Add(ast.Node{Kind: ast.List, Children: elems, Span: p.spanFrom(m)})
}

// parseNestedPipeline parses '(' pipeline ')'. The pipeline node's span
// includes the parentheses.
func (p *Parser) parseNestedPipeline() ast.NodeID {
	m := p.mark()
	p.nextToken()
	id := p.parsePipeline()
	if p.curTokenIs(lexer.RPAREN) {
		p.nextToken()
	} else {
		p.addError("PARSE-0008", p.curToken.Line, p.curToken.Column, nil)
	}
	p.tree.Node(id).Span = p.spanFrom(m)
	return id
}
