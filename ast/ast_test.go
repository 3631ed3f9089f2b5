package ast_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/token"
)

func TestScriptPositionResolvesLineColumn(t *testing.T) {
	c := qt.New(t)
	// "abc\ndef\n" -> line offsets [0, 4, 8]
	s := &ast.Script{Lines: []int{0, 4, 8}}
	pos := s.Position(token.Pos(6)) // 'e' in "def"
	c.Assert(pos.Line, qt.Equals, 2)
	c.Assert(pos.Column, qt.Equals, 2)
}

func TestWordPosEndSpanParts(t *testing.T) {
	c := qt.New(t)
	w := ast.Word{Parts: []ast.WordPart{
		&ast.Literal{ValuePos: 10, Value: "abc"},
		&ast.Literal{ValuePos: 13, Value: "def"},
	}}
	c.Assert(w.Pos(), qt.Equals, token.Pos(10))
	c.Assert(w.End(), qt.Equals, token.Pos(16))
}

func TestWordEmptyPartsZeroSpan(t *testing.T) {
	c := qt.New(t)
	var w ast.Word
	c.Assert(w.Pos(), qt.Equals, token.Pos(0))
	c.Assert(w.End(), qt.Equals, token.Pos(0))
}

func TestSingleQuotedEndIncludesQuotes(t *testing.T) {
	c := qt.New(t)
	q := &ast.SingleQuoted{Position: 5, Value: "abc"}
	c.Assert(q.End(), qt.Equals, token.Pos(5+3+2))
}

func TestListEndFallsBackToStartWhenEmpty(t *testing.T) {
	c := qt.New(t)
	l := &ast.List{StartPos: 42}
	c.Assert(l.End(), qt.Equals, token.Pos(42))
}

func TestIfEndCoversFiKeyword(t *testing.T) {
	c := qt.New(t)
	i := &ast.If{IfPos: 1, FiPos: 100}
	c.Assert(i.End(), qt.Equals, token.Pos(102))
}

func TestFunctionDefEndFollowsBody(t *testing.T) {
	c := qt.New(t)
	body := &ast.Stmt{
		Position: 20,
		Cmd:      &ast.Simple{StartPos: 20, Words: []ast.Word{{Parts: []ast.WordPart{&ast.Literal{ValuePos: 20, Value: "echo"}}}}},
	}
	fn := &ast.FunctionDef{Position: 1, Name: "f", Body: body}
	c.Assert(fn.End(), qt.Equals, body.End())
}

func TestArrayLitEndIncludesClosingParen(t *testing.T) {
	c := qt.New(t)
	a := &ast.ArrayLit{Lparen: 5, Rparen: 20}
	c.Assert(a.End(), qt.Equals, token.Pos(21))
}

func TestBackgroundDelegatesToWrappedCommand(t *testing.T) {
	c := qt.New(t)
	simple := &ast.Simple{StartPos: 3, Words: []ast.Word{{Parts: []ast.WordPart{&ast.Literal{ValuePos: 3, Value: "sleep"}}}}}
	bg := &ast.Background{Cmd: simple}
	c.Assert(bg.Pos(), qt.Equals, simple.Pos())
	c.Assert(bg.End(), qt.Equals, simple.End())
}
