package ast

import "github.com/everruns/bashkit-sub001/token"

// ArithExpr is any node of a `(( ))` / `$(( ))` arithmetic expression.
type ArithExpr interface {
	Node
	arithNode()
}

// ArithBinary is a binary arithmetic operator application.
type ArithBinary struct {
	OpPos token.Pos
	Op    token.Kind
	X, Y  ArithExpr
}

func (b *ArithBinary) Pos() token.Pos { return b.X.Pos() }
func (b *ArithBinary) End() token.Pos { return b.Y.End() }
func (*ArithBinary) arithNode()       {}

// ArithUnary is a prefix or postfix unary operator (`-x`, `!x`, `~x`,
// `++x`, `x++`, ...).
type ArithUnary struct {
	OpPos  token.Pos
	Op     token.Kind
	X      ArithExpr
	Postfix bool
}

func (u *ArithUnary) Pos() token.Pos { return u.OpPos }
func (u *ArithUnary) End() token.Pos { return u.X.End() }
func (*ArithUnary) arithNode()       {}

// ArithAssign is `x = y` and the compound-assignment family (`+=`, ...).
type ArithAssign struct {
	OpPos token.Pos
	Op    token.Kind
	X, Y  ArithExpr
}

func (a *ArithAssign) Pos() token.Pos { return a.X.Pos() }
func (a *ArithAssign) End() token.Pos { return a.Y.End() }
func (*ArithAssign) arithNode()       {}

// ArithTernary is `cond ? then : else`.
type ArithTernary struct {
	QuestPos        token.Pos
	Cond, Then, Else ArithExpr
}

func (t *ArithTernary) Pos() token.Pos { return t.Cond.Pos() }
func (t *ArithTernary) End() token.Pos { return t.Else.End() }
func (*ArithTernary) arithNode()       {}

// ArithWord wraps a literal number, a bare variable name that should be
// re-evaluated dynamically, or a based-number literal (B#digits).
type ArithWord struct {
	ValuePos token.Pos
	Value    string
}

func (w *ArithWord) Pos() token.Pos { return w.ValuePos }
func (w *ArithWord) End() token.Pos { return w.ValuePos + token.Pos(len(w.Value)) }
func (*ArithWord) arithNode()       {}

// ArithParamExp allows a full parameter expansion (e.g. ${arr[i]}) to
// appear inside an arithmetic expression.
type ArithParamExp struct {
	X *ParamExp
}

func (p *ArithParamExp) Pos() token.Pos { return p.X.Pos() }
func (p *ArithParamExp) End() token.Pos { return p.X.End() }
func (*ArithParamExp) arithNode()       {}

// ArithGroup is a parenthesized sub-expression, kept so printers/trace
// can preserve the source grouping.
type ArithGroup struct {
	Lparen, Rparen token.Pos
	X              ArithExpr
}

func (g *ArithGroup) Pos() token.Pos { return g.Lparen }
func (g *ArithGroup) End() token.Pos { return g.Rparen + 1 }
func (*ArithGroup) arithNode()       {}

// ArithComma is the comma operator, `a, b`: evaluates a, discards it,
// evaluates and returns b.
type ArithComma struct {
	X, Y ArithExpr
}

func (c *ArithComma) Pos() token.Pos { return c.X.Pos() }
func (c *ArithComma) End() token.Pos { return c.Y.End() }
func (*ArithComma) arithNode()       {}
