package ast

import "github.com/everruns/bashkit-sub001/token"

// CondExpr is any node of a `[[ ]]` conditional expression. Unlike a
// Simple command, the operands here are never word-split or globbed.
type CondExpr interface {
	Node
	condNode()
}

// CondWord is a single operand word (used by unary tests and as the
// left side of a binary test).
type CondWord struct {
	X Word
}

func (w *CondWord) Pos() token.Pos { return w.X.Pos() }
func (w *CondWord) End() token.Pos { return w.X.End() }
func (*CondWord) condNode()        {}

// CondUnary is a unary test, e.g. `-f path`, `-z str`, `-n str`.
type CondUnary struct {
	OpPos token.Pos
	Op    token.Kind
	X     Word
}

func (u *CondUnary) Pos() token.Pos { return u.OpPos }
func (u *CondUnary) End() token.Pos { return u.X.End() }
func (*CondUnary) condNode()        {}

// CondBinary is a binary test: string/pattern (`=`, `==`, `!=`, `<`,
// `>`), regex (`=~`), arithmetic-comparison (`-eq` etc.), or file (`-ef`,
// `-nt`, `-ot`).
type CondBinary struct {
	OpPos token.Pos
	Op    token.Kind
	X, Y  Word
}

func (b *CondBinary) Pos() token.Pos { return b.X.Pos() }
func (b *CondBinary) End() token.Pos { return b.Y.End() }
func (*CondBinary) condNode()        {}

// CondNot is `! expr`.
type CondNot struct {
	BangPos token.Pos
	X       CondExpr
}

func (n *CondNot) Pos() token.Pos { return n.BangPos }
func (n *CondNot) End() token.Pos { return n.X.End() }
func (*CondNot) condNode()        {}

// CondAndOr is `expr && expr` / `expr || expr`.
type CondAndOr struct {
	Op   token.Kind // LAND or LOR
	X, Y CondExpr
}

func (a *CondAndOr) Pos() token.Pos { return a.X.Pos() }
func (a *CondAndOr) End() token.Pos { return a.Y.End() }
func (*CondAndOr) condNode()        {}

// CondGroup is a parenthesized sub-expression, `( expr )`.
type CondGroup struct {
	Lparen, Rparen token.Pos
	X              CondExpr
}

func (g *CondGroup) Pos() token.Pos { return g.Lparen }
func (g *CondGroup) End() token.Pos { return g.Rparen + 1 }
func (*CondGroup) condNode()        {}
