package ast

import "github.com/everruns/bashkit-sub001/token"

// Word is a sequence of contiguous WordParts, delimited by word
// boundaries (whitespace, or an unquoted operator).
type Word struct {
	Parts []WordPart
}

func (w Word) Pos() token.Pos {
	if len(w.Parts) == 0 {
		return 0
	}
	return w.Parts[0].Pos()
}
func (w Word) End() token.Pos {
	if len(w.Parts) == 0 {
		return 0
	}
	return w.Parts[len(w.Parts)-1].End()
}

// Lit is a bare identifier, used for names (variable names, function
// names, for-loop iteration variables) that are never themselves
// subject to expansion.
type Lit struct {
	ValuePos token.Pos
	Value    string
}

func (l Lit) Pos() token.Pos { return l.ValuePos }
func (l Lit) End() token.Pos { return l.ValuePos + token.Pos(len(l.Value)) }

// WordPart is one constituent of a Word.
type WordPart interface {
	Node
	wordPartNode()
}

// Literal is an unquoted run of characters with no further expansion
// other than pathname/brace expansion at the word level.
type Literal struct {
	ValuePos token.Pos
	Value    string
}

func (l *Literal) Pos() token.Pos   { return l.ValuePos }
func (l *Literal) End() token.Pos   { return l.ValuePos + token.Pos(len(l.Value)) }
func (*Literal) wordPartNode()      {}

// SingleQuoted is the literal text inside '...'; nothing inside is
// special.
type SingleQuoted struct {
	Position token.Pos
	Value    string
}

func (q *SingleQuoted) Pos() token.Pos { return q.Position }
func (q *SingleQuoted) End() token.Pos { return q.Position + token.Pos(len(q.Value)) + 2 }
func (*SingleQuoted) wordPartNode()    {}

// DoubleQuoted is a list of parts inside "..."; only $, `, \, and the
// closing " are special within it.
type DoubleQuoted struct {
	Position token.Pos
	Parts    []WordPart
}

func (q *DoubleQuoted) Pos() token.Pos { return q.Position }
func (q *DoubleQuoted) End() token.Pos {
	if len(q.Parts) == 0 {
		return q.Position + 2
	}
	return q.Parts[len(q.Parts)-1].End() + 1
}
func (*DoubleQuoted) wordPartNode() {}

// DollarSingle is $'...' with C-style escapes already decoded into
// Value; Escaped records whether the source contained at least one
// backslash escape (so re-emission/tracing can tell a plain $'lit'
// apart from one requiring the dollar-quote form).
type DollarSingle struct {
	Position token.Pos
	Value    string
	Escaped  bool
}

func (d *DollarSingle) Pos() token.Pos { return d.Position }
func (d *DollarSingle) End() token.Pos { return d.Position + token.Pos(len(d.Value)) + 3 }
func (*DollarSingle) wordPartNode()    {}

// ParamExp is a parameter expansion, `$name`/`${...}` in all its forms.
type ParamExp struct {
	Dollar, Rbrace token.Pos
	Short          bool // true for bare $name, false for ${...}
	Length         bool // ${#name}
	Indirect       bool // ${!name}
	NameList       NameListKind
	Param          string // variable or special-parameter name
	Index          *Word  // array subscript, nil if scalar / no subscript
	Slice          *Slice
	Repl           *Replace
	Exp            *Expansion
	Transform      byte // one of 0, 'Q','U','u','L','A' for ${x@op}
}

func (p *ParamExp) Pos() token.Pos { return p.Dollar }
func (p *ParamExp) End() token.Pos {
	if p.Rbrace > 0 {
		return p.Rbrace + 1
	}
	return p.Dollar + 1 + token.Pos(len(p.Param))
}
func (*ParamExp) wordPartNode() {}

// NameListKind distinguishes the two ${!prefix*}/${!prefix@} forms.
type NameListKind int

const (
	NameListNone NameListKind = iota
	NameListStar              // ${!prefix*}
	NameListAt                // ${!prefix@}
)

// Slice is the ${x:offset:length} substring form; Length may be nil.
type Slice struct {
	Offset ArithExpr
	Length ArithExpr
}

// Replace is the ${x/pat/repl} family.
type Replace struct {
	Orig   Word
	With   Word
	All    bool // // form
	AtFront bool // /# form
	AtBack  bool // /% form
}

// ExpOperator enumerates the default/alternate/error/assign and
// prefix/suffix-removal and case-change operators of ${x<op>word}.
type ExpOperator int

const (
	ExpNone ExpOperator = iota
	DefaultUnset           // :-
	DefaultUnsetOrNull     // -
	AssignUnset            // :=
	AssignUnsetOrNull      // =
	AlternateUnset         // :+
	AlternateUnsetOrNull   // +
	ErrorUnset             // :?
	ErrorUnsetOrNull       // ?
	RemSmallestPrefix      // #
	RemLargestPrefix       // ##
	RemSmallestSuffix      // %
	RemLargestSuffix       // %%
	UpperFirst             // ^
	UpperAll               // ^^
	LowerFirst             // ,
	LowerAll               // ,,
)

type Expansion struct {
	Op   ExpOperator
	Word Word
}

// CmdSub is $(...) or `...`; Backtick records the original spelling.
type CmdSub struct {
	Left, Right token.Pos
	Backtick    bool
	Body        *List
}

func (c *CmdSub) Pos() token.Pos { return c.Left }
func (c *CmdSub) End() token.Pos { return c.Right + 1 }
func (*CmdSub) wordPartNode()    {}

// ArithSub is $((expr)).
type ArithSub struct {
	Left, Right token.Pos
	X           ArithExpr
}

func (a *ArithSub) Pos() token.Pos { return a.Left }
func (a *ArithSub) End() token.Pos { return a.Right + 2 }
func (*ArithSub) wordPartNode()    {}

// ProcDir is the direction of a ProcSub.
type ProcDir byte

const (
	ProcIn  ProcDir = '<' // <(cmd)
	ProcOut ProcDir = '>' // >(cmd)
)

// ProcSub is process substitution, <(cmd) or >(cmd).
type ProcSub struct {
	OpPos, Rparen token.Pos
	Dir           ProcDir
	Body          *List
}

func (p *ProcSub) Pos() token.Pos { return p.OpPos }
func (p *ProcSub) End() token.Pos { return p.Rparen + 1 }
func (*ProcSub) wordPartNode()    {}

// Brace is {alt1,alt2,...} / {N..M[..S]}, not yet expanded.
type Brace struct {
	Lbrace, Rbrace token.Pos
	Alts           []Word // for the comma-list form; nil when Sequence != nil
	Sequence       *BraceSequence
}

func (b *Brace) Pos() token.Pos { return b.Lbrace }
func (b *Brace) End() token.Pos { return b.Rbrace + 1 }
func (*Brace) wordPartNode()    {}

// BraceSequence is the {N..M[..S]} numeric/alpha range form.
type BraceSequence struct {
	Start, End string
	Step       string // "" means unspecified (defaults to 1 or -1)
}

// Tilde is a leading ~, ~/…, or ~user/… at word start.
type Tilde struct {
	Position token.Pos
	User     string // "" means the invoking user (HOME)
}

func (t *Tilde) Pos() token.Pos { return t.Position }
func (t *Tilde) End() token.Pos { return t.Position + 1 + token.Pos(len(t.User)) }
func (*Tilde) wordPartNode()    {}
