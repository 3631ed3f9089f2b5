package parser

import (
	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/lexer"
)

// parseSubList parses the body of a $(...), <(...), or >(...) construct:
// a full statement list, stopping at (but not consuming) the unquoted
// close byte the caller expects.
func (p *parser) parseSubList(closeByte byte) (*ast.List, error) {
	return p.parseListUntil(closeByte)
}

// readParamExp parses one `${...}` form, starting with the scanner
// positioned at the `$`.
func (p *parser) readParamExp() (ast.WordPart, bool, error) {
	dollar := p.sc.Pos()
	p.sc.Advance() // $
	p.sc.Advance() // {
	pe := &ast.ParamExp{Dollar: dollar}

	if p.sc.Peek(0) == '#' && p.sc.Peek(1) != '}' {
		p.sc.Advance()
		pe.Length = true
	} else if p.sc.Peek(0) == '!' {
		p.sc.Advance()
		pe.Indirect = true
	}

	name, ok := p.readParamName()
	if !ok {
		return nil, false, p.errorf("bad substitution")
	}
	pe.Param = name

	if pe.Indirect {
		if p.sc.Peek(0) == '*' && p.sc.Peek(1) == '}' {
			pe.NameList = ast.NameListStar
			p.sc.Advance()
			pe.Rbrace = p.sc.Pos()
			p.sc.Advance()
			return pe, true, nil
		}
		if p.sc.Peek(0) == '@' && p.sc.Peek(1) == '}' {
			pe.NameList = ast.NameListAt
			p.sc.Advance()
			pe.Rbrace = p.sc.Pos()
			p.sc.Advance()
			return pe, true, nil
		}
	}

	if p.sc.Peek(0) == '[' {
		p.sc.Advance()
		idx, err := p.readBraceWord(']')
		if err != nil {
			return nil, false, err
		}
		pe.Index = idx
		if p.sc.Peek(0) != ']' {
			return nil, false, p.errorf("expected ] in parameter expansion")
		}
		p.sc.Advance()
	}

	if p.sc.Peek(0) == '}' {
		pe.Rbrace = p.sc.Pos()
		p.sc.Advance()
		return pe, true, nil
	}
	if pe.Length {
		return nil, false, p.errorf("unexpected characters after ${#%s", name)
	}

	switch p.sc.Peek(0) {
	case ':':
		p.sc.Advance()
		switch p.sc.Peek(0) {
		case '-', '=', '?', '+':
			op := p.sc.Peek(0)
			p.sc.Advance()
			w, err := p.readBraceWord('}')
			if err != nil {
				return nil, false, err
			}
			pe.Exp = &ast.Expansion{Op: colonOp(op), Word: *w}
		default:
			off, err := p.readArithUntil(':', '}')
			if err != nil {
				return nil, false, err
			}
			sl := &ast.Slice{Offset: off}
			if p.sc.Peek(0) == ':' {
				p.sc.Advance()
				length, err := p.readArithUntil('}')
				if err != nil {
					return nil, false, err
				}
				sl.Length = length
			}
			pe.Slice = sl
		}
	case '-', '=', '?', '+':
		op := p.sc.Peek(0)
		p.sc.Advance()
		w, err := p.readBraceWord('}')
		if err != nil {
			return nil, false, err
		}
		pe.Exp = &ast.Expansion{Op: bareOp(op), Word: *w}
	case '#':
		p.sc.Advance()
		op := ast.RemSmallestPrefix
		if p.sc.Peek(0) == '#' {
			p.sc.Advance()
			op = ast.RemLargestPrefix
		}
		w, err := p.readBraceWord('}')
		if err != nil {
			return nil, false, err
		}
		pe.Exp = &ast.Expansion{Op: op, Word: *w}
	case '%':
		p.sc.Advance()
		op := ast.RemSmallestSuffix
		if p.sc.Peek(0) == '%' {
			p.sc.Advance()
			op = ast.RemLargestSuffix
		}
		w, err := p.readBraceWord('}')
		if err != nil {
			return nil, false, err
		}
		pe.Exp = &ast.Expansion{Op: op, Word: *w}
	case '/':
		p.sc.Advance()
		repl := &ast.Replace{}
		switch p.sc.Peek(0) {
		case '/':
			repl.All = true
			p.sc.Advance()
		case '#':
			repl.AtFront = true
			p.sc.Advance()
		case '%':
			repl.AtBack = true
			p.sc.Advance()
		}
		origW, err := p.readBraceWord('/', '}')
		if err != nil {
			return nil, false, err
		}
		repl.Orig = *origW
		if p.sc.Peek(0) == '/' {
			p.sc.Advance()
			withW, err := p.readBraceWord('}')
			if err != nil {
				return nil, false, err
			}
			repl.With = *withW
		}
		pe.Repl = repl
	case '^', ',':
		first := p.sc.Peek(0)
		p.sc.Advance()
		double := false
		if p.sc.Peek(0) == first {
			double = true
			p.sc.Advance()
		}
		switch {
		case first == '^' && !double:
			pe.Exp = &ast.Expansion{Op: ast.UpperFirst}
		case first == '^' && double:
			pe.Exp = &ast.Expansion{Op: ast.UpperAll}
		case first == ',' && !double:
			pe.Exp = &ast.Expansion{Op: ast.LowerFirst}
		default:
			pe.Exp = &ast.Expansion{Op: ast.LowerAll}
		}
	case '@':
		p.sc.Advance()
		if c := p.sc.Peek(0); c != 0 {
			pe.Transform = c
			p.sc.Advance()
		}
	}

	if p.sc.Peek(0) != '}' {
		return nil, false, p.errorf("expected } to close parameter expansion")
	}
	pe.Rbrace = p.sc.Pos()
	p.sc.Advance()
	return pe, true, nil
}

func colonOp(op byte) ast.ExpOperator {
	switch op {
	case '-':
		return ast.DefaultUnset
	case '=':
		return ast.AssignUnset
	case '?':
		return ast.ErrorUnset
	case '+':
		return ast.AlternateUnset
	}
	return ast.ExpNone
}

func bareOp(op byte) ast.ExpOperator {
	switch op {
	case '-':
		return ast.DefaultUnsetOrNull
	case '=':
		return ast.AssignUnsetOrNull
	case '?':
		return ast.ErrorUnsetOrNull
	case '+':
		return ast.AlternateUnsetOrNull
	}
	return ast.ExpNone
}

func (p *parser) readParamName() (string, bool) {
	b := p.sc.Peek(0)
	if isNameStart(b) {
		from := p.sc.Mark()
		for isNameByte(p.sc.Peek(0)) {
			p.sc.Advance()
		}
		return p.sc.Slice(from, p.sc.Mark()), true
	}
	if b >= '0' && b <= '9' {
		from := p.sc.Mark()
		for p.sc.Peek(0) >= '0' && p.sc.Peek(0) <= '9' {
			p.sc.Advance()
		}
		return p.sc.Slice(from, p.sc.Mark()), true
	}
	if isSpecialParam(b) {
		p.sc.Advance()
		return string(b), true
	}
	return "", false
}

// readBraceWord reads a Word inside `${...}`, stopping (without
// consuming) at the first unquoted occurrence of any byte in stops.
func (p *parser) readBraceWord(stops ...byte) (*ast.Word, error) {
	w := &ast.Word{}
	for {
		if p.sc.Eof() {
			return nil, p.errorf("unterminated parameter expansion")
		}
		if matchesAny(p.sc.Peek(0), stops) {
			break
		}
		part, ok, err := p.readWordPartStops(stops)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		w.Parts = append(w.Parts, part)
	}
	return w, nil
}

func matchesAny(b byte, set []byte) bool {
	for _, s := range set {
		if b == s {
			return true
		}
	}
	return false
}

func (p *parser) readWordPartStops(stops []byte) (ast.WordPart, bool, error) {
	p.sc.SkipLineContinuations()
	start := p.sc.Pos()
	b := p.sc.Peek(0)
	switch {
	case b == 0:
		return nil, false, nil
	case b == '\'':
		return p.readSingleQuoted()
	case b == '"':
		return p.readDoubleQuoted()
	case b == '\\':
		p.sc.Advance()
		c := p.sc.AdvanceRune()
		return &ast.SingleQuoted{Position: start, Value: string(c)}, true, nil
	case b == '$':
		return p.readDollar()
	case b == '`':
		return p.readBacktick()
	default:
		from := p.sc.Mark()
		startPos := p.sc.Pos()
		for {
			c := p.sc.Peek(0)
			if c == 0 || c == '\'' || c == '"' || c == '\\' || c == '$' || c == '`' || matchesAny(c, stops) {
				break
			}
			p.sc.Advance()
		}
		if p.sc.Mark() == from {
			return nil, false, nil
		}
		return &ast.Literal{ValuePos: startPos, Value: p.sc.Slice(from, p.sc.Mark())}, true, nil
	}
}

// readArithUntil reads raw text up to (not crossing unbalanced parens)
// the first of the given stop bytes, then parses it as a standalone
// arithmetic expression. Used for ${x:off:len} where a literal ':' would
// otherwise be ambiguous with the ternary operator.
func (p *parser) readArithUntil(stops ...byte) (ast.ArithExpr, error) {
	from := p.sc.Mark()
	depth := 0
loop:
	for {
		if p.sc.Eof() {
			return nil, p.errorf("unterminated arithmetic in parameter expansion")
		}
		c := p.sc.Peek(0)
		if depth == 0 && matchesAny(c, stops) {
			break loop
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
		}
		p.sc.Advance()
	}
	src := p.sc.Slice(from, p.sc.Mark())
	sub := &parser{sc: lexer.NewScanner([]byte(src)), src: []byte(src), opts: p.opts}
	x, err := sub.parseArith()
	if err != nil {
		return nil, err
	}
	return x, nil
}
