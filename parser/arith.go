package parser

import "github.com/everruns/bashkit-sub001/ast"
import "github.com/everruns/bashkit-sub001/lexer"
import "github.com/everruns/bashkit-sub001/token"

// parseArith parses a full `(( ))`/`$(( ))` arithmetic expression,
// comma being the lowest-precedence operator, following the usual C
// precedence table (spec.md §4.E).
func (p *parser) parseArith() (ast.ArithExpr, error) {
	return p.parseArithComma()
}

// ParseArith parses src as a standalone arithmetic expression. It is
// the entry point expand's array-subscript evaluation and interp's `[[ ]]`
// integer comparisons (-eq and the like) use when they need to parse text
// that came out of word
// expansion (e.g. an `arr[$i+1]` subscript after `$i` was substituted)
// rather than text still embedded in the original script.
func ParseArith(src []byte) (ast.ArithExpr, error) {
	p := &parser{sc: lexer.NewScanner(src), src: src}
	x, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	p.arithSkip()
	if !p.sc.Eof() {
		return nil, p.errorf("unexpected input in arithmetic expression")
	}
	return x, nil
}

func (p *parser) arithSkip() {
	for isBlank(p.sc.Peek(0)) || p.sc.Peek(0) == '\n' {
		p.sc.Advance()
	}
}

func (p *parser) matchOp(s string) bool {
	for i := 0; i < len(s); i++ {
		if p.sc.Peek(i) != s[i] {
			return false
		}
	}
	for i := 0; i < len(s); i++ {
		p.sc.Advance()
	}
	return true
}

func (p *parser) peekOp(s string) bool {
	for i := 0; i < len(s); i++ {
		if p.sc.Peek(i) != s[i] {
			return false
		}
	}
	return true
}

func (p *parser) parseArithComma() (ast.ArithExpr, error) {
	left, err := p.parseArithAssign()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		if p.sc.Peek(0) == ',' {
			p.sc.Advance()
			right, err := p.parseArithAssign()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithComma{X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

var arithAssignOps = []struct {
	text string
	kind token.Kind
}{
	{"<<=", token.SHLASS}, {">>=", token.SHRASS},
	{"+=", token.ADDASS}, {"-=", token.SUBASS}, {"*=", token.MULASS},
	{"/=", token.QUOASS}, {"%=", token.REMASS}, {"&=", token.ANDASS},
	{"|=", token.ORASS}, {"^=", token.XORASS},
}

func (p *parser) parseArithAssign() (ast.ArithExpr, error) {
	left, err := p.parseArithTernary()
	if err != nil {
		return nil, err
	}
	p.arithSkip()
	pos := p.sc.Pos()
	for _, a := range arithAssignOps {
		if p.peekOp(a.text) {
			p.matchOp(a.text)
			right, err := p.parseArithAssign()
			if err != nil {
				return nil, err
			}
			return &ast.ArithAssign{OpPos: pos, Op: a.kind, X: left, Y: right}, nil
		}
	}
	if p.sc.Peek(0) == '=' && p.sc.Peek(1) != '=' {
		p.sc.Advance()
		right, err := p.parseArithAssign()
		if err != nil {
			return nil, err
		}
		return &ast.ArithAssign{OpPos: pos, Op: token.ASSGN, X: left, Y: right}, nil
	}
	return left, nil
}

func (p *parser) parseArithTernary() (ast.ArithExpr, error) {
	cond, err := p.parseArithLogicalOr()
	if err != nil {
		return nil, err
	}
	p.arithSkip()
	if p.sc.Peek(0) == '?' {
		pos := p.sc.Pos()
		p.sc.Advance()
		then, err := p.parseArithAssign()
		if err != nil {
			return nil, err
		}
		p.arithSkip()
		if p.sc.Peek(0) != ':' {
			return nil, p.errorf("expected : in ternary arithmetic expression")
		}
		p.sc.Advance()
		els, err := p.parseArithAssign()
		if err != nil {
			return nil, err
		}
		return &ast.ArithTernary{QuestPos: pos, Cond: cond, Then: then, Else: els}, nil
	}
	return cond, nil
}

func (p *parser) parseArithLogicalOr() (ast.ArithExpr, error) {
	left, err := p.parseArithLogicalAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		if p.peekOp("||") {
			pos := p.sc.Pos()
			p.matchOp("||")
			right, err := p.parseArithLogicalAnd()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.LOR, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithLogicalAnd() (ast.ArithExpr, error) {
	left, err := p.parseArithBitOr()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		if p.peekOp("&&") {
			pos := p.sc.Pos()
			p.matchOp("&&")
			right, err := p.parseArithBitOr()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.LAND, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithBitOr() (ast.ArithExpr, error) {
	left, err := p.parseArithBitXor()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		if p.sc.Peek(0) == '|' && p.sc.Peek(1) != '|' {
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithBitXor()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.BWOR, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithBitXor() (ast.ArithExpr, error) {
	left, err := p.parseArithBitAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		if p.sc.Peek(0) == '^' {
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithBitAnd()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.BWXOR, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithBitAnd() (ast.ArithExpr, error) {
	left, err := p.parseArithEquality()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		if p.sc.Peek(0) == '&' && p.sc.Peek(1) != '&' {
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithEquality()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.BWAND, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithEquality() (ast.ArithExpr, error) {
	left, err := p.parseArithRelational()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		switch {
		case p.peekOp("=="):
			pos := p.sc.Pos()
			p.matchOp("==")
			right, err := p.parseArithRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.EQL, X: left, Y: right}
			continue
		case p.peekOp("!="):
			pos := p.sc.Pos()
			p.matchOp("!=")
			right, err := p.parseArithRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.NEQ, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithRelational() (ast.ArithExpr, error) {
	left, err := p.parseArithShift()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		switch {
		case p.peekOp("<="):
			pos := p.sc.Pos()
			p.matchOp("<=")
			right, err := p.parseArithShift()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.LEQ, X: left, Y: right}
			continue
		case p.peekOp(">="):
			pos := p.sc.Pos()
			p.matchOp(">=")
			right, err := p.parseArithShift()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.GEQ, X: left, Y: right}
			continue
		case p.sc.Peek(0) == '<' && p.sc.Peek(1) != '<':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithShift()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.LSS2, X: left, Y: right}
			continue
		case p.sc.Peek(0) == '>' && p.sc.Peek(1) != '>':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithShift()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.GTR2, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithShift() (ast.ArithExpr, error) {
	left, err := p.parseArithAdditive()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		switch {
		case p.peekOp("<<"):
			pos := p.sc.Pos()
			p.matchOp("<<")
			right, err := p.parseArithAdditive()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.SHL2, X: left, Y: right}
			continue
		case p.peekOp(">>"):
			pos := p.sc.Pos()
			p.matchOp(">>")
			right, err := p.parseArithAdditive()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.SHR2, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithAdditive() (ast.ArithExpr, error) {
	left, err := p.parseArithMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		switch {
		case p.sc.Peek(0) == '+' && p.sc.Peek(1) != '+':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithMultiplicative()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.ADD, X: left, Y: right}
			continue
		case p.sc.Peek(0) == '-' && p.sc.Peek(1) != '-':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithMultiplicative()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.SUB, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithMultiplicative() (ast.ArithExpr, error) {
	left, err := p.parseArithPower()
	if err != nil {
		return nil, err
	}
	for {
		p.arithSkip()
		switch {
		case p.sc.Peek(0) == '*' && p.sc.Peek(1) != '*':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithPower()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.MUL, X: left, Y: right}
			continue
		case p.sc.Peek(0) == '/':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithPower()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.QUO, X: left, Y: right}
			continue
		case p.sc.Peek(0) == '%':
			pos := p.sc.Pos()
			p.sc.Advance()
			right, err := p.parseArithPower()
			if err != nil {
				return nil, err
			}
			left = &ast.ArithBinary{OpPos: pos, Op: token.REM, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseArithPower() (ast.ArithExpr, error) {
	left, err := p.parseArithUnary()
	if err != nil {
		return nil, err
	}
	p.arithSkip()
	if p.peekOp("**") {
		pos := p.sc.Pos()
		p.matchOp("**")
		right, err := p.parseArithPower() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.ArithBinary{OpPos: pos, Op: token.POW, X: left, Y: right}, nil
	}
	return left, nil
}

func (p *parser) parseArithUnary() (ast.ArithExpr, error) {
	p.arithSkip()
	pos := p.sc.Pos()
	switch {
	case p.peekOp("++"):
		p.matchOp("++")
		x, err := p.parseArithUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: pos, Op: token.INCR, X: x}, nil
	case p.peekOp("--"):
		p.matchOp("--")
		x, err := p.parseArithUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: pos, Op: token.DECR, X: x}, nil
	case p.sc.Peek(0) == '!':
		p.sc.Advance()
		x, err := p.parseArithUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: pos, Op: token.NOT, X: x}, nil
	case p.sc.Peek(0) == '~':
		p.sc.Advance()
		x, err := p.parseArithUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: pos, Op: token.BWNOT, X: x}, nil
	case p.sc.Peek(0) == '-':
		p.sc.Advance()
		x, err := p.parseArithUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: pos, Op: token.SUB, X: x}, nil
	case p.sc.Peek(0) == '+':
		p.sc.Advance()
		x, err := p.parseArithUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: pos, Op: token.ADD, X: x}, nil
	}
	return p.parseArithPostfix()
}

func (p *parser) parseArithPostfix() (ast.ArithExpr, error) {
	x, err := p.parseArithPrimary()
	if err != nil {
		return nil, err
	}
	p.arithSkip()
	pos := p.sc.Pos()
	if p.peekOp("++") {
		p.matchOp("++")
		return &ast.ArithUnary{OpPos: pos, Op: token.INCR, X: x, Postfix: true}, nil
	}
	if p.peekOp("--") {
		p.matchOp("--")
		return &ast.ArithUnary{OpPos: pos, Op: token.DECR, X: x, Postfix: true}, nil
	}
	return x, nil
}

func (p *parser) parseArithPrimary() (ast.ArithExpr, error) {
	p.arithSkip()
	pos := p.sc.Pos()
	switch {
	case p.sc.Peek(0) == '(':
		p.sc.Advance()
		x, err := p.parseArithComma()
		if err != nil {
			return nil, err
		}
		p.arithSkip()
		if p.sc.Peek(0) != ')' {
			return nil, p.errorf("expected ) in arithmetic expression")
		}
		rp := p.sc.Pos()
		p.sc.Advance()
		return &ast.ArithGroup{Lparen: pos, Rparen: rp, X: x}, nil
	case p.sc.Peek(0) == '$':
		part, ok, err := p.readWordPart(false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, p.errorf("expected expression")
		}
		switch v := part.(type) {
		case *ast.ParamExp:
			return &ast.ArithParamExp{X: v}, nil
		case *ast.ArithSub:
			return v, nil
		default:
			return nil, p.errorf("unsupported expansion in arithmetic context")
		}
	case isNameStart(p.sc.Peek(0)):
		from := p.sc.Mark()
		for isNameByte(p.sc.Peek(0)) {
			p.sc.Advance()
		}
		return &ast.ArithWord{ValuePos: pos, Value: p.sc.Slice(from, p.sc.Mark())}, nil
	case isDigit(p.sc.Peek(0)) || p.sc.Peek(0) == '.':
		from := p.sc.Mark()
		for isNameByte(p.sc.Peek(0)) || p.sc.Peek(0) == '.' || p.sc.Peek(0) == '#' {
			p.sc.Advance()
		}
		return &ast.ArithWord{ValuePos: pos, Value: p.sc.Slice(from, p.sc.Mark())}, nil
	default:
		return nil, p.errorf("unexpected character in arithmetic expression")
	}
}
