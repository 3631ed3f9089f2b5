package parser

import (
	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/token"
)

var condUnaryOps = map[string]token.Kind{
	"-a": token.TESTE, "-e": token.TESTE, "-f": token.TESTF, "-d": token.TESTD,
	"-r": token.TESTR, "-w": token.TESTW, "-x": token.TESTX, "-s": token.TESTS,
	"-L": token.TESTL, "-h": token.TESTL, "-z": token.TESTZ, "-n": token.TESTN,
	"-p": token.TESTP, "-b": token.TESTB, "-c": token.TESTC, "-g": token.TESTG,
	"-u": token.TESTU, "-k": token.TESTK, "-o": token.TESTO, "-v": token.TESTV,
}

var condBinaryOps = map[string]token.Kind{
	"-eq": token.TESTEQI, "-ne": token.TESTNEI, "-lt": token.TESTLTI,
	"-le": token.TESTLEI, "-gt": token.TESTGTI, "-ge": token.TESTGEI,
	"-nt": token.TESTNT, "-ot": token.TESTOT, "-ef": token.TESTEF,
}

// parseConditionalExpr parses the body of `[[ ... ]]`.
func (p *parser) parseConditionalExpr() (ast.CondExpr, error) {
	return p.parseCondOr()
}

func (p *parser) parseCondOr() (ast.CondExpr, error) {
	left, err := p.parseCondAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.skipBlankAndSeps()
		if p.sc.Peek(0) == '|' && p.sc.Peek(1) == '|' {
			p.sc.Advance()
			p.sc.Advance()
			p.skipBlankAndSeps()
			right, err := p.parseCondAnd()
			if err != nil {
				return nil, err
			}
			left = &ast.CondAndOr{Op: token.LOR, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseCondAnd() (ast.CondExpr, error) {
	left, err := p.parseCondNot()
	if err != nil {
		return nil, err
	}
	for {
		p.skipBlankAndSeps()
		if p.sc.Peek(0) == '&' && p.sc.Peek(1) == '&' {
			p.sc.Advance()
			p.sc.Advance()
			p.skipBlankAndSeps()
			right, err := p.parseCondNot()
			if err != nil {
				return nil, err
			}
			left = &ast.CondAndOr{Op: token.LAND, X: left, Y: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseCondNot() (ast.CondExpr, error) {
	p.skipBlanks()
	if p.sc.Peek(0) == '!' && isWordBoundary(p.sc.Peek(1)) {
		pos := p.sc.Pos()
		p.sc.Advance()
		p.skipBlanks()
		x, err := p.parseCondNot()
		if err != nil {
			return nil, err
		}
		return &ast.CondNot{BangPos: pos, X: x}, nil
	}
	return p.parseCondPrimary()
}

func (p *parser) parseCondPrimary() (ast.CondExpr, error) {
	p.skipBlanks()
	if p.sc.Peek(0) == '(' {
		lp := p.sc.Pos()
		p.sc.Advance()
		x, err := p.parseCondOr()
		if err != nil {
			return nil, err
		}
		p.skipBlankAndSeps()
		if p.sc.Peek(0) != ')' {
			return nil, p.errorf("expected ) in conditional expression")
		}
		rp := p.sc.Pos()
		p.sc.Advance()
		return &ast.CondGroup{Lparen: lp, Rparen: rp, X: x}, nil
	}
	if op, opPos, ok := p.tryCondUnaryOp(); ok {
		p.skipBlanks()
		w, ok2, err := p.readWord(false)
		if err != nil {
			return nil, err
		}
		if !ok2 {
			return nil, p.errorf("expected word after unary test operator")
		}
		return &ast.CondUnary{OpPos: opPos, Op: op, X: *w}, nil
	}
	left, ok, err := p.readWord(false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.errorf("expected word in conditional expression")
	}
	p.skipBlanks()
	if op, opPos, ok := p.tryCondBinaryOp(); ok {
		p.skipBlanks()
		right, ok2, err := p.readWord(false)
		if err != nil {
			return nil, err
		}
		if !ok2 {
			return nil, p.errorf("expected word after binary test operator")
		}
		return &ast.CondBinary{OpPos: opPos, Op: op, X: *left, Y: *right}, nil
	}
	return &ast.CondWord{X: *left}, nil
}

func (p *parser) tryCondUnaryOp() (token.Kind, token.Pos, bool) {
	save := *p.sc
	pos := p.sc.Pos()
	if p.sc.Peek(0) != '-' {
		return 0, 0, false
	}
	from := p.sc.Mark()
	p.sc.Advance()
	if !isNameByte(p.sc.Peek(0)) {
		*p.sc = save
		return 0, 0, false
	}
	p.sc.Advance()
	text := p.sc.Slice(from, p.sc.Mark())
	if !isWordBoundary(p.sc.Peek(0)) {
		*p.sc = save
		return 0, 0, false
	}
	if k, ok := condUnaryOps[text]; ok {
		return k, pos, true
	}
	*p.sc = save
	return 0, 0, false
}

func (p *parser) tryCondBinaryOp() (token.Kind, token.Pos, bool) {
	save := *p.sc
	pos := p.sc.Pos()
	from := p.sc.Mark()
	switch {
	case p.sc.Peek(0) == '=' && p.sc.Peek(1) == '~':
		p.sc.Advance()
		p.sc.Advance()
		return token.TESTREGEX, pos, true
	case p.sc.Peek(0) == '=' && p.sc.Peek(1) == '=':
		p.sc.Advance()
		p.sc.Advance()
		return token.TESTEQ, pos, true
	case p.sc.Peek(0) == '!' && p.sc.Peek(1) == '=':
		p.sc.Advance()
		p.sc.Advance()
		return token.TESTNE, pos, true
	case p.sc.Peek(0) == '=':
		p.sc.Advance()
		return token.TESTEQ, pos, true
	case p.sc.Peek(0) == '<':
		p.sc.Advance()
		return token.TESTLT, pos, true
	case p.sc.Peek(0) == '>':
		p.sc.Advance()
		return token.TESTGT, pos, true
	case p.sc.Peek(0) == '-' && isNameByte(p.sc.Peek(1)):
		p.sc.Advance()
		for isNameByte(p.sc.Peek(0)) {
			p.sc.Advance()
		}
		text := p.sc.Slice(from, p.sc.Mark())
		if k, ok := condBinaryOps[text]; ok && isWordBoundary(p.sc.Peek(0)) {
			return k, pos, true
		}
		*p.sc = save
		return 0, 0, false
	}
	return 0, 0, false
}
