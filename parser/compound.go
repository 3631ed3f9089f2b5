package parser

import (
	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/token"
)

// expectWord consumes a keyword already confirmed present by peekWord.
func (p *parser) expectWord(w string) {
	p.skipBlanks()
	for range w {
		p.sc.Advance()
	}
}

func (p *parser) parseIf() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("if")
	cond, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{IfPos: start, Cond: cond, Then: then}
	for {
		if w, ok := p.peekWord(); ok && w == "elif" {
			p.expectWord("elif")
			econd, err := p.parseListUntil(0)
			if err != nil {
				return nil, err
			}
			if err := p.expectKeyword("then"); err != nil {
				return nil, err
			}
			ethen, err := p.parseListUntil(0)
			if err != nil {
				return nil, err
			}
			stmt.Elifs = append(stmt.Elifs, &ast.Elif{Cond: econd, Then: ethen})
			continue
		}
		break
	}
	if w, ok := p.peekWord(); ok && w == "else" {
		p.expectWord("else")
		els, err := p.parseListUntil(0)
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	if err := p.expectKeyword("fi"); err != nil {
		return nil, err
	}
	stmt.FiPos = p.sc.Pos() - 2
	return stmt, nil
}

// expectKeyword consumes a required reserved word at the current
// position, erroring with the keyword name if it isn't there.
func (p *parser) expectKeyword(kw string) error {
	p.skipBlankAndSeps()
	w, ok := p.peekWord()
	if !ok || w != kw {
		return p.errorf("expected %q", kw)
	}
	p.expectWord(kw)
	return nil
}

func (p *parser) parseWhile() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("while")
	cond, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	return &ast.While{WhilePos: start, DonePos: p.sc.Pos() - 4, Cond: cond, Body: body}, nil
}

func (p *parser) parseUntil() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("until")
	cond, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	return &ast.Until{UntilPos: start, DonePos: p.sc.Pos() - 4, Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("for")
	p.skipBlanks()
	if p.sc.Peek(0) == '(' && p.sc.Peek(1) == '(' {
		return p.parseCStyleFor(start)
	}
	p.skipBlanks()
	nameStart := p.sc.Pos()
	from := p.sc.Mark()
	for isNameByte(p.sc.Peek(0)) {
		p.sc.Advance()
	}
	name := ast.Lit{ValuePos: nameStart, Value: p.sc.Slice(from, p.sc.Mark())}
	stmt := &ast.For{ForPos: start, Name: name}
	p.skipBlankAndSeps()
	if w, ok := p.peekWord(); ok && w == "in" {
		stmt.HasIn = true
		p.expectWord("in")
		for {
			p.skipBlanks()
			w, ok, err := p.readWord(false)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			stmt.Words = append(stmt.Words, *w)
		}
		sep, err := p.consumeSep()
		if err != nil {
			return nil, err
		}
		_ = sep
	} else {
		p.skipBlankOnly()
		if p.sc.Peek(0) == ';' {
			p.sc.Advance()
		}
	}
	p.skipBlankAndSeps()
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.DonePos = p.sc.Pos() - 4
	return stmt, nil
}

func (p *parser) parseCStyleFor(start token.Pos) (ast.Command, error) {
	p.sc.Advance()
	p.sc.Advance() // ((
	stmt := &ast.CStyleFor{ForPos: start}
	var err error
	p.arithSkip()
	if p.sc.Peek(0) != ';' {
		stmt.Init, err = p.parseArith()
		if err != nil {
			return nil, err
		}
	}
	p.arithSkip()
	if p.sc.Peek(0) != ';' {
		return nil, p.errorf("expected ; in C-style for")
	}
	p.sc.Advance()
	p.arithSkip()
	if p.sc.Peek(0) != ';' {
		stmt.Cond, err = p.parseArith()
		if err != nil {
			return nil, err
		}
	}
	p.arithSkip()
	if p.sc.Peek(0) != ';' {
		return nil, p.errorf("expected ; in C-style for")
	}
	p.sc.Advance()
	p.arithSkip()
	if !(p.sc.Peek(0) == ')' && p.sc.Peek(1) == ')') {
		stmt.Post, err = p.parseArith()
		if err != nil {
			return nil, err
		}
	}
	p.arithSkip()
	if !(p.sc.Peek(0) == ')' && p.sc.Peek(1) == ')') {
		return nil, p.errorf("expected )) to close C-style for")
	}
	p.sc.Advance()
	p.sc.Advance()
	p.skipBlankAndSeps()
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.DonePos = p.sc.Pos() - 4
	return stmt, nil
}

func (p *parser) parseCase() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("case")
	p.skipBlanks()
	w, ok, err := p.readWord(false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.errorf("expected word after case")
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	stmt := &ast.Case{CasePos: start, Word: *w}
	p.skipBlankAndSeps()
	for {
		if wd, ok := p.peekWord(); ok && wd == "esac" {
			break
		}
		if p.sc.Eof() {
			return nil, p.errorf("unterminated case statement")
		}
		arm, err := p.parseCaseArm()
		if err != nil {
			return nil, err
		}
		stmt.Arms = append(stmt.Arms, arm)
		p.skipBlankAndSeps()
	}
	if err := p.expectKeyword("esac"); err != nil {
		return nil, err
	}
	stmt.EsacPos = p.sc.Pos() - 4
	return stmt, nil
}

func (p *parser) parseCaseArm() (*ast.CaseArm, error) {
	arm := &ast.CaseArm{}
	p.skipBlankAndSeps()
	if p.sc.Peek(0) == '(' {
		p.sc.Advance()
	}
	for {
		p.skipBlanks()
		w, ok, err := p.readWord(false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, p.errorf("expected case pattern")
		}
		arm.Patterns = append(arm.Patterns, *w)
		p.skipBlanks()
		if p.sc.Peek(0) == '|' {
			p.sc.Advance()
			continue
		}
		break
	}
	if p.sc.Peek(0) != ')' {
		return nil, p.errorf("expected ) after case pattern")
	}
	p.sc.Advance()
	body, err := p.parseListUntil(0)
	if err != nil {
		return nil, err
	}
	arm.Body = body
	p.skipBlankAndSeps()
	switch {
	case p.sc.Peek(0) == ';' && p.sc.Peek(1) == ';' && p.sc.Peek(2) == '&':
		arm.Term = ast.CaseContinue
		p.sc.Advance()
		p.sc.Advance()
		p.sc.Advance()
	case p.sc.Peek(0) == ';' && p.sc.Peek(1) == '&':
		arm.Term = ast.CaseFallThru
		p.sc.Advance()
		p.sc.Advance()
	case p.sc.Peek(0) == ';' && p.sc.Peek(1) == ';':
		arm.Term = ast.CaseBreak
		p.sc.Advance()
		p.sc.Advance()
	}
	return arm, nil
}

func (p *parser) parseFunctionDef(withKeyword bool) (ast.Command, error) {
	start := p.sc.Pos()
	if withKeyword {
		p.expectWord("function")
	}
	p.skipBlanks()
	from := p.sc.Mark()
	for isNameByte(p.sc.Peek(0)) {
		p.sc.Advance()
	}
	name := p.sc.Slice(from, p.sc.Mark())
	if name == "" {
		return nil, p.errorf("expected function name")
	}
	p.skipBlanks()
	if p.sc.Peek(0) == '(' && p.sc.Peek(1) == ')' {
		p.sc.Advance()
		p.sc.Advance()
	}
	p.skipBlankAndSeps()
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Position: start, Name: name, Body: body}, nil
}

func (p *parser) parseTime() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("time")
	posix := false
	p.skipBlanks()
	if p.sc.Peek(0) == '-' && p.sc.Peek(1) == 'p' && isWordBoundary(p.sc.Peek(2)) {
		posix = true
		p.sc.Advance()
		p.sc.Advance()
	}
	p.skipBlanks()
	if p.sc.Eof() || p.sc.Peek(0) == '\n' || p.sc.Peek(0) == ';' {
		return &ast.Time{TimePos: start, Posix: posix}, nil
	}
	cmd, _, err := p.parseCommandOrSimple()
	if err != nil {
		return nil, err
	}
	return &ast.Time{TimePos: start, Posix: posix, Cmd: cmd}, nil
}

func (p *parser) parseCoproc() (ast.Command, error) {
	start := p.sc.Pos()
	p.expectWord("coproc")
	p.skipBlanks()
	name := ""
	if isNameStart(p.sc.Peek(0)) {
		save := *p.sc
		from := p.sc.Mark()
		for isNameByte(p.sc.Peek(0)) {
			p.sc.Advance()
		}
		cand := p.sc.Slice(from, p.sc.Mark())
		if isBlank(p.sc.Peek(0)) {
			p.skipBlanks()
			if p.sc.Peek(0) == '{' || p.sc.Peek(0) == '(' {
				name = cand
			} else {
				*p.sc = save
			}
		} else {
			*p.sc = save
		}
	}
	cmd, _, err := p.parseCommandOrSimple()
	if err != nil {
		return nil, err
	}
	return &ast.Coproc{CoprocPos: start, Name: name, Cmd: cmd}, nil
}
