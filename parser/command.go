package parser

import "github.com/everruns/bashkit-sub001/ast"

// parseCommandOrSimple dispatches to whichever production matches the
// upcoming text: a compound statement, a standalone `((`/`[[` command,
// or a simple command (possibly a function definition). It returns any
// redirections found interspersed among a simple command's arguments,
// for the caller to fold into the enclosing Stmt.
func (p *parser) parseCommandOrSimple() (ast.Command, []*ast.Redirect, error) {
	p.skipBlanks()
	switch {
	case p.sc.Peek(0) == '(' && p.sc.Peek(1) == '(':
		cmd, err := p.parseArithCmd()
		return cmd, nil, err
	case p.sc.Peek(0) == '(':
		cmd, err := p.parseSubshell()
		return cmd, nil, err
	case p.sc.Peek(0) == '{' && (isBlank(p.sc.Peek(1)) || p.sc.Peek(1) == '\n' || p.sc.Peek(1) == ';'):
		cmd, err := p.parseBraceGroup()
		return cmd, nil, err
	case p.sc.Peek(0) == '[' && p.sc.Peek(1) == '[' && (isBlank(p.sc.Peek(2)) || p.sc.Peek(2) == '\n'):
		cmd, err := p.parseConditional()
		return cmd, nil, err
	}
	if w, ok := p.peekWord(); ok {
		switch w {
		case "if":
			cmd, err := p.parseIf()
			return cmd, nil, err
		case "while":
			cmd, err := p.parseWhile()
			return cmd, nil, err
		case "until":
			cmd, err := p.parseUntil()
			return cmd, nil, err
		case "for":
			cmd, err := p.parseFor()
			return cmd, nil, err
		case "case":
			cmd, err := p.parseCase()
			return cmd, nil, err
		case "function":
			cmd, err := p.parseFunctionDef(true)
			return cmd, nil, err
		case "time":
			cmd, err := p.parseTime()
			return cmd, nil, err
		case "coproc":
			cmd, err := p.parseCoproc()
			return cmd, nil, err
		}
	}
	return p.parseSimpleOrFuncDef()
}

func (p *parser) parseSubshell() (ast.Command, error) {
	lp := p.sc.Pos()
	p.sc.Advance() // (
	body, err := p.parseListUntil(')')
	if err != nil {
		return nil, err
	}
	p.skipBlankAndSeps()
	if p.sc.Peek(0) != ')' {
		return nil, p.errorf("expected ) to close subshell")
	}
	rp := p.sc.Pos()
	p.sc.Advance()
	return &ast.Subshell{Lparen: lp, Rparen: rp, Body: body}, nil
}

func (p *parser) parseBraceGroup() (ast.Command, error) {
	lb := p.sc.Pos()
	p.sc.Advance() // {
	body, err := p.parseListUntil('}')
	if err != nil {
		return nil, err
	}
	p.skipBlankAndSeps()
	if p.sc.Peek(0) != '}' {
		return nil, p.errorf("expected } to close brace group")
	}
	rb := p.sc.Pos()
	p.sc.Advance()
	return &ast.BraceGroup{Lbrace: lb, Rbrace: rb, Body: body}, nil
}

func (p *parser) parseArithCmd() (ast.Command, error) {
	lp := p.sc.Pos()
	p.sc.Advance()
	p.sc.Advance() // ((
	x, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	p.arithSkip()
	if !(p.sc.Peek(0) == ')' && p.sc.Peek(1) == ')') {
		return nil, p.errorf("expected )) to close arithmetic command")
	}
	rp := p.sc.Pos()
	p.sc.Advance()
	p.sc.Advance()
	return &ast.Arithmetic{Lparen: lp, Rparen: rp, X: x}, nil
}

func (p *parser) parseConditional() (ast.Command, error) {
	lb := p.sc.Pos()
	p.sc.Advance()
	p.sc.Advance() // [[
	x, err := p.parseConditionalExpr()
	if err != nil {
		return nil, err
	}
	p.skipBlanks()
	if !(p.sc.Peek(0) == ']' && p.sc.Peek(1) == ']') {
		return nil, p.errorf("expected ]] to close conditional expression")
	}
	rb := p.sc.Pos()
	p.sc.Advance()
	p.sc.Advance()
	return &ast.Conditional{Lbrack: lb, Rbrack: rb, X: x}, nil
}

// parseSimpleOrFuncDef reads a simple command's words/redirections,
// recognizing the `name() body` function-definition shorthand when the
// first word is immediately followed by `()`.
func (p *parser) parseSimpleOrFuncDef() (ast.Command, []*ast.Redirect, error) {
	start := p.sc.Pos()
	first, ok, err := p.readWord(true)
	if err != nil {
		return nil, nil, err
	}
	if ok && isBareName(first) && p.sc.Peek(0) == '(' && p.sc.Peek(1) == ')' {
		name := literalText(first)
		p.sc.Advance()
		p.sc.Advance()
		p.skipBlankAndSeps()
		body, err := p.parseStmt()
		if err != nil {
			return nil, nil, err
		}
		return &ast.FunctionDef{Position: start, Name: name, Body: body}, nil, nil
	}

	simple := &ast.Simple{StartPos: start}
	var redirs []*ast.Redirect
	if ok {
		simple.Words = append(simple.Words, *first)
	}
	for {
		p.skipBlanks()
		if redir, ok, err := p.tryParseRedirect(); err != nil {
			return nil, nil, err
		} else if ok {
			redirs = append(redirs, redir)
			continue
		}
		w, ok, err := p.readWord(false)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		simple.Words = append(simple.Words, *w)
	}
	return simple, redirs, nil
}

func isBareName(w *ast.Word) bool {
	if len(w.Parts) != 1 {
		return false
	}
	lit, ok := w.Parts[0].(*ast.Literal)
	if !ok || lit.Value == "" {
		return false
	}
	if !isNameStart(lit.Value[0]) {
		return false
	}
	for i := 0; i < len(lit.Value); i++ {
		if !isNameByte(lit.Value[i]) {
			return false
		}
	}
	return true
}

func literalText(w *ast.Word) string {
	if len(w.Parts) == 1 {
		if lit, ok := w.Parts[0].(*ast.Literal); ok {
			return lit.Value
		}
	}
	return ""
}
