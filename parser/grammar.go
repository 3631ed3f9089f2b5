package parser

import "github.com/everruns/bashkit-sub001/ast"

// parseListUntil parses `list = and_or ((';' | '&' | NEWLINE) and_or)*`,
// stopping before EOF or (when nonzero) an unquoted occurrence of stop.
func (p *parser) parseListUntil(stop byte) (*ast.List, error) {
	start := p.sc.Pos()
	l := &ast.List{StartPos: start}
	for {
		p.skipBlankAndSeps()
		if p.sc.Eof() || (stop != 0 && p.sc.Peek(0) == stop) {
			break
		}
		if p.atListTerminator() {
			break
		}
		ao, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, ao)
		sep, err := p.consumeSep()
		if err != nil {
			return nil, err
		}
		if sep == ast.SepAmp {
			p.markBackground(ao)
		}
		l.Seps = append(l.Seps, sep)
		if sep == ast.SepNone {
			break
		}
	}
	return l, nil
}

// parseList is the top-level entry point (Parse's `p.parseList(true)`).
// It stops at EOF, at `;;` or at a closing keyword; Parse reports any
// input left after it as an error.
func (p *parser) parseList(topLevel bool) (*ast.List, error) {
	return p.parseListUntil(0)
}

// atListTerminator reports whether the upcoming text is a reserved
// closing keyword (do/fi/done/esac/then/elif/else) or `;;` that should
// end the enclosing list without being consumed here; a `}` is left to
// the caller's stop byte.
func (p *parser) atListTerminator() bool {
	if p.sc.Peek(0) == ';' && p.sc.Peek(1) == ';' {
		return true
	}
	if w, ok := p.peekWord(); ok {
		switch w {
		case "do", "fi", "done", "esac", "then", "elif", "else":
			return true
		}
	}
	return false
}

func (p *parser) markBackground(ao *ast.AndOr) {
	cur := ao
	for cur.Right != nil {
		cur = cur.Right
	}
	if cur.Pipe != nil && len(cur.Pipe.Elements) > 0 {
		cur.Pipe.Elements[len(cur.Pipe.Elements)-1].Background = true
	}
}

func (p *parser) consumeSep() (ast.Sep, error) {
	p.skipBlankOnly()
	switch p.sc.Peek(0) {
	case ';':
		if p.sc.Peek(1) == ';' {
			return ast.SepNone, nil
		}
		p.sc.Advance()
		return ast.SepSemi, nil
	case '\n':
		p.sc.Advance()
		if len(p.heredocs) > 0 {
			if err := p.collectHeredocs(); err != nil {
				return ast.SepNone, err
			}
		}
		return ast.SepNewline, nil
	case '&':
		if p.sc.Peek(1) == '&' {
			return ast.SepNone, nil
		}
		p.sc.Advance()
		return ast.SepAmp, nil
	}
	return ast.SepNone, nil
}

func (p *parser) parseAndOr() (*ast.AndOr, error) {
	left, err := p.parsePipelineAsAndOr()
	if err != nil {
		return nil, err
	}
	for {
		p.skipBlankOnly()
		var op ast.AndOrOp
		switch {
		case p.sc.Peek(0) == '&' && p.sc.Peek(1) == '&':
			op = ast.AndOrAnd
			p.sc.Advance()
			p.sc.Advance()
		case p.sc.Peek(0) == '|' && p.sc.Peek(1) == '|':
			op = ast.AndOrOr
			p.sc.Advance()
			p.sc.Advance()
		default:
			return left, nil
		}
		p.skipBlankAndSeps()
		right, err := p.parsePipelineAsAndOr()
		if err != nil {
			return nil, err
		}
		left = &ast.AndOr{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parsePipelineAsAndOr() (*ast.AndOr, error) {
	pipe := &ast.Pipeline{}
	if p.sc.Peek(0) == '!' && isWordBoundary(p.sc.Peek(1)) {
		pipe.Bang = true
		p.sc.Advance()
		p.skipBlanks()
	}
	for {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		pipe.Elements = append(pipe.Elements, stmt)
		p.skipBlankOnly()
		if p.sc.Peek(0) == '|' && p.sc.Peek(1) == '|' {
			break
		}
		if p.sc.Peek(0) == '|' {
			p.sc.Advance()
			amp := false
			if p.sc.Peek(0) == '&' {
				amp = true
				p.sc.Advance()
			}
			pipe.StmtSep = append(pipe.StmtSep, amp)
			p.skipBlankAndSeps()
			continue
		}
		break
	}
	return &ast.AndOr{Pipe: pipe}, nil
}

func (p *parser) parseStmt() (*ast.Stmt, error) {
	start := p.sc.Pos()
	stmt := &ast.Stmt{Position: start}
	for {
		p.skipBlanks()
		if isNameStart(p.sc.Peek(0)) {
			assign, ok, err := p.tryParseAssign()
			if err != nil {
				return nil, err
			}
			if ok {
				stmt.Assigns = append(stmt.Assigns, assign)
				continue
			}
		}
		redir, ok, err := p.tryParseRedirect()
		if err != nil {
			return nil, err
		}
		if ok {
			stmt.Redirs = append(stmt.Redirs, redir)
			continue
		}
		break
	}
	p.skipBlanks()
	cmd, midRedirs, err := p.parseCommandOrSimple()
	if err != nil {
		return nil, err
	}
	stmt.Cmd = cmd
	stmt.Redirs = append(stmt.Redirs, midRedirs...)
	for {
		p.skipBlanks()
		redir, ok, err := p.tryParseRedirect()
		if err != nil {
			return nil, err
		}
		if ok {
			stmt.Redirs = append(stmt.Redirs, redir)
			continue
		}
		break
	}
	return stmt, nil
}

// peekWord tentatively reads a bare identifier/keyword-shaped token for
// command-start dispatch, restoring the scanner before returning.
func (p *parser) peekWord() (string, bool) {
	save := *p.sc
	defer func() { *p.sc = save }()
	if p.sc.Peek(0) == '!' {
		return "!", true
	}
	if !isNameStart(p.sc.Peek(0)) {
		return "", false
	}
	start := p.sc.Mark()
	for isNameByte(p.sc.Peek(0)) {
		p.sc.Advance()
	}
	return p.sc.Slice(start, p.sc.Mark()), true
}
