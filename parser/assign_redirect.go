package parser

import (
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/lexer"
	"github.com/everruns/bashkit-sub001/token"
)

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// tryParseAssign recognizes `name=value`, `name+=value`, `name[i]=value`,
// and `name=(...)` at a position where a command-prefix assignment is
// grammatically valid (before the command word is read).
func (p *parser) tryParseAssign() (*ast.Assign, bool, error) {
	save := *p.sc
	start := p.sc.Pos()
	if !isNameStart(p.sc.Peek(0)) {
		return nil, false, nil
	}
	from := p.sc.Mark()
	for isNameByte(p.sc.Peek(0)) {
		p.sc.Advance()
	}
	name := p.sc.Slice(from, p.sc.Mark())

	var index *ast.Word
	if p.sc.Peek(0) == '[' {
		p.sc.Advance()
		idxStart := p.sc.Mark()
		depth := 1
		for depth > 0 {
			if p.sc.Eof() {
				*p.sc = save
				return nil, false, nil
			}
			switch p.sc.Peek(0) {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					goto doneIdx
				}
			}
			p.sc.Advance()
		}
	doneIdx:
		idxSrc := p.sc.Slice(idxStart, p.sc.Mark())
		p.sc.Advance() // ]
		index = &ast.Word{Parts: []ast.WordPart{&ast.Literal{Value: idxSrc}}}
	}

	appended := false
	switch {
	case p.sc.Peek(0) == '+' && p.sc.Peek(1) == '=':
		appended = true
		p.sc.Advance()
		p.sc.Advance()
	case p.sc.Peek(0) == '=':
		p.sc.Advance()
	default:
		*p.sc = save
		return nil, false, nil
	}

	a := &ast.Assign{NamePos: start, Name: name, Index: index, Append: appended}
	if p.sc.Peek(0) == '(' {
		arr, err := p.parseArrayLit()
		if err != nil {
			return nil, false, err
		}
		a.Array = arr
		return a, true, nil
	}
	w, ok, err := p.readWord(false)
	if err != nil {
		return nil, false, err
	}
	if ok {
		a.Value = *w
	} else {
		a.Value = ast.Word{}
	}
	return a, true, nil
}

func (p *parser) parseArrayLit() (*ast.ArrayLit, error) {
	lp := p.sc.Pos()
	p.sc.Advance() // (
	arr := &ast.ArrayLit{Lparen: lp}
	for {
		p.skipBlankAndSeps()
		if p.sc.Peek(0) == ')' {
			break
		}
		if p.sc.Eof() {
			return nil, p.errorf("unterminated array literal")
		}
		var idx *ast.Word
		save := *p.sc
		if p.sc.Peek(0) == '[' {
			p.sc.Advance()
			from := p.sc.Mark()
			for p.sc.Peek(0) != ']' && !p.sc.Eof() {
				p.sc.Advance()
			}
			idxSrc := p.sc.Slice(from, p.sc.Mark())
			if p.sc.Peek(0) == ']' && p.sc.Peek(1) == '=' {
				p.sc.Advance()
				p.sc.Advance()
				idx = &ast.Word{Parts: []ast.WordPart{&ast.Literal{Value: idxSrc}}}
			} else {
				*p.sc = save
			}
		}
		w, ok, err := p.readWord(false)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		arr.Elems = append(arr.Elems, ast.ArrayElem{Index: idx, Value: *w})
	}
	arr.Rparen = p.sc.Pos()
	if p.sc.Peek(0) == ')' {
		p.sc.Advance()
	}
	return arr, nil
}

func (p *parser) tryParseRedirect() (*ast.Redirect, bool, error) {
	save := *p.sc
	start := p.sc.Pos()
	var fd *int
	if isDigit(p.sc.Peek(0)) {
		from := p.sc.Mark()
		for isDigit(p.sc.Peek(0)) {
			p.sc.Advance()
		}
		if p.sc.Peek(0) == '<' || p.sc.Peek(0) == '>' {
			n, _ := strconv.Atoi(p.sc.Slice(from, p.sc.Mark()))
			fd = &n
		} else {
			*p.sc = save
		}
	}
	op, ok := p.matchRedirOp()
	if !ok {
		*p.sc = save
		return nil, false, nil
	}
	p.skipBlanks()
	if op == token.SHL || op == token.DHEREDOC {
		return p.parseHeredocOp(start, fd, op)
	}
	w, ok, err := p.readWord(false)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.errorf("expected word after redirection operator")
	}
	return &ast.Redirect{OpPos: start, Fd: fd, Op: op, Word: *w}, true, nil
}

func (p *parser) matchRedirOp() (token.Kind, bool) {
	b0, b1, b2 := p.sc.Peek(0), p.sc.Peek(1), p.sc.Peek(2)
	switch {
	case b0 == '<' && b1 == '<' && b2 == '-':
		p.sc.Advance()
		p.sc.Advance()
		p.sc.Advance()
		return token.DHEREDOC, true
	case b0 == '<' && b1 == '<' && b2 == '<':
		p.sc.Advance()
		p.sc.Advance()
		p.sc.Advance()
		return token.WHEREDOC, true
	case b0 == '<' && b1 == '<':
		p.sc.Advance()
		p.sc.Advance()
		return token.SHL, true
	case b0 == '<' && b1 == '&':
		p.sc.Advance()
		p.sc.Advance()
		return token.DPLIN, true
	case b0 == '<' && b1 == '>':
		p.sc.Advance()
		p.sc.Advance()
		return token.RDRINOUT, true
	case b0 == '<':
		p.sc.Advance()
		return token.LSS, true
	case b0 == '>' && b1 == '>':
		p.sc.Advance()
		p.sc.Advance()
		return token.SHR, true
	case b0 == '>' && b1 == '&':
		p.sc.Advance()
		p.sc.Advance()
		return token.DPLOUT, true
	case b0 == '>':
		p.sc.Advance()
		return token.GTR, true
	case b0 == '&' && b1 == '>' && b2 == '>':
		p.sc.Advance()
		p.sc.Advance()
		p.sc.Advance()
		return token.APPALL, true
	case b0 == '&' && b1 == '>':
		p.sc.Advance()
		p.sc.Advance()
		return token.RDRALL, true
	}
	return token.ILLEGAL, false
}

func (p *parser) parseHeredocOp(start token.Pos, fd *int, op token.Kind) (*ast.Redirect, bool, error) {
	stripTabs := op == token.DHEREDOC
	w, ok, err := p.readWord(false)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.errorf("expected heredoc delimiter")
	}
	delim, quoted := heredocDelim(w)
	redir := &ast.Redirect{OpPos: start, Fd: fd, Op: op, Word: *w}
	p.heredocs = append(p.heredocs, pendingHeredoc{redir: redir, delim: delim, quoted: quoted, stripTabs: stripTabs})
	return redir, true, nil
}

func heredocDelim(w *ast.Word) (string, bool) {
	var b strings.Builder
	quoted := false
	for _, part := range w.Parts {
		switch v := part.(type) {
		case *ast.Literal:
			b.WriteString(v.Value)
		case *ast.SingleQuoted:
			quoted = true
			b.WriteString(v.Value)
		case *ast.DoubleQuoted:
			quoted = true
			for _, dp := range v.Parts {
				if lit, ok := dp.(*ast.Literal); ok {
					b.WriteString(lit.Value)
				}
			}
		}
	}
	return b.String(), quoted
}

// collectHeredocs reads the bodies for every heredoc redirection opened
// on the line just terminated, in declaration order, stopping each at a
// line exactly equal to its delimiter (tab-stripped first when the
// operator was `<<-`).
func (p *parser) collectHeredocs() error {
	pending := p.heredocs
	p.heredocs = nil
	rest := p.sc.Rest()
	consumed := 0
	for _, h := range pending {
		var body strings.Builder
		for {
			nl := indexByte(rest[consumed:], '\n')
			var line string
			hasNL := nl >= 0
			if hasNL {
				line = string(rest[consumed : consumed+nl])
				consumed += nl + 1
			} else {
				line = string(rest[consumed:])
				consumed = len(rest)
			}
			check := line
			if h.stripTabs {
				check = strings.TrimLeft(line, "\t")
			}
			if check == h.delim {
				break
			}
			if h.stripTabs {
				line = strings.TrimLeft(line, "\t")
			}
			body.WriteString(line)
			body.WriteString("\n")
			if !hasNL {
				break
			}
		}
		w, err := parseHeredocWord(body.String(), h.quoted, p.opts)
		if err != nil {
			return err
		}
		h.redir.Hdoc = w
	}
	p.sc.SkipTo(consumed)
	return nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func parseHeredocWord(body string, quoted bool, opts Options) (*ast.Word, error) {
	if quoted {
		return &ast.Word{Parts: []ast.WordPart{&ast.Literal{Value: body}}}, nil
	}
	hp := &parser{sc: lexer.NewScanner([]byte(body)), src: []byte(body), opts: opts}
	w := &ast.Word{}
	for !hp.sc.Eof() {
		part, err := hp.readDoubleQuotedPart()
		if err != nil {
			return nil, err
		}
		w.Parts = append(w.Parts, part)
	}
	return w, nil
}
