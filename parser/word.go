package parser

import (
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/lexer"
)

// atWordStart reports whether the scanner is positioned where a word (as
// opposed to an operator) can begin.
func (p *parser) atWordStart() bool {
	b := p.sc.Peek(0)
	if b == 0 {
		return false
	}
	return !isWordBoundary(b) || b == '<' || b == '>'
}

// readWord reads one Word, stopping at the first unquoted/unescaped
// word-boundary byte. Returns (nil, false, nil) if no word starts here.
func (p *parser) readWord(cmdPos bool) (*ast.Word, bool, error) {
	if !p.atWordStart() {
		return nil, false, nil
	}
	// `<(`/`>(` only count as word-starting procsub; a bare `<`/`>` at
	// word start with no following `(` is a redirection operator, not a
	// word, so it's rejected here and handled by the redirection parser.
	if b := p.sc.Peek(0); b == '<' || b == '>' {
		if p.sc.Peek(1) != '(' {
			return nil, false, nil
		}
	}
	w := &ast.Word{}
	for {
		part, ok, err := p.readWordPart(len(w.Parts) == 0 && cmdPos)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		w.Parts = append(w.Parts, part)
		if p.sc.Eof() || isWordBoundary(p.sc.Peek(0)) {
			break
		}
	}
	if len(w.Parts) == 0 {
		return nil, false, nil
	}
	return w, true, nil
}

// readWordPart reads one WordPart of an unquoted word context.
func (p *parser) readWordPart(atStart bool) (ast.WordPart, bool, error) {
	p.sc.SkipLineContinuations()
	start := p.sc.Pos()
	b := p.sc.Peek(0)
	switch {
	case b == 0 || isBlank(b) || b == '\n':
		return nil, false, nil
	case b == '\'':
		return p.readSingleQuoted()
	case b == '"':
		return p.readDoubleQuoted()
	case b == '\\':
		p.sc.Advance()
		c := p.sc.AdvanceRune()
		return &ast.SingleQuoted{Position: start, Value: string(c)}, true, nil
	case b == '~' && atStart:
		return p.readTilde()
	case b == '$':
		return p.readDollar()
	case b == '`':
		return p.readBacktick()
	case (b == '<' || b == '>') && p.sc.Peek(1) == '(':
		return p.readProcSub()
	case b == '{':
		if part, ok := p.tryReadBrace(); ok {
			return part, true, nil
		}
		return p.readLiteralRun()
	case isWordBoundary(b):
		return nil, false, nil
	default:
		return p.readLiteralRun()
	}
}

// readLiteralRun consumes a maximal run of plain characters, stopping
// before any byte that starts a special construct or a word boundary.
func (p *parser) readLiteralRun() (ast.WordPart, bool, error) {
	start := p.sc.Mark()
	startPos := p.sc.Pos()
	for {
		p.sc.SkipLineContinuations()
		b := p.sc.Peek(0)
		if b == 0 || isBlank(b) || b == '\n' || b == '\'' || b == '"' ||
			b == '\\' || b == '$' || b == '`' || b == '{' {
			break
		}
		if isWordBoundary(b) {
			break
		}
		p.sc.Advance()
	}
	end := p.sc.Mark()
	if end == start {
		// Nothing literal to take; consume one byte so callers make
		// progress on an otherwise-unhandled special character.
		p.sc.Advance()
		return &ast.Literal{ValuePos: startPos, Value: p.sc.Slice(start, start+1)}, true, nil
	}
	return &ast.Literal{ValuePos: startPos, Value: p.sc.Slice(start, end)}, true, nil
}

func (p *parser) readSingleQuoted() (ast.WordPart, bool, error) {
	start := p.sc.Pos()
	p.sc.Advance() // '
	from := p.sc.Mark()
	for {
		if p.sc.Eof() {
			return nil, false, p.errorf("unterminated single-quoted string")
		}
		if p.sc.Peek(0) == '\'' {
			break
		}
		p.sc.Advance()
	}
	val := p.sc.Slice(from, p.sc.Mark())
	p.sc.Advance() // closing '
	return &ast.SingleQuoted{Position: start, Value: val}, true, nil
}

func (p *parser) readDoubleQuoted() (ast.WordPart, bool, error) {
	start := p.sc.Pos()
	p.sc.Advance() // "
	q := &ast.DoubleQuoted{Position: start}
	for {
		if p.sc.Eof() {
			return nil, false, p.errorf("unterminated double-quoted string")
		}
		if p.sc.Peek(0) == '"' {
			p.sc.Advance()
			return q, true, nil
		}
		part, err := p.readDoubleQuotedPart()
		if err != nil {
			return nil, false, err
		}
		q.Parts = append(q.Parts, part)
	}
}

func (p *parser) readDoubleQuotedPart() (ast.WordPart, error) {
	b := p.sc.Peek(0)
	switch b {
	case '$':
		part, ok, err := p.readDollar()
		if err != nil {
			return nil, err
		}
		if ok {
			return part, nil
		}
	case '`':
		return p.mustOK(p.readBacktick())
	case '\\':
		start := p.sc.Pos()
		p.sc.Advance()
		c := p.sc.Peek(0)
		switch c {
		case '$', '`', '"', '\\', '\n':
			p.sc.Advance()
			if c == '\n' {
				return &ast.Literal{ValuePos: start, Value: ""}, nil
			}
			return &ast.Literal{ValuePos: start, Value: string(c)}, nil
		default:
			p.sc.Advance()
			return &ast.Literal{ValuePos: start, Value: "\\" + string(c)}, nil
		}
	}
	// plain literal run until next $ ` \ " .
	start := p.sc.Mark()
	startPos := p.sc.Pos()
	for {
		c := p.sc.Peek(0)
		if c == 0 || c == '"' || c == '$' || c == '`' || c == '\\' {
			break
		}
		p.sc.Advance()
	}
	if p.sc.Mark() == start {
		// Reached via a bare '"' when re-used outside real double-quote
		// context (heredoc body expansion), where '"' has no special
		// meaning; take it as one literal byte so callers make progress.
		c := p.sc.Peek(0)
		if c != 0 {
			p.sc.Advance()
			return &ast.Literal{ValuePos: startPos, Value: string(c)}, nil
		}
	}
	return &ast.Literal{ValuePos: startPos, Value: p.sc.Slice(start, p.sc.Mark())}, nil
}

func (p *parser) mustOK(part ast.WordPart, ok bool, err error) (ast.WordPart, error) {
	if err != nil {
		return nil, err
	}
	return part, nil
}

func (p *parser) readTilde() (ast.WordPart, bool, error) {
	start := p.sc.Pos()
	p.sc.Advance() // ~
	from := p.sc.Mark()
	for isNameByte(p.sc.Peek(0)) || p.sc.Peek(0) == '-' || p.sc.Peek(0) == '+' {
		p.sc.Advance()
	}
	user := p.sc.Slice(from, p.sc.Mark())
	// Only a user/`/` boundary keeps this a tilde-expansion candidate;
	// otherwise treat the already-consumed text as a literal.
	n := p.sc.Peek(0)
	if n != 0 && n != '/' && !isWordBoundary(n) {
		return &ast.Literal{ValuePos: start, Value: "~" + user}, true, nil
	}
	return &ast.Tilde{Position: start, User: user}, true, nil
}

func (p *parser) readBacktick() (ast.WordPart, bool, error) {
	start := p.sc.Pos()
	p.sc.Advance() // `
	from := p.sc.Mark()
	var raw strings.Builder
	for {
		if p.sc.Eof() {
			return nil, false, p.errorf("unterminated backtick command substitution")
		}
		if p.sc.Peek(0) == '`' {
			break
		}
		if p.sc.Peek(0) == '\\' && (p.sc.Peek(1) == '`' || p.sc.Peek(1) == '\\' || p.sc.Peek(1) == '$') {
			p.sc.Advance()
			raw.WriteByte(p.sc.Peek(0))
			p.sc.Advance()
			continue
		}
		raw.WriteByte(p.sc.Peek(0))
		p.sc.Advance()
	}
	_ = from
	end := p.sc.Pos()
	p.sc.Advance() // `
	inner, err := Parse([]byte(raw.String()), p.opts)
	if err != nil {
		return nil, false, err
	}
	return &ast.CmdSub{Left: start, Right: end, Backtick: true, Body: inner.Body}, true, nil
}

func (p *parser) readProcSub() (ast.WordPart, bool, error) {
	start := p.sc.Pos()
	dir := ast.ProcDir(p.sc.Peek(0))
	p.sc.Advance()
	p.sc.Advance() // (
	body, err := p.parseSubList(')')
	if err != nil {
		return nil, false, err
	}
	end := p.sc.Pos()
	if p.sc.Peek(0) != ')' {
		return nil, false, p.errorf("expected ) to close process substitution")
	}
	p.sc.Advance()
	return &ast.ProcSub{OpPos: start, Rparen: end, Dir: dir, Body: body}, true, nil
}

// readDollar dispatches all of the `$...` forms: $((, $(, ${, $', $", and
// bare $name/$special.
func (p *parser) readDollar() (ast.WordPart, bool, error) {
	start := p.sc.Pos()
	if p.sc.Peek(1) == 0 {
		return p.readLiteralRun()
	}
	switch {
	case p.sc.Peek(1) == '(' && p.sc.Peek(2) == '(':
		p.sc.Advance()
		p.sc.Advance()
		p.sc.Advance()
		x, err := p.parseArith()
		if err != nil {
			return nil, false, err
		}
		end := p.sc.Pos()
		if !(p.sc.Peek(0) == ')' && p.sc.Peek(1) == ')') {
			return nil, false, p.errorf("expected )) to close arithmetic substitution")
		}
		p.sc.Advance()
		p.sc.Advance()
		return &ast.ArithSub{Left: start, Right: end, X: x}, true, nil
	case p.sc.Peek(1) == '(':
		p.sc.Advance()
		p.sc.Advance()
		body, err := p.parseSubList(')')
		if err != nil {
			return nil, false, err
		}
		end := p.sc.Pos()
		if p.sc.Peek(0) != ')' {
			return nil, false, p.errorf("expected ) to close command substitution")
		}
		p.sc.Advance()
		return &ast.CmdSub{Left: start, Right: end, Body: body}, true, nil
	case p.sc.Peek(1) == '{':
		return p.readParamExp()
	case p.sc.Peek(1) == '\'':
		p.sc.Advance()
		p.sc.Advance()
		from := p.sc.Mark()
		for {
			if p.sc.Eof() {
				return nil, false, p.errorf("unterminated $'...'")
			}
			if p.sc.Peek(0) == '\\' {
				p.sc.Advance()
				if !p.sc.Eof() {
					p.sc.Advance()
				}
				continue
			}
			if p.sc.Peek(0) == '\'' {
				break
			}
			p.sc.Advance()
		}
		raw := p.sc.Slice(from, p.sc.Mark())
		p.sc.Advance()
		val, escaped := lexer.DecodeANSIC(raw)
		return &ast.DollarSingle{Position: start, Value: val, Escaped: escaped}, true, nil
	case p.sc.Peek(1) == '"':
		// $"..." is locale-translated string; BashKit treats it as a
		// plain double-quoted string (no translation catalog exists in
		// a sandboxed interpreter).
		p.sc.Advance()
		return p.readDoubleQuoted()
	case isNameStart(p.sc.Peek(1)):
		p.sc.Advance()
		from := p.sc.Mark()
		for isNameByte(p.sc.Peek(0)) {
			p.sc.Advance()
		}
		name := p.sc.Slice(from, p.sc.Mark())
		return &ast.ParamExp{Dollar: start, Short: true, Param: name}, true, nil
	case isSpecialParam(p.sc.Peek(1)):
		p.sc.Advance()
		c := p.sc.Peek(0)
		p.sc.Advance()
		return &ast.ParamExp{Dollar: start, Short: true, Param: string(c)}, true, nil
	case p.sc.Peek(1) >= '0' && p.sc.Peek(1) <= '9':
		p.sc.Advance()
		from := p.sc.Mark()
		for p.sc.Peek(0) >= '0' && p.sc.Peek(0) <= '9' {
			p.sc.Advance()
			break // bash only treats a single digit as $N; $12 is $1 followed by literal "2"
		}
		name := p.sc.Slice(from, p.sc.Mark())
		return &ast.ParamExp{Dollar: start, Short: true, Param: name}, true, nil
	default:
		// Bare $ with nothing recognizable after it is literal.
		p.sc.Advance()
		return &ast.Literal{ValuePos: start, Value: "$"}, true, nil
	}
}

func isSpecialParam(b byte) bool {
	switch b {
	case '@', '*', '#', '?', '$', '!', '-':
		return true
	}
	return false
}

// tryReadBrace scans ahead from an unquoted `{` to see whether it closes
// as a comma-list or `{N..M[..S]}` sequence; if not, it leaves the
// scanner untouched and returns ok=false so the caller falls back to
// treating `{` as a literal character.
func (p *parser) tryReadBrace() (ast.WordPart, bool) {
	save := *p.sc
	start := p.sc.Pos()
	p.sc.Advance() // {
	depth := 1
	from := p.sc.Mark()
	for depth > 0 {
		if p.sc.Eof() || isBlank(p.sc.Peek(0)) || p.sc.Peek(0) == '\n' {
			*p.sc = save
			return nil, false
		}
		switch p.sc.Peek(0) {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				break
			}
		case '\'', '"':
			*p.sc = save
			return nil, false
		}
		if depth == 0 {
			break
		}
		p.sc.Advance()
	}
	inner := p.sc.Slice(from, p.sc.Mark())
	end := p.sc.Pos()
	p.sc.Advance() // }
	if seq := parseBraceSequence(inner); seq != nil {
		return &ast.Brace{Lbrace: start, Rbrace: end, Sequence: seq}, true
	}
	if strings.Contains(inner, ",") {
		alts, ok := splitBraceAlts(inner)
		if !ok || len(alts) < 2 {
			*p.sc = save
			return nil, false
		}
		words := make([]ast.Word, len(alts))
		for i, a := range alts {
			sub, err := Parse([]byte(a), p.opts)
			if err == nil && sub.Body != nil && len(sub.Body.Items) > 0 {
				if s, ok := firstSimple(sub.Body); ok && len(s.Words) > 0 {
					words[i] = s.Words[0]
					continue
				}
			}
			words[i] = ast.Word{Parts: []ast.WordPart{&ast.Literal{Value: a}}}
		}
		return &ast.Brace{Lbrace: start, Rbrace: end, Alts: words}, true
	}
	*p.sc = save
	return nil, false
}

func firstSimple(l *ast.List) (*ast.Simple, bool) {
	if len(l.Items) == 0 {
		return nil, false
	}
	ao := l.Items[0]
	for ao.Right != nil {
		ao = ao.Left
	}
	if ao.Pipe == nil || len(ao.Pipe.Elements) == 0 {
		return nil, false
	}
	s, ok := ao.Pipe.Elements[0].Cmd.(*ast.Simple)
	return s, ok
}

func splitBraceAlts(inner string) ([]string, bool) {
	var alts []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				alts = append(alts, inner[start:i])
				start = i + 1
			}
		}
	}
	alts = append(alts, inner[start:])
	return alts, true
}

func parseBraceSequence(inner string) *ast.BraceSequence {
	parts := strings.Split(inner, "..")
	if len(parts) != 2 && len(parts) != 3 {
		return nil
	}
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	if !looksNumericOrAlpha(parts[0]) || !looksNumericOrAlpha(parts[1]) {
		return nil
	}
	seq := &ast.BraceSequence{Start: parts[0], End: parts[1]}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return nil
		}
		seq.Step = parts[2]
	}
	return seq
}

func looksNumericOrAlpha(s string) bool {
	if _, err := strconv.Atoi(s); err == nil {
		return true
	}
	return len(s) == 1 && ((s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z'))
}
