// Package parser implements the recursive-descent grammar of spec.md
// §4.D directly over the productions it names (program, list, and_or,
// pipeline, command, simple, and the compound-statement forms), driving
// a lexer.Scanner to perform the context-sensitive tokenization bash
// requires (the same coupling the teacher's Parser/lexer.go pair uses).
package parser

import (
	"fmt"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/lexer"
	"github.com/everruns/bashkit-sub001/token"
)

// Options mirrors the subset of shopt/set state that changes parsing
// (as opposed to evaluation): extglob changes what `@(`/`?(`/... mean
// inside a word.
type Options struct {
	ExtGlob bool
}

// ParseError is returned for any lexical or grammatical failure, with
// the span of the offending token so the host can report line/column
// (spec.md §7: "Parse error ... stderr carries one diagnostic with
// line/column and the offending token's text").
type ParseError struct {
	Pos     token.Position
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s: near %q", e.Pos.Line, e.Pos.Column, e.Message, e.Text)
}

type pendingHeredoc struct {
	redir     *ast.Redirect
	delim     string
	quoted    bool
	stripTabs bool
}

// parser holds all mutable state for one Parse call.
type parser struct {
	sc       *lexer.Scanner
	src      []byte
	opts     Options
	heredocs []pendingHeredoc
}

// Parse tokenizes and parses src into a Script.
func Parse(src []byte, opts Options) (*ast.Script, error) {
	p := &parser{sc: lexer.NewScanner(src), src: src, opts: opts}
	body, err := p.parseList(true)
	if err != nil {
		return nil, err
	}
	p.skipBlankAndSeps()
	if !p.sc.Eof() {
		return nil, p.errorf("unexpected input")
	}
	return &ast.Script{Body: body, Lines: p.sc.Lines}, nil
}

func (p *parser) errorf(format string, args ...any) error {
	pos := p.sc.Pos()
	text := p.peekTokenText()
	return &ParseError{
		Pos:     p.position(pos),
		Text:    text,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) position(pos token.Pos) token.Position {
	line, col := 1, int(pos)
	for i, off := range p.sc.Lines {
		if int(pos) > off {
			line, col = i+1, int(pos)-off
		} else {
			break
		}
	}
	return token.Position{Offset: int(pos) - 1, Line: line, Column: col}
}

func (p *parser) peekTokenText() string {
	start := p.sc.Mark()
	end := start
	for end < len(p.src) && end-start < 16 && p.src[end] != '\n' {
		end++
	}
	return string(p.src[start:end])
}

// --- low-level character classification ---

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func isWordBoundary(b byte) bool {
	switch b {
	case 0, ' ', '\t', '\n', ';', '&', '|', '(', ')', '<', '>':
		return true
	}
	return false
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

// skipBlanks consumes spaces/tabs and backslash-newline continuations,
// but stops at a newline or comment.
func (p *parser) skipBlanks() {
	for {
		p.sc.SkipLineContinuations()
		if isBlank(p.sc.Peek(0)) {
			p.sc.Advance()
			continue
		}
		break
	}
}

// skipBlankAndSeps additionally consumes newlines and comments, for use
// between list elements and at the top of compound-statement bodies.
func (p *parser) skipBlankAndSeps() {
	for {
		p.skipBlanks()
		switch p.sc.Peek(0) {
		case '\n':
			p.sc.Advance()
			continue
		case '#':
			for !p.sc.Eof() && p.sc.Peek(0) != '\n' {
				p.sc.Advance()
			}
			continue
		}
		break
	}
}

// skipBlankOnly consumes spaces/tabs/continuations and comments but not
// newlines, for use mid-line where a newline is grammatically
// significant.
func (p *parser) skipBlankOnly() {
	p.skipBlanks()
	if p.sc.Peek(0) == '#' {
		for !p.sc.Eof() && p.sc.Peek(0) != '\n' {
			p.sc.Advance()
		}
	}
}
