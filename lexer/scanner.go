// Package lexer provides the byte-level scanning primitives the parser
// uses to tokenize bash source: position tracking, rune decoding, quote
// and escape handling. Because bash's lexical grammar is thoroughly
// context-sensitive (the same '(' means different things at command
// start vs. inside a word, "#" is a comment only in some positions, a
// here-doc body must be read at exactly the right moment relative to
// the next newline), the higher-level tokenization decisions live in
// the parser package, which drives a Scanner directly — the same
// coupling the teacher's own lexer.go/parser.go pair uses.
package lexer

import (
	"unicode/utf8"

	"github.com/everruns/bashkit-sub001/token"
)

// Scanner reads a script byte-by-byte, tracking the current Pos and the
// offsets of each line's first byte (for token.Position resolution).
type Scanner struct {
	src   []byte
	off   int // next unread byte
	Lines []int
}

// NewScanner wraps src for scanning; Lines always starts with offset 0.
func NewScanner(src []byte) *Scanner {
	return &Scanner{src: src, Lines: []int{0}}
}

// Pos returns the current 1-based position.
func (s *Scanner) Pos() token.Pos { return token.Pos(s.off + 1) }

// Eof reports whether every byte has been consumed.
func (s *Scanner) Eof() bool { return s.off >= len(s.src) }

// Peek returns the byte at the given lookahead (0 = next unread byte)
// without consuming it, or 0 past EOF.
func (s *Scanner) Peek(ahead int) byte {
	i := s.off + ahead
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// Advance consumes and returns the next byte, recording a new line
// offset whenever it's a newline.
func (s *Scanner) Advance() byte {
	if s.Eof() {
		return 0
	}
	b := s.src[s.off]
	s.off++
	if b == '\n' {
		s.Lines = append(s.Lines, s.off)
	}
	return b
}

// AdvanceRune consumes and returns one UTF-8 rune.
func (s *Scanner) AdvanceRune() rune {
	if s.Eof() {
		return 0
	}
	r, size := utf8.DecodeRune(s.src[s.off:])
	for i := 0; i < size; i++ {
		s.Advance()
	}
	return r
}

// PeekRune decodes, without consuming, the rune starting at the next
// unread byte.
func (s *Scanner) PeekRune() rune {
	if s.Eof() {
		return 0
	}
	r, _ := utf8.DecodeRune(s.src[s.off:])
	return r
}

// SkipLineContinuations removes every unquoted "\\\n" starting at the
// current offset, repeatedly, per spec.md §4.C: "Backslash-newline in
// non-single-quoted contexts is a line continuation and removed."
func (s *Scanner) SkipLineContinuations() {
	for s.Peek(0) == '\\' && s.Peek(1) == '\n' {
		s.Advance()
		s.Advance()
	}
}

// Mark returns the current offset, for slicing src later via Slice.
func (s *Scanner) Mark() int { return s.off }

// Slice returns the raw bytes between two marks.
func (s *Scanner) Slice(from, to int) string { return string(s.src[from:to]) }

// Rest returns every remaining unread byte, for heredoc/body capture.
func (s *Scanner) Rest() []byte { return s.src[s.off:] }

// SkipTo advances past n bytes (used once a caller has computed how
// much of Rest() a heredoc body consumed).
func (s *Scanner) SkipTo(n int) {
	for i := 0; i < n; i++ {
		s.Advance()
	}
}
