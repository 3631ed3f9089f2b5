package expand

import (
	"strings"

	"github.com/everruns/bashkit-sub001/pattern"
)

// fieldPart is one constituent chunk of a word's expansion: either a run
// of text that came from inside quotes (never split, never globbed) or
// a run from an unquoted expansion (split on IFS, glob-expanded). A
// boundary chunk carries no text; it forces a field break between
// elements of an unquoted/quoted "${arr[@]}"/"$@" expansion, which are
// always separate fields regardless of IFS.
type fieldPart struct {
	val      string
	quoted   bool
	boundary bool
}

func lit(s string) fieldPart       { return fieldPart{val: s} }
func quotedLit(s string) fieldPart { return fieldPart{val: s, quoted: true} }
func boundaryMark() fieldPart      { return fieldPart{boundary: true} }

// literalValue concatenates a chunk list's text verbatim: this is quote
// removal, since a quoted chunk's text is already the fully decoded
// literal (no further escaping/stripping left to do). A boundary chunk
// (an "$@"-style array-element break) renders as a single space here,
// matching bash's rule that a non-splitting context (an assignment RHS,
// a heredoc delimiter) joins "$@" the same way "$*" does.
func literalValue(chunks []fieldPart) string {
	var sb strings.Builder
	for i, c := range chunks {
		if c.boundary {
			if i != 0 && i != len(chunks)-1 {
				sb.WriteString(" ")
			}
			continue
		}
		sb.WriteString(c.val)
	}
	return sb.String()
}

// patternText concatenates a chunk list into a pattern string for
// [pattern.Regexp]/case matching: quoted chunks are meta-escaped so
// their literal `*`/`?`/`[` never act as wildcards, matching bash's
// rule that quoting suppresses pattern matching even in a case arm or
// `[[ x == pat ]]` right-hand side.
func patternText(chunks []fieldPart) string {
	var sb strings.Builder
	for _, c := range chunks {
		if c.quoted {
			sb.WriteString(pattern.QuoteMeta(c.val, 0))
		} else {
			sb.WriteString(c.val)
		}
	}
	return sb.String()
}

func isIFSWhitespace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }

// splitWord applies IFS word-splitting (spec.md §4.E step 6) to one
// word's chunk list, returning the resulting fields (each itself a
// chunk list, since a field can still mix quoted and unquoted runs).
// A zero-length IFS disables splitting entirely (the whole word, minus
// boundary breaks, is one field). Consecutive IFS-whitespace runs
// collapse to a single break and are trimmed at field edges; any other
// IFS byte is a break in its own right, consuming at most one adjacent
// whitespace run, matching POSIX field splitting: two such bytes in a
// row delimit an empty field. A non-whitespace IFS byte that directly
// follows an IFS-whitespace break (including leading whitespace) does
// not add an empty field of its own.
func splitWord(chunks []fieldPart, ifs string) [][]fieldPart {
	var fields [][]fieldPart
	var cur []fieldPart
	pending := false
	wsBreak := false // the last break was an IFS-whitespace run
	endField := func() {
		if pending {
			fields = append(fields, cur)
		}
		cur = nil
		pending = false
	}
	if ifs == "" {
		for _, c := range chunks {
			if c.boundary {
				endField()
				continue
			}
			cur = append(cur, c)
			pending = true
		}
		endField()
		return fields
	}
	for _, c := range chunks {
		if c.boundary {
			endField()
			wsBreak = false
			continue
		}
		if c.quoted {
			cur = append(cur, c)
			pending = true
			wsBreak = false
			continue
		}
		rs := []rune(c.val)
		segStart := 0
		i := 0
		for i < len(rs) {
			r := rs[i]
			if !strings.ContainsRune(ifs, r) {
				i++
				continue
			}
			if i > segStart {
				cur = append(cur, lit(string(rs[segStart:i])))
				pending = true
				wsBreak = false
			}
			if isIFSWhitespace(r) {
				j := i
				for j < len(rs) && isIFSWhitespace(rs[j]) && strings.ContainsRune(ifs, rs[j]) {
					j++
				}
				i = j
				segStart = i
				endField()
				wsBreak = true
				continue
			}
			if !wsBreak {
				pending = true // an empty field between two delimiters
			}
			endField()
			wsBreak = false
			i++
			for i < len(rs) && isIFSWhitespace(rs[i]) && strings.ContainsRune(ifs, rs[i]) {
				i++
			}
			segStart = i
		}
		if segStart < len(rs) {
			cur = append(cur, lit(string(rs[segStart:])))
			pending = true
			wsBreak = false
		}
	}
	endField()
	return fields
}
