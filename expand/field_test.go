package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLiteralValue(t *testing.T) {
	c := qt.New(t)
	chunks := []fieldPart{lit("foo"), quotedLit(" bar "), lit("baz")}
	c.Assert(literalValue(chunks), qt.Equals, "foo bar baz")
}

func TestLiteralValueBoundaryJoinsWithSpace(t *testing.T) {
	c := qt.New(t)
	chunks := []fieldPart{lit("a"), boundaryMark(), lit("b"), boundaryMark(), lit("c")}
	c.Assert(literalValue(chunks), qt.Equals, "a b c")
}

func TestPatternTextEscapesQuotedMeta(t *testing.T) {
	c := qt.New(t)
	chunks := []fieldPart{lit("*.txt"), quotedLit("*.bak")}
	c.Assert(patternText(chunks), qt.Equals, `*.txt\*\.bak`)
}

func TestSplitWordDefaultIFS(t *testing.T) {
	c := qt.New(t)
	chunks := []fieldPart{lit("  foo   bar  baz ")}
	fields := splitWord(chunks, " \t\n")
	var got []string
	for _, f := range fields {
		got = append(got, literalValue(f))
	}
	c.Assert(got, qt.DeepEquals, []string{"foo", "bar", "baz"})
}

func TestSplitWordCustomDelimiter(t *testing.T) {
	c := qt.New(t)
	chunks := []fieldPart{lit("a:b::c")}
	fields := splitWord(chunks, ":")
	var got []string
	for _, f := range fields {
		got = append(got, literalValue(f))
	}
	c.Assert(got, qt.DeepEquals, []string{"a", "b", "", "c"})
}

func TestSplitWordEmptyIFSDisablesSplitting(t *testing.T) {
	c := qt.New(t)
	chunks := []fieldPart{lit("foo bar baz")}
	fields := splitWord(chunks, "")
	c.Assert(len(fields), qt.Equals, 1)
	c.Assert(literalValue(fields[0]), qt.Equals, "foo bar baz")
}

func TestSplitWordBoundaryForcesBreakEvenUnquoted(t *testing.T) {
	c := qt.New(t)
	// Simulates an unquoted "${arr[@]}" expansion of ["", "b"]: the
	// empty first element should vanish (bash rule), the boundary
	// should still force "b" into its own field.
	chunks := []fieldPart{lit(""), boundaryMark(), lit("b")}
	fields := splitWord(chunks, " \t\n")
	var got []string
	for _, f := range fields {
		got = append(got, literalValue(f))
	}
	c.Assert(got, qt.DeepEquals, []string{"b"})
}

func TestSplitWordBoundaryPreservesQuotedEmptyElement(t *testing.T) {
	c := qt.New(t)
	// Simulates a quoted "${arr[@]}" expansion of ["", "b"]: the empty
	// quoted element must still produce its own field.
	chunks := []fieldPart{quotedLit(""), boundaryMark(), quotedLit("b")}
	fields := splitWord(chunks, " \t\n")
	c.Assert(len(fields), qt.Equals, 2)
	c.Assert(literalValue(fields[0]), qt.Equals, "")
	c.Assert(literalValue(fields[1]), qt.Equals, "b")
}
