package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

type fakeRunner struct {
	captureOut    string
	captureStatus int
	captureErr    error
	procPath      string
	procErr       error
}

func (f *fakeRunner) RunCapture(body *ast.List) (string, int, error) {
	return f.captureOut, f.captureStatus, f.captureErr
}

func (f *fakeRunner) RunProcSub(dir ast.ProcDir, body *ast.List) (string, error) {
	return f.procPath, f.procErr
}

func wordOf(parts ...ast.WordPart) ast.Word { return ast.Word{Parts: parts} }

func TestFieldsSplitsOnIFS(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	words := []ast.Word{litWord("one two  three")}
	got, err := Fields(cfg, words)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"one", "two", "three"})
}

func TestFieldsKeepsQuotedSpacesTogether(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	words := []ast.Word{wordOf(&ast.DoubleQuoted{Parts: []ast.WordPart{&ast.Literal{Value: "one two"}}})}
	got, err := Fields(cfg, words)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"one two"})
}

func TestFieldsExpandsBraceIntoMultipleWords(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	w := ast.Word{Parts: []ast.WordPart{
		&ast.Literal{Value: "f"},
		&ast.Brace{Alts: []ast.Word{litWord("oo"), litWord("ee")}},
	}}
	got, err := Fields(cfg, []ast.Word{w})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"foo", "fee"})
}

func TestFieldsExpandsParamAndGlobs(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.VFS = vfs.New()
	c.Assert(cfg.VFS.MkdirAll("/work"), qt.IsNil)
	c.Assert(cfg.VFS.Create("/work/a.txt", vfs.KindRegular, vfs.DefaultFilePerm), qt.IsNil)
	c.Assert(cfg.VFS.Create("/work/b.txt", vfs.KindRegular, vfs.DefaultFilePerm), qt.IsNil)
	cfg.Scope.Set("PWD", scope.NewScalar("/work"))
	cfg.Scope.Set("pat", scope.NewScalar("*.txt"))

	idx := ast.ParamExp{Short: true, Param: "pat"}
	words := []ast.Word{wordOf(&idx)}
	got, err := Fields(cfg, words)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"a.txt", "b.txt"})
}

func TestLiteralDoesNotSplitOrGlob(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("one two"))
	w := wordOf(&ast.ParamExp{Short: true, Param: "x"})
	got, err := Literal(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "one two")
}

func TestLiteralSkipsBraceExpansion(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	w := ast.Word{Parts: []ast.WordPart{
		&ast.Literal{Value: "f"},
		&ast.Brace{Alts: []ast.Word{litWord("oo"), litWord("ee")}},
	}}
	got, err := Literal(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "foo ee")
}

func TestExpandPatternEscapesQuotedLiterals(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	w := wordOf(&ast.SingleQuoted{Value: "*.txt"})
	got, err := ExpandPattern(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got != "*.txt", qt.IsTrue)
}

func TestExpandWordPartCmdSubTrimsTrailingNewlines(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Runner = &fakeRunner{captureOut: "hello\n\n", captureStatus: 0}
	w := wordOf(&ast.CmdSub{Body: &ast.List{}})
	got, err := Literal(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "hello")
	c.Assert(cfg.Scope.LastStatus(), qt.Equals, 0)
}

func TestExpandWordPartArithSub(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	w := wordOf(&ast.ArithSub{X: &ast.ArithWord{Value: "2+3"}})
	got, err := Literal(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "5")
}

func TestExpandWordPartProcSub(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Runner = &fakeRunner{procPath: "/proc/fd/63"}
	w := wordOf(&ast.ProcSub{Dir: ast.ProcIn, Body: &ast.List{}})
	got, err := Literal(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "/proc/fd/63")
}

func TestExpandWordPartTilde(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("HOME", scope.NewScalar("/home/alice"))
	w := wordOf(&ast.Tilde{})
	got, err := Literal(cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "/home/alice")
}
