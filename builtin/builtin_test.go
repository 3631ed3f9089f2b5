package builtin

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

func newCtx() *Ctx {
	fs := vfs.New()
	fs.MkdirAll("/home/alice")
	fs.MkdirAll("/work")
	st := scope.New("test.sh", 100)
	st.Set("HOME", scope.NewScalar("/home/alice"))
	st.Set("PWD", scope.NewScalar("/work"))
	cwd := "/work"
	return &Ctx{
		VFS:     fs,
		Scope:   st,
		Cwd:     func() string { return cwd },
		Aliases: NewAliasTable(),
		Traps:   NewTrapTable(),
		Options: NewOptionTable(),
		Hash:    NewHashTable(),
	}
}

func TestRegistryHasAllNamedBuiltins(t *testing.T) {
	c := qt.New(t)
	r := New()
	for _, name := range []string{
		":", "true", "false", "exit", "return", "break", "continue",
		"wait", "jobs", "echo", "printf", "read", "export", "unset",
		"local", "declare", "set", "shift", "cd", "pwd", "trap", "shopt",
		"alias", "unalias", "eval", "source", ".", "type", "command",
		"hash", "times", "getopts", "caller",
	} {
		c.Assert(r.IsBuiltin(name), qt.IsTrue, qt.Commentf("missing builtin %q", name))
	}
}

func TestEchoPlain(t *testing.T) {
	c := qt.New(t)
	got := echoBuiltin(newCtx(), []string{"hello", "world"})
	c.Assert(got.Stdout, qt.Equals, "hello world\n")
}

func TestEchoNoNewline(t *testing.T) {
	c := qt.New(t)
	got := echoBuiltin(newCtx(), []string{"-n", "hi"})
	c.Assert(got.Stdout, qt.Equals, "hi")
}

func TestEchoEscapes(t *testing.T) {
	c := qt.New(t)
	got := echoBuiltin(newCtx(), []string{"-e", `a\tb\n`})
	c.Assert(got.Stdout, qt.Equals, "a\tb\n\n")
}

func TestPrintfBasic(t *testing.T) {
	c := qt.New(t)
	got := printfBuiltin(newCtx(), []string{"%s-%d\n", "x", "5"})
	c.Assert(got.Stdout, qt.Equals, "x-5\n")
}

func TestPrintfRecyclesFormat(t *testing.T) {
	c := qt.New(t)
	got := printfBuiltin(newCtx(), []string{"%s\n", "a", "b", "c"})
	c.Assert(got.Stdout, qt.Equals, "a\nb\nc\n")
}

func TestReadAssignsVariables(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	res := readBuiltin(ctx, []string{"x", "y"})
	ctx.Stdin = []byte("one two three\nrest")
	res = readBuiltin(ctx, []string{"x", "y"})
	c.Assert(res.Exit, qt.Equals, 0)
	c.Assert(res.Consumed, qt.Equals, len("one two three\n"))
	v, _ := ctx.Scope.Get("x")
	c.Assert(v.Value.String(), qt.Equals, "one")
	v2, _ := ctx.Scope.Get("y")
	c.Assert(v2.Value.String(), qt.Equals, "two three")
}

func TestReadDashRDoesNotBecomeAVariableName(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Stdin = []byte("hello world\n")
	res := readBuiltin(ctx, []string{"-r", "line"})
	c.Assert(res.Exit, qt.Equals, 0)
	_, gotDashR := ctx.Scope.Get("-r")
	c.Assert(gotDashR, qt.IsFalse)
	v, ok := ctx.Scope.Get("line")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v.Value.String(), qt.Equals, "hello world")
}

func TestReadDashRWithMultipleNames(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Stdin = []byte("one two three\n")
	res := readBuiltin(ctx, []string{"-r", "a", "b"})
	c.Assert(res.Exit, qt.Equals, 0)
	va, _ := ctx.Scope.Get("a")
	c.Assert(va.Value.String(), qt.Equals, "one")
	vb, _ := ctx.Scope.Get("b")
	c.Assert(vb.Value.String(), qt.Equals, "two three")
}

func TestReadDashAIntoArray(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Stdin = []byte("x y z\n")
	res := readBuiltin(ctx, []string{"-a", "arr"})
	c.Assert(res.Exit, qt.Equals, 0)
	v, ok := ctx.Scope.Get("arr")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v.Value.Index[0], qt.Equals, "x")
	c.Assert(v.Value.Index[1], qt.Equals, "y")
	c.Assert(v.Value.Index[2], qt.Equals, "z")
}

func TestReadDashDCustomDelimiter(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Stdin = []byte("one:two:rest")
	res := readBuiltin(ctx, []string{"-d", ":", "x"})
	c.Assert(res.Exit, qt.Equals, 0)
	c.Assert(res.Consumed, qt.Equals, len("one:"))
	v, _ := ctx.Scope.Get("x")
	c.Assert(v.Value.String(), qt.Equals, "one")
}

func TestExportSetsFlagAndValue(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	res := exportBuiltin(ctx, []string{"FOO=bar"})
	c.Assert(res.Exit, qt.Equals, 0)
	exported := ctx.Scope.Exported()
	c.Assert(exported["FOO"], qt.Equals, "bar")
}

func TestUnsetRemovesVariable(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Scope.Set("FOO", scope.NewScalar("bar"))
	unsetBuiltin(ctx, []string{"FOO"})
	_, ok := ctx.Scope.Get("FOO")
	c.Assert(ok, qt.IsFalse)
}

func TestDeclareIntegerAndExport(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	declareBuiltin(ctx, []string{"-xi", "COUNT=5"})
	v, ok := ctx.Scope.Get("COUNT")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v.Value.String(), qt.Equals, "5")
	c.Assert(v.Is(scope.FlagExported), qt.IsTrue)
	c.Assert(v.Is(scope.FlagInteger), qt.IsTrue)
}

func TestSetPositionalParameters(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	setBuiltin(ctx, []string{"--", "a", "b", "c"})
	c.Assert(ctx.Scope.Positional(), qt.DeepEquals, []string{"a", "b", "c"})
}

func TestSetErrexitOption(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	setBuiltin(ctx, []string{"-e"})
	c.Assert(ctx.Options.Set("errexit"), qt.IsTrue)
}

func TestShiftMovesPositionalParameters(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Scope.SetPositional([]string{"a", "b", "c"})
	res := shiftBuiltin(ctx, []string{"2"})
	c.Assert(res.Exit, qt.Equals, 0)
	c.Assert(ctx.Scope.Positional(), qt.DeepEquals, []string{"c"})
}

func TestCdChangesPWDAndSetsOLDPWD(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	res := cdBuiltin(ctx, nil)
	c.Assert(res.Exit, qt.Equals, 0)
	pwd, _ := ctx.Scope.Get("PWD")
	c.Assert(pwd.Value.String(), qt.Equals, "/home/alice")
	old, _ := ctx.Scope.Get("OLDPWD")
	c.Assert(old.Value.String(), qt.Equals, "/work")
}

func TestCdMissingDirectoryFails(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	res := cdBuiltin(ctx, []string{"/nope"})
	c.Assert(res.Exit, qt.Equals, 1)
}

func TestTrapStoresAndListsHandlers(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	trapBuiltin(ctx, []string{"echo bye", "EXIT"})
	cmd, ok := ctx.Traps.Get("EXIT")
	c.Assert(ok, qt.IsTrue)
	c.Assert(cmd, qt.Equals, "echo bye")
}

func TestShoptTogglesOption(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	shoptBuiltin(ctx, []string{"-s", "nullglob"})
	c.Assert(ctx.Options.Shopt("nullglob"), qt.IsTrue)
	shoptBuiltin(ctx, []string{"-u", "nullglob"})
	c.Assert(ctx.Options.Shopt("nullglob"), qt.IsFalse)
}

func TestAliasSetAndList(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	aliasBuiltin(ctx, []string{"ll=ls -l"})
	text, ok := ctx.Aliases.Get("ll")
	c.Assert(ok, qt.IsTrue)
	c.Assert(text, qt.Equals, "ls -l")
}

func TestBreakContinueSignalsDefaultToOne(t *testing.T) {
	c := qt.New(t)
	res := breakBuiltin(newCtx(), nil)
	c.Assert(res.Signal, qt.Equals, SignalBreak)
	c.Assert(res.N, qt.Equals, 1)

	res2 := continueBuiltin(newCtx(), []string{"3"})
	c.Assert(res2.Signal, qt.Equals, SignalContinue)
	c.Assert(res2.N, qt.Equals, 3)
}

func TestExitSignalCarriesCode(t *testing.T) {
	c := qt.New(t)
	res := exitBuiltin(newCtx(), []string{"7"})
	c.Assert(res.Signal, qt.Equals, SignalExit)
	c.Assert(res.Exit, qt.Equals, 7)
}

func TestGetoptsParsesFlagsAcrossCalls(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Scope.SetPositional([]string{"-a", "-bval", "arg"})

	res := getoptsBuiltin(ctx, []string{"ab:", "opt"})
	c.Assert(res.Exit, qt.Equals, 0)
	v, _ := ctx.Scope.Get("opt")
	c.Assert(v.Value.String(), qt.Equals, "a")

	res2 := getoptsBuiltin(ctx, []string{"ab:", "opt"})
	c.Assert(res2.Exit, qt.Equals, 0)
	v2, _ := ctx.Scope.Get("opt")
	c.Assert(v2.Value.String(), qt.Equals, "b")
	optarg, _ := ctx.Scope.Get("OPTARG")
	c.Assert(optarg.Value.String(), qt.Equals, "val")

	res3 := getoptsBuiltin(ctx, []string{"ab:", "opt"})
	c.Assert(res3.Exit, qt.Equals, 1)
}

func TestTypeReportsBuiltinFunctionAndFile(t *testing.T) {
	c := qt.New(t)
	ctx := newCtx()
	ctx.Reg = New()
	ctx.Funcs = func(name string) bool { return name == "myfunc" }
	ctx.LookupPath = func(name string) (string, bool) {
		if name == "ls" {
			return "/bin/ls", true
		}
		return "", false
	}

	res := typeBuiltin(ctx, []string{"echo"})
	c.Assert(res.Stdout, qt.Equals, "echo is a shell builtin\n")

	res2 := typeBuiltin(ctx, []string{"myfunc"})
	c.Assert(res2.Stdout, qt.Equals, "myfunc is a function\n")

	res3 := typeBuiltin(ctx, []string{"ls"})
	c.Assert(res3.Stdout, qt.Equals, "ls is /bin/ls\n")

	res4 := typeBuiltin(ctx, []string{"nope"})
	c.Assert(res4.Exit, qt.Equals, 1)
}
