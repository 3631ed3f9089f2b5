package interp

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/sandbox"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

func newRunner(t *testing.T) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	fs := vfs.New()
	fs.MkdirAll("/work")
	st := scope.New("test.sh", 100)
	st.Set("PWD", scope.NewScalar("/work"))
	st.Set("PATH", scope.NewScalar("/usr/bin:/bin"))
	var stdout, stderr bytes.Buffer
	r := New(Config{
		Scope:      st,
		VFS:        fs,
		Limiter:    sandbox.New(sandbox.Limits{}, nil),
		Stdout:     &stdout,
		Stderr:     &stderr,
		ScriptName: "test.sh",
	})
	return r, &stdout, &stderr
}

func run(t *testing.T, r *Runner, src string) {
	t.Helper()
	tree, err := parser.Parse([]byte(src), parser.Options{})
	qt.Assert(t, err, qt.IsNil)
	r.Run(tree)
}

func TestEchoWritesStdout(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `echo hello world`)
	c.Assert(out.String(), qt.Equals, "hello world\n")
	c.Assert(r.ExitCode(), qt.Equals, 0)
}

func TestAssignmentAndExpansion(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, "x=5\necho $x$x")
	c.Assert(out.String(), qt.Equals, "55\n")
}

func TestAndOrShortCircuit(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `false && echo no; true || echo no2; echo yes`)
	c.Assert(out.String(), qt.Equals, "yes\n")
}

func TestIfElse(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `if [ 1 -eq 2 ]; then echo a; else echo b; fi`)
	c.Assert(out.String(), qt.Equals, "b\n")
}

func TestWhileLoop(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `i=0; while [ $i -lt 3 ]; do echo $i; i=$((i+1)); done`)
	c.Assert(out.String(), qt.Equals, "0\n1\n2\n")
}

func TestForLoop(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `for x in a b c; do echo $x; done`)
	c.Assert(out.String(), qt.Equals, "a\nb\nc\n")
}

func TestCStyleFor(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `for ((i=0; i<3; i++)); do echo $i; done`)
	c.Assert(out.String(), qt.Equals, "0\n1\n2\n")
}

func TestBreakContinue(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `for x in 1 2 3 4; do if [ $x -eq 2 ]; then continue; fi; if [ $x -eq 4 ]; then break; fi; echo $x; done`)
	c.Assert(out.String(), qt.Equals, "1\n3\n")
}

func TestBreakTwoLevels(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `for x in a b; do for y in 1 2; do echo $x$y; break 2; done; done`)
	c.Assert(out.String(), qt.Equals, "a1\n")
}

func TestCaseFallThrough(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `case a in a) echo one;& b) echo two;; *) echo three;; esac`)
	c.Assert(out.String(), qt.Equals, "one\ntwo\n")
}

func TestCaseGlobPattern(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `case hello.txt in *.txt) echo match;; *) echo nomatch;; esac`)
	c.Assert(out.String(), qt.Equals, "match\n")
}

func TestFunctionDefAndCall(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `greet() { echo "hi $1"; return 3; }; greet world; echo $?`)
	c.Assert(out.String(), qt.Equals, "hi world\n3\n")
}

func TestPipeline(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `echo hello | { read line; echo "got:$line"; }`)
	c.Assert(out.String(), qt.Equals, "got:hello\n")
}

func TestPipefailOption(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newRunner(t)
	run(t, r, `set -o pipefail; false | true`)
	c.Assert(r.ExitCode(), qt.Equals, 1)
}

func TestSubshellDoesNotLeakVariables(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `x=outer; (x=inner; echo $x); echo $x`)
	c.Assert(out.String(), qt.Equals, "inner\nouter\n")
}

func TestCommandSubstitution(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `echo "result: $(echo nested)"`)
	c.Assert(out.String(), qt.Equals, "result: nested\n")
}

func TestRedirectToVFSFile(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newRunner(t)
	run(t, r, `echo hi > /work/out.txt; echo again >> /work/out.txt`)
	data, err := r.VFS.Read("/work/out.txt")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "hi\nagain\n")
}

func TestBackgroundSetsLastPID(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newRunner(t)
	run(t, r, `echo bg & echo $!`)
	v, ok := r.Scope.Get("!")
	_ = v
	_ = ok
	// $! is resolved by the expand package's special-parameter handling,
	// not through a plain scope lookup; read the recorded pseudo-PID from
	// the scope directly.
	c.Assert(r.Scope.LastBackgroundPID(), qt.Equals, 1)
}

func TestConditionalStringMatch(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `if [[ "hello" == hel* ]]; then echo yes; fi`)
	c.Assert(out.String(), qt.Equals, "yes\n")
}

func TestArithmeticCommand(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newRunner(t)
	run(t, r, `(( 2 + 2 == 4 ))`)
	c.Assert(r.ExitCode(), qt.Equals, 0)
}

func TestExitBuiltinStopsScript(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newRunner(t)
	run(t, r, `echo one; exit 5; echo two`)
	c.Assert(out.String(), qt.Equals, "one\n")
	c.Assert(r.ExitCode(), qt.Equals, 5)
}

func TestSandboxCommandLimit(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	st := scope.New("test.sh", 1)
	st.Set("PWD", scope.NewScalar("/"))
	var stdout bytes.Buffer
	r := New(Config{
		Scope:   st,
		VFS:     fs,
		Limiter: sandbox.New(sandbox.Limits{MaxCommands: 2}, nil),
		Stdout:  &stdout,
	})
	run(t, r, `echo a; echo b; echo c; echo d`)
	c.Assert(r.FatalErr(), qt.Not(qt.IsNil))
}
