// Package interp implements the tree-walking evaluator of spec.md §4.F
// "Evaluation": it drives the parsed ast.Script against a scope.Stack and
// a vfs.FS, dispatching builtins through package builtin and expansion
// through package expand, honoring the sandbox.Limiter at every
// documented call site.
package interp

import (
	"bytes"
	"io"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/builtin"
	"github.com/everruns/bashkit-sub001/expand"
	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/sandbox"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

// Config bundles everything a Runner needs at construction; only Scope,
// VFS, and Limiter are required, the rest default to sensible values.
type Config struct {
	Scope   *scope.Stack
	VFS     *vfs.FS
	Limiter *sandbox.Limiter

	Registry *builtin.Registry // defaults to builtin.New()
	Stdout   io.Writer         // defaults to io.Discard
	Stderr   io.Writer         // defaults to io.Discard

	ScriptName string
	ExtGlob    bool
}

// Runner is one evaluation context: the live mutable state a script (or
// a cloned subshell/background/function-call view of one) runs against.
type Runner struct {
	Scope    *scope.Stack
	VFS      *vfs.FS
	Limiter  *sandbox.Limiter
	Registry *builtin.Registry

	Aliases *builtin.AliasTable
	Traps   *builtin.TrapTable
	Options *builtin.OptionTable
	Hash    *builtin.HashTable

	funcs map[string]*ast.FunctionDef
	jobs  *jobTable

	stdout io.Writer
	stderr io.Writer
	stdin  []byte

	exit int // $?

	breakN, contN      int
	returning, exiting bool
	fatalErr           error

	callStack []builtin.CallerFrame

	scriptName string
	parserOpts parser.Options
}

// New returns a ready-to-run Runner for a fresh top-level script.
func New(cfg Config) *Runner {
	reg := cfg.Registry
	if reg == nil {
		reg = builtin.New()
	}
	stdout, stderr := cfg.Stdout, cfg.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Runner{
		Scope:      cfg.Scope,
		VFS:        cfg.VFS,
		Limiter:    cfg.Limiter,
		Registry:   reg,
		Aliases:    builtin.NewAliasTable(),
		Traps:      builtin.NewTrapTable(),
		Options:    builtin.NewOptionTable(),
		Hash:       builtin.NewHashTable(),
		funcs:      map[string]*ast.FunctionDef{},
		jobs:       newJobTable(),
		stdout:     stdout,
		stderr:     stderr,
		scriptName: cfg.ScriptName,
		parserOpts: parser.Options{ExtGlob: cfg.ExtGlob},
	}
}

// SetStdin seeds the bytes available to `read`/input redirection.
func (r *Runner) SetStdin(data []byte) { r.stdin = data }

// ExitCode returns $? after Run returns.
func (r *Runner) ExitCode() int { return r.exit }

// FatalErr returns the sandbox limit breach (if any) that aborted Run.
func (r *Runner) FatalErr() error { return r.fatalErr }

// Run evaluates an entire parsed script to completion (or to the first
// sandbox-limit breach / `exit`).
func (r *Runner) Run(script *ast.Script) {
	if script == nil || script.Body == nil {
		return
	}
	r.list(script.Body)
	r.runTrap("EXIT")
}

func (r *Runner) stop() bool {
	return r.fatalErr != nil || r.exiting || r.breakN > 0 || r.contN > 0 || r.returning
}

// expandConfig builds the expand.Config this Runner exposes to the
// expansion pipeline, wiring itself in as the command-/process-
// substitution callback (expand.Runner).
func (r *Runner) expandConfig() *expand.Config {
	return &expand.Config{
		Scope:      r.Scope,
		VFS:        r.VFS,
		Limiter:    r.Limiter,
		Runner:     r,
		ExtGlob:    r.parserOpts.ExtGlob,
		NullGlob:   r.Options.Shopt("nullglob"),
		FailGlob:   r.Options.Shopt("failglob"),
		DotGlob:    r.Options.Shopt("dotglob"),
		NoCaseGlob: r.Options.Shopt("nocaseglob"),
		GlobStar:   r.Options.Shopt("globstar"),
		NoGlob:     r.Options.Set("noglob"),
	}
}

// list runs each item of l in order, stopping early on any control-flow
// signal (break/continue/return/exit/fatal) or, when `set -e` is active,
// on the first command that exits non-zero.
func (r *Runner) list(l *ast.List) {
	if l == nil {
		return
	}
	for i, item := range l.Items {
		if r.stop() {
			return
		}
		if i < len(l.Seps) && l.Seps[i] == ast.SepAmp {
			r.background(item)
			continue
		}
		r.andOr(item)
		if r.Options.Set("errexit") && r.exit != 0 && !r.stop() {
			r.exiting = true
			return
		}
	}
}

// andOr walks an AndOr chain: a leaf node (Pipe set, Right nil) just runs
// its pipeline; a branch node runs Left, then short-circuits on Op before
// running Right.
func (r *Runner) andOr(a *ast.AndOr) {
	if a == nil {
		return
	}
	if a.Right == nil {
		r.pipeline(a.Pipe)
		return
	}
	r.andOr(a.Left)
	if r.stop() {
		return
	}
	switch a.Op {
	case ast.AndOrAnd:
		if r.exit != 0 {
			return
		}
	case ast.AndOrOr:
		if r.exit == 0 {
			return
		}
	}
	r.andOr(a.Right)
}

// handleLoopSignal is called by every loop construct right after running
// its body once. It reports whether the loop itself must stop: `break N`
// always stops (after decrementing N), `continue N` stops only while N
// remains above 0 after decrementing (so an outer loop absorbs the rest).
func (r *Runner) handleLoopSignal() bool {
	if r.fatalErr != nil || r.exiting || r.returning {
		return true
	}
	if r.contN > 0 {
		r.contN--
		return r.contN > 0
	}
	if r.breakN > 0 {
		r.breakN--
		return true
	}
	return false
}

// writeOut writes s to w, charging the sandbox output-byte limiter first;
// a breach aborts the whole script (spec.md §4.H: output limit is a
// fatal sandbox breach, not a truncation).
func (r *Runner) writeOut(w io.Writer, s string) {
	if s == "" {
		return
	}
	if err := r.Limiter.Output(len(s)); err != nil {
		r.fatalErr = err
		r.exiting = true
		return
	}
	io.WriteString(w, s)
}

func (r *Runner) runTrap(name string) {
	cmd, ok := r.Traps.Get(name)
	if !ok || cmd == "" {
		return
	}
	r.Traps.Unset(name) // EXIT/ERR traps fire once; re-entrant trap loops are not modeled
	saved := r.fatalErr
	savedExiting := r.exiting
	r.fatalErr = nil
	r.exiting = false
	res := r.evalScript(cmd)
	r.writeOut(r.stdout, res.Stdout)
	r.writeOut(r.stderr, res.Stderr)
	r.fatalErr = saved
	r.exiting = savedExiting
}

// cloneForSubshell builds an isolated child Runner for `( list )`,
// `cmd &`, command substitution, and process substitution: scope,
// aliases, traps, and options are deep-copied snapshots; the VFS and
// job table are shared (spec.md §5: "environment, variables, trap
// handlers, shell options, and positional parameters are snapshotted
// ... the VFS itself is shared").
func (r *Runner) cloneForSubshell() *Runner {
	return &Runner{
		Scope:      r.Scope.Clone(),
		VFS:        r.VFS,
		Limiter:    r.Limiter,
		Registry:   r.Registry,
		Aliases:    r.Aliases.Clone(),
		Traps:      r.Traps.Clone(),
		Options:    r.Options.Clone(),
		Hash:       r.Hash,
		funcs:      cloneFuncs(r.funcs),
		jobs:       r.jobs,
		stdout:     r.stdout,
		stderr:     r.stderr,
		stdin:      r.stdin,
		scriptName: r.scriptName,
		parserOpts: r.parserOpts,
	}
}

func cloneFuncs(m map[string]*ast.FunctionDef) map[string]*ast.FunctionDef {
	out := make(map[string]*ast.FunctionDef, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RunCapture implements expand.Runner for `$(...)`/backtick command
// substitution: runs body in a cloned view, capturing its stdout.
func (r *Runner) RunCapture(body *ast.List) (string, int, error) {
	if err := r.Limiter.EnterFrame(); err != nil {
		return "", 0, err
	}
	defer r.Limiter.LeaveFrame()
	sub := r.cloneForSubshell()
	var buf bytes.Buffer
	sub.stdout = &buf
	sub.list(body)
	if sub.fatalErr != nil {
		return buf.String(), sub.exit, sub.fatalErr
	}
	return buf.String(), sub.exit, nil
}

// RunProcSub implements expand.Runner for `<(cmd)`/`>(cmd)`: runs body in
// a cloned view and materializes whatever it writes to its own stdout at
// a fresh virtual path. This mirrors `<(cmd)` exactly (the consumer reads
// the produced content back from the path); `>(cmd)` support is limited
// to the same materialize-eagerly model, since the whole-buffer,
// non-streaming execution model of spec.md §5 has no natural place to
// stage a writer that only produces data after expansion time.
func (r *Runner) RunProcSub(dir ast.ProcDir, body *ast.List) (string, error) {
	if err := r.Limiter.EnterFrame(); err != nil {
		return "", err
	}
	defer r.Limiter.LeaveFrame()
	sub := r.cloneForSubshell()
	var buf bytes.Buffer
	sub.stdout = &buf
	sub.list(body)
	path := r.jobs.procSubPath()
	if err := r.VFS.Write(path, buf.Bytes(), "w"); err != nil {
		return "", err
	}
	if err := r.VFS.Chmod(path, vfs.DefaultExecPerm); err != nil {
		return "", err
	}
	return path, nil
}
