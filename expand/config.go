// Package expand implements the eight-step expansion pipeline of
// spec.md §4.E: brace, tilde, parameter, command substitution, arithmetic,
// field splitting (IFS), pathname expansion (globbing), and quote removal.
// It is driven by the evaluator (package interp) once per simple-command
// word list, and is also the home of the `(( ))`/`$(( ))` arithmetic
// evaluator shared by the C-style for loop and `(( ))` commands.
package expand

import (
	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/sandbox"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

// Runner is the callback the evaluator implements so that expand can
// invoke command substitution and process substitution without
// importing package interp (which imports expand): spec.md §4.E step 4
// "Command substitution ... runs the body through the same evaluator,
// capturing its stdout".
type Runner interface {
	// RunCapture executes body as a subshell, returning its captured
	// stdout (trailing newlines stripped, per $(...) semantics) and its
	// exit status.
	RunCapture(body *ast.List) (stdout string, status int, err error)
	// RunProcSub runs body to completion at expansion time, writes its
	// stdout to a fresh virtual path and returns that path. dir == ProcOut
	// is handled the same way: data later written to the returned path
	// does not reach body.
	RunProcSub(dir ast.ProcDir, body *ast.List) (path string, err error)
}

// Config bundles everything the expansion pipeline needs to read: the
// variable stack for parameter/arithmetic lookups, the VFS for
// pathname expansion, the Runner for command and process substitution,
// and the shopt-style flags that change step 7's behavior. expand itself
// never reads Limiter; output produced inside a substitution is charged
// by the Runner.
type Config struct {
	Scope   *scope.Stack
	VFS     *vfs.FS
	Limiter *sandbox.Limiter
	Runner  Runner

	ExtGlob    bool // shopt -s extglob (accepted, matched literally; see glob.go)
	NullGlob   bool // shopt -s nullglob
	FailGlob   bool // shopt -s failglob
	DotGlob    bool // shopt -s dotglob
	NoCaseGlob bool // shopt -s nocaseglob
	GlobStar   bool // shopt -s globstar
	NoGlob     bool // set -f
}

func (c *Config) cwd() string {
	if c.Scope == nil {
		return "/"
	}
	if v, ok := c.Scope.Get("PWD"); ok {
		if s := v.Value.String(); s != "" {
			return s
		}
	}
	return "/"
}

func (c *Config) ifs() string {
	if v, ok := c.Scope.Get("IFS"); ok {
		return v.Value.String()
	}
	return " \t\n"
}
