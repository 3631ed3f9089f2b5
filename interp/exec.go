package interp

import (
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/builtin"
	"github.com/everruns/bashkit-sub001/expand"
	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

// stmt applies a Stmt's redirections and assignment prefix around
// evaluating its Command.
func (r *Runner) stmt(s *ast.Stmt) {
	if r.stop() || s == nil {
		return
	}
	cfg := r.expandConfig()

	saved, err := r.pushRedirs(cfg, s.Redirs)
	if err != nil {
		r.writeOut(r.stderr, err.Error()+"\n")
		r.exit = 1
		r.Scope.SetLastStatus(1)
		r.popRedirs(saved)
		return
	}
	defer r.popRedirs(saved)

	if s.Cmd == nil || isPureAssign(s) {
		r.applyAssigns(cfg, s.Assigns, false)
		r.exit = 0
		r.Scope.SetLastStatus(0)
		return
	}

	var restore func()
	if len(s.Assigns) > 0 {
		restore = r.applyAssigns(cfg, s.Assigns, true)
	}
	r.cmd(s.Cmd)
	if restore != nil {
		restore()
	}
}

func isPureAssign(s *ast.Stmt) bool {
	sp, ok := s.Cmd.(*ast.Simple)
	return ok && len(sp.Words) == 0 && len(s.Assigns) > 0
}

// applyAssigns evaluates and applies a Stmt's assignment prefix. When
// scoped is true (a prefix assignment ahead of an actual command word),
// the previous value of each named variable is saved and a restore
// closure returned, so the assignment is visible only to the one command
// it precedes (spec.md §3's "prefix assignment mutates only the child's
// environment view").
func (r *Runner) applyAssigns(cfg *expand.Config, assigns []*ast.Assign, scoped bool) func() {
	if len(assigns) == 0 {
		return nil
	}
	type saved struct {
		name string
		had  bool
		v    scope.Variable
	}
	var prevs []saved
	for _, a := range assigns {
		if scoped {
			prev, had := r.Scope.Get(a.Name)
			prevs = append(prevs, saved{a.Name, had, prev})
		}
		val := r.evalAssignValue(cfg, a)
		if a.Append {
			if cur, ok := r.Scope.Get(a.Name); ok && val.Kind == scope.KindScalar {
				val = scope.NewScalar(cur.Value.String() + val.String())
			}
		}
		r.Scope.Set(a.Name, val)
	}
	if !scoped {
		return nil
	}
	return func() {
		for _, p := range prevs {
			if p.had {
				r.Scope.Set(p.name, p.v.Value)
			} else {
				r.Scope.Unset(p.name)
			}
		}
	}
}

func (r *Runner) evalAssignValue(cfg *expand.Config, a *ast.Assign) scope.Value {
	if a.Array != nil {
		v := scope.NewIndexedArray()
		idx := 0
		for _, el := range a.Array.Elems {
			text, err := expand.Literal(cfg, el.Value)
			if err != nil {
				text = ""
			}
			if el.Index != nil {
				if itext, err := expand.Literal(cfg, *el.Index); err == nil {
					if n, err := strconv.Atoi(itext); err == nil {
						idx = n
					}
				}
			}
			v.SetIndex(idx, text)
			idx++
		}
		return v
	}

	text, err := expand.Literal(cfg, a.Value)
	if err != nil {
		text = ""
	}
	if a.Index == nil {
		return scope.NewScalar(text)
	}

	idxText, err := expand.Literal(cfg, *a.Index)
	if err != nil {
		idxText = "0"
	}
	cur, ok := r.Scope.Get(a.Name)
	v := cur.Value
	if !ok || v.Kind == scope.KindScalar {
		v = scope.NewIndexedArray()
	}
	if v.Kind == scope.KindAssocArray {
		v.SetAssoc(idxText, text)
		return v
	}
	if n, err := strconv.Atoi(idxText); err == nil {
		v.SetIndex(n, text)
	} else {
		v.SetAssoc(idxText, text)
	}
	return v
}

// call resolves and runs argv[0] against the standing resolution order of
// spec.md §4.D: builtin, then function, then a VFS executable found via
// $PATH, else "command not found" (status 127). `command name ...`
// bypasses function lookup per spec.md's open question.
func (r *Runner) call(argv []string) {
	name, args := argv[0], argv[1:]

	if name == "command" {
		if len(args) > 0 && (args[0] == "-v" || args[0] == "-V") {
			h, _ := r.Registry.Lookup("command")
			r.finishBuiltinResult(h(r.builtinCtx(), args))
			return
		}
		if len(args) == 0 {
			r.exit = 0
			r.Scope.SetLastStatus(0)
			return
		}
		name, args = args[0], args[1:]
		if h, ok := r.Registry.Lookup(name); ok {
			r.finishBuiltinResult(h(r.builtinCtx(), args))
			return
		}
		r.execVFS(name, args)
		return
	}

	if h, ok := r.Registry.Lookup(name); ok {
		r.finishBuiltinResult(h(r.builtinCtx(), args))
		return
	}
	if fn, ok := r.funcs[name]; ok {
		r.callFunction(fn, args)
		return
	}
	r.execVFS(name, args)
}

func (r *Runner) finishBuiltinResult(res builtin.Result) {
	r.writeOut(r.stdout, res.Stdout)
	r.writeOut(r.stderr, res.Stderr)
	if res.Consumed > 0 && res.Consumed <= len(r.stdin) {
		r.stdin = r.stdin[res.Consumed:]
	}
	if r.fatalErr != nil {
		return
	}
	r.exit = res.Exit
	switch res.Signal {
	case builtin.SignalBreak:
		r.breakN = res.N
		if r.breakN <= 0 {
			r.breakN = 1
		}
	case builtin.SignalContinue:
		r.contN = res.N
		if r.contN <= 0 {
			r.contN = 1
		}
	case builtin.SignalReturn:
		r.returning = true
		r.exit = res.Exit
	case builtin.SignalExit:
		r.exiting = true
		r.exit = res.Exit
	}
	r.Scope.SetLastStatus(r.exit)
	if res.Err != nil {
		r.fatalErr = res.Err
	}
}

func (r *Runner) builtinCtx() *builtin.Ctx {
	return &builtin.Ctx{
		VFS:     r.VFS,
		Scope:   r.Scope,
		Limiter: r.Limiter,
		Stdin:   r.stdin,
		Cwd:     r.cwd,
		Aliases: r.Aliases,
		Traps:   r.Traps,
		Options: r.Options,
		Hash:    r.Hash,
		Funcs: func(name string) bool {
			_, ok := r.funcs[name]
			return ok
		},
		CallerInfo: r.callerFrames,
		Eval: func(script string) builtin.Result {
			return r.evalScript(script)
		},
		Jobs:       r.jobs,
		Reg:        r.Registry,
		LookupPath: r.lookupPath,
	}
}

func (r *Runner) cwd() string {
	if v, ok := r.Scope.Get("PWD"); ok && v.Value.String() != "" {
		return v.Value.String()
	}
	return "/"
}

func (r *Runner) callerFrames() []builtin.CallerFrame {
	out := make([]builtin.CallerFrame, 0, len(r.callStack))
	for i := len(r.callStack) - 1; i >= 0; i-- {
		out = append(out, r.callStack[i])
	}
	return out
}

// evalScript parses and runs script text in the current scope/state,
// backing `eval`/`source`/`.`.
func (r *Runner) evalScript(script string) builtin.Result {
	tree, err := parser.Parse([]byte(script), r.parserOpts)
	if err != nil {
		return builtin.Result{Exit: 2, Stderr: err.Error() + "\n"}
	}
	if tree.Body != nil {
		r.list(tree.Body)
	}
	return builtin.Result{Exit: r.exit}
}

// lookupPath resolves name against $PATH (or treats a name containing
// "/" as a direct VFS path), honoring the exec-bit resolution of
// spec.md §9, and remembers hits in the hash table.
func (r *Runner) lookupPath(name string) (string, bool) {
	if strings.Contains(name, "/") {
		p := vfs.ResolvePath(r.cwd(), name)
		if r.VFS.IsExecutable(p) {
			return p, true
		}
		return "", false
	}
	if p, ok := r.Hash.Lookup(name); ok {
		if r.VFS.IsExecutable(p) {
			return p, true
		}
		r.Hash.Forget(name)
	}
	path := "/usr/local/bin:/usr/bin:/bin"
	if v, ok := r.Scope.Get("PATH"); ok && v.Value.String() != "" {
		path = v.Value.String()
	}
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			dir = "."
		}
		cand := vfs.Clean(vfs.ResolvePath(r.cwd(), dir) + "/" + name)
		if r.VFS.IsExecutable(cand) {
			r.Hash.Remember(name, cand)
			return cand, true
		}
	}
	return "", false
}

// execVFS runs a VFS-resident executable script as a fresh child
// invocation: its own scope (inheriting only exported variables and
// PWD), its own trap/option/alias tables, under the same Limiter/VFS.
// There is no real process fork (spec.md §1 Non-goals), so this models
// "exec" as parse-and-run-as-a-new-script.
func (r *Runner) execVFS(name string, args []string) {
	path, ok := r.lookupPath(name)
	if !ok {
		r.writeOut(r.stderr, name+": command not found\n")
		r.exit = 127
		r.Scope.SetLastStatus(127)
		return
	}
	data, err := r.VFS.Read(path)
	if err != nil {
		r.writeOut(r.stderr, name+": cannot execute\n")
		r.exit = 126
		r.Scope.SetLastStatus(126)
		return
	}
	tree, perr := parser.Parse(data, r.parserOpts)
	if perr != nil {
		r.writeOut(r.stderr, name+": "+perr.Error()+"\n")
		r.exit = 126
		r.Scope.SetLastStatus(126)
		return
	}
	if err := r.Limiter.EnterFrame(); err != nil {
		r.fatalErr = err
		r.exiting = true
		return
	}
	defer r.Limiter.LeaveFrame()

	child := scope.New(path, r.Scope.PID())
	for k, v := range r.Scope.Exported() {
		child.Set(k, scope.NewScalar(v))
		child.SetFlags(k, scope.FlagExported)
	}
	child.Set("PWD", scope.NewScalar(r.cwd()))
	child.SetPositional(args)

	sub := &Runner{
		Scope:      child,
		VFS:        r.VFS,
		Limiter:    r.Limiter,
		Registry:   r.Registry,
		Aliases:    builtin.NewAliasTable(),
		Traps:      builtin.NewTrapTable(),
		Options:    builtin.NewOptionTable(),
		Hash:       builtin.NewHashTable(),
		funcs:      map[string]*ast.FunctionDef{},
		jobs:       newJobTable(),
		stdout:     r.stdout,
		stderr:     r.stderr,
		stdin:      r.stdin,
		scriptName: path,
		parserOpts: r.parserOpts,
	}
	if tree.Body != nil {
		sub.list(tree.Body)
	}
	sub.runTrap("EXIT")
	r.exit = sub.exit
	r.Scope.SetLastStatus(r.exit)
	if sub.fatalErr != nil {
		r.fatalErr = sub.fatalErr
		r.exiting = true
	}
}

// callFunction invokes a user-defined function: pushes a scope frame and
// a FUNCNAME entry, rebinds positional parameters to args, runs its body,
// then unwinds. A bare `return` (or falling off the end) only unwinds
// this one call; break/continue left dangling with no enclosing loop at
// function-body scope are cleared rather than propagating past the call
// (spec.md leaves bash's true "no-op outside a loop" semantics as a
// documented simplification here).
func (r *Runner) callFunction(fn *ast.FunctionDef, args []string) {
	if err := r.Limiter.EnterFrame(); err != nil {
		r.fatalErr = err
		r.exiting = true
		return
	}
	defer r.Limiter.LeaveFrame()

	prevPositional := r.Scope.Positional()
	r.Scope.Push()
	r.Scope.PushFuncname(fn.Name)
	r.Scope.SetPositional(args)
	r.callStack = append(r.callStack, builtin.CallerFrame{Line: 0, Name: fn.Name, Source: r.scriptName})

	r.stmt(fn.Body)

	r.callStack = r.callStack[:len(r.callStack)-1]
	r.Scope.PopFuncname()
	r.Scope.Pop()
	r.Scope.SetPositional(prevPositional)

	r.returning = false
	r.breakN = 0
	r.contN = 0
}
