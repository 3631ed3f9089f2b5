package interp

import (
	"fmt"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/expand"
)

// cmd dispatches one Command node to its evaluator.
func (r *Runner) cmd(c ast.Command) {
	switch x := c.(type) {
	case *ast.Simple:
		r.simple(x)
	case *ast.Subshell:
		r.subshell(x)
	case *ast.BraceGroup:
		r.list(x.Body)
	case *ast.If:
		r.ifCmd(x)
	case *ast.While:
		r.whileCmd(x)
	case *ast.Until:
		r.untilCmd(x)
	case *ast.For:
		r.forCmd(x)
	case *ast.CStyleFor:
		r.cstyleFor(x)
	case *ast.Case:
		r.caseCmd(x)
	case *ast.FunctionDef:
		r.funcs[x.Name] = x
		r.exit = 0
		r.Scope.SetLastStatus(0)
	case *ast.Arithmetic:
		r.arithCmd(x)
	case *ast.Conditional:
		r.condCmd(x)
	case *ast.Background:
		r.backgroundCommand(x.Cmd)
	case *ast.Time:
		r.timeCmd(x)
	case *ast.Coproc:
		r.coprocCmd(x)
	default:
		r.exit = 126
		r.Scope.SetLastStatus(126)
	}
}

func (r *Runner) simple(x *ast.Simple) {
	cfg := r.expandConfig()
	argv, err := expand.Fields(cfg, x.Words)
	if err != nil {
		r.writeOut(r.stderr, err.Error()+"\n")
		r.exit = 1
		r.Scope.SetLastStatus(1)
		return
	}
	if len(argv) == 0 {
		r.exit = 0
		r.Scope.SetLastStatus(0)
		return
	}
	if err := r.Limiter.Command(); err != nil {
		r.fatalErr = err
		r.exiting = true
		return
	}
	r.call(argv)
}

func (r *Runner) subshell(x *ast.Subshell) {
	if err := r.Limiter.EnterFrame(); err != nil {
		r.fatalErr = err
		r.exiting = true
		return
	}
	defer r.Limiter.LeaveFrame()
	sub := r.cloneForSubshell()
	sub.list(x.Body)
	r.exit = sub.exit
	r.Scope.SetLastStatus(r.exit)
	if sub.fatalErr != nil {
		r.fatalErr = sub.fatalErr
		r.exiting = true
	}
}

func (r *Runner) ifCmd(x *ast.If) {
	r.list(x.Cond)
	if r.stop() {
		return
	}
	if r.exit == 0 {
		r.list(x.Then)
		return
	}
	for _, e := range x.Elifs {
		r.list(e.Cond)
		if r.stop() {
			return
		}
		if r.exit == 0 {
			r.list(e.Then)
			return
		}
	}
	if x.Else != nil {
		r.list(x.Else)
		return
	}
	r.exit = 0
	r.Scope.SetLastStatus(0)
}

func (r *Runner) whileCmd(x *ast.While) {
	for {
		if r.stop() {
			return
		}
		r.list(x.Cond)
		if r.stop() || r.exit != 0 {
			if !r.stop() {
				r.exit = 0
				r.Scope.SetLastStatus(0)
			}
			return
		}
		if err := r.Limiter.LoopIteration(); err != nil {
			r.fatalErr = err
			r.exiting = true
			return
		}
		r.list(x.Body)
		if r.handleLoopSignal() {
			return
		}
	}
}

func (r *Runner) untilCmd(x *ast.Until) {
	for {
		if r.stop() {
			return
		}
		r.list(x.Cond)
		if r.stop() {
			return
		}
		if r.exit == 0 {
			r.exit = 0
			r.Scope.SetLastStatus(0)
			return
		}
		if err := r.Limiter.LoopIteration(); err != nil {
			r.fatalErr = err
			r.exiting = true
			return
		}
		r.list(x.Body)
		if r.handleLoopSignal() {
			return
		}
	}
}

func (r *Runner) forCmd(x *ast.For) {
	cfg := r.expandConfig()
	var words []string
	if x.HasIn {
		fields, err := expand.Fields(cfg, x.Words)
		if err != nil {
			r.writeOut(r.stderr, err.Error()+"\n")
			r.exit = 1
			r.Scope.SetLastStatus(1)
			return
		}
		words = fields
	} else {
		words = r.Scope.Positional()
	}
	for _, w := range words {
		if r.stop() {
			return
		}
		if err := r.Limiter.LoopIteration(); err != nil {
			r.fatalErr = err
			r.exiting = true
			return
		}
		r.Scope.Set(x.Name.Value, scopeScalar(w))
		r.list(x.Body)
		if r.handleLoopSignal() {
			return
		}
	}
	if !r.stop() {
		r.exit = 0
		r.Scope.SetLastStatus(0)
	}
}

func (r *Runner) cstyleFor(x *ast.CStyleFor) {
	cfg := r.expandConfig()
	if x.Init != nil {
		if _, err := expand.Arith(cfg, x.Init); err != nil {
			r.writeOut(r.stderr, err.Error()+"\n")
			r.exit = 1
			r.Scope.SetLastStatus(1)
			return
		}
	}
	for {
		if r.stop() {
			return
		}
		if x.Cond != nil {
			n, err := expand.Arith(cfg, x.Cond)
			if err != nil {
				r.writeOut(r.stderr, err.Error()+"\n")
				r.exit = 1
				r.Scope.SetLastStatus(1)
				return
			}
			if n == 0 {
				r.exit = 0
				r.Scope.SetLastStatus(0)
				return
			}
		}
		if err := r.Limiter.LoopIteration(); err != nil {
			r.fatalErr = err
			r.exiting = true
			return
		}
		r.list(x.Body)
		if r.handleLoopSignal() {
			return
		}
		if x.Post != nil {
			if _, err := expand.Arith(cfg, x.Post); err != nil {
				r.writeOut(r.stderr, err.Error()+"\n")
				r.exit = 1
				r.Scope.SetLastStatus(1)
				return
			}
		}
	}
}

func (r *Runner) arithCmd(x *ast.Arithmetic) {
	cfg := r.expandConfig()
	n, err := expand.Arith(cfg, x.X)
	if err != nil {
		r.writeOut(r.stderr, err.Error()+"\n")
		r.exit = 1
		r.Scope.SetLastStatus(1)
		return
	}
	if n != 0 {
		r.exit = 0
	} else {
		r.exit = 1
	}
	r.Scope.SetLastStatus(r.exit)
}

func (r *Runner) condCmd(x *ast.Conditional) {
	cfg := r.expandConfig()
	ok, err := r.evalCond(cfg, x.X)
	if err != nil {
		r.writeOut(r.stderr, err.Error()+"\n")
		r.exit = 2
		r.Scope.SetLastStatus(2)
		return
	}
	if ok {
		r.exit = 0
	} else {
		r.exit = 1
	}
	r.Scope.SetLastStatus(r.exit)
}

// backgroundCommand runs one Command as a background job via background.
// It backs the ast.Background node and coprocCmd; a `&` list separator is
// handled by list() via SepAmp instead.
func (r *Runner) backgroundCommand(c ast.Command) {
	wrapped := &ast.AndOr{Pipe: &ast.Pipeline{Elements: []*ast.Stmt{{Cmd: c}}}}
	r.background(wrapped)
}

// timeCmd runs its wrapped command (or nothing, for a bare `time`) and
// reports elapsed wall-clock time to stderr: in `time -p`'s "real N.NN"
// format when Posix is set, otherwise in bash's "real\tXmY.YYYs" format;
// the sandbox has no real CPU clock, so only wall time is meaningful here.
func (r *Runner) timeCmd(x *ast.Time) {
	start := timeNow()
	if x.Cmd != nil {
		r.cmd(x.Cmd)
	} else {
		r.exit = 0
		r.Scope.SetLastStatus(0)
	}
	elapsed := timeNow().Sub(start)
	if x.Posix {
		r.writeOut(r.stderr, fmt.Sprintf("real %.2f\n", elapsed.Seconds()))
	} else {
		r.writeOut(r.stderr, fmt.Sprintf("\nreal\t%s\n", formatDuration(elapsed)))
	}
}

// coprocCmd runs its wrapped command as an ordinary background command
// (ast.Coproc's own doc comment: no real bidirectional pipe exists), and
// if named, exposes the job's pseudo-PID as NAME_PID the way bash's
// coproc does.
func (r *Runner) coprocCmd(x *ast.Coproc) {
	r.backgroundCommand(x.Cmd)
	if x.Name != "" {
		r.Scope.Set(x.Name+"_PID", scopeScalar(itoa(r.Scope.LastBackgroundPID())))
	}
}
