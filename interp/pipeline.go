package interp

import (
	"bytes"

	"github.com/everruns/bashkit-sub001/ast"
)

// pipeline runs a Pipeline of one or more Stmts. Per spec.md §5 ("Pipes
// are whole-buffer by default, not streaming"), each non-final stage
// runs to completion with its stdout captured into a buffer that becomes
// the next stage's stdin, rather than the teacher's concurrent
// io.Pipe+goroutine plumbing — there is no partial-output interleaving
// to preserve once nothing streams.
func (r *Runner) pipeline(p *ast.Pipeline) {
	if p == nil || len(p.Elements) == 0 {
		return
	}
	statuses := make([]int, len(p.Elements))
	nextStdin := r.stdin
	realStdout := r.stdout
	for i, s := range p.Elements {
		if r.stop() {
			for j := i; j < len(statuses); j++ {
				statuses[j] = statuses[i-1]
			}
			break
		}
		last := i == len(p.Elements)-1
		var buf bytes.Buffer
		if !last {
			r.stdout = &buf
		} else {
			r.stdout = realStdout
		}
		r.stdin = nextStdin
		r.stmt(s)
		statuses[i] = r.exit
		nextStdin = buf.Bytes()
	}
	r.stdout = realStdout

	r.Scope.SetPipestatus(statuses)
	status := statuses[len(statuses)-1]
	if r.Options.Set("pipefail") {
		for _, st := range statuses {
			if st != 0 {
				status = st
			}
		}
	}
	if p.Bang {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
	}
	r.exit = status
	r.Scope.SetLastStatus(r.exit)
}

// background runs an entire AndOr synchronously to completion in a
// cloned view, staging its output into the virtual job table keyed by a
// sequential pseudo-PID (spec.md §5), then continues the foreground
// script immediately; $! reads back the pseudo-PID, `wait`/`jobs` read
// back its recorded exit status.
func (r *Runner) background(a *ast.AndOr) {
	if a == nil {
		return
	}
	if err := r.Limiter.EnterFrame(); err != nil {
		r.fatalErr = err
		r.exiting = true
		return
	}
	defer r.Limiter.LeaveFrame()

	sub := r.cloneForSubshell()
	var out bytes.Buffer
	sub.stdout = &out
	sub.andOr(a)

	pid := r.jobs.record(jobCommandText(a), sub.exit, out.Bytes())
	r.Scope.SetLastBackgroundPID(pid)

	r.exit = 0
	r.Scope.SetLastStatus(0)
}

func jobCommandText(a *ast.AndOr) string {
	if a == nil {
		return ""
	}
	if a.Pipe != nil && len(a.Pipe.Elements) > 0 {
		if sp, ok := a.Pipe.Elements[0].Cmd.(*ast.Simple); ok && len(sp.Words) > 0 {
			if lit, ok := sp.Words[0].Parts[0].(*ast.Literal); ok {
				return lit.Value
			}
		}
	}
	return "command"
}
