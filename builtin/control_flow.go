package builtin

import "strconv"

func registerControlFlow(r *Registry) {
	r.Register(":", noop)
	r.Register("true", noop)
	r.Register("false", alwaysFalse)
	r.Register("exit", exitBuiltin)
	r.Register("return", returnBuiltin)
	r.Register("break", breakBuiltin)
	r.Register("continue", continueBuiltin)
	r.Register("wait", waitBuiltin)
	r.Register("jobs", jobsBuiltin)
}

func noop(ctx *Ctx, argv []string) Result        { return Result{Exit: 0} }
func alwaysFalse(ctx *Ctx, argv []string) Result { return Result{Exit: 1} }

func exitBuiltin(ctx *Ctx, argv []string) Result {
	code := ctx.Scope.LastStatus()
	if len(argv) > 0 {
		n, err := strconv.Atoi(argv[0])
		if err != nil {
			return usage("exit", "numeric argument required")
		}
		code = n & 0xff
	}
	return Result{Exit: code, Signal: SignalExit, N: code}
}

func returnBuiltin(ctx *Ctx, argv []string) Result {
	code := ctx.Scope.LastStatus()
	if len(argv) > 0 {
		n, err := strconv.Atoi(argv[0])
		if err != nil {
			return usage("return", "numeric argument required")
		}
		code = n & 0xff
	}
	return Result{Exit: code, Signal: SignalReturn, N: code}
}

func breakBuiltin(ctx *Ctx, argv []string) Result {
	n := unwindCount(argv)
	return Result{Exit: 0, Signal: SignalBreak, N: n}
}

func continueBuiltin(ctx *Ctx, argv []string) Result {
	n := unwindCount(argv)
	return Result{Exit: 0, Signal: SignalContinue, N: n}
}

func unwindCount(argv []string) int {
	if len(argv) == 0 {
		return 1
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func waitBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Jobs == nil {
		return Result{Exit: 0}
	}
	if len(argv) == 0 {
		statuses := ctx.Jobs.WaitAll()
		last := 0
		if len(statuses) > 0 {
			last = statuses[len(statuses)-1]
		}
		return Result{Exit: last}
	}
	pid, err := strconv.Atoi(argv[0])
	if err != nil {
		return usage("wait", "pid argument required: "+argv[0])
	}
	status, found := ctx.Jobs.Wait(pid)
	if !found {
		return fail(127, "wait: pid "+argv[0]+" is not a child of this shell")
	}
	return Result{Exit: status}
}

func jobsBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Jobs == nil {
		return Result{Exit: 0}
	}
	var out string
	for _, j := range ctx.Jobs.List() {
		state := "Done"
		if j.Running {
			state = "Running"
		}
		out += "[" + strconv.Itoa(j.PID) + "]  " + state + "                 " + j.Command + "\n"
	}
	return okResult(out)
}
