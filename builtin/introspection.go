package builtin

import (
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/scope"
)

func registerIntrospection(r *Registry) {
	r.Register("type", typeBuiltin)
	r.Register("command", commandBuiltin)
	r.Register("hash", hashBuiltin)
	r.Register("times", timesBuiltin)
	r.Register("getopts", getoptsBuiltin)
	r.Register("caller", callerBuiltin)
}

func describe(ctx *Ctx, name string) (kind, detail string, found bool) {
	if ctx.Funcs != nil && ctx.Funcs(name) {
		return "function", name + " is a function", true
	}
	if ctx.Reg != nil && ctx.Reg.IsBuiltin(name) {
		return "builtin", name + " is a shell builtin", true
	}
	if ctx.LookupPath != nil {
		if path, ok := ctx.LookupPath(name); ok {
			return "file", name + " is " + path, true
		}
	}
	return "", "", false
}

func typeBuiltin(ctx *Ctx, argv []string) Result {
	var out string
	exit := 0
	for _, name := range argv {
		_, detail, found := describe(ctx, name)
		if !found {
			return fail(1, name+": not found")
		}
		out += detail + "\n"
	}
	return Result{Stdout: out, Exit: exit}
}

// commandBuiltin implements `command [-v|-V] name [args...]`: with
// `-v`/`-V` it reports what name resolves to (like `type`, but terser
// for `-v`) instead of executing it; bare `command name args...` is the
// evaluator's job (bypass function lookup and run as external/builtin
// directly), which this package cannot do on its own, so it is left for
// the evaluator to special-case before ever reaching the registry.
func commandBuiltin(ctx *Ctx, argv []string) Result {
	if len(argv) == 0 {
		return Result{Exit: 0}
	}
	switch argv[0] {
	case "-v":
		if len(argv) < 2 {
			return usage("command", "-v requires a name")
		}
		_, _, found := describe(ctx, argv[1])
		if !found {
			return Result{Exit: 1}
		}
		if ctx.LookupPath != nil {
			if path, ok := ctx.LookupPath(argv[1]); ok {
				return okResult(path + "\n")
			}
		}
		return okResult(argv[1] + "\n")
	case "-V":
		if len(argv) < 2 {
			return usage("command", "-V requires a name")
		}
		_, detail, found := describe(ctx, argv[1])
		if !found {
			return fail(1, argv[1]+": not found")
		}
		return okResult(detail + "\n")
	}
	return Result{Exit: 0}
}

func hashBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Hash == nil {
		return Result{Exit: 0}
	}
	if len(argv) == 0 {
		var out string
		for _, name := range ctx.Hash.Names() {
			path, _ := ctx.Hash.Lookup(name)
			out += path + "\t" + name + "\n"
		}
		return okResult(out)
	}
	if argv[0] == "-r" {
		ctx.Hash.Clear()
		return Result{Exit: 0}
	}
	for _, name := range argv {
		if ctx.LookupPath != nil {
			if path, ok := ctx.LookupPath(name); ok {
				ctx.Hash.Remember(name, path)
				continue
			}
		}
		return fail(1, "hash: "+name+": not found")
	}
	return Result{Exit: 0}
}

// timesBuiltin reports cumulative process times; the sandbox has no
// real CPU clock to sample (spec.md §1 Non-goals: no real process
// execution), so it always reports zero — documented rather than
// fabricated.
func timesBuiltin(ctx *Ctx, argv []string) Result {
	return okResult("0m0.000s 0m0.000s\n0m0.000s 0m0.000s\n")
}

func callerBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.CallerInfo == nil {
		return fail(1, "")
	}
	frames := ctx.CallerInfo()
	if len(frames) == 0 {
		return Result{Exit: 1}
	}
	idx := 0
	if len(argv) > 0 {
		n, err := strconv.Atoi(argv[0])
		if err != nil || n < 0 || n >= len(frames) {
			return Result{Exit: 1}
		}
		idx = n
	}
	f := frames[idx]
	return okResult(strconv.Itoa(f.Line) + " " + f.Name + " " + f.Source + "\n")
}

// getoptsBuiltin implements `getopts optstring name [arg...]`, parsing
// one option per call from the positional parameters (or an explicit
// arg list) and tracking progress via the $OPTIND/$OPTARG special
// variables, as bash's builtin does. A leading ':' in optstring selects
// silent error reporting. Each argument yields one option: a grouped
// argument such as `-ab` reports only its first option letter.
func getoptsBuiltin(ctx *Ctx, argv []string) Result {
	if len(argv) < 2 {
		return usage("getopts", "usage: getopts optstring name [arg...]")
	}
	optstring := argv[0]
	name := argv[1]
	args := argv[2:]
	if len(args) == 0 {
		args = ctx.Scope.Positional()
	}

	optind := 1
	if v, ok := ctx.Scope.Get("OPTIND"); ok {
		if n, err := strconv.Atoi(v.Value.String()); err == nil && n > 0 {
			optind = n
		}
	}
	silent := strings.HasPrefix(optstring, ":")

	if optind-1 >= len(args) {
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind)))
		return Result{Exit: 1}
	}
	arg := args[optind-1]
	if len(arg) == 0 || arg[0] != '-' || arg == "-" {
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind)))
		return Result{Exit: 1}
	}
	if arg == "--" {
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind+1)))
		return Result{Exit: 1}
	}

	c := arg[1]
	pos := strings.IndexByte(optstring, c)
	if pos < 0 {
		ctx.Scope.Set(name, scope.NewScalar("?"))
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind+1)))
		if silent {
			ctx.Scope.Set("OPTARG", scope.NewScalar(string(c)))
			return Result{Exit: 0}
		}
		ctx.Scope.Unset("OPTARG")
		return Result{Exit: 0, Stderr: "illegal option -- " + string(c)}
	}

	needsArg := pos+1 < len(optstring) && optstring[pos+1] == ':'
	if !needsArg {
		ctx.Scope.Set(name, scope.NewScalar(string(c)))
		ctx.Scope.Unset("OPTARG")
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind+1)))
		return Result{Exit: 0}
	}

	if len(arg) > 2 {
		ctx.Scope.Set("OPTARG", scope.NewScalar(arg[2:]))
		ctx.Scope.Set(name, scope.NewScalar(string(c)))
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind+1)))
		return Result{Exit: 0}
	}
	if optind >= len(args) {
		ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind+1)))
		if silent {
			ctx.Scope.Set(name, scope.NewScalar(":"))
			ctx.Scope.Set("OPTARG", scope.NewScalar(string(c)))
			return Result{Exit: 0}
		}
		ctx.Scope.Set(name, scope.NewScalar("?"))
		ctx.Scope.Unset("OPTARG")
		return Result{Exit: 0, Stderr: "option requires an argument -- " + string(c)}
	}
	ctx.Scope.Set("OPTARG", scope.NewScalar(args[optind]))
	ctx.Scope.Set(name, scope.NewScalar(string(c)))
	ctx.Scope.Set("OPTIND", scope.NewScalar(strconv.Itoa(optind+2)))
	return Result{Exit: 0}
}
