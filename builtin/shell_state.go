package builtin

import (
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

func registerShellState(r *Registry) {
	r.Register("cd", cdBuiltin)
	r.Register("pwd", pwdBuiltin)
	r.Register("trap", trapBuiltin)
	r.Register("shopt", shoptBuiltin)
	r.Register("alias", aliasBuiltin)
	r.Register("unalias", unaliasBuiltin)
	r.Register("eval", evalBuiltin)
	r.Register("source", sourceBuiltin)
	r.Register(".", sourceBuiltin)
}

func cdBuiltin(ctx *Ctx, argv []string) Result {
	target := "/"
	if v, ok := ctx.Scope.Get("HOME"); ok {
		target = v.Value.String()
	}
	switch {
	case len(argv) == 0:
		// target already defaults to $HOME
	case argv[0] == "-":
		if v, ok := ctx.Scope.Get("OLDPWD"); ok {
			target = v.Value.String()
		} else {
			return fail(1, "cd: OLDPWD not set")
		}
	default:
		target = argv[0]
	}

	resolved := vfs.ResolvePath(ctx.Cwd(), target)
	meta, err := ctx.VFS.Metadata(resolved)
	if err != nil {
		return fail(1, "cd: "+target+": no such file or directory")
	}
	if meta.Kind != vfs.KindDir {
		return fail(1, "cd: "+target+": not a directory")
	}
	ctx.Scope.Set("OLDPWD", scope.NewScalar(ctx.Cwd()))
	ctx.Scope.Set("PWD", scope.NewScalar(resolved))
	return Result{Exit: 0}
}

func pwdBuiltin(ctx *Ctx, argv []string) Result {
	return okResult(ctx.Cwd() + "\n")
}

// trapBuiltin stores handler text keyed by pseudo-signal/signal name;
// `trap -- cmd NAME...` registers cmd for every NAME, `trap - NAME...`
// clears those traps, `trap NAME` (a single name, no command) clears
// that one trap, and a bare `trap` lists the current table.
func trapBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Traps == nil {
		return Result{Exit: 0}
	}
	i := 0
	if i < len(argv) && argv[i] == "--" {
		i++
	}
	if i >= len(argv) {
		var out string
		for _, name := range ctx.Traps.Names() {
			cmd, _ := ctx.Traps.Get(name)
			out += "trap -- '" + cmd + "' " + name + "\n"
		}
		return okResult(out)
	}
	if len(argv)-i == 1 {
		ctx.Traps.Unset(argv[i])
		return Result{Exit: 0}
	}
	cmd := argv[i]
	for _, name := range argv[i+1:] {
		if cmd == "-" {
			ctx.Traps.Unset(name)
		} else {
			ctx.Traps.Set(name, cmd)
		}
	}
	return Result{Exit: 0}
}

// shoptBuiltin implements the `shopt_s`/`shopt -u` subset of spec.md
// §4.F: expand_aliases, extglob, nullglob, failglob, dotglob,
// nocaseglob, globstar.
func shoptBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Options == nil {
		return Result{Exit: 0}
	}
	on := true
	i := 0
	if i < len(argv) && (argv[i] == "-s" || argv[i] == "-u") {
		on = argv[i] == "-s"
		i++
	}
	if i >= len(argv) {
		var out string
		for _, name := range shoptOptionNames {
			state := "off"
			if ctx.Options.Shopt(name) {
				state = "on"
			}
			out += name + "\t" + state + "\n"
		}
		return okResult(out)
	}
	for _, name := range argv[i:] {
		if !isShoptOption(name) {
			return fail(1, "shopt: "+name+": invalid shell option name")
		}
		ctx.Options.SetShopt(name, on)
	}
	return Result{Exit: 0}
}

func aliasBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Aliases == nil {
		return Result{Exit: 0}
	}
	if len(argv) == 0 {
		var out string
		for _, name := range ctx.Aliases.Names() {
			text, _ := ctx.Aliases.Get(name)
			out += "alias " + name + "='" + text + "'\n"
		}
		return okResult(out)
	}
	var out string
	exit := 0
	for _, arg := range argv {
		name, text, hasValue := splitAssign(arg)
		if !hasValue {
			text, ok := ctx.Aliases.Get(name)
			if !ok {
				exit = 1
				continue
			}
			out += "alias " + name + "='" + text + "'\n"
			continue
		}
		ctx.Aliases.Set(name, text)
	}
	return Result{Stdout: out, Exit: exit}
}

func unaliasBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Aliases == nil {
		return Result{Exit: 0}
	}
	for _, name := range argv {
		if name == "-a" {
			for _, n := range ctx.Aliases.Names() {
				ctx.Aliases.Unset(n)
			}
			continue
		}
		ctx.Aliases.Unset(name)
	}
	return Result{Exit: 0}
}

func evalBuiltin(ctx *Ctx, argv []string) Result {
	if ctx.Eval == nil {
		return fail(1, "eval: not supported in this context")
	}
	script := joinArgs(argv)
	return ctx.Eval(script)
}

// sourceBuiltin implements `source`/`.`: read the named VFS file and
// run its contents through Ctx.Eval in the current scope (so
// assignments/function definitions persist in the caller), matching
// bash's "runs in the current shell context" semantics.
func sourceBuiltin(ctx *Ctx, argv []string) Result {
	if len(argv) == 0 {
		return usage("source", "filename argument required")
	}
	if ctx.Eval == nil {
		return fail(1, "source: not supported in this context")
	}
	path := vfs.ResolvePath(ctx.Cwd(), argv[0])
	data, err := ctx.VFS.Read(path)
	if err != nil {
		return fail(1, "source: "+argv[0]+": no such file or directory")
	}
	prevPositional := ctx.Scope.Positional()
	if len(argv) > 1 {
		ctx.Scope.SetPositional(argv[1:])
	}
	res := ctx.Eval(string(data))
	ctx.Scope.SetPositional(prevPositional)
	return res
}

func joinArgs(argv []string) string {
	out := ""
	for i, a := range argv {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
