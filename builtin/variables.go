package builtin

import (
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/scope"
)

func registerVariables(r *Registry) {
	r.Register("export", exportBuiltin)
	r.Register("unset", unsetBuiltin)
	r.Register("local", localBuiltin)
	r.Register("declare", declareBuiltin)
	r.Register("typeset", declareBuiltin)
	r.Register("set", setBuiltin)
	r.Register("shift", shiftBuiltin)
}

func assignScalar(ctx *Ctx, name, value string) {
	if name == "" {
		return
	}
	ctx.Scope.Set(name, scope.NewScalar(value))
}

// splitAssign divides "name=value" into its two halves; ok is false if
// arg has no '=' and therefore names a variable with no new value.
func splitAssign(arg string) (name, value string, ok bool) {
	i := strings.IndexByte(arg, '=')
	if i < 0 {
		return arg, "", false
	}
	return arg[:i], arg[i+1:], true
}

func exportBuiltin(ctx *Ctx, argv []string) Result {
	for _, arg := range argv {
		if arg == "-p" {
			continue
		}
		name, value, hasValue := splitAssign(arg)
		if hasValue {
			assignScalar(ctx, name, value)
		}
		ctx.Scope.SetFlags(name, scope.FlagExported)
	}
	return Result{Exit: 0}
}

func unsetBuiltin(ctx *Ctx, argv []string) Result {
	for _, name := range argv {
		if name == "-v" || name == "-f" {
			continue
		}
		ctx.Scope.Unset(name)
	}
	return Result{Exit: 0}
}

func localBuiltin(ctx *Ctx, argv []string) Result {
	for _, arg := range argv {
		name, value, hasValue := splitAssign(arg)
		v := scope.NewScalar(value)
		if !hasValue {
			if existing, ok := ctx.Scope.Get(name); ok {
				v = existing.Value
			} else {
				v = scope.NewScalar("")
			}
		}
		ctx.Scope.Declare(name, v, 0)
	}
	return Result{Exit: 0}
}

// declareBuiltin implements `declare`/`typeset`: `-x` exports, `-r`
// marks readonly, `-i` marks integer, `-a`/`-A` initialize an
// (associative) array, `-n` marks a nameref. Flags combine (e.g.
// `declare -xi COUNT=0`).
func declareBuiltin(ctx *Ctx, argv []string) Result {
	var flags scope.Flags
	var asArray, asAssoc bool
	i := 0
	for ; i < len(argv) && strings.HasPrefix(argv[i], "-"); i++ {
		for _, c := range argv[i][1:] {
			switch c {
			case 'x':
				flags |= scope.FlagExported
			case 'r':
				flags |= scope.FlagReadonly
			case 'i':
				flags |= scope.FlagInteger
			case 'n':
				flags |= scope.FlagNameref
			case 'a':
				asArray = true
			case 'A':
				asAssoc = true
			}
		}
	}
	for _, arg := range argv[i:] {
		name, value, hasValue := splitAssign(arg)
		switch {
		case asAssoc:
			ctx.Scope.Declare(name, scope.NewAssocArray(), flags|scope.FlagArray)
		case asArray:
			ctx.Scope.Declare(name, scope.NewIndexedArray(), flags|scope.FlagArray)
		case hasValue:
			ctx.Scope.Set(name, scope.NewScalar(value))
			if flags != 0 {
				ctx.Scope.SetFlags(name, flags)
			}
		default:
			if flags != 0 {
				ctx.Scope.SetFlags(name, flags)
			}
		}
	}
	return Result{Exit: 0}
}

// setBuiltin implements the subset of `set` spec.md §4.F names: `-e`
// (errexit), `-u` (nounset), `-o pipefail`, `-f` (noglob), `-x`
// (xtrace), plus bare positional-parameter reassignment (`set -- a b c`).
func setBuiltin(ctx *Ctx, argv []string) Result {
	i := 0
	sawSeparator := false
loop:
	for ; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			i++
			sawSeparator = true
			break loop
		case arg == "-o" && i+1 < len(argv):
			i++
			applySetOption(ctx, argv[i], true)
		case arg == "+o" && i+1 < len(argv):
			i++
			applySetOption(ctx, argv[i], false)
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			applySetShortFlags(ctx, arg[1:], true)
		case strings.HasPrefix(arg, "+") && len(arg) > 1:
			applySetShortFlags(ctx, arg[1:], false)
		default:
			break loop
		}
	}
	if sawSeparator || i < len(argv) {
		ctx.Scope.SetPositional(append([]string{}, argv[i:]...))
	}
	return Result{Exit: 0}
}

func applySetOption(ctx *Ctx, name string, on bool) {
	if ctx.Options != nil {
		ctx.Options.SetOpt(name, on)
	}
}

func applySetShortFlags(ctx *Ctx, flags string, on bool) {
	if ctx.Options == nil {
		return
	}
	for _, c := range flags {
		switch c {
		case 'e':
			ctx.Options.SetOpt("errexit", on)
		case 'u':
			ctx.Options.SetOpt("nounset", on)
		case 'f':
			ctx.Options.SetOpt("noglob", on)
		case 'x':
			ctx.Options.SetOpt("xtrace", on)
		}
	}
}

func shiftBuiltin(ctx *Ctx, argv []string) Result {
	n := 1
	if len(argv) > 0 {
		v, err := strconv.Atoi(argv[0])
		if err != nil {
			return usage("shift", "numeric argument required")
		}
		n = v
	}
	if !ctx.Scope.ShiftPositional(n) {
		return fail(1, "shift: shift count out of range")
	}
	return Result{Exit: 0}
}
