package builtin

import (
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/scope"
)

func registerIO(r *Registry) {
	r.Register("echo", echoBuiltin)
	r.Register("printf", printfBuiltin)
	r.Register("read", readBuiltin)
}

// echoBuiltin implements the `echo` builtin: `-n` suppresses the
// trailing newline, `-e` turns on backslash-escape interpretation
// (`-E` turns it back off, and is bash's default), matching GNU bash's
// non-POSIX `echo` rather than the strict xpg_echo variant.
func echoBuiltin(ctx *Ctx, argv []string) Result {
	newline := true
	escapes := false
	i := 0
loop:
	for i < len(argv) {
		switch argv[i] {
		case "-n":
			newline = false
		case "-e":
			escapes = true
		case "-E":
			escapes = false
		default:
			break loop
		}
		i++
	}
	parts := argv[i:]
	out := strings.Join(parts, " ")
	if escapes {
		out, newline = interpretEchoEscapes(out, newline)
	}
	if newline {
		out += "\n"
	}
	return okResult(out)
}

// interpretEchoEscapes processes the backslash escapes `echo -e`
// recognizes; `\c` stops all further output (including the trailing
// newline) right where it appears.
func interpretEchoEscapes(s string, newline bool) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch next {
		case 'n':
			sb.WriteByte('\n')
			i++
		case 't':
			sb.WriteByte('\t')
			i++
		case 'r':
			sb.WriteByte('\r')
			i++
		case 'a':
			sb.WriteByte('\a')
			i++
		case 'b':
			sb.WriteByte('\b')
			i++
		case 'f':
			sb.WriteByte('\f')
			i++
		case 'v':
			sb.WriteByte('\v')
			i++
		case '\\':
			sb.WriteByte('\\')
			i++
		case 'c':
			return sb.String(), false
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), newline
}

// printfBuiltin implements a practical subset of `printf`: %s, %d, %i,
// %c, %%, with an optional field width, recycling the format string
// over any extra arguments the way bash's printf does.
func printfBuiltin(ctx *Ctx, argv []string) Result {
	if len(argv) == 0 {
		return usage("printf", "usage: printf format [arguments]")
	}
	format := unescapePrintfFormat(argv[0])
	args := argv[1:]

	var out strings.Builder
	ai := 0
	nextArg := func() string {
		if ai < len(args) {
			s := args[ai]
			ai++
			return s
		}
		return ""
	}

	applyOnce := func() {
		for i := 0; i < len(format); i++ {
			c := format[i]
			if c != '%' || i == len(format)-1 {
				out.WriteByte(c)
				continue
			}
			j := i + 1
			for j < len(format) && (format[j] == '-' || (format[j] >= '0' && format[j] <= '9')) {
				j++
			}
			if j >= len(format) {
				out.WriteByte(c)
				continue
			}
			width := format[i+1 : j]
			switch format[j] {
			case '%':
				out.WriteByte('%')
			case 's':
				out.WriteString(padPrintf(nextArg(), width))
			case 'd', 'i':
				n, _ := strconv.ParseInt(strings.TrimSpace(nextArg()), 10, 64)
				out.WriteString(padPrintf(strconv.FormatInt(n, 10), width))
			case 'c':
				a := nextArg()
				if len(a) > 0 {
					out.WriteByte(a[0])
				}
			default:
				out.WriteByte('%')
				out.WriteByte(format[j])
			}
			i = j
		}
	}

	if len(args) == 0 {
		applyOnce()
	}
	for ai < len(args) {
		before := ai
		applyOnce()
		if ai == before {
			break // format string consumes no args; avoid an infinite loop
		}
	}
	return okResult(out.String())
}

func padPrintf(s, width string) string {
	if width == "" {
		return s
	}
	left := strings.HasPrefix(width, "-")
	w, _ := strconv.Atoi(strings.TrimPrefix(width, "-"))
	for len(s) < w {
		if left {
			s = s + " "
		} else {
			s = " " + s
		}
	}
	return s
}

func unescapePrintfFormat(f string) string {
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, "\\", `\r`, "\r")
	return r.Replace(f)
}

// readBuiltin consumes up to the delimiter (a newline, or the byte
// given by -d) of ctx.Stdin, splits it on IFS into fields, and assigns
// them to the named variables (the last name absorbs any remaining
// fields, matching bash). Result.Consumed tells the evaluator how much
// of Stdin to drop before the next read.
//
// Recognized flags: -r (raw — no-op here since backslash escapes are
// never interpreted in a read line regardless), -a name (assign fields
// into an indexed array instead of separate names), -d delim (custom
// delimiter byte instead of newline), -s/-p/-t/-n/-N/-u (accepted and
// consumed, but meaningless without a real terminal/fd/clock, so
// ignored beyond not being mistaken for a variable name).
func readBuiltin(ctx *Ctx, argv []string) Result {
	var arrayName string
	delim := byte('\n')
	i := 0
loop:
	for i < len(argv) {
		switch argv[i] {
		case "-r", "-s", "-e":
		case "-a":
			i++
			if i < len(argv) {
				arrayName = argv[i]
			}
		case "-d":
			i++
			if i < len(argv) && len(argv[i]) > 0 {
				delim = argv[i][0]
			}
		case "-p", "-t", "-n", "-N", "-u":
			i++ // discard the flag's argument
		default:
			break loop
		}
		i++
	}
	names := argv[i:]
	if arrayName == "" && len(names) == 0 {
		names = []string{"REPLY"}
	}

	nl := indexByte(ctx.Stdin, delim)
	var line []byte
	consumed := len(ctx.Stdin)
	if nl >= 0 {
		line = ctx.Stdin[:nl]
		consumed = nl + 1
	} else {
		line = ctx.Stdin
	}
	if len(line) == 0 && nl < 0 {
		return Result{Exit: 1, Consumed: consumed}
	}

	ifs := " \t\n"
	if v, ok := ctx.Scope.Get("IFS"); ok {
		ifs = v.Value.String()
	}
	fields := splitOnIFS(string(line), ifs)

	if arrayName != "" {
		arr := scope.NewIndexedArray()
		for idx, f := range fields {
			arr.SetIndex(idx, f)
		}
		ctx.Scope.Set(arrayName, arr)
		return Result{Exit: 0, Consumed: consumed}
	}

	for i, name := range names {
		if i == len(names)-1 && len(fields) > i {
			assignScalar(ctx, name, strings.Join(fields[i:], " "))
		} else if i < len(fields) {
			assignScalar(ctx, name, fields[i])
		} else {
			assignScalar(ctx, name, "")
		}
	}
	return Result{Exit: 0, Consumed: consumed}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func splitOnIFS(s, ifs string) []string {
	if ifs == "" {
		return []string{s}
	}
	return strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(ifs, r) })
}
