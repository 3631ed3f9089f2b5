// Package builtin implements the static name→handler table of
// spec.md §4.G: the dispatch contract every builtin command conforms to,
// plus the ambient set of builtins (cd, echo, export, read, set, trap,
// ...) a realistic script relies on. Per-builtin logic beyond this
// ambient set (jq, awk, sed, grep, sort, ...) is explicitly out of
// scope — the contract and these integration points are what matters.
package builtin

import (
	"sort"

	"github.com/everruns/bashkit-sub001/sandbox"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

// Signal tells the evaluator that a builtin altered control flow beyond
// a plain exit status — break/continue/return/exit all run as ordinary
// builtins but need the evaluator to unwind something the builtin
// itself has no access to (the loop stack, the call stack, the script).
type Signal int

const (
	SignalNone Signal = iota
	SignalBreak
	SignalContinue
	SignalReturn
	SignalExit
)

// Result is a builtin handler's full outcome: spec.md §4.G's
// "(stdout, stderr, exit, error)" contract, plus the Signal/N pair an
// evaluator needs to honor break/continue/return/exit.
type Result struct {
	Stdout string
	Stderr string
	Exit   int
	Err    error

	Signal Signal
	N      int // loop/frame unwind count for Signal{Break,Continue,Return,Exit}

	// Consumed is how many leading bytes of Ctx.Stdin this call read,
	// for `read`: the evaluator advances its stdin cursor by this much
	// before the next read/read-in-a-loop call.
	Consumed int
}

// Ctx is everything a builtin handler may touch: VFS access mediated
// through path resolution that honors PWD, the variable stack, the
// sandbox limiter (for output-byte accounting on large echo/printf/read
// bodies), and the argv0-less argument list plus piped-in stdin bytes.
type Ctx struct {
	VFS     *vfs.FS
	Scope   *scope.Stack
	Limiter *sandbox.Limiter
	Stdin   []byte

	// Cwd returns the shell's current working directory; builtins
	// resolve relative paths against it via vfs.ResolvePath rather than
	// reading $PWD directly, so a registry test can fake it without a
	// full scope.Stack round trip.
	Cwd func() string

	// Aliases/Traps/Options are the small bits of interpreter state a
	// handful of builtins (alias/unalias, trap, shopt, set) read and
	// write; they live in the evaluator (package interp) and are handed
	// down by reference so changes are visible immediately.
	Aliases *AliasTable
	Traps   *TrapTable
	Options *OptionTable

	// Funcs reports whether name is a currently-defined function, for `type`/
	// `command -v` to report "name is a function" correctly.
	Funcs func(name string) bool

	// CallerInfo returns the current call stack's (line, subroutine,
	// source) frames, nearest caller first, for the `caller` builtin.
	CallerInfo func() []CallerFrame

	// Eval runs script text through the full lexer→parser→evaluator
	// pipeline in the current scope, for `eval`/`source`/`.`; it is
	// wired by package interp (which imports builtin), keeping builtin
	// itself free of a dependency on the evaluator.
	Eval func(script string) Result

	// Jobs is the virtual background-job table of spec.md §5 ("stage
	// their output into a holding buffer keyed by a sequential
	// pseudo-PID"), read by `wait`/`jobs`/`$!`.
	Jobs JobSource

	// Reg points back at the Registry this Ctx is being dispatched
	// through, for `type`/`command -v` to tell "name is a shell
	// builtin" apart from "name is a function" or an external command.
	Reg *Registry

	// Hash remembers resolved command paths for the `hash` builtin.
	Hash *HashTable

	// LookupPath searches $PATH (mediated through the VFS, honoring the
	// executable-bit resolution of spec.md §9) for name, the shared
	// helper `type`/`command -v`/`hash` and the evaluator's own command
	// resolution all use.
	LookupPath func(name string) (string, bool)
}

// CallerFrame is one frame `caller` reports.
type CallerFrame struct {
	Line   int
	Name   string
	Source string
}

// JobInfo is one row of the virtual background-job table.
type JobInfo struct {
	PID     int
	Running bool
	Exit    int
	Command string
}

// JobSource is the read interface `wait`/`jobs` need onto the
// evaluator-owned job table; package interp supplies the concrete
// implementation.
type JobSource interface {
	List() []JobInfo
	Wait(pid int) (exit int, found bool)
	WaitAll() []int
}

// Handler is the single contract spec.md §4.G names: every builtin is a
// func(ctx, argv) → Result, argv[0] excluded (the registry already
// dispatched on it).
type Handler func(ctx *Ctx, argv []string) Result

// Registry is the static name→handler table.
type Registry struct {
	handlers map[string]Handler
}

// New returns a Registry pre-populated with every builtin this package
// implements (see the register* functions in control_flow.go, io.go,
// variables.go, shell_state.go and introspection.go).
func New() *Registry {
	r := &Registry{handlers: map[string]Handler{}}
	registerControlFlow(r)
	registerIO(r)
	registerVariables(r)
	registerShellState(r)
	registerIntrospection(r)
	return r
}

// Register adds or replaces the handler for name; an embedding host can
// use this to override or extend the ambient set (spec.md §6.3:
// "the only interface available to extensions").
func (r *Registry) Register(name string, h Handler) { r.handlers[name] = h }

// Lookup returns name's handler, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// IsBuiltin reports whether name is registered.
func (r *Registry) IsBuiltin(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns every registered builtin name, sorted, for `type -a`
// style introspection and tests.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func okResult(stdout string) Result    { return Result{Stdout: stdout, Exit: 0} }
func fail(code int, msg string) Result { return Result{Stderr: msg, Exit: code} }
func usage(name, msg string) Result {
	return Result{Stderr: name + ": " + msg, Exit: 2}
}
