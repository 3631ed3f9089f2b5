// Package sandbox implements the four-counter resource limiter of
// spec.md §4.H: total commands, total loop iterations, function
// recursion depth, and cumulative output bytes. A breach aborts the
// current script with a distinguished LimitError; traps do not fire on
// a breach (spec.md §4.H).
package sandbox

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind identifies which counter a LimitError came from.
type Kind int

const (
	Commands Kind = iota
	LoopIterations
	RecursionDepth
	OutputBytes
)

func (k Kind) String() string {
	switch k {
	case Commands:
		return "command count"
	case LoopIterations:
		return "loop iteration count"
	case RecursionDepth:
		return "recursion depth"
	case OutputBytes:
		return "output byte count"
	default:
		return "unknown"
	}
}

// LimitError is the distinguished sandbox-level failure of spec.md §7
// ("Sandbox limit — distinguished kind; ExecResult.error is populated").
type LimitError struct {
	Kind  Kind
	Limit int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("bashkit: sandbox limit exceeded: %s capped at %d", e.Kind, e.Limit)
}

// Limits are the four caps, each configurable at interpreter creation
// (spec.md §4.H); zero means "use the documented default".
type Limits struct {
	MaxCommands        int64
	MaxLoopIterations  int64
	MaxRecursionDepth  int64
	MaxOutputBytes     int64
}

const (
	DefaultMaxCommands       = 10_000
	DefaultMaxLoopIterations = 100_000
	DefaultMaxRecursionDepth = 100
	DefaultMaxOutputBytes    = 10 * 1024 * 1024
)

// WithDefaults fills any zero field with its documented default.
func (l Limits) WithDefaults() Limits {
	if l.MaxCommands == 0 {
		l.MaxCommands = DefaultMaxCommands
	}
	if l.MaxLoopIterations == 0 {
		l.MaxLoopIterations = DefaultMaxLoopIterations
	}
	if l.MaxRecursionDepth == 0 {
		l.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	if l.MaxOutputBytes == 0 {
		l.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return l
}

// Limiter is the live counter set for one script execution. It is not
// safe for concurrent use — the evaluator is single-threaded cooperative
// (spec.md §5), so a Limiter never needs to be.
type Limiter struct {
	limits Limits
	log    *zap.SugaredLogger

	commands   int64
	iterations int64
	depth      int64
	outBytes   int64
}

// New returns a Limiter with the given caps (zero fields default per
// WithDefaults) and an optional logger; a nil logger is replaced with a
// no-op one so sandbox breaches never panic a host that didn't wire
// logging.
func New(limits Limits, log *zap.SugaredLogger) *Limiter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Limiter{limits: limits.WithDefaults(), log: log}
}

// Command increments and checks the command counter; call once per
// simple command the evaluator is about to resolve.
func (l *Limiter) Command() error {
	l.commands++
	if l.commands > l.limits.MaxCommands {
		return l.breach(Commands, l.limits.MaxCommands)
	}
	return nil
}

// LoopIteration increments and checks the loop-iteration counter; call
// once per iteration of while/until/for/C-style-for.
func (l *Limiter) LoopIteration() error {
	l.iterations++
	if l.iterations > l.limits.MaxLoopIterations {
		return l.breach(LoopIterations, l.limits.MaxLoopIterations)
	}
	return nil
}

// EnterFrame increments and checks recursion depth; call on function
// call and on command-substitution/subshell re-entrancy into the
// evaluator (spec.md §9: "bounded by max_recursion_depth... never by
// host stack alone"). A refused EnterFrame leaves the depth unchanged;
// after a successful one, LeaveFrame must be called on every return
// path, typically via defer.
func (l *Limiter) EnterFrame() error {
	l.depth++
	if l.depth > l.limits.MaxRecursionDepth {
		l.depth--
		return l.breach(RecursionDepth, l.limits.MaxRecursionDepth)
	}
	return nil
}

// LeaveFrame decrements recursion depth.
func (l *Limiter) LeaveFrame() {
	if l.depth > 0 {
		l.depth--
	}
}

// Output registers n more bytes written to stdout+stderr combined.
func (l *Limiter) Output(n int) error {
	l.outBytes += int64(n)
	if l.outBytes > l.limits.MaxOutputBytes {
		return l.breach(OutputBytes, l.limits.MaxOutputBytes)
	}
	return nil
}

func (l *Limiter) breach(kind Kind, limit int64) error {
	err := &LimitError{Kind: kind, Limit: limit}
	l.log.Warnw("sandbox limit breached", "kind", kind.String(), "limit", limit)
	return err
}

// Depth reports the current recursion depth.
func (l *Limiter) Depth() int64 { return l.depth }
