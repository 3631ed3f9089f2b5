// Package bashkit is the host boundary of spec.md §6.1: a single
// Execute call that runs a script against a fresh sandbox and VFS and
// returns a {stdout, stderr, exit_code, error} result, with no
// long-lived state an embedder has to manage across calls.
package bashkit

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/everruns/bashkit-sub001/interp"
	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/sandbox"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

// Config is the enumerated option set of spec.md §6.1. Every field is
// optional; a zero Config runs with the sandbox's documented defaults.
type Config struct {
	Username string
	Hostname string

	MaxCommands       int64
	MaxLoopIterations int64
	MaxRecursionDepth int64
	MaxOutputBytes    int64

	// EnableNetwork and URLAllowlist are accepted for forward
	// compatibility with a host that registers a network-capable
	// builtin (curl/wget-style tools are external collaborators per
	// spec.md §1); the core engines here never dial out themselves, so
	// these fields are recorded on the Config value only and otherwise
	// unused until such a builtin exists.
	EnableNetwork bool
	URLAllowlist  []string

	// PrewarmedVFSLayer is a YAML document in the shape of
	// vfs.Manifest, describing directories and (base64-encoded) files
	// to materialize before the script runs (§6.1 `prewarmed_vfs_layer`).
	PrewarmedVFSLayer []byte

	// Logger receives sandbox diagnostics; a nil Logger runs
	// silently (never written to Stdout/Stderr, which are reserved for
	// script output).
	Logger *zap.SugaredLogger

	Args []string // $1, $2, ... for the script
}

// ExecResult is the response half of spec.md §6.1's host API.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error // populated only on sandbox-level failure, never on ordinary script failure
}

// Execute parses and runs script against a fresh VFS/scope/sandbox,
// exactly once, per spec.md §6.1. Ordinary script failures are
// conveyed via a non-zero ExitCode; a parse error exits 2 with its
// diagnostic on Stderr. Sandbox-limit breaches and an unusable
// PrewarmedVFSLayer populate ExecResult.Err.
func Execute(script []byte, cfg Config) ExecResult {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	fs := vfs.New()
	if len(cfg.PrewarmedVFSLayer) > 0 {
		manifest, err := vfs.LoadManifest(cfg.PrewarmedVFSLayer)
		if err != nil {
			return ExecResult{ExitCode: 2, Err: err}
		}
		if err := manifest.Apply(fs); err != nil {
			return ExecResult{ExitCode: 2, Err: err}
		}
	}

	tree, err := parser.Parse(script, parser.Options{})
	if err != nil {
		return ExecResult{ExitCode: 2, Stderr: err.Error() + "\n"}
	}

	st := scope.New("script", 1)
	if cfg.Username != "" {
		st.Set("USER", scope.NewScalar(cfg.Username))
	}
	if cfg.Hostname != "" {
		st.Set("HOSTNAME", scope.NewScalar(cfg.Hostname))
	}
	st.Set("PWD", scope.NewScalar("/"))
	st.Set("PATH", scope.NewScalar("/usr/local/bin:/usr/bin:/bin"))
	st.SetPositional(cfg.Args)

	limiter := sandbox.New(sandbox.Limits{
		MaxCommands:       cfg.MaxCommands,
		MaxLoopIterations: cfg.MaxLoopIterations,
		MaxRecursionDepth: cfg.MaxRecursionDepth,
		MaxOutputBytes:    cfg.MaxOutputBytes,
	}, logger)

	var stdout, stderr bytes.Buffer
	runner := interp.New(interp.Config{
		Scope:   st,
		VFS:     fs,
		Limiter: limiter,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	runner.Run(tree)

	res := ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: runner.ExitCode(),
	}
	if fatal := runner.FatalErr(); fatal != nil {
		res.Err = fatal
		if _, ok := fatal.(*sandbox.LimitError); ok {
			res.ExitCode = 137
		}
	}
	return res
}
