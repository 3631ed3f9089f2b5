// Command bashkit is the thin CLI wrapper of spec.md §6.4 — not part of
// the core engines, a convenience front end over package bashkit/interp
// for running a script from a file or -c string and reporting its exit
// status the way bash itself does.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everruns/bashkit-sub001/interp"
	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/sandbox"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

// envLimits is populated from BASHKIT_MAX_COMMANDS etc. (spec.md
// [EXPANSION] AMBIENT STACK: "an operator embedding the bashkit CLI in
// a container can tune sandbox caps ... without code changes").
type envLimits struct {
	MaxCommands       int64 `envconfig:"MAX_COMMANDS"`
	MaxLoopIterations int64 `envconfig:"MAX_LOOP_ITERATIONS"`
	MaxRecursionDepth int64 `envconfig:"MAX_RECURSION_DEPTH"`
	MaxOutputBytes    int64 `envconfig:"MAX_OUTPUT_BYTES"`
}

type cliFlags struct {
	command    string
	parseOnly  bool
	errexit    bool
	nounset    bool
	xtrace     bool
	noglob     bool
	setOptions []string
}

func main() {
	os.Exit(main1())
}

// main1 is main's body split out to return a status instead of calling
// os.Exit directly, so main_test.go can drive it in-process via
// testscript.RunMain (the same split the teacher's cmd/shfmt keeps
// between main and the testscript-invoked entry point).
func main1() int {
	flags := &cliFlags{}
	root := &cobra.Command{
		Use:     "bashkit [-c script] [file [args...]]",
		Short:   "sandboxed bash-compatible shell interpreter",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVarP(&flags.command, "command", "c", "", "run script from the argument string instead of a file")
	root.Flags().BoolVarP(&flags.parseOnly, "parse-only", "n", false, "parse the script and report syntax errors without running it")
	root.Flags().BoolVarP(&flags.errexit, "errexit", "e", false, "exit immediately on a command's non-zero status")
	root.Flags().BoolVarP(&flags.nounset, "nounset", "u", false, "treat unset variable expansion as an error")
	root.Flags().BoolVarP(&flags.xtrace, "xtrace", "x", false, "print commands as they are executed")
	root.Flags().BoolVarP(&flags.noglob, "noglob", "f", false, "disable pathname expansion")
	root.Flags().StringArrayVarP(&flags.setOptions, "set-option", "o", nil, "set a named shell option (set -o name)")

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "bashkit:", err)
		return exitCodeFor(err)
	}
	return 0
}

func run(flags *cliFlags, args []string) error {
	var src []byte
	var scriptName string
	var scriptArgs []string

	switch {
	case flags.command != "":
		src = []byte(flags.command)
		scriptName = "-c"
		scriptArgs = args
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		src = data
		scriptName = args[0]
		scriptArgs = args[1:]
	default:
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return err
		}
		src = data
		scriptName = "stdin"
	}

	tree, perr := parser.Parse(src, parser.Options{})
	if perr != nil {
		return wrapExit{err: perr, code: 2}
	}
	if flags.parseOnly {
		return nil
	}

	var limits envLimits
	envconfig.Process("BASHKIT", &limits)

	logger := zap.NewNop().Sugar()

	fs := vfs.New()
	st := scope.New(scriptName, os.Getpid())
	if cwd, err := os.Getwd(); err == nil {
		st.Set("PWD", scope.NewScalar(cwd))
	} else {
		st.Set("PWD", scope.NewScalar("/"))
	}
	st.Set("PATH", scope.NewScalar("/usr/local/bin:/usr/bin:/bin"))
	st.SetPositional(scriptArgs)

	limiter := sandbox.New(sandbox.Limits{
		MaxCommands:       limits.MaxCommands,
		MaxLoopIterations: limits.MaxLoopIterations,
		MaxRecursionDepth: limits.MaxRecursionDepth,
		MaxOutputBytes:    limits.MaxOutputBytes,
	}, logger)

	runner := interp.New(interp.Config{
		Scope:      st,
		VFS:        fs,
		Limiter:    limiter,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		ScriptName: scriptName,
	})
	applyOptionFlags(runner, flags)

	runner.Run(tree)

	if err := runner.FatalErr(); err != nil {
		if _, ok := err.(*sandbox.LimitError); ok {
			return wrapExit{err: err, code: 137}
		}
		return wrapExit{err: err, code: 1}
	}
	if code := runner.ExitCode(); code != 0 {
		return wrapExit{err: fmt.Errorf("exit status %d", code), code: code}
	}
	return nil
}

func applyOptionFlags(r *interp.Runner, flags *cliFlags) {
	r.Options.SetOpt("errexit", flags.errexit)
	r.Options.SetOpt("nounset", flags.nounset)
	r.Options.SetOpt("xtrace", flags.xtrace)
	r.Options.SetOpt("noglob", flags.noglob)
	for _, name := range flags.setOptions {
		r.Options.SetOpt(name, true)
	}
}

// wrapExit carries the exit code spec.md §6.4 documents alongside the
// error cobra prints, so main's os.Exit reports the right status
// (0 success; 1 generic failure; 2 parse/usage error; 137 sandbox limit).
type wrapExit struct {
	err  error
	code int
}

func (w wrapExit) Error() string { return w.err.Error() }
func (w wrapExit) Unwrap() error { return w.err }

func exitCodeFor(err error) int {
	if w, ok := err.(wrapExit); ok {
		return w.code
	}
	return 1
}
