package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for command dispatch.
var (
	ErrNoCommand      = errors.New("no command specified")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
)

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain runs the command line and returns the process exit code.
func runMain(args []string, env *Environment) int {
	setMaxProcs(hasVerboseFlag(args), env.Stderr)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, args, env)
	if err != nil {
		printError(env.Stderr, err)
	}
	return exitCodeFor(err)
}

// run dispatches args[1] to its command.
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ErrNoCommand
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "export":
		return runExportCmd(ctx, rest, env)
	case "presets":
		return runPresetsCmd(rest, env)
	case "serve":
		return runServeCmd(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "completion":
		return runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "html2img %s\n", Version)
		return nil
	case "help", "-h", "--help":
		return runHelp(rest, env)
	}

	printUsage(env.Stderr)
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
}

// setMaxProcs sizes GOMAXPROCS to the container quota, logging only when verbose.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply.
func setMaxProcs(verbose bool, w io.Writer) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerboseFlag reports whether -v or --verbose appears before a "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// printError writes err and any actionable hints to w.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}
