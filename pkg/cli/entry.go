package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/async"
	"github.com/driftlang/drift/internal/config"
	"github.com/driftlang/drift/internal/diagnostics"
	"github.com/driftlang/drift/internal/interp"
	"github.com/driftlang/drift/internal/lexer"
	"github.com/driftlang/drift/internal/lower"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pipeline"
)

// Version is stamped at build time using:
// -ldflags "-X github.com/driftlang/drift/pkg/cli.Version=x.y.z"
var Version = "dev"

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Entry is the CLI entry point.
func Entry() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch args[0] {
	case "version", "--version":
		fmt.Println("drift " + Version)
		return
	case "help", "--help", "-h":
		usage(os.Stdout)
		return
	case "run":
		args = args[1:]
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: run requires a source file")
			os.Exit(2)
		}
	}

	path := args[0]
	if !isSourceFile(path) {
		fmt.Fprintf(os.Stderr, "Error: %s is not a source file (expected %s)\n",
			path, strings.Join(config.SourceFileExtensions, ", "))
		os.Exit(2)
	}

	os.Exit(RunFile(path, os.Stdout, os.Stderr))
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: drift [run] <file"+config.SourceFileExt+">")
	fmt.Fprintln(out, "       drift version")
}

// RunFile compiles and runs one script, returning the process exit code.
// Runtime options are read from a drift.yml next to the script when one
// exists.
func RunFile(path string, out, errOut io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "Error reading %s: %s\n", path, err)
		return 1
	}

	cfg, err := config.LoadRunConfig(filepath.Join(filepath.Dir(path), config.RunConfigFileName))
	if err != nil {
		fmt.Fprintf(errOut, "Error reading %s: %s\n", config.RunConfigFileName, err)
		return 1
	}

	ctx := pipeline.NewPipelineContext(string(source))
	ctx.FilePath = path

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&lower.LowerProcessor{},
	)
	ctx = p.Run(ctx)

	if ctx.HasErrors() {
		printDiagnostics(errOut, ctx.Errors, cfg)
		return 1
	}

	prog, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		fmt.Fprintln(errOut, "Error: empty program")
		return 1
	}

	return runProgram(prog, cfg, out, errOut)
}

func runProgram(prog *ast.Program, cfg *config.RunConfig, out, errOut io.Writer) int {
	ev := interp.New()
	ev.Out = out
	ev.CurrentFile = prog.File
	if cfg.MaxCallDepth > 0 {
		ev.MaxDepth = cfg.MaxCallDepth
	}

	env := interp.NewEnvironment()
	ev.RegisterBuiltins(env)

	loop := async.NewLoop()
	var opts []async.Option
	if cfg.TraceAsync {
		log, err := zap.NewDevelopment()
		if err == nil {
			defer func() { _ = log.Sync() }()
			opts = append(opts, async.WithLogger(log))
		}
	}
	rt := async.NewRuntime(ev, loop, opts...)
	rt.RegisterBuiltins(env)

	// Top-level code runs as the first loop task; the loop then drains
	// whatever async work it started.
	exitCode := 0
	loop.Post(func() {
		result := ev.Eval(prog, env)
		if interp.IsException(result) {
			fmt.Fprintf(errOut, "Uncaught exception: %s\n", result.(*interp.Exception).Value.Inspect())
			exitCode = 1
		}
	})
	if err := loop.Run(context.Background()); err != nil {
		fmt.Fprintf(errOut, "Error: %s\n", err)
		return 1
	}
	for _, val := range rt.UnhandledRejections() {
		fmt.Fprintf(errOut, "Unhandled promise rejection: %s\n", val.Inspect())
		exitCode = 1
	}
	return exitCode
}

func printDiagnostics(errOut io.Writer, errs []*diagnostics.DiagnosticError, cfg *config.RunConfig) {
	color := useColor(errOut, cfg)
	for _, err := range errs {
		if color {
			fmt.Fprintf(errOut, "\x1b[31m- %s\x1b[0m\n", err.Error())
		} else {
			fmt.Fprintf(errOut, "- %s\n", err.Error())
		}
	}
}

func useColor(errOut io.Writer, cfg *config.RunConfig) bool {
	if cfg != nil && cfg.NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := errOut.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
