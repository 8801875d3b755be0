// Package cli implements the custard command.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/custard-lang/custard-sub000/internal/config"
	custard "github.com/custard-lang/custard-sub000/pkg/embed"
)

// app carries the streams and global options of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logFile    string
	logLevel   string

	logger zerolog.Logger
}

// Run is the entry point of the binary.
func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Main(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Main runs one command and returns the exit status.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	global := flag.NewFlagSet("custard", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.StringVar(&a.configPath, "config", "", "path of custard.yaml")
	global.StringVar(&a.logFile, "log-file", "", "log file (default $XDG_STATE_HOME/custard/custard.log)")
	global.StringVar(&a.logLevel, "log-level", "disabled", "trace, debug, info, warn, error or disabled")
	var showVersion bool
	global.BoolVar(&showVersion, "v", false, "print the version")
	global.BoolVar(&showVersion, "version", false, "print the version")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	args = global.Args()
	if showVersion {
		fmt.Fprintln(stdout, "custard "+config.Version)
		return 0
	}

	closeLog, err := a.setupLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	defer closeLog()

	cmd := "repl"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "repl":
		return a.handleRepl(ctx, args)
	case "compile":
		return a.handleCompile(ctx, args)
	case "check":
		return a.handleCheck(ctx, args)
	case "runtime":
		return a.handleRuntime(args)
	case "version":
		fmt.Fprintln(stdout, "custard "+config.Version)
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	}
	fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
	fmt.Fprint(stderr, usage)
	return 2
}

const usage = `Usage: custard [global flags] <command> [arguments]

Commands:
  repl                          start an interactive session (default)
  compile <in.cstd> [-o out.mjs] [--minify] [--print] [--watch]
                                compile a file to an ES module
  check <in.cstd>               compile a file and check the output parses
  runtime -o <dir>              write the Form runtime module
  version                       print the version
  help                          print this help

Global flags:
  --config <file>      provided symbols config (default: nearest custard.yaml)
  --log-file <file>    log destination (default $XDG_STATE_HOME/custard/custard.log)
  --log-level <level>  trace, debug, info, warn, error or disabled (default disabled)
  -v, --version        print the version
`

func (a *app) setupLogger() (func(), error) {
	level, err := zerolog.ParseLevel(a.logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if level == zerolog.Disabled {
		a.logger = zerolog.Nop()
		return func() {}, nil
	}
	path := a.logFile
	if path == "" {
		if path, err = xdg.StateFile(filepath.Join("custard", "custard.log")); err != nil {
			return nil, fmt.Errorf("locating log file: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	a.logger = zerolog.New(f).Level(level).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}

// compiler builds a Compiler with the config given by --config, or the one
// found from dir upwards.
func (a *app) compiler(dir string, extra ...custard.Option) (*custard.Compiler, error) {
	opts := []custard.Option{custard.WithLogger(a.logger)}
	path := a.configPath
	if path == "" {
		found, err := config.FindProvidedSymbols(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		a.logger.Debug().Str("config", path).Msg("using config")
		opts = append(opts, custard.WithConfigFile(path))
	}
	return custard.New(append(opts, extra...)...)
}

func (a *app) fail(err error) int {
	fmt.Fprintf(a.stderr, "%s\n", err)
	return 1
}

func (a *app) handleRepl(ctx context.Context, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(a.stderr, "repl takes no arguments\n")
		return 2
	}
	c, err := a.compiler(".")
	if err != nil {
		return a.fail(err)
	}
	r, err := c.NewREPL(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer r.Close()
	if err := r.Session().Run(ctx, a.stdin, a.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return a.fail(err)
	}
	return 0
}

func (a *app) handleCheck(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "Usage: custard check <in.cstd>")
		return 2
	}
	path := args[0]
	c, err := a.compiler(filepath.Dir(path))
	if err != nil {
		return a.fail(err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return a.fail(err)
	}
	if err := c.Check(ctx, path, string(src)); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "%s: ok\n", path)
	return 0
}

func (a *app) handleRuntime(args []string) int {
	fs := flag.NewFlagSet("runtime", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	dir := fs.String("o", "", "output directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dir == "" {
		fmt.Fprintln(a.stderr, "Usage: custard runtime -o <dir>")
		return 2
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return a.fail(err)
	}
	out := filepath.Join(*dir, RuntimeFileName)
	if err := os.WriteFile(out, []byte(custard.FormRuntime()), 0o644); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", out)
	return 0
}

// RuntimeFileName is the file `custard runtime` writes.
const RuntimeFileName = "form" + config.ModuleFileExt

// outputPath is in.cstd → in.mjs.
func outputPath(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + config.ModuleFileExt
}
