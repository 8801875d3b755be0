package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"

	"github.com/custard-lang/custard-sub000/internal/config"
	custard "github.com/custard-lang/custard-sub000/pkg/embed"
)

// WatchDelay is how long watch mode waits for writes to settle.
const WatchDelay = 100 * time.Millisecond

type compileFlags struct {
	input  string
	output string
	minify bool
	print  bool
	watch  bool
}

func (a *app) handleCompile(ctx context.Context, args []string) int {
	var f compileFlags
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&f.output, "o", "", "output file (default: input with .mjs)")
	fs.BoolVar(&f.minify, "minify", false, "minify the output")
	fs.BoolVar(&f.print, "print", false, "print the output instead of writing it")
	fs.BoolVar(&f.watch, "watch", false, "recompile when the input or its modules change")
	if err := fs.Parse(reorder(args)); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Usage: custard compile <in.cstd> [-o out.mjs] [--minify] [--print] [--watch]")
		return 2
	}
	f.input = fs.Arg(0)
	if f.output == "" {
		f.output = outputPath(f.input)
	}

	c, err := a.compiler(filepath.Dir(f.input), custard.WithMinify(f.minify))
	if err != nil {
		return a.fail(err)
	}
	if !f.watch {
		if _, err := a.compileOnce(ctx, c, f); err != nil {
			return a.fail(err)
		}
		return 0
	}
	if err := a.watch(ctx, c, f); err != nil && ctx.Err() == nil {
		return a.fail(err)
	}
	return 0
}

// reorder moves flags before positional arguments so that
// `compile in.cstd -o out.mjs` works with the flag package.
func reorder(args []string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)
			if arg == "-o" || arg == "--o" {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, arg)
	}
	return append(flags, rest...)
}

func (a *app) compileOnce(ctx context.Context, c *custard.Compiler, f compileFlags) (*custard.Output, error) {
	out, err := c.CompileFile(ctx, f.input)
	if err != nil {
		return nil, err
	}
	if f.print {
		return out, a.printJS(out.JS)
	}
	if err := os.WriteFile(f.output, []byte(out.JS), 0o644); err != nil {
		return nil, err
	}
	a.logger.Info().Str("input", f.input).Str("output", f.output).Int("bytes", len(out.JS)).Msg("compiled")
	fmt.Fprintf(a.stdout, "Compiled %s -> %s (%d bytes)\n", f.input, f.output, len(out.JS))
	return out, nil
}

// printJS highlights the output when stdout is a terminal.
func (a *app) printJS(js string) error {
	if file, ok := a.stdout.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		if err := quick.Highlight(a.stdout, js, "javascript", "terminal256", "monokai"); err != nil {
			return err
		}
		_, err := io.WriteString(a.stdout, "\n")
		return err
	}
	_, err := fmt.Fprintln(a.stdout, js)
	return err
}

// watch compiles once and then again after each burst of changes to the
// input or any source module it imports, until ctx is done.
func (a *app) watch(ctx context.Context, c *custard.Compiler, f compileFlags) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := map[string]bool{}
	rebuild := func() {
		out, err := a.compileOnce(ctx, c, f)
		if err != nil {
			fmt.Fprintf(a.stderr, "%s\n", err)
			a.logger.Warn().Err(err).Str("input", f.input).Msg("watch rebuild failed")
			return
		}
		a.logger.Info().Str("input", f.input).Msg("watch rebuild")
		files := append([]string{f.input}, out.Dependencies...)
		for _, file := range files {
			// Editors often replace files, so watch the directories.
			dir := filepath.Dir(file)
			if watched[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				a.logger.Warn().Err(err).Str("dir", dir).Msg("cannot watch")
				continue
			}
			watched[dir] = true
		}
	}

	requests := make(chan struct{}, 1)
	debounced := debounce.New(WatchDelay)
	rebuild()
	if len(watched) == 0 {
		if err := w.Add(filepath.Dir(f.input)); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stdout, "Watching %s for changes\n", f.input)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isSourceEvent(ev) {
				continue
			}
			debounced(func() {
				select {
				case requests <- struct{}{}:
				default:
				}
			})
		case <-requests:
			rebuild()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func isSourceEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return isSourceFile(ev.Name)
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	return config.IsSourcePath(path)
}
