package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/parser"
)

const (
	Prompt             = "custard> "
	ContinuationPrompt = "....... "
)

// lineReader is one line source: a raw terminal or a plain stream.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

type terminalReader struct {
	t *term.Terminal
}

func (r *terminalReader) ReadLine(prompt string) (string, error) {
	r.t.SetPrompt(prompt)
	return r.t.ReadLine()
}

type streamReader struct {
	sc *bufio.Scanner
}

func (r *streamReader) ReadLine(string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

// Run reads inputs from in until EOF or `:quit`, printing results and
// errors to out. On a terminal it switches stdin to raw mode for line
// editing; otherwise it reads plain lines without prompts.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), state)
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{f, out}, Prompt)
		fmt.Fprintf(t, "Custard %s. Type :quit to exit.\n", config.Version)
		return s.loop(ctx, &terminalReader{t: t}, t)
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return s.loop(ctx, &streamReader{sc: sc}, out)
}

func (s *Session) loop(ctx context.Context, r lineReader, out io.Writer) error {
	output := termenv.NewOutput(out)
	errStyle := output.String().Foreground(output.Color("1"))
	jsStyle := output.String().Faint()
	showJS := false

	var pending strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		prompt := Prompt
		if pending.Len() > 0 {
			prompt = ContinuationPrompt
		}
		line, err := r.ReadLine(prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if pending.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ":quit", ":q":
				return nil
			case ":reset":
				if err := s.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "environment reset")
				continue
			case ":js":
				showJS = !showJS
				fmt.Fprintf(out, "show generated JavaScript: %t\n", showJS)
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteByte('\n')
		input := pending.String()

		if _, err := parser.ReadBlock(parser.Input{Contents: input}); IsIncomplete(err) {
			continue
		}
		pending.Reset()

		res, err := s.Eval(ctx, input)
		if err != nil {
			fmt.Fprintln(out, errStyle.Styled(err.Error()))
			continue
		}
		if showJS && res.JS != "" {
			fmt.Fprintln(out, jsStyle.Styled(res.JS))
		}
		if res.Value != "" {
			fmt.Fprintln(out, res.Value)
		}
	}
}
