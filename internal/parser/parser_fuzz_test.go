package parser_test

import (
	"testing"

	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/prettyprinter"
)

// FuzzRoundTrip checks that printing a parsed block yields source that
// parses again and prints identically.
func FuzzRoundTrip(f *testing.F) {
	f.Add("(plusF 1 2.5)")
	f.Add(`[a "s\n\u0001" {k: 1 "q": v $w}]`)
	f.Add("(meta.quasiQuote (f $x ...$xs))\n; comment\n1e3")
	f.Add("(console.log true none -3 -0.5 1e21)")
	f.Add("{$k: v ...rest}")

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 4096 {
			return
		}
		block, err := parser.ReadBlock(parser.Input{Path: "fuzz.cstd", Contents: input, StartLine: 1})
		if err != nil {
			return
		}
		printed := prettyprinter.PrintBlock(block.Forms, 40)

		again, err := parser.ReadBlock(parser.Input{Path: "fuzz.cstd", Contents: printed, StartLine: 1})
		if err != nil {
			t.Fatalf("printed source does not parse: %v\ninput: %q\nprinted: %q", err, input, printed)
		}
		if reprinted := prettyprinter.PrintBlock(again.Forms, 40); reprinted != printed {
			t.Fatalf("printing is not stable\nfirst: %q\nsecond: %q", printed, reprinted)
		}
	})
}
