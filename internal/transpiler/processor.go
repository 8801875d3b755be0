package transpiler

import (
	"github.com/custard-lang/custard-sub000/internal/config"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/parser"
	"github.com/custard-lang/custard-sub000/internal/pipeline"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// PreludePath names the implicit prelude in locations.
const PreludePath = "<prelude>"

// preludeSeeds are the members of base bound before the prelude runs.
var preludeSeeds = []string{"import", "importAnyOf"}

// ApplyPrelude binds the import intrinsics and compiles the configured
// implicit prelude into env.
func ApplyPrelude(env *symbols.Env) (ktval.Ktvals, error) {
	if base, ok := Builtin(config.BaseModulePath); ok {
		for _, id := range preludeSeeds {
			if _, _, found := env.Find(id); !found {
				env.Seed(id, base)
			}
		}
	}
	src := env.Config.ImplicitPrelude
	if src == "" {
		return nil, nil
	}
	block, err := parser.ReadBlock(parser.Input{Path: PreludePath, Contents: src, StartLine: 1})
	if err != nil {
		return nil, err
	}
	return compileStatements(env, block.Forms)
}

// TranspileProcessor compiles ctx.Block with ctx.Env, prelude first.
type TranspileProcessor struct {
	SkipPrelude bool
	// Chunk compiles the block as a REPL chunk returning its last value
	// instead of as a sequence of statements.
	Chunk bool
}

func (tp *TranspileProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Block == nil || ctx.Env == nil {
		return ctx
	}
	restore := ctx.Env.WithContext(ctx.Ctx())
	defer restore()

	var prelude ktval.Ktvals
	if !tp.SkipPrelude {
		var err error
		if prelude, err = ApplyPrelude(ctx.Env); err != nil {
			ctx.Err = err
			return ctx
		}
	}

	var (
		body ktval.Ktvals
		err  error
	)
	if tp.Chunk {
		body, err = CompileChunk(ctx.Env, ctx.Block.Forms)
	} else {
		body, err = CompileModule(ctx.Env, ctx.Block.Forms)
	}
	if err != nil {
		ctx.Err = err
		return ctx
	}
	ctx.Ktvals = ktval.Concat(prelude, body)
	ctx.Env.Logger.Debug().Str("file", ctx.FilePath).Int("forms", len(ctx.Block.Forms)).Msg("transpiled")
	return ctx
}
