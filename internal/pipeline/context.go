package pipeline

import (
	"context"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/ktval"
	"github.com/custard-lang/custard-sub000/internal/symbols"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state of a single compilation from source
// text to rendered JavaScript.
type PipelineContext struct {
	Context    context.Context
	FilePath   string
	SourceCode string
	StartLine  int

	Block  *ast.Block
	Env    *symbols.Env
	Ktvals ktval.Ktvals
	Output string

	Err error
}

func (c *PipelineContext) Ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}
