package parser

import (
	"github.com/custard-lang/custard-sub000/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	block, err := ReadBlock(Input{Path: ctx.FilePath, Contents: ctx.SourceCode, StartLine: ctx.StartLine})
	if err != nil {
		ctx.Err = err
		return ctx
	}
	ctx.Block = block
	return ctx
}
