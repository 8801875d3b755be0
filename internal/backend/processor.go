package backend

import (
	"github.com/custard-lang/custard-sub000/internal/pipeline"
)

// RenderProcessor implements pipeline.Processor to render the compiled
// Ktvals of a pipeline run.
type RenderProcessor struct {
	Renderer Renderer
	// Minify shrinks the rendered text; module output only.
	Minify bool
}

// NewRenderProcessor creates a new pipeline step for the given renderer
func NewRenderProcessor(r Renderer) *RenderProcessor {
	return &RenderProcessor{Renderer: r}
}

func (p *RenderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't render
	if ctx.Err != nil {
		return ctx
	}

	out, err := p.Renderer.Render(ctx.Ktvals)
	if err != nil {
		ctx.Err = err
		return ctx
	}
	if p.Minify {
		out, err = Minify(out)
		if err != nil {
			ctx.Err = err
			return ctx
		}
	}
	ctx.Output = out
	return ctx
}
