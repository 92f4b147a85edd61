package render

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/filter"
	"github.com/pagedeck/pagedeck/pkg/grid"
)

// pageStyle is the grid definition the column simulation models. Keep the
// two in sync: a half-width block occupies one track, a full-width block
// spans both and forces a fresh row (see pkg/grid).
const pageStyle = `.page-grid{display:grid;grid-template-columns:1fr 1fr;gap:16px}
.block.span-full{grid-column:1 / -1}
.block{min-width:0}`

// Renderer renders whole pages to HTML through the dispatcher.
type Renderer struct {
	dispatcher *Dispatcher
	diagrams   DiagramRenderer
	logger     *log.Logger
}

// DiagramRenderer turns DOT source into SVG bytes.
type DiagramRenderer interface {
	SVG(ctx context.Context, dot string) ([]byte, error)
}

// NewRenderer creates a page renderer. A nil logger discards diagnostics.
func NewRenderer(reg *block.Registry, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{
		dispatcher: NewDispatcher(reg, logger),
		logger:     logger,
	}
}

// WithDiagrams enables native diagram rendering: diagram blocks are emitted
// as inline SVG instead of their DOT source. Render errors fall back to the
// source form, never fail the page.
func (r *Renderer) WithDiagrams(dr DiagramRenderer) *Renderer {
	r.diagrams = dr
	return r
}

// Dispatcher exposes the underlying dispatcher for handler registration.
func (r *Renderer) Dispatcher() *Dispatcher { return r.dispatcher }

// Page renders the page as a standalone HTML document. Blocks hidden by the
// active tag filter are suppressed from the output entirely; the grid flows
// the remaining blocks, and each block is annotated with the simulated
// column its controls anchor to (data-column). Unrenderable blocks are
// skipped with a diagnostic.
func (r *Renderer) Page(ctx context.Context, w io.Writer, p *block.Page, activeTags []string) error {
	visible := filter.Visible(p.Blocks, activeTags)
	columns := grid.ComputeColumnMap(visible)

	if _, err := fmt.Fprintf(w,
		"<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n<h1>%s</h1>\n<main class=\"page-grid\">\n",
		html.EscapeString(p.Title), pageStyle, html.EscapeString(p.Title)); err != nil {
		return err
	}

	for _, b := range visible {
		fragment, ok := r.renderBlock(ctx, b)
		if !ok {
			continue
		}
		span := "span-half"
		if b.Span == block.SpanFull {
			span = "span-full"
		}
		if _, err := fmt.Fprintf(w,
			"<section class=\"block %s\" data-block-id=%q data-column=\"%d\">\n%s</section>\n",
			span, b.ID, columns[b.ID], fragment); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</main>\n</body>\n</html>\n")
	return err
}

// renderBlock dispatches one block, routing diagram blocks through the
// native renderer when configured.
func (r *Renderer) renderBlock(ctx context.Context, b block.Block) ([]byte, bool) {
	if r.diagrams != nil {
		if c, ok := b.Content.(block.DiagramContent); ok && b.Type == block.TypeDiagram {
			svg, err := r.diagrams.SVG(ctx, c.DOT)
			if err == nil {
				return svg, true
			}
			r.logger.Warn("diagram render failed, falling back to source", "block", b.ID, "err", err)
		}
	}
	return r.dispatcher.Render(b)
}
