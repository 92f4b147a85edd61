package render

import (
	"bytes"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pagedeck/pagedeck/pkg/block"
)

// Handler renders one block type to an HTML fragment.
type Handler interface {
	Render(w io.Writer, b block.Block) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(w io.Writer, b block.Block) error

// Render implements Handler.
func (f HandlerFunc) Render(w io.Writer, b block.Block) error { return f(w, b) }

// Dispatcher selects and invokes the type-specific handler for a block,
// with the content narrowed through the registry's recognizers first.
//
// The dispatcher never panics and never fails a page over one bad block:
// content may originate from persisted data written by an older schema
// version, so an unknown type or a type/content mismatch renders nothing
// and emits a single development-only warning.
type Dispatcher struct {
	reg      *block.Registry
	handlers map[block.Type]Handler
	logger   *log.Logger
}

// NewDispatcher creates a dispatcher with the built-in HTML handlers for
// every registered block type. A nil registry uses the default registry;
// a nil logger discards diagnostics.
func NewDispatcher(reg *block.Registry, logger *log.Logger) *Dispatcher {
	if reg == nil {
		reg = block.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Dispatcher{
		reg:      reg,
		handlers: make(map[block.Type]Handler),
		logger:   logger,
	}
	registerBuiltins(d)
	return d
}

// Register sets the handler for a block type, replacing any existing one.
// Custom block types register their handler here after registering their
// content entry with the block registry.
func (d *Dispatcher) Register(t block.Type, h Handler) {
	d.handlers[t] = h
}

// Render returns the rendered surface for the block, or nil and false when
// the block cannot be rendered. The unrenderable cases (unknown type,
// missing handler, content whose shape disagrees with the type tag) are all
// absorbed here with a warning, once per call, so a corrupt block degrades
// to "nothing shown" instead of a failed page.
func (d *Dispatcher) Render(b block.Block) ([]byte, bool) {
	if !d.reg.Recognize(b) {
		d.logger.Warn("skipping unrenderable block", "block", b.ID, "type", b.Type)
		return nil, false
	}
	h, ok := d.handlers[b.Type]
	if !ok {
		d.logger.Warn("no handler for block type", "block", b.ID, "type", b.Type)
		return nil, false
	}

	var buf bytes.Buffer
	if err := h.Render(&buf, b); err != nil {
		d.logger.Warn("block handler failed", "block", b.ID, "type", b.Type, "err", err)
		return nil, false
	}
	return buf.Bytes(), true
}
