// Package engine implements the reorder/mutation operations for block
// documents.
//
// The engine is the sole authority for transforming a page's block array.
// Every operation takes the current array and returns a new one; the input
// is never mutated or aliased, so the caller can treat each result as the
// next committed state. The engine holds no state between calls beyond its
// registry and ID source.
//
// All lookups are by block ID, never by index. "Not found" conditions
// degrade to no-ops (or, for InsertAfter, to an append) rather than errors,
// because UI event delivery can race with a prior state commit: a delete
// button clicked twice, or a drag ending after its target was removed, must
// leave the document unchanged rather than fail.
package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/observability"
)

// Mutation operation names reported to observability hooks.
const (
	OpCreate      = "create"
	OpInsertAfter = "insert_after"
	OpDelete      = "delete"
	OpUpdate      = "update_content"
	OpToggleSpan  = "toggle_span"
	OpSetTags     = "set_tags"
	OpReorder     = "reorder"
)

// Option configures an Engine.
type Option func(*Engine)

// WithIDSource overrides the block ID generator. Used by tests to get
// deterministic IDs; production engines use random UUIDs.
func WithIDSource(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// Engine produces new block arrays from old ones. The zero value is not
// usable; use New.
type Engine struct {
	reg   *block.Registry
	newID func() string
}

// New creates an engine backed by the given registry. A nil registry uses
// the default registry with all built-in block types.
func New(reg *block.Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = block.Default()
	}
	e := &Engine{reg: reg, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create returns a new block with a fresh unique ID, the given type,
// type-correct default content, and full width. No existing array is
// touched. An unregistered type is a programmer error and returns
// block.ErrUnknownType.
func (e *Engine) Create(t block.Type) (block.Block, error) {
	content, err := e.reg.DefaultContent(t)
	if err != nil {
		return block.Block{}, err
	}
	observability.Engine().OnMutation(context.Background(), OpCreate, false)
	return block.Block{
		ID:      e.newID(),
		Type:    t,
		Content: content,
		Span:    block.SpanFull,
	}, nil
}

// InsertAfter inserts a freshly created block of the given type immediately
// after the block with ID afterID. If afterID is not present (it may have
// been concurrently deleted) the new block is appended at the end. The
// result is always one longer than the input.
func (e *Engine) InsertAfter(blocks []block.Block, afterID string, t block.Type) ([]block.Block, error) {
	nb, err := e.Create(t)
	if err != nil {
		return nil, err
	}

	idx := block.IndexOf(blocks, afterID)
	out := make([]block.Block, 0, len(blocks)+1)
	if idx < 0 {
		out = append(out, blocks...)
		out = append(out, nb)
	} else {
		out = append(out, blocks[:idx+1]...)
		out = append(out, nb)
		out = append(out, blocks[idx+1:]...)
	}
	observability.Engine().OnMutation(context.Background(), OpInsertAfter, idx < 0)
	return out, nil
}

// DeleteByID removes the block with the given ID. Missing IDs are a no-op
// returning an equivalent array. Deleting the last remaining block yields an
// empty (non-nil) array so callers can show an empty state.
func (e *Engine) DeleteByID(blocks []block.Block, id string) []block.Block {
	idx := block.IndexOf(blocks, id)
	observability.Engine().OnMutation(context.Background(), OpDelete, idx < 0)
	if idx < 0 {
		return slices.Clone(blocks)
	}
	out := make([]block.Block, 0, len(blocks)-1)
	out = append(out, blocks[:idx]...)
	out = append(out, blocks[idx+1:]...)
	return out
}

// UpdateContent replaces only the content of the matching block; ID, type,
// span, and tags are preserved. The content is replaced wholesale, never
// merged. Missing IDs are a no-op.
func (e *Engine) UpdateContent(blocks []block.Block, id string, content block.Content) []block.Block {
	return e.replace(OpUpdate, blocks, id, func(b block.Block) block.Block {
		b.Content = content
		return b
	})
}

// ToggleSpan flips the matching block between half and full width. The
// width only affects the simulated grid column; it never reorders the
// array. Missing IDs are a no-op.
func (e *Engine) ToggleSpan(blocks []block.Block, id string) []block.Block {
	return e.replace(OpToggleSpan, blocks, id, func(b block.Block) block.Block {
		b.Span = b.Span.Toggle()
		return b
	})
}

// SetTags replaces the matching block's tag set wholesale (not a merge).
// Tags are lowercased and de-duplicated; an empty result means "no tags".
// Missing IDs are a no-op.
func (e *Engine) SetTags(blocks []block.Block, id string, tags []string) []block.Block {
	return e.replace(OpSetTags, blocks, id, func(b block.Block) block.Block {
		b.Tags = NormalizeTags(tags)
		return b
	})
}

// Reorder moves the block with ID activeID to the position of the block
// with ID overID, preserving every other block's relative order. If either
// ID is missing, or both name the same block, the operation is a no-op:
// a drag gesture that ends without a valid drop target commits nothing.
func (e *Engine) Reorder(blocks []block.Block, activeID, overID string) []block.Block {
	oldIdx := block.IndexOf(blocks, activeID)
	newIdx := block.IndexOf(blocks, overID)
	noop := oldIdx < 0 || newIdx < 0 || activeID == overID
	observability.Engine().OnMutation(context.Background(), OpReorder, noop)
	if noop {
		return slices.Clone(blocks)
	}

	out := make([]block.Block, 0, len(blocks))
	out = append(out, blocks[:oldIdx]...)
	out = append(out, blocks[oldIdx+1:]...)
	out = slices.Insert(out, newIdx, blocks[oldIdx])
	return out
}

// replace applies fn to the matching block and returns a new array with the
// result in place. Missing IDs yield an unchanged copy.
func (e *Engine) replace(op string, blocks []block.Block, id string, fn func(block.Block) block.Block) []block.Block {
	idx := block.IndexOf(blocks, id)
	observability.Engine().OnMutation(context.Background(), op, idx < 0)
	out := slices.Clone(blocks)
	if idx < 0 {
		return out
	}
	out[idx] = fn(blocks[idx])
	return out
}

// NormalizeTags lowercases, trims, and de-duplicates a tag list, preserving
// first-occurrence order. Returns nil for an empty result so "no tags"
// serializes as an absent field.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
