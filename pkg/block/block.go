package block

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidBlockID is returned when a block is created or decoded with
	// an empty ID. All blocks must have non-empty identifiers.
	ErrInvalidBlockID = errors.New("block ID must not be empty")

	// ErrUnknownType is returned when a type tag has no registry entry.
	ErrUnknownType = errors.New("unknown block type")

	// ErrContentMismatch is returned when a block's content does not satisfy
	// the recognizer for its declared type.
	ErrContentMismatch = errors.New("content does not match block type")
)

// Type is the closed set of block type tags. The tag determines the runtime
// shape of the block's content (see the recognizers in content.go).
type Type string

// Supported block types.
const (
	TypeText       Type = "text"
	TypeCode       Type = "code"
	TypeLink       Type = "link"
	TypeTable      Type = "table"
	TypeAgenda     Type = "agenda"
	TypeImage      Type = "image"
	TypeDiagram    Type = "diagram"
	TypeAudio      Type = "audio"
	TypeVideo      Type = "video"
	TypeWhiteboard Type = "whiteboard"
)

// Types returns all supported block types in a stable order.
func Types() []Type {
	return []Type{
		TypeText, TypeCode, TypeLink, TypeTable, TypeAgenda,
		TypeImage, TypeDiagram, TypeAudio, TypeVideo, TypeWhiteboard,
	}
}

// Span is a block's declared width class in the two-column grid.
type Span int

const (
	// SpanHalf occupies one of the two columns.
	SpanHalf Span = 1
	// SpanFull occupies the entire row. New blocks default to full width.
	SpanFull Span = 2
)

// Toggle returns the opposite width class.
func (s Span) Toggle() Span {
	if s == SpanHalf {
		return SpanFull
	}
	return SpanHalf
}

// Block is one content unit on a page.
//
// ID is assigned at creation and never reassigned. Type is immutable after
// creation and determines the concrete shape of Content. Content is replaced
// wholesale on edit, never partially patched. Tags are lowercase strings used
// only for filtering; a nil slice means "no tags".
type Block struct {
	ID      string   `json:"id" bson:"id"`
	Type    Type     `json:"type" bson:"type"`
	Content Content  `json:"content,omitempty" bson:"content,omitempty"`
	Span    Span     `json:"col_span" bson:"col_span"`
	Tags    []string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// HasTag reports whether the block carries the given tag.
func (b Block) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// blockJSON mirrors Block with the content left raw so the registry can
// narrow it to the concrete shape declared by the type tag.
type blockJSON struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
	Span    Span            `json:"col_span"`
	Tags    []string        `json:"tags,omitempty"`
}

// UnmarshalJSON decodes a block, narrowing the content through the default
// registry. Unknown type tags are tolerated: the block decodes with nil
// content so pages written by an older or newer schema still load, and the
// dispatcher later skips the block with a diagnostic instead of failing the
// whole page.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return ErrInvalidBlockID
	}

	b.ID = raw.ID
	b.Type = raw.Type
	b.Tags = raw.Tags
	b.Span = raw.Span
	if b.Span != SpanHalf && b.Span != SpanFull {
		b.Span = SpanFull
	}

	b.Content = nil
	if len(raw.Content) > 0 && string(raw.Content) != "null" {
		c, err := Default().DecodeContent(raw.Type, raw.Content)
		if err != nil {
			if errors.Is(err, ErrUnknownType) {
				return nil // tolerated, content stays nil
			}
			return fmt.Errorf("decode %s content: %w", raw.Type, err)
		}
		b.Content = c
	}
	return nil
}

// Page is an ordered collection of blocks plus a title and optional tags.
// The block order is semantically meaningful: it is both document order and
// the index space used by reorder operations. There is no separate positions
// table.
type Page struct {
	ID     string   `json:"id" bson:"_id"`
	Title  string   `json:"title" bson:"title"`
	Blocks []Block  `json:"blocks" bson:"blocks"`
	Tags   []string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// Clone returns a deep copy of the page by round-tripping it through the
// canonical JSON codec. Content values are re-narrowed by the registry, so
// the copy satisfies the same type/content invariants as the original.
func (p *Page) Clone() (*Page, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("clone page %s: %w", p.ID, err)
	}
	var out Page
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone page %s: %w", p.ID, err)
	}
	return &out, nil
}

// Validate checks page integrity: non-empty page ID, unique block IDs, and
// type/content agreement for every block with non-nil content.
func (p *Page) Validate() error {
	if p.ID == "" {
		return errors.New("page ID must not be empty")
	}
	seen := make(map[string]struct{}, len(p.Blocks))
	for _, b := range p.Blocks {
		if b.ID == "" {
			return ErrInvalidBlockID
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("duplicate block ID %q", b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.Content != nil && !Default().Recognize(b) {
			return fmt.Errorf("block %q: %w", b.ID, ErrContentMismatch)
		}
	}
	return nil
}

// IndexOf returns the position of the block with the given ID in blocks,
// or -1 if no block matches. Lookups are always by ID, never by position,
// so stale IDs from concurrent UI events degrade gracefully.
func IndexOf(blocks []Block, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}
