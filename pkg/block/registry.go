package block

import (
	"encoding/json"
	"fmt"
)

// Factory produces the default content for a block type. The returned value
// must satisfy the same entry's recognizer, which is what lets "create block"
// always render without extra validation.
type Factory func() Content

// Recognizer reports whether a content value's shape matches the entry's
// type AND the supplied tag names that type. Recognizers never panic on
// foreign types; they return false.
type Recognizer func(c Content, t Type) bool

// Decoder narrows raw JSON into the entry's concrete content type.
type Decoder func(data []byte) (Content, error)

// Entry bundles everything the engine and dispatcher need for one block
// type: a default-content factory, the recognizer that gates rendering, and
// the codec used when pages are loaded from storage.
type Entry struct {
	New    Factory
	Is     Recognizer
	Decode Decoder
}

// Registry maps type tags to their entries. New block types are added by
// registration rather than by editing a central switch.
//
// Registry is not safe for concurrent registration; register everything at
// startup. Lookups are read-only afterwards.
type Registry struct {
	entries map[Type]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Type]Entry)}
}

// Register adds an entry for a type. Registering a type twice or with an
// incomplete entry is a programmer error and fails loudly.
func (r *Registry) Register(t Type, e Entry) error {
	if t == "" {
		return fmt.Errorf("register: empty type tag")
	}
	if e.New == nil || e.Is == nil || e.Decode == nil {
		return fmt.Errorf("register %s: entry must have factory, recognizer, and decoder", t)
	}
	if _, dup := r.entries[t]; dup {
		return fmt.Errorf("register %s: already registered", t)
	}
	r.entries[t] = e
	return nil
}

// Known reports whether a type tag has an entry.
func (r *Registry) Known(t Type) bool {
	_, ok := r.entries[t]
	return ok
}

// DefaultContent returns type-correct default content for t.
// Returns ErrUnknownType for unregistered tags.
func (r *Registry) DefaultContent(t Type) (Content, error) {
	e, ok := r.entries[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return e.New(), nil
}

// Recognize reports whether the block's content shape agrees with its type
// tag. Blocks with unknown types or nil content are never recognized.
func (r *Registry) Recognize(b Block) bool {
	e, ok := r.entries[b.Type]
	if !ok || b.Content == nil {
		return false
	}
	return e.Is(b.Content, b.Type)
}

// DecodeContent narrows raw JSON into the concrete content type for t.
// Returns ErrUnknownType for unregistered tags so callers can decide whether
// to tolerate stale schema data.
func (r *Registry) DecodeContent(t Type, data []byte) (Content, error) {
	e, ok := r.entries[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return e.Decode(data)
}

// decodeAs narrows raw JSON to a concrete content type.
func decodeAs[T Content](data []byte) (Content, error) {
	var c T
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// defaultRegistry holds the built-in block types. It is assembled once at
// package init; Register cannot fail for the built-ins.
var defaultRegistry = func() *Registry {
	r := NewRegistry()
	builtins := []struct {
		t Type
		e Entry
	}{
		{TypeText, Entry{
			New:    func() Content { return TextContent{} },
			Is:     IsTextContent,
			Decode: decodeAs[TextContent],
		}},
		{TypeCode, Entry{
			New:    func() Content { return CodeContent{} },
			Is:     IsCodeContent,
			Decode: decodeAs[CodeContent],
		}},
		{TypeLink, Entry{
			New:    func() Content { return LinkContent{} },
			Is:     IsLinkContent,
			Decode: decodeAs[LinkContent],
		}},
		{TypeTable, Entry{
			New:    func() Content { return TableContent{Header: []string{""}, Rows: [][]string{{""}}} },
			Is:     IsTableContent,
			Decode: decodeAs[TableContent],
		}},
		{TypeAgenda, Entry{
			New:    func() Content { return AgendaContent{Items: []AgendaItem{}} },
			Is:     IsAgendaContent,
			Decode: decodeAs[AgendaContent],
		}},
		{TypeImage, Entry{
			New:    func() Content { return ImageContent{} },
			Is:     IsImageContent,
			Decode: decodeAs[ImageContent],
		}},
		{TypeDiagram, Entry{
			New:    func() Content { return DiagramContent{DOT: "digraph G {\n}\n"} },
			Is:     IsDiagramContent,
			Decode: decodeAs[DiagramContent],
		}},
		{TypeAudio, Entry{
			New:    func() Content { return AudioContent{} },
			Is:     IsAudioContent,
			Decode: decodeAs[AudioContent],
		}},
		{TypeVideo, Entry{
			New:    func() Content { return VideoContent{} },
			Is:     IsVideoContent,
			Decode: decodeAs[VideoContent],
		}},
		{TypeWhiteboard, Entry{
			New:    func() Content { return WhiteboardContent{Strokes: []Stroke{}} },
			Is:     IsWhiteboardContent,
			Decode: decodeAs[WhiteboardContent],
		}},
	}
	for _, b := range builtins {
		if err := r.Register(b.t, b.e); err != nil {
			panic(err)
		}
	}
	return r
}()

// Default returns the registry with all built-in block types.
func Default() *Registry { return defaultRegistry }
