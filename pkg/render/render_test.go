package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pagedeck/pagedeck/pkg/block"
)

func TestDispatcherRendersEveryBuiltinType(t *testing.T) {
	d := NewDispatcher(nil, nil)

	for _, typ := range block.Types() {
		t.Run(string(typ), func(t *testing.T) {
			content, err := block.Default().DefaultContent(typ)
			if err != nil {
				t.Fatal(err)
			}
			b := block.Block{ID: "b1", Type: typ, Content: content, Span: block.SpanFull}

			out, ok := d.Render(b)
			if !ok {
				t.Fatalf("Render(%s) ok = false", typ)
			}
			if len(out) == 0 {
				t.Errorf("Render(%s) produced no output", typ)
			}
		})
	}
}

func TestDispatcherSkipsUnrenderable(t *testing.T) {
	d := NewDispatcher(nil, nil)

	tests := []struct {
		name  string
		block block.Block
	}{
		{
			name:  "unknown type",
			block: block.Block{ID: "b1", Type: "hologram", Content: block.TextContent{}, Span: block.SpanFull},
		},
		{
			name:  "nil content",
			block: block.Block{ID: "b1", Type: block.TypeText, Span: block.SpanFull},
		},
		{
			name:  "content shape disagrees with type tag",
			block: block.Block{ID: "b1", Type: block.TypeText, Content: block.CodeContent{Language: "go"}, Span: block.SpanFull},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := d.Render(tt.block)
			if ok {
				t.Errorf("Render() ok = true, want skip; output %q", out)
			}
		})
	}
}

func TestDispatcherAbsorbsHandlerErrors(t *testing.T) {
	d := NewDispatcher(nil, nil)
	d.Register(block.TypeText, HandlerFunc(func(w io.Writer, b block.Block) error {
		return errors.New("boom")
	}))

	b := block.Block{ID: "b1", Type: block.TypeText, Content: block.TextContent{Markdown: "x"}, Span: block.SpanFull}
	if _, ok := d.Render(b); ok {
		t.Error("Render() ok = true despite handler error")
	}
}

func TestDispatcherCustomHandler(t *testing.T) {
	d := NewDispatcher(nil, nil)
	d.Register(block.TypeText, HandlerFunc(func(w io.Writer, b block.Block) error {
		_, err := io.WriteString(w, "<custom/>")
		return err
	}))

	b := block.Block{ID: "b1", Type: block.TypeText, Content: block.TextContent{Markdown: "x"}, Span: block.SpanFull}
	out, ok := d.Render(b)
	if !ok || string(out) != "<custom/>" {
		t.Errorf("Render() = %q, %v; want custom fragment", out, ok)
	}
}

func TestHandlersEscapeContent(t *testing.T) {
	d := NewDispatcher(nil, nil)

	tests := []struct {
		name    string
		block   block.Block
		leaked  string
		escaped string
	}{
		{
			name:    "text",
			block:   block.Block{ID: "b1", Type: block.TypeText, Content: block.TextContent{Markdown: `<script>alert(1)</script>`}, Span: block.SpanFull},
			leaked:  "<script>",
			escaped: "&lt;script&gt;",
		},
		{
			name:    "code",
			block:   block.Block{ID: "b1", Type: block.TypeCode, Content: block.CodeContent{Language: "go", Source: `fmt.Println("<b>")`}, Span: block.SpanFull},
			leaked:  "<b>",
			escaped: "&lt;b&gt;",
		},
		{
			name:    "table",
			block:   block.Block{ID: "b1", Type: block.TypeTable, Content: block.TableContent{Header: []string{"<th>"}, Rows: [][]string{{"<td>"}}}, Span: block.SpanFull},
			leaked:  "<th><",
			escaped: "&lt;th&gt;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := d.Render(tt.block)
			if !ok {
				t.Fatal("Render() ok = false")
			}
			if strings.Contains(string(out), tt.leaked) {
				t.Errorf("output leaked raw markup: %s", out)
			}
			if !strings.Contains(string(out), tt.escaped) {
				t.Errorf("output missing escaped form %q: %s", tt.escaped, out)
			}
		})
	}
}

func TestRendererPage(t *testing.T) {
	r := NewRenderer(nil, nil)
	p := &block.Page{
		ID:    "p1",
		Title: "My <Notes>",
		Blocks: []block.Block{
			{ID: "a", Type: block.TypeText, Content: block.TextContent{Markdown: "alpha"}, Span: block.SpanHalf},
			{ID: "b", Type: block.TypeText, Content: block.TextContent{Markdown: "beta"}, Span: block.SpanHalf},
			{ID: "c", Type: block.TypeText, Content: block.TextContent{Markdown: "gamma"}, Span: block.SpanFull},
		},
	}

	var buf bytes.Buffer
	if err := r.Page(context.Background(), &buf, p, nil); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "My &lt;Notes&gt;") {
		t.Error("title not escaped")
	}
	if !strings.Contains(out, `class="page-grid"`) {
		t.Error("missing grid container")
	}
	for id, col := range map[string]int{"a": 0, "b": 1, "c": 0} {
		want := fmt.Sprintf(`data-block-id="%s" data-column="%d"`, id, col)
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, `block span-half`) || !strings.Contains(out, `block span-full`) {
		t.Error("span classes missing")
	}

	// Document order must be preserved in the markup.
	ia := strings.Index(out, "alpha")
	ib := strings.Index(out, "beta")
	ic := strings.Index(out, "gamma")
	if !(ia < ib && ib < ic) {
		t.Errorf("blocks out of order: alpha@%d beta@%d gamma@%d", ia, ib, ic)
	}
}

func TestRendererPageAppliesFilter(t *testing.T) {
	r := NewRenderer(nil, nil)
	p := &block.Page{
		ID:    "p1",
		Title: "Filtered",
		Blocks: []block.Block{
			{ID: "a", Type: block.TypeText, Content: block.TextContent{Markdown: "shown"}, Span: block.SpanHalf, Tags: []string{"work"}},
			{ID: "b", Type: block.TypeText, Content: block.TextContent{Markdown: "hidden"}, Span: block.SpanHalf, Tags: []string{"play"}},
			{ID: "c", Type: block.TypeText, Content: block.TextContent{Markdown: "also-shown"}, Span: block.SpanHalf, Tags: []string{"work"}},
		},
	}

	var buf bytes.Buffer
	if err := r.Page(context.Background(), &buf, p, []string{"work"}); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "hidden") {
		t.Error("filtered block leaked into output")
	}
	// The grid flows the remaining blocks: with b hidden, c takes the right
	// column of the first row.
	if !strings.Contains(out, `data-block-id="c" data-column="1"`) {
		t.Error("column map not recomputed over visible blocks")
	}
}

func TestRendererPageSkipsCorruptBlock(t *testing.T) {
	r := NewRenderer(nil, nil)
	p := &block.Page{
		ID:    "p1",
		Title: "Tolerant",
		Blocks: []block.Block{
			{ID: "a", Type: block.TypeText, Content: block.TextContent{Markdown: "good"}, Span: block.SpanFull},
			{ID: "b", Type: "hologram", Span: block.SpanFull}, // unknown type, nil content
			{ID: "c", Type: block.TypeText, Content: block.TextContent{Markdown: "still good"}, Span: block.SpanFull},
		},
	}

	var buf bytes.Buffer
	if err := r.Page(context.Background(), &buf, p, nil); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "good") || !strings.Contains(out, "still good") {
		t.Error("healthy blocks missing from output")
	}
	if strings.Contains(out, `data-block-id="b"`) {
		t.Error("unrenderable block emitted a section")
	}
}

// fakeDiagrams returns canned SVG, or an error to exercise the fallback.
type fakeDiagrams struct {
	svg []byte
	err error
}

func (f fakeDiagrams) SVG(ctx context.Context, dot string) ([]byte, error) { return f.svg, f.err }

func TestRendererDiagramBlocks(t *testing.T) {
	p := &block.Page{
		ID:    "p1",
		Title: "Diagrams",
		Blocks: []block.Block{
			{ID: "d", Type: block.TypeDiagram, Content: block.DiagramContent{DOT: "digraph G {}"}, Span: block.SpanFull},
		},
	}

	t.Run("native renderer emits inline svg", func(t *testing.T) {
		r := NewRenderer(nil, nil).WithDiagrams(fakeDiagrams{svg: []byte("<svg>ok</svg>")})
		var buf bytes.Buffer
		if err := r.Page(context.Background(), &buf, p, nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "<svg>ok</svg>") {
			t.Error("inline SVG missing")
		}
	})

	t.Run("render failure falls back to source", func(t *testing.T) {
		r := NewRenderer(nil, nil).WithDiagrams(fakeDiagrams{err: errors.New("graphviz exploded")})
		var buf bytes.Buffer
		if err := r.Page(context.Background(), &buf, p, nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "digraph G {}") {
			t.Error("DOT source fallback missing")
		}
	})

	t.Run("no diagram renderer uses source form", func(t *testing.T) {
		r := NewRenderer(nil, nil)
		var buf bytes.Buffer
		if err := r.Page(context.Background(), &buf, p, nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "digraph G {}") {
			t.Error("DOT source missing")
		}
	})
}
