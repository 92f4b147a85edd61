package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/pagedeck/pagedeck/pkg/block"
)

// registerBuiltins installs the HTML handlers for the built-in block types.
func registerBuiltins(d *Dispatcher) {
	d.Register(block.TypeText, HandlerFunc(renderText))
	d.Register(block.TypeCode, HandlerFunc(renderCode))
	d.Register(block.TypeLink, HandlerFunc(renderLink))
	d.Register(block.TypeTable, HandlerFunc(renderTable))
	d.Register(block.TypeAgenda, HandlerFunc(renderAgenda))
	d.Register(block.TypeImage, HandlerFunc(renderImage))
	d.Register(block.TypeDiagram, HandlerFunc(renderDiagram))
	d.Register(block.TypeAudio, HandlerFunc(renderAudio))
	d.Register(block.TypeVideo, HandlerFunc(renderVideo))
	d.Register(block.TypeWhiteboard, HandlerFunc(renderWhiteboard))
}

// renderText emits markdown source as escaped paragraphs. Rich-text
// rendering is the sub-editor's concern; the document surface only needs a
// readable fallback.
func renderText(w io.Writer, b block.Block) error {
	c := b.Content.(block.TextContent)
	for _, para := range strings.Split(c.Markdown, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "<p>%s</p>\n", html.EscapeString(para)); err != nil {
			return err
		}
	}
	return nil
}

func renderCode(w io.Writer, b block.Block) error {
	c := b.Content.(block.CodeContent)
	lang := ""
	if c.Language != "" {
		lang = fmt.Sprintf(` class="language-%s"`, html.EscapeString(c.Language))
	}
	_, err := fmt.Fprintf(w, "<pre><code%s>%s</code></pre>\n", lang, html.EscapeString(c.Source))
	return err
}

func renderLink(w io.Writer, b block.Block) error {
	c := b.Content.(block.LinkContent)
	title := c.Title
	if title == "" {
		title = c.URL
	}
	_, err := fmt.Fprintf(w, `<a href=%q rel="noopener">%s</a>`+"\n",
		c.URL, html.EscapeString(title))
	return err
}

func renderTable(w io.Writer, b block.Block) error {
	c := b.Content.(block.TableContent)
	var sb strings.Builder
	sb.WriteString("<table>\n<thead><tr>")
	for _, h := range c.Header {
		fmt.Fprintf(&sb, "<th>%s</th>", html.EscapeString(h))
	}
	sb.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range c.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(cell))
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderAgenda(w io.Writer, b block.Block) error {
	c := b.Content.(block.AgendaContent)
	var sb strings.Builder
	sb.WriteString(`<ul class="agenda">` + "\n")
	for _, item := range c.Items {
		checked := ""
		if item.Done {
			checked = " checked"
		}
		fmt.Fprintf(&sb, `<li><input type="checkbox" disabled%s> %s</li>`+"\n",
			checked, html.EscapeString(item.Text))
	}
	sb.WriteString("</ul>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderImage(w io.Writer, b block.Block) error {
	c := b.Content.(block.ImageContent)
	_, err := fmt.Fprintf(w, "<img src=%q alt=%q>\n", c.URL, c.Alt)
	return err
}

// renderDiagram emits the DOT source as a preformatted fallback. The page
// renderer swaps it for inline SVG when a diagram renderer is configured
// (see Renderer.WithDiagrams); handlers stay free of graphviz so dispatch
// works in contexts where native rendering is unavailable.
func renderDiagram(w io.Writer, b block.Block) error {
	c := b.Content.(block.DiagramContent)
	_, err := fmt.Fprintf(w, `<pre class="diagram-source">%s</pre>`+"\n", html.EscapeString(c.DOT))
	return err
}

func renderAudio(w io.Writer, b block.Block) error {
	c := b.Content.(block.AudioContent)
	_, err := fmt.Fprintf(w, "<audio controls src=%q>%s</audio>\n",
		c.URL, html.EscapeString(c.Title))
	return err
}

func renderVideo(w io.Writer, b block.Block) error {
	c := b.Content.(block.VideoContent)
	_, err := fmt.Fprintf(w, "<video controls src=%q>%s</video>\n",
		c.URL, html.EscapeString(c.Title))
	return err
}

// renderWhiteboard emits strokes as SVG polylines in a fixed viewbox.
func renderWhiteboard(w io.Writer, b block.Block) error {
	c := b.Content.(block.WhiteboardContent)
	var sb strings.Builder
	sb.WriteString(`<svg class="whiteboard" viewBox="0 0 1000 600" xmlns="http://www.w3.org/2000/svg">` + "\n")
	for _, s := range c.Strokes {
		color := s.Color
		if color == "" {
			color = "#000"
		}
		pts := make([]string, len(s.Points))
		for i, p := range s.Points {
			pts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
		}
		fmt.Fprintf(&sb, `<polyline fill="none" stroke=%q points=%q/>`+"\n",
			color, strings.Join(pts, " "))
	}
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
