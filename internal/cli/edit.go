package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/engine"
	"github.com/pagedeck/pagedeck/pkg/filter"
	"github.com/pagedeck/pagedeck/pkg/grid"
	"github.com/pagedeck/pagedeck/pkg/store"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <page-id>",
		Short: "Edit a page interactively",
		Long: `Edit opens a page in the terminal editor.

Keys:
  up/down, k/j     move the cursor
  shift+up/down    move the block (reorder)
  w                toggle half/full width
  n                insert a block after the cursor
  tab              cycle the type for the next insert
  d                delete the block under the cursor
  f                cycle the tag filter
  s                save
  q                quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openFileStore(cmd)
			if err != nil {
				return err
			}
			p, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			m := newEditorModel(p, st)
			prog := tea.NewProgram(m, tea.WithContext(cmd.Context()))
			final, err := prog.Run()
			if err != nil {
				return err
			}
			if em, ok := final.(editorModel); ok && em.err != nil {
				return em.err
			}
			return nil
		},
	}
}

// =============================================================================
// EditorModel - Interactive Block Editing
// =============================================================================

// editorModel is the bubbletea model for the page editor.
//
// The model owns the current block array and commits each array returned by
// an engine operation as the new state before the next operation runs. The
// cursor addresses the visible (filtered) view, but every mutation is keyed
// by block ID against the full unfiltered array, so filtering never skews
// reorder arithmetic.
type editorModel struct {
	page  *block.Page
	store *store.FileStore
	eng   *engine.Engine

	fltr    filter.State
	tagIdx  int // position in the filter cycle; 0 = no filter
	cursor  int // index into the visible slice
	insert  int // position in block.Types() for the next insert
	width   int
	dirty   bool
	status  string
	err     error
}

func newEditorModel(p *block.Page, st *store.FileStore) editorModel {
	m := editorModel{
		page:  p,
		store: st,
		eng:   engine.New(nil),
		width: 80,
	}
	m.fltr.SetPage(p.ID)
	return m
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

// visible returns the filtered view the cursor navigates.
func (m *editorModel) visible() []block.Block {
	return filter.Visible(m.page.Blocks, m.fltr.Active())
}

// commit adopts the array returned by an engine operation as the new state.
func (m *editorModel) commit(blocks []block.Block) {
	m.page.Blocks = blocks
	m.dirty = true
	if v := m.visible(); m.cursor >= len(v) && m.cursor > 0 {
		m.cursor = len(v) - 1
	}
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}

		case "shift+up", "K":
			m.moveCursorBlock(-1)

		case "shift+down", "J":
			m.moveCursorBlock(+1)

		case "w":
			if b, ok := m.cursorBlock(); ok {
				m.commit(m.eng.ToggleSpan(m.page.Blocks, b.ID))
			}

		case "tab":
			m.insert = (m.insert + 1) % len(block.Types())
			m.status = fmt.Sprintf("next insert: %s", block.Types()[m.insert])

		case "n":
			afterID := ""
			if b, ok := m.cursorBlock(); ok {
				afterID = b.ID
			}
			blocks, err := m.eng.InsertAfter(m.page.Blocks, afterID, block.Types()[m.insert])
			if err != nil {
				m.status = err.Error()
				break
			}
			m.commit(blocks)
			m.status = fmt.Sprintf("inserted %s block", block.Types()[m.insert])

		case "d":
			if b, ok := m.cursorBlock(); ok {
				m.commit(m.eng.DeleteByID(m.page.Blocks, b.ID))
				m.status = "deleted block"
			}

		case "f":
			m.cycleFilter()

		case "s":
			if err := m.store.Put(context.Background(), m.page); err != nil {
				m.status = "save failed: " + err.Error()
				break
			}
			m.dirty = false
			m.status = "saved"
		}
	}
	return m, nil
}

// moveCursorBlock reorders the block under the cursor one visible position
// up or down. The target position is expressed as the neighbor's ID, so the
// engine's ID-based reorder stays correct even when the filter hides blocks
// between the two.
func (m *editorModel) moveCursorBlock(delta int) {
	v := m.visible()
	target := m.cursor + delta
	if m.cursor < 0 || m.cursor >= len(v) || target < 0 || target >= len(v) {
		return
	}
	m.commit(m.eng.Reorder(m.page.Blocks, v[m.cursor].ID, v[target].ID))
	m.cursor = target
}

// cursorBlock returns the block under the cursor in the visible view.
func (m *editorModel) cursorBlock() (block.Block, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return block.Block{}, false
	}
	return v[m.cursor], true
}

// cycleFilter steps through: no filter, then each page tag in turn.
// Navigating pages resets the filter via State.SetPage, so stale tag
// selections never leak across pages.
func (m *editorModel) cycleFilter() {
	tags := filter.Tags(m.page.Blocks)
	m.fltr.Clear()
	if len(tags) == 0 {
		m.status = "no tags to filter by"
		return
	}
	m.tagIdx = (m.tagIdx + 1) % (len(tags) + 1)
	if m.tagIdx == 0 {
		m.status = "filter cleared"
	} else {
		m.fltr.Toggle(tags[m.tagIdx-1])
		m.status = fmt.Sprintf("filter: %s", tags[m.tagIdx-1])
	}
	m.cursor = 0
}

// =============================================================================
// View
// =============================================================================

func (m editorModel) View() string {
	var b strings.Builder

	title := m.page.Title
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("k/j move  K/J reorder  w width  n insert  tab type  d delete  f filter  s save  q quit"))
	b.WriteString("\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(StyleDim.Render("empty page - press n to insert a block"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderGrid(visible))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// renderGrid lays the visible blocks out in two columns following the same
// placement rules as the real grid, with the drag handle on the block's
// outer edge: left-column blocks get it on the left gutter, right-column
// blocks on the right, so handles never sit between adjacent blocks.
func (m editorModel) renderGrid(visible []block.Block) string {
	full := m.width - 6
	if full < 20 {
		full = 20
	}
	half := full / 2

	selected := ""
	if b, ok := m.cursorBlock(); ok {
		selected = b.ID
	}

	var b strings.Builder
	for _, row := range grid.SplitRows(visible) {
		if row.Full {
			b.WriteString(m.renderBlock(*row.Left, grid.ColLeft, full, selected))
			b.WriteString("\n")
			continue
		}
		left := m.renderBlock(*row.Left, grid.ColLeft, half, selected)
		if row.Right == nil {
			b.WriteString(left)
			b.WriteString("\n")
			continue
		}
		right := m.renderBlock(*row.Right, grid.ColRight, half, selected)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
		b.WriteString("\n")
	}
	return b.String()
}

// renderBlock draws one block box with its gutter handle.
func (m editorModel) renderBlock(bl block.Block, col grid.Column, width int, selectedID string) string {
	style := styleBlockBox
	if bl.ID == selectedID {
		style = styleBlockSelected
	}

	header := styleBlockType.Render(string(bl.Type))
	if len(bl.Tags) > 0 {
		header += " " + styleBlockTag.Render("#"+strings.Join(bl.Tags, " #"))
	}
	body := blockSummary(bl)
	box := style.Width(width - 2).Render(header + "\n" + StyleValue.Render(body))

	handle := " "
	if bl.ID == selectedID {
		handle = styleHandle.Render("⠿")
	}
	if col == grid.ColRight {
		return lipgloss.JoinHorizontal(lipgloss.Top, box, handle)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, handle, box)
}

// blockSummary produces a one-line preview of a block's content. The switch
// is exhaustive over the built-in content union; unrenderable content (an
// unknown type from a newer schema) gets a placeholder rather than an error.
func blockSummary(b block.Block) string {
	switch c := b.Content.(type) {
	case block.TextContent:
		return firstLine(c.Markdown, "(empty text)")
	case block.CodeContent:
		return firstLine(c.Source, "(empty "+c.Language+" listing)")
	case block.LinkContent:
		if c.Title != "" {
			return c.Title
		}
		return firstLine(c.URL, "(no url)")
	case block.TableContent:
		return fmt.Sprintf("%d columns, %d rows", len(c.Header), len(c.Rows))
	case block.AgendaContent:
		done := 0
		for _, it := range c.Items {
			if it.Done {
				done++
			}
		}
		return fmt.Sprintf("%d/%d done", done, len(c.Items))
	case block.ImageContent:
		return firstLine(c.Alt, c.URL)
	case block.DiagramContent:
		return fmt.Sprintf("DOT, %d lines", strings.Count(c.DOT, "\n")+1)
	case block.AudioContent:
		return firstLine(c.Title, c.URL)
	case block.VideoContent:
		return firstLine(c.Title, c.URL)
	case block.WhiteboardContent:
		return fmt.Sprintf("%d strokes", len(c.Strokes))
	default:
		return "(unrenderable content)"
	}
}

func firstLine(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}
