// Package grid simulates two-column grid placement for block documents.
//
// The simulation mirrors CSS grid auto-placement for a two-column grid in
// which blocks flow left-to-right, top-to-bottom, and a full-width block
// always starts a fresh row. It never touches a real layout engine: the
// output decides which outer edge (left or right gutter) per-block controls
// are anchored to, so drag handles and insert affordances never collide
// with the neighboring block in the rendered grid.
//
// If the rendered layout primitive ever changes (e.g. away from a
// two-column CSS grid), this simulation must be re-derived to match it; the
// HTML renderer in pkg/render emits exactly the grid these rules model.
package grid

import "github.com/pagedeck/pagedeck/pkg/block"

// Column identifies one of the two grid columns.
type Column int

const (
	// ColLeft is the left column.
	ColLeft Column = 0
	// ColRight is the right column.
	ColRight Column = 1
)

// ComputeColumnMap assigns each block to the column it occupies in the
// two-column grid. The pass is deterministic and O(n):
//
//   - a half-width block takes the current cursor column, then the cursor
//     flips to the other column
//   - a full-width block takes the left column unconditionally and resets
//     the cursor to the left, whatever its prior value
//
// So [half half full half] maps to columns [0 1 0 0]: the full-width block
// forces a fresh row and the following half starts at the left again.
func ComputeColumnMap(blocks []block.Block) map[string]Column {
	out := make(map[string]Column, len(blocks))
	col := ColLeft
	for _, b := range blocks {
		if b.Span == block.SpanFull {
			out[b.ID] = ColLeft
			col = ColLeft
			continue
		}
		out[b.ID] = col
		if col == ColLeft {
			col = ColRight
		} else {
			col = ColLeft
		}
	}
	return out
}

// Row is one visual row of the grid: either a single full-width block or up
// to two half-width blocks.
type Row struct {
	Left  *block.Block // nil only for an empty row, which never occurs
	Right *block.Block // nil for full-width rows and trailing odd halves
	Full  bool         // true when Left spans both columns
}

// SplitRows groups blocks into visual rows using the same cursor rules as
// ComputeColumnMap. Terminal and server UIs use this to lay blocks out
// without re-deriving the placement logic.
func SplitRows(blocks []block.Block) []Row {
	var rows []Row
	var pending *block.Block
	for i := range blocks {
		b := &blocks[i]
		if b.Span == block.SpanFull {
			if pending != nil {
				rows = append(rows, Row{Left: pending})
				pending = nil
			}
			rows = append(rows, Row{Left: b, Full: true})
			continue
		}
		if pending == nil {
			pending = b
			continue
		}
		rows = append(rows, Row{Left: pending, Right: b})
		pending = nil
	}
	if pending != nil {
		rows = append(rows, Row{Left: pending})
	}
	return rows
}
