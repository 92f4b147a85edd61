package grid

import (
	"fmt"
	"testing"

	"github.com/pagedeck/pagedeck/pkg/block"
)

// spanBlocks builds blocks b1..bn with the given width classes.
func spanBlocks(spans ...block.Span) []block.Block {
	out := make([]block.Block, len(spans))
	for i, s := range spans {
		out[i] = block.Block{ID: fmt.Sprintf("b%d", i+1), Type: block.TypeText, Span: s}
	}
	return out
}

func TestComputeColumnMap(t *testing.T) {
	half := block.SpanHalf
	full := block.SpanFull

	tests := []struct {
		name  string
		spans []block.Span
		want  []Column
	}{
		{
			name:  "full block resets the cursor",
			spans: []block.Span{half, half, full, half},
			want:  []Column{ColLeft, ColRight, ColLeft, ColLeft},
		},
		{
			name:  "halves alternate",
			spans: []block.Span{half, half, half, half},
			want:  []Column{ColLeft, ColRight, ColLeft, ColRight},
		},
		{
			name:  "fulls always left",
			spans: []block.Span{full, full, full},
			want:  []Column{ColLeft, ColLeft, ColLeft},
		},
		{
			name:  "full after odd half resets",
			spans: []block.Span{half, full, half, half},
			want:  []Column{ColLeft, ColLeft, ColLeft, ColRight},
		},
		{
			name:  "single half",
			spans: []block.Span{half},
			want:  []Column{ColLeft},
		},
		{
			name:  "empty",
			spans: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := spanBlocks(tt.spans...)
			got := ComputeColumnMap(blocks)
			if len(got) != len(tt.want) {
				t.Fatalf("map has %d entries, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				id := blocks[i].ID
				if got[id] != want {
					t.Errorf("column[%s] = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestSplitRows(t *testing.T) {
	half := block.SpanHalf
	full := block.SpanFull

	tests := []struct {
		name  string
		spans []block.Span
		// each row as "full", "pair", or "solo"
		want []string
	}{
		{
			name:  "half pair then full",
			spans: []block.Span{half, half, full},
			want:  []string{"pair", "full"},
		},
		{
			name:  "odd half before full gets its own row",
			spans: []block.Span{half, full, half},
			want:  []string{"solo", "full", "solo"},
		},
		{
			name:  "trailing odd half",
			spans: []block.Span{half, half, half},
			want:  []string{"pair", "solo"},
		},
		{
			name:  "empty",
			spans: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := SplitRows(spanBlocks(tt.spans...))
			if len(rows) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.want))
			}
			for i, kind := range tt.want {
				row := rows[i]
				switch kind {
				case "full":
					if !row.Full || row.Right != nil {
						t.Errorf("row %d = %+v, want full", i, row)
					}
				case "pair":
					if row.Full || row.Left == nil || row.Right == nil {
						t.Errorf("row %d = %+v, want half pair", i, row)
					}
				case "solo":
					if row.Full || row.Left == nil || row.Right != nil {
						t.Errorf("row %d = %+v, want lone half", i, row)
					}
				}
			}
		})
	}
}

// Rows and the column map must agree: the left slot of every row sits in
// the left column, the right slot in the right column.
func TestSplitRowsAgreesWithColumnMap(t *testing.T) {
	half := block.SpanHalf
	full := block.SpanFull
	blocks := spanBlocks(half, half, full, half, full, half, half, half)

	columns := ComputeColumnMap(blocks)
	for _, row := range SplitRows(blocks) {
		if columns[row.Left.ID] != ColLeft {
			t.Errorf("row left block %s mapped to column %d", row.Left.ID, columns[row.Left.ID])
		}
		if row.Right != nil && columns[row.Right.ID] != ColRight {
			t.Errorf("row right block %s mapped to column %d", row.Right.ID, columns[row.Right.ID])
		}
	}
}
