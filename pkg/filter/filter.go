// Package filter implements tag-based visibility for block documents.
//
// Filtering is a derived, read-only view: it decides which blocks to render
// without altering the underlying array's order, indices, or identity. The
// reorder machinery always indexes the full unfiltered list, so visibility
// has no effect on drag index arithmetic.
package filter

import (
	"slices"
	"strings"

	"github.com/pagedeck/pagedeck/pkg/block"
)

// IsVisible reports whether a block passes the active tag filter. A block
// is visible when no tags are active, or when it shares at least one tag
// with the active set (OR semantics: any one match qualifies). Visibility
// is computed independently per block.
func IsVisible(b block.Block, activeTags []string) bool {
	if len(activeTags) == 0 {
		return true
	}
	for _, t := range activeTags {
		if b.HasTag(t) {
			return true
		}
	}
	return false
}

// Visible returns the blocks that pass the filter, in document order. The
// result is a new slice for rendering only; it must never feed reorder
// operations, which index the unfiltered array.
func Visible(blocks []block.Block, activeTags []string) []block.Block {
	out := make([]block.Block, 0, len(blocks))
	for _, b := range blocks {
		if IsVisible(b, activeTags) {
			out = append(out, b)
		}
	}
	return out
}

// Tags returns the distinct tags present across the blocks, sorted. Used by
// UIs to offer filter choices.
func Tags(blocks []block.Block) []string {
	seen := make(map[string]struct{})
	for _, b := range blocks {
		for _, t := range b.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// State holds the active filter for one page at a time. Switching to a
// different page resets the selection: stale tags must not carry over to a
// page that may not have them at all.
//
// State is not safe for concurrent use; it belongs to a single UI loop.
type State struct {
	pageID string
	active []string
}

// SetPage scopes the filter to a page, clearing the active set when the
// page changes. Setting the same page again keeps the selection.
func (s *State) SetPage(pageID string) {
	if s.pageID != pageID {
		s.active = nil
	}
	s.pageID = pageID
}

// Toggle adds the tag to the active set, or removes it if already active.
// Tags are matched case-insensitively against the stored lowercase form.
func (s *State) Toggle(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return
	}
	for i, t := range s.active {
		if t == tag {
			s.active = slices.Delete(s.active, i, i+1)
			return
		}
	}
	s.active = append(s.active, tag)
}

// Clear empties the active set without changing the page scope.
func (s *State) Clear() { s.active = nil }

// Active returns the active tags. The result is a copy.
func (s *State) Active() []string { return slices.Clone(s.active) }
