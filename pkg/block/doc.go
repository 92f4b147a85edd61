// Package block defines the canonical data model for block documents:
// pages, typed content blocks, and the content type registry.
//
// A page is an ordered sequence of heterogeneous blocks. Each block carries
// a stable ID, an immutable type tag, a type-dependent content payload, a
// width class for the two-column grid, and optional filter tags. The block
// order is the single source of truth for both display order and the index
// space used by reorder operations.
//
// # Content Union
//
// Content is a sealed union: one concrete struct per block type, all
// implementing the unexported marker method. The per-type recognizers
// (IsTextContent, IsCodeContent, ...) are the single point of truth used to
// narrow a polymorphic content value before a type-specific renderer or
// editor consumes it. A recognizer returns true only when both the concrete
// shape and the claimed type tag match.
//
// # Registry
//
// The registry maps each type tag to a {factory, recognizer, decoder}
// entry. Factories produce default content that immediately satisfies the
// same entry's recognizer, which is the invariant that makes freshly
// created blocks render without extra validation. New block types are added
// by registration rather than by editing a central switch.
//
// # Schema Tolerance
//
// Pages may have been persisted by an older or newer schema. Decoding a
// block with an unknown type tag succeeds with nil content; recognizers
// then reject it and the dispatcher skips it with a diagnostic instead of
// failing the page.
package block
