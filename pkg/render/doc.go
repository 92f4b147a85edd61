// Package render turns block documents into HTML.
//
// The dispatcher is the polymorphic seam: given a block, it narrows the
// content through the registry's recognizers and invokes the handler
// registered for the block's type. Blocks that cannot be rendered (an
// unknown type tag, a missing handler, or content whose shape disagrees
// with the tag) produce no output and a development-only warning; a page
// never fails over one bad block, since content may have been persisted by
// an older schema version.
//
// The page renderer emits a two-column CSS grid whose auto-placement rules
// are exactly the ones pkg/grid simulates, so the simulated column each
// block's controls anchor to always matches the rendered layout. Diagram
// blocks optionally render natively to SVG through the embedded Graphviz
// engine, with content-hashed caching.
package render
