// Package pkg provides the core libraries for PageDeck block documents.
//
// # Overview
//
// PageDeck composes pages out of typed content blocks arranged on a
// two-column grid. The pkg directory is organized into these areas:
//
//  1. [block] - Block model, content type registry, page validation
//  2. [engine] - Mutation operations over block arrays (insert, delete, reorder)
//  3. [grid] - Two-column placement simulation
//  4. [filter] - Tag-based visibility
//  5. [render] - HTML rendering with per-type handlers and diagram SVG
//  6. [store] / [cache] - Persistence backends and artifact caching
//
// # Architecture
//
// The typical data flow through PageDeck:
//
//	Stored page (JSON)
//	         ↓
//	    [block] package (decode + narrow content through the registry)
//	         ↓
//	    [engine] package (apply one mutation, commit the new array)
//	         ↓
//	    [filter] + [grid] packages (derive the visible two-column view)
//	         ↓
//	    [render] package (HTML/SVG output)
//
// # Quick Start
//
//	eng := engine.New(nil)
//	b, _ := eng.Create(block.TypeText)
//	blocks := []block.Block{b}
//	blocks, _ = eng.InsertAfter(blocks, b.ID, block.TypeCode)
//
// The [errors] and [observability] packages provide the shared error
// taxonomy and instrumentation hooks used across the tree.
package pkg
