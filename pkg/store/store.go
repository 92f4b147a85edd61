// Package store provides page persistence for block documents.
//
// The store implements the narrow persistence contract the document engine
// assumes: a page is always written as a full replacement, blocks included.
// The engine never issues partial or delta writes; the caller commits each
// mutated block array into the page and hands the whole page to Put.
//
// Backends:
//   - memory: map-based, for development and tests
//   - file: one JSON document per page on disk, the CLI default
//   - mongo: MongoDB ReplaceOne-with-upsert for server deployments
package store

import (
	"context"
	"errors"

	"github.com/pagedeck/pagedeck/pkg/block"
)

// ErrNotFound is returned when a page does not exist.
var ErrNotFound = errors.New("page not found")

// PageInfo is a listing summary; block content is not loaded.
type PageInfo struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	BlockCount int      `json:"block_count"`
	Tags       []string `json:"tags,omitempty"`
}

// Store is the interface for page persistence backends.
type Store interface {
	// Get retrieves a page by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*block.Page, error)

	// Put writes the page as a full replacement, creating it if absent.
	Put(ctx context.Context, p *block.Page) error

	// Delete removes a page. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all pages.
	List(ctx context.Context) ([]PageInfo, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
