package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/pagedeck/pagedeck/pkg/cache"
)

// Graphviz renders diagram block DOT source to SVG using the embedded
// Graphviz engine. Results are cached under a content-hashed key so
// unchanged diagrams are never laid out twice.
type Graphviz struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewGraphviz creates a diagram renderer. A nil cache disables caching.
func NewGraphviz(c cache.Cache, ttl time.Duration) *Graphviz {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Graphviz{cache: c, ttl: ttl}
}

// SVG renders DOT source to SVG bytes. Invalid DOT returns an error; the
// page renderer treats that as a per-block fallback, never a page failure.
func (g *Graphviz) SVG(ctx context.Context, dot string) ([]byte, error) {
	key := cache.DiagramKey(dot)
	if data, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	svg := buf.Bytes()
	_ = g.cache.Set(ctx, key, svg, g.ttl) // best-effort
	return svg, nil
}

// Ensure Graphviz implements DiagramRenderer.
var _ DiagramRenderer = (*Graphviz)(nil)
