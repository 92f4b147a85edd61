package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/store"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return New(st, nil), st
}

func seedPage(t *testing.T, st *store.MemoryStore, p *block.Page) {
	t.Helper()
	if err := st.Put(context.Background(), p); err != nil {
		t.Fatal(err)
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) block.Page {
	t.Helper()
	var p block.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response page: %v\nbody: %s", err, rec.Body.String())
	}
	return p
}

func blockIDs(p block.Page) []string {
	out := make([]string, len(p.Blocks))
	for i, b := range p.Blocks {
		out[i] = b.ID
	}
	return out
}

func samplePage() *block.Page {
	return &block.Page{
		ID:    "p1",
		Title: "Notes",
		Blocks: []block.Block{
			{ID: "a", Type: block.TypeText, Content: block.TextContent{Markdown: "alpha"}, Span: block.SpanHalf, Tags: []string{"work"}},
			{ID: "b", Type: block.TypeCode, Content: block.CodeContent{Language: "go", Source: "beta"}, Span: block.SpanHalf},
			{ID: "c", Type: block.TypeText, Content: block.TextContent{Markdown: "gamma"}, Span: block.SpanFull, Tags: []string{"play"}},
		},
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCreatePage(t *testing.T) {
	s, st := newTestServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/pages", map[string]any{
		"title": "My Page",
		"tags":  []string{"Work", "work"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, rec)
	if p.ID == "" || p.Title != "My Page" {
		t.Errorf("created page = %+v", p)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "work" {
		t.Errorf("Tags = %v, want normalized [work]", p.Tags)
	}
	if _, err := st.Get(context.Background(), p.ID); err != nil {
		t.Errorf("created page not persisted: %v", err)
	}
}

func TestCreatePageRequiresTitle(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/pages", map[string]any{"title": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Errorf("body = %s, want INVALID_INPUT code", rec.Body.String())
	}
}

func TestGetPage(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	rec := doJSON(t, router, http.MethodGet, "/pages/p1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	p := decodePage(t, rec)
	if len(p.Blocks) != 3 {
		t.Errorf("blocks = %d, want 3", len(p.Blocks))
	}

	rec = doJSON(t, router, http.MethodGet, "/pages/absent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "PAGE_NOT_FOUND") {
		t.Errorf("body = %s, want PAGE_NOT_FOUND code", rec.Body.String())
	}
}

func TestListPages(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	seedPage(t, st, &block.Page{ID: "p2", Title: "Another", Blocks: []block.Block{}})

	rec := doJSON(t, s.Router(), http.MethodGet, "/pages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Pages []store.PageInfo `json:"pages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(resp.Pages))
	}
	if resp.Pages[0].Title != "Another" {
		t.Errorf("first page = %s, want title order", resp.Pages[0].Title)
	}
}

func TestReplacePage(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	replacement := samplePage()
	replacement.Title = "Rewritten"
	replacement.Blocks = replacement.Blocks[:1]

	rec := doJSON(t, router, http.MethodPut, "/pages/p1", replacement)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	got, err := st.Get(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Rewritten" || len(got.Blocks) != 1 {
		t.Errorf("stored page = %+v, replacement must be whole", got)
	}
}

func TestReplacePageRejectsDuplicateBlockIDs(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())

	bad := samplePage()
	bad.Blocks[1].ID = "a" // duplicate

	rec := doJSON(t, s.Router(), http.MethodPut, "/pages/p1", bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "INVALID_PAGE") {
		t.Errorf("body = %s, want INVALID_PAGE code", rec.Body.String())
	}
}

func TestDeletePage(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	rec := doJSON(t, router, http.MethodDelete, "/pages/p1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/pages/p1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestInsertBlock(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/pages/p1/blocks", map[string]any{
		"after_id": "a",
		"type":     "table",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, rec)
	if len(p.Blocks) != 4 {
		t.Fatalf("blocks = %d, want 4", len(p.Blocks))
	}
	inserted := p.Blocks[1]
	if inserted.Type != block.TypeTable || inserted.Span != block.SpanFull {
		t.Errorf("inserted = %+v, want full-width table after a", inserted)
	}
	if !block.Default().Recognize(inserted) {
		t.Error("inserted block content not recognized")
	}

	// A stale anchor appends instead of failing.
	rec = doJSON(t, router, http.MethodPost, "/pages/p1/blocks", map[string]any{
		"after_id": "deleted-long-ago",
		"type":     "text",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	p = decodePage(t, rec)
	if p.Blocks[len(p.Blocks)-1].Type != block.TypeText {
		t.Error("stale anchor should append at the end")
	}
}

func TestInsertBlockUnknownType(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())

	rec := doJSON(t, s.Router(), http.MethodPost, "/pages/p1/blocks", map[string]any{"type": "hologram"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "INVALID_BLOCK_TYPE") {
		t.Errorf("body = %s, want INVALID_BLOCK_TYPE code", rec.Body.String())
	}
}

func TestPatchBlock(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	t.Run("content replacement", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/pages/p1/blocks/a", map[string]any{
			"content": map[string]any{"markdown": "rewritten"},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
		}
		p := decodePage(t, rec)
		if tc, ok := p.Blocks[0].Content.(block.TextContent); !ok || tc.Markdown != "rewritten" {
			t.Errorf("content = %v, want rewritten text", p.Blocks[0].Content)
		}
	})

	t.Run("toggle span", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/pages/p1/blocks/c", map[string]any{
			"toggle_span": true,
		})
		if rec.Code != http.StatusOK {
			t.Fatal(rec.Code)
		}
		p := decodePage(t, rec)
		if p.Blocks[2].Span != block.SpanHalf {
			t.Errorf("span = %v, want toggled to half", p.Blocks[2].Span)
		}
	})

	t.Run("tags replaced wholesale", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/pages/p1/blocks/a", map[string]any{
			"tags": []string{"New", "new", "other"},
		})
		if rec.Code != http.StatusOK {
			t.Fatal(rec.Code)
		}
		p := decodePage(t, rec)
		if len(p.Blocks[0].Tags) != 2 || p.Blocks[0].Tags[0] != "new" {
			t.Errorf("tags = %v, want [new other]", p.Blocks[0].Tags)
		}
	})

	t.Run("missing block is a committed no-op", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/pages/p1/blocks/gone", map[string]any{
			"toggle_span": true,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 no-op", rec.Code)
		}
		p := decodePage(t, rec)
		if len(p.Blocks) != 3 {
			t.Errorf("no-op patch changed block count: %v", blockIDs(p))
		}
	})

	t.Run("content that does not match the type is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/pages/p1/blocks/a", map[string]any{
			"content": "just a string",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestDeleteBlock(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	rec := doJSON(t, router, http.MethodDelete, "/pages/p1/blocks/b", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, rec)
	ids := blockIDs(p)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("blocks = %v, want [a c]", ids)
	}

	// Deleting again is a no-op, not an error.
	rec = doJSON(t, router, http.MethodDelete, "/pages/p1/blocks/b", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d, want 200", rec.Code)
	}
	if p := decodePage(t, rec); len(p.Blocks) != 2 {
		t.Errorf("repeat delete changed blocks: %v", blockIDs(p))
	}
}

func TestReorderEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/pages/p1/reorder", map[string]any{
		"active_id": "c",
		"over_id":   "a",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, rec)
	ids := blockIDs(p)
	if fmt.Sprint(ids) != "[c a b]" {
		t.Errorf("order = %v, want [c a b]", ids)
	}

	// Stale IDs commit nothing.
	rec = doJSON(t, router, http.MethodPost, "/pages/p1/reorder", map[string]any{
		"active_id": "gone",
		"over_id":   "a",
	})
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}
	if p := decodePage(t, rec); fmt.Sprint(blockIDs(p)) != "[c a b]" {
		t.Errorf("no-op reorder changed order: %v", blockIDs(p))
	}
}

func TestColumnsEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())

	rec := doJSON(t, s.Router(), http.MethodGet, "/pages/p1/columns", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Columns map[string]int `json:"columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"a": 0, "b": 1, "c": 0}
	for id, col := range want {
		if resp.Columns[id] != col {
			t.Errorf("columns[%s] = %d, want %d", id, resp.Columns[id], col)
		}
	}
}

func TestHTMLEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	seedPage(t, st, samplePage())
	router := s.Router()

	rec := doJSON(t, router, http.MethodGet, "/pages/p1/html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %s, want text/html", ct)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "gamma") {
		t.Errorf("rendered page missing blocks: %s", out)
	}

	// The tags query applies the filter.
	rec = doJSON(t, router, http.MethodGet, "/pages/p1/html?tags=work", nil)
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}
	out = rec.Body.String()
	if !strings.Contains(out, "alpha") {
		t.Error("tagged block missing under its own filter")
	}
	if strings.Contains(out, "gamma") {
		t.Error("filtered block leaked into HTML")
	}
}
