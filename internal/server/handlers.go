package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/cache"
	"github.com/pagedeck/pagedeck/pkg/engine"
	pderrors "github.com/pagedeck/pagedeck/pkg/errors"
	"github.com/pagedeck/pagedeck/pkg/grid"
	"github.com/pagedeck/pagedeck/pkg/store"
)

// =============================================================================
// Page CRUD
// =============================================================================

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeStore, err, "list pages"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

type createPageRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, r, pderrors.New(pderrors.ErrCodeInvalidInput, "title is required"))
		return
	}

	p := &block.Page{
		ID:     uuid.NewString(),
		Title:  req.Title,
		Blocks: []block.Block{},
		Tags:   engine.NormalizeTags(req.Tags),
	}
	if err := s.store.Put(r.Context(), p); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeStore, err, "save page %s", p.ID))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleReplacePage accepts a full page document. This is the persistence
// contract the engine assumes: the block array is replaced whole.
func (s *Server) handleReplacePage(w http.ResponseWriter, r *http.Request) {
	var p block.Page
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidInput, err, "decode page"))
		return
	}
	p.ID = chi.URLParam(r, "pageID")
	if err := p.Validate(); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidPage, err, "validate page %s", p.ID))
		return
	}
	if err := s.store.Put(r.Context(), &p); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeStore, err, "save page %s", p.ID))
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, pderrors.New(pderrors.ErrCodePageNotFound, "page %s not found", id))
			return
		}
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeStore, err, "delete page %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Block Operations
// =============================================================================

type insertBlockRequest struct {
	AfterID string     `json:"after_id,omitempty"`
	Type    block.Type `json:"type"`
}

func (s *Server) handleInsertBlock(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	var req insertBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	blocks, err := s.engine.InsertAfter(p.Blocks, req.AfterID, req.Type)
	if err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidType, err, "insert block"))
		return
	}
	s.commit(w, r, p, blocks)
}

// patchBlockRequest carries at most one engine operation per field; fields
// are applied in declaration order when combined.
type patchBlockRequest struct {
	Content    json.RawMessage `json:"content,omitempty"`
	ToggleSpan bool            `json:"toggle_span,omitempty"`
	Tags       *[]string       `json:"tags,omitempty"`
}

func (s *Server) handlePatchBlock(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	blockID := chi.URLParam(r, "blockID")

	var req patchBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	blocks := p.Blocks
	if len(req.Content) > 0 {
		// Narrow the payload against the block's own type tag. A missing
		// block makes the update a no-op downstream, so skip decoding.
		if idx := block.IndexOf(blocks, blockID); idx >= 0 {
			content, err := s.registry.DecodeContent(blocks[idx].Type, req.Content)
			if err != nil {
				s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidContent, err,
					"decode %s content", blocks[idx].Type))
				return
			}
			blocks = s.engine.UpdateContent(blocks, blockID, content)
		}
	}
	if req.ToggleSpan {
		blocks = s.engine.ToggleSpan(blocks, blockID)
	}
	if req.Tags != nil {
		blocks = s.engine.SetTags(blocks, blockID, *req.Tags)
	}
	s.commit(w, r, p, blocks)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	blocks := s.engine.DeleteByID(p.Blocks, chi.URLParam(r, "blockID"))
	s.commit(w, r, p, blocks)
}

type reorderRequest struct {
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	blocks := s.engine.Reorder(p.Blocks, req.ActiveID, req.OverID)
	s.commit(w, r, p, blocks)
}

// =============================================================================
// Derived Views
// =============================================================================

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": grid.ComputeColumnMap(p.Blocks),
	})
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	activeTags := engine.NormalizeTags(splitTags(r.URL.Query().Get("tags")))

	pageJSON, err := json.Marshal(p)
	if err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeInternal, err, "encode page %s", p.ID))
		return
	}
	key := cache.HTMLKey(pageJSON, activeTags)

	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		writeHTML(w, data)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(r.Context(), &buf, p, activeTags); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeRender, err, "render page %s", p.ID))
		return
	}
	_ = s.cache.Set(r.Context(), key, buf.Bytes(), s.cacheTTL) // best-effort
	writeHTML(w, buf.Bytes())
}

// =============================================================================
// Helpers
// =============================================================================

// loadPage fetches the page from the route's pageID, writing the error
// response itself on failure.
func (s *Server) loadPage(w http.ResponseWriter, r *http.Request) (*block.Page, bool) {
	id := chi.URLParam(r, "pageID")
	p, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, pderrors.New(pderrors.ErrCodePageNotFound, "page %s not found", id))
		} else {
			s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeStore, err, "load page %s", id))
		}
		return nil, false
	}
	return p, true
}

// commit writes the mutated block array back as the page's new state and
// responds with the updated page.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, p *block.Page, blocks []block.Block) {
	p.Blocks = blocks
	if err := s.store.Put(r.Context(), p); err != nil {
		s.writeError(w, r, pderrors.Wrap(pderrors.ErrCodeStore, err, "save page %s", p.ID))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writeError maps error codes to HTTP statuses and writes a JSON error
// body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := pderrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case pderrors.ErrCodeInvalidInput, pderrors.ErrCodeInvalidType,
		pderrors.ErrCodeInvalidContent, pderrors.ErrCodeInvalidPage:
		status = http.StatusBadRequest
	case pderrors.ErrCodeNotFound, pderrors.ErrCodePageNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    string(code),
			"message": pderrors.UserMessage(err),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// splitTags parses a comma-separated tag list query parameter.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
