package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pagesmith/pagesmith/internal/editor"
	"github.com/pagesmith/pagesmith/internal/generate"
	"github.com/pagesmith/pagesmith/internal/history"
	"github.com/pagesmith/pagesmith/internal/log"
	"github.com/pagesmith/pagesmith/internal/store"
)

// EditorService is the slice of the edit pipeline the HTTP layer needs.
// Implemented by *editor.Service.
type EditorService interface {
	Edit(ctx context.Context, req editor.EditRequest, onChunk generate.ChunkFunc) (*editor.EditResult, error)
	Create(ctx context.Context, req editor.CreateRequest, onChunk generate.ChunkFunc) (*editor.CreateResult, error)
	Site(ctx context.Context, email string) (*store.UserDoc, error)
	Versions(ctx context.Context, email string) ([]history.Entry, error)
}

// SiteHandler handles site creation, editing, fetch, and version listing.
type SiteHandler struct {
	editor EditorService
	logger log.Logger
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(svc EditorService, logger log.Logger) *SiteHandler {
	return &SiteHandler{editor: svc, logger: logger}
}

// RegisterRoutes registers site routes on the given mux.
func (h *SiteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sites", h.handleCreate)
	mux.HandleFunc("POST /api/sites/edit", h.handleEdit)
	mux.HandleFunc("GET /api/sites/{email}", h.handleGet)
	mux.HandleFunc("GET /api/sites/{email}/versions", h.handleVersions)
}

// CreateSiteRequest is the body for POST /api/sites.
type CreateSiteRequest struct {
	Email               string `json:"email"`
	BusinessDescription string `json:"businessDescription"`
}

// CreateDoneData is the done-event payload for POST /api/sites.
type CreateDoneData struct {
	Artifact      string `json:"artifact"`
	CreditBalance int    `json:"creditBalance"`
	UserID        string `json:"userId"`
	Created       bool   `json:"created"`
}

// handleCreate generates a site from a business description, streaming the
// output as SSE. For an existing user this regenerates in place.
func (h *SiteHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	stream, err := newSSEStream(w)
	if err != nil {
		h.logger.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Generation and persistence outlive a dropped client connection; a
	// disconnect stops delivery, not the work.
	ctx := context.WithoutCancel(r.Context())

	result, err := h.editor.Create(ctx, editor.CreateRequest{
		Email:               req.Email,
		BusinessDescription: req.BusinessDescription,
	}, func(_ context.Context, text string) error {
		stream.Chunk(text)
		return nil
	})
	if err != nil {
		h.writeFailure(w, stream, err, "create failed", requestID(r.Context()))
		return
	}

	stream.Done(CreateDoneData{
		Artifact:      result.Artifact,
		CreditBalance: result.CreditBalance,
		UserID:        result.UserID,
		Created:       result.Created,
	})
}

// SiteResponse is the body for GET /api/sites/{email}.
type SiteResponse struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Artifact      string `json:"artifact"`
	CreditBalance int    `json:"creditBalance"`
	CreatedAt     string `json:"createdAt"`
	LastEditedAt  string `json:"lastEditedAt"`
}

// handleGet returns the stored site record for an email.
func (h *SiteHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.editor.Site(r.Context(), r.PathValue("email"))
	if err != nil {
		status, resp := mapError(err)
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, SiteResponse{
		UserID:        doc.ID,
		Email:         doc.Email,
		Artifact:      doc.CurrentArtifact,
		CreditBalance: doc.CreditBalance,
		CreatedAt:     doc.CreatedAt.Format(timeFormat),
		LastEditedAt:  doc.LastEditedAt.Format(timeFormat),
	})
}

// VersionsResponse is the body for GET /api/sites/{email}/versions.
type VersionsResponse struct {
	Versions []history.Entry `json:"versions"`
}

// handleVersions lists the user's version history, newest first.
func (h *SiteHandler) handleVersions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.editor.Versions(r.Context(), r.PathValue("email"))
	if err != nil {
		status, resp := mapError(err)
		writeJSON(w, status, resp)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, VersionsResponse{Versions: entries})
}

// writeFailure routes an error to the right surface: a plain JSON response
// when no event has been sent yet, an SSE error event otherwise.
func (h *SiteHandler) writeFailure(w http.ResponseWriter, stream *sseStream, err error, msg, reqID string) {
	status, resp := mapError(err)
	h.logger.Error(msg,
		"error", err,
		"code", resp.Error,
		"request_id", reqID)
	if stream.Started() {
		stream.Error(resp)
		return
	}
	writeJSON(w, status, resp)
}

// timeFormat is RFC 3339 with millisecond precision, matching entry IDs.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"
