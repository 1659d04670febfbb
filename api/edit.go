package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pagesmith/pagesmith/internal/editor"
)

// EditSiteRequest is the body for POST /api/sites/edit.
type EditSiteRequest struct {
	Email       string `json:"email"`
	Instruction string `json:"instruction"`

	// BaseVersionID optionally selects a history snapshot to edit from
	// instead of the current artifact.
	BaseVersionID string `json:"baseVersionId,omitempty"`
}

// EditDoneData is the done-event payload for POST /api/sites/edit.
// RemainingCredits tells the caller their balance without another fetch.
type EditDoneData struct {
	Artifact         string `json:"artifact"`
	RemainingCredits int    `json:"remainingCredits"`
	UserID           string `json:"userId"`
}

// handleEdit runs one credit-gated edit.
//
// Failures before generation starts (unknown user, empty instruction, not
// enough credits, unknown base version) come back as plain JSON with a
// meaningful status: 404, 400, 402. Once model output starts flowing the
// response is an SSE stream: chunk events with partial text, then either a
// done event carrying the sanitized artifact and remaining credits, or an
// error event.
//
// The pipeline runs on a context detached from the request, so a client
// that disconnects mid-stream still gets its edit committed and debited.
// Completed work is never thrown away because nobody watched it finish.
func (h *SiteHandler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req EditSiteRequest
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

	reqID := requestID(r.Context())
	ctx := context.WithoutCancel(r.Context())

	result, err := h.editor.Edit(ctx, editor.EditRequest{
		Email:         req.Email,
		Instruction:   req.Instruction,
		BaseVersionID: req.BaseVersionID,
	}, func(_ context.Context, text string) error {
		// Delivery is best effort; a write to a gone client must not
		// abort generation, or the commit would be lost with it.
		stream.Chunk(text)
		return nil
	})
	if err != nil {
		h.writeFailure(w, stream, err, "edit failed", reqID)
		return
	}

	stream.Done(EditDoneData{
		Artifact:         result.Artifact,
		RemainingCredits: result.RemainingCredits,
		UserID:           result.UserID,
	})

	h.logger.Info("edit stream completed",
		"user_id", result.UserID,
		"remaining_credits", result.RemainingCredits,
		"request_id", reqID)
}
