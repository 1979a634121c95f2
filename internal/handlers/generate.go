package handlers

import (
	"errors"
	"net/http"

	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/metadata"
	"github.com/zepiy/stockmeta/internal/queue"
)

func (h *Handler) HandleGenerateOne(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}

	result, err := h.orch.GenerateOne(r.Context(), index)
	if err != nil {
		var genErr *metadata.GenerationError
		switch {
		case errors.Is(err, batch.ErrBusy), errors.Is(err, batch.ErrAssetRemoved):
			h.writeError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, queue.ErrIndexOutOfRange):
			h.writeError(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &genErr):
			h.writeError(w, err.Error(), http.StatusBadGateway)
		default:
			h.writeError(w, "Failed to generate metadata: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleGenerateAll(w http.ResponseWriter, r *http.Request) {
	if _, err := h.orch.Start(h.ctx); err != nil {
		h.writeError(w, err.Error(), http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusAccepted, h.orch.Progress())
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.orch.Progress())
}
