package api

import (
	"net/http"
)

type cacheClearResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		h.writeError(w, r, ServiceUnavailableError("speech cache not configured", nil))
		return
	}

	removed, err := h.Cache.Clear()

	if err != nil {
		h.writeError(w, r, InternalError("failed to clear cache", err))
		return
	}

	h.logger.Info("speech cache cleared", "removed", removed)

	writeJson(w, cacheClearResponse{
		Success: true,
		Removed: removed,
	})
}
