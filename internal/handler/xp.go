package handler

import (
	"net/http"

	"github.com/lifequest/lifequest/internal/ctxkeys"
	"github.com/lifequest/lifequest/internal/service"
)

type XPHandler struct {
	xpService *service.XPService
}

func NewXPHandler(xpService *service.XPService) *XPHandler {
	return &XPHandler{
		xpService: xpService,
	}
}

func (h *XPHandler) Summary(w http.ResponseWriter, r *http.Request) {
	progress, err := h.xpService.Summary(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *XPHandler) Logs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.xpService.Logs(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
