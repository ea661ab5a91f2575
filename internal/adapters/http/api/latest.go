package api

import (
	"errors"
	"net/http"

	service "github.com/drivefit/riskd/internal/app"
)

// LatestHandler handles latest-record queries.
type LatestHandler struct {
	deps Dependencies
}

// NewLatestHandler creates a new latest handler.
func NewLatestHandler(deps Dependencies) *LatestHandler {
	return &LatestHandler{deps: deps}
}

// HandleLatest handles GET /v1/risk/latest requests. The driver_id filter
// only sees the newest records within the query window.
func (h *LatestHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params := r.URL.Query()
	userID := params.Get("short_user_id")
	driverID := params.Get("driver_id")

	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingUserID)
		return
	}

	rec, err := h.deps.Latest(r.Context(), userID, driverID)
	if err != nil {
		if errors.Is(err, service.ErrNoRecords) {
			writeError(w, http.StatusNotFound, "not_found", service.ErrNoRecords)
			return
		}
		// Store failure detail goes to logs only, never to the client.
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
