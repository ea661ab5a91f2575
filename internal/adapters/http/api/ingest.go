package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drivefit/riskd/internal/domain/model"
)

// ingestRequest mirrors the ingest envelope: optional identity fields plus
// the health data mapping. hd stays raw until validated so the response can
// echo the original payload untouched.
type ingestRequest struct {
	UID string          `json:"uid"`
	DID string          `json:"did"`
	TS  string          `json:"ts"`
	DT  string          `json:"dt"`
	HD  json.RawMessage `json:"hd"`
}

type ingestResponse struct {
	Message   string          `json:"message"`
	Risk      string          `json:"risk"`
	Received  json.RawMessage `json:"received"`
	UID       string          `json:"uid"`
	DID       string          `json:"did"`
	Timestamp string          `json:"timestamp"`
}

// IngestHandler handles health data submissions.
type IngestHandler struct {
	deps Dependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps Dependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandleIngest handles POST /v1/health requests. Validation failures never
// reach the classifier or the store.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid input format: %w", err))
		return
	}
	if len(req.HD) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingHealth)
		return
	}

	var health model.Sample
	if err := json.Unmarshal(req.HD, &health); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingHealth)
		return
	}

	sub := model.Submission{
		UserID:     defaultUnknown(req.UID),
		DriverID:   defaultUnknown(req.DID),
		DeviceType: defaultUnknown(req.DT),
		Timestamp:  defaultUnknown(req.TS),
		Health:     health,
	}

	rec := h.deps.Ingest(r.Context(), sub)

	writeJSON(w, http.StatusOK, ingestResponse{
		Message:   "Health data received",
		Risk:      rec.Risk.String(),
		Received:  req.HD,
		UID:       rec.UserID,
		DID:       rec.DriverID,
		Timestamp: rec.Timestamp,
	})
}

func defaultUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
