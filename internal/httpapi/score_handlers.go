package httpapi

import (
	"encoding/json"
	"net/http"

	"jobmatch-engine/internal/scrape"
)

type ScoreHandler struct {
	Orc           *scrape.Orchestrator
	DefaultUserID string
}

type scoreJobReq struct {
	UserID string `json:"user_id"`
	JobID  int64  `json:"job_id"`
}

func (h ScoreHandler) ScoreJob(w http.ResponseWriter, r *http.Request) {
	var req scoreJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid json: "+err.Error())
		return
	}
	if req.JobID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "job_id is required")
		return
	}
	if req.UserID == "" {
		req.UserID = h.DefaultUserID
	}

	breakdown, err := h.Orc.ScoreJob(r.Context(), req.UserID, req.JobID)
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "job_not_found", err.Error())
		return
	}
	writeJSON(w, breakdown)
}

type scoreRunReq struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

// ScoreRun scores every unscored job for the user, up to limit.
func (h ScoreHandler) ScoreRun(w http.ResponseWriter, r *http.Request) {
	var req scoreRunReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.UserID == "" {
		req.UserID = h.DefaultUserID
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}

	scored, err := h.Orc.ScoreNewJobs(r.Context(), req.UserID, req.Limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "scoring_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"scored": scored})
}
