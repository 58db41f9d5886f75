package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"jobmatch-engine/internal/store"
)

type JobsHandler struct {
	Store *store.Store
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 500
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	jobs, err := h.Store.ListJobs(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	writeJSON(w, jobs)
}

// GetByPath handles GET /jobs/{id}.
func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/jobs/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid id")
		return
	}
	job, err := h.Store.GetJob(r.Context(), id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if job == nil {
		WriteError(w, r, http.StatusNotFound, "job_not_found", "no such job")
		return
	}
	writeJSON(w, job)
}
