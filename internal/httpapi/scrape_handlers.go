package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/scrape"
	"jobmatch-engine/internal/store"
)

type ScrapeHandler struct {
	Orc           *scrape.Orchestrator
	Store         *store.Store
	Status        *atomic.Value // httpapi.ScrapeStatus
	DefaultUserID string
}

type runScrapeReq struct {
	UserID    string                 `json:"user_id"`
	Sources   []string               `json:"sources"`
	Overrides *domain.ConfigOverride `json:"overrides"`
}

// Run kicks off a scrape in the background and returns immediately; progress
// is observable via /scrape/status and /events.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runScrapeReq
	if r.Body != nil {
		// empty body means "scrape everything for the default user"
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.UserID == "" {
		req.UserID = h.DefaultUserID
	}

	st := h.Status.Load().(ScrapeStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "scrape already running"})
		return
	}

	h.Status.Store(ScrapeStatus{
		Running:   true,
		LastRunAt: time.Now().Format(time.RFC3339),
		LastOkAt:  st.LastOkAt,
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		summary := h.Orc.ScrapeAll(ctx, req.UserID, req.Sources, req.Overrides)

		now := time.Now().Format(time.RFC3339)
		next := h.Status.Load().(ScrapeStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastSummary = &summary
		if summary.SourcesFailed == 0 {
			next.LastError = ""
			next.LastOkAt = now
		} else {
			next.LastError = "some sources failed"
		}
		h.Status.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}

func (h ScrapeHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Status.Load().(ScrapeStatus)
	writeJSON(w, map[string]any{
		"scrape":  st,
		"sources": h.Orc.Health().Statuses(),
	})
}

func (h ScrapeHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, runs)
}

// TestByPath handles POST /scrape/test/{source}.
func (h ScrapeHandler) TestByPath(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimPrefix(r.URL.Path, "/scrape/test/")
	if source == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "source is required")
		return
	}
	ok, err := h.Orc.TestSource(r.Context(), source)
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "unknown_source", err.Error())
		return
	}
	writeJSON(w, map[string]any{"source": source, "ok": ok})
}
