package httpapi

import (
	"net/http"
	"strings"

	"jobmatch-engine/internal/health"
)

type SourcesHandler struct {
	Health *health.Tracker
}

// HandleAction routes POST /sources/{source}/{enable|disable|unblock}.
func (h SourcesHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sources/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "expected /sources/{source}/{action}")
		return
	}
	source, action := parts[0], parts[1]

	var err error
	switch action {
	case "enable":
		err = h.Health.Enable(source)
	case "disable":
		err = h.Health.Disable(source)
	case "unblock":
		err = h.Health.Unblock(source)
	default:
		WriteError(w, r, http.StatusBadRequest, "bad_request", "unknown action "+action)
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "unknown_source", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "source": source, "action": action})
}

func (h SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Health.Statuses())
}
