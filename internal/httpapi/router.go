package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it with middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Scrape
	sch := ScrapeHandler{
		Orc:           d.Orc,
		Store:         d.Store,
		Status:        d.ScrapeStatus,
		DefaultUserID: d.DefaultUserID,
	}
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.GetStatus,
	}))
	mux.HandleFunc("/scrape/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.History,
	}))
	mux.HandleFunc("/scrape/test/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.TestByPath,
	}))

	// Source health
	srch := SourcesHandler{Health: d.Orc.Health()}
	mux.HandleFunc("/sources", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: srch.List,
	}))
	mux.HandleFunc("/sources/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: srch.HandleAction,
	}))

	// Scoring
	sc := ScoreHandler{Orc: d.Orc, DefaultUserID: d.DefaultUserID}
	mux.HandleFunc("/score/job", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sc.ScoreJob,
	}))
	mux.HandleFunc("/score/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sc.ScoreRun,
	}))

	// Jobs
	jh := JobsHandler{Store: d.Store}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.GetByPath,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (reads CfgVal, not a snapshot)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Liveness
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
