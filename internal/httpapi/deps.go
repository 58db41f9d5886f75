package httpapi

import (
	"sync/atomic"

	"jobmatch-engine/internal/config"
	"jobmatch-engine/internal/events"
	"jobmatch-engine/internal/scrape"
	"jobmatch-engine/internal/store"
)

type Deps struct {
	Store *store.Store
	Orc   *scrape.Orchestrator
	Hub   *events.Hub

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *atomic.Value // stores httpapi.ScrapeStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	DefaultUserID string
}
