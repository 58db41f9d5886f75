package httpapi

import "jobmatch-engine/internal/domain"

// ScrapeStatus is the last-run snapshot served by GET /scrape/status.
type ScrapeStatus struct {
	Running     bool                  `json:"running"`
	LastRunAt   string                `json:"lastRunAt,omitempty"`
	LastOkAt    string                `json:"lastOkAt,omitempty"`
	LastError   string                `json:"lastError,omitempty"`
	LastSummary *domain.ScrapeSummary `json:"lastSummary,omitempty"`
}
