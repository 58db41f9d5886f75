package domain

import "time"

// SearchConfig is built once per orchestration run from profile data and is
// immutable for the duration of the run. Caller-supplied overrides win
// field-by-field (see ConfigOverride).
type SearchConfig struct {
	Keywords        []string `json:"keywords"`
	Location        string   `json:"location,omitempty"`
	Locations       []string `json:"locations,omitempty"`
	Remote          *bool    `json:"remote,omitempty"`
	ExperienceYears *float64 `json:"experienceYears,omitempty"`
	SalaryMin       *float64 `json:"salaryMin,omitempty"`
	SalaryCurrency  string   `json:"salaryCurrency,omitempty"`
}

// ConfigOverride is a partial SearchConfig supplied by the caller.
// Nil / empty fields leave the built config untouched.
type ConfigOverride struct {
	Keywords        []string `json:"keywords,omitempty"`
	Location        *string  `json:"location,omitempty"`
	Locations       []string `json:"locations,omitempty"`
	Remote          *bool    `json:"remote,omitempty"`
	ExperienceYears *float64 `json:"experienceYears,omitempty"`
	SalaryMin       *float64 `json:"salaryMin,omitempty"`
	SalaryCurrency  *string  `json:"salaryCurrency,omitempty"`
}

// Apply merges the override onto cfg. Override wins.
func (o *ConfigOverride) Apply(cfg SearchConfig) SearchConfig {
	if o == nil {
		return cfg
	}
	if len(o.Keywords) > 0 {
		cfg.Keywords = o.Keywords
	}
	if o.Location != nil {
		cfg.Location = *o.Location
	}
	if len(o.Locations) > 0 {
		cfg.Locations = o.Locations
	}
	if o.Remote != nil {
		cfg.Remote = o.Remote
	}
	if o.ExperienceYears != nil {
		cfg.ExperienceYears = o.ExperienceYears
	}
	if o.SalaryMin != nil {
		cfg.SalaryMin = o.SalaryMin
	}
	if o.SalaryCurrency != nil {
		cfg.SalaryCurrency = *o.SalaryCurrency
	}
	return cfg
}

// SourceHealth is the per-source circuit-breaker record. Created once per
// known source at startup, mutated only by the health tracker, never deleted.
type SourceHealth struct {
	Source              string     `json:"source"`
	Enabled             bool       `json:"enabled"`
	IsBlocked           bool       `json:"isBlocked"`
	BlockedAt           *time.Time `json:"blockedAt,omitempty"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastSuccess         *time.Time `json:"lastSuccess,omitempty"`
	LastRun             *time.Time `json:"lastRun,omitempty"`
}

// ScrapeRunResult is the outcome of one adapter invocation.
// Invariant for successful runs: JobsNew + JobsUpdated <= JobsFound.
type ScrapeRunResult struct {
	Source      string `json:"source"`
	Success     bool   `json:"success"`
	JobsFound   int    `json:"jobsFound"`
	JobsNew     int    `json:"jobsNew"`
	JobsUpdated int    `json:"jobsUpdated"`
	Error       string `json:"error,omitempty"`
	Blocked     bool   `json:"blocked,omitempty"` // this failure tripped the circuit
	DurationMs  int64  `json:"durationMs"`
}

// ScrapeSummary aggregates one ScrapeAll call.
type ScrapeSummary struct {
	Results          []ScrapeRunResult `json:"results"`
	TotalJobsNew     int               `json:"totalJobsNew"`
	TotalJobsUpdated int               `json:"totalJobsUpdated"`
	SourcesSucceeded int               `json:"sourcesSucceeded"`
	SourcesFailed    int               `json:"sourcesFailed"`
}

// Add folds one run result into the summary.
func (s *ScrapeSummary) Add(r ScrapeRunResult) {
	s.Results = append(s.Results, r)
	if r.Success {
		s.SourcesSucceeded++
		s.TotalJobsNew += r.JobsNew
		s.TotalJobsUpdated += r.JobsUpdated
	} else {
		s.SourcesFailed++
	}
}
