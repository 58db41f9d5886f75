package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate clamps bad scrape knobs to their defaults instead of
// failing: a broken config must never stop the engine from starting
// (it only earns warnings). Hard errors are reserved for values we cannot
// guess, like a malformed port.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535 (got %d)", out.App.Port)
	}

	clampInt := func(name string, v *int, def int) {
		if *v <= 0 {
			res.addWarn("%s missing or invalid; using default %d", name, def)
			*v = def
		}
	}
	clampInt("scrape.max_concurrency", &out.Scrape.MaxConcurrency, 3)
	clampInt("scrape.failure_threshold", &out.Scrape.FailureThreshold, 3)
	clampInt("scrape.block_window_hours", &out.Scrape.BlockWindowHours, 24)
	clampInt("scrape.retry_max_attempts", &out.Scrape.RetryMaxAttempts, 3)
	clampInt("scrape.retry_base_delay_ms", &out.Scrape.RetryBaseDelayMS, 500)
	clampInt("scrape.host_burst", &out.Scrape.HostBurst, 2)
	if out.Scrape.HostReqPerSec <= 0 {
		res.addWarn("scrape.host_req_per_sec missing or invalid; using default 1.0")
		out.Scrape.HostReqPerSec = 1.0
	}

	if strings.TrimSpace(out.Schedule.Spec) == "" {
		res.addWarn("schedule.spec empty; using default @every 6h")
		out.Schedule.Spec = "@every 6h"
	}
	clampInt("schedule.score_limit", &out.Schedule.ScoreLimit, 50)
	if strings.TrimSpace(out.Schedule.UserID) == "" {
		out.Schedule.UserID = "default"
	}

	// Board sources: drop companies with empty slugs, default names to slugs.
	cleanBoards := func(name string, src *BoardSource) {
		var keep []SourceCompany
		for _, c := range src.Companies {
			slug := strings.TrimSpace(c.Slug)
			if slug == "" {
				res.addWarn("sources.%s has a company with an empty slug; dropped", name)
				continue
			}
			if strings.TrimSpace(c.Name) == "" {
				c.Name = slug
			}
			c.Slug = slug
			keep = append(keep, c)
		}
		src.Companies = keep
		if src.Enabled && len(src.Companies) == 0 {
			res.addWarn("sources.%s enabled but has no companies; it will return nothing", name)
		}
	}
	cleanBoards("greenhouse", &out.Sources.Greenhouse)
	cleanBoards("lever", &out.Sources.Lever)
	cleanBoards("smartrecruiters", &out.Sources.SmartRecruiters)

	if out.Sources.Remotive.Limit <= 0 {
		out.Sources.Remotive.Limit = 100
	}

	lm := &out.Sources.LinkedInMail
	if lm.Enabled {
		if strings.TrimSpace(lm.IMAPHost) == "" {
			res.addErr("sources.linkedin_mail.imap_host is required when enabled")
		}
		if lm.IMAPPort == 0 {
			lm.IMAPPort = 993
		}
		if strings.TrimSpace(lm.Username) == "" {
			res.addErr("sources.linkedin_mail.username is required when enabled")
		}
		if strings.TrimSpace(lm.Mailbox) == "" {
			lm.Mailbox = "INBOX"
		}
		if lm.MaxMessages <= 0 {
			lm.MaxMessages = 50
		}
	}

	return out, res
}
