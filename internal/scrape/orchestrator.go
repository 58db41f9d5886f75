// Package scrape drives the fleet of crawler adapters: it builds a search
// config from profile data, selects eligible sources, fans out in bounded
// batches, persists results, and feeds outcomes to the health tracker.
package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/events"
	"jobmatch-engine/internal/health"
	"jobmatch-engine/internal/score"
	"jobmatch-engine/internal/scrape/types"
	"jobmatch-engine/internal/store"
)

const defaultMaxConcurrency = 3

type Orchestrator struct {
	gw       Gateway
	registry *types.Registry
	health   *health.Tracker
	engine   score.Engine
	semantic score.SemanticSource
	hub      *events.Hub

	maxConcurrency int
}

func NewOrchestrator(gw Gateway, reg *types.Registry, tracker *health.Tracker,
	semantic score.SemanticSource, hub *events.Hub, maxConcurrency int) *Orchestrator {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	if semantic == nil {
		semantic = score.FlatSemantic{Value: 50}
	}
	return &Orchestrator{
		gw:             gw,
		registry:       reg,
		health:         tracker,
		semantic:       semantic,
		hub:            hub,
		maxConcurrency: maxConcurrency,
	}
}

func (o *Orchestrator) Health() *health.Tracker { return o.health }

// BuildSearchConfig assembles keywords from the user's target roles plus the
// top-5 skill names, resolves locations and remote preference, and computes
// total experience years. A run must never have zero search terms, so empty
// keyword sets fall back to "software engineer".
func (o *Orchestrator) BuildSearchConfig(ctx context.Context, userID string) (domain.SearchConfig, error) {
	p, err := o.gw.GetProfile(ctx, userID)
	if err != nil {
		return DefaultSearchConfig(), fmt.Errorf("load profile: %w", err)
	}

	var cfg domain.SearchConfig

	seen := map[string]bool{}
	addKeyword := func(k string) {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			return
		}
		seen[strings.ToLower(k)] = true
		cfg.Keywords = append(cfg.Keywords, k)
	}

	for _, role := range score.ParseFlexibleList(p.TargetRoles).Values {
		addKeyword(role)
	}

	skills, err := o.gw.ListSkills(ctx, userID)
	if err != nil {
		log.Printf("[orchestrator] list skills: %v", err)
	}
	for i, sk := range skills {
		if i >= 5 {
			break
		}
		addKeyword(sk.Name)
	}

	cfg.Locations = score.ParseFlexibleList(p.PreferredLocations).Values
	if len(cfg.Locations) > 0 {
		cfg.Location = cfg.Locations[0]
	}
	if strings.EqualFold(p.RemotePreference, "remote") {
		remote := true
		cfg.Remote = &remote
	}

	exp, err := o.gw.ListExperience(ctx, userID)
	if err != nil {
		log.Printf("[orchestrator] list experience: %v", err)
	}
	if years := score.TotalExperienceYears(exp, time.Now()); years > 0 {
		cfg.ExperienceYears = &years
	}

	cfg.SalaryMin = p.SalaryMinTarget
	cfg.SalaryCurrency = p.SalaryCurrency

	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultSearchConfig().Keywords
	}
	return cfg, nil
}

func DefaultSearchConfig() domain.SearchConfig {
	return domain.SearchConfig{Keywords: []string{"software engineer"}}
}

// ScrapeAll runs one orchestration pass. The candidate list is either the
// caller-specified subset (each checked against registry and availability) or
// all enabled+available sources; it is partitioned into batches of at most
// maxConcurrency and each batch is awaited before the next starts. A source
// skipped for unavailability is not attempted and produces no result entry.
// Nothing here aborts the batch; failures surface only in the summary.
func (o *Orchestrator) ScrapeAll(ctx context.Context, userID string, sources []string, override *domain.ConfigOverride) domain.ScrapeSummary {
	cfg, err := o.BuildSearchConfig(ctx, userID)
	if err != nil {
		log.Printf("[orchestrator] falling back to default search config: %v", err)
	}
	cfg = override.Apply(cfg)
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultSearchConfig().Keywords
	}

	candidates := o.selectSources(sources)
	log.Printf("[orchestrator] scraping %d source(s) keywords=%v", len(candidates), cfg.Keywords)

	var summary domain.ScrapeSummary
	for start := 0; start < len(candidates); start += o.maxConcurrency {
		end := start + o.maxConcurrency
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]
		results := make([]domain.ScrapeRunResult, len(batch))

		var g errgroup.Group
		for i, name := range batch {
			i, name := i, name
			adapter, _ := o.registry.Get(name)
			g.Go(func() error {
				results[i] = o.runScraper(ctx, adapter, cfg)
				return nil // a source failure never cancels its siblings
			})
		}
		_ = g.Wait()

		for _, r := range results {
			summary.Add(r)
		}
	}

	o.publish(events.TypeScrapeFinished, summary)
	return summary
}

// selectSources validates the requested subset, or returns every
// enabled+available source in registration order.
func (o *Orchestrator) selectSources(requested []string) []string {
	var out []string
	if len(requested) > 0 {
		for _, name := range requested {
			if _, ok := o.registry.Get(name); !ok {
				log.Printf("[orchestrator] unknown source %q; skipping", name)
				continue
			}
			if !o.health.IsAvailable(name) {
				log.Printf("[orchestrator] source %q unavailable; skipping", name)
				continue
			}
			out = append(out, name)
		}
		return out
	}
	for _, name := range o.registry.Sources() {
		if o.health.IsAvailable(name) {
			out = append(out, name)
		}
	}
	return out
}

// runScraper handles one adapter invocation end to end: run record, scrape,
// per-job upsert with individual failures skipped, run record update, health
// outcome. It always returns a result; errors never escape.
func (o *Orchestrator) runScraper(ctx context.Context, adapter types.Adapter, cfg domain.SearchConfig) domain.ScrapeRunResult {
	source := adapter.Name()
	res := domain.ScrapeRunResult{Source: source}
	started := time.Now()

	runID, err := o.gw.CreateScraperRun(ctx, source)
	if err != nil {
		log.Printf("[scrape:%s] create run record: %v", source, err)
	}

	jobs, err := adapter.Scrape(ctx, cfg)
	res.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		res.Blocked = o.health.RecordFailure(source)
		if res.Blocked {
			log.Printf("[scrape:%s] failure tripped circuit breaker: %v", source, err)
		} else {
			log.Printf("[scrape:%s] failed: %v", source, err)
		}
		o.updateRun(ctx, runID, store.RunUpdate{
			Status:       store.RunStatusFailed,
			ErrorMessage: res.Error,
			DurationMs:   res.DurationMs,
		})
		return res
	}

	res.Success = true
	res.JobsFound = len(jobs)

	for _, j := range jobs {
		isNew, err := o.processJob(ctx, j)
		if err != nil {
			// one malformed record must not fail the source's run
			log.Printf("[scrape:%s] job skipped external_id=%q title=%q: %v",
				source, j.ExternalID, j.Title, err)
			continue
		}
		if isNew {
			res.JobsNew++
			o.publish(events.TypeJobCreated, map[string]string{"source": source, "externalId": j.ExternalID})
		} else {
			res.JobsUpdated++
		}
	}

	res.DurationMs = time.Since(started).Milliseconds()
	o.health.RecordSuccess(source)
	o.updateRun(ctx, runID, store.RunUpdate{
		Status:      store.RunStatusSuccess,
		JobsFound:   res.JobsFound,
		JobsNew:     res.JobsNew,
		JobsUpdated: res.JobsUpdated,
		DurationMs:  res.DurationMs,
	})
	log.Printf("[scrape:%s] ok found=%d new=%d updated=%d in %dms",
		source, res.JobsFound, res.JobsNew, res.JobsUpdated, res.DurationMs)
	return res
}

// processJob upserts one normalized job; the existence check on
// (source, external_id) decides new vs updated.
func (o *Orchestrator) processJob(ctx context.Context, j domain.NormalizedJob) (isNew bool, err error) {
	if strings.TrimSpace(j.ExternalID) == "" {
		return false, fmt.Errorf("missing external id")
	}
	existing, err := o.gw.FindJobBySourceAndExternalID(ctx, j.Source, j.ExternalID)
	if err != nil {
		return false, err
	}
	if _, err := o.gw.UpsertJob(ctx, j); err != nil {
		return false, err
	}
	return existing == nil, nil
}

// TestSource exercises an adapter's connectivity check without a full run.
func (o *Orchestrator) TestSource(ctx context.Context, source string) (bool, error) {
	adapter, ok := o.registry.Get(source)
	if !ok {
		return false, fmt.Errorf("unknown source %q", source)
	}
	return adapter.TestConnection(ctx), nil
}

func (o *Orchestrator) updateRun(ctx context.Context, runID string, upd store.RunUpdate) {
	if runID == "" {
		return
	}
	if err := o.gw.UpdateScraperRun(ctx, runID, upd); err != nil {
		log.Printf("[orchestrator] update run %s: %v", runID, err)
	}
}

func (o *Orchestrator) publish(typ string, data any) {
	if o.hub != nil {
		o.hub.Publish(typ, data)
	}
}
