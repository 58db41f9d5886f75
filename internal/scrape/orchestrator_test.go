package scrape

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/health"
	"jobmatch-engine/internal/scrape/types"
	"jobmatch-engine/internal/store"
)

// fakeGateway is an in-memory Gateway keyed on (source, external_id).
type fakeGateway struct {
	mu      sync.Mutex
	jobs    map[string]*store.Job
	nextID  int64
	runs    map[string]store.RunUpdate
	scores  map[int64]domain.ScoreBreakdown
	profile domain.Profile
	skills  []domain.Skill
	exp     []domain.ExperienceRecord

	profileErr error
	upsertErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		jobs:    map[string]*store.Job{},
		runs:    map[string]store.RunUpdate{},
		scores:  map[int64]domain.ScoreBreakdown{},
		profile: domain.Profile{UserID: "u1", TargetRoles: `["backend engineer"]`, RemotePreference: "any"},
	}
}

func key(source, externalID string) string { return source + "\x00" + externalID }

func (f *fakeGateway) FindJobBySourceAndExternalID(_ context.Context, source, externalID string) (*store.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[key(source, externalID)]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeGateway) UpsertJob(_ context.Context, j domain.NormalizedJob) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	k := key(j.Source, j.ExternalID)
	if existing, ok := f.jobs[k]; ok {
		existing.NormalizedJob = j
		existing.LastSeen = time.Now()
		return existing.ID, nil
	}
	f.nextID++
	f.jobs[k] = &store.Job{ID: f.nextID, NormalizedJob: j, FirstSeen: time.Now(), LastSeen: time.Now()}
	return f.nextID, nil
}

func (f *fakeGateway) GetJob(_ context.Context, id int64) (*store.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			cp := *j
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGateway) CreateScraperRun(_ context.Context, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := source + "-run"
	f.runs[id] = store.RunUpdate{Status: store.RunStatusRunning}
	return id, nil
}

func (f *fakeGateway) UpdateScraperRun(_ context.Context, id string, upd store.RunUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id] = upd
	return nil
}

func (f *fakeGateway) FindJobsWithoutScoreForUser(_ context.Context, _ string, limit int) ([]store.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Job
	for _, j := range f.jobs {
		if _, ok := f.scores[j.ID]; !ok {
			out = append(out, *j)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeGateway) UpsertJobScore(_ context.Context, jobID int64, _ string, b domain.ScoreBreakdown) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[jobID] = b
	return nil
}

func (f *fakeGateway) GetProfile(_ context.Context, _ string) (domain.Profile, error) {
	if f.profileErr != nil {
		return domain.Profile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeGateway) ListSkills(_ context.Context, _ string) ([]domain.Skill, error) {
	return f.skills, nil
}

func (f *fakeGateway) ListExperience(_ context.Context, _ string) ([]domain.ExperienceRecord, error) {
	return f.exp, nil
}

// fakeAdapter returns canned jobs or a canned error and records invocations.
type fakeAdapter struct {
	name    string
	jobs    []domain.NormalizedJob
	err     error
	mu      sync.Mutex
	calls   int
	lastCfg domain.SearchConfig
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Scrape(_ context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	a.mu.Lock()
	a.calls++
	a.lastCfg = cfg
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.jobs, nil
}

func (a *fakeAdapter) TestConnection(context.Context) bool { return a.err == nil }

func job(source, externalID, title string) domain.NormalizedJob {
	return domain.NormalizedJob{Source: source, ExternalID: externalID, Title: title, Company: "Acme"}
}

func newTestOrchestrator(gw Gateway, adapters ...types.Adapter) *Orchestrator {
	reg := types.NewRegistry(adapters...)
	tracker := health.New(reg.Sources(), 3, 24*time.Hour)
	return NewOrchestrator(gw, reg, tracker, nil, nil, 3)
}

func TestScrapeAllNewThenUpdated(t *testing.T) {
	gw := newFakeGateway()
	ad := &fakeAdapter{name: "boardA", jobs: []domain.NormalizedJob{
		job("boardA", "1", "Backend Engineer"),
		job("boardA", "2", "Platform Engineer"),
	}}
	orc := newTestOrchestrator(gw, ad)

	first := orc.ScrapeAll(context.Background(), "u1", nil, nil)
	require.Len(t, first.Results, 1)
	assert.Equal(t, 2, first.Results[0].JobsFound)
	assert.Equal(t, 2, first.Results[0].JobsNew)
	assert.Equal(t, 0, first.Results[0].JobsUpdated)
	assert.Equal(t, 2, first.TotalJobsNew)

	// same jobs again: everything counts as updated, nothing duplicated
	second := orc.ScrapeAll(context.Background(), "u1", nil, nil)
	require.Len(t, second.Results, 1)
	assert.Equal(t, 0, second.Results[0].JobsNew)
	assert.Equal(t, 2, second.Results[0].JobsUpdated)
	assert.Len(t, gw.jobs, 2)
}

func TestScrapeAllPartialFailure(t *testing.T) {
	gw := newFakeGateway()
	ok1 := &fakeAdapter{name: "boardA", jobs: []domain.NormalizedJob{job("boardA", "1", "SRE")}}
	bad := &fakeAdapter{name: "boardB", err: errors.New("connection refused")}
	ok2 := &fakeAdapter{name: "boardC", jobs: []domain.NormalizedJob{job("boardC", "9", "Go Developer")}}
	orc := newTestOrchestrator(gw, ok1, bad, ok2)

	summary := orc.ScrapeAll(context.Background(), "u1", nil, nil)

	assert.Equal(t, 2, summary.SourcesSucceeded)
	assert.Equal(t, 1, summary.SourcesFailed)
	require.Len(t, summary.Results, 3)

	var failed *domain.ScrapeRunResult
	for i := range summary.Results {
		if !summary.Results[i].Success {
			failed = &summary.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "boardB", failed.Source)
	assert.Contains(t, failed.Error, "connection refused")
}

func TestScrapeAllSkipsBlockedSource(t *testing.T) {
	gw := newFakeGateway()
	ad := &fakeAdapter{name: "boardA", jobs: []domain.NormalizedJob{job("boardA", "1", "Engineer")}}
	orc := newTestOrchestrator(gw, ad)

	for i := 0; i < 3; i++ {
		orc.Health().RecordFailure("boardA")
	}
	require.False(t, orc.Health().IsAvailable("boardA"))

	// explicitly requested, but blocked: not attempted, no result entry
	summary := orc.ScrapeAll(context.Background(), "u1", []string{"boardA"}, nil)
	assert.Empty(t, summary.Results)
	assert.Zero(t, ad.calls)
}

func TestScrapeAllBlocksAfterRepeatedFailures(t *testing.T) {
	gw := newFakeGateway()
	bad := &fakeAdapter{name: "boardA", err: errors.New("403 blocked")}
	orc := newTestOrchestrator(gw, bad)

	for i := 0; i < 2; i++ {
		s := orc.ScrapeAll(context.Background(), "u1", nil, nil)
		require.Len(t, s.Results, 1)
		assert.False(t, s.Results[0].Blocked)
	}

	// third failure trips the breaker and is flagged on the result
	s := orc.ScrapeAll(context.Background(), "u1", nil, nil)
	require.Len(t, s.Results, 1)
	assert.True(t, s.Results[0].Blocked)

	// now the source is simply not scheduled
	s = orc.ScrapeAll(context.Background(), "u1", nil, nil)
	assert.Empty(t, s.Results)
	assert.Equal(t, 3, bad.calls)
}

func TestScrapeAllSkipsMalformedJobs(t *testing.T) {
	gw := newFakeGateway()
	ad := &fakeAdapter{name: "boardA", jobs: []domain.NormalizedJob{
		job("boardA", "1", "Good Job"),
		job("boardA", "", "No External ID"),
	}}
	orc := newTestOrchestrator(gw, ad)

	summary := orc.ScrapeAll(context.Background(), "u1", nil, nil)
	require.Len(t, summary.Results, 1)
	r := summary.Results[0]

	// the malformed record still counts as found, but the run succeeds
	assert.True(t, r.Success)
	assert.Equal(t, 2, r.JobsFound)
	assert.Equal(t, 1, r.JobsNew)
	assert.Len(t, gw.jobs, 1)
}

func TestScrapeAllOverrideWins(t *testing.T) {
	gw := newFakeGateway()
	ad := &fakeAdapter{name: "boardA"}
	orc := newTestOrchestrator(gw, ad)

	override := &domain.ConfigOverride{Keywords: []string{"data engineer"}}
	orc.ScrapeAll(context.Background(), "u1", nil, override)

	assert.Equal(t, []string{"data engineer"}, ad.lastCfg.Keywords)
}

func TestBuildSearchConfigFallsBackToDefaultKeywords(t *testing.T) {
	gw := newFakeGateway()
	gw.profile = domain.Profile{UserID: "u1"} // no roles, no skills
	orc := newTestOrchestrator(gw, &fakeAdapter{name: "boardA"})

	cfg, err := orc.BuildSearchConfig(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"software engineer"}, cfg.Keywords)
}

func TestBuildSearchConfigFromProfile(t *testing.T) {
	gw := newFakeGateway()
	gw.profile = domain.Profile{
		UserID:             "u1",
		TargetRoles:        `["Backend Engineer","Platform Engineer"]`,
		PreferredLocations: "Berlin, Amsterdam",
		RemotePreference:   "remote",
		SalaryMinTarget:    fp(90000),
		SalaryCurrency:     "EUR",
	}
	gw.skills = []domain.Skill{{Name: "Go", Weight: 5}, {Name: "Kubernetes", Weight: 3}}
	orc := newTestOrchestrator(gw, &fakeAdapter{name: "boardA"})

	cfg, err := orc.BuildSearchConfig(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Backend Engineer", "Platform Engineer", "Go", "Kubernetes"}, cfg.Keywords)
	assert.Equal(t, []string{"Berlin", "Amsterdam"}, cfg.Locations)
	assert.Equal(t, "Berlin", cfg.Location)
	require.NotNil(t, cfg.Remote)
	assert.True(t, *cfg.Remote)
	require.NotNil(t, cfg.SalaryMin)
	assert.Equal(t, 90000.0, *cfg.SalaryMin)
	assert.Equal(t, "EUR", cfg.SalaryCurrency)
}

func TestScoreNewJobsNeutralOnProfileError(t *testing.T) {
	gw := newFakeGateway()
	ad := &fakeAdapter{name: "boardA", jobs: []domain.NormalizedJob{job("boardA", "1", "Engineer")}}
	orc := newTestOrchestrator(gw, ad)
	orc.ScrapeAll(context.Background(), "u1", nil, nil)

	gw.profileErr = errors.New("profile row corrupt")
	scored, err := orc.ScoreNewJobs(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, scored)

	for _, b := range gw.scores {
		assert.Equal(t, 50, b.OverallScore)
		assert.Equal(t, 50, b.SkillMatchScore)
	}
}

func TestScoreJobPersistsBreakdown(t *testing.T) {
	gw := newFakeGateway()
	ad := &fakeAdapter{name: "boardA", jobs: []domain.NormalizedJob{
		{Source: "boardA", ExternalID: "1", Title: "Go Engineer", SkillsRequired: `["Go"]`},
	}}
	orc := newTestOrchestrator(gw, ad)
	orc.ScrapeAll(context.Background(), "u1", nil, nil)

	gw.skills = []domain.Skill{{Name: "Go", Weight: 5}}
	b, err := orc.ScoreJob(context.Background(), "u1", 1)
	require.NoError(t, err)

	assert.Equal(t, 100, b.SkillMatchScore)
	assert.Contains(t, gw.scores, int64(1))
}

func TestScoreJobUnknownJob(t *testing.T) {
	gw := newFakeGateway()
	orc := newTestOrchestrator(gw, &fakeAdapter{name: "boardA"})

	_, err := orc.ScoreJob(context.Background(), "u1", 42)
	assert.Error(t, err)
}

func TestTestSourceUnknown(t *testing.T) {
	orc := newTestOrchestrator(newFakeGateway(), &fakeAdapter{name: "boardA"})

	ok, err := orc.TestSource(context.Background(), "boardA")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = orc.TestSource(context.Background(), "nope")
	assert.Error(t, err)
}

func fp(v float64) *float64 { return &v }
