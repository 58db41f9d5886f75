package scrape

import (
	"context"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/store"
)

// Gateway is the persistence surface the orchestrator consumes. *store.Store
// implements it; tests substitute fakes.
type Gateway interface {
	FindJobBySourceAndExternalID(ctx context.Context, source, externalID string) (*store.Job, error)
	UpsertJob(ctx context.Context, j domain.NormalizedJob) (int64, error)
	GetJob(ctx context.Context, id int64) (*store.Job, error)

	CreateScraperRun(ctx context.Context, source string) (string, error)
	UpdateScraperRun(ctx context.Context, id string, upd store.RunUpdate) error

	FindJobsWithoutScoreForUser(ctx context.Context, userID string, limit int) ([]store.Job, error)
	UpsertJobScore(ctx context.Context, jobID int64, userID string, b domain.ScoreBreakdown) error

	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	ListSkills(ctx context.Context, userID string) ([]domain.Skill, error)
	ListExperience(ctx context.Context, userID string) ([]domain.ExperienceRecord, error)
}
