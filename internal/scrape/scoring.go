package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/events"
	"jobmatch-engine/internal/score"
)

// ScoreJob recomputes and persists the breakdown for one (job, user) pair.
// Profile problems degrade to the neutral breakdown rather than failing;
// only a missing job or a persistence error is reported to the caller.
func (o *Orchestrator) ScoreJob(ctx context.Context, userID string, jobID int64) (domain.ScoreBreakdown, error) {
	job, err := o.gw.GetJob(ctx, jobID)
	if err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("load job %d: %w", jobID, err)
	}

	breakdown := o.scoreOne(ctx, userID, job.ID, job.NormalizedJob)
	if err := o.gw.UpsertJobScore(ctx, job.ID, userID, breakdown); err != nil {
		return breakdown, err
	}
	return breakdown, nil
}

// ScoreNewJobs scores up to limit jobs that have no score row for the user
// yet. Individual failures are logged and skipped; the count of successfully
// scored jobs is returned.
func (o *Orchestrator) ScoreNewJobs(ctx context.Context, userID string, limit int) (int, error) {
	jobs, err := o.gw.FindJobsWithoutScoreForUser(ctx, userID, limit)
	if err != nil {
		return 0, fmt.Errorf("find unscored jobs: %w", err)
	}

	scored := 0
	for _, job := range jobs {
		breakdown := o.scoreOne(ctx, userID, job.ID, job.NormalizedJob)
		if err := o.gw.UpsertJobScore(ctx, job.ID, userID, breakdown); err != nil {
			log.Printf("[score] persist job=%d user=%s: %v", job.ID, userID, err)
			continue
		}
		scored++
	}

	if scored > 0 {
		o.publish(events.TypeJobsScored, map[string]any{"userId": userID, "scored": scored})
	}
	log.Printf("[score] user=%s scored=%d of %d candidates", userID, scored, len(jobs))
	return scored, nil
}

func (o *Orchestrator) scoreOne(ctx context.Context, userID string, jobID int64, job domain.NormalizedJob) domain.ScoreBreakdown {
	input, err := o.profileInput(ctx, userID)
	if err != nil {
		log.Printf("[score] profile unusable for user=%s: %v", userID, err)
		return score.Neutral(err.Error())
	}

	semantic, err := o.semantic.Similarity(ctx, userID, jobID)
	if err != nil {
		log.Printf("[score] semantic source failed job=%d: %v", jobID, err)
		semantic = 50
	}

	return o.engine.Score(job, input, semantic)
}

func (o *Orchestrator) profileInput(ctx context.Context, userID string) (score.ProfileInput, error) {
	var input score.ProfileInput

	p, err := o.gw.GetProfile(ctx, userID)
	if err != nil {
		return input, err
	}

	skills, err := o.gw.ListSkills(ctx, userID)
	if err != nil {
		return input, err
	}
	for _, sk := range skills {
		if name := strings.TrimSpace(sk.Name); name != "" {
			input.Skills = append(input.Skills, name)
		}
	}

	input.Experience, err = o.gw.ListExperience(ctx, userID)
	if err != nil {
		return input, err
	}

	input.SalaryMinTarget = p.SalaryMinTarget
	input.SalaryMaxTarget = p.SalaryMaxTarget
	input.RemotePreference = p.RemotePreference
	input.PreferredLocations = score.ParseFlexibleList(p.PreferredLocations).Values
	return input, nil
}
