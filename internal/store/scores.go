package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobmatch-engine/internal/domain"
)

// UpsertJobScore persists a breakdown keyed by (jobID, userID); recomputation
// overwrites the prior record.
func (s *Store) UpsertJobScore(ctx context.Context, jobID int64, userID string, b domain.ScoreBreakdown) error {
	matched, _ := json.Marshal(emptyIfNil(b.MatchedSkills))
	missing, _ := json.Marshal(emptyIfNil(b.MissingSkills))
	pros, _ := json.Marshal(emptyIfNil(b.Pros))
	cons, _ := json.Marshal(emptyIfNil(b.Cons))

	_, err := s.db.ExecContext(ctx, `
INSERT INTO job_scores (job_id, user_id, overall_score, semantic_score, skill_match_score,
  experience_match_score, salary_match_score, location_match_score,
  matched_skills, missing_skills, experience_analysis, salary_analysis, location_analysis,
  pros, cons, scored_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(job_id, user_id) DO UPDATE SET
  overall_score = excluded.overall_score,
  semantic_score = excluded.semantic_score,
  skill_match_score = excluded.skill_match_score,
  experience_match_score = excluded.experience_match_score,
  salary_match_score = excluded.salary_match_score,
  location_match_score = excluded.location_match_score,
  matched_skills = excluded.matched_skills,
  missing_skills = excluded.missing_skills,
  experience_analysis = excluded.experience_analysis,
  salary_analysis = excluded.salary_analysis,
  location_analysis = excluded.location_analysis,
  pros = excluded.pros,
  cons = excluded.cons,
  scored_at = excluded.scored_at;`,
		jobID, userID, b.OverallScore, b.SemanticScore, b.SkillMatchScore,
		b.ExperienceMatchScore, b.SalaryMatchScore, b.LocationMatchScore,
		string(matched), string(missing), b.ExperienceAnalysis, b.SalaryAnalysis, b.LocationAnalysis,
		string(pros), string(cons), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert job score: %w", err)
	}
	return nil
}

// FindJobsWithoutScoreForUser returns up to limit jobs that have no score row
// for the user yet, newest first.
func (s *Store) FindJobsWithoutScoreForUser(ctx context.Context, userID string, limit int) ([]Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE NOT EXISTS (
  SELECT 1 FROM job_scores WHERE job_scores.job_id = jobs.id AND job_scores.user_id = ?
)
ORDER BY id DESC
LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
