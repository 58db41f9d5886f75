package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobmatch-engine/internal/domain"
)

type Job struct {
	ID int64 `json:"id"`
	domain.NormalizedJob
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
}

const jobColumns = `id, source, external_id, source_url, title, company, location, is_remote,
description, requirements, skills_required, salary_min, salary_max, salary_currency,
experience_min, experience_max, employment_type, posted_date, company_logo_url,
industry, company_size, first_seen, last_seen`

// UpsertJob inserts the job or, when (source, external_id) already exists,
// refreshes every scraped field and bumps last_seen. first_seen survives
// updates, so re-scraping the same posting never duplicates it.
func (s *Store) UpsertJob(ctx context.Context, j domain.NormalizedJob) (int64, error) {
	if j.Source == "" || j.ExternalID == "" {
		return 0, errors.New("job missing source or external id")
	}
	if j.Title == "" {
		j.Title = "Job Posting"
	}
	if j.Company == "" {
		j.Company = "Unknown"
	}

	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (source, external_id, source_url, title, company, location, is_remote,
  description, requirements, skills_required, salary_min, salary_max, salary_currency,
  experience_min, experience_max, employment_type, posted_date, company_logo_url,
  industry, company_size, first_seen, last_seen)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(source, external_id) DO UPDATE SET
  source_url = excluded.source_url,
  title = excluded.title,
  company = excluded.company,
  location = excluded.location,
  is_remote = excluded.is_remote,
  description = excluded.description,
  requirements = excluded.requirements,
  skills_required = excluded.skills_required,
  salary_min = excluded.salary_min,
  salary_max = excluded.salary_max,
  salary_currency = excluded.salary_currency,
  experience_min = excluded.experience_min,
  experience_max = excluded.experience_max,
  employment_type = excluded.employment_type,
  posted_date = excluded.posted_date,
  company_logo_url = excluded.company_logo_url,
  industry = excluded.industry,
  company_size = excluded.company_size,
  last_seen = excluded.last_seen;`,
		j.Source, j.ExternalID, j.SourceURL, j.Title, j.Company, j.Location, nullBool(j.IsRemote),
		j.Description, j.Requirements, j.SkillsRequired, nullFloat(j.SalaryMin), nullFloat(j.SalaryMax), j.SalaryCurrency,
		nullFloat(j.ExperienceMin), nullFloat(j.ExperienceMax), j.EmploymentType, nullTime(j.PostedDate), j.CompanyLogoURL,
		j.Industry, j.CompanySize, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert job: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE source = ? AND external_id = ?;`,
		j.Source, j.ExternalID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert job id lookup: %w", err)
	}
	return id, nil
}

// FindJobBySourceAndExternalID returns nil (no error) when the job is absent.
func (s *Store) FindJobBySourceAndExternalID(ctx context.Context, source, externalID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source = ? AND external_id = ?;`,
		source, externalID)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (s *Store) GetJob(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?;`, id)
	return scanJob(row)
}

func (s *Store) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 || limit > 2000 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY last_seen DESC, id DESC LIMIT ?;`, limit)
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

func (s *Store) CleanupOldJobs(ctx context.Context) (deleted int64, err error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM jobs
WHERE last_seen < datetime('now', '-3 months');`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*Job, error) {
	var j Job
	var isRemote sql.NullBool
	var salMin, salMax, expMin, expMax sql.NullFloat64
	var posted sql.NullString
	var firstSeen, lastSeen string

	err := r.Scan(
		&j.ID, &j.Source, &j.ExternalID, &j.SourceURL, &j.Title, &j.Company, &j.Location, &isRemote,
		&j.Description, &j.Requirements, &j.SkillsRequired, &salMin, &salMax, &j.SalaryCurrency,
		&expMin, &expMax, &j.EmploymentType, &posted, &j.CompanyLogoURL,
		&j.Industry, &j.CompanySize, &firstSeen, &lastSeen,
	)
	if err != nil {
		return nil, err
	}

	if isRemote.Valid {
		v := isRemote.Bool
		j.IsRemote = &v
	}
	j.SalaryMin = floatPtr(salMin)
	j.SalaryMax = floatPtr(salMax)
	j.ExperienceMin = floatPtr(expMin)
	j.ExperienceMax = floatPtr(expMax)
	if posted.Valid && posted.String != "" {
		if t, err := time.Parse(time.RFC3339, posted.String); err == nil {
			j.PostedDate = &t
		}
	}
	j.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
	j.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
	return &j, nil
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
