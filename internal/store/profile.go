package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobmatch-engine/internal/domain"
)

var ErrNoProfile = errors.New("profile not found")

const dateLayout = "2006-01-02"

func (s *Store) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	var salMin, salMax sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `
SELECT user_id, target_roles, preferred_locations, remote_preference,
       salary_min_target, salary_max_target, salary_currency
FROM profile WHERE user_id = ?;`, userID).Scan(
		&p.UserID, &p.TargetRoles, &p.PreferredLocations, &p.RemotePreference,
		&salMin, &salMax, &p.SalaryCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNoProfile
	}
	if err != nil {
		return p, err
	}
	p.SalaryMinTarget = floatPtr(salMin)
	p.SalaryMaxTarget = floatPtr(salMax)
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	if p.UserID == "" {
		return errors.New("profile missing user id")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO profile (user_id, target_roles, preferred_locations, remote_preference,
  salary_min_target, salary_max_target, salary_currency)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(user_id) DO UPDATE SET
  target_roles = excluded.target_roles,
  preferred_locations = excluded.preferred_locations,
  remote_preference = excluded.remote_preference,
  salary_min_target = excluded.salary_min_target,
  salary_max_target = excluded.salary_max_target,
  salary_currency = excluded.salary_currency;`,
		p.UserID, p.TargetRoles, p.PreferredLocations, p.RemotePreference,
		nullFloat(p.SalaryMinTarget), nullFloat(p.SalaryMaxTarget), p.SalaryCurrency)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ListSkills returns the user's skills, most prominent first.
func (s *Store) ListSkills(ctx context.Context, userID string) ([]domain.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, weight FROM skills
WHERE user_id = ?
ORDER BY weight DESC, name ASC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Skill
	for rows.Next() {
		var sk domain.Skill
		if err := rows.Scan(&sk.Name, &sk.Weight); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceSkills(ctx context.Context, userID string, skills []domain.Skill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM skills WHERE user_id = ?;`, userID); err != nil {
		return err
	}
	for _, sk := range skills {
		if sk.Name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO skills (user_id, name, weight) VALUES (?,?,?);`,
			userID, sk.Name, sk.Weight); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListExperience(ctx context.Context, userID string) ([]domain.ExperienceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT company, title, start_date, end_date FROM experience
WHERE user_id = ?
ORDER BY start_date ASC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExperienceRecord
	for rows.Next() {
		var r domain.ExperienceRecord
		var start string
		var end sql.NullString
		if err := rows.Scan(&r.Company, &r.Title, &start, &end); err != nil {
			return nil, err
		}
		r.StartDate, _ = time.Parse(dateLayout, start)
		if end.Valid && end.String != "" {
			if t, err := time.Parse(dateLayout, end.String); err == nil {
				r.EndDate = &t
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceExperience(ctx context.Context, userID string, records []domain.ExperienceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM experience WHERE user_id = ?;`, userID); err != nil {
		return err
	}
	for _, r := range records {
		var end any
		if r.EndDate != nil && !r.EndDate.IsZero() {
			end = r.EndDate.Format(dateLayout)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO experience (user_id, company, title, start_date, end_date) VALUES (?,?,?,?,?);`,
			userID, r.Company, r.Title, r.StartDate.Format(dateLayout), end); err != nil {
			return err
		}
	}
	return tx.Commit()
}
