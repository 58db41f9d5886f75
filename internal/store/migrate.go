package store

func (s *Store) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  external_id TEXT NOT NULL,
  source_url TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  is_remote INTEGER,
  description TEXT NOT NULL DEFAULT '',
  requirements TEXT NOT NULL DEFAULT '',
  skills_required TEXT NOT NULL DEFAULT '',
  salary_min REAL,
  salary_max REAL,
  salary_currency TEXT NOT NULL DEFAULT '',
  experience_min REAL,
  experience_max REAL,
  employment_type TEXT NOT NULL DEFAULT '',
  posted_date TEXT,
  company_logo_url TEXT NOT NULL DEFAULT '',
  industry TEXT NOT NULL DEFAULT '',
  company_size TEXT NOT NULL DEFAULT '',
  first_seen TEXT NOT NULL,
  last_seen TEXT NOT NULL,
  UNIQUE(source, external_id)
);`,
		`
CREATE TABLE IF NOT EXISTS scraper_runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  status TEXT NOT NULL,
  jobs_found INTEGER NOT NULL DEFAULT 0,
  jobs_new INTEGER NOT NULL DEFAULT 0,
  jobs_updated INTEGER NOT NULL DEFAULT 0,
  error_message TEXT NOT NULL DEFAULT '',
  started_at TEXT NOT NULL,
  finished_at TEXT,
  duration_ms INTEGER NOT NULL DEFAULT 0
);`,
		`
CREATE TABLE IF NOT EXISTS job_scores (
  job_id INTEGER NOT NULL,
  user_id TEXT NOT NULL,
  overall_score INTEGER NOT NULL,
  semantic_score INTEGER NOT NULL,
  skill_match_score INTEGER NOT NULL,
  experience_match_score INTEGER NOT NULL,
  salary_match_score INTEGER NOT NULL,
  location_match_score INTEGER NOT NULL,
  matched_skills TEXT NOT NULL DEFAULT '[]',
  missing_skills TEXT NOT NULL DEFAULT '[]',
  experience_analysis TEXT NOT NULL DEFAULT '',
  salary_analysis TEXT NOT NULL DEFAULT '',
  location_analysis TEXT NOT NULL DEFAULT '',
  pros TEXT NOT NULL DEFAULT '[]',
  cons TEXT NOT NULL DEFAULT '[]',
  scored_at TEXT NOT NULL,
  UNIQUE(job_id, user_id)
);`,
		`
CREATE TABLE IF NOT EXISTS profile (
  user_id TEXT PRIMARY KEY,
  target_roles TEXT NOT NULL DEFAULT '',
  preferred_locations TEXT NOT NULL DEFAULT '',
  remote_preference TEXT NOT NULL DEFAULT '',
  salary_min_target REAL,
  salary_max_target REAL,
  salary_currency TEXT NOT NULL DEFAULT ''
);`,
		`
CREATE TABLE IF NOT EXISTS skills (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  weight INTEGER NOT NULL DEFAULT 0,
  UNIQUE(user_id, name)
);`,
		`
CREATE TABLE IF NOT EXISTS experience (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  company TEXT NOT NULL,
  title TEXT NOT NULL,
  start_date TEXT NOT NULL,
  end_date TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_last_seen ON jobs(last_seen);`,
		`CREATE INDEX IF NOT EXISTS idx_scraper_runs_started ON scraper_runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_job_scores_user ON job_scores(user_id, overall_score);`,
		`PRAGMA user_version = 1;`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}
