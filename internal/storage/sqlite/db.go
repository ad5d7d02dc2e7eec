package sqlite

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"shiftscan/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id           TEXT NOT NULL UNIQUE,
		user_id          TEXT NOT NULL DEFAULT '',
		target_name      TEXT NOT NULL,
		year_month       TEXT NOT NULL,
		hourly_wage      REAL NOT NULL,
		provider         TEXT DEFAULT '',
		model            TEXT DEFAULT '',
		accepted         INTEGER NOT NULL DEFAULT 0,
		rejected         INTEGER NOT NULL DEFAULT 0,
		reason_breakdown TEXT DEFAULT '',
		total_pay_floor  INTEGER NOT NULL DEFAULT 0,
		malformed        INTEGER NOT NULL DEFAULT 0,
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_user ON analysis_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id     TEXT PRIMARY KEY,
		target_name TEXT DEFAULT '',
		hourly_wage REAL,
		year_month  TEXT DEFAULT '',
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func InsertRun(db *sql.DB, run domain.RunRecord) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO analysis_runs (run_id, user_id, target_name, year_month, hourly_wage, provider, model,
		                            accepted, rejected, reason_breakdown, total_pay_floor, malformed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.UserID, run.TargetName, run.YearMonth, run.HourlyWage, run.Provider, run.Model,
		run.Accepted, run.Rejected, run.ReasonBreakdown, run.TotalPayFloor, run.Malformed, run.CreatedAt,
	)
	return err
}

// ListRuns returns the newest runs first. An empty userID lists every user.
func ListRuns(db *sql.DB, userID string, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, run_id, user_id, target_name, year_month, hourly_wage, provider, model,
	                 accepted, rejected, reason_breakdown, total_pay_floor, malformed, created_at
	          FROM analysis_runs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var r domain.RunRecord
		err := rows.Scan(
			&r.ID, &r.RunID, &r.UserID, &r.TargetName, &r.YearMonth, &r.HourlyWage, &r.Provider, &r.Model,
			&r.Accepted, &r.Rejected, &r.ReasonBreakdown, &r.TotalPayFloor, &r.Malformed, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func SaveUserSettings(db *sql.DB, s domain.UserSettings) error {
	_, err := db.Exec(
		`INSERT INTO user_settings (user_id, target_name, hourly_wage, year_month, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   target_name = excluded.target_name,
		   hourly_wage = excluded.hourly_wage,
		   year_month  = excluded.year_month,
		   updated_at  = excluded.updated_at`,
		s.UserID, s.TargetName, sql.NullFloat64{Float64: s.HourlyWage, Valid: s.WageSet}, s.YearMonth, time.Now().UTC(),
	)
	return err
}

// GetUserSettings reports ok=false when the user has never saved settings.
func GetUserSettings(db *sql.DB, userID string) (domain.UserSettings, bool, error) {
	var s domain.UserSettings
	var wage sql.NullFloat64
	err := db.QueryRow(
		`SELECT user_id, target_name, hourly_wage, year_month, updated_at
		 FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(&s.UserID, &s.TargetName, &wage, &s.YearMonth, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserSettings{}, false, nil
	}
	if err != nil {
		return domain.UserSettings{}, false, err
	}
	s.HourlyWage, s.WageSet = wage.Float64, wage.Valid
	return s, true, nil
}
