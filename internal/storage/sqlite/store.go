// Package sqlite is an embedded Repository for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qadashboard/internal/config"
	"qadashboard/internal/domain"
	"qadashboard/internal/storage"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ storage.Repository = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS developers (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	role       TEXT NOT NULL DEFAULT 'DEV_Junior'
		CHECK (role IN ('DBA', 'DBA_Becario', 'DEV_Junior', 'DEV_Senior', 'QA_Junior', 'QA_Senior')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requirements (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	developer_id           INTEGER NOT NULL REFERENCES developers (id) ON DELETE CASCADE,
	ticket_key             TEXT NOT NULL UNIQUE,
	description            TEXT NOT NULL DEFAULT '',
	is_qa_approved         INTEGER NOT NULL DEFAULT 0,
	rejection_count        INTEGER NOT NULL DEFAULT 0 CHECK (rejection_count >= 0),
	date_completed         TEXT NOT NULL,
	unit_tests_total       INTEGER NOT NULL DEFAULT 0 CHECK (unit_tests_total >= 0),
	unit_tests_passed      INTEGER NOT NULL DEFAULT 0 CHECK (unit_tests_passed >= 0),
	estimated_effort_hours TEXT NOT NULL DEFAULT '0',
	start_date_real        TEXT,
	end_date_real          TEXT,
	functional_cases       INTEGER NOT NULL DEFAULT 0 CHECK (functional_cases >= 0),
	functional_bugs        INTEGER NOT NULL DEFAULT 0 CHECK (functional_bugs >= 0),
	integration_cases      INTEGER NOT NULL DEFAULT 0 CHECK (integration_cases >= 0),
	integration_bugs       INTEGER NOT NULL DEFAULT 0 CHECK (integration_bugs >= 0),
	regression_cases       INTEGER NOT NULL DEFAULT 0 CHECK (regression_cases >= 0),
	regression_bugs        INTEGER NOT NULL DEFAULT 0 CHECK (regression_bugs >= 0),
	production_bugs        INTEGER NOT NULL DEFAULT 0 CHECK (production_bugs >= 0),
	created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CHECK (unit_tests_passed <= unit_tests_total)
);

CREATE INDEX IF NOT EXISTS idx_requirements_developer_completed
	ON requirements (developer_id, date_completed);

CREATE TABLE IF NOT EXISTS admin_accounts (
	username      TEXT PRIMARY KEY,
	email         TEXT NOT NULL DEFAULT '',
	password_hash BLOB NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const requirementColumns = `
	id, developer_id, ticket_key, description, is_qa_approved, rejection_count, date_completed,
	unit_tests_total, unit_tests_passed, estimated_effort_hours, start_date_real, end_date_real,
	functional_cases, functional_bugs, integration_cases, integration_bugs,
	regression_cases, regression_bugs, production_bugs`

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, cfg config.SQLiteConfig) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases live and die with their connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() {
	_ = s.db.Close()
}

func (s *Store) ListDevelopers(ctx context.Context) ([]domain.Developer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role
		FROM developers
		ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devs := make([]domain.Developer, 0)
	for rows.Next() {
		var dev domain.Developer
		if err := rows.Scan(&dev.ID, &dev.Name, &dev.Email, &dev.Role); err != nil {
			return nil, err
		}
		devs = append(devs, dev)
	}
	return devs, rows.Err()
}

func (s *Store) GetDeveloper(ctx context.Context, id int64) (domain.Developer, error) {
	var dev domain.Developer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role
		FROM developers
		WHERE id = ?`, id).Scan(&dev.ID, &dev.Name, &dev.Email, &dev.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Developer{}, domain.ErrDeveloperNotFound
		}
		return domain.Developer{}, err
	}
	return dev, nil
}

func (s *Store) CreateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO developers (name, email, role)
		VALUES (?, ?, ?)
		RETURNING id
	`, dev.Name, dev.Email, string(dev.Role)).Scan(&dev.ID)
	if err != nil {
		return domain.Developer{}, translateError(err)
	}
	return dev, nil
}

func (s *Store) UpdateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error) {
	var updated domain.Developer
	err := s.db.QueryRowContext(ctx, `
		UPDATE developers
		SET name = ?,
		    role = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING id, name, email, role
	`, dev.Name, string(dev.Role), dev.ID).Scan(&updated.ID, &updated.Name, &updated.Email, &updated.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Developer{}, domain.ErrDeveloperNotFound
		}
		return domain.Developer{}, translateError(err)
	}
	return updated, nil
}

func (s *Store) DeleteDeveloper(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM developers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrDeveloperNotFound)
}

func (s *Store) ListRequirements(ctx context.Context, developerID int64, period domain.DateRange) ([]domain.Requirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM requirements WHERE developer_id = ?`
	args := []any{developerID}
	if period.From != nil {
		query += ` AND date_completed >= ?`
		args = append(args, formatDate(*period.From))
	}
	if period.To != nil {
		query += ` AND date_completed <= ?`
		args = append(args, formatDate(*period.To))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRequirements(rows)
}

func (s *Store) ListAllRequirements(ctx context.Context) ([]domain.Requirement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements
		ORDER BY developer_id, id`)
	if err != nil {
		return nil, err
	}
	return collectRequirements(rows)
}

func (s *Store) GetRequirement(ctx context.Context, id int64) (domain.Requirement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements
		WHERE id = ?`, id)
	req, err := scanRequirement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Requirement{}, domain.ErrRequirementNotFound
		}
		return domain.Requirement{}, err
	}
	return req, nil
}

func (s *Store) CreateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO requirements (
			developer_id, ticket_key, description, is_qa_approved, rejection_count, date_completed,
			unit_tests_total, unit_tests_passed, estimated_effort_hours, start_date_real, end_date_real,
			functional_cases, functional_bugs, integration_cases, integration_bugs,
			regression_cases, regression_bugs, production_bugs
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		req.DeveloperID, req.TicketKey, req.Description, req.QAApproved, req.RejectionCount, formatDate(req.CompletedOn),
		req.UnitTestsTotal, req.UnitTestsPassed, req.EstimatedEffortHours.String(), nullDate(req.RealStart), nullDate(req.RealEnd),
		req.FunctionalCases, req.FunctionalBugs, req.IntegrationCases, req.IntegrationBugs,
		req.RegressionCases, req.RegressionBugs, req.ProductionBugs,
	).Scan(&id)
	if err != nil {
		return domain.Requirement{}, translateError(err)
	}

	return s.GetRequirement(ctx, id)
}

func (s *Store) UpdateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE requirements
		SET developer_id = ?,
		    ticket_key = ?,
		    description = ?,
		    is_qa_approved = ?,
		    rejection_count = ?,
		    unit_tests_total = ?,
		    unit_tests_passed = ?,
		    estimated_effort_hours = ?,
		    start_date_real = ?,
		    end_date_real = ?,
		    functional_cases = ?,
		    functional_bugs = ?,
		    integration_cases = ?,
		    integration_bugs = ?,
		    regression_cases = ?,
		    regression_bugs = ?,
		    production_bugs = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		req.DeveloperID, req.TicketKey, req.Description, req.QAApproved, req.RejectionCount,
		req.UnitTestsTotal, req.UnitTestsPassed, req.EstimatedEffortHours.String(), nullDate(req.RealStart), nullDate(req.RealEnd),
		req.FunctionalCases, req.FunctionalBugs, req.IntegrationCases, req.IntegrationBugs,
		req.RegressionCases, req.RegressionBugs, req.ProductionBugs,
		req.ID,
	)
	if err != nil {
		return domain.Requirement{}, translateError(err)
	}
	if err := expectAffected(res, domain.ErrRequirementNotFound); err != nil {
		return domain.Requirement{}, err
	}

	return s.GetRequirement(ctx, req.ID)
}

func (s *Store) DeleteRequirement(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requirements WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrRequirementNotFound)
}

func (s *Store) GetAdmin(ctx context.Context, username string) (domain.AdminAccount, error) {
	var account domain.AdminAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash
		FROM admin_accounts
		WHERE username = ?`, username).Scan(&account.Username, &account.Email, &account.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AdminAccount{}, domain.ErrAdminNotFound
		}
		return domain.AdminAccount{}, err
	}
	return account, nil
}

func (s *Store) SaveAdmin(ctx context.Context, account domain.AdminAccount) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback() //nolint:errcheck

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM admin_accounts WHERE username = ?)`, account.Username,
	).Scan(&exists); err != nil {
		return false, err
	}

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE admin_accounts
			SET email = ?,
			    password_hash = ?,
			    updated_at = CURRENT_TIMESTAMP
			WHERE username = ?
		`, account.Email, account.PasswordHash, account.Username)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO admin_accounts (username, email, password_hash)
			VALUES (?, ?, ?)
		`, account.Username, account.Email, account.PasswordHash)
	}
	if err != nil {
		return false, err
	}

	return !exists, tx.Commit()
}

func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collectRequirements(rows *sql.Rows) ([]domain.Requirement, error) {
	defer rows.Close()

	reqs := make([]domain.Requirement, 0)
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func scanRequirement(row rowScanner) (domain.Requirement, error) {
	var (
		req        domain.Requirement
		completed  string
		estimated  string
		start, end sql.NullString
	)
	err := row.Scan(
		&req.ID, &req.DeveloperID, &req.TicketKey, &req.Description, &req.QAApproved, &req.RejectionCount, &completed,
		&req.UnitTestsTotal, &req.UnitTestsPassed, &estimated, &start, &end,
		&req.FunctionalCases, &req.FunctionalBugs, &req.IntegrationCases, &req.IntegrationBugs,
		&req.RegressionCases, &req.RegressionBugs, &req.ProductionBugs,
	)
	if err != nil {
		return domain.Requirement{}, err
	}

	if req.CompletedOn, err = time.Parse(domain.DateLayout, completed); err != nil {
		return domain.Requirement{}, fmt.Errorf("parse date_completed of requirement %d: %w", req.ID, err)
	}
	if req.EstimatedEffortHours, err = decimal.NewFromString(estimated); err != nil {
		return domain.Requirement{}, fmt.Errorf("parse estimated hours of requirement %d: %w", req.ID, err)
	}
	if req.RealStart, err = parseNullDate(start); err != nil {
		return domain.Requirement{}, err
	}
	if req.RealEnd, err = parseNullDate(end); err != nil {
		return domain.Requirement{}, err
	}
	return req, nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", s.String, err)
	}
	return &t, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func translateError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "developers.email"):
		return domain.ErrEmailExists
	case strings.Contains(msg, "requirements.ticket_key"):
		return domain.ErrTicketExists
	case strings.Contains(msg, "FOREIGN KEY"):
		return domain.ErrDeveloperNotFound
	case strings.Contains(msg, "CHECK"):
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	}
	return err
}
