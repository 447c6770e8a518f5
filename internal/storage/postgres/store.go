package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"qadashboard/internal/config"
	"qadashboard/internal/domain"
	"qadashboard/internal/storage"
	"qadashboard/internal/storage/postgres/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var _ storage.Repository = (*Store)(nil)

const requirementColumns = `
	id, developer_id, ticket_key, description, is_qa_approved, rejection_count, date_completed,
	unit_tests_total, unit_tests_passed, estimated_effort_hours, start_date_real, end_date_real,
	functional_cases, functional_bugs, integration_cases, integration_bugs,
	regression_cases, regression_bugs, production_bugs`

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.applyMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	entries, err := migrations.Files.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		sqlBytes, err := fs.ReadFile(migrations.Files, entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *Store) ListDevelopers(ctx context.Context) ([]domain.Developer, error) {
	rows, err := s.pool.Query(ctx, `
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
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return devs, nil
}

func (s *Store) GetDeveloper(ctx context.Context, id int64) (domain.Developer, error) {
	var dev domain.Developer
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, role
		FROM developers
		WHERE id = $1`, id).Scan(&dev.ID, &dev.Name, &dev.Email, &dev.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Developer{}, domain.ErrDeveloperNotFound
		}
		return domain.Developer{}, err
	}
	return dev, nil
}

func (s *Store) CreateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO developers (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, dev.Name, dev.Email, string(dev.Role)).Scan(&dev.ID)
	if err != nil {
		return domain.Developer{}, translateError(err)
	}
	return dev, nil
}

func (s *Store) UpdateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error) {
	var updated domain.Developer
	err := s.pool.QueryRow(ctx, `
		UPDATE developers
		SET name = $2,
		    role = $3,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, email, role
	`, dev.ID, dev.Name, string(dev.Role)).Scan(&updated.ID, &updated.Name, &updated.Email, &updated.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Developer{}, domain.ErrDeveloperNotFound
		}
		return domain.Developer{}, translateError(err)
	}
	return updated, nil
}

func (s *Store) DeleteDeveloper(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM developers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeveloperNotFound
	}
	return nil
}

func (s *Store) ListRequirements(ctx context.Context, developerID int64, period domain.DateRange) ([]domain.Requirement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements
		WHERE developer_id = $1
		  AND ($2::date IS NULL OR date_completed >= $2::date)
		  AND ($3::date IS NULL OR date_completed <= $3::date)
		ORDER BY id
	`, developerID, period.From, period.To)
	if err != nil {
		return nil, err
	}
	return collectRequirements(rows)
}

func (s *Store) ListAllRequirements(ctx context.Context) ([]domain.Requirement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements
		ORDER BY developer_id, id`)
	if err != nil {
		return nil, err
	}
	return collectRequirements(rows)
}

func (s *Store) GetRequirement(ctx context.Context, id int64) (domain.Requirement, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements
		WHERE id = $1`, id)
	req, err := scanRequirement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Requirement{}, domain.ErrRequirementNotFound
		}
		return domain.Requirement{}, err
	}
	return req, nil
}

func (s *Store) CreateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO requirements (
			developer_id, ticket_key, description, is_qa_approved, rejection_count, date_completed,
			unit_tests_total, unit_tests_passed, estimated_effort_hours, start_date_real, end_date_real,
			functional_cases, functional_bugs, integration_cases, integration_bugs,
			regression_cases, regression_bugs, production_bugs
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`,
		req.DeveloperID, req.TicketKey, req.Description, req.QAApproved, req.RejectionCount, req.CompletedOn,
		req.UnitTestsTotal, req.UnitTestsPassed, toNumeric(req.EstimatedEffortHours), req.RealStart, req.RealEnd,
		req.FunctionalCases, req.FunctionalBugs, req.IntegrationCases, req.IntegrationBugs,
		req.RegressionCases, req.RegressionBugs, req.ProductionBugs,
	).Scan(&id)
	if err != nil {
		return domain.Requirement{}, translateError(err)
	}

	return s.GetRequirement(ctx, id)
}

// UpdateRequirement rewrites every editable column. The completion date is
// fixed at creation and never touched.
func (s *Store) UpdateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE requirements
		SET developer_id = $2,
		    ticket_key = $3,
		    description = $4,
		    is_qa_approved = $5,
		    rejection_count = $6,
		    unit_tests_total = $7,
		    unit_tests_passed = $8,
		    estimated_effort_hours = $9,
		    start_date_real = $10,
		    end_date_real = $11,
		    functional_cases = $12,
		    functional_bugs = $13,
		    integration_cases = $14,
		    integration_bugs = $15,
		    regression_cases = $16,
		    regression_bugs = $17,
		    production_bugs = $18,
		    updated_at = NOW()
		WHERE id = $1
	`,
		req.ID, req.DeveloperID, req.TicketKey, req.Description, req.QAApproved, req.RejectionCount,
		req.UnitTestsTotal, req.UnitTestsPassed, toNumeric(req.EstimatedEffortHours), req.RealStart, req.RealEnd,
		req.FunctionalCases, req.FunctionalBugs, req.IntegrationCases, req.IntegrationBugs,
		req.RegressionCases, req.RegressionBugs, req.ProductionBugs,
	)
	if err != nil {
		return domain.Requirement{}, translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Requirement{}, domain.ErrRequirementNotFound
	}

	return s.GetRequirement(ctx, req.ID)
}

func (s *Store) DeleteRequirement(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM requirements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

func (s *Store) GetAdmin(ctx context.Context, username string) (domain.AdminAccount, error) {
	var account domain.AdminAccount
	err := s.pool.QueryRow(ctx, `
		SELECT username, email, password_hash
		FROM admin_accounts
		WHERE username = $1`, username).Scan(&account.Username, &account.Email, &account.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AdminAccount{}, domain.ErrAdminNotFound
		}
		return domain.AdminAccount{}, err
	}
	return account, nil
}

func (s *Store) SaveAdmin(ctx context.Context, account domain.AdminAccount) (bool, error) {
	var inserted bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO admin_accounts (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET email = EXCLUDED.email,
		    password_hash = EXCLUDED.password_hash,
		    updated_at = NOW()
		RETURNING (xmax = 0)
	`, account.Username, account.Email, account.PasswordHash).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func collectRequirements(rows pgx.Rows) ([]domain.Requirement, error) {
	defer rows.Close()

	reqs := make([]domain.Requirement, 0)
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reqs, nil
}

func scanRequirement(row pgx.Row) (domain.Requirement, error) {
	var (
		req        domain.Requirement
		estimated  pgtype.Numeric
		start, end pgtype.Date
	)
	err := row.Scan(
		&req.ID, &req.DeveloperID, &req.TicketKey, &req.Description, &req.QAApproved, &req.RejectionCount, &req.CompletedOn,
		&req.UnitTestsTotal, &req.UnitTestsPassed, &estimated, &start, &end,
		&req.FunctionalCases, &req.FunctionalBugs, &req.IntegrationCases, &req.IntegrationBugs,
		&req.RegressionCases, &req.RegressionBugs, &req.ProductionBugs,
	)
	if err != nil {
		return domain.Requirement{}, err
	}

	req.EstimatedEffortHours = fromNumeric(estimated)
	req.RealStart = fromDate(start)
	req.RealEnd = fromDate(end)
	return req, nil
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func fromDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			switch pgErr.ConstraintName {
			case "developers_email_unique":
				return domain.ErrEmailExists
			case "requirements_ticket_key_unique":
				return domain.ErrTicketExists
			}
		case "23503":
			return domain.ErrDeveloperNotFound
		case "23514":
			return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
		}
	}
	return err
}
