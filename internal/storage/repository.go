package storage

import (
	"context"

	"qadashboard/internal/domain"
)

type Repository interface {
	ListDevelopers(ctx context.Context) ([]domain.Developer, error)
	GetDeveloper(ctx context.Context, id int64) (domain.Developer, error)
	CreateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error)
	UpdateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error)
	DeleteDeveloper(ctx context.Context, id int64) error

	// ListRequirements returns a developer's requirements completed within the
	// range, ordered by ID.
	ListRequirements(ctx context.Context, developerID int64, period domain.DateRange) ([]domain.Requirement, error)
	ListAllRequirements(ctx context.Context) ([]domain.Requirement, error)
	GetRequirement(ctx context.Context, id int64) (domain.Requirement, error)
	CreateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error)
	UpdateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error)
	DeleteRequirement(ctx context.Context, id int64) error

	GetAdmin(ctx context.Context, username string) (domain.AdminAccount, error)
	// SaveAdmin inserts or replaces the account and reports whether it was new.
	SaveAdmin(ctx context.Context, account domain.AdminAccount) (bool, error)

	Health(ctx context.Context) error
}
