package service

import (
	"context"
	"time"

	"qadashboard/internal/domain"
	"qadashboard/internal/metrics"
	"qadashboard/internal/storage"
)

type Service interface {
	ListDevelopers(ctx context.Context) ([]domain.Developer, error)
	DeveloperReport(ctx context.Context, developerID int64, period domain.DateRange) (metrics.DeveloperReport, error)
	TeamSummary(ctx context.Context) ([]metrics.SummaryRow, error)

	CreateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error)
	UpdateDeveloper(ctx context.Context, id int64, changes DeveloperChanges) (domain.Developer, error)
	DeleteDeveloper(ctx context.Context, id int64) error

	GetRequirement(ctx context.Context, id int64) (metrics.RequirementMetrics, error)
	CreateRequirement(ctx context.Context, req domain.Requirement) (metrics.RequirementMetrics, error)
	UpdateRequirement(ctx context.Context, req domain.Requirement) (metrics.RequirementMetrics, error)
	DeleteRequirement(ctx context.Context, id int64) error

	Health(ctx context.Context) error
}

// DeveloperChanges lists the editable developer fields; nil means unchanged.
type DeveloperChanges struct {
	Name *string
	Role *domain.Role
}

type DashboardService struct {
	repo storage.Repository
	now  func() time.Time
}

type Option func(*DashboardService)

// WithClock overrides the clock used to stamp requirement completion dates.
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) {
		s.now = now
	}
}

func New(repo storage.Repository, opts ...Option) *DashboardService {
	s := &DashboardService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DashboardService) ListDevelopers(ctx context.Context) ([]domain.Developer, error) {
	return s.repo.ListDevelopers(ctx)
}

func (s *DashboardService) DeveloperReport(ctx context.Context, developerID int64, period domain.DateRange) (metrics.DeveloperReport, error) {
	dev, err := s.repo.GetDeveloper(ctx, developerID)
	if err != nil {
		return metrics.DeveloperReport{}, err
	}

	reqs, err := s.repo.ListRequirements(ctx, dev.ID, period)
	if err != nil {
		return metrics.DeveloperReport{}, err
	}

	return metrics.BuildDeveloperReport(dev, reqs), nil
}

func (s *DashboardService) TeamSummary(ctx context.Context) ([]metrics.SummaryRow, error) {
	devs, err := s.repo.ListDevelopers(ctx)
	if err != nil {
		return nil, err
	}

	reqs, err := s.repo.ListAllRequirements(ctx)
	if err != nil {
		return nil, err
	}

	byDeveloper := make(map[int64][]domain.Requirement, len(devs))
	for _, req := range reqs {
		byDeveloper[req.DeveloperID] = append(byDeveloper[req.DeveloperID], req)
	}

	return metrics.BuildTeamSummary(devs, byDeveloper), nil
}

func (s *DashboardService) CreateDeveloper(ctx context.Context, dev domain.Developer) (domain.Developer, error) {
	if dev.Role == "" {
		dev.Role = domain.DefaultRole
	}
	if err := dev.Validate(); err != nil {
		return domain.Developer{}, err
	}
	return s.repo.CreateDeveloper(ctx, dev)
}

func (s *DashboardService) UpdateDeveloper(ctx context.Context, id int64, changes DeveloperChanges) (domain.Developer, error) {
	dev, err := s.repo.GetDeveloper(ctx, id)
	if err != nil {
		return domain.Developer{}, err
	}

	if changes.Name != nil {
		dev.Name = *changes.Name
	}
	if changes.Role != nil {
		dev.Role = *changes.Role
	}
	if err := dev.Validate(); err != nil {
		return domain.Developer{}, err
	}

	return s.repo.UpdateDeveloper(ctx, dev)
}

// DeleteDeveloper removes the developer together with all of its requirements.
func (s *DashboardService) DeleteDeveloper(ctx context.Context, id int64) error {
	return s.repo.DeleteDeveloper(ctx, id)
}

func (s *DashboardService) GetRequirement(ctx context.Context, id int64) (metrics.RequirementMetrics, error) {
	req, err := s.repo.GetRequirement(ctx, id)
	if err != nil {
		return metrics.RequirementMetrics{}, err
	}
	return withMetrics(req), nil
}

func (s *DashboardService) CreateRequirement(ctx context.Context, req domain.Requirement) (metrics.RequirementMetrics, error) {
	if err := req.Validate(); err != nil {
		return metrics.RequirementMetrics{}, err
	}

	now := s.now()
	req.CompletedOn = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	created, err := s.repo.CreateRequirement(ctx, req)
	if err != nil {
		return metrics.RequirementMetrics{}, err
	}
	return withMetrics(created), nil
}

// UpdateRequirement replaces the editable fields of an existing requirement.
// The stored completion date is kept.
func (s *DashboardService) UpdateRequirement(ctx context.Context, req domain.Requirement) (metrics.RequirementMetrics, error) {
	if err := req.Validate(); err != nil {
		return metrics.RequirementMetrics{}, err
	}

	updated, err := s.repo.UpdateRequirement(ctx, req)
	if err != nil {
		return metrics.RequirementMetrics{}, err
	}
	return withMetrics(updated), nil
}

func (s *DashboardService) DeleteRequirement(ctx context.Context, id int64) error {
	return s.repo.DeleteRequirement(ctx, id)
}

func (s *DashboardService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

func withMetrics(req domain.Requirement) metrics.RequirementMetrics {
	return metrics.RequirementMetrics{
		Requirement: req,
		Derived:     metrics.Derive(req),
	}
}
