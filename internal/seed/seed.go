// Package seed loads developer and requirement fixtures from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"qadashboard/internal/domain"
	"qadashboard/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Fixtures struct {
	Developers []Developer `yaml:"developers"`
}

type Developer struct {
	Name         string        `yaml:"name"`
	Email        string        `yaml:"email"`
	Role         string        `yaml:"role"`
	Requirements []Requirement `yaml:"requirements"`
}

type Requirement struct {
	TicketKey            string `yaml:"jira_ticket"`
	Description          string `yaml:"description"`
	QAApproved           bool   `yaml:"is_qa_approved"`
	RejectionCount       int    `yaml:"rejection_count"`
	UnitTestsTotal       int    `yaml:"unit_tests_total"`
	UnitTestsPassed      int    `yaml:"unit_tests_passed"`
	EstimatedEffortHours string `yaml:"estimated_effort_hours"`
	StartDateReal        string `yaml:"start_date_real"`
	EndDateReal          string `yaml:"end_date_real"`
	FunctionalCases      int    `yaml:"functional_cases"`
	FunctionalBugs       int    `yaml:"functional_bugs"`
	IntegrationCases     int    `yaml:"integration_cases"`
	IntegrationBugs      int    `yaml:"integration_bugs"`
	RegressionCases      int    `yaml:"regression_cases"`
	RegressionBugs       int    `yaml:"regression_bugs"`
	ProductionBugs       int    `yaml:"production_bugs"`
}

// Result counts what Apply wrote and what it skipped because it already existed.
type Result struct {
	DevelopersCreated   int
	DevelopersExisting  int
	RequirementsCreated int
	RequirementsSkipped int
}

func Load(r io.Reader) (Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixtures{}, nil
		}
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}

// Apply creates the fixtures through svc. Developers are matched by email and
// requirements by ticket key, so running it twice is harmless.
func Apply(ctx context.Context, svc service.Service, f Fixtures, logger *zap.Logger) (Result, error) {
	var res Result

	existing, err := svc.ListDevelopers(ctx)
	if err != nil {
		return res, err
	}
	byEmail := make(map[string]domain.Developer, len(existing))
	for _, dev := range existing {
		byEmail[dev.Email] = dev
	}

	for _, fd := range f.Developers {
		dev, ok := byEmail[fd.Email]
		if ok {
			res.DevelopersExisting++
		} else {
			role, err := domain.ParseRole(fd.Role)
			if err != nil {
				return res, fmt.Errorf("developer %s: %w", fd.Email, err)
			}
			dev, err = svc.CreateDeveloper(ctx, domain.Developer{Name: fd.Name, Email: fd.Email, Role: role})
			if err != nil {
				return res, fmt.Errorf("developer %s: %w", fd.Email, err)
			}
			byEmail[dev.Email] = dev
			res.DevelopersCreated++
		}

		for _, fr := range fd.Requirements {
			req, err := fr.toDomain(dev.ID)
			if err != nil {
				return res, fmt.Errorf("requirement %s: %w", fr.TicketKey, err)
			}

			_, err = svc.CreateRequirement(ctx, req)
			switch {
			case errors.Is(err, domain.ErrTicketExists):
				logger.Debug("requirement already present", zap.String("ticket", fr.TicketKey))
				res.RequirementsSkipped++
			case err != nil:
				return res, fmt.Errorf("requirement %s: %w", fr.TicketKey, err)
			default:
				res.RequirementsCreated++
			}
		}
	}

	return res, nil
}

func (r Requirement) toDomain(developerID int64) (domain.Requirement, error) {
	estimate := decimal.Zero
	if r.EstimatedEffortHours != "" {
		d, err := decimal.NewFromString(r.EstimatedEffortHours)
		if err != nil {
			return domain.Requirement{}, fmt.Errorf("%w: estimated_effort_hours %q is not a number", domain.ErrValidation, r.EstimatedEffortHours)
		}
		estimate = d
	}

	start, err := parseDate("start_date_real", r.StartDateReal)
	if err != nil {
		return domain.Requirement{}, err
	}
	end, err := parseDate("end_date_real", r.EndDateReal)
	if err != nil {
		return domain.Requirement{}, err
	}

	return domain.Requirement{
		DeveloperID:          developerID,
		TicketKey:            r.TicketKey,
		Description:          r.Description,
		QAApproved:           r.QAApproved,
		RejectionCount:       r.RejectionCount,
		UnitTestsTotal:       r.UnitTestsTotal,
		UnitTestsPassed:      r.UnitTestsPassed,
		EstimatedEffortHours: estimate,
		RealStart:            start,
		RealEnd:              end,
		FunctionalCases:      r.FunctionalCases,
		FunctionalBugs:       r.FunctionalBugs,
		IntegrationCases:     r.IntegrationCases,
		IntegrationBugs:      r.IntegrationBugs,
		RegressionCases:      r.RegressionCases,
		RegressionBugs:       r.RegressionBugs,
		ProductionBugs:       r.ProductionBugs,
	}, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", domain.ErrValidation, field)
	}
	return &t, nil
}
