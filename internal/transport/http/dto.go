package httptransport

import (
	"errors"
	"fmt"
	"time"

	"qadashboard/internal/domain"
	"qadashboard/internal/service"

	"github.com/shopspring/decimal"
)

type developerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r developerRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

func (r developerRequest) toDomain() (domain.Developer, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return domain.Developer{}, err
	}
	return domain.Developer{
		Name:  r.Name,
		Email: r.Email,
		Role:  role,
	}, nil
}

type updateDeveloperRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

func (r updateDeveloperRequest) toChanges() (service.DeveloperChanges, error) {
	changes := service.DeveloperChanges{Name: r.Name}
	if r.Role != nil {
		role, err := domain.ParseRole(*r.Role)
		if err != nil {
			return service.DeveloperChanges{}, err
		}
		changes.Role = &role
	}
	return changes, nil
}

type requirementRequest struct {
	DeveloperID          int64           `json:"developer_id"`
	TicketKey            string          `json:"jira_ticket"`
	Description          string          `json:"description"`
	QAApproved           bool            `json:"is_qa_approved"`
	RejectionCount       int             `json:"rejection_count"`
	UnitTestsTotal       int             `json:"unit_tests_total"`
	UnitTestsPassed      int             `json:"unit_tests_passed"`
	EstimatedEffortHours decimal.Decimal `json:"estimated_effort_hours"`
	StartDateReal        *string         `json:"start_date_real"`
	EndDateReal          *string         `json:"end_date_real"`
	FunctionalCases      int             `json:"functional_cases"`
	FunctionalBugs       int             `json:"functional_bugs"`
	IntegrationCases     int             `json:"integration_cases"`
	IntegrationBugs      int             `json:"integration_bugs"`
	RegressionCases      int             `json:"regression_cases"`
	RegressionBugs       int             `json:"regression_bugs"`
	ProductionBugs       int             `json:"production_bugs"`
}

func (r requirementRequest) validate() error {
	if r.DeveloperID == 0 {
		return errors.New("developer_id is required")
	}
	if r.TicketKey == "" {
		return errors.New("jira_ticket is required")
	}
	return nil
}

func (r requirementRequest) toDomain() (domain.Requirement, error) {
	start, err := parseOptionalDate("start_date_real", r.StartDateReal)
	if err != nil {
		return domain.Requirement{}, err
	}
	end, err := parseOptionalDate("end_date_real", r.EndDateReal)
	if err != nil {
		return domain.Requirement{}, err
	}

	return domain.Requirement{
		DeveloperID:          r.DeveloperID,
		TicketKey:            r.TicketKey,
		Description:          r.Description,
		QAApproved:           r.QAApproved,
		RejectionCount:       r.RejectionCount,
		UnitTestsTotal:       r.UnitTestsTotal,
		UnitTestsPassed:      r.UnitTestsPassed,
		EstimatedEffortHours: r.EstimatedEffortHours,
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

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("%s must be a YYYY-MM-DD date", field)
	}
	return &t, nil
}
