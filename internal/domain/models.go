package domain

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

var maxEstimatedHours = decimal.RequireFromString("9999.99")

type Developer struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

func (d Developer) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(d.Name) > 100 {
		return fmt.Errorf("%w: name must be at most 100 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if !d.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, d.Role)
	}
	return nil
}

// Requirement is a tracked ticket. Failed unit tests are not stored; see
// metrics.UnitTestsFailed.
type Requirement struct {
	ID             int64
	DeveloperID    int64
	TicketKey      string
	Description    string
	QAApproved     bool
	RejectionCount int
	CompletedOn    time.Time

	UnitTestsTotal  int
	UnitTestsPassed int

	EstimatedEffortHours decimal.Decimal
	RealStart            *time.Time
	RealEnd              *time.Time

	FunctionalCases  int
	FunctionalBugs   int
	IntegrationCases int
	IntegrationBugs  int
	RegressionCases  int
	RegressionBugs   int
	ProductionBugs   int
}

func (r Requirement) Validate() error {
	if strings.TrimSpace(r.TicketKey) == "" {
		return fmt.Errorf("%w: ticket key is required", ErrValidation)
	}
	if utf8.RuneCountInString(r.TicketKey) > 250 {
		return fmt.Errorf("%w: ticket key must be at most 250 characters", ErrValidation)
	}
	if r.DeveloperID <= 0 {
		return fmt.Errorf("%w: developer is required", ErrValidation)
	}

	counts := []struct {
		name  string
		value int
	}{
		{"rejection_count", r.RejectionCount},
		{"unit_tests_total", r.UnitTestsTotal},
		{"unit_tests_passed", r.UnitTestsPassed},
		{"functional_cases", r.FunctionalCases},
		{"functional_bugs", r.FunctionalBugs},
		{"integration_cases", r.IntegrationCases},
		{"integration_bugs", r.IntegrationBugs},
		{"regression_cases", r.RegressionCases},
		{"regression_bugs", r.RegressionBugs},
		{"production_bugs", r.ProductionBugs},
	}
	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, c.name)
		}
		if c.value > math.MaxInt32 {
			return fmt.Errorf("%w: %s must be at most %d", ErrValidation, c.name, math.MaxInt32)
		}
	}

	if r.UnitTestsPassed > r.UnitTestsTotal {
		return fmt.Errorf("%w: unit_tests_passed cannot exceed unit_tests_total", ErrValidation)
	}

	if r.EstimatedEffortHours.IsNegative() {
		return fmt.Errorf("%w: estimated_effort_hours must not be negative", ErrValidation)
	}
	if !r.EstimatedEffortHours.Equal(r.EstimatedEffortHours.Truncate(2)) {
		return fmt.Errorf("%w: estimated_effort_hours allows at most 2 decimal places", ErrValidation)
	}
	if r.EstimatedEffortHours.GreaterThan(maxEstimatedHours) {
		return fmt.Errorf("%w: estimated_effort_hours must be at most %s", ErrValidation, maxEstimatedHours)
	}
	return nil
}

// DateRange bounds requirement completion dates. Both ends are inclusive and
// optional.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// AdminAccount is an operator allowed to use the administrative endpoints.
type AdminAccount struct {
	Username     string
	Email        string
	PasswordHash []byte
}
