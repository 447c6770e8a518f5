package domain_test

import (
	"math"
	"strings"
	"testing"

	"qadashboard/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRequirement() domain.Requirement {
	return domain.Requirement{
		DeveloperID:          1,
		TicketKey:            "QA-1",
		UnitTestsTotal:       10,
		UnitTestsPassed:      7,
		EstimatedEffortHours: decimal.RequireFromString("12.50"),
	}
}

func TestRequirementValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.Requirement)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *domain.Requirement) {}},
		{name: "missing ticket", mutate: func(r *domain.Requirement) { r.TicketKey = " " }, wantErr: true},
		{name: "missing developer", mutate: func(r *domain.Requirement) { r.DeveloperID = 0 }, wantErr: true},
		{name: "negative count", mutate: func(r *domain.Requirement) { r.RegressionBugs = -1 }, wantErr: true},
		{name: "count at int32 limit", mutate: func(r *domain.Requirement) { r.FunctionalCases = math.MaxInt32 }},
		{name: "count above int32 limit", mutate: func(r *domain.Requirement) { r.FunctionalCases = math.MaxInt32 + 1 }, wantErr: true},
		{name: "unit totals above int32 limit", mutate: func(r *domain.Requirement) {
			r.UnitTestsTotal = math.MaxInt32 + 1
			r.UnitTestsPassed = 0
		}, wantErr: true},
		{name: "passed exceeds total", mutate: func(r *domain.Requirement) { r.UnitTestsPassed = 11 }, wantErr: true},
		{name: "three decimal places", mutate: func(r *domain.Requirement) { r.EstimatedEffortHours = decimal.RequireFromString("1.125") }, wantErr: true},
		{name: "estimate too large", mutate: func(r *domain.Requirement) { r.EstimatedEffortHours = decimal.RequireFromString("10000") }, wantErr: true},
		{name: "accented ticket at length limit", mutate: func(r *domain.Requirement) { r.TicketKey = strings.Repeat("ñ", 250) }},
		{name: "ticket too long", mutate: func(r *domain.Requirement) { r.TicketKey = strings.Repeat("a", 251) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequirement()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDeveloperValidateCountsCharacters(t *testing.T) {
	dev := domain.Developer{
		Name:  strings.Repeat("é", 100),
		Email: "jose@example.com",
		Role:  domain.RoleDevJunior,
	}
	assert.NoError(t, dev.Validate())

	dev.Name += "é"
	assert.ErrorIs(t, dev.Validate(), domain.ErrValidation)
}
