package seed_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"qadashboard/internal/config"
	"qadashboard/internal/domain"
	"qadashboard/internal/seed"
	"qadashboard/internal/service"
	"qadashboard/internal/storage/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fixtures = `
developers:
  - name: Ana
    email: ana@example.com
    role: QA_Senior
    requirements:
      - jira_ticket: QA-1
        description: Login flow
        unit_tests_total: 10
        unit_tests_passed: 7
        estimated_effort_hours: 40
        start_date_real: "2024-01-01"
        end_date_real: "2024-01-03"
        functional_bugs: 2
        integration_bugs: 1
        production_bugs: 1
      - jira_ticket: QA-2
        estimated_effort_hours: "12.5"
  - name: Bruno
    email: bruno@example.com
`

func newService(t *testing.T) service.Service {
	t.Helper()

	store, err := sqlite.New(context.Background(), config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	return service.New(store, service.WithClock(func() time.Time { return now }))
}

func TestLoadAndApply(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	f, err := seed.Load(strings.NewReader(fixtures))
	require.NoError(t, err)
	require.Len(t, f.Developers, 2)

	res, err := seed.Apply(ctx, svc, f, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, seed.Result{DevelopersCreated: 2, RequirementsCreated: 2}, res)

	devs, err := svc.ListDevelopers(ctx)
	require.NoError(t, err)
	require.Len(t, devs, 2)
	assert.Equal(t, domain.RoleQASenior, devs[0].Role)
	assert.Equal(t, domain.RoleDevJunior, devs[1].Role)

	report, err := svc.DeveloperReport(ctx, devs[0].ID, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalRequirements)
	assert.True(t, report.DDEScore.Equal(decimal.NewFromInt(75)))
	assert.True(t, report.Requirements[1].EstimatedEffortHours.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 3, report.Requirements[0].RealEffortDays)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	f, err := seed.Load(strings.NewReader(fixtures))
	require.NoError(t, err)

	_, err = seed.Apply(ctx, svc, f, zaptest.NewLogger(t))
	require.NoError(t, err)

	res, err := seed.Apply(ctx, svc, f, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, seed.Result{DevelopersExisting: 2, RequirementsSkipped: 2}, res)
}

func TestApplyRejectsInvalidFixtures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown role",
			doc: `
developers:
  - name: Ana
    email: ana@example.com
    role: CTO
`,
		},
		{
			name: "passed exceeds total",
			doc: `
developers:
  - name: Ana
    email: ana@example.com
    requirements:
      - jira_ticket: QA-1
        unit_tests_total: 1
        unit_tests_passed: 2
`,
		},
		{
			name: "malformed date",
			doc: `
developers:
  - name: Ana
    email: ana@example.com
    requirements:
      - jira_ticket: QA-1
        start_date_real: "01/02/2024"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := seed.Load(strings.NewReader(tt.doc))
			require.NoError(t, err)

			_, err = seed.Apply(context.Background(), newService(t), f, zaptest.NewLogger(t))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := seed.Load(strings.NewReader("developers:\n  - nombre: Ana\n"))
	assert.Error(t, err)
}

func TestLoadEmptyDocument(t *testing.T) {
	f, err := seed.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Developers)
}
