package metrics

import (
	"sort"

	"qadashboard/internal/domain"

	"github.com/shopspring/decimal"
)

type CategoryStats struct {
	Total int
	Bugs  int
	Pct   decimal.Decimal
}

func (c *CategoryStats) add(total, bugs int) {
	c.Total += total
	c.Bugs += bugs
}

// SummaryRow is one developer's line of the team quality matrix.
type SummaryRow struct {
	DeveloperID       int64
	Name              string
	TotalRequirements int

	Functional  CategoryStats
	Integration CategoryStats
	Regression  CategoryStats
	Unit        CategoryStats
}

func BuildSummaryRow(dev domain.Developer, reqs []domain.Requirement) SummaryRow {
	row := SummaryRow{
		DeveloperID:       dev.ID,
		Name:              dev.Name,
		TotalRequirements: len(reqs),
	}

	for _, req := range reqs {
		row.Functional.add(req.FunctionalCases, req.FunctionalBugs)
		row.Integration.add(req.IntegrationCases, req.IntegrationBugs)
		row.Regression.add(req.RegressionCases, req.RegressionBugs)
		row.Unit.add(req.UnitTestsTotal, UnitTestsFailed(req.UnitTestsTotal, req.UnitTestsPassed))
	}

	for _, c := range []*CategoryStats{&row.Functional, &row.Integration, &row.Regression, &row.Unit} {
		c.Pct = SuccessPct(c.Total, c.Bugs)
	}
	return row
}

// BuildTeamSummary returns one row per developer ordered by name, then ID.
// Developers without requirements still get an all-zero row.
func BuildTeamSummary(devs []domain.Developer, reqsByDeveloper map[int64][]domain.Requirement) []SummaryRow {
	ordered := append([]domain.Developer(nil), devs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ID < ordered[j].ID
	})

	rows := make([]SummaryRow, 0, len(ordered))
	for _, dev := range ordered {
		rows = append(rows, BuildSummaryRow(dev, reqsByDeveloper[dev.ID]))
	}
	return rows
}

// SuccessPct is the share of cases without bugs with 1 decimal, zero when no
// cases were run.
func SuccessPct(total, bugs int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return countPercentage(total-bugs, total, 1)
}
