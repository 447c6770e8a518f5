package metrics

import (
	"sort"

	"qadashboard/internal/domain"

	"github.com/shopspring/decimal"
)

// RequirementMetrics pairs a stored requirement with its derived values.
type RequirementMetrics struct {
	domain.Requirement
	Derived
}

type DeveloperReport struct {
	DeveloperID       int64
	TotalRequirements int

	UnitTestsTotal  int
	UnitTestsPassed int
	UnitTestsFailed int

	QABugs         int
	ProductionBugs int
	Rejections     int
	DDEScore       decimal.Decimal

	EstimatedHours    decimal.Decimal
	RealHours         decimal.Decimal
	HoursDeviation    decimal.Decimal
	TimeEfficiencyPct decimal.Decimal

	Requirements []RequirementMetrics
}

// BuildDeveloperReport folds reqs, already filtered to the requested period,
// into a single report for dev. Requirements are listed by ID.
func BuildDeveloperReport(dev domain.Developer, reqs []domain.Requirement) DeveloperReport {
	ordered := append([]domain.Requirement(nil), reqs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	report := DeveloperReport{
		DeveloperID:    dev.ID,
		EstimatedHours: decimal.Zero,
		RealHours:      decimal.Zero,
		Requirements:   make([]RequirementMetrics, 0, len(ordered)),
	}

	for _, req := range ordered {
		derived := Derive(req)

		report.TotalRequirements++
		report.UnitTestsTotal += req.UnitTestsTotal
		report.UnitTestsPassed += req.UnitTestsPassed
		report.QABugs += req.FunctionalBugs + req.IntegrationBugs + req.RegressionBugs
		report.ProductionBugs += req.ProductionBugs
		report.Rejections += req.RejectionCount
		report.EstimatedHours = report.EstimatedHours.Add(req.EstimatedEffortHours)
		report.RealHours = report.RealHours.Add(derived.RealEffortHours)

		report.Requirements = append(report.Requirements, RequirementMetrics{
			Requirement: req,
			Derived:     derived,
		})
	}

	report.UnitTestsFailed = report.UnitTestsTotal - report.UnitTestsPassed
	report.DDEScore = DDEScore(report.QABugs, report.ProductionBugs, report.TotalRequirements)
	report.HoursDeviation = report.EstimatedHours.Sub(report.RealHours)
	report.TimeEfficiencyPct = percentage(report.HoursDeviation, report.EstimatedHours, 1)

	return report
}

// DDEScore is the share of defects caught before production. A developer with
// requirements but no defects at all scores 100.
func DDEScore(qaBugs, prodBugs, requirements int) decimal.Decimal {
	issues := qaBugs + prodBugs
	switch {
	case issues > 0:
		return countPercentage(qaBugs, issues, 1)
	case requirements > 0:
		return hundred
	default:
		return decimal.Zero
	}
}
