// Package metrics derives per-requirement figures and folds them into
// developer reports and the team summary matrix. Everything here is pure.
package metrics

import (
	"strconv"
	"time"

	"qadashboard/internal/domain"

	"github.com/shopspring/decimal"
)

// WorkdayHours is the fixed length of a working day used to turn calendar days
// into effort hours.
const WorkdayHours = 9

const secondsPerDay = 24 * 60 * 60

var hundred = decimal.NewFromInt(100)

// Derived holds the read-only values computed from a requirement's stored
// fields.
type Derived struct {
	UnitTestsFailed     int
	UnitTestSuccessRate decimal.Decimal
	RealEffortDays      int
	RealEffortHours     decimal.Decimal
	HoursDiff           decimal.Decimal
	DeviationPercentage decimal.Decimal
	ExtraHoursUsed      decimal.Decimal
}

func Derive(r domain.Requirement) Derived {
	days := RealEffortDays(r.RealStart, r.RealEnd)
	realHours := RealEffortHours(days)
	diff := HoursDiff(r.EstimatedEffortHours, realHours)

	return Derived{
		UnitTestsFailed:     UnitTestsFailed(r.UnitTestsTotal, r.UnitTestsPassed),
		UnitTestSuccessRate: UnitTestSuccessRate(r.UnitTestsTotal, r.UnitTestsPassed),
		RealEffortDays:      days,
		RealEffortHours:     realHours,
		HoursDiff:           diff,
		DeviationPercentage: DeviationPercentage(diff, r.EstimatedEffortHours),
		ExtraHoursUsed:      ExtraHoursUsed(diff),
	}
}

func UnitTestsFailed(total, passed int) int {
	if total <= 0 || passed >= total {
		return 0
	}
	return total - passed
}

// UnitTestSuccessRate is passed/total as a percentage with 2 decimals.
func UnitTestSuccessRate(total, passed int) decimal.Decimal {
	return countPercentage(passed, total, 2)
}

// RealEffortDays counts calendar days from start to end, both included. Missing
// or inverted dates yield zero.
func RealEffortDays(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	from, to := civilDate(*start), civilDate(*end)
	if to.Before(from) {
		return 0
	}
	return int((to.Unix()-from.Unix())/secondsPerDay) + 1
}

func RealEffortHours(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days * WorkdayHours))
}

// HoursDiff is positive when the work finished under the estimate.
func HoursDiff(estimated, real decimal.Decimal) decimal.Decimal {
	return estimated.Sub(real)
}

func DeviationPercentage(diff, estimated decimal.Decimal) decimal.Decimal {
	return percentage(diff, estimated, 2)
}

func ExtraHoursUsed(diff decimal.Decimal) decimal.Decimal {
	if diff.IsNegative() {
		return diff.Abs()
	}
	return decimal.Zero
}

// percentage returns num/den*100 rounded half-to-even, or zero for a zero
// denominator.
func percentage(num, den decimal.Decimal, places int32) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Mul(hundred).Div(den).RoundBank(places)
}

// countPercentage returns num/den*100 computed in float64 and rounded from
// its exact binary value (23/80 gives 28.7, not 28.8), or zero for a zero
// denominator.
func countPercentage(num, den int, places int) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	pct := float64(num) / float64(den) * 100
	return decimal.RequireFromString(strconv.FormatFloat(pct, 'f', places, 64))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
