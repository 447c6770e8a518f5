package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"qadashboard/internal/domain"
	"qadashboard/internal/metrics"

	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type developerPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_display_label"`
	Email     string `json:"email"`
}

type requirementPayload struct {
	ID                   int64       `json:"id"`
	DeveloperID          int64       `json:"developer_id"`
	TicketKey            string      `json:"jira_ticket"`
	Description          string      `json:"description"`
	DateCompleted        string      `json:"date_completed"`
	UnitTestsTotal       int         `json:"unit_tests_total"`
	UnitTestsPassed      int         `json:"unit_tests_passed"`
	UnitTestsFailed      int         `json:"unit_tests_failed"`
	UnitTestSuccessRate  json.Number `json:"unit_test_success_rate"`
	FunctionalCases      int         `json:"functional_cases"`
	FunctionalBugs       int         `json:"functional_bugs"`
	IntegrationCases     int         `json:"integration_cases"`
	IntegrationBugs      int         `json:"integration_bugs"`
	RegressionCases      int         `json:"regression_cases"`
	RegressionBugs       int         `json:"regression_bugs"`
	ProductionBugs       int         `json:"production_bugs"`
	RejectionCount       int         `json:"rejection_count"`
	EstimatedEffortHours json.Number `json:"estimated_effort_hours"`
	StartDateReal        *string     `json:"start_date_real"`
	EndDateReal          *string     `json:"end_date_real"`
	RealEffortDays       int         `json:"real_effort_days"`
	RealEffortHours      json.Number `json:"real_effort_hours"`
	DeviationHours       json.Number `json:"deviation_hours"`
	DeviationPercentage  json.Number `json:"deviation_percentage"`
	ExtraHoursUsed       json.Number `json:"extra_hours_used"`
	QAApproved           bool        `json:"is_qa_approved"`
	StatusDisplay        string      `json:"status_display"`
}

type reportPayload struct {
	DeveloperID         int64                `json:"developer_id"`
	TotalRequirements   int                  `json:"total_requerimientos"`
	UnitTestsTotal      int                  `json:"unitarias_total"`
	UnitTestsPassed     int                  `json:"unitarias_pasadas"`
	UnitTestsFailed     int                  `json:"unitarias_fallidas"`
	QABugs              int                  `json:"total_bugs_qa"`
	ProductionBugs      int                  `json:"total_bugs_prod"`
	Rejections          int                  `json:"total_rechazos"`
	DDEScore            json.Number          `json:"dde_score"`
	TotalEstimatedHours json.Number          `json:"total_estimated_hours"`
	TotalRealHours      json.Number          `json:"total_real_hours"`
	HoursDeviation      json.Number          `json:"tiempo_desvio_total"`
	TimeEfficiencyPct   json.Number          `json:"tiempo_eficiencia_pct"`
	Requirements        []requirementPayload `json:"requerimientos_lista"`
}

type summaryRowPayload struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	TotalRequirements int         `json:"total_reqs"`
	FunctionalTotal   int         `json:"functional_total"`
	FunctionalBugs    int         `json:"functional_bugs"`
	FunctionalPct     json.Number `json:"functional_pct"`
	IntegrationTotal  int         `json:"integration_total"`
	IntegrationBugs   int         `json:"integration_bugs"`
	IntegrationPct    json.Number `json:"integration_pct"`
	RegressionTotal   int         `json:"regression_total"`
	RegressionBugs    int         `json:"regression_bugs"`
	RegressionPct     json.Number `json:"regression_pct"`
	UnitTotal         int         `json:"unit_total"`
	UnitBugs          int         `json:"unit_bugs"`
	UnitPct           json.Number `json:"unit_pct"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	})
}

func mapDeveloper(dev domain.Developer) developerPayload {
	return developerPayload{
		ID:        dev.ID,
		Name:      dev.Name,
		Role:      string(dev.Role),
		RoleLabel: dev.Role.Label(),
		Email:     dev.Email,
	}
}

func mapRequirement(req metrics.RequirementMetrics) requirementPayload {
	status := "REVISIÓN"
	if req.QAApproved {
		status = "APROBADO"
	}

	return requirementPayload{
		ID:                   req.ID,
		DeveloperID:          req.DeveloperID,
		TicketKey:            req.TicketKey,
		Description:          req.Description,
		DateCompleted:        req.CompletedOn.Format(domain.DateLayout),
		UnitTestsTotal:       req.UnitTestsTotal,
		UnitTestsPassed:      req.UnitTestsPassed,
		UnitTestsFailed:      req.UnitTestsFailed,
		UnitTestSuccessRate:  number(req.UnitTestSuccessRate),
		FunctionalCases:      req.FunctionalCases,
		FunctionalBugs:       req.FunctionalBugs,
		IntegrationCases:     req.IntegrationCases,
		IntegrationBugs:      req.IntegrationBugs,
		RegressionCases:      req.RegressionCases,
		RegressionBugs:       req.RegressionBugs,
		ProductionBugs:       req.ProductionBugs,
		RejectionCount:       req.RejectionCount,
		EstimatedEffortHours: json.Number(req.EstimatedEffortHours.StringFixed(2)),
		StartDateReal:        formatOptionalDate(req.RealStart),
		EndDateReal:          formatOptionalDate(req.RealEnd),
		RealEffortDays:       req.RealEffortDays,
		RealEffortHours:      number(req.RealEffortHours),
		DeviationHours:       number(req.HoursDiff),
		DeviationPercentage:  number(req.DeviationPercentage),
		ExtraHoursUsed:       number(req.ExtraHoursUsed),
		QAApproved:           req.QAApproved,
		StatusDisplay:        status,
	}
}

func mapReport(report metrics.DeveloperReport) reportPayload {
	reqs := make([]requirementPayload, 0, len(report.Requirements))
	for _, req := range report.Requirements {
		reqs = append(reqs, mapRequirement(req))
	}

	return reportPayload{
		DeveloperID:         report.DeveloperID,
		TotalRequirements:   report.TotalRequirements,
		UnitTestsTotal:      report.UnitTestsTotal,
		UnitTestsPassed:     report.UnitTestsPassed,
		UnitTestsFailed:     report.UnitTestsFailed,
		QABugs:              report.QABugs,
		ProductionBugs:      report.ProductionBugs,
		Rejections:          report.Rejections,
		DDEScore:            number(report.DDEScore),
		TotalEstimatedHours: number(report.EstimatedHours),
		TotalRealHours:      number(report.RealHours),
		HoursDeviation:      number(report.HoursDeviation),
		TimeEfficiencyPct:   number(report.TimeEfficiencyPct),
		Requirements:        reqs,
	}
}

func mapSummaryRow(row metrics.SummaryRow) summaryRowPayload {
	return summaryRowPayload{
		ID:                row.DeveloperID,
		Name:              row.Name,
		TotalRequirements: row.TotalRequirements,
		FunctionalTotal:   row.Functional.Total,
		FunctionalBugs:    row.Functional.Bugs,
		FunctionalPct:     number(row.Functional.Pct),
		IntegrationTotal:  row.Integration.Total,
		IntegrationBugs:   row.Integration.Bugs,
		IntegrationPct:    number(row.Integration.Pct),
		RegressionTotal:   row.Regression.Total,
		RegressionBugs:    row.Regression.Bugs,
		RegressionPct:     number(row.Regression.Pct),
		UnitTotal:         row.Unit.Total,
		UnitBugs:          row.Unit.Bugs,
		UnitPct:           number(row.Unit.Pct),
	}
}

// number renders a decimal as an exact JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
