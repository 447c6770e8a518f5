package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"qadashboard/internal/admin"
	"qadashboard/internal/service"
	"qadashboard/internal/storage/postgres"
	"qadashboard/internal/storage/postgres/postgrestest"
	httptransport "qadashboard/internal/transport/http"

	"go.uber.org/zap/zaptest"
)

const (
	adminUser     = "operator"
	adminPassword = "correct horse"
)

func TestE2EFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := server.Client()

	t.Run("health", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/health")
		if err != nil {
			t.Fatalf("health request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("health status: %d", resp.StatusCode)
		}
	})

	t.Run("admin requires credentials", func(t *testing.T) {
		body := map[string]string{"name": "Mallory", "email": "mallory@example.com"}
		resp := doRequest(t, client, http.MethodPost, server.URL+"/admin/developers", body, false)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		if resp.Header.Get("WWW-Authenticate") == "" {
			t.Fatalf("missing WWW-Authenticate header")
		}
	})

	t.Run("report lifecycle", func(t *testing.T) {
		ana := createDeveloper(t, client, server.URL, "Ana", "ana@example.com", "QA_Senior")
		createDeveloper(t, client, server.URL, "Bruno", "bruno@example.com", "")

		createRequirement(t, client, server.URL, map[string]any{
			"developer_id":           ana.ID,
			"jira_ticket":            "QA-1",
			"unit_tests_total":       10,
			"unit_tests_passed":      7,
			"estimated_effort_hours": "40",
			"start_date_real":        "2024-01-01",
			"end_date_real":          "2024-01-06",
			"functional_cases":       4,
			"functional_bugs":        2,
			"integration_bugs":       1,
			"production_bugs":        1,
		})
		createRequirement(t, client, server.URL, map[string]any{
			"developer_id": ana.ID,
			"jira_ticket":  "QA-2",
		})

		report := getReport(t, client, fmt.Sprintf("%s/reports/%d", server.URL, ana.ID))
		if report.TotalRequirements != 2 {
			t.Fatalf("expected 2 requirements, got %d", report.TotalRequirements)
		}
		if report.UnitTestsFailed != 3 {
			t.Fatalf("expected 3 failed unit tests, got %d", report.UnitTestsFailed)
		}
		if report.DDEScore.String() != "75" {
			t.Fatalf("expected dde 75, got %s", report.DDEScore)
		}
		if len(report.Requirements) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(report.Requirements))
		}

		first := report.Requirements[0]
		if first.RealEffortHours.String() != "54" || first.DeviationHours.String() != "-14" {
			t.Fatalf("unexpected effort: real=%s diff=%s", first.RealEffortHours, first.DeviationHours)
		}
		if first.DeviationPercentage.String() != "-35" || first.ExtraHoursUsed.String() != "14" {
			t.Fatalf("unexpected deviation: pct=%s extra=%s", first.DeviationPercentage, first.ExtraHoursUsed)
		}
		if first.EstimatedEffortHours.String() != "40.00" {
			t.Fatalf("unexpected estimate: %s", first.EstimatedEffortHours)
		}

		future := getReport(t, client, fmt.Sprintf("%s/reports/%d?start_date=2999-01-01", server.URL, ana.ID))
		if future.TotalRequirements != 0 {
			t.Fatalf("expected empty filtered report, got %d", future.TotalRequirements)
		}

		rows := getSummary(t, client, server.URL)
		if len(rows) != 2 || rows[0].Name != "Ana" || rows[1].Name != "Bruno" {
			t.Fatalf("unexpected summary rows: %+v", rows)
		}
		if rows[0].FunctionalPct.String() != "50" {
			t.Fatalf("expected functional pct 50, got %s", rows[0].FunctionalPct)
		}
		if rows[1].TotalReqs != 0 || rows[1].UnitPct.String() != "0" {
			t.Fatalf("expected empty row for Bruno, got %+v", rows[1])
		}
	})

	t.Run("unknown developer", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/reports/424242")
		if err != nil {
			t.Fatalf("get report: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("duplicate ticket", func(t *testing.T) {
		dev := createDeveloper(t, client, server.URL, "Carla", "carla@example.com", "DBA")
		body := map[string]any{"developer_id": dev.ID, "jira_ticket": "QA-DUP"}
		createRequirement(t, client, server.URL, body)

		resp := doRequest(t, client, http.MethodPost, server.URL+"/admin/requirements", body, true)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})
}

// Helpers

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()

	store, err := postgres.New(ctx, postgrestest.Start(t))
	if err != nil {
		t.Fatalf("failed to create postgres store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	manager := admin.NewManager(store)
	if _, err := manager.Ensure(ctx, admin.Credentials{Username: adminUser, Password: adminPassword}); err != nil {
		t.Fatalf("failed to bootstrap admin: %v", err)
	}

	handler := httptransport.NewHandler(service.New(store), manager, zaptest.NewLogger(t))

	return httptest.NewServer(handler.Router())
}

type developerPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

func createDeveloper(t *testing.T, client *http.Client, baseURL, name, email, role string) developerPayload {
	t.Helper()

	body := map[string]string{"name": name, "email": email, "role": role}
	resp := doRequest(t, client, http.MethodPost, baseURL+"/admin/developers", body, true)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create developer status: %d", resp.StatusCode)
	}

	var response struct {
		Developer developerPayload `json:"developer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("decode developer: %v", err)
	}
	return response.Developer
}

func createRequirement(t *testing.T, client *http.Client, baseURL string, body map[string]any) {
	t.Helper()

	resp := doRequest(t, client, http.MethodPost, baseURL+"/admin/requirements", body, true)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create requirement status: %d", resp.StatusCode)
	}
}

type requirementRow struct {
	TicketKey            string      `json:"jira_ticket"`
	EstimatedEffortHours json.Number `json:"estimated_effort_hours"`
	RealEffortHours      json.Number `json:"real_effort_hours"`
	DeviationHours       json.Number `json:"deviation_hours"`
	DeviationPercentage  json.Number `json:"deviation_percentage"`
	ExtraHoursUsed       json.Number `json:"extra_hours_used"`
}

type reportResponse struct {
	TotalRequirements int              `json:"total_requerimientos"`
	UnitTestsFailed   int              `json:"unitarias_fallidas"`
	DDEScore          json.Number      `json:"dde_score"`
	Requirements      []requirementRow `json:"requerimientos_lista"`
}

func getReport(t *testing.T, client *http.Client, url string) reportResponse {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get report status: %d", resp.StatusCode)
	}

	var report reportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	return report
}

type summaryRow struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	TotalReqs     int         `json:"total_reqs"`
	FunctionalPct json.Number `json:"functional_pct"`
	UnitPct       json.Number `json:"unit_pct"`
}

func getSummary(t *testing.T, client *http.Client, baseURL string) []summaryRow {
	t.Helper()

	resp, err := client.Get(baseURL + "/summary")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get summary status: %d", resp.StatusCode)
	}

	var rows []summaryRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return rows
}

func doRequest(t *testing.T, client *http.Client, method, url string, payload any, auth bool) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.SetBasicAuth(adminUser, adminPassword)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}

	return resp
}
