package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ems/internal/app/server"
	"ems/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	frontend := t.TempDir()
	if err := os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<!doctype html><title>EMS</title>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return config.Config{
		Addr:                 ":0",
		Environment:          "test",
		FrontendDir:          frontend,
		StorageBackend:       config.BackendMemory,
		SessionBackend:       config.BackendMemory,
		JWTSecret:            "test-secret",
		SessionTTL:           time.Hour,
		RunSeed:              true,
		SeedDemoPassword:     "demo123",
		MaxBodyBytes:         1048576,
		RateLimitPerMinute:   1000,
		SessionPurgeSchedule: "@every 1h",
		LeaveAnnualAllowance: 20,
		MetricsEnabled:       true,
	}
}

func startApp(t *testing.T, cfg config.Config) (*httptest.Server, *http.Client) {
	t.Helper()
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)

	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return ts, client
}

func TestEmployeeJourney(t *testing.T) {
	ts, client := startApp(t, testConfig(t))

	token := login(t, client, ts.URL, "john.smith@company.com", "demo123", "employee")

	var tasks []map[string]any
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/tasks", token, http.StatusOK), &tasks)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 seeded tasks, got %d", len(tasks))
	}

	created := postJSONStatus(t, client, ts.URL+"/api/v1/leaves", token, map[string]any{
		"type":     "emergency",
		"fromDate": "2024-03-04",
		"toDate":   "2024-03-05",
		"reason":   "Family emergency",
	}, http.StatusCreated)
	var leave map[string]any
	decodeData(t, created, &leave)
	if leave["days"] != float64(2) || leave["status"] != "pending" {
		t.Fatalf("unexpected leave %+v", leave)
	}

	retry := postJSONWithKey(t, client, ts.URL+"/api/v1/leaves", token, "apply-emergency", map[string]any{
		"type":     "emergency",
		"fromDate": "2024-03-04",
		"toDate":   "2024-03-05",
		"reason":   "Family emergency",
	}, http.StatusCreated)
	var replayed map[string]any
	decodeData(t, retry, &replayed)
	again := postJSONWithKey(t, client, ts.URL+"/api/v1/leaves", token, "apply-emergency", map[string]any{
		"type":     "emergency",
		"fromDate": "2024-03-04",
		"toDate":   "2024-03-05",
		"reason":   "Family emergency",
	}, http.StatusCreated)
	var replayedAgain map[string]any
	decodeData(t, again, &replayedAgain)
	if replayed["id"] != replayedAgain["id"] {
		t.Fatalf("idempotent retry created a second leave: %v vs %v", replayed["id"], replayedAgain["id"])
	}

	var balance map[string]float64
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/leaves/balance", token, http.StatusOK), &balance)
	if balance["used"] != 8 || balance["pending"] != 5 || balance["remaining"] != 12 {
		t.Fatalf("unexpected balance %+v", balance)
	}

	forbidden := postJSONStatus(t, client, ts.URL+"/api/v1/leaves/"+leave["id"].(string)+"/approve", token, nil, http.StatusForbidden)
	if redirect := envelopeRedirect(forbidden); redirect != "/dashboard/employee" {
		t.Fatalf("expected redirect to employee dashboard, got %q", redirect)
	}

	var summary map[string]any
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/dashboard", token, http.StatusOK), &summary)
	if summary["role"] != "employee" {
		t.Fatalf("unexpected dashboard role %v", summary["role"])
	}

	var menu struct {
		Entries []map[string]any `json:"entries"`
	}
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/navigation/menu", token, http.StatusOK), &menu)
	if len(menu.Entries) == 0 || menu.Entries[0]["path"] != "/" {
		t.Fatalf("unexpected menu %+v", menu.Entries)
	}

	postJSONStatus(t, client, ts.URL+"/api/v1/auth/logout", token, nil, http.StatusOK)
	getJSONStatus(t, client, ts.URL+"/api/v1/tasks", token, http.StatusUnauthorized)
}

func TestHRReviewsLeaveAndTicket(t *testing.T) {
	ts, client := startApp(t, testConfig(t))

	employee := login(t, client, ts.URL, "john.smith@company.com", "demo123", "employee")
	hr := login(t, client, ts.URL, "sarah.johnson@company.com", "demo123", "hr")

	var pending []map[string]any
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/leaves/all?status=pending", hr, http.StatusOK), &pending)
	if len(pending) != 1 {
		t.Fatalf("expected one pending leave, got %d", len(pending))
	}
	var decided map[string]any
	decodeData(t, postJSONStatus(t, client, ts.URL+"/api/v1/leaves/"+pending[0]["id"].(string)+"/reject", hr, nil, http.StatusOK), &decided)
	if decided["status"] != "rejected" || decided["decidedBy"] != "sarah.johnson@company.com" {
		t.Fatalf("unexpected decision %+v", decided)
	}

	var ticket map[string]any
	decodeData(t, postJSONStatus(t, client, ts.URL+"/api/v1/tickets", employee, map[string]any{
		"title":       "Badge not working",
		"description": "Door reader rejects my badge",
		"category":    "workplace",
		"urgency":     "critical",
	}, http.StatusCreated), &ticket)

	var stats map[string]float64
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/tickets/stats", employee, http.StatusOK), &stats)
	if stats["total"] != 4 || stats["criticalOpen"] != 1 {
		t.Fatalf("unexpected ticket stats %+v", stats)
	}

	postJSONStatus(t, client, ts.URL+"/api/v1/tickets/"+ticket["id"].(string)+"/resolve", hr, map[string]any{
		"response": "Badge re-encoded at reception",
	}, http.StatusOK)
	postJSONStatus(t, client, ts.URL+"/api/v1/tickets/"+ticket["id"].(string)+"/review", hr, nil, http.StatusConflict)

	var summary map[string]any
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/dashboard", hr, http.StatusOK), &summary)
	if summary["employees"] != float64(1) {
		t.Fatalf("unexpected hr dashboard %+v", summary)
	}

	admin := login(t, client, ts.URL, "admin@company.com", "demo123", "admin")
	var events []map[string]any
	decodeData(t, getJSONStatus(t, client, ts.URL+"/api/v1/audit/events?actor=sarah.johnson@company.com", admin, http.StatusOK), &events)
	actions := map[string]bool{}
	for _, evt := range events {
		actions[evt["action"].(string)] = true
	}
	for _, want := range []string{"auth.login", "leave.reject", "ticket.resolve"} {
		if !actions[want] {
			t.Fatalf("expected audit action %s in %v", want, actions)
		}
	}
	getJSONStatus(t, client, ts.URL+"/api/v1/audit/events", hr, http.StatusForbidden)
}

func TestLoginValidationAndRedirects(t *testing.T) {
	ts, client := startApp(t, testConfig(t))

	resp := postJSONStatus(t, client, ts.URL+"/api/v1/auth/login", "", map[string]any{
		"email":    "john.smith@company.com",
		"password": "",
		"role":     "employee",
	}, http.StatusBadRequest)
	if code := envelopeErrorCode(resp); code != "missing_fields" {
		t.Fatalf("expected missing_fields, got %q", code)
	}

	postJSONStatus(t, client, ts.URL+"/api/v1/auth/login", "", map[string]any{
		"email":    "john.smith@company.com",
		"password": "demo123",
		"role":     "admin",
	}, http.StatusUnauthorized)

	resp = postJSONStatus(t, client, ts.URL+"/api/v1/auth/login", "", map[string]any{
		"email":    "john.smith@company.com",
		"password": "demo123",
		"role":     "manager",
	}, http.StatusBadRequest)
	if code := envelopeErrorCode(resp); code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", code)
	}

	if loc := pageRedirect(t, client, ts.URL+"/dashboard/admin", ""); loc != "/login" {
		t.Fatalf("anonymous admin dashboard redirected to %q", loc)
	}

	hr := login(t, client, ts.URL, "sarah.johnson@company.com", "demo123", "hr")
	if loc := pageRedirect(t, client, ts.URL+"/dashboard/admin", hr); loc != "/dashboard/hr" {
		t.Fatalf("hr admin dashboard redirected to %q", loc)
	}
	if loc := pageRedirect(t, client, ts.URL+"/leave-management", hr); loc != "" {
		t.Fatalf("hr leave management redirected to %q", loc)
	}

	getJSONStatus(t, client, ts.URL+"/metrics", hr, http.StatusForbidden)
	admin := login(t, client, ts.URL, "admin@company.com", "demo123", "admin")
	var snapshot map[string]any
	decodeData(t, getJSONStatus(t, client, ts.URL+"/metrics", admin, http.StatusOK), &snapshot)
	if snapshot["loginsTotal"] != float64(2) || snapshot["loginFailuresTotal"] != float64(1) {
		t.Fatalf("unexpected metrics %+v", snapshot)
	}
}

func TestPostgresBackendJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(t)
	cfg.DatabaseURL = dbURL
	cfg.StorageBackend = config.BackendPostgres
	cfg.SessionBackend = config.BackendPostgres
	cfg.RunMigrations = true
	ts, client := startApp(t, cfg)

	token := login(t, client, ts.URL, "john.smith@company.com", "demo123", "employee")
	var task map[string]any
	decodeData(t, postJSONStatus(t, client, ts.URL+"/api/v1/tasks", token, map[string]any{
		"title":   "Postgres journey",
		"dueDate": "2024-05-01",
	}, http.StatusCreated), &task)
	getJSONStatus(t, client, ts.URL+"/api/v1/tasks/"+task["id"].(string), token, http.StatusOK)
	postJSONStatus(t, client, ts.URL+"/api/v1/auth/logout", token, nil, http.StatusOK)
	getJSONStatus(t, client, ts.URL+"/api/v1/tasks", token, http.StatusUnauthorized)
}

func login(t *testing.T, client *http.Client, baseURL, email, password, role string) string {
	t.Helper()
	resp := postJSONStatus(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
		"role":     role,
	}, http.StatusOK)
	var payload map[string]any
	decodeData(t, resp, &payload)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(t, client, req, token, want)
}

func postJSONWithKey(t *testing.T, client *http.Client, url, token, key string, body any, want int) envelope {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	return doJSON(t, client, req, token, want)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return doJSON(t, client, req, token, want)
}

func doJSON(t *testing.T, client *http.Client, req *http.Request, token string, want int) envelope {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", req.Method, req.URL.Path, want, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, raw)
	}
	return env
}

// pageRedirect returns the Location of a page redirect, or "" when the page is served.
func pageRedirect(t *testing.T, client *http.Client, url, token string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusSeeOther:
		return resp.Header.Get("Location")
	case http.StatusOK:
		return ""
	default:
		t.Fatalf("GET %s: unexpected status %d", url, resp.StatusCode)
		return ""
	}
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func envelopeErrorCode(env envelope) string {
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errMap["code"].(string)
	return code
}

func envelopeRedirect(env envelope) string {
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		return ""
	}
	details, _ := errMap["details"].(map[string]any)
	redirect, _ := details["redirectTo"].(string)
	return redirect
}
