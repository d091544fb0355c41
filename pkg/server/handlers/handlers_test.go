package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aegis-hq/minerva/pkg/harmonize"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/risk"
	"aegis-hq/minerva/pkg/rules"
	"aegis-hq/minerva/pkg/telemetry/health"
)

func newTestHandlers(t *testing.T) (*Handlers, *history.MemoryStore) {
	t.Helper()

	logger := slog.Default()

	registry := rules.New(logger)
	err := registry.AddRule(&rules.Rule{
		ID:       "input-present",
		Name:     "Input Present",
		Category: rules.CategorySecurity,
		Enabled:  true,
		Validator: func(ec *rules.Context) rules.RuleOutcome {
			if len(ec.Input) == 0 {
				return rules.RuleOutcome{
					Outcome:    rules.StrictFail,
					Message:    "input is empty",
					Confidence: 1.0,
					Applicable: true,
				}
			}
			return rules.RuleOutcome{
				Outcome:    rules.StrictPass,
				Message:    "input present",
				Confidence: 1.0,
				Applicable: true,
			}
		},
	})
	if err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}

	store := history.NewMemoryStore()
	scorer := risk.NewScorer(store, nil, logger)
	harmonizer := harmonize.New(logger)
	checker := health.New(time.Second)

	h := New(registry, scorer, harmonizer, store, nil, nil, checker, logger)
	return h, store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeFields(t *testing.T, rec *httptest.ResponseRecorder) []FieldError {
	t.Helper()

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error.Fields
}

func TestEvaluateReturnsResult(t *testing.T) {
	h, store := newTestHandlers(t)

	rec := postJSON(t, h.Evaluate, "/v1/decisions/evaluate", `{
		"enterpriseId": "ent-1",
		"input": {"toolName": "summarizer", "prompt": "hello"}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result rules.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Overall != rules.StrictPass {
		t.Errorf("expected overall %s, got %s", rules.StrictPass, result.Overall)
	}
	if len(result.Rules) != 1 {
		t.Errorf("expected 1 rule result, got %d", len(result.Rules))
	}

	// The decision must land in the history store keyed by input.toolName,
	// or later approval-rate lookups for the tool come back empty.
	approved, total, err := store.ApprovalStats(context.Background(), "summarizer", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ApprovalStats failed: %v", err)
	}
	if approved != 1 || total != 1 {
		t.Errorf("expected 1/1 approval stats for summarizer, got %d/%d", approved, total)
	}
}

func TestEvaluateFailureStillReturns200(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Evaluate, "/v1/decisions/evaluate", `{"input": {}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result rules.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Overall != rules.StrictFail {
		t.Errorf("expected overall %s, got %s", rules.StrictFail, result.Overall)
	}
}

func TestEvaluateAcceptsMissingInput(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Evaluate, "/v1/decisions/evaluate", `{"enterpriseId": "ent-1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for input-less context, got %d: %s", rec.Code, rec.Body.String())
	}

	var result rules.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	// The security rule is inapplicable without input, so nothing fails.
	if result.Overall != rules.StrictPass {
		t.Errorf("expected overall %s, got %s", rules.StrictPass, result.Overall)
	}
	if len(result.Rules) != 0 {
		t.Errorf("expected no applicable rules, got %d", len(result.Rules))
	}
}

func TestEvaluateRejectsInvalidJSON(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Evaluate, "/v1/decisions/evaluate", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error.Code != "invalid_json" {
		t.Errorf("expected code invalid_json, got %q", body.Error.Code)
	}
}

func TestRiskReturnsScore(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Risk, "/v1/decisions/risk", `{
		"atoms": [
			{"timestamp": "2026-08-31T10:00:00Z", "event_type": "policy_violation", "severity": "violation"},
			{"timestamp": "2026-08-31T10:05:00Z", "event_type": "tool_invocation", "severity": "info"}
		],
		"options": {"region": "EU", "toolId": "summarizer"}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var score risk.Score
	if err := json.Unmarshal(rec.Body.Bytes(), &score); err != nil {
		t.Fatalf("failed to decode score: %v", err)
	}
	if score.RiskLevel == "" {
		t.Error("expected a risk level")
	}
	if score.Total < 0 || score.Total > 100 {
		t.Errorf("total %d out of range", score.Total)
	}
}

func TestRiskEmptyBatchIsValid(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Risk, "/v1/decisions/risk", `{"atoms": []}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty batch, got %d", rec.Code)
	}
}

func TestRiskValidatesAtoms(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Risk, "/v1/decisions/risk", `{
		"atoms": [
			{"severity": "info"},
			{"timestamp": "2026-08-31T10:00:00Z", "event_type": "tool_invocation", "severity": "catastrophic"}
		]
	}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	fields := decodeFields(t, rec)
	want := []string{"atoms[0].timestamp", "atoms[0].event_type", "atoms[1].severity"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d field errors, got %+v", len(want), fields)
	}
	for i, field := range want {
		if fields[i].Field != field {
			t.Errorf("field error %d: got %q, want %q", i, fields[i].Field, field)
		}
	}
}

func TestHarmonizeReturnsResult(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Harmonize, "/v1/decisions/harmonize", `{
		"rulesA": [{
			"id": "jur-a", "type": "jurisdiction",
			"condition": {"allowed": ["EU", "US"]},
			"action": "allow", "severity": "error", "priority": 10
		}],
		"rulesB": [{
			"id": "jur-b", "type": "jurisdiction",
			"condition": {"allowed": ["EU"], "denied": ["US"]},
			"action": "allow", "severity": "error", "priority": 20
		}],
		"strategy": "strict"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result harmonize.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Metadata.Strategy != harmonize.StrategyStrict {
		t.Errorf("expected strict strategy in metadata, got %s", result.Metadata.Strategy)
	}
	if len(result.Conflicts) != 1 {
		t.Errorf("expected 1 conflict, got %d", len(result.Conflicts))
	}
}

func TestHarmonizeValidatesRequest(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.Harmonize, "/v1/decisions/harmonize", `{
		"rulesA": [{"type": "jurisdiction"}],
		"rulesB": [{"id": "b-1"}],
		"strategy": "aggressive"
	}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	fields := decodeFields(t, rec)
	want := map[string]bool{
		"strategy":       false,
		"rulesA[0].id":   false,
		"rulesB[0].type": false,
	}
	for _, f := range fields {
		if _, ok := want[f.Field]; !ok {
			t.Errorf("unexpected field error %q", f.Field)
			continue
		}
		want[f.Field] = true
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("missing field error for %q", field)
		}
	}
}

func TestHealthAlwaysOK(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyReportsDegraded(t *testing.T) {
	logger := slog.Default()
	checker := health.New(time.Second)
	checker.RegisterCheck("history", func(ctx context.Context) error {
		return errors.New("history store unreachable")
	})

	h := New(rules.New(logger), risk.NewScorer(nil, nil, logger), harmonize.New(logger), nil, nil, nil, checker, logger)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var status health.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("expected degraded status, got %q", status.Status)
	}
}
