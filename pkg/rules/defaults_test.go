package rules

import (
	"log/slog"
	"strings"
	"testing"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewWithDefaults(slog.Default())
	if err != nil {
		t.Fatalf("NewWithDefaults: %v", err)
	}
	return reg
}

func findRuleResult(t *testing.T, result *ValidationResult, ruleID string) RuleResult {
	t.Helper()
	for _, res := range result.Rules {
		if res.RuleID == ruleID {
			return res
		}
	}
	t.Fatalf("rule %s not evaluated; got %+v", ruleID, result.Rules)
	return RuleResult{}
}

func TestDefaults_GDPRPersonalData(t *testing.T) {
	reg := defaultRegistry(t)

	result := reg.ExecuteRules(&Context{
		EnterpriseID: "e1",
		Input: map[string]any{
			"dataTypes":      []any{"personal_data"},
			"gdprCompliance": false,
		},
	})

	if result.Overall != StrictFail {
		t.Errorf("Overall = %s, want %s", result.Overall, StrictFail)
	}

	gdpr := findRuleResult(t, result, "compliance-gdpr-data-types")
	if gdpr.Outcome != StrictFail {
		t.Errorf("GDPR outcome = %s, want %s", gdpr.Outcome, StrictFail)
	}

	foundCritical := false
	for _, rec := range result.Recommendations {
		if strings.HasPrefix(rec, "CRITICAL:") {
			foundCritical = true
		}
	}
	if !foundCritical {
		t.Errorf("no CRITICAL recommendation in %v", result.Recommendations)
	}
}

func TestDefaults_GDPRCompliant(t *testing.T) {
	reg := defaultRegistry(t)

	result := reg.ExecuteRules(&Context{
		EnterpriseID: "e1",
		Input: map[string]any{
			"dataTypes":      []any{"personal_data"},
			"gdprCompliance": true,
		},
	})

	gdpr := findRuleResult(t, result, "compliance-gdpr-data-types")
	if gdpr.Outcome != StrictPass {
		t.Errorf("GDPR outcome = %s, want %s", gdpr.Outcome, StrictPass)
	}
}

func TestDefaults_ClientFacingRestriction(t *testing.T) {
	tests := []struct {
		name         string
		toolName     string
		clientFacing bool
		want         Outcome
	}{
		{name: "restricted tool client facing", toolName: "Acme-Deepfake-Studio", clientFacing: true, want: StrictFail},
		{name: "restricted tool internal", toolName: "deepfake-lab", clientFacing: false, want: StrictPass},
		{name: "benign tool client facing", toolName: "summarizer", clientFacing: true, want: StrictPass},
		{name: "case insensitive match", toolName: "IMAGE-GENERATOR-9000", clientFacing: true, want: StrictFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := defaultRegistry(t)
			result := reg.ExecuteRules(&Context{
				EnterpriseID: "e1",
				Input: map[string]any{
					"toolName":     tt.toolName,
					"clientFacing": tt.clientFacing,
				},
			})

			res := findRuleResult(t, result, "security-client-facing-restriction")
			if res.Outcome != tt.want {
				t.Errorf("outcome = %s, want %s", res.Outcome, tt.want)
			}
		})
	}
}

func TestDefaults_UrgencyApproval(t *testing.T) {
	tests := []struct {
		name           string
		urgencyLevel   float64
		urgentApproval bool
		want           Outcome
		wantConfidence float64
	}{
		{name: "high urgency unapproved warns", urgencyLevel: 0.9, urgentApproval: false, want: SoftWarn, wantConfidence: 0.8},
		{name: "high urgency approved passes", urgencyLevel: 0.9, urgentApproval: true, want: StrictPass, wantConfidence: 1.0},
		{name: "boundary urgency passes", urgencyLevel: 0.8, urgentApproval: false, want: StrictPass, wantConfidence: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := defaultRegistry(t)
			result := reg.ExecuteRules(&Context{
				EnterpriseID: "e1",
				Input: map[string]any{
					"urgencyLevel":   tt.urgencyLevel,
					"urgentApproval": tt.urgentApproval,
				},
			})

			res := findRuleResult(t, result, "business-urgency-approval")
			if res.Outcome != tt.want {
				t.Errorf("outcome = %s, want %s", res.Outcome, tt.want)
			}
			if res.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", res.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestDefaults_FileSizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		sizeBytes float64
		want      Outcome
	}{
		{name: "over limit fails", sizeBytes: 11_000_000, want: StrictFail},
		{name: "under limit passes", sizeBytes: 9_000_000, want: StrictPass},
		{name: "exactly at limit passes", sizeBytes: 10 * 1024 * 1024, want: StrictPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := defaultRegistry(t)
			result := reg.ExecuteRules(&Context{
				EnterpriseID: "e1",
				Input:        map[string]any{"sizeBytes": tt.sizeBytes},
			})

			res := findRuleResult(t, result, "technical-file-size-limit")
			if res.Outcome != tt.want {
				t.Errorf("outcome = %s, want %s", res.Outcome, tt.want)
			}
		})
	}
}

func TestDefaults_DocConfidence(t *testing.T) {
	tests := []struct {
		name           string
		parsedDoc      map[string]any
		want           Outcome
		wantConfidence float64
	}{
		{
			name:           "low confidence warns and carries value",
			parsedDoc:      map[string]any{"confidence": 0.5},
			want:           SoftWarn,
			wantConfidence: 0.5,
		},
		{
			name:           "high confidence passes",
			parsedDoc:      map[string]any{"confidence": 0.95},
			want:           StrictPass,
			wantConfidence: 1.0,
		},
		{
			name:           "missing document treated as zero confidence",
			parsedDoc:      nil,
			want:           SoftWarn,
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := defaultRegistry(t)
			result := reg.ExecuteRules(&Context{
				EnterpriseID: "e1",
				Input:        map[string]any{},
				ParsedDoc:    tt.parsedDoc,
			})

			res := findRuleResult(t, result, "document-processing-confidence")
			if res.Outcome != tt.want {
				t.Errorf("outcome = %s, want %s", res.Outcome, tt.want)
			}
			if res.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", res.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestDefaults_CatalogShape(t *testing.T) {
	reg := defaultRegistry(t)

	if reg.Len() != 5 {
		t.Errorf("default catalog has %d rules, want 5", reg.Len())
	}

	wantIDs := []string{
		"compliance-gdpr-data-types",
		"security-client-facing-restriction",
		"business-urgency-approval",
		"technical-file-size-limit",
		"document-processing-confidence",
	}
	for _, id := range wantIDs {
		if reg.GetRule(id) == nil {
			t.Errorf("default rule %s missing", id)
		}
	}
}
