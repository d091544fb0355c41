package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/harmonize"
)

// harmonizeRequest is the body of POST /v1/decisions/harmonize.
type harmonizeRequest struct {
	RulesA   []harmonize.PolicyRule `json:"rulesA"`
	RulesB   []harmonize.PolicyRule `json:"rulesB"`
	Strategy string                 `json:"strategy"`
}

// Harmonize handles POST /v1/decisions/harmonize. It combines the two rule
// sets and returns the harmonized set with its conflict report. Conflicts
// are findings, not errors.
func (h *Handlers) Harmonize(w http.ResponseWriter, r *http.Request) {
	var req harmonizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON: "+err.Error())
		return
	}

	strategy, fields := validateHarmonizeRequest(&req)
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	result := h.harmonizer.Harmonize(req.RulesA, req.RulesB, strategy)

	if h.metrics != nil {
		h.metrics.RecordHarmonization(string(strategy), len(result.Conflicts))
	}

	if h.recorder != nil {
		if err := h.recorder.Record(r.Context(), audit.KindHarmonization, "", "", string(strategy), result); err != nil {
			h.logger.WarnContext(r.Context(), "failed to audit harmonization", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func validateHarmonizeRequest(req *harmonizeRequest) (harmonize.Strategy, []FieldError) {
	var fields []FieldError

	strategy, err := harmonize.ParseStrategy(req.Strategy)
	if err != nil {
		fields = append(fields, FieldError{Field: "strategy", Message: err.Error()})
	}

	validateRuleSet := func(name string, set []harmonize.PolicyRule) {
		for i, rule := range set {
			if rule.ID == "" {
				fields = append(fields, FieldError{
					Field:   fmt.Sprintf("%s[%d].id", name, i),
					Message: "is required",
				})
			}
			if rule.Type == "" {
				fields = append(fields, FieldError{
					Field:   fmt.Sprintf("%s[%d].type", name, i),
					Message: "is required",
				})
			}
		}
	}
	validateRuleSet("rulesA", req.RulesA)
	validateRuleSet("rulesB", req.RulesB)

	return strategy, fields
}
