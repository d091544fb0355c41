package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/rules"
)

// Evaluate handles POST /v1/decisions/evaluate. The body is the evaluation
// context; the response is the full validation result. Rule failures are
// decisions, not errors: they come back with 200. A context without input is
// valid too; rules that inspect input are then inapplicable.
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	var ec rules.Context
	if err := json.NewDecoder(r.Body).Decode(&ec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON: "+err.Error())
		return
	}

	if ec.Timestamp.IsZero() {
		ec.Timestamp = time.Now()
	}

	start := time.Now()
	result := h.registry.ExecuteRules(&ec)
	elapsed := time.Since(start)

	if h.metrics != nil {
		h.metrics.RecordEvaluation(string(result.Overall), elapsed)
		for _, rr := range result.Rules {
			h.metrics.RecordRuleResult(rr.RuleID, string(rr.Outcome))
		}
	}

	toolID := ec.InputString("toolName")
	if h.store != nil {
		decision := history.Decision{
			ToolID:       toolID,
			EnterpriseID: ec.EnterpriseID,
			Outcome:      string(result.Overall),
			DecidedAt:    ec.Timestamp,
		}
		if err := h.store.RecordDecision(r.Context(), decision); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to record decision history", "error", err)
		}
	}

	if h.recorder != nil {
		if err := h.recorder.Record(r.Context(), audit.KindEvaluation, ec.EnterpriseID, toolID, string(result.Overall), result); err != nil {
			h.logger.WarnContext(r.Context(), "failed to audit evaluation", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}
