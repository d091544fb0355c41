package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/risk"
)

// riskRequest is the body of POST /v1/decisions/risk.
type riskRequest struct {
	Atoms   []risk.Atom  `json:"atoms"`
	Options risk.Options `json:"options"`
}

// Risk handles POST /v1/decisions/risk. It scores one telemetry batch and
// returns the composite score. An empty batch is a valid quiet period, not
// an error.
func (h *Handlers) Risk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON: "+err.Error())
		return
	}

	if fields := validateRiskRequest(&req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	score := h.scorer.Score(r.Context(), req.Atoms, req.Options)

	if h.metrics != nil {
		h.metrics.RecordRiskScore(req.Options.ToolID, string(score.RiskLevel), score.Total)
	}

	if h.recorder != nil {
		if err := h.recorder.Record(r.Context(), audit.KindRiskScore, "", req.Options.ToolID, string(score.RiskLevel), score); err != nil {
			h.logger.WarnContext(r.Context(), "failed to audit risk score", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, score)
}

func validateRiskRequest(req *riskRequest) []FieldError {
	var fields []FieldError
	for i, atom := range req.Atoms {
		if atom.Timestamp.IsZero() {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("atoms[%d].timestamp", i),
				Message: "is required",
			})
		}
		if atom.EventType == "" {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("atoms[%d].event_type", i),
				Message: "is required",
			})
		}
		if !risk.ValidSeverity(atom.Severity) {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("atoms[%d].severity", i),
				Message: fmt.Sprintf("unknown severity %q", atom.Severity),
			})
		}
	}
	return fields
}
