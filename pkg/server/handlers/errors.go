package handlers

import (
	"encoding/json"
	"net/http"
)

// FieldError describes one invalid request field.
type FieldError struct {
	// Field addresses the offending value by JSON path.
	Field string `json:"field"`

	// Message says what is wrong with it.
	Message string `json:"message"`
}

// errorBody is the error response envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeValidationError(w http.ResponseWriter, fields []FieldError) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:    "invalid_request",
		Message: "request validation failed",
		Fields:  fields,
	}})
}
