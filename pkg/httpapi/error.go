package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Meta    map[string]string   `json:"meta,omitempty"`
}

const CodeValidation = "VALIDATION_ERROR"

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteValidationError answers 400 with one message list per field.
func WriteValidationError(w http.ResponseWriter, fields map[string]string) error {
	out := make(map[string][]string, len(fields))
	names := make([]string, 0, len(fields))
	for name, msg := range fields {
		out[name] = []string{msg}
		names = append(names, name)
	}
	sort.Strings(names)
	message := "invalid request body"
	if len(names) > 0 {
		message = fields[names[0]]
	}
	return WriteJSON(w, http.StatusBadRequest, &ErrorEnvelope{
		Code:    CodeValidation,
		Message: message,
		Fields:  out,
	})
}
