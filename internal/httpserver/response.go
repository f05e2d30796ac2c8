package httpserver

import (
	"encoding/json"
	"net/http"
)

// problem is an RFC 7807 problem document.
type problem struct {
	Type      string              `json:"type"`
	Title     string              `json:"title"`
	Status    int                 `json:"status"`
	Detail    string              `json:"detail,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemDoc(w, r, problem{Status: status, Title: http.StatusText(status), Detail: detail})
}

func writeValidationProblem(w http.ResponseWriter, r *http.Request, fields map[string][]string) {
	writeProblemDoc(w, r, problem{
		Status: http.StatusBadRequest,
		Title:  "One or more validation errors occurred.",
		Errors: fields,
	})
}

func writeProblemDoc(w http.ResponseWriter, r *http.Request, p problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	p.RequestID = RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeNotFound signals a missing record: status only, no body.
func writeNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}
