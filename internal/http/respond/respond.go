package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RedirectData tells a client where the server sent it.
type RedirectData struct {
	Location string `json:"location"`
}

// ValidationData carries per-field problems.
type ValidationData struct {
	Errors map[string]string `json:"errors"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

// Redirect answers 303 See Other with a Location header and the message
// that should be flashed on the target page.
func Redirect(w http.ResponseWriter, location, message string) {
	w.Header().Set("Location", location)
	write(w, http.StatusSeeOther, Envelope{Code: http.StatusSeeOther, Message: message, Data: RedirectData{Location: location}})
}

// Validation answers 400 with the field errors under data.errors.
func Validation(w http.ResponseWriter, message string, fields map[string]string) {
	write(w, http.StatusBadRequest, Envelope{Code: http.StatusBadRequest, Message: message, Data: ValidationData{Errors: fields}})
}

// NotFound answers 404 with message.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}
