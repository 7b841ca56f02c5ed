package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type debugDetail struct {
	Error string `json:"error"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

// Internal writes a generic 500. The cause is only echoed when debug is set.
func Internal(w http.ResponseWriter, message string, err error, debug bool) {
	env := Envelope{Code: http.StatusInternalServerError, Message: message}
	if debug && err != nil {
		env.Data = debugDetail{Error: err.Error()}
	}
	write(w, http.StatusInternalServerError, env)
}

// Raw writes payload without the envelope.
func Raw(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("respond: encode payload failed")
	}
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	Raw(w, status, payload)
}
