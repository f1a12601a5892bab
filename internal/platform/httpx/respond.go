package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the response shape every endpoint returns.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     *ErrBody  `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrBody struct {
	Message string `json:"message"`
}

func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func OKMessage(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// Error sends a failure envelope. The message must be safe to show to a user.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{
		Success:   false,
		Error:     &ErrBody{Message: message},
		Timestamp: time.Now().UTC(),
	})
}

func write(w http.ResponseWriter, status int, v Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
