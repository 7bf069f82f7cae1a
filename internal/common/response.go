package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
}

const MaxJSONBody = 1 << 20

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{Kind: KindServer, Message: "Internal server error", Err: err}
	}

	resp := ErrorResponse{
		Message:   appErr.Message,
		ErrorType: appErr.Type,
	}
	if appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}
	if appErr.Kind == KindServer {
		log.Printf("Server error: %v", err)
	}

	WriteJSON(w, appErr.Kind.HTTPStatus(), resp)
}

// DecodeJSON reads a JSON body of at most MaxJSONBody bytes into dst and
// validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewValidationError("Request body too large")
		}
		return NewValidationError("Invalid request payload: " + err.Error())
	}
	return Validate(dst)
}
