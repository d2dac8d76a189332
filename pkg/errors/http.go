package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse is the JSON body written for a failed request.
type ErrorResponse struct {
	Code       ErrorCode    `json:"code"`
	Message    string       `json:"message"`
	Violations []FieldError `json:"violations,omitempty"`
}

// WriteHTTP writes err as a structured JSON error response. Non-structured
// errors are reported as an internal error without leaking their message.
func WriteHTTP(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Code:    ErrCodeInternal,
		Message: "internal error",
	}

	var e *Error
	if errors.As(err, &e) {
		resp.Code = e.Code
		resp.Message = e.Message
		resp.Violations = e.Violations
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(MapErrorCodeToHTTPStatus(resp.Code))
	json.NewEncoder(w).Encode(resp)
}
