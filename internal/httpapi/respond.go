package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"coin-insights/internal/errs"
)

const maxBodyBytes = 1 << 20

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientData), errors.Is(err, errs.ErrComputation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrModelNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.Error().Err(err).Str("path", r.URL.Path).Str("request_id", requestIDFrom(r.Context())).
			Msg("request failed")
		message = "internal server error"
	}
	writeMessage(w, status, message)
}

// decode reads a JSON body into dst. Malformed or empty bodies are validation errors.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &errs.ValidationError{Field: "body", Message: "is required"}
		}
		var validation *errs.ValidationError
		if errors.As(err, &validation) {
			return validation
		}
		return &errs.ValidationError{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}
