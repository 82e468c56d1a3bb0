package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/atinyakov/HydroPal/internal/service"
	"github.com/atinyakov/HydroPal/internal/validation"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Responder writes JSON envelopes and maps service errors to status codes.
type Responder struct {
	// Log receives unexpected (500) errors.
	Log *zap.Logger
	// Detail adds the underlying error text to 500 responses. It must be
	// off in production.
	Detail bool
}

// failure holds the client-facing messages for the two errors whose text
// depends on the route.
type failure struct {
	NotFound string
	Internal string
}

// encodeFailure is written when a response body cannot be marshalled.
const encodeFailure = `{"success":false,"message":"Internal server error"}`

// writeJSON marshals v before writing the header. A value that cannot be
// encoded, such as an infinite float, is answered with a 500 envelope.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(encodeFailure)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// ok writes {"success": true} merged with payload.
func ok(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func (rs Responder) fail(w http.ResponseWriter, status int, message string, extra map[string]any) {
	body := map[string]any{"success": false, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// Error maps err onto the HTTP taxonomy and writes the failure envelope.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error, f failure) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		rs.fail(w, http.StatusBadRequest, verr.Error(), map[string]any{"errors": verr.Fields})
	case errors.Is(err, service.ErrValidation):
		rs.fail(w, http.StatusBadRequest, "Invalid request body", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		rs.fail(w, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, service.ErrUnauthorized):
		rs.fail(w, http.StatusUnauthorized, "Invalid or expired token", nil)
	case errors.Is(err, service.ErrNotFound):
		rs.fail(w, http.StatusNotFound, f.NotFound, nil)
	case errors.Is(err, service.ErrDuplicateEmail):
		rs.fail(w, http.StatusConflict, "User already exists with this email", nil)
	default:
		rs.Internal(w, r, err, f.Internal)
	}
}

// Internal logs err and writes a 500 with message.
func (rs Responder) Internal(w http.ResponseWriter, r *http.Request, err error, message string) {
	if rs.Log != nil {
		rs.Log.Error(message, zap.Error(err), zap.String("path", r.URL.Path))
	}
	var extra map[string]any
	if rs.Detail {
		extra = map[string]any{"error": err.Error()}
	}
	rs.fail(w, http.StatusInternalServerError, message, extra)
}

// normalizer is implemented by requests that clean their fields before
// validation.
type normalizer interface {
	normalize()
}

// decode reads a JSON body into dst, normalizes and validates it. Failures
// are reported as validation errors so Error maps them to 400.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrValidation, err)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return fmt.Errorf("%w: %w", service.ErrValidation, verr)
	}
	return nil
}

// badRequest writes a 400 with a single field error.
func (rs Responder) badRequest(w http.ResponseWriter, field, message string) {
	rs.fail(w, http.StatusBadRequest, message, map[string]any{
		"errors": []validation.FieldError{{Field: field, Tag: "invalid", Message: message}},
	})
}
