package httputil

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/telemetry"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 2 << 20

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn().Err(err).Msg("write response body")
	}
}

func WriteStatus(w http.ResponseWriter, status int) {
	WriteJSON(w, status, map[string]string{"status": "ok"})
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Code: code, Message: message})
}

// Error writes the response for err. Unexpected faults are logged and
// reported, and the client only sees a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unexpected error")
		telemetry.Capture(r.Context(), err)
	}
	WriteJSON(w, kind.Status(), ErrorBody{
		Code:    kind.Code(),
		Message: apperr.PublicMessage(err),
		Fields:  apperr.FieldsOf(err),
	})
}

// ReadJSON decodes a single JSON document of at most MaxBodyBytes into dst.
// Unknown keys are ignored.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &apperr.Error{Kind: apperr.KindInvalidRequest, Message: "Payload too large", Err: err}
		}
		return &apperr.Error{Kind: apperr.KindInvalidRequest, Message: "Invalid payload", Err: err}
	}
	if dec.More() {
		return apperr.InvalidRequest("Invalid payload")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return &apperr.Error{Kind: apperr.KindInvalidRequest, Message: "Payload too large", Err: err}
	}
	return nil
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.InvalidRequest("Invalid id")
	}
	return id, nil
}
