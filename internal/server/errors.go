package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/logging"
	"github.com/KaramelBytes/datasweeper/internal/table"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// badRequest marks client input errors that are not part of the file
// error taxonomy (bad form fields, missing file).
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// classify maps an error to a status code, a stable code and a suggested
// action.
func classify(err error) (int, string, string) {
	var (
		ufe *loader.UnsupportedFormatError
		pe  *loader.ParseError
		uce *table.UnknownColumnError
		ee  *export.ExportError
		br  *badRequest
	)
	switch {
	case errors.As(err, &ufe):
		return http.StatusUnsupportedMediaType, "unsupported_format", "Upload a .csv or .xlsx file"
	case errors.As(err, &pe):
		return http.StatusUnprocessableEntity, "parse_error", "Check that the file is a valid CSV or Excel workbook"
	case errors.As(err, &uce):
		return http.StatusBadRequest, "unknown_column", "Pick columns from the available list"
	case errors.Is(err, table.ErrDuplicateSelection):
		return http.StatusBadRequest, "duplicate_column", "Name each column once"
	case errors.As(err, &br):
		return http.StatusBadRequest, "bad_request", ""
	case errors.As(err, &ee):
		return http.StatusInternalServerError, "export_failed", ""
	default:
		return http.StatusInternalServerError, "internal", ""
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, action := classify(err)
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"err", err,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Action:  action,
		Code:    code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode", "err", err)
	}
}
