package web

// errors.go keeps the response bodies of the upload API fixed while still
// logging the technical cause:
//
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, status)
//  3. The error becomes a core.UserError carrying its code and user message
//  4. Technical error, code and request ID are logged
//  5. API clients get the fixed public message, browsers get the page

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/excelreader/internal/core"
	"github.com/JonMunkholm/excelreader/internal/logging"
	"github.com/JonMunkholm/excelreader/internal/web/templates"
)

// Public messages of the upload API. Clients match on these literally.
const (
	msgNoFile       = "No file uploaded"
	msgInvalidData  = "Invalid Excel data"
	msgProcessError = "Error processing Excel file"
)

var (
	// errNoFile covers a missing file field and a form that cannot be parsed.
	errNoFile = errors.New("no file uploaded")

	errRateLimited = errors.New("rate limit exceeded")
)

// retryAfterBusy is the Retry-After value sent when every upload slot is taken.
const retryAfterBusy = "5"

// InvalidDataResponse is the body returned for a spreadsheet that fails validation.
type InvalidDataResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// DataResponse is the body returned for a spreadsheet whose rows are all valid.
type DataResponse struct {
	Data []core.Record `json:"data"`
}

// statusFor returns the HTTP status for an error returned by the upload service.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the fixed API message for an upload error.
func publicMessage(err error) string {
	if errors.Is(err, errNoFile) {
		return msgNoFile
	}
	return msgProcessError
}

// respondError logs err and writes the error response in the form the
// client asked for.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	var userErr *core.UserError
	if !errors.As(err, &userErr) {
		userErr = core.NewUserError(err)
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", userErr.Technical.Error(),
		"code", userErr.User.Code,
	)

	if errors.Is(err, core.ErrTooManyUploads) {
		w.Header().Set("Retry-After", retryAfterBusy)
	}

	if wantsJSON(r) {
		writeError(w, status, publicMessage(err))
		return
	}
	s.renderPage(w, r, status, templates.PageState{Alert: &userErr.User})
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
