package web

import (
	"net/http"

	"github.com/JonMunkholm/excelreader/internal/logging"
	"github.com/JonMunkholm/excelreader/internal/web/templates"
)

// renderPage writes the upload page with status.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, state templates.PageState) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.UploadPage(state).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}
