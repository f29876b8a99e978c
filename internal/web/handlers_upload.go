package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/excelreader/internal/core"
	"github.com/JonMunkholm/excelreader/internal/logging"
	"github.com/JonMunkholm/excelreader/internal/web/templates"
)

// uploadField is the multipart field carrying the spreadsheet.
const uploadField = "file"

// readUpload returns the name and content of the uploaded file. A body over
// the size limit, a broken form and a missing file all wrap errNoFile.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return "", nil, fmt.Errorf("%w: %w", errNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", errNoFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// processUpload reads the uploaded file and runs it through the service.
// The upload ID header is set whenever the service assigned one.
func (s *Server) processUpload(w http.ResponseWriter, r *http.Request) (*core.UploadOutcome, error) {
	fileName, data, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}

	ctx := WithRequestMetadata(r.Context(), r)
	outcome, err := s.service.ProcessUpload(ctx, fileName, data)
	if outcome != nil {
		w.Header().Set("X-Upload-ID", outcome.UploadID)
	}
	return outcome, err
}

// handleReadExcel validates an uploaded spreadsheet and returns its records.
//
// Responses:
//   - 200 {"data":[...]} when every row is valid
//   - 400 {"error":"Invalid Excel data","details":[...]} when any check fails
//   - 400 {"error":"No file uploaded"} when the form has no file
//   - 500 {"error":"Error processing Excel file"} when the file cannot be read
//   - 503 with the same body and Retry-After when all upload slots are busy
func (s *Server) handleReadExcel(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.processUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	result := outcome.Result
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, InvalidDataResponse{
			Error:   msgInvalidData,
			Details: result.Errors,
		})
		return
	}

	records := result.Records
	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: records})
}

// handleUploadPage handles the upload form of the HTML page and renders the
// records or the validation errors.
func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.processUpload(w, r)
	if err != nil {
		if errors.Is(err, errNoFile) {
			logging.FromContext(r.Context()).Info("upload form submitted without a file", "error", err)
			s.renderPage(w, r, http.StatusBadRequest, templates.PageState{Errors: []string{msgNoFile}})
			return
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}

	state := templates.PageState{FileName: outcome.FileName, Submitted: true}
	status := http.StatusOK
	if outcome.Result.Valid {
		state.Records = outcome.Result.Records
	} else {
		state.Errors = outcome.Result.Errors
		status = http.StatusBadRequest
	}
	s.renderPage(w, r, status, state)
}
