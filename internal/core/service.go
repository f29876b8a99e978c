package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/excelreader/internal/logging"
)

var (
	// ErrDecode wraps every failure to turn uploaded bytes into rows.
	ErrDecode = errors.New("unreadable spreadsheet")

	// ErrEmptyFile is returned for a zero-byte upload.
	ErrEmptyFile = errors.New("empty file")

	// ErrTooManyRows is returned when a sheet has more data rows than allowed.
	ErrTooManyRows = errors.New("file too large")
)

// Decoder turns raw upload bytes into rows keyed by header name.
// The file name is a format hint only.
type Decoder interface {
	Decode(fileName string, data []byte) ([]Row, error)
}

// DecoderFunc adapts a plain function to Decoder.
type DecoderFunc func(fileName string, data []byte) ([]Row, error)

// Decode calls f(fileName, data).
func (f DecoderFunc) Decode(fileName string, data []byte) ([]Row, error) {
	return f(fileName, data)
}

// ServiceConfig holds the limits applied to every upload.
type ServiceConfig struct {
	MaxConcurrent int           // Simultaneous decode+validate passes
	MaxWait       time.Duration // How long an upload waits for a slot
	MaxRows       int           // Data rows accepted per sheet; 0 means unlimited
}

// Service runs uploads through decoding and validation.
type Service struct {
	decoder   Decoder
	validator *RowValidator
	limiter   *UploadLimiter
	maxRows   int
}

// NewService creates a Service that decodes with dec.
func NewService(dec Decoder, cfg ServiceConfig) *Service {
	return &Service{
		decoder:   dec,
		validator: NewRowValidator(),
		limiter:   NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		maxRows:   cfg.MaxRows,
	}
}

// ProcessUpload decodes and validates one uploaded file.
//
// A returned error means the file could not be processed at all (ErrDecode,
// ErrTooManyRows, ErrTooManyUploads or a context error). It is a *UserError,
// so errors.Is still sees the cause. Invalid data is not an error: it is
// reported in the outcome's Result.
func (s *Service) ProcessUpload(ctx context.Context, fileName string, data []byte) (*UploadOutcome, error) {
	start := time.Now()
	outcome := &UploadOutcome{
		UploadID: uuid.New().String(),
		FileName: fileName,
	}

	log := logging.ForUpload(ctx, outcome.UploadID, fileName)
	if ip := ClientIPFromContext(ctx); ip != "" {
		log = log.With("ip", ip)
	}
	log.Debug("upload received", "bytes", len(data), "user_agent", UserAgentFromContext(ctx))

	err := s.limiter.Do(ctx, func() error {
		rows, err := s.decode(fileName, data)
		if err != nil {
			return err
		}
		outcome.Rows = len(rows)
		if s.maxRows > 0 && len(rows) > s.maxRows {
			return fmt.Errorf("%w: %d rows exceeds the limit of %d", ErrTooManyRows, len(rows), s.maxRows)
		}
		outcome.Result = s.validator.Validate(rows)
		return nil
	})
	outcome.Duration = time.Since(start)

	if err != nil {
		userErr := NewUserError(err)
		log.Warn("upload failed",
			"error", err,
			"code", userErr.User.Code,
			"duration_ms", outcome.Duration.Milliseconds(),
		)
		return outcome, userErr
	}

	if !outcome.Result.Valid {
		log.Info("upload rejected",
			"rows", outcome.Rows,
			"errors", len(outcome.Result.Errors),
			"code", MapError(outcome.Result.Err()).Code,
			"duration_ms", outcome.Duration.Milliseconds(),
		)
		return outcome, nil
	}

	log.Info("upload accepted",
		"rows", outcome.Rows,
		"records", len(outcome.Result.Records),
		"duration_ms", outcome.Duration.Milliseconds(),
	)
	return outcome, nil
}

// decode runs the decoder, converting panics from malformed files into ErrDecode.
func (s *Service) decode(fileName string, data []byte) (rows []Row, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrEmptyFile)
	}

	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("%w: decoder panic: %v", ErrDecode, r)
		}
	}()

	rows, err = s.decoder.Decode(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return rows, nil
}

// UploadLimiterStatus returns the current admission state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Err returns the validation messages as a single error, or nil when valid.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}
