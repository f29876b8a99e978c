package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func staticDecoder(rows []Row, err error) Decoder {
	return DecoderFunc(func(string, []byte) ([]Row, error) {
		return rows, err
	})
}

func newTestService(dec Decoder) *Service {
	return NewService(dec, ServiceConfig{MaxConcurrent: 2, MaxWait: time.Second, MaxRows: 3})
}

func TestProcessUpload_Valid(t *testing.T) {
	svc := newTestService(staticDecoder([]Row{validRow(), validRow()}, nil))

	outcome, err := svc.ProcessUpload(context.Background(), "people.xlsx", []byte("data"))
	if err != nil {
		t.Fatalf("ProcessUpload() error = %v", err)
	}

	if _, err := uuid.Parse(outcome.UploadID); err != nil {
		t.Errorf("UploadID %q is not a UUID: %v", outcome.UploadID, err)
	}
	if outcome.FileName != "people.xlsx" {
		t.Errorf("FileName = %q, want %q", outcome.FileName, "people.xlsx")
	}
	if outcome.Rows != 2 {
		t.Errorf("Rows = %d, want 2", outcome.Rows)
	}
	if !outcome.Result.Valid || len(outcome.Result.Records) != 2 {
		t.Errorf("Result = %+v, want 2 valid records", outcome.Result)
	}
}

func TestProcessUpload_InvalidDataIsNotAnError(t *testing.T) {
	svc := newTestService(staticDecoder([]Row{withField(validRow(), "extra", Text("x"))}, nil))

	outcome, err := svc.ProcessUpload(context.Background(), "people.csv", []byte("data"))
	if err != nil {
		t.Fatalf("ProcessUpload() error = %v", err)
	}
	if outcome.Result.Valid {
		t.Error("Result.Valid = true, want false")
	}
	if len(outcome.Result.Errors) != 1 || outcome.Result.Errors[0] != "Extra column found: extra" {
		t.Errorf("Result.Errors = %q", outcome.Result.Errors)
	}
}

func TestProcessUpload_Errors(t *testing.T) {
	decodeErr := errors.New("zip: not a valid zip file")

	tests := []struct {
		name     string
		dec      Decoder
		data     []byte
		wantErr  []error
		wantCode string
	}{
		{
			name:     "decoder failure",
			dec:      staticDecoder(nil, decodeErr),
			data:     []byte("x"),
			wantErr:  []error{ErrDecode, decodeErr},
			wantCode: "FILE002",
		},
		{
			name:     "empty upload",
			dec:      staticDecoder([]Row{validRow()}, nil),
			data:     nil,
			wantErr:  []error{ErrDecode, ErrEmptyFile},
			wantCode: "FILE005",
		},
		{
			name: "decoder panic",
			dec: DecoderFunc(func(string, []byte) ([]Row, error) {
				panic("index out of range")
			}),
			data:     []byte("x"),
			wantErr:  []error{ErrDecode},
			wantCode: "FILE002",
		},
		{
			name:     "too many rows",
			dec:      staticDecoder([]Row{validRow(), validRow(), validRow(), validRow()}, nil),
			data:     []byte("x"),
			wantErr:  []error{ErrTooManyRows},
			wantCode: "FILE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := newTestService(tt.dec).ProcessUpload(context.Background(), "f.xlsx", tt.data)
			if err == nil {
				t.Fatal("ProcessUpload() expected error")
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error %v does not wrap %v", err, want)
				}
			}
			var userErr *UserError
			if !errors.As(err, &userErr) {
				t.Fatalf("error %T is not a *UserError", err)
			}
			if userErr.User.Code != tt.wantCode {
				t.Errorf("user code = %q, want %q", userErr.User.Code, tt.wantCode)
			}
			if userErr.Technical == nil {
				t.Error("UserError lost the technical error")
			}
			if outcome == nil || outcome.UploadID == "" {
				t.Error("outcome should carry the upload ID even on failure")
			}
		})
	}
}

func TestProcessUpload_Busy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	dec := DecoderFunc(func(string, []byte) ([]Row, error) {
		close(started)
		<-release
		return []Row{validRow()}, nil
	})
	svc := NewService(dec, ServiceConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ProcessUpload(context.Background(), "a.xlsx", []byte("x"))
		done <- err
	}()
	<-started

	if got := svc.UploadLimiterStatus().Active; got != 1 {
		t.Errorf("Active = %d, want 1", got)
	}

	_, err := svc.ProcessUpload(context.Background(), "b.xlsx", []byte("x"))
	if !errors.Is(err, ErrTooManyUploads) {
		t.Errorf("second upload error = %v, want ErrTooManyUploads", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first upload error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.WaitForUploads(ctx); err != nil {
		t.Errorf("WaitForUploads() = %v", err)
	}
}

func TestProcessUpload_PassesFileNameToDecoder(t *testing.T) {
	var gotName string
	dec := DecoderFunc(func(name string, _ []byte) ([]Row, error) {
		gotName = name
		return []Row{validRow()}, nil
	})

	ctx := ContextWithClient(context.Background(), "10.0.0.1", "test-agent")
	if _, err := newTestService(dec).ProcessUpload(ctx, "people.csv", []byte("x")); err != nil {
		t.Fatalf("ProcessUpload() error = %v", err)
	}
	if gotName != "people.csv" {
		t.Errorf("decoder got file name %q, want %q", gotName, "people.csv")
	}
}

func TestClientContext(t *testing.T) {
	ctx := context.Background()
	if got := ClientIPFromContext(ctx); got != "" {
		t.Errorf("ClientIPFromContext(empty) = %q", got)
	}

	ctx = ContextWithClient(ctx, "192.0.2.1", "curl/8.0")
	if got := ClientIPFromContext(ctx); got != "192.0.2.1" {
		t.Errorf("ClientIPFromContext() = %q, want %q", got, "192.0.2.1")
	}
	if got := UserAgentFromContext(ctx); got != "curl/8.0" {
		t.Errorf("UserAgentFromContext() = %q, want %q", got, "curl/8.0")
	}
}
