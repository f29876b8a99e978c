package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/excelreader/internal/core"
	"github.com/JonMunkholm/excelreader/internal/sheet"
)

// Report is what validate prints.
type Report struct {
	File   string        `json:"file" yaml:"file"`
	Rows   int           `json:"rows" yaml:"rows"`
	Valid  bool          `json:"valid" yaml:"valid"`
	Errors []string      `json:"errors" yaml:"errors"`
	Data   []core.Record `json:"data" yaml:"data"`
}

type validateOptions struct {
	output  string
	strict  bool
	maxRows int
}

func newValidateCmd() *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a .xlsx or .csv file and print the records",
		Long: `Validate reads the first sheet of the file and checks every row.

Rows that fail are listed in "errors" and left out of "data". Unless --strict
is set the command succeeds as long as the columns are right and at least one
row is valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when any row is invalid")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "maximum data rows (0 = unlimited)")
	return cmd
}

func runValidate(ctx context.Context, out io.Writer, path string, opts validateOptions) error {
	if opts.output != "json" && opts.output != "yaml" {
		return withCode(ExitError, fmt.Errorf("unknown output format %q", opts.output))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return withCode(ExitError, err)
	}

	svc := core.NewService(core.DecoderFunc(sheet.DecodeFile), core.ServiceConfig{
		MaxConcurrent: 1,
		MaxRows:       opts.maxRows,
	})
	outcome, err := svc.ProcessUpload(ctx, filepath.Base(path), data)
	if err != nil {
		// Unmapped failures keep their technical text.
		if !core.IsUserFacing(err) {
			return withCode(ExitError, fmt.Errorf("%s: %w", path, errors.Unwrap(err)))
		}
		slog.Debug("processing failed", "file", path, "error", errors.Unwrap(err))
		return withCode(ExitError, fmt.Errorf("%s: %s", path, core.FormatUserError(err)))
	}

	result := outcome.Result
	report := Report{
		File:   outcome.FileName,
		Rows:   outcome.Rows,
		Valid:  result.Valid,
		Errors: result.Errors,
		Data:   result.Records,
	}
	if report.Errors == nil {
		report.Errors = []string{}
	}
	if report.Data == nil {
		report.Data = []core.Record{}
	}

	if err := writeReport(out, opts.output, report); err != nil {
		return withCode(ExitError, err)
	}

	return exitStatus(result, opts.strict)
}

// exitStatus decides whether a finished validation counts as a failure.
func exitStatus(result core.ValidationResult, strict bool) error {
	switch {
	case result.Valid:
		return nil
	case len(result.RowErrors) == 0:
		// Shape errors and empty sheets carry no row errors.
		return withCode(ExitInvalid, fmt.Errorf("invalid file [%s]", core.MapError(result.Err()).Code))
	case len(result.Records) == 0:
		return withCode(ExitInvalid, fmt.Errorf("no valid rows: %d rows rejected", len(result.RowErrors)))
	case strict:
		return withCode(ExitInvalid, fmt.Errorf("%d rows rejected", len(result.RowErrors)))
	default:
		return nil
	}
}

func writeReport(w io.Writer, format string, report Report) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
