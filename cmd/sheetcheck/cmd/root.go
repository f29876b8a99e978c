// Package cmd implements the sheetcheck command line.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/excelreader/internal/logging"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitError   = 2
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var (
		verbose   bool
		logFormat string
	)

	root := &cobra.Command{
		Use:   "sheetcheck",
		Short: "Validate person-record spreadsheets",
		Long: `sheetcheck validates a spreadsheet of person records locally, with the
same rules as the upload service.

Required columns: cin, address, phoneNumber, email, gender, dateOfBirth

Exit codes:
  0  valid
  1  invalid data
  2  the file could not be read`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, logFormat))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newValidateCmd(), newTemplateCmd())
	return root
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	root := NewRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return run(root, os.Args[1:])
}

func run(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(root.ErrOrStderr(), "sheetcheck: %v\n", err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitError
}
