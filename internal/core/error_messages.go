package core

// error_messages.go maps technical errors to user-facing messages with codes.
//
// # Error Codes Reference
//
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis. Codes are logged next to every failed upload; the
// JSON bodies of the upload API are fixed and never carry them.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the size or row limit
//	          Action: Split the file into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - Unreadable: The spreadsheet could not be read
//	          Action: Re-save the file as .xlsx or UTF-8 .csv
//	          Patterns: "unreadable spreadsheet", "no sheets"
//
//	FILE004 - No file: No file was uploaded
//	          Action: Please select a spreadsheet to upload
//	          Patterns: "no file uploaded"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Please upload a spreadsheet with data rows
//	          Patterns: "empty file", "no data rows"
//
//	FILE006 - Unsupported format: The file type is not supported
//	          Action: Upload an .xlsx or .csv file
//	          Patterns: "unsupported file format"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing column: A required column is missing
//	         Action: Download the template and compare the header row
//	         Patterns: "missing column"
//
//	VAL002 - Extra column: The file has a column that is not allowed
//	         Action: Remove columns that are not in the template
//	         Patterns: "extra column"
//
//	VAL003 - Invalid row: One or more rows have invalid values
//	         Action: Fix the listed rows and upload again
//	         Patterns: "is missing or invalid"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try uploading a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application logs for
// the original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the size or row limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a spreadsheet with data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "The file type is not supported",
			Action:  "Upload an .xlsx or .csv file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "unreadable spreadsheet",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Re-save the file as .xlsx or UTF-8 .csv",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no sheets",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Re-save the file as .xlsx or UTF-8 .csv",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file uploaded",
		msg: UserMessage{
			Message: "No file was uploaded",
			Action:  "Please select a spreadsheet to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no data rows",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a spreadsheet with data rows",
			Code:    "FILE005",
		},
	},

	// Validation errors
	{
		pattern: "missing column",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "Download the template and compare the header row",
			Code:    "VAL001",
		},
	},
	{
		pattern: "extra column",
		msg: UserMessage{
			Message: "The file has a column that is not allowed",
			Action:  "Remove columns that are not in the template",
			Code:    "VAL002",
		},
	},
	{
		pattern: "is missing or invalid",
		msg: UserMessage{
			Message: "One or more rows have invalid values",
			Action:  "Fix the listed rows and upload again",
			Code:    "VAL003",
		},
	},

	// Upload errors
	{
		pattern: "too many",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A *UserError keeps the message it was built with; otherwise MapError
// returns the first case-insensitive pattern match, or ERR000.
//
// Example:
//
//	err := fmt.Errorf("%w: zip: not a valid zip file", ErrDecode)
//	msg := MapError(err)
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.User
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// Error() returns the user message; Unwrap() returns the technical error.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
