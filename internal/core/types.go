package core

import (
	"strconv"
	"time"
)

// Field names as they appear in the spreadsheet header and on the wire.
const (
	FieldCIN         = "cin"
	FieldAddress     = "address"
	FieldPhoneNumber = "phoneNumber"
	FieldEmail       = "email"
	FieldGender      = "gender"
	FieldDateOfBirth = "dateOfBirth"
)

// requiredFields is the exact column set of an upload, in message order.
var requiredFields = [...]string{
	FieldCIN,
	FieldAddress,
	FieldPhoneNumber,
	FieldEmail,
	FieldGender,
	FieldDateOfBirth,
}

// RequiredFields returns the required column names in canonical order.
func RequiredFields() []string {
	out := make([]string, len(requiredFields))
	copy(out, requiredFields[:])
	return out
}

// Gender is the normalized (uppercase) gender of a person.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

var allowedGenders = [...]Gender{GenderMale, GenderFemale, GenderOther}

// AllowedGenders returns the accepted gender values.
func AllowedGenders() []Gender {
	out := make([]Gender, len(allowedGenders))
	copy(out, allowedGenders[:])
	return out
}

// IsValid reports whether g is one of the allowed values. Comparison is exact;
// callers normalize case first.
func (g Gender) IsValid() bool {
	for _, a := range allowedGenders {
		if g == a {
			return true
		}
	}
	return false
}

// Kind identifies the dynamic type of a decoded cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Value is a single decoded cell. Only the member matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Text   string
	Number float64
	Bool   bool
}

// Text returns a text cell value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Number returns a numeric cell value.
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Bool returns a boolean cell value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// String renders the value roughly as a spreadsheet would display it.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Row is one decoded data row keyed by header name. A missing key means the
// cell was blank or the column does not exist.
type Row map[string]Value

// Record is a validated, normalized person.
type Record struct {
	CIN         string  `json:"cin" yaml:"cin"`
	Address     string  `json:"address" yaml:"address"`
	PhoneNumber float64 `json:"phoneNumber" yaml:"phoneNumber"`
	Email       string  `json:"email" yaml:"email"`
	Gender      Gender  `json:"gender" yaml:"gender"`
	DateOfBirth string  `json:"dateOfBirth" yaml:"dateOfBirth"`
}

// PhoneDisplay formats the phone number without exponent or trailing zeros.
func (r Record) PhoneDisplay() string {
	return strconv.FormatFloat(r.PhoneNumber, 'f', -1, 64)
}

// FieldError is a single failed field check within a row.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RowError groups the failed checks of one data row. Row is 1-based and
// counts data rows only (the header is not row 1).
type RowError struct {
	Row    int          `json:"row"`
	Fields []FieldError `json:"fields"`
}

// ValidationResult is the outcome of validating an uploaded dataset.
type ValidationResult struct {
	Valid   bool     // True only if Errors is empty
	Errors  []string // Structural messages, or one aggregated message per failed row
	Records []Record // Rows that passed every check

	// RowErrors is the structured form of the row-level messages in Errors.
	RowErrors []RowError
}

// UploadOutcome is the result of processing one uploaded file.
type UploadOutcome struct {
	UploadID string
	FileName string
	Rows     int
	Result   ValidationResult
	Duration time.Duration
}
