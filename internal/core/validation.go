package core

// validation.go decides whether an uploaded dataset is acceptable.
//
// Validation happens at two levels:
//  1. Shape check: the first row's columns must equal the required field set
//  2. Row validation: every row is checked field by field
//
// A shape failure stops validation before any row is examined. Row failures
// are collected as one message per row and the offending row is dropped.

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// msgNoRows is reported when the decoded sheet has no data rows.
const msgNoRows = "No data rows found"

// Per-field messages, keyed by wire name. These strings are part of the API.
var fieldMessages = map[string]string{
	FieldCIN:         "CIN is missing or invalid",
	FieldAddress:     "Address is missing or invalid",
	FieldPhoneNumber: "Phone number is missing or invalid",
	FieldEmail:       "Email is missing or invalid",
	FieldGender:      "Gender is missing or invalid (must be MALE, FEMALE, or OTHER)",
	FieldDateOfBirth: "Date of birth is missing or invalid",
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// candidate is a row projected onto Go types. A field whose cell is absent or
// of the wrong kind is left at its zero value so that "required" rejects it.
// Field order determines message order.
type candidate struct {
	CIN         string  `json:"cin" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	PhoneNumber float64 `json:"phoneNumber" validate:"required"`
	Email       string  `json:"email" validate:"required,simpleemail"`
	Gender      string  `json:"gender" validate:"required,gender"`
	DateOfBirth string  `json:"dateOfBirth" validate:"required"`
}

// RowValidator validates decoded rows against the person record schema.
// It holds no per-call state and is safe for concurrent use.
type RowValidator struct {
	validate *validator.Validate
}

// NewRowValidator creates a validator with the record rules registered.
func NewRowValidator() *RowValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so errors map straight onto wire field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return Gender(fl.Field().String()).IsValid()
	})

	return &RowValidator{validate: v}
}

// Validate checks the column shape against the first row, then every row.
// The input is not modified.
func (v *RowValidator) Validate(rows []Row) ValidationResult {
	if len(rows) == 0 {
		return ValidationResult{Errors: []string{msgNoRows}}
	}

	if shapeErrs := CheckShape(rows[0]); len(shapeErrs) > 0 {
		return ValidationResult{Errors: shapeErrs}
	}

	var result ValidationResult
	for i, row := range rows {
		rec, fieldErrs := v.ValidateRow(row)
		if len(fieldErrs) > 0 {
			rowErr := RowError{Row: i + 1, Fields: fieldErrs}
			result.RowErrors = append(result.RowErrors, rowErr)
			result.Errors = append(result.Errors, rowErr.Message())
			continue
		}
		result.Records = append(result.Records, rec)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// CheckShape compares the keys of a row with the required field set.
// Missing columns are reported in required order, extra columns by name.
func CheckShape(first Row) []string {
	var errs []string

	for _, name := range requiredFields {
		if _, ok := first[name]; !ok {
			errs = append(errs, "Missing column: "+name)
		}
	}

	var extra []string
	for name := range first {
		if !isRequiredField(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		errs = append(errs, "Extra column found: "+name)
	}

	return errs
}

// ValidateRow checks a single row and returns either the normalized record
// or the failed checks in field order.
func (v *RowValidator) ValidateRow(row Row) (Record, []FieldError) {
	c := candidate{
		CIN:     textOf(row, FieldCIN),
		Address: textOf(row, FieldAddress),
		Email:   textOf(row, FieldEmail),
		Gender:  strings.ToUpper(textOf(row, FieldGender)),
	}
	if val, ok := row[FieldPhoneNumber]; ok && val.Kind == KindNumber {
		c.PhoneNumber = val.Number
	}
	if val, ok := row[FieldDateOfBirth]; ok {
		if t, ok := ParseDate(val); ok {
			c.DateOfBirth = FormatTimestamp(t)
		}
	}

	if err := v.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Record{}, []FieldError{{Message: fmt.Sprintf("validate row: %v", err)}}
		}
		fieldErrs := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fe.Field(),
				Message: fieldMessages[fe.Field()],
			})
		}
		return Record{}, fieldErrs
	}

	return Record{
		CIN:         c.CIN,
		Address:     c.Address,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Gender:      Gender(c.Gender),
		DateOfBirth: c.DateOfBirth,
	}, nil
}

// Message renders the row error as "Row <n>: <msg>, <msg>".
func (e RowError) Message() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "Row " + strconv.Itoa(e.Row) + ": " + strings.Join(msgs, ", ")
}

func (e RowError) Error() string { return e.Message() }

// textOf returns the cell as text, or "" when it is absent or not text.
func textOf(row Row, field string) string {
	val, ok := row[field]
	if !ok || val.Kind != KindText {
		return ""
	}
	return val.Text
}

func isRequiredField(name string) bool {
	for _, f := range requiredFields {
		if f == name {
			return true
		}
	}
	return false
}
