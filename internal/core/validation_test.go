package core

import (
	"reflect"
	"testing"
)

// validRow returns a row that passes every check.
func validRow() Row {
	return Row{
		FieldCIN:         Text("AB1"),
		FieldAddress:     Text("1 Main"),
		FieldPhoneNumber: Number(555),
		FieldEmail:       Text("a@b.com"),
		FieldGender:      Text("Female"),
		FieldDateOfBirth: Text("1990-01-01"),
	}
}

func withField(row Row, field string, v Value) Row {
	out := make(Row, len(row))
	for k, val := range row {
		out[k] = val
	}
	out[field] = v
	return out
}

func withoutField(row Row, field string) Row {
	out := make(Row, len(row))
	for k, val := range row {
		if k != field {
			out[k] = val
		}
	}
	return out
}

func TestValidate_AllFieldsValid(t *testing.T) {
	result := NewRowValidator().Validate([]Row{validRow()})

	if !result.Valid {
		t.Fatalf("Valid = false, errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
	if len(result.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(result.Records))
	}

	want := Record{
		CIN:         "AB1",
		Address:     "1 Main",
		PhoneNumber: 555,
		Email:       "a@b.com",
		Gender:      GenderFemale,
		DateOfBirth: "1990-01-01T00:00:00.000Z",
	}
	if result.Records[0] != want {
		t.Errorf("Record = %+v, want %+v", result.Records[0], want)
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	for _, rows := range [][]Row{nil, {}} {
		result := NewRowValidator().Validate(rows)
		if result.Valid {
			t.Error("Valid = true for empty input")
		}
		if !reflect.DeepEqual(result.Errors, []string{"No data rows found"}) {
			t.Errorf("Errors = %v, want [No data rows found]", result.Errors)
		}
	}
}

func TestValidate_ShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		first Row
		want  []string
	}{
		{
			name:  "extra column",
			first: withField(validRow(), "extra", Text("x")),
			want:  []string{"Extra column found: extra"},
		},
		{
			name:  "missing column",
			first: withoutField(validRow(), FieldEmail),
			want:  []string{"Missing column: email"},
		},
		{
			name:  "missing columns in required order",
			first: withoutField(withoutField(validRow(), FieldDateOfBirth), FieldCIN),
			want:  []string{"Missing column: cin", "Missing column: dateOfBirth"},
		},
		{
			name: "missing before extra, extras sorted",
			first: withField(withField(withoutField(validRow(), FieldGender),
				"zeta", Text("z")), "alpha", Text("a")),
			want: []string{
				"Missing column: gender",
				"Extra column found: alpha",
				"Extra column found: zeta",
			},
		},
		{
			name:  "column names are case sensitive",
			first: withField(withoutField(validRow(), FieldCIN), "CIN", Text("AB1")),
			want:  []string{"Missing column: cin", "Extra column found: CIN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A second, broken row proves rows are not examined after a shape failure.
			broken := Row{FieldCIN: Text("")}
			result := NewRowValidator().Validate([]Row{tt.first, broken})

			if result.Valid {
				t.Error("Valid = true, want false")
			}
			if !reflect.DeepEqual(result.Errors, tt.want) {
				t.Errorf("Errors = %q, want %q", result.Errors, tt.want)
			}
			if len(result.Records) != 0 {
				t.Errorf("Records = %v, want none", result.Records)
			}
			if len(result.RowErrors) != 0 {
				t.Errorf("RowErrors = %v, want none", result.RowErrors)
			}
		})
	}
}

func TestValidate_ShapeCheckedOnFirstRowOnly(t *testing.T) {
	second := withField(validRow(), "extra", Text("x"))
	result := NewRowValidator().Validate([]Row{validRow(), second})

	if !result.Valid {
		t.Fatalf("Valid = false, errors: %v", result.Errors)
	}
	if len(result.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(result.Records))
	}
}

func TestValidate_FieldChecks(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   Value
		wantErr string // "" means the row is valid
	}{
		// cin
		{"cin empty", FieldCIN, Text(""), "CIN is missing or invalid"},
		{"cin numeric", FieldCIN, Number(123), "CIN is missing or invalid"},
		{"cin blank cell", FieldCIN, Value{}, "CIN is missing or invalid"},
		{"cin whitespace kept", FieldCIN, Text(" "), ""},

		// address
		{"address empty", FieldAddress, Text(""), "Address is missing or invalid"},
		{"address bool", FieldAddress, Bool(true), "Address is missing or invalid"},

		// phoneNumber
		{"phone decimal", FieldPhoneNumber, Number(5.5), ""},
		{"phone negative", FieldPhoneNumber, Number(-1), ""},
		{"phone zero", FieldPhoneNumber, Number(0), "Phone number is missing or invalid"},
		{"phone text", FieldPhoneNumber, Text("555-1234"), "Phone number is missing or invalid"},

		// email
		{"email plain", FieldEmail, Text("not-an-email"), "Email is missing or invalid"},
		{"email no tld", FieldEmail, Text("a@b"), "Email is missing or invalid"},
		{"email with space", FieldEmail, Text("a b@c.com"), "Email is missing or invalid"},
		{"email two ats", FieldEmail, Text("a@b@c.com"), "Email is missing or invalid"},
		{"email subdomain", FieldEmail, Text("first.last@mail.example.org"), ""},

		// gender
		{"gender lower", FieldGender, Text("male"), ""},
		{"gender other", FieldGender, Text("Other"), ""},
		{"gender abbreviation", FieldGender, Text("F"), "Gender is missing or invalid (must be MALE, FEMALE, or OTHER)"},
		{"gender padded", FieldGender, Text(" MALE"), "Gender is missing or invalid (must be MALE, FEMALE, or OTHER)"},
		{"gender number", FieldGender, Number(1), "Gender is missing or invalid (must be MALE, FEMALE, or OTHER)"},

		// dateOfBirth
		{"dob US", FieldDateOfBirth, Text("01/15/1990"), ""},
		{"dob serial", FieldDateOfBirth, Number(32874), ""},
		{"dob garbage", FieldDateOfBirth, Text("yesterday"), "Date of birth is missing or invalid"},
		{"dob impossible", FieldDateOfBirth, Text("1990-02-30"), "Date of birth is missing or invalid"},
		{"dob bool", FieldDateOfBirth, Bool(false), "Date of birth is missing or invalid"},
		{"dob serial past 9999", FieldDateOfBirth, Number(2958466), "Date of birth is missing or invalid"},
		{"dob phone number", FieldDateOfBirth, Number(5551234567), "Date of birth is missing or invalid"},
		{"dob huge number", FieldDateOfBirth, Number(1e300), "Date of birth is missing or invalid"},
		{"dob unpadded ISO", FieldDateOfBirth, Text("1990-1-1"), ""},
	}

	v := NewRowValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := withField(validRow(), tt.field, tt.value)
			if tt.value.Kind == KindEmpty {
				row = withoutField(validRow(), tt.field)
			}

			rec, errs := v.ValidateRow(row)
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Fatalf("ValidateRow() errors = %v, want none", errs)
				}
				if rec.CIN == "" {
					t.Error("ValidateRow() returned an empty record")
				}
				return
			}

			if len(errs) != 1 {
				t.Fatalf("ValidateRow() errors = %v, want exactly one", errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
			if errs[0].Message != tt.wantErr {
				t.Errorf("Message = %q, want %q", errs[0].Message, tt.wantErr)
			}
		})
	}
}

func TestValidate_GenderNormalized(t *testing.T) {
	result := NewRowValidator().Validate([]Row{withField(validRow(), FieldGender, Text("male"))})

	if !result.Valid {
		t.Fatalf("Valid = false, errors: %v", result.Errors)
	}
	if got := result.Records[0].Gender; got != GenderMale {
		t.Errorf("Gender = %q, want %q", got, GenderMale)
	}
}

func TestValidate_RowErrorMessage(t *testing.T) {
	row := withField(withField(validRow(), FieldCIN, Text("")), FieldGender, Text("F"))
	result := NewRowValidator().Validate([]Row{row})

	want := []string{
		"Row 1: CIN is missing or invalid, Gender is missing or invalid (must be MALE, FEMALE, or OTHER)",
	}
	if result.Valid {
		t.Error("Valid = true, want false")
	}
	if !reflect.DeepEqual(result.Errors, want) {
		t.Errorf("Errors = %q, want %q", result.Errors, want)
	}
	if len(result.Records) != 0 {
		t.Errorf("Records = %v, want none", result.Records)
	}
}

func TestValidate_AllFieldsInvalidInOrder(t *testing.T) {
	row := Row{
		FieldCIN:         Number(1),
		FieldAddress:     Text(""),
		FieldPhoneNumber: Text("x"),
		FieldEmail:       Text("x"),
		FieldGender:      Text("x"),
		FieldDateOfBirth: Text("x"),
	}
	result := NewRowValidator().Validate([]Row{row})

	want := "Row 1: CIN is missing or invalid, Address is missing or invalid, " +
		"Phone number is missing or invalid, Email is missing or invalid, " +
		"Gender is missing or invalid (must be MALE, FEMALE, or OTHER), " +
		"Date of birth is missing or invalid"
	if len(result.Errors) != 1 || result.Errors[0] != want {
		t.Errorf("Errors = %q, want [%q]", result.Errors, want)
	}

	fields := make([]string, 0, 6)
	for _, fe := range result.RowErrors[0].Fields {
		fields = append(fields, fe.Field)
	}
	if !reflect.DeepEqual(fields, RequiredFields()) {
		t.Errorf("error fields = %v, want %v", fields, RequiredFields())
	}
}

func TestValidate_MixedRows(t *testing.T) {
	bad := withField(validRow(), FieldEmail, Text("not-an-email"))
	rows := []Row{validRow(), bad, validRow()}

	result := NewRowValidator().Validate(rows)

	if result.Valid {
		t.Error("Valid = true, want false")
	}
	if !reflect.DeepEqual(result.Errors, []string{"Row 2: Email is missing or invalid"}) {
		t.Errorf("Errors = %q", result.Errors)
	}
	if len(result.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(result.Records))
	}
	if len(result.RowErrors) != 1 || result.RowErrors[0].Row != 2 {
		t.Errorf("RowErrors = %+v, want one error for row 2", result.RowErrors)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	rows := []Row{
		validRow(),
		withField(validRow(), FieldGender, Text("unknown")),
		withField(validRow(), FieldDateOfBirth, Number(32874.5)),
	}
	v := NewRowValidator()

	first := v.Validate(rows)
	second := v.Validate(rows)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !reflect.DeepEqual(rows[0], validRow()) {
		t.Error("Validate modified its input")
	}
}

func TestCheckShape_ExactSet(t *testing.T) {
	if errs := CheckShape(validRow()); len(errs) != 0 {
		t.Errorf("CheckShape() = %v, want none", errs)
	}
}

func TestValidationResult_Err(t *testing.T) {
	if err := (ValidationResult{Valid: true}).Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	r := ValidationResult{Errors: []string{"Missing column: cin", "Missing column: email"}}
	if got := MapError(r.Err()).Code; got != "VAL001" {
		t.Errorf("MapError(Err()).Code = %q, want VAL001", got)
	}
}
