package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/excelreader/internal/core"
)

const (
	header  = "cin,address,phoneNumber,email,gender,dateOfBirth\n"
	goodRow = "AB1,1 Main,555,a@b.com,male,1990-01-01\n"
	badRow  = "AB2,2 Main,556,nope,male,1990-01-01\n"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	code := run(root, args)
	return code, stdout.String(), stderr.String()
}

func TestValidate_JSON(t *testing.T) {
	path := writeFile(t, "people.csv", header+goodRow)

	code, stdout, _ := execute(t, "validate", path)

	require.Equal(t, ExitOK, code)
	var report Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "people.csv", report.File)
	assert.Equal(t, 1, report.Rows)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	require.Len(t, report.Data, 1)
	assert.Equal(t, core.Record{
		CIN:         "AB1",
		Address:     "1 Main",
		PhoneNumber: 555,
		Email:       "a@b.com",
		Gender:      core.GenderMale,
		DateOfBirth: "1990-01-01T00:00:00.000Z",
	}, report.Data[0])
}

func TestValidate_YAML(t *testing.T) {
	path := writeFile(t, "people.csv", header+goodRow+badRow)

	code, stdout, _ := execute(t, "validate", "--output", "yaml", path)

	require.Equal(t, ExitOK, code)
	var report Report
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, []string{"Row 2: Email is missing or invalid"}, report.Errors)
	require.Len(t, report.Data, 1)
	assert.Equal(t, "AB1", report.Data[0].CIN)
	assert.Equal(t, float64(555), report.Data[0].PhoneNumber)
}

func TestValidate_ExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		want    int
		stderr  string
	}{
		{name: "valid", content: header + goodRow, want: ExitOK},
		{name: "valid strict", content: header + goodRow, args: []string{"--strict"}, want: ExitOK},
		{name: "some rows dropped", content: header + goodRow + badRow, want: ExitOK},
		{name: "some rows dropped strict", content: header + goodRow + badRow, args: []string{"--strict"}, want: ExitInvalid},
		{name: "every row dropped", content: header + badRow, want: ExitInvalid},
		{name: "wrong columns", content: "cin,address\nAB1,1 Main\n", want: ExitInvalid},
		{name: "header only", content: header, want: ExitInvalid},
		{name: "too many rows", content: header + goodRow + goodRow, args: []string{"--max-rows", "1"}, want: ExitError, stderr: "(Code: FILE001)"},
		{name: "malformed csv", content: header + "\"unterminated,1,2\n", want: ExitError, stderr: "The spreadsheet could not be read (Code: FILE002)"},
		{name: "unknown output", content: header + goodRow, args: []string{"-o", "xml"}, want: ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "people.csv", tt.content)
			args := append([]string{"validate", path}, tt.args...)

			code, _, stderr := execute(t, args...)

			assert.Equal(t, tt.want, code, stderr)
			if tt.want != ExitOK {
				assert.Contains(t, stderr, "sheetcheck: ")
			}
			if tt.stderr != "" {
				assert.Contains(t, stderr, tt.stderr)
			}
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	code, stdout, stderr := execute(t, "validate", filepath.Join(t.TempDir(), "nope.xlsx"))

	assert.Equal(t, ExitError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "nope.xlsx")
}

func TestValidate_UsageErrors(t *testing.T) {
	code, _, _ := execute(t, "validate")
	assert.Equal(t, ExitError, code)

	code, _, _ = execute(t, "validate", "--bogus", "x.csv")
	assert.Equal(t, ExitError, code)
}

func TestTemplate_ThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")

	code, stdout, stderr := execute(t, "template", path)
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "wrote "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	sheetName := f.GetSheetList()[0]
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]any{"Z1", "9 Elm", 5550000, "z@q.io", "FEMALE", "2001-12-31"}))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	code, stdout, stderr = execute(t, "validate", "--strict", path)
	require.Equal(t, ExitOK, code, stderr)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Data, 1)
	assert.Equal(t, "2001-12-31T00:00:00.000Z", report.Data[0].DateOfBirth)
	assert.Equal(t, core.GenderFemale, report.Data[0].Gender)
}

func TestTemplate_BadPath(t *testing.T) {
	code, _, _ := execute(t, "template", filepath.Join(t.TempDir(), "missing", "dir", "t.xlsx"))
	assert.Equal(t, ExitError, code)
}

func TestExitStatus(t *testing.T) {
	rowErr := []core.RowError{{Row: 2, Fields: []core.FieldError{{Field: core.FieldEmail, Message: "Email is missing or invalid"}}}}
	rec := []core.Record{{CIN: "A"}}

	assert.NoError(t, exitStatus(core.ValidationResult{Valid: true}, true))
	assert.NoError(t, exitStatus(core.ValidationResult{Errors: []string{"Row 2: x"}, RowErrors: rowErr, Records: rec}, false))
	assert.Error(t, exitStatus(core.ValidationResult{Errors: []string{"Row 2: x"}, RowErrors: rowErr, Records: rec}, true))
	assert.Error(t, exitStatus(core.ValidationResult{Errors: []string{"Missing column: cin"}}, false))
}
