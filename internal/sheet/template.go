package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/excelreader/internal/core"
)

// TemplateSheetName is the name of the only worksheet in the template.
const TemplateSheetName = "People"

// templateRows is how far down the gender drop-down reaches.
const templateRows = 10000

// NewTemplate builds a workbook whose first row is exactly the required
// header. The gender column offers a drop-down of the allowed values.
// The caller must Close the returned file.
func NewTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TemplateSheetName); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeTemplate(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeTemplate(f *excelize.File) error {
	headers := core.RequiredFields()
	if err := f.SetSheetRow(TemplateSheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0EBF5"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(TemplateSheetName, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(TemplateSheetName, "A", lastCol, 20); err != nil {
		return err
	}

	// Keep the header visible while scrolling.
	if err := f.SetPanes(TemplateSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	genders := core.AllowedGenders()
	keys := make([]string, len(genders))
	for i, g := range genders {
		keys[i] = string(g)
	}
	genderCol, err := excelize.ColumnNumberToName(fieldColumn(core.FieldGender))
	if err != nil {
		return err
	}
	dv := excelize.NewDataValidation(true)
	dv.SetSqref(fmt.Sprintf("%s2:%s%d", genderCol, genderCol, templateRows))
	if err := dv.SetDropList(keys); err != nil {
		return err
	}
	dv.SetError(excelize.DataValidationErrorStyleStop, "Invalid gender", "Choose MALE, FEMALE, or OTHER")
	if err := f.AddDataValidation(TemplateSheetName, dv); err != nil {
		return fmt.Errorf("gender drop-down: %w", err)
	}

	return nil
}

// fieldColumn returns the 1-based column of a required field in the template.
func fieldColumn(field string) int {
	for i, name := range core.RequiredFields() {
		if name == field {
			return i + 1
		}
	}
	return 0
}

// WriteTemplate writes the template workbook to w.
func WriteTemplate(w io.Writer) error {
	f, err := NewTemplate()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
