// Package sheet decodes uploaded spreadsheets into rows keyed by header name.
//
// The first worksheet is read. Its first non-blank row is the header and
// every later row becomes a core.Row:
//
//   - Blank cells are left out of the row, so the key is absent
//   - Fully blank rows are skipped
//   - Blank headers are named __EMPTY, __EMPTY_1, ...
//   - Repeated headers get _1, _2 suffixes
//
// Workbooks (.xlsx and friends) are read with excelize and keep their cell
// types. CSV cells are typed by inspection: numbers, TRUE/FALSE, or text.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/excelreader/internal/core"
)

var (
	// ErrUnsupportedFormat is returned for content that is neither a workbook nor text.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("workbook has no sheets")
)

// Format identifies a spreadsheet container.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// emptyHeader names header cells that are blank.
const emptyHeader = "__EMPTY"

var (
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}

	// numericRegex matches integers, decimals, and scientific notation.
	numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// FormatFromFilename maps a file extension to a Format. Legacy .xls and
// unknown extensions return FormatUnknown and are sniffed by Decode.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// Sniff guesses the format from content: zip archives are workbooks and
// valid UTF-8 text is CSV.
func Sniff(data []byte) (Format, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	if utf8.Valid(data) {
		return FormatCSV, nil
	}
	return FormatUnknown, ErrUnsupportedFormat
}

// DecodeFile decodes data using the file name as a format hint. Zip content
// is always read as a workbook, whatever the extension says.
func DecodeFile(fileName string, data []byte) ([]core.Row, error) {
	format := FormatFromFilename(fileName)
	if format != FormatXLSX && bytes.HasPrefix(data, zipMagic) {
		format = FormatXLSX
	}
	return Decode(data, format)
}

// Decode reads the first sheet of data as rows. FormatUnknown is sniffed.
func Decode(data []byte, format Format) ([]core.Row, error) {
	if format == FormatUnknown {
		var err error
		if format, err = Sniff(data); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatXLSX:
		return decodeXLSX(data)
	case FormatCSV:
		return decodeCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// cell is a positioned raw value before header mapping.
type cell struct {
	col   int
	value core.Value
}

func decodeXLSX(data []byte) ([]core.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	grid := make([][]cell, len(raw))
	for r, cols := range raw {
		for c, text := range cols {
			if text == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(name, axis)
			if err != nil {
				return nil, fmt.Errorf("read cell %s: %w", axis, err)
			}
			grid[r] = append(grid[r], cell{col: c, value: workbookValue(typ, text)})
		}
	}

	return buildRows(grid), nil
}

// workbookValue types a raw cell value by its stored cell type.
func workbookValue(typ excelize.CellType, text string) core.Value {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeDate, excelize.CellTypeError:
		return core.Text(text)
	case excelize.CellTypeBool:
		return core.Bool(text == "1" || strings.EqualFold(text, "true"))
	default:
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return core.Number(n)
		}
		return core.Text(text)
	}
}

func decodeCSV(data []byte) ([]core.Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	grid := make([][]cell, len(records))
	for i, fields := range records {
		for c, text := range fields {
			if text == "" {
				continue
			}
			grid[i] = append(grid[i], cell{col: c, value: inferValue(text)})
		}
	}

	return buildRows(grid), nil
}

// inferValue types a CSV field: numbers, booleans, otherwise text.
func inferValue(text string) core.Value {
	trimmed := strings.TrimSpace(text)
	if numericRegex.MatchString(trimmed) {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return core.Number(n)
		}
	}
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return core.Bool(true)
	case "FALSE":
		return core.Bool(false)
	}
	return core.Text(text)
}

// buildRows maps a sparse grid onto header names. The used range starts at
// the first non-blank row and the leftmost non-blank column.
func buildRows(grid [][]cell) []core.Row {
	start := 0
	for start < len(grid) && len(grid[start]) == 0 {
		start++
	}
	if start == len(grid) {
		return nil
	}

	minCol, maxCol := -1, -1
	for _, cells := range grid[start:] {
		for _, c := range cells {
			if minCol < 0 || c.col < minCol {
				minCol = c.col
			}
			if c.col > maxCol {
				maxCol = c.col
			}
		}
	}

	headerText := make([]string, maxCol-minCol+1)
	for _, c := range grid[start] {
		headerText[c.col-minCol] = c.value.String()
	}
	headers := HeaderNames(headerText)

	var rows []core.Row
	for _, cells := range grid[start+1:] {
		if len(cells) == 0 {
			continue
		}
		row := make(core.Row, len(cells))
		for _, c := range cells {
			row[headers[c.col-minCol]] = c.value
		}
		rows = append(rows, row)
	}
	return rows
}

// HeaderNames turns header cell texts into unique keys. Blank cells become
// __EMPTY and repeats get a numeric suffix: a, a, "" -> a, a_1, __EMPTY.
func HeaderNames(cells []string) []string {
	names := make([]string, len(cells))
	seen := make(map[string]int, len(cells))

	for i, text := range cells {
		base := text
		if base == "" {
			base = emptyHeader
		}

		name := base
		if counter := seen[base]; counter == 0 {
			seen[base] = 1
		} else {
			for {
				name = base + "_" + strconv.Itoa(counter)
				counter++
				if seen[name] == 0 {
					break
				}
			}
			seen[base] = counter
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}
