// Package templates holds the HTML components of the upload page.
//
// Components are written in .templ files; run `templ generate` after
// editing them.
package templates

import "github.com/JonMunkholm/excelreader/internal/core"

// PageState is everything the upload page can show. At most one of Alert,
// Errors and the record table is rendered, in that order of precedence.
type PageState struct {
	FileName  string
	Submitted bool
	Records   []core.Record
	Errors    []string
	Alert     *core.UserMessage
}

// personCells returns the table cells of rec, in column order.
func personCells(rec core.Record) []string {
	return []string{
		rec.CIN,
		rec.Address,
		rec.PhoneDisplay(),
		rec.Email,
		string(rec.Gender),
		rec.DateOfBirth,
	}
}
