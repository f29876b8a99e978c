// Package core provides the business logic for person spreadsheet imports.
//
// This package contains the domain rules independent of any UI or transport
// layer. It is used by the HTTP server, the sheetcheck CLI, and tests without
// modification.
//
// # Records
//
// A [Record] is one validated person with six fields: cin, address,
// phoneNumber, email, gender and dateOfBirth. Decoded spreadsheet cells are
// untyped, so rows arrive as [Row] values, a map from header name to a tagged
// [Value].
//
// # Validation
//
// [RowValidator.Validate] checks the column set once, against the first row,
// and stops there if any column is missing or unexpected. Otherwise every row
// is checked and either becomes a Record or contributes one message:
//
//	Row 2: Email is missing or invalid, Date of birth is missing or invalid
//
// The result is valid only when no message was produced. The message texts
// are part of the upload API and must not change.
//
// # Uploads
//
// [Service.ProcessUpload] decodes a file with the configured [Decoder],
// applies the row limit, and validates. An [UploadLimiter] bounds how many
// uploads are processed at once.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, empty)
//   - VAL001-VAL003: Validation errors (columns, rows)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
//   - RATE001: Rate limiting
package core
