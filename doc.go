// Package flatcsv converts arbitrary JSON documents into delimiter-separated
// tables.
//
// The pipeline:
//
// - Parse: strict single-document JSON decoding through a pluggable JSONDriver
// (encoding/json by default, go-json via source/gojson) that keeps object keys
// in document order.
// - Normalize: arrays, objects and objects wrapping arrays become a list of
// row objects.
// - Flatten: nested objects collapse into underscore-joined keys; arrays are
// kept as JSON text.
// - Encode: sorted headers and rows render as ';'-separated CSV with
// RFC 4180 style quoting.
//
// Failures are reported as *ValidationError with one of three kinds:
// EmptyInput, InvalidSyntax or NoDataFound.
//
// Typical usage:
//
//	ds, err := flatcsv.Parse(text)
//	if errors.Is(err, flatcsv.ErrInvalidSyntax) { ... }
//	csv := flatcsv.Encode(ds)
//
//	conv, err := flatcsv.Convert(text, flatcsv.Options{Delimiter: ','})
package flatcsv
