// Package middleware holds the framework-neutral parts of the HTTP
// conversion boundary: context storage for datasets, boundary defaults and
// error payloads.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/reoring/flatcsv"
)

// KindTooLarge is reported when the request body exceeds the byte limit.
const KindTooLarge = "too-large"

// ctxKeyDataset is a typed context key for storing a parsed Dataset.
type ctxKeyDataset struct{}

// ContextWithDataset attaches ds to the context.
func ContextWithDataset(ctx context.Context, ds *flatcsv.Dataset) context.Context {
	return context.WithValue(ctx, ctxKeyDataset{}, ds)
}

// DatasetFromContext retrieves the Dataset stored by ContextWithDataset.
func DatasetFromContext(ctx context.Context) (*flatcsv.Dataset, bool) {
	ds, ok := ctx.Value(ctxKeyDataset{}).(*flatcsv.Dataset)
	return ds, ok && ds != nil
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries.
// - Nesting deeper than 512 levels is rejected
// - Bodies larger than 10 MiB are rejected
func DefaultOptions() flatcsv.Options {
	return flatcsv.Options{
		MaxDepth: 512,
		MaxBytes: 10 << 20,
	}
}

// StatusFor maps a conversion error to an HTTP status.
func StatusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, flatcsv.ErrNoDataFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, flatcsv.ErrEmptyInput), errors.Is(err, flatcsv.ErrInvalidSyntax):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the "error" member of an error response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Offset  *int64 `json:"offset,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ErrorPayload shapes err for JSON responses.
func ErrorPayload(err error) map[string]any {
	var (
		body ErrorBody
		mbe  *http.MaxBytesError
	)
	if ve, ok := flatcsv.AsValidationError(err); ok {
		body = ErrorBody{Kind: string(ve.Kind), Message: ve.Message, Path: ve.Path}
		if ve.Offset >= 0 {
			off := ve.Offset
			body.Offset = &off
		}
	} else if errors.As(err, &mbe) {
		body = ErrorBody{Kind: KindTooLarge, Message: err.Error()}
	} else {
		body = ErrorBody{Kind: "internal", Message: http.StatusText(http.StatusInternalServerError)}
	}
	return map[string]any{"error": body}
}

// Lang picks the message language for a request: an explicit query value
// first, then the first Accept-Language tag, then fallback.
func Lang(query, acceptLanguage, fallback string) string {
	if query != "" {
		return query
	}
	if acceptLanguage != "" {
		first, _, _ := strings.Cut(acceptLanguage, ",")
		first, _, _ = strings.Cut(first, ";")
		if first = strings.TrimSpace(first); first != "" && first != "*" {
			return first
		}
	}
	return fallback
}
