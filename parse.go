package flatcsv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	eng "github.com/reoring/flatcsv/internal/engine"
)

// Parse validates text as a single JSON document, normalizes it into rows,
// flattens every row and derives the sorted header set. It returns either a
// complete Dataset or a *ValidationError; there is no partial result.
func Parse(text string, opts ...Options) (*Dataset, error) {
	return ParseBytes([]byte(text), opts...)
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte, opts ...Options) (*Dataset, error) {
	opt := resolveOptions(opts)
	root, err := decodeBytes(data, opt)
	if err != nil {
		return nil, err
	}
	return build(root, opt)
}

// ParseReader reads r to the end and parses its content. When MaxBytes is set
// the read stops one byte past the cap. Read failures are returned wrapped,
// not as a ValidationError.
func ParseReader(r io.Reader, opts ...Options) (*Dataset, error) {
	opt := resolveOptions(opts)
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("flatcsv: read input: %w", err)
	}
	return ParseBytes(data, opt)
}

// ParseValue decodes text into a Value without normalizing it. The same
// EmptyInput and InvalidSyntax rules as Parse apply.
func ParseValue(text string, opts ...Options) (Value, error) {
	return decodeBytes([]byte(text), resolveOptions(opts))
}

func decodeBytes(data []byte, opt Options) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, newValidationError(EmptyInput, opt, "")
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return Value{}, syntaxError(&eng.Violation{
			Code:    eng.CodeMaxBytes,
			Path:    "/",
			Message: "max bytes exceeded",
			Offset:  opt.MaxBytes,
		}, opt)
	}
	return decodeSource(opt.Driver.NewBytes(data), opt)
}

func decodeSource(src Source, opt Options) (Value, error) {
	ts := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		RejectDuplicates: opt.Strictness.OnDuplicateKey == Error,
		MaxDepth:         opt.MaxDepth,
		MaxBytes:         opt.MaxBytes,
	})
	v, err := eng.DecodeDocument[Value](ts, valueBuilder{})
	if err != nil {
		if errors.Is(err, eng.ErrNoInput) {
			return Value{}, newValidationError(EmptyInput, opt, "")
		}
		return Value{}, syntaxError(err, opt)
	}
	return v, nil
}

// build runs normalization, flattening and header collection over a decoded
// document.
func build(root Value, opt Options) (*Dataset, error) {
	candidates := normalize(root, opt)
	if len(candidates) == 0 {
		return nil, newValidationError(NoDataFound, opt, "")
	}

	rows := make([]Row, len(candidates))
	seen := make(map[string]struct{})
	var headers []string
	for i, c := range candidates {
		rows[i] = flatten(c, "", opt)
		for _, k := range rows[i].keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				headers = append(headers, k)
			}
		}
	}
	if len(headers) == 0 {
		return nil, newValidationError(NoDataFound, opt, "")
	}
	sort.Strings(headers)
	return &Dataset{Headers: headers, Rows: rows, numbers: opt.NumberMode}, nil
}
