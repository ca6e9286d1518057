package flatcsv

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// Encode renders ds as CSV text: the header row followed by one line per
// row, fields separated by the delimiter (default ';'), lines separated by
// "\n", without a trailing newline. A nil Dataset encodes to "".
func Encode(ds *Dataset, opts ...Options) string {
	var b strings.Builder
	_ = encode(&b, ds, resolveOptions(opts))
	return b.String()
}

// EncodeTo writes the same bytes Encode returns to w.
func EncodeTo(w io.Writer, ds *Dataset, opts ...Options) error {
	bw := bufio.NewWriter(w)
	if err := encode(bw, ds, resolveOptions(opts)); err != nil {
		return err
	}
	return bw.Flush()
}

type stringWriter interface {
	io.Writer
	io.StringWriter
	WriteByte(c byte) error
}

func encode(w stringWriter, ds *Dataset, opt Options) error {
	if ds == nil {
		return nil
	}
	var delim [utf8.UTFMax]byte
	dn := utf8.EncodeRune(delim[:], opt.Delimiter)

	writeLine := func(n int, field func(i int) string) error {
		for i := 0; i < n; i++ {
			if i > 0 {
				if _, err := w.Write(delim[:dn]); err != nil {
					return err
				}
			}
			if err := writeField(w, field(i), opt.Delimiter); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeLine(len(ds.Headers), func(i int) string { return ds.Headers[i] }); err != nil {
		return err
	}
	for _, r := range ds.Rows {
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		if err := writeLine(len(ds.Headers), func(i int) string { return r.Text(ds.Headers[i], ds.numbers) }); err != nil {
			return err
		}
	}
	return nil
}

// EscapeField applies the CSV quoting rule for delim: a value containing a
// double quote, the delimiter, CR or LF is wrapped in double quotes with
// inner quotes doubled; anything else is returned unchanged.
func EscapeField(s string, delim rune) string {
	if !needsQuotes(s, delim) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func needsQuotes(s string, delim rune) bool {
	return strings.ContainsAny(s, "\"\n\r") || strings.ContainsRune(s, delim)
}

func writeField(w stringWriter, s string, delim rune) error {
	if !needsQuotes(s, delim) {
		_, err := w.WriteString(s)
		return err
	}
	if err := w.WriteByte('"'); err != nil {
		return err
	}
	if _, err := w.WriteString(strings.ReplaceAll(s, `"`, `""`)); err != nil {
		return err
	}
	return w.WriteByte('"')
}
