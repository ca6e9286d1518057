package flatcsv

import "time"

// Convert parses text and renders the resulting Dataset as CSV in one step.
func Convert(text string, opts ...Options) (*Conversion, error) {
	ds, err := Parse(text, opts...)
	if err != nil {
		return nil, err
	}
	return &Conversion{Headers: ds.Headers, Rows: ds.Rows, CSV: Encode(ds, opts...)}, nil
}

// DownloadName returns the file name offered for a conversion made at t,
// "dados-YYYY-MM-DD.<ext>" with the date taken in UTC.
func DownloadName(t time.Time, ext string) string {
	return "dados-" + t.UTC().Format(time.DateOnly) + "." + ext
}
