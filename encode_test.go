package flatcsv_test

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/flatcsv"
)

func TestEncode_QuotingRules(t *testing.T) {
	cases := map[string]string{
		"plain":      "plain",
		"x;y":        `"x;y"`,
		`say "hi"`:   `"say ""hi"""`,
		"a\nb":       "\"a\nb\"",
		"a\rb":       "\"a\rb\"",
		" leading":   " leading",
		"vírgula,ok": "vírgula,ok",
		"":           "",
	}
	for in, want := range cases {
		if got := flatcsv.EscapeField(in, ';'); got != want {
			t.Fatalf("EscapeField(%q): got %q want %q", in, got, want)
		}
	}
	if got := flatcsv.EscapeField("a,b", ','); got != `"a,b"` {
		t.Fatalf("comma delimiter: got %q", got)
	}
}

func TestEncode_Layout(t *testing.T) {
	ds, err := flatcsv.Parse(`[{"a":1,"b":{"c":2}},{"a":3,"d":true}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := flatcsv.Encode(ds)
	if want := "a;b_c;d\n1;2;\n3;;true"; got != want {
		t.Fatalf("csv: got %q want %q", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("no trailing newline expected")
	}
	if n := strings.Count(got, "\n"); n != len(ds.Rows) {
		t.Fatalf("line count: got %d want %d", n+1, len(ds.Rows)+1)
	}
}

func TestEncode_RoundTripThroughCSVReader(t *testing.T) {
	in := `[
		{"nome":"x;y","obs":"say \"hi\"","multi":"l1\nl2"},
		{"nome":"plain","n":1.5e2,"tags":["a","b"]}
	]`
	ds, err := flatcsv.Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := csv.NewReader(strings.NewReader(flatcsv.Encode(ds)))
	r.Comma = ';'
	r.FieldsPerRecord = len(ds.Headers)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("csv reader: %v", err)
	}
	if !reflect.DeepEqual(records[0], ds.Headers) {
		t.Fatalf("header: got %v want %v", records[0], ds.Headers)
	}
	if !reflect.DeepEqual(records[1:], ds.Records()) {
		t.Fatalf("records: got %q want %q", records[1:], ds.Records())
	}
	if got := ds.Records()[1]; got[indexOf(ds.Headers, "n")] != "150" || got[indexOf(ds.Headers, "tags")] != `["a","b"]` {
		t.Fatalf("second record: %q", got)
	}
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func TestEncode_CustomDelimiter(t *testing.T) {
	conv, err := flatcsv.Convert(`[{"a":"1,5","b":"x;y"}]`, flatcsv.Options{Delimiter: ','})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "a,b\n\"1,5\",x;y"; conv.CSV != want {
		t.Fatalf("csv: got %q want %q", conv.CSV, want)
	}

	conv, err = flatcsv.Convert(`[{"a":1,"b":2}]`, flatcsv.Options{Delimiter: '\t'})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.CSV != "a\tb\n1\t2" {
		t.Fatalf("tab csv: %q", conv.CSV)
	}
}

func TestEncode_InvalidDelimiterFallsBack(t *testing.T) {
	for _, d := range []rune{'"', '\n', '\r'} {
		if flatcsv.ValidDelimiter(d) {
			t.Fatalf("%q should be rejected", d)
		}
		conv, err := flatcsv.Convert(`[{"a":1,"b":2}]`, flatcsv.Options{Delimiter: d})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conv.CSV != "a;b\n1;2" {
			t.Fatalf("delimiter %q: csv %q", d, conv.CSV)
		}
	}
}

func TestEncodeTo_MatchesEncode(t *testing.T) {
	ds, err := flatcsv.Parse(flatcsv.SampleJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := flatcsv.EncodeTo(&buf, ds); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	if buf.String() != flatcsv.Encode(ds) {
		t.Fatalf("EncodeTo and Encode differ")
	}
	if flatcsv.Encode(nil) != "" {
		t.Fatalf("nil dataset should encode to empty text")
	}
}

func TestEncode_NumberModes(t *testing.T) {
	in := `[{"n":1.0},{"n":1e21},{"n":1e-7},{"n":0.000001},{"n":-0},{"n":12345678901234567890},{"n":2.50}]`
	ds, err := flatcsv.Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "n\n1\n1e+21\n1e-7\n0.000001\n0\n12345678901234567000\n2.5"
	if got := flatcsv.Encode(ds); got != want {
		t.Fatalf("canonical: got %q want %q", got, want)
	}

	ds, err = flatcsv.Parse(in, flatcsv.Options{NumberMode: flatcsv.NumberLiteral})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "n\n1.0\n1e21\n1e-7\n0.000001\n-0\n12345678901234567890\n2.50"
	if got := flatcsv.Encode(ds); got != want {
		t.Fatalf("literal: got %q want %q", got, want)
	}
}

func TestEncode_NumbersBeyondFloat64(t *testing.T) {
	in := `[{"a":1e400,"b":-1e400,"c":1e-400,"t":[1e400,2]}]`
	ds, err := flatcsv.Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a;b;c;t\nInfinity;-Infinity;0;[null,2]"
	if got := flatcsv.Encode(ds); got != want {
		t.Fatalf("canonical: got %q want %q", got, want)
	}

	ds, err = flatcsv.Parse(in, flatcsv.Options{NumberMode: flatcsv.NumberLiteral})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "a;b;c;t\n1e400;-1e400;1e-400;[1e400,2]"
	if got := flatcsv.Encode(ds); got != want {
		t.Fatalf("literal: got %q want %q", got, want)
	}
}
