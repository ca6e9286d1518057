package flatcsv_test

import (
	"reflect"
	"testing"

	"github.com/reoring/flatcsv"
)

func mustValue(t *testing.T, text string) flatcsv.Value {
	t.Helper()
	v, err := flatcsv.ParseValue(text)
	if err != nil {
		t.Fatalf("ParseValue(%s): %v", text, err)
	}
	return v
}

func TestNormalize_Shapes(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`[{"a":1},{"b":2}]`, []string{`{"a":1}`, `{"b":2}`}},
		{`{"a":1}`, []string{`{"a":1}`}},
		{`{"a":1,"xs":[1,2]}`, []string{`{"a":1,"xs":1}`, `{"a":1,"xs":2}`}},
		{`{"env":[{"a":1},{"a":2}]}`, []string{`{"a":1}`, `{"a":2}`}},
		{`{"env":[1,{"a":2}]}`, []string{`{"env":1}`, `{"a":2}`}},
		{`{"xs":[1],"ys":[2]}`, []string{`{"xs":1}`}},
		{`[1,"s"]`, []string{`{"value":1}`, `{"value":"s"}`}},
		{`42`, nil},
		{`"s"`, nil},
		{`true`, nil},
		{`null`, nil},
	}
	for _, tc := range cases {
		rows := flatcsv.Normalize(mustValue(t, tc.in))
		var got []string
		for _, r := range rows {
			if r.Kind() != flatcsv.KindObject {
				t.Fatalf("%s: candidate %s is not an object", tc.in, r.Kind())
			}
			got = append(got, r.JSON(flatcsv.NumberLiteral))
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_CrossProductDoesNotAlias(t *testing.T) {
	v := mustValue(t, `{"a":[1,2],"b":[3,4],"c":[5,6]}`)
	rows := flatcsv.Normalize(v, flatcsv.Options{Arrays: flatcsv.ArrayCrossProduct})
	if len(rows) != 8 {
		t.Fatalf("rows: got %d want 8", len(rows))
	}
	seen := map[string]bool{}
	for _, r := range rows {
		s := r.JSON(flatcsv.NumberLiteral)
		if seen[s] {
			t.Fatalf("duplicate combination %s", s)
		}
		seen[s] = true
	}
	if got := rows[0].JSON(flatcsv.NumberLiteral); got != `{"a":1,"b":3,"c":5}` {
		t.Fatalf("first combination: %s", got)
	}
	if got := rows[7].JSON(flatcsv.NumberLiteral); got != `{"a":2,"b":4,"c":6}` {
		t.Fatalf("last combination: %s", got)
	}
}

func TestFlatten_Rules(t *testing.T) {
	obj := flatcsv.Object(
		flatcsv.Field("s", flatcsv.String("x")),
		flatcsv.Field("n", flatcsv.Number("7")),
		flatcsv.Field("b", flatcsv.Bool(true)),
		flatcsv.Field("z", flatcsv.Null()),
		flatcsv.Field("o", flatcsv.Object(
			flatcsv.Field("p", flatcsv.Object(flatcsv.Field("q", flatcsv.String("deep")))),
			flatcsv.Field("e", flatcsv.Object()),
		)),
		flatcsv.Field("arr", flatcsv.Array(flatcsv.Number("1"), flatcsv.String("a/b"))),
	)
	r := flatcsv.Flatten(obj, "")
	if got, want := r.Keys(), []string{"s", "n", "b", "z", "o_p_q", "arr"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys: got %v want %v", got, want)
	}
	wantText := map[string]string{"s": "x", "n": "7", "b": "true", "z": "", "o_p_q": "deep", "arr": `[1,"a/b"]`}
	for k, want := range wantText {
		if got := r.Text(k, flatcsv.NumberCanonical); got != want {
			t.Fatalf("%s: got %q want %q", k, got, want)
		}
	}
	if c, _ := r.Get("arr"); c.Kind() != flatcsv.CellArray {
		t.Fatalf("arr kind: %v", c.Kind())
	}
	if c, _ := r.Get("z"); c.Kind() != flatcsv.CellString {
		t.Fatalf("null should flatten to an empty string cell")
	}
}

func TestFlatten_PrefixAndSeparator(t *testing.T) {
	obj := flatcsv.Object(flatcsv.Field("a", flatcsv.Object(flatcsv.Field("b", flatcsv.Number("1")))))
	r := flatcsv.Flatten(obj, "root", flatcsv.Options{Separator: "."})
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"root.a.b"}) {
		t.Fatalf("keys: %v", got)
	}
	if r := flatcsv.Flatten(flatcsv.Number("1"), ""); r.Len() != 0 {
		t.Fatalf("non-object input should flatten to an empty row")
	}
}

func TestRow_MarshalJSONKeepsTypesAndOrder(t *testing.T) {
	r := flatcsv.NewRow(
		flatcsv.RowField{Key: "z", Cell: flatcsv.NumberCell("1.50")},
		flatcsv.RowField{Key: "a", Cell: flatcsv.StringCell("<b>")},
		flatcsv.RowField{Key: "m", Cell: flatcsv.BoolCell(false)},
		flatcsv.RowField{Key: "t", Cell: flatcsv.ArrayCell(`[1]`)},
		flatcsv.RowField{Key: "a", Cell: flatcsv.StringCell("again")},
	)
	b, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(b), `{"z":1.50,"a":"again","m":false,"t":"[1]"}`; got != want {
		t.Fatalf("json: got %s want %s", got, want)
	}
}

func TestValue_Get(t *testing.T) {
	v := mustValue(t, `{"a":{"b":[1,2]}}`)
	a, ok := v.Get("a")
	if !ok || a.Kind() != flatcsv.KindObject {
		t.Fatalf("a: %v %v", a.Kind(), ok)
	}
	b, ok := a.Get("b")
	if !ok || len(b.Items()) != 2 {
		t.Fatalf("b: %v", b.JSON(flatcsv.NumberLiteral))
	}
	if _, ok := v.Get("missing"); ok {
		t.Fatalf("missing key reported present")
	}
	if _, ok := flatcsv.Number("1").Get("a"); ok {
		t.Fatalf("non-object Get should report absent")
	}
}
