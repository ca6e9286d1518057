package source_test

import (
	"testing"

	"github.com/reoring/flatcsv/source"
	"github.com/reoring/flatcsv/source/gojson"
)

func TestLookup(t *testing.T) {
	d, err := source.Lookup("")
	if err != nil || d.Name() != "encoding/json" {
		t.Fatalf("default: %v %v", d, err)
	}
	d, err = source.Lookup(gojson.Name)
	if err != nil || d.Name() != gojson.Name {
		t.Fatalf("go-json: %v %v", d, err)
	}
	if _, err := source.Lookup("sonic"); err == nil {
		t.Fatalf("unknown driver should fail")
	}
}

func TestNames(t *testing.T) {
	got := source.Names()
	if len(got) != 2 || got[0] != "encoding/json" || got[1] != gojson.Name {
		t.Fatalf("names: %v", got)
	}
}
