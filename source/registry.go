// Package source looks up the JSON drivers available to flatcsv by name.
package source

import (
	"fmt"
	"sort"

	"github.com/reoring/flatcsv"
	"github.com/reoring/flatcsv/source/gojson"
)

var drivers = map[string]func() flatcsv.JSONDriver{
	flatcsv.DefaultJSONDriver().Name(): flatcsv.DefaultJSONDriver,
	gojson.Name:                        gojson.Driver,
}

// Lookup returns the driver registered under name. An empty name selects the
// default encoding/json driver.
func Lookup(name string) (flatcsv.JSONDriver, error) {
	if name == "" {
		return flatcsv.DefaultJSONDriver(), nil
	}
	mk, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("unknown json driver %q (known: %v)", name, Names())
	}
	return mk(), nil
}

// Names lists the registered driver names in sorted order.
func Names() []string {
	out := make([]string, 0, len(drivers))
	for n := range drivers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
