//go:build gojson

package benchmarks_test

import (
	"github.com/reoring/flatcsv"
	drv "github.com/reoring/flatcsv/source/gojson"
)

func init() {
	flatcsv.SetJSONDriver(drv.Driver())
}
