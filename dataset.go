package flatcsv

// Dataset is the result of a successful Parse: the sorted header set and one
// flattened Row per normalized input element. A Dataset is never modified
// after Parse returns it.
type Dataset struct {
	Headers []string
	Rows    []Row

	numbers NumberMode
}

// NumberMode reports how number cells of this dataset are rendered.
func (ds *Dataset) NumberMode() NumberMode { return ds.numbers }

// Records returns the rows as string slices aligned with Headers. Missing
// keys become empty strings.
func (ds *Dataset) Records() [][]string {
	out := make([][]string, len(ds.Rows))
	for i, r := range ds.Rows {
		rec := make([]string, len(ds.Headers))
		for j, h := range ds.Headers {
			rec[j] = r.Text(h, ds.numbers)
		}
		out[i] = rec
	}
	return out
}

// Conversion bundles a Dataset with its rendered CSV text.
type Conversion struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
	CSV     string   `json:"csv"`
}
