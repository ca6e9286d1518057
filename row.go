package flatcsv

import "strconv"

// CellKind is the type of a flattened value.
type CellKind int

const (
	CellString CellKind = iota
	CellNumber
	CellBool
	// CellArray holds the JSON text of an array that was kept whole.
	CellArray
)

// Cell is one flattened scalar. JSON null flattens to an empty CellString.
type Cell struct {
	kind CellKind
	text string
	b    bool
}

// StringCell returns a string cell.
func StringCell(s string) Cell { return Cell{kind: CellString, text: s} }

// NumberCell returns a number cell holding a JSON number literal.
func NumberCell(lit string) Cell { return Cell{kind: CellNumber, text: lit} }

// BoolCell returns a boolean cell.
func BoolCell(b bool) Cell { return Cell{kind: CellBool, b: b} }

// ArrayCell returns a cell carrying serialized array JSON.
func ArrayCell(json string) Cell { return Cell{kind: CellArray, text: json} }

func (c Cell) Kind() CellKind { return c.kind }

// Raw returns the string content, the number literal or the array JSON.
func (c Cell) Raw() string { return c.text }

// BoolValue returns the boolean held by a CellBool cell.
func (c Cell) BoolValue() bool { return c.b }

// Format stringifies the cell for output.
func (c Cell) Format(mode NumberMode) string {
	switch c.kind {
	case CellNumber:
		return formatNumber(c.text, mode)
	case CellBool:
		return strconv.FormatBool(c.b)
	default:
		return c.text
	}
}

func (c Cell) String() string { return c.Format(NumberCanonical) }

// MarshalJSON keeps the cell's JSON type; array cells stay strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellNumber:
		return []byte(c.text), nil
	case CellBool:
		return []byte(strconv.FormatBool(c.b)), nil
	default:
		return appendQuoted(nil, c.text), nil
	}
}

// Row is a flattened record: an ordered mapping of unique keys to cells.
type Row struct {
	keys  []string
	cells map[string]Cell
}

// RowField pairs a key with a cell for NewRow.
type RowField struct {
	Key  string
	Cell Cell
}

// NewRow builds a Row from fields in order. A repeated key overwrites the
// earlier cell in place.
func NewRow(fields ...RowField) Row {
	var r Row
	for _, f := range fields {
		r.set(f.Key, f.Cell)
	}
	return r
}

// set stores c under key. A key written twice keeps its first position and
// takes the last cell.
func (r *Row) set(key string, c Cell) {
	if r.cells == nil {
		r.cells = make(map[string]Cell)
	}
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = c
}

// Len returns the number of keys.
func (r Row) Len() int { return len(r.keys) }

// Keys returns the keys in insertion order.
func (r Row) Keys() []string { return append([]string(nil), r.keys...) }

// Get returns the cell stored under key.
func (r Row) Get(key string) (Cell, bool) {
	c, ok := r.cells[key]
	return c, ok
}

// Text returns the formatted cell under key, or "" when the key is missing.
func (r Row) Text(key string, mode NumberMode) string {
	c, ok := r.cells[key]
	if !ok {
		return ""
	}
	return c.Format(mode)
}

// MarshalJSON renders the row as an object in insertion order.
func (r Row) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range r.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendQuoted(buf, k)
		buf = append(buf, ':')
		cb, _ := r.cells[k].MarshalJSON()
		buf = append(buf, cb...)
	}
	return append(buf, '}'), nil
}
