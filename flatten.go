package flatcsv

// Flatten collapses a nested object into a single-level Row. Nested object
// keys are joined to their parent with the configured separator (default
// "_"), arrays are kept whole as JSON text and null becomes an empty string.
// A non-object input yields an empty Row.
//
// When two paths produce the same key, the value written last in document
// traversal order wins and the key keeps the position of its first write.
func Flatten(obj Value, prefix string, opts ...Options) Row {
	return flatten(obj, prefix, resolveOptions(opts))
}

func flatten(obj Value, prefix string, opt Options) Row {
	var r Row
	flattenInto(&r, obj, prefix, opt)
	return r
}

func flattenInto(r *Row, obj Value, prefix string, opt Options) {
	for _, m := range obj.Members() {
		key := m.Key
		if prefix != "" {
			key = prefix + opt.Separator + m.Key
		}
		v := m.Value
		switch v.Kind() {
		case KindNull:
			r.set(key, StringCell(""))
		case KindArray:
			r.set(key, ArrayCell(v.JSON(opt.NumberMode)))
		case KindObject:
			flattenInto(r, v, key, opt)
		case KindString:
			r.set(key, StringCell(v.Text()))
		case KindNumber:
			r.set(key, NumberCell(v.Text()))
		case KindBool:
			r.set(key, BoolCell(v.BoolValue()))
		}
	}
}
