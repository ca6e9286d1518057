package flatcsv

import "slices"

// Normalize turns a parsed document into row candidates, each an object:
//
//   - an array yields its elements; non-object elements follow the NonObject
//     policy,
//   - an object with array-valued keys yields one row per element of the
//     primary array (or per combination, under ArrayCrossProduct), merged
//     with the object's other keys,
//   - an object without array-valued keys yields itself,
//   - anything else yields nothing.
func Normalize(v Value, opts ...Options) []Value {
	return normalize(v, resolveOptions(opts))
}

func normalize(v Value, opt Options) []Value {
	switch v.Kind() {
	case KindArray:
		out := make([]Value, 0, len(v.Items()))
		for _, el := range v.Items() {
			if el.Kind() == KindObject {
				out = append(out, el)
				continue
			}
			if opt.NonObject == NonObjectWrap {
				out = append(out, Object(Field(opt.ValueKey, el)))
			}
		}
		return out
	case KindObject:
		return expandObject(v, opt)
	default:
		return nil
	}
}

func expandObject(obj Value, opt Options) []Value {
	var scalars, arrays []Member
	for _, m := range obj.Members() {
		if m.Value.Kind() == KindArray {
			arrays = append(arrays, m)
		} else {
			scalars = append(scalars, m)
		}
	}
	if len(arrays) == 0 {
		return []Value{obj}
	}
	if opt.Arrays == ArrayFirst {
		arrays = arrays[:1]
	}

	combos := [][]Member{nil}
	for _, a := range arrays {
		next := make([][]Member, 0, len(combos)*len(a.Value.Items()))
		for _, prefix := range combos {
			for _, el := range a.Value.Items() {
				next = append(next, append(slices.Clip(prefix), Member{Key: a.Key, Value: el}))
			}
		}
		combos = next
	}

	out := make([]Value, 0, len(combos))
	for _, combo := range combos {
		if len(scalars) == 0 && len(combo) == 1 && combo[0].Value.Kind() == KindObject && !opt.KeepEnvelope {
			out = append(out, combo[0].Value)
			continue
		}
		members := make([]Member, 0, len(scalars)+len(combo))
		members = append(members, scalars...)
		members = append(members, combo...)
		out = append(out, Object(members...))
	}
	return out
}
