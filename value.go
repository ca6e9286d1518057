package flatcsv

import j "github.com/goccy/go-json"

// Kind is the JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON value. Objects keep their members in document order
// and numbers keep their literal text. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	s       string // string content or number literal
	items   []Value
	members []Member
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a JSON number from its literal text. lit must be a valid JSON
// number literal.
func Number(lit string) Value { return Value{kind: KindNumber, s: lit} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a JSON array of items.
func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

// Object returns a JSON object with members in the given order. Keys are
// expected to be unique.
func Object(members ...Member) Value { return Value{kind: KindObject, members: members} }

// Field is shorthand for Member{Key: key, Value: v}.
func Field(key string, v Value) Member { return Member{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean held by a KindBool value.
func (v Value) BoolValue() bool { return v.b }

// Text returns the string content of a KindString value or the literal of a
// KindNumber value. It is empty for other kinds.
func (v Value) Text() string { return v.s }

// Items returns the elements of an array. Callers must not modify the result.
func (v Value) Items() []Value { return v.items }

// Members returns the members of an object in document order. Callers must
// not modify the result.
func (v Value) Members() []Member { return v.members }

// Get looks up an object member by key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// MarshalJSON renders v as compact JSON, keeping member order and number
// literals.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil, NumberLiteral), nil
}

// JSON renders v as compact JSON with numbers formatted according to mode.
// HTML characters are not escaped.
func (v Value) JSON(mode NumberMode) string {
	return string(v.appendJSON(nil, mode))
}

func (v Value) appendJSON(dst []byte, mode NumberMode) []byte {
	switch v.kind {
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, numberJSON(v.s, mode)...)
	case KindString:
		return appendQuoted(dst, v.s)
	case KindArray:
		dst = append(dst, '[')
		for i, it := range v.items {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = it.appendJSON(dst, mode)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i, m := range v.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuoted(dst, m.Key)
			dst = append(dst, ':')
			dst = m.Value.appendJSON(dst, mode)
		}
		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

func appendQuoted(dst []byte, s string) []byte {
	q, err := j.MarshalWithOption(s, j.DisableHTMLEscape())
	if err != nil {
		return append(dst, `""`...)
	}
	return append(dst, q...)
}

// valueBuilder assembles Values for the engine decoder.
type valueBuilder struct{}

func (valueBuilder) Null() Value             { return Null() }
func (valueBuilder) Bool(b bool) Value       { return Bool(b) }
func (valueBuilder) Number(lit string) Value { return Number(lit) }
func (valueBuilder) String(s string) Value   { return String(s) }
func (valueBuilder) Array(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}
func (valueBuilder) Object(keys []string, vals []Value) Value {
	members := make([]Member, len(keys))
	for i, k := range keys {
		members[i] = Member{Key: k, Value: vals[i]}
	}
	return Value{kind: KindObject, members: members}
}
