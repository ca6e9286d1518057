package engine

import (
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // literal text as it appeared in the input
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SyntaxError reports malformed input. Msg carries the tokenizer's diagnostic.
type SyntaxError struct {
	Msg    string
	Offset int64
}

func (e *SyntaxError) Error() string { return e.Msg }

// ErrNoInput is returned by DecodeDocument when the source yields no token at all.
var ErrNoInput = errors.New("no input")

// Builder assembles decoded values. Object receives keys in document order;
// a repeated key keeps its first position and takes the last value.
type Builder[V any] interface {
	Null() V
	Bool(b bool) V
	Number(lit string) V
	String(s string) V
	Array(items []V) V
	Object(keys []string, vals []V) V
}

// DecodeDocument decodes exactly one value from src and requires the source
// to be exhausted afterwards.
func DecodeDocument[V any](src TokenSource, b Builder[V]) (V, error) {
	var zero V
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return zero, ErrNoInput
		}
		return zero, err
	}
	v, err := decodeValue(src, tok, b)
	if err != nil {
		return zero, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return zero, err
		}
		return zero, &SyntaxError{Msg: "unexpected data after top-level value", Offset: src.Location()}
	}
	return v, nil
}

func next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if errors.Is(err, io.EOF) {
		return Token{}, &SyntaxError{Msg: "unexpected end of JSON input", Offset: src.Location()}
	}
	return tok, err
}

func decodeValue[V any](src TokenSource, tok Token, b Builder[V]) (V, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, b)
	case KindBeginArray:
		return decodeArray(src, b)
	case KindString:
		return b.String(tok.String), nil
	case KindNumber:
		return b.Number(tok.Number), nil
	case KindBool:
		return b.Bool(tok.Bool), nil
	case KindNull:
		return b.Null(), nil
	default:
		var zero V
		return zero, &SyntaxError{Msg: "unexpected token", Offset: tok.Offset}
	}
}

func decodeObject[V any](src TokenSource, b Builder[V]) (V, error) {
	var (
		zero  V
		keys  []string
		vals  []V
		index map[string]int
	)
	for {
		tok, err := next(src)
		if err != nil {
			return zero, err
		}
		if tok.Kind == KindEndObject {
			return b.Object(keys, vals), nil
		}
		if tok.Kind != KindKey {
			return zero, &SyntaxError{Msg: "expected object key", Offset: tok.Offset}
		}
		vt, err := next(src)
		if err != nil {
			return zero, err
		}
		v, err := decodeValue(src, vt, b)
		if err != nil {
			return zero, err
		}
		if i, ok := index[tok.String]; ok {
			vals[i] = v
			continue
		}
		if index == nil {
			index = make(map[string]int)
		}
		index[tok.String] = len(keys)
		keys = append(keys, tok.String)
		vals = append(vals, v)
	}
}

func decodeArray[V any](src TokenSource, b Builder[V]) (V, error) {
	var (
		zero  V
		items []V
	)
	for {
		tok, err := next(src)
		if err != nil {
			return zero, err
		}
		if tok.Kind == KindEndArray {
			return b.Array(items), nil
		}
		v, err := decodeValue(src, tok, b)
		if err != nil {
			return zero, err
		}
		items = append(items, v)
	}
}
