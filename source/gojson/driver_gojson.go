// Package gojson provides a JSON driver backed by github.com/goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/flatcsv"
	eng "github.com/reoring/flatcsv/internal/engine"
)

// Name identifies the driver in configuration.
const Name = "go-json"

// Driver returns a flatcsv.JSONDriver backed by goccy/go-json.
func Driver() flatcsv.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) flatcsv.Source {
	return flatcsv.SourceFromEngine(NewReader(r))
}
func (driverGoJSON) NewBytes(b []byte) flatcsv.Source {
	return flatcsv.SourceFromEngine(NewBytes(b))
}
func (driverGoJSON) Name() string { return Name }

// ---- engine.TokenSource implementation using go-json Decoder ----

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	dec   *j.Decoder
	stack []frame
	err   error
}

// NewReader reads r fully and wraps it into an engine.TokenSource.
func NewReader(r io.Reader) eng.TokenSource {
	data, err := io.ReadAll(r)
	if err != nil {
		return &source{err: err}
	}
	return NewBytes(data)
}

// NewBytes wraps a byte slice into an engine.TokenSource. The go-json token
// stream skips separators without checking them, so the document is
// validated up front and the first NextToken call surfaces any syntax error.
func NewBytes(b []byte) eng.TokenSource {
	if len(bytes.TrimSpace(b)) > 0 {
		var probe any
		if err := j.Unmarshal(b, &probe); err != nil {
			return &source{err: wrapError(err)}
		}
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{dec: dec}
}

func (s *source) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, wrapError(err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		default:
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: -1}, nil
	case j.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	default:
		s.valueDone()
		return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
	}
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) valueDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject {
		s.stack[n-1].expectingKey = true
	}
}

func (s *source) Location() int64 { return -1 }

func wrapError(err error) error {
	var se *j.SyntaxError
	if errors.As(err, &se) {
		return &eng.SyntaxError{Msg: se.Error(), Offset: se.Offset}
	}
	return &eng.SyntaxError{Msg: err.Error(), Offset: -1}
}
