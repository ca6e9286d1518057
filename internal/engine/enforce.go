package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource applying duplicate key rejection,
// max depth checks, and max bytes truncation while tokens stream by.

// EnforceOptions controls runtime enforcement behavior. Zero values disable
// the corresponding check.
type EnforceOptions struct {
	RejectDuplicates bool
	MaxDepth         int
	MaxBytes         int64
}

// Enabled reports whether any check is active.
func (o EnforceOptions) Enabled() bool {
	return o.RejectDuplicates || o.MaxDepth > 0 || o.MaxBytes > 0
}

// Violation codes.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeMaxDepth     = "max_depth"
	CodeMaxBytes     = "max_bytes"
)

// Violation is returned when an enforced limit is hit. Path is a JSON Pointer.
type Violation struct {
	Code    string
	Path    string
	Message string
	Offset  int64
}

func (v *Violation) Error() string {
	return v.Message + " at " + v.Path
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	path       string
	keys       map[string]struct{}
	pendingKey string
	nextIndex  int
}

// WrapWithEnforcement returns a TokenSource that enforces opt. When no check
// is enabled inner is returned unchanged.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if !opt.Enabled() {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.childPath()
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f.kind = kindObject
			if e.opt.RejectDuplicates {
				f.keys = make(map[string]struct{})
			}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.violation(CodeMaxDepth, path, "max depth exceeded", tok)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			top.pendingKey = tok.String
			if top.keys != nil {
				if _, dup := top.keys[tok.String]; dup {
					return Token{}, e.violation(CodeDuplicateKey, joinPointer(top.path, tok.String), "key '"+tok.String+"' duplicated", tok)
				}
				top.keys[tok.String] = struct{}{}
			}
		}
	default:
		e.childPath()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.inner.Location(); off > e.opt.MaxBytes {
			return Token{}, e.violation(CodeMaxBytes, e.currentPath(), "max bytes exceeded", tok)
		}
	}
	return tok, nil
}

// childPath returns the pointer of the value about to start and advances the
// array index of the enclosing container.
func (e *enforcingTokenSource) childPath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return joinPointer(top.path, top.pendingKey)
}

func (e *enforcingTokenSource) currentPath() string {
	if n := len(e.stack); n > 0 {
		return e.stack[n-1].path
	}
	return ""
}

func (e *enforcingTokenSource) violation(code, path, msg string, tok Token) *Violation {
	if path == "" {
		path = "/"
	}
	return &Violation{Code: code, Path: path, Message: msg, Offset: tok.Offset}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
