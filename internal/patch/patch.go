// Package patch sniffs the shape of pasted JSON before it is merged onto a
// builder. A paste is either a full document object, a bare list of
// entries, or rejected with a reason that tells a syntax error apart from a
// well-formed value of the wrong shape.
package patch

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
)

// Shape tells which form the pasted text took
type Shape int

const (
	// ShapeDocument is a JSON object carrying the list field
	ShapeDocument Shape = iota + 1
	// ShapeList is a bare array of entry objects
	ShapeList
)

func (s Shape) String() string {
	switch s {
	case ShapeDocument:
		return "document"
	case ShapeList:
		return "list"
	}
	return "unknown"
}

// Rejection reasons under the "reason" meta key
const (
	ReasonSyntax = "syntax"
	ReasonShape  = "shape"
)

// Kind describes the list field a document kind is recognised by
type Kind struct {
	ListField string
	ItemField string
}

var (
	// Team documents list their members
	Team = Kind{ListField: "members", ItemField: "character_name"}
	// TierList documents list their entries
	TierList = Kind{ListField: "entries", ItemField: "character_name"}
)

// Patch is an accepted paste. Fields holds the raw top-level values; a bare
// list is exposed under the kind's list field.
type Patch struct {
	Shape  Shape
	Fields map[string]json.RawMessage
}

// Parse classifies raw in a fixed order: invalid JSON, object, single
// wrapped document, list of entries. Anything else is a shape rejection.
func Parse(raw string, kind Kind) (Patch, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return Patch{}, syntaxError("input is empty")
	}
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return Patch{}, syntaxError(err.Error())
	}

	switch data[0] {
	case '{':
		fields, _ := AsObject(data)
		if _, ok := fields[kind.ListField]; !ok {
			return Patch{}, shapeErrorf("object has no %q field", kind.ListField)
		}
		return Patch{Shape: ShapeDocument, Fields: fields}, nil
	case '[':
		items, _ := AsArray(data)
		if len(items) == 1 {
			if fields, ok := AsObject(items[0]); ok {
				if _, ok := fields[kind.ListField]; ok {
					return Patch{Shape: ShapeDocument, Fields: fields}, nil
				}
			}
		}
		if len(items) == 0 {
			return Patch{}, shapeErrorf("array is empty")
		}
		for i, item := range items {
			fields, ok := AsObject(item)
			if !ok {
				return Patch{}, shapeErrorf("element %d is not an object", i)
			}
			if _, ok := AsString(fields[kind.ItemField]); !ok {
				return Patch{}, shapeErrorf("element %d has no %q string", i, kind.ItemField)
			}
		}
		return Patch{
			Shape:  ShapeList,
			Fields: map[string]json.RawMessage{kind.ListField: data},
		}, nil
	default:
		return Patch{}, shapeErrorf("expected an object or an array")
	}
}

func syntaxError(detail string) error {
	return errors.InvalidArgumentf("Invalid JSON: %s", detail).
		WithMeta("reason", ReasonSyntax)
}

func shapeErrorf(format string, args ...any) error {
	return errors.InvalidArgumentf("Valid JSON but wrong shape: "+format, args...).
		WithMeta("reason", ReasonShape)
}

// Has reports whether field is present, whatever its type
func (p Patch) Has(field string) bool {
	_, ok := p.Fields[field]
	return ok
}

// String returns field when it is a JSON string
func (p Patch) String(field string) (string, bool) {
	return AsString(p.Fields[field])
}

// Number returns field when it is a JSON number
func (p Patch) Number(field string) (float64, bool) {
	return AsNumber(p.Fields[field])
}

// Array returns field when it is a JSON array
func (p Patch) Array(field string) ([]json.RawMessage, bool) {
	return AsArray(p.Fields[field])
}

// Object returns field when it is a JSON object
func (p Patch) Object(field string) (map[string]json.RawMessage, bool) {
	return AsObject(p.Fields[field])
}

func leading(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// AsString decodes raw when it is a JSON string
func AsString(raw json.RawMessage) (string, bool) {
	if leading(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// AsNumber decodes raw when it is a JSON number
func AsNumber(raw json.RawMessage) (float64, bool) {
	c := leading(raw)
	if c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// AsArray decodes raw when it is a JSON array
func AsArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if leading(raw) != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// AsObject decodes raw when it is a JSON object
func AsObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if leading(raw) != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// AsStrings decodes raw when it is an array made only of strings
func AsStrings(raw json.RawMessage) ([]string, bool) {
	items, ok := AsArray(raw)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := AsString(item)
		if !ok {
			return nil, false
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, true
}

// AsStringMap decodes raw when it is an object whose values are all strings
func AsStringMap(raw json.RawMessage) (map[string]string, bool) {
	fields, ok := AsObject(raw)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		s, ok := AsString(v)
		if !ok {
			return nil, false
		}
		out[k] = s
	}
	return out, true
}
