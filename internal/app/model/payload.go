package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingAttributes means a required attribute is absent from the body.
	ErrMissingAttributes = errors.New("the request body is missing at least one of the required attributes")
	// ErrInvalidAttributes means an attribute is present with an unusable JSON type.
	ErrInvalidAttributes = errors.New("the request body has an attribute of the wrong type")
)

// Payload is a flat JSON request body keyed by attribute name.
type Payload map[string]json.RawMessage

// Has reports whether name is present, whatever its value.
func (p Payload) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Validate reports whether every required attribute is present. Values are
// not inspected, so "", 0 and false all count as present.
func Validate(p Payload, required []string) bool {
	for _, name := range required {
		if !p.Has(name) {
			return false
		}
	}
	return true
}

// BuildRecord copies the named attributes, and any of the optional ones that
// are present, into a new payload. Everything else in p is dropped.
func BuildRecord(p Payload, names []string, optional ...string) Payload {
	record := make(Payload, len(names)+len(optional))
	for _, name := range names {
		if v, ok := p[name]; ok {
			record[name] = v
		}
	}
	for _, name := range optional {
		if v, ok := p[name]; ok {
			record[name] = v
		}
	}
	return record
}

// Decode fills dst from the payload. A null attribute or a value whose JSON
// type does not fit the destination field is reported as ErrInvalidAttributes.
// Attributes named in nullable may be null and decode to their zero value.
func (p Payload) Decode(dst interface{}, nullable ...string) error {
	for name, raw := range p {
		if isNull(raw) && !contains(nullable, name) {
			return fmt.Errorf("%w: %s is null", ErrInvalidAttributes, name)
		}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttributes, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttributes, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
