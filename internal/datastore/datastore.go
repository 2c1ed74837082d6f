// Package datastore is the document store the API persists entities in.
//
// Records live in named kinds, are addressed by a store-assigned integer id and
// carry a flat attribute map. The surface is deliberately small: point get,
// put, delete, and a query with at most one equality filter. Numbers read back
// from any backend are json.Number values.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotFound is returned by Get when no record exists under the key.
	ErrNotFound = errors.New("datastore: no such entity")
	// ErrInvalidKey is returned for keys without a kind or with a negative id.
	ErrInvalidKey = errors.New("datastore: invalid key")
)

// Key addresses a record. A zero ID marks an incomplete key that Put completes.
type Key struct {
	Kind string
	ID   int64
}

func NewKey(kind string, id int64) Key {
	return Key{Kind: kind, ID: id}
}

func IncompleteKey(kind string) Key {
	return Key{Kind: kind}
}

func (k Key) Incomplete() bool {
	return k.ID == 0
}

func (k Key) String() string {
	return k.Kind + "/" + strconv.FormatInt(k.ID, 10)
}

func (k Key) valid() bool {
	return k.Kind != "" && k.ID >= 0
}

// Properties is the attribute map of a record.
type Properties map[string]interface{}

// Entity is a record together with its key.
type Entity struct {
	Key        Key
	Properties Properties
}

// Filter restricts a query to records whose Property equals Value.
type Filter struct {
	Property string
	Value    interface{}
}

// Query selects records of one kind, optionally narrowed by an equality filter.
type Query struct {
	Kind   string
	Filter *Filter
}

func NewQuery(kind string) *Query {
	return &Query{Kind: kind}
}

// FilterEqual returns a copy of q restricted to property == value.
func (q *Query) FilterEqual(property string, value interface{}) *Query {
	return &Query{Kind: q.Kind, Filter: &Filter{Property: property, Value: value}}
}

// Matches reports whether props satisfy the query filter.
func (q *Query) Matches(props Properties) bool {
	if q.Filter == nil {
		return true
	}
	v, ok := props[q.Filter.Property]
	if !ok {
		return false
	}
	return Canonical(v) == Canonical(q.Filter.Value)
}

// Store is implemented by every backend.
type Store interface {
	// Get loads the record under key or returns ErrNotFound.
	Get(ctx context.Context, key Key) (*Entity, error)
	// Put writes the entity. An incomplete key is completed with a fresh id;
	// a complete key overwrites any existing record.
	Put(ctx context.Context, e *Entity) (Key, error)
	// Delete removes the record under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
	// Query returns matching records ordered by ascending id.
	Query(ctx context.Context, q *Query) ([]*Entity, error)
	Ping(ctx context.Context) error
	Close() error
}

// Transactor is implemented by backends that can apply several mutations
// atomically. fn receives a Store bound to the transaction.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error
}

// Canonical renders a scalar attribute as text so that equality filters treat
// 1, 1.0, json.Number("1") and "1" as the same value.
func Canonical(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return canonicalNumber(string(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func canonicalNumber(s string) string {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

// encodeProperties and decodeProperties give every backend the same value
// semantics: a record is stored as a JSON document and read back with
// json.Number for numeric attributes.
func encodeProperties(props Properties) ([]byte, error) {
	if props == nil {
		props = Properties{}
	}
	return json.Marshal(props)
}

func decodeProperties(data []byte) (Properties, error) {
	props := Properties{}
	if len(data) == 0 {
		return props, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return props, nil
}
