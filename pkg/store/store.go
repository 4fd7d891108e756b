// Package store defines the boundary to the document database holding user records.
// Backends live in sub-packages.
package store

import (
	"context"
	"fmt"
	"math"
	"reflect"
)

// KeyField is the document field holding a document's identifier.
const KeyField = "_id"

// Document is a schemaless record.
type Document map[string]interface{}

// Key returns the identifier of the document, or an empty string if it has none.
func (d Document) Key() string {
	switch k := d[KeyField].(type) {
	case nil:
		return ""
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(k)
	}
}

// String returns the value of field if it holds a string.
func (d Document) String(field string) (string, bool) {
	v, ok := d[field].(string)
	return v, ok
}

// Copy returns a shallow copy of the document.
func (d Document) Copy() Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Filter selects the documents whose fields equal every value in the filter. Numbers
// are compared by value regardless of their Go type, as a document database would.
// An empty filter matches every document.
type Filter map[string]interface{}

// Matches reports whether d satisfies the filter.
func (f Filter) Matches(d Document) bool {
	for k, v := range f {
		dv, ok := d[k]
		if !ok || !equal(dv, v) {
			return false
		}
	}
	return true
}

// Store is a document database. Implementations must be safe for concurrent use.
// They perform no caching and no retries.
type Store interface {
	// Find returns every document in collection matching filter. Duplicates are
	// returned as they are stored.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	// Save writes doc to collection and returns its identifier, assigning one if
	// doc doesn't carry a KeyField.
	Save(ctx context.Context, collection string, doc Document) (string, error)
}

// FindByUsername returns every record in collection whose usernameField equals
// username.
func FindByUsername(
	ctx context.Context,
	s Store,
	collection, usernameField, username string,
) ([]Document, error) {
	var docs []Document
	return docs, NewRetrieve().
		Collection(collection).
		WhereField(usernameField, username).
		Entries(&docs).
		Exec(ctx, s)
}

func equal(a, b interface{}) bool {
	if ai, ok := asInt(a); ok {
		if bi, ok := asInt(b); ok {
			return ai == bi
		}
	}
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func asInt(v interface{}) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return 0, false
}
