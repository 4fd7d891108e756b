package store

import (
	"context"
	"github.com/cockroachdb/errors"
)

// Retrieve is a query for documents in a single collection.
type Retrieve struct {
	collection string
	filter     Filter
	entries    *[]Document
}

// NewRetrieve opens a new Retrieve query.
func NewRetrieve() Retrieve { return Retrieve{filter: Filter{}} }

// Collection sets the collection to query.
func (r Retrieve) Collection(name string) Retrieve {
	r.collection = name
	return r
}

// WhereField restricts the query to documents whose field equals value.
func (r Retrieve) WhereField(field string, value interface{}) Retrieve {
	f := make(Filter, len(r.filter)+1)
	for k, v := range r.filter {
		f[k] = v
	}
	f[field] = value
	r.filter = f
	return r
}

// Entries binds the slice the results are written into.
func (r Retrieve) Entries(entries *[]Document) Retrieve {
	r.entries = entries
	return r
}

// Exec executes the query against s.
func (r Retrieve) Exec(ctx context.Context, s Store) error {
	if r.collection == "" {
		return errors.New("[store] - retrieve requires a collection")
	}
	if r.entries == nil {
		return errors.New("[store] - retrieve requires bound entries")
	}
	docs, err := s.Find(ctx, r.collection, r.filter)
	if err != nil {
		return err
	}
	*r.entries = docs
	return nil
}
