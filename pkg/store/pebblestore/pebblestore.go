// Package pebblestore implements store.Store on top of a pebble key-value engine.
// Documents are BSON encoded under <collection>/<key>.
package pebblestore

import (
	"bytes"
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const keySeparator = '/'

// Store is a pebble backed store.Store. Find scans every document in the
// collection, so it suits the small user collections it is meant for.
type Store struct {
	db     *pebble.DB
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Wrap wraps an open pebble database. The caller remains responsible for closing db.
func Wrap(db *pebble.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Find implements store.Store.
func (s *Store) Find(
	ctx context.Context,
	collection string,
	filter store.Filter,
) (docs []store.Document, err error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	prefix := collectionPrefix(collection)
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	defer func() {
		err = errors.CombineErrors(err, store.Wrap(iter.Close(), "[pebblestore] - close iterator"))
	}()
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, store.Wrap(err, "[pebblestore] - find")
		}
		d, err := decode(iter.Value())
		if err != nil {
			return nil, store.Wrapf(err, "[pebblestore] - decode %s", iter.Key())
		}
		if filter.Matches(d) {
			docs = append(docs, d)
		}
	}
	return docs, store.Wrap(iter.Error(), "[pebblestore] - iterate")
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, collection string, doc store.Document) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", store.Wrap(err, "[pebblestore] - save")
	}
	doc = doc.Copy()
	key := doc.Key()
	if key == "" {
		key = uuid.New().String()
	}
	doc[store.KeyField] = key
	b, err := bson.Marshal(bson.M(doc))
	if err != nil {
		return "", store.Wrap(err, "[pebblestore] - encode")
	}
	if err := s.db.Set(documentKey(collection, key), b, pebble.Sync); err != nil {
		return "", store.Wrap(err, "[pebblestore] - set")
	}
	s.logger.Debug("saved document", zap.String("collection", collection), zap.String("key", key))
	return key, nil
}

func validateCollection(collection string) error {
	if collection == "" || bytes.IndexByte([]byte(collection), keySeparator) >= 0 {
		return errors.Mark(errors.Newf("[pebblestore] - invalid collection name %q", collection), store.Error)
	}
	return nil
}

func collectionPrefix(collection string) []byte {
	return append([]byte(collection), keySeparator)
}

func documentKey(collection, key string) []byte {
	return append(collectionPrefix(collection), key...)
}

// prefixUpperBound returns the smallest key greater than every key starting with
// prefix. prefix always ends in keySeparator, so the last byte can be incremented.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}

func decode(b []byte) (store.Document, error) {
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return store.Document(m), nil
}
