// Package mongostore implements store.Store on top of a MongoDB database.
package mongostore

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type Config struct {
	// URI is the MongoDB connection string.
	URI string
	// Database is the database holding the user collections.
	Database string
	Logger   *zap.Logger
}

// Store is a MongoDB backed store.Store. Timeouts and retries are left to the driver
// configuration carried by URI.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("[mongostore] - uri and database are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, store.Wrap(err, "[mongostore] - connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.CombineErrors(
			store.Wrap(err, "[mongostore] - ping"),
			client.Disconnect(ctx),
		)
	}
	cfg.Logger.Debug("connected to mongo", zap.String("database", cfg.Database))
	s := Wrap(client.Database(cfg.Database), cfg.Logger)
	s.client = client
	return s, nil
}

// Wrap wraps an existing database handle. Close is a no-op for wrapped handles.
func Wrap(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Close disconnects the client opened by Open.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Drop drops the database and every collection in it.
func (s *Store) Drop(ctx context.Context) error {
	return store.Wrap(s.db.Drop(ctx), "[mongostore] - drop")
}

// Find implements store.Store.
func (s *Store) Find(
	ctx context.Context,
	collection string,
	filter store.Filter,
) ([]store.Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter))
	if err != nil {
		return nil, store.Wrapf(err, "[mongostore] - find in %s", collection)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, store.Wrapf(err, "[mongostore] - read cursor of %s", collection)
	}
	docs := make([]store.Document, len(raw))
	for i, m := range raw {
		docs[i] = fromBSON(m)
	}
	return docs, nil
}

// Save implements store.Store. Documents carrying a key are upserted by key, others
// are inserted and receive a generated ObjectID.
func (s *Store) Save(ctx context.Context, collection string, doc store.Document) (string, error) {
	coll := s.db.Collection(collection)
	m := toBSON(store.Filter(doc))
	if key := doc.Key(); key != "" {
		id := keyToID(key)
		m[store.KeyField] = id
		_, err := coll.ReplaceOne(ctx, bson.M{store.KeyField: id}, m, options.Replace().SetUpsert(true))
		if err != nil {
			return "", store.Wrapf(err, "[mongostore] - replace in %s", collection)
		}
		return key, nil
	}
	res, err := coll.InsertOne(ctx, m)
	if err != nil {
		return "", store.Wrapf(err, "[mongostore] - insert into %s", collection)
	}
	key := idToKey(res.InsertedID)
	s.logger.Debug("inserted document", zap.String("collection", collection), zap.String("key", key))
	return key, nil
}

func toBSON(f store.Filter) bson.M {
	m := make(bson.M, len(f))
	for k, v := range f {
		m[k] = v
	}
	return m
}

func fromBSON(m bson.M) store.Document {
	d := make(store.Document, len(m))
	for k, v := range m {
		if k == store.KeyField {
			d[k] = idToKey(v)
			continue
		}
		d[k] = v
	}
	return d
}

func idToKey(id interface{}) string {
	if oid, ok := id.(bson.ObjectID); ok {
		return oid.Hex()
	}
	return store.Document{store.KeyField: id}.Key()
}

// keyToID converts a key handed out by idToKey back to the form it's stored in.
func keyToID(key string) interface{} {
	if oid, err := bson.ObjectIDFromHex(key); err == nil {
		return oid
	}
	return key
}
