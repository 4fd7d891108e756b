package cmd

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/auth"
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/arya-analytics/gatekeeper/pkg/storage"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	"github.com/arya-analytics/gatekeeper/pkg/store/memstore"
	"github.com/arya-analytics/gatekeeper/pkg/store/mongostore"
	"github.com/arya-analytics/gatekeeper/pkg/store/pebblestore"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	storePebble = "pebble"
	storeMongo  = "mongo"
	storeMem    = "mem"
)

func configureLogging() (*zap.Logger, error) {
	if viper.GetBool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newStorageConfig(logger *zap.Logger) storage.Config {
	return storage.Config{
		MemBacked: viper.GetBool("mem"),
		Dirname:   viper.GetString("data"),
		Logger:    logger.Named("storage"),
	}
}

func newAuthConfig() auth.Config {
	return auth.Config{
		UsernameField:  viper.GetString("username-field"),
		PasswordField:  viper.GetString("password-field"),
		CollectionName: viper.GetString("collection"),
		DefaultScheme:  viper.GetString("default-scheme"),
	}
}

// openStore opens the configured store backend. The returned closer releases it.
func openStore(ctx context.Context, logger *zap.Logger) (store.Store, func() error, error) {
	switch backend := viper.GetString("store"); backend {
	case storePebble:
		s, err := storage.Open(newStorageConfig(logger))
		if err != nil {
			return nil, nil, err
		}
		return pebblestore.Wrap(s.KV, logger.Named("pebblestore")), s.Close, nil
	case storeMongo:
		s, err := mongostore.Open(ctx, mongostore.Config{
			URI:      viper.GetString("mongo-uri"),
			Database: viper.GetString("mongo-database"),
			Logger:   logger.Named("mongostore"),
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return s.Close(context.Background()) }, nil
	case storeMem:
		return memstore.New(), func() error { return nil }, nil
	default:
		return nil, nil, errors.Newf("[cmd] - unknown store backend %q", backend)
	}
}

// withVerifier opens the logger, store and verifier, runs fn, and releases
// everything it opened.
func withVerifier(ctx context.Context, fn func(v *auth.Verifier) error) (err error) {
	logger, err := configureLogging()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s, closeStore, err := openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, closeStore())
	}()

	v, err := auth.NewVerifier(s, password.DefaultRegistry(), newAuthConfig(), logger.Named("auth"))
	if err != nil {
		return err
	}
	return fn(v)
}
