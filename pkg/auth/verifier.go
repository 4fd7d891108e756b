package auth

import (
	"context"
	"github.com/arya-analytics/gatekeeper/pkg/future"
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/arya-analytics/gatekeeper/pkg/store"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Verifier authenticates credentials against user records read from a store.Store.
// It holds no per-call state and is safe for concurrent use.
type Verifier struct {
	cfg     Config
	store   store.Store
	hashers *password.Registry
	logger  *zap.Logger
}

var _ Authenticator = (*Verifier)(nil)

// NewVerifier opens a Verifier. Empty fields of cfg take their value from
// DefaultConfig. A nil logger disables logging.
func NewVerifier(
	s store.Store,
	hashers *password.Registry,
	cfg Config,
	logger *zap.Logger,
) (*Verifier, error) {
	if s == nil {
		return nil, errors.New("[auth] - verifier requires a store")
	}
	if hashers == nil {
		return nil, errors.New("[auth] - verifier requires a hash registry")
	}
	cfg = DefaultConfig().Override(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !hashers.Has(cfg.DefaultScheme) {
		return nil, errors.Wrapf(password.UnknownScheme, "default scheme %q", cfg.DefaultScheme)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{cfg: cfg, store: s, hashers: hashers, logger: logger}, nil
}

// Config returns the configuration the Verifier was opened with.
func (v *Verifier) Config() Config { return v.cfg }

// Authenticate implements the Authenticator interface. Exactly one record must match
// the username: unknown and duplicated usernames are both rejected. Store and hash
// registry failures are never retried. Authenticate never writes to the store.
func (v *Verifier) Authenticate(ctx context.Context, creds InsecureCredentials) (Principal, error) {
	username, record, err := v.verify(ctx, creds)
	if err != nil {
		return Principal{}, err
	}
	return v.principal(username, record), nil
}

// verify resolves creds to the single record they identify and checks the password
// against it.
func (v *Verifier) verify(
	ctx context.Context,
	creds InsecureCredentials,
) (string, store.Document, error) {
	if err := v.cfg.Validate(); err != nil {
		return "", nil, err
	}
	username, pwd, err := v.parseCredentials(creds)
	if err != nil {
		return "", nil, err
	}
	logger := v.logger.With(zap.String("username", username))

	record, err := v.lookup(ctx, logger, username)
	if err != nil {
		return "", nil, err
	}

	stored, ok := record.String(v.cfg.PasswordField)
	if !ok || stored == "" {
		logger.Warn("record has no usable password field", zap.String("key", record.Key()))
		return "", nil, v.reject(logger, CorruptRecord)
	}
	match, err := v.hashers.Verify(v.cfg.DefaultScheme, "", pwd, password.Hashed(stored))
	if errors.Is(err, password.MalformedHash) {
		logger.Warn("record holds a malformed hash", zap.String("key", record.Key()), zap.Error(err))
		return "", nil, v.reject(logger, CorruptRecord)
	}
	if err != nil {
		logger.Error("password verification failed", zap.Error(err))
		return "", nil, fault(err, "[auth] - password verification failed")
	}
	if !match {
		return "", nil, v.reject(logger, InvalidPassword)
	}
	logger.Debug("authenticated", zap.String("key", record.Key()))
	return username, record, nil
}

func (v *Verifier) lookup(
	ctx context.Context,
	logger *zap.Logger,
	username string,
) (store.Document, error) {
	records, err := store.FindByUsername(ctx, v.store, v.cfg.CollectionName, v.cfg.UsernameField, username)
	if err != nil {
		logger.Error("user lookup failed", zap.Error(err))
		return nil, fault(err, "[auth] - user lookup failed")
	}
	switch len(records) {
	case 0:
		return nil, v.reject(logger, NoSuchUser)
	case 1:
		return records[0], nil
	default:
		logger.Warn("username matches more than one record", zap.Int("count", len(records)))
		return nil, v.reject(logger, AmbiguousUser)
	}
}

// UpdatePassword authenticates creds and replaces the matched record's password with
// newPwd hashed under scheme and salt. An empty scheme selects the default scheme.
// Every other field of the record is kept.
func (v *Verifier) UpdatePassword(
	ctx context.Context,
	creds InsecureCredentials,
	newPwd password.Raw,
	scheme, salt string,
) error {
	if newPwd == "" {
		return errors.Wrap(BadRequest, "new password is required")
	}
	username, record, err := v.verify(ctx, creds)
	if err != nil {
		return err
	}
	if scheme == "" {
		scheme = v.cfg.DefaultScheme
	}
	hash, err := v.Hash(scheme, salt, newPwd)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "[auth] - hash password"), UpdateFailed)
	}
	updated := record.Copy()
	updated[v.cfg.PasswordField] = string(hash)
	if _, err := v.store.Save(ctx, v.cfg.CollectionName, updated); err != nil {
		return errors.Mark(errors.Wrap(err, "[auth] - save user"), UpdateFailed)
	}
	v.logger.Info("updated password",
		zap.String("username", username),
		zap.String("key", record.Key()),
		zap.String("scheme", scheme),
	)
	return nil
}

// UpdateUsername authenticates creds and renames the matched record to newUsername.
// The check for an existing record holding newUsername and the write aren't atomic.
func (v *Verifier) UpdateUsername(
	ctx context.Context,
	creds InsecureCredentials,
	newUsername string,
) error {
	if newUsername == "" {
		return errors.Wrap(BadRequest, "new username is required")
	}
	username, record, err := v.verify(ctx, creds)
	if err != nil {
		return err
	}
	if newUsername == username {
		return nil
	}
	existing, err := store.FindByUsername(ctx, v.store, v.cfg.CollectionName, v.cfg.UsernameField, newUsername)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "[auth] - user lookup failed"), UpdateFailed)
	}
	if len(existing) > 0 {
		return errors.Wrapf(UsernameTaken, "username %q", newUsername)
	}
	updated := record.Copy()
	updated[v.cfg.UsernameField] = newUsername
	if _, err := v.store.Save(ctx, v.cfg.CollectionName, updated); err != nil {
		return errors.Mark(errors.Wrap(err, "[auth] - save user"), UpdateFailed)
	}
	v.logger.Info("updated username",
		zap.String("username", username),
		zap.String("new_username", newUsername),
		zap.String("key", record.Key()),
	)
	return nil
}

// Hash hashes pwd under scheme and salt, producing a value that can be stored in a
// user record's password field.
func (v *Verifier) Hash(scheme, salt string, pwd password.Raw) (password.Hashed, error) {
	return v.hashers.Hash(scheme, salt, pwd)
}

// Register hashes pwd and saves a new user record, returning its key. An empty scheme
// selects the default scheme. Register does not check for existing users with the
// same username.
func (v *Verifier) Register(
	ctx context.Context,
	username string,
	pwd password.Raw,
	scheme, salt string,
) (string, error) {
	if username == "" || pwd == "" {
		return "", errors.Wrap(BadRequest, "username and password are required")
	}
	if scheme == "" {
		scheme = v.cfg.DefaultScheme
	}
	hash, err := v.Hash(scheme, salt, pwd)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "[auth] - hash password"), RegistrationFailed)
	}
	key, err := v.store.Save(ctx, v.cfg.CollectionName, store.Document{
		v.cfg.UsernameField: username,
		v.cfg.PasswordField: string(hash),
	})
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "[auth] - save user"), RegistrationFailed)
	}
	v.logger.Info("registered user",
		zap.String("username", username),
		zap.String("key", key),
		zap.String("scheme", scheme),
	)
	return key, nil
}

// RegisterAsync runs Register on its own goroutine.
func (v *Verifier) RegisterAsync(
	ctx context.Context,
	username string,
	pwd password.Raw,
	scheme, salt string,
) *future.Future[string] {
	return future.Go(ctx, func(ctx context.Context) (string, error) {
		return v.Register(ctx, username, pwd, scheme, salt)
	})
}

// Users returns every user record in the configured collection with the password
// field removed.
func (v *Verifier) Users(ctx context.Context) ([]Principal, error) {
	var records []store.Document
	if err := store.NewRetrieve().
		Collection(v.cfg.CollectionName).
		Entries(&records).
		Exec(ctx, v.store); err != nil {
		return nil, err
	}
	principals := make([]Principal, len(records))
	for i, r := range records {
		username, _ := r.String(v.cfg.UsernameField)
		principals[i] = v.principal(username, r)
	}
	return principals, nil
}

// StaleUsers returns the users whose stored password wasn't produced by scheme's
// current parameters, or can't be decoded at all. An empty scheme selects the default
// scheme. Records are never rewritten here: a stale user is migrated by a later
// UpdatePassword.
func (v *Verifier) StaleUsers(ctx context.Context, scheme string) ([]Principal, error) {
	if scheme == "" {
		scheme = v.cfg.DefaultScheme
	}
	if !v.hashers.Has(scheme) {
		return nil, errors.Wrapf(password.UnknownScheme, "scheme %q", scheme)
	}
	var records []store.Document
	if err := store.NewRetrieve().
		Collection(v.cfg.CollectionName).
		Entries(&records).
		Exec(ctx, v.store); err != nil {
		return nil, err
	}
	var stale []Principal
	for _, r := range records {
		username, _ := r.String(v.cfg.UsernameField)
		stored, _ := r.String(v.cfg.PasswordField)
		needs, err := v.hashers.NeedsRehash(password.Hashed(stored), scheme)
		if err != nil && !errors.Is(err, password.MalformedHash) {
			return nil, err
		}
		if needs || err != nil {
			stale = append(stale, v.principal(username, r))
		}
	}
	return stale, nil
}

func (v *Verifier) parseCredentials(creds InsecureCredentials) (string, password.Raw, error) {
	username := creds[v.cfg.UsernameField]
	if username == "" {
		return "", "", errors.Wrapf(BadRequest, "missing %s", v.cfg.UsernameField)
	}
	pwd := creds[v.cfg.PasswordField]
	if pwd == "" {
		return "", "", errors.Wrapf(BadRequest, "missing %s", v.cfg.PasswordField)
	}
	return username, password.Raw(pwd), nil
}

func (v *Verifier) reject(logger *zap.Logger, reason error) error {
	logger.Debug("authentication rejected", zap.String("reason", reason.Error()))
	return rejected(reason)
}

func (v *Verifier) principal(username string, record store.Document) Principal {
	attrs := record.Copy()
	delete(attrs, v.cfg.PasswordField)
	return Principal{Key: record.Key(), Username: username, Attributes: attrs}
}
