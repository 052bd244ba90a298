package kermesse

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SessionStore is the authoritative local source of truth for one actor
// type's authentication state. Each actor type gets its own instance; the
// three never share storage keys.
//
// The persisted representation is two string values under fixed keys in the
// actor type's namespace: the actor snapshot JSON and the session descriptor
// JSON. Absence of either key means no session.
type SessionStore struct {
	actorType ActorType
	gateway   IdentityGateway
	storage   Storage
	logger    Logger
	now       Clock
}

// SessionStoreOption customizes SessionStore construction
type SessionStoreOption func(*SessionStore)

// WithSessionStoreLogger overrides the store's logger.
func WithSessionStoreLogger(logger Logger) SessionStoreOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionStoreClock injects a custom clock (useful for tests).
func WithSessionStoreClock(clock Clock) SessionStoreOption {
	return func(s *SessionStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewSessionStore returns a store scoped to the given actor type.
func NewSessionStore(actorType ActorType, gateway IdentityGateway, storage Storage, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		actorType: actorType,
		gateway:   gateway,
		storage:   storage,
		logger:    defLogger{},
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// ActorType returns the actor type this store is scoped to.
func (s *SessionStore) ActorType() ActorType {
	return s.actorType
}

func (s *SessionStore) actorKey() string {
	return s.actorType.StorageNamespace() + ".actor"
}

func (s *SessionStore) descriptorKey() string {
	return s.actorType.StorageNamespace() + ".session"
}

// Login exchanges credentials through the identity gateway and, on success,
// persists the resulting session before returning it. A gateway rejection
// comes back as ErrLoginRejected; a transport failure is wrapped. Neither
// leaves a half-written session behind.
func (s *SessionStore) Login(ctx context.Context, creds Credentials) (*Session, error) {
	result, err := s.gateway.Exchange(ctx, s.actorType, creds)
	if err != nil {
		s.logger.Error("login exchange failed for %s: %s", s.actorType, err)
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "identity exchange failed")
	}

	if result == nil || !result.OK {
		reason := "credentials rejected"
		if result != nil && result.Reason != "" {
			reason = result.Reason
		}
		s.logger.Info("login rejected for %s: %s", s.actorType, reason)
		return nil, loginRejected(reason)
	}

	if result.Actor == nil {
		return nil, loginRejected("gateway returned no actor")
	}

	session := &Session{
		ActorID:   result.Actor.ID,
		Token:     result.Descriptor.Token,
		ExpiresAt: result.Descriptor.ExpiresAt,
		Actor:     result.Actor,
	}

	if err := s.persist(session); err != nil {
		// roll back any half-written pair
		s.purge()
		return nil, err
	}

	return session, nil
}

// Restore reads the persisted session. An expired or otherwise unusable
// pair is purged and reported as absent. Restore never consults the
// backend: validity is client-side expiry, not server revocation.
func (s *SessionStore) Restore() (*Session, bool) {
	rawActor, actorOK, err := s.storage.Get(s.actorKey())
	if err != nil {
		s.logger.Error("session restore read failed for %s: %s", s.actorType, err)
		return nil, false
	}

	rawDescriptor, descriptorOK, err := s.storage.Get(s.descriptorKey())
	if err != nil {
		s.logger.Error("session restore read failed for %s: %s", s.actorType, err)
		return nil, false
	}

	if !actorOK || !descriptorOK {
		// a lone half of the pair is as good as nothing
		if actorOK || descriptorOK {
			s.purge()
		}
		return nil, false
	}

	actor, err := decodeSnapshot(rawActor)
	if err != nil {
		s.logger.Warn("purging malformed actor snapshot for %s", s.actorType)
		s.purge()
		return nil, false
	}

	descriptor, err := decodeDescriptor(rawDescriptor)
	if err != nil {
		s.logger.Warn("purging malformed session descriptor for %s", s.actorType)
		s.purge()
		return nil, false
	}

	session := &Session{
		ActorID:   actor.ID,
		Token:     descriptor.Token,
		ExpiresAt: descriptor.ExpiresAt,
		Actor:     actor,
	}

	if !session.Valid(s.now()) {
		s.logger.Info("purging expired %s session, expired at %s", s.actorType, descriptor.ExpiresAt)
		s.purge()
		return nil, false
	}

	return session, true
}

// Logout purges the persisted session pair unconditionally. Idempotent.
func (s *SessionStore) Logout() {
	s.purge()
}

// RefreshActorSnapshot re-fetches the actor's own record and overwrites
// only the snapshot half; expiry is untouched. A missing record or a
// transient read failure keeps the prior snapshot, it never destroys the
// session.
func (s *SessionStore) RefreshActorSnapshot(ctx context.Context) (*Session, error) {
	session, ok := s.Restore()
	if !ok {
		return nil, ErrUnableToFindSession
	}

	actor, err := s.gateway.FindActor(ctx, s.actorType, session.ActorID)
	if err != nil {
		s.logger.Warn("actor snapshot refresh failed for %s %s, keeping prior snapshot: %s",
			s.actorType, session.ActorID, err)
		return session, err
	}

	raw, err := encodeSnapshot(actor)
	if err != nil {
		s.logger.Warn("actor snapshot encode failed for %s, keeping prior snapshot: %s",
			s.actorType, err)
		return session, err
	}

	if err := s.storage.Set(s.actorKey(), raw); err != nil {
		s.logger.Warn("actor snapshot write failed for %s, keeping prior snapshot: %s",
			s.actorType, err)
		return session, err
	}

	session.Actor = actor
	session.ActorID = actor.ID
	return session, nil
}

func (s *SessionStore) persist(session *Session) error {
	rawActor, err := encodeSnapshot(session.Actor)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode actor snapshot")
	}

	rawDescriptor, err := encodeDescriptor(session.Descriptor())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session descriptor")
	}

	if err := s.storage.Set(s.actorKey(), rawActor); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist actor snapshot")
	}

	if err := s.storage.Set(s.descriptorKey(), rawDescriptor); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session descriptor")
	}

	return nil
}

func (s *SessionStore) purge() {
	if err := s.storage.Delete(s.actorKey(), s.descriptorKey()); err != nil {
		s.logger.Error("session purge failed for %s: %s", s.actorType, err)
	}
}
