package kermesse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Clock returns the current time; injectable for tests
type Clock func() time.Time

// Credentials is what an actor presents at login
type Credentials interface {
	GetIdentifier() string
	GetPassword() string
}

// SessionDescriptor is the opaque session handle minted by the identity
// gateway. The client never interprets Token beyond round-tripping it.
type SessionDescriptor struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExchangeResult is the identity gateway's answer to a credential exchange.
// OK is the explicit success discriminator: a rejection is OK=false with a
// Reason, not a transport error.
type ExchangeResult struct {
	OK         bool
	Reason     string
	Actor      *ActorSnapshot
	Descriptor SessionDescriptor
}

// IdentityGateway performs credential exchange and actor lookups. It is an
// external collaborator boundary; the bundled LocalGateway is one
// implementation, any backend that can answer these two calls works.
type IdentityGateway interface {
	Exchange(ctx context.Context, actorType ActorType, creds Credentials) (*ExchangeResult, error)
	// FindActor re-fetches an actor snapshot by id. A missing record is
	// ErrActorNotFound, distinguished from transport failures.
	FindActor(ctx context.Context, actorType ActorType, id uuid.UUID) (*ActorSnapshot, error)
}

// Storage is the persisted session store: string values under fixed keys,
// exclusively owned by one actor type's namespace.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Config holds kermesse options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetStoragePath() string
	GetBcryptCost() int
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] KERMESSE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] KERMESSE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] KERMESSE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] KERMESSE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
