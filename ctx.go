package kermesse

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(r context.Context, session *Session) context.Context {
	return context.WithValue(r, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*Session)
	return raw, ok
}

// ActorFromContext returns the actor snapshot carried by the context's
// session, if any.
func ActorFromContext(ctx context.Context) (*ActorSnapshot, bool) {
	session, ok := SessionFromContext(ctx)
	if !ok || session.Actor == nil {
		return nil, false
	}
	return session.Actor, true
}
