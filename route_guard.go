package kermesse

// GuardState is the guard's navigation state
type GuardState string

const (
	// GuardStateChecking is the initial, non-rendering state. It is also
	// the state exposed while an agent is being steered into the forced
	// password-rotation route: neither authenticated nor unauthenticated
	// leaks to children.
	GuardStateChecking GuardState = "checking"
	// GuardStateAuthenticated renders children
	GuardStateAuthenticated GuardState = "authenticated"
	// GuardStateUnauthenticated redirects to the actor type's login route
	GuardStateUnauthenticated GuardState = "unauthenticated"
)

// Decision is the guard's verdict for one navigation.
type Decision struct {
	State    GuardState
	Redirect string
	Render   bool
	Session  *Session
}

// Guard gates navigation to actor-scoped views based on SessionStore output
// and role/flag checks. The rules run in a fixed order, each short-circuiting
// the rest:
//
//  1. no restorable session: unauthenticated, redirect to login
//  2. agent with a pending forced password rotation, off the rotation
//     route: redirect there without rendering
//  3. declared role does not match the actor's role: corrective redirect to
//     the actor's own dashboard, not an error page
//  4. otherwise authenticated, render
//
// The ordering matters: expiry is checked before role, and role before
// rendering, so an agent with the wrong role is never shown another role's
// forced-password screen.
type Guard struct {
	store  *SessionStore
	logger Logger
}

// GuardOption customizes Guard construction
type GuardOption func(*Guard)

// WithGuardLogger overrides the guard's logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard returns a guard backed by the given session store.
func NewGuard(store *SessionStore, opts ...GuardOption) *Guard {
	g := &Guard{
		store:  store,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Store exposes the backing session store for HTTP adapters.
func (g *Guard) Store() *SessionStore {
	return g.store
}

// Evaluate runs the transition rules for a navigation to currentRoute.
// requiredRole is the role declared by the guarded view; empty means any
// role of this actor type may render it.
func (g *Guard) Evaluate(currentRoute string, requiredRole AgentRole) Decision {
	session, ok := g.store.Restore()
	if !ok {
		return Decision{
			State:    GuardStateUnauthenticated,
			Redirect: g.store.ActorType().LoginRoute(),
		}
	}

	if d, steered := g.forcedRotation(session, currentRoute); steered {
		return d
	}

	if requiredRole != "" && session.Actor.Role != requiredRole {
		g.logger.Info("role mismatch for %s, corrective redirect: have %s want %s",
			g.store.ActorType(), session.Actor.Role, requiredRole)
		return Decision{
			State:    GuardStateAuthenticated,
			Redirect: session.Actor.Role.DashboardRoute(),
			Session:  session,
		}
	}

	return Decision{
		State:   GuardStateAuthenticated,
		Render:  true,
		Session: session,
	}
}

// forcedRotation applies rule 2: only agents carry the flag, and the
// rotation route itself must stay reachable or the agent could never
// complete the change.
func (g *Guard) forcedRotation(session *Session, currentRoute string) (Decision, bool) {
	if g.store.ActorType() != ActorAgent {
		return Decision{}, false
	}
	if !session.Actor.MustChangePassword {
		return Decision{}, false
	}
	if currentRoute == RoutePasswordChange {
		return Decision{}, false
	}

	g.logger.Info("agent %s has pending password rotation, steering from %s",
		session.ActorID, currentRoute)

	return Decision{
		State:    GuardStateChecking,
		Redirect: RoutePasswordChange,
		Session:  session,
	}, true
}
