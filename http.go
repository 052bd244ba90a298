package kermesse

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// GuardedRoutes adapts a Guard into go-router middleware. The guard's
// decision maps onto HTTP: render means run the handler with the session
// in context, anything else is a redirect.
type GuardedRoutes struct {
	guard        *Guard
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

// NewGuardedRoutes returns the HTTP adapter for a guard.
func NewGuardedRoutes(guard *Guard) *GuardedRoutes {
	a := &GuardedRoutes{
		guard:  guard,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a
}

// Protected gates a route on the guard's rules. requiredRole is empty for
// routes any role of this actor type may see.
func (a *GuardedRoutes) Protected(requiredRole AgentRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := a.guard.Evaluate(c.Path(), requiredRole)

			if decision.Render {
				c.SetContext(WithSessionContext(c.Context(), decision.Session))
				return hf(c)
			}

			if decision.Redirect == "" {
				// unreachable with current rules; fail closed
				return c.Redirect(a.guard.Store().ActorType().LoginRoute(), http.StatusFound)
			}

			a.Logger.Info("guard redirect (%s) %s -> %s", decision.State, c.Path(), decision.Redirect)

			statusCode := http.StatusSeeOther
			if c.Method() == string(router.GET) {
				statusCode = http.StatusFound
			}
			return c.Redirect(decision.Redirect, statusCode)
		}
	}
}

// Login runs the credential exchange and redirects to the actor's landing
// route. Rejections land back on the login route; they are outcomes, not
// server errors.
func (a *GuardedRoutes) Login(c router.Context, payload Credentials) error {
	session, err := a.guard.Store().Login(c.Context(), payload)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryAuth {
			a.Logger.Info("login rejected at %s", c.Path())
			return c.Redirect(a.guard.Store().ActorType().LoginRoute(), http.StatusSeeOther)
		}

		a.Logger.Error("login error: %s", err)
		return a.ErrorHandler(c, err)
	}

	return c.Redirect(a.landingRoute(session), http.StatusSeeOther)
}

// Logout purges the session and returns to the login route.
func (a *GuardedRoutes) Logout(c router.Context) error {
	a.guard.Store().Logout()
	return c.Redirect(a.guard.Store().ActorType().LoginRoute(), http.StatusSeeOther)
}

func (a *GuardedRoutes) landingRoute(session *Session) string {
	if session == nil || session.Actor == nil {
		return a.guard.Store().ActorType().LoginRoute()
	}

	switch session.Actor.Type {
	case ActorAgent:
		if session.Actor.MustChangePassword {
			return RoutePasswordChange
		}
		return session.Actor.Role.DashboardRoute()
	case ActorAdmin:
		return "/admin"
	case ActorParticipant:
		return "/participant"
	default:
		return a.guard.Store().ActorType().LoginRoute()
	}
}

func (a *GuardedRoutes) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info("middleware error handler (%s): %s", richErr.Category, richErr.Message)

	return c.JSON(richErr.Code, map[string]any{
		"error": richErr.Message,
	})
}
