package kermesse

// ActorType identifies one of the three independent session authorities.
// Each actor type owns its own storage namespace, login route, and expiry
// rules; sessions are never shared across types.
type ActorType string

const (
	// ActorAdmin is the event organizer back-office actor
	ActorAdmin ActorType = "admin"
	// ActorAgent is a sales or recharge booth operator
	ActorAgent ActorType = "agent"
	// ActorParticipant is an event attendee with a prepaid balance
	ActorParticipant ActorType = "participant"
)

// IsValid checks if the actor type is one of the predefined types
func (t ActorType) IsValid() bool {
	switch t {
	case ActorAdmin, ActorAgent, ActorParticipant:
		return true
	default:
		return false
	}
}

// StorageNamespace returns the key prefix under which this actor type
// persists its session pair. No two actor types share a namespace.
func (t ActorType) StorageNamespace() string {
	return "kermesse." + string(t)
}

// LoginRoute is where an unauthenticated actor of this type is sent.
func (t ActorType) LoginRoute() string {
	switch t {
	case ActorAdmin:
		return "/admin/login"
	case ActorAgent:
		return "/agent/login"
	case ActorParticipant:
		return "/participant/login"
	default:
		return "/login"
	}
}

// AgentRole is the agent's booth assignment
type AgentRole string

const (
	// AgentRoleVente sells products against participant balances
	AgentRoleVente AgentRole = "vente"
	// AgentRoleRecharge tops up participant balances
	AgentRoleRecharge AgentRole = "recharge"
)

// IsValid checks if the role is one of the predefined agent roles
func (r AgentRole) IsValid() bool {
	switch r {
	case AgentRoleVente, AgentRoleRecharge:
		return true
	default:
		return false
	}
}

// DashboardRoute returns the role's own default view. A role mismatch on a
// guarded route redirects here instead of surfacing an error page.
func (r AgentRole) DashboardRoute() string {
	switch r {
	case AgentRoleVente:
		return "/agent/vente"
	case AgentRoleRecharge:
		return "/agent/recharge"
	default:
		return ActorAgent.LoginRoute()
	}
}

// RoutePasswordChange is where agents with a pending forced rotation are
// held until they pick a new password.
const RoutePasswordChange = "/agent/change-password"

// GetAllAgentRoles returns all predefined agent roles
func GetAllAgentRoles() []AgentRole {
	return []AgentRole{AgentRoleVente, AgentRoleRecharge}
}
