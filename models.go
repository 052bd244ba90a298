package kermesse

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// EventStatus is the event lifecycle flag
type EventStatus = string

const (
	EventStatusDraft    EventStatus = "draft"
	EventStatusActive   EventStatus = "active"
	EventStatusClosed   EventStatus = "closed"
	EventStatusArchived EventStatus = "archived"
)

// Event is an organized kermesse
type Event struct {
	bun.BaseModel `bun:"table:events,alias:evt"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string      `bun:"name,notnull" json:"name,omitempty"`
	Status        EventStatus `bun:"status,notnull" json:"status,omitempty"`
	StartsAt      *time.Time  `bun:"starts_at,nullzero" json:"starts_at,omitempty"`
	EndsAt        *time.Time  `bun:"ends_at,nullzero" json:"ends_at,omitempty"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (e *Event) ChangeTable() string { return "events" }

func (e *Event) ChangeKeys() map[string]string {
	return map[string]string{"event_id": e.ID.String()}
}

// Product is something a vente agent sells against participant balances.
// Prices are integer cents; floats never touch money.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventID       uuid.UUID  `bun:"event_id,notnull,type:uuid" json:"event_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Category      string     `bun:"category" json:"category,omitempty"`
	PriceCents    int64      `bun:"price_cents,notnull" json:"price_cents,omitempty"`
	Active        bool       `bun:"active" json:"active,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (p *Product) ChangeTable() string { return "products" }

func (p *Product) ChangeKeys() map[string]string {
	return map[string]string{
		"event_id":   p.EventID.String(),
		"product_id": p.ID.String(),
	}
}

// Validate applies product invariants before persistence.
func (p *Product) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.EventID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&p.PriceCents, validation.Min(0)),
	)
}

// Admin is the organizer back-office actor
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"password_hash,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (a *Admin) ChangeTable() string { return "admins" }

func (a *Admin) ChangeKeys() map[string]string {
	return map[string]string{"admin_id": a.ID.String()}
}

// Snapshot returns the denormalized view persisted with an admin session.
func (a *Admin) Snapshot() *ActorSnapshot {
	return &ActorSnapshot{
		ID:    a.ID,
		Type:  ActorAdmin,
		Name:  a.Name,
		Email: a.Email,
	}
}

// Agent is a booth operator. MustChangePassword holds until the agent
// finishes the forced rotation flow that RouteGuard steers them into.
type Agent struct {
	bun.BaseModel      `bun:"table:agents,alias:agt"`
	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventID            uuid.UUID  `bun:"event_id,notnull,type:uuid" json:"event_id,omitempty"`
	Role               AgentRole  `bun:"agent_role,notnull" json:"agent_role,omitempty"`
	Name               string     `bun:"name,notnull" json:"name,omitempty"`
	Email              string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone              string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash       string     `bun:"password_hash" json:"password_hash,omitempty"`
	MustChangePassword bool       `bun:"must_change_password" json:"must_change_password,omitempty"`
	LoginAttempts      int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt     *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt         *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt          *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (a *Agent) ChangeTable() string { return "agents" }

func (a *Agent) ChangeKeys() map[string]string {
	return map[string]string{
		"agent_id": a.ID.String(),
		"event_id": a.EventID.String(),
	}
}

// Snapshot returns the denormalized view persisted with an agent session.
func (a *Agent) Snapshot() *ActorSnapshot {
	eventID := a.EventID
	return &ActorSnapshot{
		ID:                 a.ID,
		Type:               ActorAgent,
		Name:               a.Name,
		Email:              a.Email,
		Role:               a.Role,
		EventID:            &eventID,
		MustChangePassword: a.MustChangePassword,
	}
}

// Validate applies agent invariants before persistence.
func (a *Agent) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&a.Email, validation.Required, is.Email),
		validation.Field(&a.EventID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&a.Role, validation.Required, validation.By(validAgentRole)),
		validation.Field(&a.Phone, validation.By(validPhone)),
	)
}

// Participant is an attendee with a prepaid balance. The balance is never
// stored: it is derived as sum(recharges) - sum(orders).
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:prt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventID       uuid.UUID  `bun:"event_id,notnull,type:uuid" json:"event_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email" json:"email,omitempty"`
	BadgeCode     string     `bun:"badge_code,notnull,unique" json:"badge_code,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (p *Participant) ChangeTable() string { return "participants" }

func (p *Participant) ChangeKeys() map[string]string {
	return map[string]string{
		"participant_id": p.ID.String(),
		"event_id":       p.EventID.String(),
	}
}

// Snapshot returns the denormalized view persisted with a participant session.
func (p *Participant) Snapshot() *ActorSnapshot {
	eventID := p.EventID
	return &ActorSnapshot{
		ID:      p.ID,
		Type:    ActorParticipant,
		Name:    p.Name,
		Email:   p.Email,
		EventID: &eventID,
	}
}

// Order is one sale by a vente agent against a participant balance
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:ord"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventID       uuid.UUID  `bun:"event_id,notnull,type:uuid" json:"event_id,omitempty"`
	AgentID       uuid.UUID  `bun:"agent_id,notnull,type:uuid" json:"agent_id,omitempty"`
	ParticipantID uuid.UUID  `bun:"participant_id,notnull,type:uuid" json:"participant_id,omitempty"`
	ProductID     uuid.UUID  `bun:"product_id,notnull,type:uuid" json:"product_id,omitempty"`
	Quantity      int        `bun:"quantity,notnull" json:"quantity,omitempty"`
	AmountCents   int64      `bun:"amount_cents,notnull" json:"amount_cents,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (o *Order) ChangeTable() string { return "orders" }

func (o *Order) ChangeKeys() map[string]string {
	return map[string]string{
		"agent_id":       o.AgentID.String(),
		"event_id":       o.EventID.String(),
		"participant_id": o.ParticipantID.String(),
	}
}

// Validate applies order invariants before persistence.
func (o *Order) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.EventID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&o.AgentID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&o.ParticipantID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&o.ProductID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&o.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&o.AmountCents, validation.Required, validation.Min(int64(1))),
	)
}

// Recharge is one balance top-up by a recharge agent
type Recharge struct {
	bun.BaseModel `bun:"table:recharges,alias:rch"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventID       uuid.UUID  `bun:"event_id,notnull,type:uuid" json:"event_id,omitempty"`
	AgentID       uuid.UUID  `bun:"agent_id,notnull,type:uuid" json:"agent_id,omitempty"`
	ParticipantID uuid.UUID  `bun:"participant_id,notnull,type:uuid" json:"participant_id,omitempty"`
	AmountCents   int64      `bun:"amount_cents,notnull" json:"amount_cents,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (r *Recharge) ChangeTable() string { return "recharges" }

func (r *Recharge) ChangeKeys() map[string]string {
	return map[string]string{
		"agent_id":       r.AgentID.String(),
		"event_id":       r.EventID.String(),
		"participant_id": r.ParticipantID.String(),
	}
}

// Validate applies recharge invariants before persistence.
func (r *Recharge) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EventID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&r.AgentID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&r.ParticipantID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&r.AmountCents, validation.Required, validation.Min(int64(1))),
	)
}

func notNilUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_uuid", "must be a non-nil UUID")
	}
	return nil
}

func validAgentRole(value any) error {
	role, ok := value.(AgentRole)
	if !ok || !role.IsValid() {
		return validation.NewError("validation_agent_role", "must be vente or recharge")
	}
	return nil
}

// validPhone accepts empty phones; non-empty ones must parse as a plausible
// number. Numbers without a country prefix are tried as FR, the event
// organizer's default region.
func validPhone(value any) error {
	phone, ok := value.(string)
	if !ok {
		return validation.NewError("validation_phone", "must be a string")
	}
	if strings.TrimSpace(phone) == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(phone, "FR")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return validation.NewError("validation_phone", "must be a valid phone number")
	}
	return nil
}
