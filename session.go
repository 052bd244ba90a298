package kermesse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActorSnapshot is the denormalized actor record captured at login time.
// It is refreshed on demand, not guaranteed current.
type ActorSnapshot struct {
	ID                 uuid.UUID  `json:"id"`
	Type               ActorType  `json:"type"`
	Name               string     `json:"name,omitempty"`
	Email              string     `json:"email,omitempty"`
	Role               AgentRole  `json:"role,omitempty"`
	EventID            *uuid.UUID `json:"event_id,omitempty"`
	MustChangePassword bool       `json:"must_change_password,omitempty"`
}

// Session pairs an actor snapshot with a bearer descriptor. The pair is the
// unit of validity: an expired descriptor with a present actor, or an actor
// with no descriptor, is never treated as authenticated, and both halves are
// purged together.
type Session struct {
	ActorID   uuid.UUID      `json:"actor_id"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Actor     *ActorSnapshot `json:"actor"`
}

// Valid reports whether the session authenticates its actor at the given
// instant. Both operands matter: flipping either flips the result.
func (s *Session) Valid(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.Actor != nil && now.Before(s.ExpiresAt)
}

// Descriptor returns the persisted half that round-trips to the backend.
func (s *Session) Descriptor() SessionDescriptor {
	return SessionDescriptor{Token: s.Token, ExpiresAt: s.ExpiresAt}
}

func (s Session) String() string {
	actor := "<nil>"
	if s.Actor != nil {
		actor = fmt.Sprintf("%s:%s", s.Actor.Type, s.Actor.ID)
	}
	return fmt.Sprintf(
		"actor=%s expires=%s",
		actor,
		s.ExpiresAt.Format(time.RFC1123),
	)
}

func encodeSnapshot(actor *ActorSnapshot) (string, error) {
	raw, err := json.Marshal(actor)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeSnapshot(raw string) (*ActorSnapshot, error) {
	actor := &ActorSnapshot{}
	if err := json.Unmarshal([]byte(raw), actor); err != nil {
		return nil, ErrUnableToParseData
	}
	if actor.ID == uuid.Nil {
		return nil, ErrUnableToParseData
	}
	return actor, nil
}

func encodeDescriptor(d SessionDescriptor) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeDescriptor(raw string) (SessionDescriptor, error) {
	var d SessionDescriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return SessionDescriptor{}, ErrUnableToParseData
	}
	if d.Token == "" || d.ExpiresAt.IsZero() {
		return SessionDescriptor{}, ErrUnableToParseData
	}
	return d, nil
}
