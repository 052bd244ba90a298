package kermesse

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterAgentMessage provisions a booth operator. New agents start with
// MustChangePassword set: the provisioning password is a handover secret,
// not a credential the agent keeps.
type RegisterAgentMessage struct {
	EventID   uuid.UUID `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      AgentRole `json:"role"`
	Password  string    `json:"password"`
	UseHashid bool
}

func (e RegisterAgentMessage) Type() string { return "agent.register" }

type RegisterAgentHandler struct {
	repo RepositoryManager
}

func NewRegisterAgentHandler(repo RepositoryManager) *RegisterAgentHandler {
	return &RegisterAgentHandler{repo: repo}
}

func (h *RegisterAgentHandler) Execute(ctx context.Context, event RegisterAgentMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during agent registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAgentHandler) execute(ctx context.Context, event RegisterAgentMessage) error {
	agent := &Agent{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		agent.PasswordHash = hash
		agent.EventID = event.EventID
		agent.Email = event.Email
		agent.Phone = event.Phone
		agent.Name = event.Name
		agent.Role = event.Role
		agent.MustChangePassword = true
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				agent.ID = id
			}
		}

		if err := agent.Validate(); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid agent record")
		}

		if agent, err = h.repo.Agents().CreateTx(ctx, tx, agent); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create agent")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "agent registration transaction failed")
	}

	return nil
}
