package kermesse

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RotateAgentPasswordMessage finalizes a forced password rotation: the
// agent picks a new password, the must-change flag clears, and the guard
// stops steering them to the rotation route on the next snapshot refresh.
type RotateAgentPasswordMessage struct {
	AgentID         uuid.UUID `json:"agent_id" doc:"Agent whose password rotates"`
	CurrentPassword string    `json:"current_password" doc:"Password the agent logged in with"`
	NewPassword     string    `json:"new_password" doc:"Replacement password"`
}

func (e RotateAgentPasswordMessage) Type() string { return "agent.rotate_password" }

type RotateAgentPasswordHandler struct {
	repo   RepositoryManager
	logger Logger
}

// NewRotateAgentPasswordHandler creates a handler with sane defaults.
func NewRotateAgentPasswordHandler(repo RepositoryManager) *RotateAgentPasswordHandler {
	return &RotateAgentPasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RotateAgentPasswordHandler) WithLogger(logger Logger) *RotateAgentPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RotateAgentPasswordHandler) Execute(ctx context.Context, event RotateAgentPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password rotation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RotateAgentPasswordHandler) execute(ctx context.Context, event RotateAgentPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		agent, err := h.repo.Agents().GetByID(ctx, event.AgentID.String())
		if err != nil {
			if goerrors.IsNotFound(err) {
				return goerrors.New("agent not found", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve agent")
		}

		if err := ComparePasswordAndHash(event.CurrentPassword, agent.PasswordHash); err != nil {
			return goerrors.New("current password does not match", goerrors.CategoryAuth).
				WithTextCode("CURRENT_PASSWORD_MISMATCH").
				WithCode(goerrors.CodeUnauthorized)
		}

		if event.NewPassword == event.CurrentPassword {
			return goerrors.New("new password must differ from the current one", goerrors.CategoryValidation).
				WithTextCode("PASSWORD_UNCHANGED")
		}

		passwordHash, err := HashPassword(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if err := h.repo.Agents().RotatePasswordTx(ctx, tx, agent.ID, passwordHash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate agent password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password rotation")
	}

	h.logger.Info("agent password rotated: %s", event.AgentID)

	return nil
}
