package kermesse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var RotateAgentPasswordSQL = `UPDATE "agents" AS "agt"
SET
	"password_hash" = ?,
	"must_change_password" = FALSE,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"agt"."deleted_at" IS NULL
AND (
	"agt"."id" = ?
) RETURNING *;`

// Agents is the agent repository. Beyond plain CRUD it carries the login
// bookkeeping the identity gateway needs (attempt counters, cool-down
// timestamps) and the forced password-rotation write.
type Agents interface {
	repository.Repository[*Agent]

	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Agent, error)

	TrackAttemptedLogin(ctx context.Context, agent *Agent) error
	TrackSuccessfulLogin(ctx context.Context, agent *Agent) error

	RotatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	RotatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type agents struct {
	repository.Repository[*Agent]
	db   *bun.DB
	feed *ChangeFeed
}

var (
	_ Agents                        = (*agents)(nil)
	_ repository.Repository[*Agent] = (*agents)(nil)
)

func NewAgentsRepository(db *bun.DB, feed *ChangeFeed) Agents {
	repo := repository.NewRepository[*Agent](db, repository.ModelHandlers[*Agent]{
		NewRecord: func() *Agent { return &Agent{} },
		GetID: func(a *Agent) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Agent, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &agents{
		Repository: repo,
		db:         db,
		feed:       feed,
	}
}

// GetByIdentifier overrides the embedded lookup so a missing agent maps to
// ErrActorNotFound instead of the repository's not-found error.
func (a *agents) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Agent, error) {
	identifier = strings.TrimSpace(identifier)

	record := &Agent{}
	q := a.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where(fmt.Sprintf("?TableAlias.%s = ?", "email"), identifier).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *agents) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Agent, error) {
	var records []*Agent
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.event_id = ?", eventID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *agents) TrackAttemptedLogin(ctx context.Context, agent *Agent) error {
	attemptedAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "agents" AS "agt"
		SET
			"login_attempt_at" = ?,
			"login_attempts" = "login_attempts" + 1
		WHERE
			("agt".id = ?)
			AND "agt"."deleted_at" IS NULL;
	`, attemptedAt, agent.ID).Exec(ctx)

	return err
}

func (a *agents) TrackSuccessfulLogin(ctx context.Context, agent *Agent) error {
	loggedInAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "agents" AS "agt"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("agt".id = ?)
			AND "agt"."deleted_at" IS NULL;
	`, loggedInAt, agent.ID).Exec(ctx)

	return err
}

func (a *agents) RotatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.RotatePasswordTx(ctx, a.db, id, passwordHash)
}

func (a *agents) RotatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, RotateAgentPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	if a.feed != nil {
		a.feed.Publish(Change{
			Table: "agents",
			Op:    OpUpdate,
			Keys:  map[string]string{"agent_id": id.String()},
		})
	}

	return nil
}
