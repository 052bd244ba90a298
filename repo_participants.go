package kermesse

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Participants is the attendee repository. Participants authenticate with
// their badge code, so lookups by badge are the identity path.
type Participants interface {
	repository.Repository[*Participant]

	GetByBadge(ctx context.Context, badgeCode string) (*Participant, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Participant, error)
}

type participants struct {
	repository.Repository[*Participant]
	db   *bun.DB
	feed *ChangeFeed
}

var _ Participants = (*participants)(nil)

func NewParticipantsRepository(db *bun.DB, feed *ChangeFeed) Participants {
	repo := repository.NewRepository[*Participant](db, repository.ModelHandlers[*Participant]{
		NewRecord: func() *Participant { return &Participant{} },
		GetID: func(p *Participant) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Participant, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "badge_code"
		},
	})

	return &participants{
		Repository: repo,
		db:         db,
		feed:       feed,
	}
}

func (p *participants) GetByBadge(ctx context.Context, badgeCode string) (*Participant, error) {
	badgeCode = strings.TrimSpace(badgeCode)

	record := &Participant{}
	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.badge_code = ?", badgeCode).
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

func (p *participants) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Participant, error) {
	var records []*Participant
	err := p.db.NewSelect().
		Model(&records).
		Where("?TableAlias.event_id = ?", eventID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
