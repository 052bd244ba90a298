package kermesse

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Orders is the sales transaction repository
type Orders interface {
	repository.Repository[*Order]

	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*Order, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*Order, error)
	CreateOrder(ctx context.Context, record *Order) (*Order, error)
	CreateOrderTx(ctx context.Context, tx bun.IDB, record *Order) (*Order, error)
}

type orders struct {
	repository.Repository[*Order]
	db   *bun.DB
	feed *ChangeFeed
}

var _ Orders = (*orders)(nil)

func NewOrdersRepository(db *bun.DB, feed *ChangeFeed) Orders {
	repo := repository.NewRepository[*Order](db, repository.ModelHandlers[*Order]{
		NewRecord: func() *Order { return &Order{} },
		GetID: func(o *Order) uuid.UUID {
			if o == nil {
				return uuid.Nil
			}
			return o.ID
		},
		SetID: func(o *Order, id uuid.UUID) {
			if o != nil {
				o.ID = id
			}
		},
	})

	return &orders{
		Repository: repo,
		db:         db,
		feed:       feed,
	}
}

func (o *orders) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*Order, error) {
	var records []*Order
	err := o.db.NewSelect().
		Model(&records).
		Where("?TableAlias.agent_id = ?", agentID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (o *orders) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*Order, error) {
	var records []*Order
	err := o.db.NewSelect().
		Model(&records).
		Where("?TableAlias.participant_id = ?", participantID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (o *orders) CreateOrder(ctx context.Context, record *Order) (*Order, error) {
	return o.CreateOrderTx(ctx, o.db, record)
}

func (o *orders) CreateOrderTx(ctx context.Context, tx bun.IDB, record *Order) (*Order, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	created, err := o.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	if o.feed != nil {
		o.feed.PublishRecord(OpInsert, created)
	}
	return created, nil
}

// Recharges is the balance top-up repository
type Recharges interface {
	repository.Repository[*Recharge]

	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*Recharge, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*Recharge, error)
	CreateRecharge(ctx context.Context, record *Recharge) (*Recharge, error)
	CreateRechargeTx(ctx context.Context, tx bun.IDB, record *Recharge) (*Recharge, error)
}

type recharges struct {
	repository.Repository[*Recharge]
	db   *bun.DB
	feed *ChangeFeed
}

var _ Recharges = (*recharges)(nil)

func NewRechargesRepository(db *bun.DB, feed *ChangeFeed) Recharges {
	repo := repository.NewRepository[*Recharge](db, repository.ModelHandlers[*Recharge]{
		NewRecord: func() *Recharge { return &Recharge{} },
		GetID: func(r *Recharge) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Recharge, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &recharges{
		Repository: repo,
		db:         db,
		feed:       feed,
	}
}

func (r *recharges) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*Recharge, error) {
	var records []*Recharge
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.agent_id = ?", agentID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recharges) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*Recharge, error) {
	var records []*Recharge
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.participant_id = ?", participantID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recharges) CreateRecharge(ctx context.Context, record *Recharge) (*Recharge, error) {
	return r.CreateRechargeTx(ctx, r.db, record)
}

func (r *recharges) CreateRechargeTx(ctx context.Context, tx bun.IDB, record *Recharge) (*Recharge, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	created, err := r.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	if r.feed != nil {
		r.feed.PublishRecord(OpInsert, created)
	}
	return created, nil
}
