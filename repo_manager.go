package kermesse

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Events() repository.Repository[*Event]
	Admins() repository.Repository[*Admin]
	Participants() Participants
	Agents() Agents
	Products() Products
	Orders() Orders
	Recharges() Recharges
}

type mngr struct {
	db           *bun.DB
	events       repository.Repository[*Event]
	admins       repository.Repository[*Admin]
	participants Participants
	agents       Agents
	products     Products
	orders       Orders
	recharges    Recharges
}

// NewRepositoryManager wires every repository over one bun handle. Mutating
// repositories publish to feed so subscribed caches hear about writes; a
// nil feed disables notifications.
func NewRepositoryManager(db *bun.DB, feed *ChangeFeed) RepositoryManager {
	return &mngr{
		db:           db,
		events:       NewEventsRepository(db),
		admins:       NewAdminsRepository(db),
		participants: NewParticipantsRepository(db, feed),
		agents:       NewAgentsRepository(db, feed),
		products:     NewProductsRepository(db, feed),
		orders:       NewOrdersRepository(db, feed),
		recharges:    NewRechargesRepository(db, feed),
	}
}

func (m mngr) Validate() error {
	if m.events == nil {
		return errors.New("repository events should be initialized")
	}

	if m.admins == nil {
		return errors.New("repository admins should be initialized")
	}

	if m.participants == nil {
		return errors.New("repository participants should be initialized")
	}

	if m.agents == nil {
		return errors.New("repository agents should be initialized")
	}

	if m.products == nil {
		return errors.New("repository products should be initialized")
	}

	if m.orders == nil {
		return errors.New("repository orders should be initialized")
	}

	if m.recharges == nil {
		return errors.New("repository recharges should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Events() repository.Repository[*Event] {
	return m.events
}

func (m mngr) Admins() repository.Repository[*Admin] {
	return m.admins
}

func (m mngr) Participants() Participants {
	return m.participants
}

func (m mngr) Agents() Agents {
	return m.agents
}

func (m mngr) Products() Products {
	return m.products
}

func (m mngr) Orders() Orders {
	return m.orders
}

func (m mngr) Recharges() Recharges {
	return m.recharges
}

func NewEventsRepository(db *bun.DB) repository.Repository[*Event] {
	handlers := repository.ModelHandlers[*Event]{
		NewRecord: func() *Event {
			return &Event{}
		},
		GetID: func(record *Event) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Event, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewAdminsRepository(db *bun.DB) repository.Repository[*Admin] {
	handlers := repository.ModelHandlers[*Admin]{
		NewRecord: func() *Admin {
			return &Admin{}
		},
		GetID: func(record *Admin) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Admin, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}
