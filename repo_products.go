package kermesse

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Products is the product catalog repository. Mutations publish to the
// change feed after the write is acknowledged; the soft delete flips the
// deleted_at flag, records are never physically removed.
type Products interface {
	repository.Repository[*Product]

	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Product, error)
	CreateProduct(ctx context.Context, record *Product) (*Product, error)
	UpdateProduct(ctx context.Context, record *Product) (*Product, error)
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
}

type products struct {
	repository.Repository[*Product]
	db   *bun.DB
	feed *ChangeFeed
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB, feed *ChangeFeed) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &products{
		Repository: repo,
		db:         db,
		feed:       feed,
	}
}

// ListByEvent returns the event's catalog, active products only. The bun
// soft-delete filter excludes removed rows automatically.
func (p *products) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Product, error) {
	var records []*Product
	err := p.db.NewSelect().
		Model(&records).
		Where("?TableAlias.event_id = ?", eventID).
		Where("?TableAlias.active = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *products) CreateProduct(ctx context.Context, record *Product) (*Product, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Active = true

	created, err := p.Repository.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	p.notify(OpInsert, created)
	return created, nil
}

func (p *products) UpdateProduct(ctx context.Context, record *Product) (*Product, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	updated, err := p.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return nil, err
	}

	p.notify(OpUpdate, updated)
	return updated, nil
}

func (p *products) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	record := &Product{ID: id}
	_, err := p.db.NewDelete().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	p.notify(OpDelete, record)
	return nil
}

func (p *products) notify(op ChangeOp, record *Product) {
	if p.feed == nil {
		return
	}
	p.feed.PublishRecord(op, record)
}
