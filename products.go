package kermesse

import (
	"context"

	"github.com/google/uuid"
)

// ProductCatalog is the reactive product list for one event, with
// write-through mutations. Each write goes to the backend first, then
// forces an explicit reload rather than waiting for the change
// notification: the agent's own write must be visible immediately even if
// the notification channel lags.
type ProductCatalog struct {
	*Cache[[]*Product]
	repo    RepositoryManager
	eventID uuid.UUID
}

// NewProductCatalog builds the catalog cache for one event.
func NewProductCatalog(repo RepositoryManager, feed *ChangeFeed, eventID uuid.UUID, opts ...CacheOption[[]*Product]) *ProductCatalog {
	loader := func(ctx context.Context) ([]*Product, error) {
		return repo.Products().ListByEvent(ctx, eventID)
	}

	return &ProductCatalog{
		Cache:   NewCache(loader, feed, "products", "event_id", eventID.String(), opts...),
		repo:    repo,
		eventID: eventID,
	}
}

// Create inserts the product, then reloads.
func (c *ProductCatalog) Create(ctx context.Context, record *Product) (*Product, error) {
	record.EventID = c.eventID

	created, err := c.repo.Products().CreateProduct(ctx, record)
	if err != nil {
		return nil, err
	}

	if _, err := c.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Update rewrites the product, then reloads.
func (c *ProductCatalog) Update(ctx context.Context, record *Product) (*Product, error) {
	updated, err := c.repo.Products().UpdateProduct(ctx, record)
	if err != nil {
		return nil, err
	}

	if _, err := c.Load(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// Remove soft-deletes the product, then reloads.
func (c *ProductCatalog) Remove(ctx context.Context, id uuid.UUID) error {
	if err := c.repo.Products().SoftDeleteProduct(ctx, id); err != nil {
		return err
	}

	_, err := c.Load(ctx)
	return err
}
