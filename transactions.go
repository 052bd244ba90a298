package kermesse

import (
	"context"

	"github.com/google/uuid"
)

// OrderHistory is the reactive sales history for one vente agent. Recording
// a sale writes to the backend, awaits the acknowledgment, then forces a
// reload; the change notification that follows is redundant and coalesces.
type OrderHistory struct {
	*Cache[[]*Order]
	repo    RepositoryManager
	agentID uuid.UUID
}

// NewOrderHistory builds the order list cache for one agent.
func NewOrderHistory(repo RepositoryManager, feed *ChangeFeed, agentID uuid.UUID, opts ...CacheOption[[]*Order]) *OrderHistory {
	loader := func(ctx context.Context) ([]*Order, error) {
		return repo.Orders().ListByAgent(ctx, agentID)
	}

	return &OrderHistory{
		Cache:   NewCache(loader, feed, "orders", "agent_id", agentID.String(), opts...),
		repo:    repo,
		agentID: agentID,
	}
}

// RecordSale inserts the order, then reloads.
func (h *OrderHistory) RecordSale(ctx context.Context, record *Order) (*Order, error) {
	record.AgentID = h.agentID

	created, err := h.repo.Orders().CreateOrder(ctx, record)
	if err != nil {
		return nil, err
	}

	if _, err := h.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// RechargeHistory is the reactive top-up history for one recharge agent.
type RechargeHistory struct {
	*Cache[[]*Recharge]
	repo    RepositoryManager
	agentID uuid.UUID
}

// NewRechargeHistory builds the recharge list cache for one agent.
func NewRechargeHistory(repo RepositoryManager, feed *ChangeFeed, agentID uuid.UUID, opts ...CacheOption[[]*Recharge]) *RechargeHistory {
	loader := func(ctx context.Context) ([]*Recharge, error) {
		return repo.Recharges().ListByAgent(ctx, agentID)
	}

	return &RechargeHistory{
		Cache:   NewCache(loader, feed, "recharges", "agent_id", agentID.String(), opts...),
		repo:    repo,
		agentID: agentID,
	}
}

// RecordRecharge inserts the top-up, then reloads.
func (h *RechargeHistory) RecordRecharge(ctx context.Context, record *Recharge) (*Recharge, error) {
	record.AgentID = h.agentID

	created, err := h.repo.Recharges().CreateRecharge(ctx, record)
	if err != nil {
		return nil, err
	}

	if _, err := h.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}
