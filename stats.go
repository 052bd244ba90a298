package kermesse

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SalesStats is the vente agent's aggregate view. Totals are recomputed
// from the full matching result set on every refresh; O(n) in the agent's
// transaction count, which one event's activity keeps small.
type SalesStats struct {
	TotalSalesCents int64
	TodaySalesCents int64
	TotalOrders     int
	TodayOrders     int
}

// RechargeStats is the recharge agent's aggregate view
type RechargeStats struct {
	TotalRechargedCents int64
	TodayRechargedCents int64
	TotalRecharges      int
	TodayRecharges      int
}

// Balance is a participant's derived prepaid balance:
// sum(recharges) - sum(orders). Never stored, always recomputed.
type Balance struct {
	AmountCents    int64
	RechargedCents int64
	SpentCents     int64
}

// NewSalesStatsCache builds the reactive aggregate for one vente agent,
// keyed on the agent's own orders.
func NewSalesStatsCache(repo RepositoryManager, feed *ChangeFeed, agentID uuid.UUID, opts ...CacheOption[SalesStats]) *Cache[SalesStats] {
	loader := func(ctx context.Context) (SalesStats, error) {
		records, err := repo.Orders().ListByAgent(ctx, agentID)
		if err != nil {
			return SalesStats{}, err
		}
		return computeSalesStats(records, time.Now()), nil
	}

	return NewCache(loader, feed, "orders", "agent_id", agentID.String(), opts...)
}

// NewRechargeStatsCache builds the reactive aggregate for one recharge
// agent, keyed on the agent's own recharges.
func NewRechargeStatsCache(repo RepositoryManager, feed *ChangeFeed, agentID uuid.UUID, opts ...CacheOption[RechargeStats]) *Cache[RechargeStats] {
	loader := func(ctx context.Context) (RechargeStats, error) {
		records, err := repo.Recharges().ListByAgent(ctx, agentID)
		if err != nil {
			return RechargeStats{}, err
		}
		return computeRechargeStats(records, time.Now()), nil
	}

	return NewCache(loader, feed, "recharges", "agent_id", agentID.String(), opts...)
}

// NewBalanceCache derives one participant's balance. The dataset reads
// both recharges and orders, so the cache watches both tables: a sale and
// a top-up each trigger the wholesale recompute.
func NewBalanceCache(repo RepositoryManager, feed *ChangeFeed, participantID uuid.UUID, opts ...CacheOption[Balance]) *Cache[Balance] {
	loader := func(ctx context.Context) (Balance, error) {
		recharged, err := repo.Recharges().ListByParticipant(ctx, participantID)
		if err != nil {
			return Balance{}, err
		}

		spent, err := repo.Orders().ListByParticipant(ctx, participantID)
		if err != nil {
			return Balance{}, err
		}

		return computeBalance(recharged, spent), nil
	}

	opts = append(opts, WithCacheWatch[Balance]("orders", "participant_id", participantID.String()))
	return NewCache(loader, feed, "recharges", "participant_id", participantID.String(), opts...)
}

func computeSalesStats(records []*Order, now time.Time) SalesStats {
	boundary := StartOfToday(now)

	stats := SalesStats{}
	for _, record := range records {
		stats.TotalSalesCents += record.AmountCents
		stats.TotalOrders++

		if record.CreatedAt != nil && !record.CreatedAt.Before(boundary) {
			stats.TodaySalesCents += record.AmountCents
			stats.TodayOrders++
		}
	}
	return stats
}

func computeRechargeStats(records []*Recharge, now time.Time) RechargeStats {
	boundary := StartOfToday(now)

	stats := RechargeStats{}
	for _, record := range records {
		stats.TotalRechargedCents += record.AmountCents
		stats.TotalRecharges++

		if record.CreatedAt != nil && !record.CreatedAt.Before(boundary) {
			stats.TodayRechargedCents += record.AmountCents
			stats.TodayRecharges++
		}
	}
	return stats
}

func computeBalance(recharged []*Recharge, spent []*Order) Balance {
	balance := Balance{}
	for _, record := range recharged {
		balance.RechargedCents += record.AmountCents
	}
	for _, record := range spent {
		balance.SpentCents += record.AmountCents
	}
	balance.AmountCents = balance.RechargedCents - balance.SpentCents
	return balance
}
