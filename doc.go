// Package kermesse keeps a client's view of a cashless event-payment
// backend authenticated and consistent. Three disjoint actor types
// (administrator, booth agent, participant) each own an independent
// session authority, and locally cached datasets (product catalogs, sales
// stats, balances) follow backend mutations without double-counting or
// serving stale data past expiry.
//
// Session lifecycle:
//   - SessionStore owns persistence, expiry evaluation, and invalidation
//     of one actor type's session. Sessions persist as two JSON strings
//     (actor snapshot + descriptor) under namespaced keys; the pair is the
//     unit of validity and is purged atomically.
//   - Guard is the navigation state machine: restore, forced password
//     rotation for agents, corrective role redirects, then render.
//     GuardedRoutes adapts it into go-router middleware.
//
// Reactive synchronization:
//   - ChangeFeed bridges backend mutations into at-least-once
//     notifications filtered by owner keys (agent id, event id). The
//     repositories publish after each acknowledged write.
//   - Cache holds one derived dataset per scoped query: at most one
//     in-flight load, concurrent loads coalesce, notifications during a
//     load trigger exactly one follow-up. Failed loads reset the dataset
//     to its zero value so stale numbers are never presented as current.
//
// The identity boundary is IdentityGateway; LocalGateway is the bundled
// bcrypt + signed-descriptor implementation over the bun repositories.
package kermesse
