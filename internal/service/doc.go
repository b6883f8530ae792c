// Package service contains the application use cases of the fitness
// dashboard. It orchestrates domain objects and the repository interfaces
// defined in internal/store.
//
// Each resource has its own service. Services:
//
//   - receive their stores, a store.TxRunner and a logger through constructor injection
//   - enforce ownership and role rules for the calling Actor
//   - wrap every multi-row write in a single transaction, using WithTx on each store
//   - return sentinel errors for expected conditions, and a *ServiceError
//     wrapping the cause for unexpected failures
//
// The booking and membership flows lock the rows whose counters they change
// (schedule, gym) so that capacity checks and increments happen atomically.
// Competition progress updates lock the competition row so that re-ranking
// of one competition is serialized.
package service
