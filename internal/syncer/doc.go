// Package syncer merges two replicated storage locations pairwise. The merge
// is a pure max-by-version decision per key, which makes repeated pairwise
// syncs commutative: any pairing order over the same set of writes converges
// every location to the same state.
package syncer
