// Package liquiditygraph is the directed multigraph of pools the router
// searches: nodes are token identities, edges are derived per direction
// from a pool table keyed by pool identity, so a pool's two directions can
// never drift apart. Writers mutate under a lock and publish an immutable
// snapshot through an atomic pointer; readers never block.
package liquiditygraph

import (
	"sync"
	"sync/atomic"

	"github.com/swaphop/router-core/pool"
	"github.com/swaphop/router-core/token"
)

// Graph is the concurrency-safe liquidity graph. Writes (UpsertPool,
// RemovePool) serialize on a mutex; reads (View, Neighbors) are lock-free
// against a cached, immutable Snapshot.
type Graph struct {
	mu     sync.Mutex
	tokens map[token.ID]token.Token
	pools  map[pool.Key]pool.Pool
	// adjacency maps a token to the set of pool keys touching it, mutated
	// only under mu; publish() deep-copies it into the published Snapshot.
	adjacency map[token.ID]map[pool.Key]struct{}

	snapshot atomic.Pointer[Snapshot]
}

// New creates an empty liquidity graph.
func New() *Graph {
	g := &Graph{
		tokens:    make(map[token.ID]token.Token),
		pools:     make(map[pool.Key]pool.Pool),
		adjacency: make(map[token.ID]map[pool.Key]struct{}),
	}
	g.publish()
	return g
}

// UpsertPool inserts or replaces a pool by its identity key, adding any
// tokens it references that aren't yet registered. It is idempotent:
// upserting the same pool twice leaves the graph equal to upserting it
// once, since both the pool table and the adjacency sets are
// keyed/deduplicated by pool.Key.
func (g *Graph) UpsertPool(p pool.Pool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := p.Key()
	g.pools[key] = p
	g.tokens[p.TokenA.ID] = p.TokenA
	g.tokens[p.TokenB.ID] = p.TokenB

	g.linkEdge(p.TokenA.ID, key)
	g.linkEdge(p.TokenB.ID, key)

	g.publish()
	return nil
}

func (g *Graph) linkEdge(id token.ID, key pool.Key) {
	set, ok := g.adjacency[id]
	if !ok {
		set = make(map[pool.Key]struct{})
		g.adjacency[id] = set
	}
	set[key] = struct{}{}
}

// RemovePool deletes a pool by identity key, along with the edges it was
// the sole occupant of. Removing a pool removes both of its directed edges,
// since both are derived from the single pool-table entry being deleted
// (invariant: exactly two edges per pool).
func (g *Graph) RemovePool(key pool.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pools[key]
	if !ok {
		return
	}
	delete(g.pools, key)
	g.unlinkEdge(p.TokenA.ID, key)
	g.unlinkEdge(p.TokenB.ID, key)

	g.publish()
}

func (g *Graph) unlinkEdge(id token.ID, key pool.Key) {
	set, ok := g.adjacency[id]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(g.adjacency, id)
	}
}

// View returns the current immutable snapshot. Concurrent View calls and a
// racing UpsertPool/RemovePool observe a consistent copy-on-write snapshot:
// a find_routes call that takes its View before a write returns sees the
// pre-write graph throughout its search, even if the write completes
// mid-call (the concurrency model's "either copy-on-write or a held read
// lock for the full call", satisfied here via copy-on-write).
func (g *Graph) View() *Snapshot {
	return g.snapshot.Load()
}

// Neighbors is a convenience passthrough to the current snapshot, exposing
// the graph contract's neighbors(token_id) operation directly off Graph.
func (g *Graph) Neighbors(id token.ID) []DirectedEdge {
	return g.View().Neighbors(id)
}

// publish must be called while holding mu. It builds a fresh, independent
// Snapshot from the current mutable state and atomically swaps it in.
func (g *Graph) publish() {
	tokens := make(map[token.ID]token.Token, len(g.tokens))
	for k, v := range g.tokens {
		tokens[k] = v
	}
	pools := make(map[pool.Key]pool.Pool, len(g.pools))
	for k, v := range g.pools {
		pools[k] = v
	}
	adjacency := make(map[token.ID]map[pool.Key]struct{}, len(g.adjacency))
	for tokenID, set := range g.adjacency {
		copied := make(map[pool.Key]struct{}, len(set))
		for k := range set {
			copied[k] = struct{}{}
		}
		adjacency[tokenID] = copied
	}

	g.snapshot.Store(&Snapshot{Tokens: tokens, Pools: pools, adjacency: adjacency})
}
