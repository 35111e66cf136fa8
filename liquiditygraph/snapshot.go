package liquiditygraph

import (
	"math/big"
	"sort"

	"github.com/swaphop/router-core/pool"
	"github.com/swaphop/router-core/token"
)

// DirectedEdge is one directed hop of a pool: From's reserve/price are
// expressed as the "in" side, To's as the "out" side. It is always derived
// on the fly from a Pool, never stored separately, so the forward and
// reverse edges of a pool can never drift out of mirror.
type DirectedEdge struct {
	PoolKey    pool.Key
	Exchange   string
	From       token.ID
	To         token.ID
	ReserveIn  *big.Int
	ReserveOut *big.Int
	FeeTierPpm uint32
	Price      float64 // price of From in units of To
	Liquidity  float64
}

// Snapshot is an immutable, point-in-time view of the graph, safe to read
// concurrently without locking and safe to hand to a search call that will
// outlive any single upsert.
type Snapshot struct {
	Tokens map[token.ID]token.Token
	Pools  map[pool.Key]pool.Pool
	// adjacency maps a token to the set of pool keys touching it, in either
	// direction.
	adjacency map[token.ID]map[pool.Key]struct{}
}

// Neighbors returns the directed edges leaving id, sorted by pool key so
// that a fixed graph with the identity adjuster always produces the same
// find_routes ordering.
func (s *Snapshot) Neighbors(id token.ID) []DirectedEdge {
	keys := s.adjacency[id]
	if len(keys) == 0 {
		return nil
	}
	sorted := make([]pool.Key, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	edges := make([]DirectedEdge, 0, len(sorted))
	for _, k := range sorted {
		p, ok := s.Pools[k]
		if !ok {
			continue
		}
		edge, ok := directedEdge(p, id)
		if !ok {
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

// directedEdge derives the directed edge of p as seen from the "from" token.
// This is the single place reserves/price get mirrored, which is what keeps
// the two directions of a pool from ever diverging.
func directedEdge(p pool.Pool, from token.ID) (DirectedEdge, bool) {
	switch from {
	case p.TokenA.ID:
		return DirectedEdge{
			PoolKey: p.Key(), Exchange: p.Exchange,
			From: p.TokenA.ID, To: p.TokenB.ID,
			ReserveIn: p.ReserveA, ReserveOut: p.ReserveB,
			FeeTierPpm: p.FeeTierPpm, Price: p.Price, Liquidity: p.Liquidity,
		}, true
	case p.TokenB.ID:
		inversePrice := 0.0
		if p.Price != 0 {
			inversePrice = 1 / p.Price
		}
		return DirectedEdge{
			PoolKey: p.Key(), Exchange: p.Exchange,
			From: p.TokenB.ID, To: p.TokenA.ID,
			ReserveIn: p.ReserveB, ReserveOut: p.ReserveA,
			FeeTierPpm: p.FeeTierPpm, Price: inversePrice, Liquidity: p.Liquidity,
		}, true
	default:
		return DirectedEdge{}, false
	}
}
