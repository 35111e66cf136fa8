// Package search finds candidate multi-hop routes between two tokens over a
// liquidity graph snapshot. It builds a per-call weighted directed graph
// from the snapshot, then defers the actual k-shortest-loopless-paths
// search to gonum.org/v1/gonum/graph/path.YenKShortestPaths rather than
// hand-rolling Yen's algorithm.
//
// The liquidity graph is a multigraph: several pools can connect the same
// token pair in the same direction, and each must stay a distinct route
// alternative. Yen's output is a node sequence, which cannot tell parallel
// edges apart, so every directed pool edge is given its own node: the hop
// from -> edgeNode carries the edge weight and edgeNode -> to costs
// nothing. Parallel pools then surface as distinct paths, and the pool
// behind each hop is recovered from the edge node afterwards.
package search

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/swaphop/router-core/bitset"
	"github.com/swaphop/router-core/costmodel"
	"github.com/swaphop/router-core/liquiditygraph"
	"github.com/swaphop/router-core/token"
)

// Hop is one directed edge of a candidate route, carrying enough pool detail
// for simulate to walk it precisely.
type Hop struct {
	Edge        liquiditygraph.DirectedEdge
	PriceImpact float64
	GasEstimate int64
	Weight      float64
}

// Candidate is one proposed route through the graph, in traversal order.
type Candidate struct {
	Hops        []Hop
	TotalWeight float64
}

// Request parameterizes a single find_routes call.
type Request struct {
	TokenIn          token.ID
	TokenOut         token.ID
	AmountIn         *big.Int
	K                int
	AllowedExchanges []string
	Coefficients     costmodel.Coefficients
}

// FindPaths returns up to req.K candidate routes from req.TokenIn to
// req.TokenOut over snap, ordered by ascending total weight. A disconnected
// pair, a pair with no path, or a request whose source equals its
// destination returns (nil, nil): finding no route is an empty result, not
// an error.
func FindPaths(ctx context.Context, snap *liquiditygraph.Snapshot, req Request) ([]Candidate, error) {
	if req.TokenIn == req.TokenOut {
		return nil, nil
	}
	if _, ok := snap.Tokens[req.TokenIn]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, req.TokenIn)
	}
	if _, ok := snap.Tokens[req.TokenOut]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, req.TokenOut)
	}

	k := req.K
	if k <= 0 {
		k = 1
	}

	select {
	case <-ctx.Done():
		return nil, ErrCancelled
	default:
	}

	tokens := sortedTokenIDs(snap)
	nodeOf := make(map[token.ID]int64, len(tokens))
	for i, id := range tokens {
		nodeOf[id] = int64(i)
	}

	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for _, id := range nodeOf {
		g.AddNode(simple.Node(id))
	}

	allowed := allowSet(req.AllowedExchanges)
	hopOf := make(map[int64]Hop)

	// Edge node ids start past the token ids. Tokens are walked in sorted
	// order and Neighbors returns edges sorted by pool key, so the id
	// assignment is stable for a fixed snapshot.
	edgeNode := int64(len(tokens))
	for _, tokenID := range tokens {
		fromNode := nodeOf[tokenID]
		for _, edge := range snap.Neighbors(tokenID) {
			if edge.From == edge.To {
				continue
			}
			if len(allowed) > 0 {
				if _, ok := allowed[strings.ToLower(edge.Exchange)]; !ok {
					continue
				}
			}
			if edge.ReserveIn == nil || edge.ReserveOut == nil {
				continue
			}
			if edge.ReserveIn.Sign() <= 0 || edge.ReserveOut.Sign() <= 0 {
				continue
			}

			toNode, ok := nodeOf[edge.To]
			if !ok {
				continue
			}

			impact := costmodel.PriceImpact(req.AmountIn, edge.ReserveIn, edge.ReserveOut)
			gas := costmodel.GasEstimate(1, []string{edge.Exchange})
			weight := costmodel.EdgeWeight(req.Coefficients, impact, gas, costmodel.DefaultSlippage)

			hopOf[edgeNode] = Hop{Edge: edge, PriceImpact: impact, GasEstimate: gas, Weight: weight}
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(fromNode), T: simple.Node(edgeNode), W: weight})
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(edgeNode), T: simple.Node(toNode), W: 0})
			edgeNode++
		}
	}

	select {
	case <-ctx.Done():
		return nil, ErrCancelled
	default:
	}

	src := simple.Node(nodeOf[req.TokenIn])
	dst := simple.Node(nodeOf[req.TokenOut])

	paths := path.YenKShortestPaths(g, k, math.Inf(1), src, dst)
	if len(paths) == 0 {
		return nil, nil
	}

	guard := bitset.NewBitSet(uint64(edgeNode))
	candidates := make([]Candidate, 0, len(paths))
	ids := make([]uint64, 0, len(tokens))

	for _, nodes := range paths {
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}

		ids = ids[:0]
		for _, n := range nodes {
			ids = append(ids, uint64(n.ID()))
		}
		if !guard.Loopless(ids) {
			continue
		}

		cand, ok := buildCandidate(nodes, hopOf)
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TotalWeight != candidates[j].TotalWeight {
			return candidates[i].TotalWeight < candidates[j].TotalWeight
		}
		if len(candidates[i].Hops) != len(candidates[j].Hops) {
			return len(candidates[i].Hops) < len(candidates[j].Hops)
		}
		return poolKeySequence(candidates[i]) < poolKeySequence(candidates[j])
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// sortedTokenIDs lists the snapshot's tokens sorted by string form, so
// repeated calls against an unchanged snapshot always produce the same
// node-id assignment.
func sortedTokenIDs(snap *liquiditygraph.Snapshot) []token.ID {
	ids := make([]token.ID, 0, len(snap.Tokens))
	for id := range snap.Tokens {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func allowSet(exchanges []string) map[string]struct{} {
	if len(exchanges) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(exchanges))
	for _, ex := range exchanges {
		set[strings.ToLower(ex)] = struct{}{}
	}
	return set
}

// buildCandidate recovers the hop sequence from a Yen path, which
// alternates token and edge nodes: [token, edge, token, ..., token]. The
// hops sit at the odd positions.
func buildCandidate(nodes []graph.Node, hopOf map[int64]Hop) (Candidate, bool) {
	if len(nodes) < 3 || len(nodes)%2 == 0 {
		return Candidate{}, false
	}
	hops := make([]Hop, 0, len(nodes)/2)
	var total float64
	for i := 1; i < len(nodes); i += 2 {
		hop, ok := hopOf[nodes[i].ID()]
		if !ok {
			return Candidate{}, false
		}
		hops = append(hops, hop)
		total += hop.Weight
	}
	return Candidate{Hops: hops, TotalWeight: total}, true
}

func poolKeySequence(c Candidate) string {
	var b strings.Builder
	for _, h := range c.Hops {
		b.WriteString(string(h.Edge.PoolKey))
		b.WriteByte('|')
	}
	return b.String()
}
