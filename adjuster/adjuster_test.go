package adjuster

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaphop/router-core/liquiditygraph"
	"github.com/swaphop/router-core/pool"
	"github.com/swaphop/router-core/simulate"
)

func route(amountIn int64, poolKeys ...string) simulate.Route {
	steps := make([]simulate.Step, 0, len(poolKeys))
	for _, k := range poolKeys {
		steps = append(steps, simulate.Step{Edge: liquiditygraph.DirectedEdge{PoolKey: pool.Key(k)}})
	}
	return simulate.Route{AmountIn: big.NewInt(amountIn), Steps: steps}
}

func TestIdentityAdjuster_ReturnsUnchanged(t *testing.T) {
	routes := []simulate.Route{route(100, "a"), route(200, "b")}
	out, err := IdentityAdjuster{}.Adjust(routes)
	require.NoError(t, err)
	assert.Equal(t, routes, out)
}

type reorderingAdjuster struct{}

func (reorderingAdjuster) Adjust(routes []simulate.Route) ([]simulate.Route, error) {
	out := make([]simulate.Route, len(routes))
	for i, r := range routes {
		out[len(routes)-1-i] = r
	}
	return out, nil
}

func TestApply_AllowsReordering(t *testing.T) {
	routes := []simulate.Route{route(100, "a"), route(200, "b")}
	out, err := Apply(reorderingAdjuster{}, routes)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, routes[1], out[0])
	assert.Equal(t, routes[0], out[1])
}

type erroringAdjuster struct{}

func (erroringAdjuster) Adjust(routes []simulate.Route) ([]simulate.Route, error) {
	return nil, errors.New("model unavailable")
}

func TestApply_ErroringAdjusterFallsBackToOriginal(t *testing.T) {
	routes := []simulate.Route{route(100, "a")}
	out, err := Apply(erroringAdjuster{}, routes)
	assert.ErrorIs(t, err, ErrAdjusterFault)
	assert.Equal(t, routes, out)
}

type panickingAdjuster struct{}

func (panickingAdjuster) Adjust(routes []simulate.Route) ([]simulate.Route, error) {
	panic("boom")
}

func TestApply_PanickingAdjusterFallsBackToOriginal(t *testing.T) {
	routes := []simulate.Route{route(100, "a")}
	out, err := Apply(panickingAdjuster{}, routes)
	assert.ErrorIs(t, err, ErrAdjusterFault)
	assert.Equal(t, routes, out)
}

type inventingAdjuster struct{}

func (inventingAdjuster) Adjust(routes []simulate.Route) ([]simulate.Route, error) {
	return append(routes, route(999, "z")), nil
}

func TestApply_InventingRoutesIsRejected(t *testing.T) {
	routes := []simulate.Route{route(100, "a")}
	out, err := Apply(inventingAdjuster{}, routes)
	assert.ErrorIs(t, err, ErrAdjusterFault)
	assert.Equal(t, routes, out)
}

func TestApply_NilAdjusterIsNoop(t *testing.T) {
	routes := []simulate.Route{route(100, "a")}
	out, err := Apply(nil, routes)
	require.NoError(t, err)
	assert.Equal(t, routes, out)
}
