package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dagr/internal/dagerr"
)

func TestNew_UnknownDependency(t *testing.T) {
	_, err := New([]Node{{ID: "T-1", DependsOn: []string{"T-99"}}})
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.UnknownTask))
}

func TestNew_Cycle(t *testing.T) {
	_, err := New([]Node{
		{ID: "T-1", DependsOn: []string{"T-3"}},
		{ID: "T-2", DependsOn: []string{"T-1"}},
		{ID: "T-3", DependsOn: []string{"T-2"}},
	})
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.CycleDetected))
}

func TestTopologicalOrder_DependenciesFirst(t *testing.T) {
	g, err := New([]Node{
		{ID: "T-3", DependsOn: []string{"T-1", "T-2"}},
		{ID: "T-1"},
		{ID: "T-2", DependsOn: []string{"T-1"}},
	})
	require.NoError(t, err)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"T-1", "T-2", "T-3"}, order)
}

func TestTopologicalOrder_TieBreaksByNumericSuffix(t *testing.T) {
	g, err := New([]Node{
		{ID: "T-10"},
		{ID: "T-2"},
		{ID: "T-1"},
	})
	require.NoError(t, err)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"T-1", "T-2", "T-10"}, order)
}

func TestReverseTopologicalOrder(t *testing.T) {
	g, err := New([]Node{
		{ID: "T-1"},
		{ID: "T-2", DependsOn: []string{"T-1"}},
	})
	require.NoError(t, err)

	order, err := g.ReverseTopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"T-2", "T-1"}, order)
}

func TestReachableAncestorsAndDescendants(t *testing.T) {
	g, err := New([]Node{
		{ID: "T-1"},
		{ID: "T-2", DependsOn: []string{"T-1"}},
		{ID: "T-3", DependsOn: []string{"T-2"}},
		{ID: "T-4"},
	})
	require.NoError(t, err)

	ancestors, err := g.ReachableAncestors("T-3")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"T-1": true, "T-2": true}, ancestors)

	descendants, err := g.ReachableDescendants("T-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"T-2": true, "T-3": true}, descendants)

	descendants, err = g.ReachableDescendants("T-4")
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

func TestReachableAncestors_UnknownID(t *testing.T) {
	g, err := New([]Node{{ID: "T-1"}})
	require.NoError(t, err)
	_, err = g.ReachableAncestors("T-99")
	require.Error(t, err)
}
