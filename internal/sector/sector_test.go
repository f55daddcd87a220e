package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	c, err := ParseID("3,-2")
	require.NoError(t, err)
	assert.Equal(t, Coord{X: 3, Y: -2}, c)
	assert.Equal(t, "3,-2", c.ID())

	_, err = ParseID("nonsense")
	assert.Error(t, err)

	_, err = ParseID("1,2,3")
	assert.Error(t, err)
}

func TestSectorOf(t *testing.T) {
	svc := NewService(1)
	assert.Equal(t, "0,0", svc.SectorOf(Position{X: 10, Y: 10}))
	assert.Equal(t, "1,0", svc.SectorOf(Position{X: 1500, Y: 10}))
	assert.Equal(t, "-1,-1", svc.SectorOf(Position{X: -10, Y: -10}))
}

func TestCenterRoundTrips(t *testing.T) {
	svc := NewService(1)
	for _, id := range []string{"0,0", "5,-3", "-2,7"} {
		center := svc.Center(id)
		assert.Equal(t, id, svc.SectorOf(center))
	}
}

func TestAdjacency(t *testing.T) {
	svc := NewService(1)
	adj := svc.Adjacent("0,0")
	require.Len(t, adj, 8)
	assert.Contains(t, adj, "1,0")
	assert.Contains(t, adj, "-1,-1")
	assert.NotContains(t, adj, "0,0")

	assert.True(t, svc.AreAdjacent("0,0", "1,1"))
	assert.True(t, svc.AreAdjacent("0,0", "0,-1"))
	assert.False(t, svc.AreAdjacent("0,0", "0,0"))
	assert.False(t, svc.AreAdjacent("0,0", "2,0"))
}

func TestDifficultyDeterministicAndBounded(t *testing.T) {
	a := NewService(42)
	b := NewService(42)
	for _, id := range []string{"0,0", "3,3", "-5,9", "100,-40"} {
		d := a.Difficulty(id)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 1.0)
		assert.Equal(t, d, b.Difficulty(id), "same seed must give same field")
	}
}
