package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/city-quest/internal/cities"
)

func pool(n int) []cities.City {
	out := make([]cities.City, n)
	for i := range out {
		out[i] = cities.City{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("City %d", i)}
	}
	return out
}

func TestRoundKey(t *testing.T) {
	assert.Equal(t, 7, RoundKey(7, 0))
	assert.Equal(t, 10, RoundKey(7, 3))
	assert.Equal(t, 3, RoundKey(0, 3), "missing seed defaults to zero")
}

func TestSelectCityEmptyHistory(t *testing.T) {
	key := RoundKey(7, 0)
	c, ok := SelectCity(key, nil, pool(10))
	require.True(t, ok)
	assert.Equal(t, "c7", c.ID)
}

func TestSelectCitySkipsExcluded(t *testing.T) {
	// Filtered list is c0 c2 c4 .. c9 (8 items); 7 mod 8 = 7 -> c9.
	c, ok := SelectCity(7, []string{"c1", "c3"}, pool(10))
	require.True(t, ok)
	assert.Equal(t, "c9", c.ID)
}

func TestSelectCityDeterministic(t *testing.T) {
	p := cities.Default().All()
	excluded := []string{"gaza", "jaffa"}
	for key := -25; key < 50; key++ {
		a, okA := SelectCity(key, excluded, p)
		b, okB := SelectCity(key, excluded, p)
		require.True(t, okA)
		require.True(t, okB)
		assert.Equal(t, a.ID, b.ID)
		assert.NotContains(t, excluded, a.ID)
	}
}

func TestSelectCityNegativeKey(t *testing.T) {
	c, ok := SelectCity(-1, nil, pool(10))
	require.True(t, ok)
	assert.Equal(t, "c9", c.ID)
}

func TestSelectCityExhausted(t *testing.T) {
	p := pool(3)
	_, ok := SelectCity(4, []string{"c0", "c1", "c2"}, p)
	assert.False(t, ok)

	_, ok = SelectCity(4, nil, nil)
	assert.False(t, ok)
}

func TestSessionsDiverge(t *testing.T) {
	p := cities.Default().All()
	a, _ := SelectCity(RoundKey(3, 0), nil, p)
	b, _ := SelectCity(RoundKey(4, 0), nil, p)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLookup(t *testing.T) {
	d, err := Lookup("city-guess")
	require.NoError(t, err)
	assert.Equal(t, 10, d.TotalRounds)

	_, err = Lookup("chess")
	assert.ErrorIs(t, err, ErrUnknownGame)

	assert.Len(t, Games(), 2)
}
