package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/city-quest/internal/cities"
	"github.com/tatianab/city-quest/internal/game"
	"github.com/tatianab/city-quest/internal/models"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(cities.Default())
	require.NoError(t, err)
	return c
}

func TestBuildDeterministic(t *testing.T) {
	c := newComposer(t)
	p := Params{
		GameID:      "city-guess",
		Difficulty:  models.DifficultyHard,
		ChatContext: []string{"olives", "the sea"},
		PlayerAge:   9,
		PlayerName:  "Maya",
		ExcludedIDs: []string{"jaffa", "gaza"},
		RoundKey:    game.RoundKey(42, 2),
		Round:       3,
	}

	a, err := c.Build(p)
	require.NoError(t, err)

	// Excluded ids in another order render the same prompt.
	p.ExcludedIDs = []string{"gaza", "jaffa"}
	b, err := c.Build(p)
	require.NoError(t, err)

	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Target.ID, b.Target.ID)
	assert.Contains(t, a.Text, "round 3 of 10")
	assert.Contains(t, a.Text, "Maya")
	assert.Contains(t, a.Text, "olives, the sea")
	assert.Contains(t, a.Text, "Gaza (gaza), Jaffa (jaffa)")
}

func TestBuildNeverLeaksTarget(t *testing.T) {
	c := newComposer(t)
	g := cities.Default()
	n := len(g.All())

	for _, gameID := range []string{"city-guess", "city-riddle"} {
		for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
			for key := 0; key < n; key++ {
				p, err := c.Build(Params{GameID: gameID, Difficulty: d, RoundKey: key, Round: 1})
				require.NoError(t, err)
				require.False(t, p.Exhausted)
				assert.NotContains(t, g.Detect(p.Text), p.Target.ID, "%s/%s leaks %s", gameID, d, p.Target.ID)
			}
		}
	}
}

func TestBuildClueCount(t *testing.T) {
	c := newComposer(t)
	easy, err := c.Build(Params{GameID: "city-guess", Difficulty: models.DifficultyEasy, RoundKey: 1})
	require.NoError(t, err)
	hard, err := c.Build(Params{GameID: "city-guess", Difficulty: models.DifficultyHard, RoundKey: 1})
	require.NoError(t, err)

	require.Equal(t, easy.Target.ID, hard.Target.ID)
	assert.Contains(t, easy.Text, "4. ")
	assert.NotContains(t, hard.Text, "3. ")
	assert.Contains(t, hard.Text, "Difficulty: hard")
}

func TestBuildExhausted(t *testing.T) {
	c := newComposer(t)
	var all []string
	for _, city := range cities.Default().All() {
		all = append(all, city.ID)
	}

	p, err := c.Build(Params{GameID: "city-guess", ExcludedIDs: all, Round: 4})
	require.NoError(t, err)
	assert.True(t, p.Exhausted)
	assert.Contains(t, p.Text, "call end_game once")
	assert.NotContains(t, p.Text, "The secret city")
}

func TestBuildFinished(t *testing.T) {
	c := newComposer(t)
	p, err := c.Build(Params{GameID: "city-riddle", Round: 6})
	require.NoError(t, err)
	assert.Contains(t, p.Text, "All 5 rounds have been played")
	assert.NotContains(t, p.Text, "The secret city")
}

func TestBuildListsTools(t *testing.T) {
	c := newComposer(t)
	p, err := c.Build(Params{GameID: "city-riddle", Round: 1})
	require.NoError(t, err)
	for _, tool := range []string{models.ToolCheckAnswer, models.ToolGiveHint, models.ToolAdvanceRound, models.ToolEndGame} {
		assert.Contains(t, p.Text, tool)
	}
	assert.Contains(t, p.Text, "rhyming riddle")
}

func TestBuildUnknownGame(t *testing.T) {
	_, err := newComposer(t).Build(Params{GameID: "chess"})
	assert.ErrorIs(t, err, game.ErrUnknownGame)
}

func TestTone(t *testing.T) {
	assert.Contains(t, toneFor(0), "between 6 and 12")
	assert.Contains(t, toneFor(6), "very short sentences")
	assert.Contains(t, toneFor(9), "explain any new word")
	assert.Contains(t, toneFor(12), "richer words")
}
