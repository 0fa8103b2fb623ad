package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/city-quest/internal/models"
)

func TestParseChoice(t *testing.T) {
	def, d, err := parseChoice("2 HARD")
	require.NoError(t, err)
	assert.Equal(t, "city-riddle", def.ID)
	assert.Equal(t, models.DifficultyHard, d)

	def, d, err = parseChoice(" 1 ")
	require.NoError(t, err)
	assert.Equal(t, "city-guess", def.ID)
	assert.Empty(t, d)

	for _, bad := range []string{"", "3", "one", "1 extreme"} {
		_, _, err := parseChoice(bad)
		assert.Error(t, err, bad)
	}
}

func TestToolLine(t *testing.T) {
	check := models.ToolPart(models.ToolCheckAnswer, nil, map[string]any{"correct": true, "explanation": "Yes! The city is Gaza."})
	assert.Equal(t, "Yes! The city is Gaza.", toolLine(check.Tool))

	hint := models.ToolPart(models.ToolGiveHint, nil, map[string]any{"hint": "It is by the sea."})
	assert.Equal(t, "Hint: It is by the sea.", toolLine(hint.Tool))

	failed := models.ToolPart(models.ToolGiveHint, nil, map[string]any{"error": "round is over"})
	assert.Empty(t, toolLine(failed.Tool))
}
