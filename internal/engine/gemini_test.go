package engine

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/tools"
)

func TestToContents(t *testing.T) {
	check := models.ToolPart(models.ToolCheckAnswer, map[string]any{"guess": "Gaza"}, map[string]any{"correct": true})
	turns := []models.Turn{
		{ID: "checkpoint-1", Role: models.RoleUser, Parts: []models.Part{models.TextPart("[Game progress] round 2")}},
		userSays("Is it Gaza?"),
		models.NewTurn(models.RoleAssistant, models.TextPart("Let me see."), check, models.TextPart("Yes!")),
		models.NewTurn(models.RoleSystem, models.TextPart("ignored")),
		userSays("again!"),
	}

	got := toContents(turns)
	require.Len(t, got, 5)

	var roles []string
	for _, c := range got {
		roles = append(roles, c.Role)
	}
	assert.Equal(t, []string{"user", "model", "user", "model", "user"}, roles)

	assert.Len(t, got[0].Parts, 2, "adjacent user turns are merged")
	assert.Equal(t, genai.Text("Let me see."), got[1].Parts[0])
	assert.Equal(t, genai.FunctionCall{Name: models.ToolCheckAnswer, Args: map[string]any{"guess": "Gaza"}}, got[1].Parts[1])
	assert.Equal(t, genai.FunctionResponse{Name: models.ToolCheckAnswer, Response: map[string]any{"correct": true}}, got[2].Parts[0])
	assert.Equal(t, []genai.Part{genai.Text("Yes!")}, got[3].Parts)
}

func TestToContentsSkipsUnresolvedCalls(t *testing.T) {
	pending := models.Part{Type: models.PartToolInvocation, Tool: &models.ToolInvocation{Name: models.ToolGiveHint, State: models.ToolStateCall}}
	got := toContents([]models.Turn{
		userSays("help"),
		models.NewTurn(models.RoleAssistant, pending),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "user", got[0].Role)
}

func TestToTools(t *testing.T) {
	got := toTools(tools.Specs())
	require.Len(t, got, 1)
	decls := got[0].FunctionDeclarations
	require.Len(t, decls, 4)

	check := decls[0]
	assert.Equal(t, models.ToolCheckAnswer, check.Name)
	assert.Equal(t, []string{"guess"}, check.Parameters.Required)
	assert.Equal(t, genai.TypeString, check.Parameters.Properties["guess"].Type)
	assert.Equal(t, genai.TypeInteger, decls[1].Parameters.Properties["level"].Type)

	assert.Nil(t, toTools(nil))
}
