package engine

import (
	"context"

	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/tools"
)

// Transport is a chat model that can call tools. Implementations stream text
// through onText as it arrives and return the whole reply at the end.
type Transport interface {
	Generate(ctx context.Context, req TransportRequest, onText func(string)) (Reply, error)
}

// TransportRequest is one model call. The last turn of History is the one
// being answered: a user message, or an assistant turn whose tool results
// the model has not seen yet.
type TransportRequest struct {
	System  string
	History []models.Turn
	Tools   []tools.Spec
}

// ToolCall is a tool the model asked to run.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Reply is the model's full answer to one call.
type Reply struct {
	Text  string
	Calls []ToolCall
}
