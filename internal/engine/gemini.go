package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/tools"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini is a Transport backed by the Gemini API. One client is shared by
// every call for the life of the process.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, req TransportRequest, onText func(string)) (Reply, error) {
	contents := toContents(req.History)
	if len(contents) == 0 || contents[len(contents)-1].Role != "user" {
		return Reply{}, errors.New("history must end with a user message or tool results")
	}
	last := contents[len(contents)-1]

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	model.Tools = toTools(req.Tools)

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]

	var (
		reply Reply
		text  strings.Builder
	)
	iter := cs.SendMessageStream(ctx, last.Parts...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return Reply{}, err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				switch p := part.(type) {
				case genai.Text:
					text.WriteString(string(p))
					if onText != nil {
						onText(string(p))
					}
				case genai.FunctionCall:
					reply.Calls = append(reply.Calls, ToolCall{ID: uuid.NewString(), Name: p.Name, Args: p.Args})
				}
			}
		}
	}
	reply.Text = text.String()
	return reply, nil
}

// toContents maps the transcript onto Gemini contents. A resolved tool call
// becomes a function call in the model's content followed by a user content
// carrying the function response. Adjacent contents of the same role are
// merged, since the API expects the roles to alternate.
func toContents(turns []models.Turn) []*genai.Content {
	var out []*genai.Content
	add := func(role string, parts ...genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, parts...)
			return
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}

	for _, t := range turns {
		switch t.Role {
		case models.RoleUser:
			add("user", textParts(t)...)
		case models.RoleAssistant:
			var calls, responses []genai.Part
			flush := func() {
				add("model", calls...)
				add("user", responses...)
				calls, responses = nil, nil
			}
			for _, p := range t.Parts {
				switch {
				case p.Type == models.PartText && p.Text != "":
					if len(responses) > 0 {
						flush()
					}
					calls = append(calls, genai.Text(p.Text))
				case p.Type == models.PartToolInvocation && p.Tool != nil && p.Tool.Resolved():
					calls = append(calls, genai.FunctionCall{Name: p.Tool.Name, Args: p.Tool.Input})
					responses = append(responses, genai.FunctionResponse{Name: p.Tool.Name, Response: p.Tool.Output})
				}
			}
			flush()
		}
	}
	return out
}

func textParts(t models.Turn) []genai.Part {
	var parts []genai.Part
	for _, p := range t.Parts {
		if p.Type == models.PartText && p.Text != "" {
			parts = append(parts, genai.Text(p.Text))
		}
	}
	return parts
}

func toTools(specs []tools.Spec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
		for _, p := range s.Params {
			typ := genai.TypeString
			if p.Type == "integer" {
				typ = genai.TypeInteger
			}
			schema.Properties[p.Name] = &genai.Schema{Type: typ, Description: p.Description}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{Name: s.Name, Description: s.Description, Parameters: schema})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
