// Package engine runs one chat turn of a city game: it reads the game's
// progress back out of the transcript, picks the round's city, builds the
// prompt, trims finished rounds from the history and then lets the model
// talk and call tools until it is done.
package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tatianab/city-quest/internal/cities"
	"github.com/tatianab/city-quest/internal/game"
	"github.com/tatianab/city-quest/internal/history"
	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/prompt"
	"github.com/tatianab/city-quest/internal/tools"
)

// DefaultMaxToolSteps bounds the model calls made for one player message.
const DefaultMaxToolSteps = 5

// Request is everything the client sends for one chat turn. The transcript
// is the only record of progress; nothing is kept between requests.
type Request struct {
	GameID        string            `json:"gameId"`
	Difficulty    models.Difficulty `json:"difficulty,omitempty"`
	Messages      []models.Turn     `json:"messages"`
	ChatContext   []string          `json:"chatContext,omitempty"`
	Player        *models.Player    `json:"player,omitempty"`
	DiscoveredIDs []string          `json:"discoveredIds,omitempty"`
	SessionSeed   *int              `json:"sessionSeed,omitempty"`
	Locale        string            `json:"locale,omitempty"`
}

// Validate checks the request before any model call.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.GameID) == "" {
		return &ValidationError{Field: "gameId", Message: "is required"}
	}
	if _, err := game.Lookup(r.GameID); err != nil {
		return &ValidationError{Field: "gameId", Message: fmt.Sprintf("unknown game %q", r.GameID)}
	}
	if r.Difficulty != "" && !r.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Message: fmt.Sprintf("must be easy, medium or hard, got %q", r.Difficulty)}
	}
	if len(r.Messages) == 0 {
		return &ValidationError{Field: "messages", Message: "must not be empty"}
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != models.RoleUser || strings.TrimSpace(last.Text()) == "" {
		return &ValidationError{Field: "messages", Message: "last message must be a non-empty user message"}
	}
	if r.Player != nil && r.Player.Age < 0 {
		return &ValidationError{Field: "player.age", Message: "must not be negative"}
	}
	return nil
}

// EventType tags a streamed Event.
type EventType string

const (
	EventText  EventType = "text"
	EventTool  EventType = "tool"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is one piece of a streamed reply. The done event carries the whole
// assistant turn so the client can append it to its transcript.
type Event struct {
	Type    EventType              `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Tool    *models.ToolInvocation `json:"tool,omitempty"`
	Round   int                    `json:"round,omitempty"`
	Turn    *models.Turn           `json:"turn,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Result is a finished chat turn.
type Result struct {
	// Turn is the assistant's reply, ready to append to the transcript.
	Turn models.Turn
	// ToolResults are in the order the model called the tools.
	ToolResults     []models.ToolResult
	CompletedRounds int
	UsedIDs         []string
	Exhausted       bool
}

// Options configure an Engine. Zero values pick the defaults.
type Options struct {
	MaxToolSteps int
	Timeout      time.Duration
	Gazetteer    *cities.Gazetteer
	Logger       zerolog.Logger
}

type Engine struct {
	transport Transport
	gazetteer *cities.Gazetteer
	composer  *prompt.Composer
	scanner   *history.Scanner
	compactor *history.Compactor
	maxSteps  int
	timeout   time.Duration
	logger    zerolog.Logger
}

func New(transport Transport, opts Options) (*Engine, error) {
	g := opts.Gazetteer
	if g == nil {
		g = cities.Default()
	}
	composer, err := prompt.NewComposer(g)
	if err != nil {
		return nil, err
	}
	maxSteps := opts.MaxToolSteps
	if maxSteps < 1 {
		maxSteps = DefaultMaxToolSteps
	}
	scanner := history.NewScanner(g)
	return &Engine{
		transport: transport,
		gazetteer: g,
		composer:  composer,
		scanner:   scanner,
		compactor: history.NewCompactor(scanner),
		maxSteps:  maxSteps,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}, nil
}

// Chat answers the last user message of req. Text and tool results are
// passed to emit as they happen; emit may be nil. On a transport failure
// it returns a *TransportError and no result: the caller must not apply any
// of the tool results it saw for this turn.
func (e *Engine) Chat(ctx context.Context, req Request, emit func(Event)) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if emit == nil {
		emit = func(Event) {}
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	completed := history.CountCompletedRounds(req.Messages)
	used := e.scanner.UsedEntityIDs(req.Messages, req.DiscoveredIDs...)
	// The city for the open round is picked from settled rounds only, so a
	// passing mention mid-round cannot change it.
	excluded := e.scanner.SettledEntityIDs(req.Messages, req.DiscoveredIDs...)
	seed := 0
	if req.SessionSeed != nil {
		seed = *req.SessionSeed
	}

	params := prompt.Params{
		GameID:      req.GameID,
		Difficulty:  req.Difficulty,
		ChatContext: req.ChatContext,
		ExcludedIDs: excluded,
		RoundKey:    game.RoundKey(seed, completed),
		Round:       completed + 1,
	}
	if req.Player != nil {
		params.PlayerName = req.Player.Name
		params.PlayerAge = req.Player.Age
	}
	p, err := e.composer.Build(params)
	if err != nil {
		return nil, err
	}

	log := e.logger.With().Str("game", req.GameID).Int("round", completed+1).Logger()
	forwarded := e.compactor.Compact(req.Messages, completed, e.gazetteer.Names(excluded))
	log.Debug().
		Int("turns", len(req.Messages)).
		Int("forwarded", len(forwarded)).
		Strs("used", used).
		Strs("excluded", excluded).
		Bool("exhausted", p.Exhausted).
		Msg("starting chat turn")

	executor := tools.NewExecutor(e.gazetteer, p.Target, !p.Exhausted)
	reply := models.NewTurn(models.RoleAssistant)
	res := &Result{CompletedRounds: completed, UsedIDs: used, Exhausted: p.Exhausted}
	onText := func(delta string) {
		emit(Event{Type: EventText, Text: delta})
	}

	for step := 0; ; step++ {
		turns := forwarded
		if len(reply.Parts) > 0 {
			turns = append(slices.Clip(forwarded), reply)
		}
		out, err := e.transport.Generate(ctx, TransportRequest{
			System:  p.Text,
			History: turns,
			Tools:   tools.Specs(),
		}, onText)
		if err != nil {
			log.Error().Err(err).Int("step", step).Msg("model call failed")
			return nil, &TransportError{Err: err}
		}

		if out.Text != "" {
			reply.Parts = append(reply.Parts, models.TextPart(out.Text))
		}
		if len(out.Calls) == 0 {
			break
		}
		for _, call := range out.Calls {
			output := executor.Execute(call.Name, call.Args)
			part := models.ToolPart(call.Name, call.Args, output)
			if call.ID != "" {
				part.Tool.CallID = call.ID
			}
			reply.Parts = append(reply.Parts, part)
			res.ToolResults = append(res.ToolResults, models.ToolResult{Name: call.Name, Output: output})
			log.Debug().Str("tool", call.Name).Interface("output", output).Msg("ran tool")
			emit(Event{Type: EventTool, Tool: part.Tool})
		}
		if step+1 >= e.maxSteps {
			log.Warn().Int("steps", e.maxSteps).Msg("tool step limit reached")
			break
		}
	}

	res.Turn = reply
	emit(Event{Type: EventDone, Round: completed + 1, Turn: &res.Turn})
	return res, nil
}
