// Package tools executes the game tools the model may call. Each round gets
// its own Executor bound to the round's secret city, so the model never has
// to know the answer to check it.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tatianab/city-quest/internal/cities"
	"github.com/tatianab/city-quest/internal/game"
	"github.com/tatianab/city-quest/internal/models"
)

// MaxHintLevel is the strongest hint a city carries.
const MaxHintLevel = 3

// Param describes one argument of a tool.
type Param struct {
	Name        string
	Type        string // "string" or "integer"
	Description string
	Required    bool
}

// Spec declares a tool to the model.
type Spec struct {
	Name        string
	Description string
	Params      []Param
}

var specs = []Spec{
	{
		Name:        models.ToolCheckAnswer,
		Description: "Check the child's guess for the secret city. Closes the round.",
		Params: []Param{
			{Name: "guess", Type: "string", Description: "The city the child guessed, in their own words.", Required: true},
		},
	},
	{
		Name:        models.ToolGiveHint,
		Description: "Get a hint about the secret city when the child asks for help. Costs points.",
		Params: []Param{
			{Name: "level", Type: "integer", Description: "1 for a gentle hint up to 3 for the strongest."},
		},
	},
	{
		Name:        models.ToolAdvanceRound,
		Description: "Skip the secret city and move to the next round.",
		Params: []Param{
			{Name: "pointsEarned", Type: "integer", Description: "Points for the skipped round, normally 0."},
		},
	},
	{
		Name:        models.ToolEndGame,
		Description: "End the game after the last round or when the child wants to stop.",
		Params: []Param{
			{Name: "reason", Type: "string", Description: "Why the game ended."},
		},
	},
}

// Specs returns the declarations of every game tool.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Executor runs tool calls for one round. Once check_answer or
// advance_round has closed the round, the round tools refuse further calls
// until the child's next message.
type Executor struct {
	gazetteer *cities.Gazetteer
	target    cities.City
	hasTarget bool
	closed    bool
}

// NewExecutor binds an executor to the round's city. Pass hasTarget=false
// when every city has been played; only end_game works then.
func NewExecutor(g *cities.Gazetteer, target cities.City, hasTarget bool) *Executor {
	return &Executor{gazetteer: g, target: target, hasTarget: hasTarget}
}

// Execute runs the named tool and returns its output. Bad input and unknown
// tools produce an output with an "error" key instead of a Go error: the
// model reads the output and can try again.
func (e *Executor) Execute(name string, input map[string]any) map[string]any {
	switch name {
	case models.ToolCheckAnswer:
		return e.checkAnswer(input)
	case models.ToolGiveHint:
		return e.giveHint(input)
	case models.ToolAdvanceRound:
		return e.advanceRound(input)
	case models.ToolEndGame:
		reason, _ := input["reason"].(string)
		if reason = strings.TrimSpace(reason); reason == "" {
			reason = "finished"
		}
		return map[string]any{"gameOver": true, "reason": reason}
	default:
		return failure("unknown tool %q", name)
	}
}

func (e *Executor) checkAnswer(input map[string]any) map[string]any {
	if !e.hasTarget {
		return failure("there is no city to guess, call end_game")
	}
	if e.closed {
		return failure("this round is already over, wait for the child's next message")
	}
	guess, _ := input["guess"].(string)
	if guess = strings.TrimSpace(guess); guess == "" {
		return failure("guess is required")
	}

	// Naming several cities at once is not a correct guess.
	named := e.gazetteer.Detect(guess)
	correct := len(named) == 1 && named[0] == e.target.ID
	e.closed = true

	out := map[string]any{
		"correct":       correct,
		"guess":         guess,
		"points":        0,
		"cityId":        e.target.ID,
		"roundComplete": true,
	}
	if correct {
		out["points"] = game.DefaultPoints
		out["explanation"] = fmt.Sprintf("Yes! The city is %s. %s.", e.target.Name, e.target.FamousFor)
	} else {
		out["explanation"] = fmt.Sprintf("Not quite. The city was %s, known for %s.", e.target.Name, lowerFirst(e.target.FamousFor))
	}
	return out
}

func (e *Executor) giveHint(input map[string]any) map[string]any {
	if !e.hasTarget {
		return failure("there is no city to give hints for, call end_game")
	}
	if e.closed {
		return failure("this round is already over, wait for the child's next message")
	}
	level, err := intArg(input, "level", 1)
	if err != nil {
		return failure("%v", err)
	}
	level = min(max(level, 1), MaxHintLevel)
	return map[string]any{
		"hint":      e.target.Hint(level),
		"level":     level,
		"deduction": game.DefaultHintDeduction,
	}
}

func (e *Executor) advanceRound(input map[string]any) map[string]any {
	if !e.hasTarget {
		return failure("there is no round to advance, call end_game")
	}
	if e.closed {
		return failure("this round is already over, wait for the child's next message")
	}
	points, err := intArg(input, "pointsEarned", 0)
	if err != nil {
		return failure("%v", err)
	}
	e.closed = true
	return map[string]any{
		"roundComplete": true,
		"pointsEarned":  min(max(points, 0), game.DefaultPoints),
		"explanation":   fmt.Sprintf("We skipped this one. The city was %s.", e.target.Name),
	}
}

func failure(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// intArg reads an integer argument. Model arguments arrive as JSON numbers,
// so whole floats are accepted.
func intArg(input map[string]any, key string, def int) (int, error) {
	v, ok := input[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
