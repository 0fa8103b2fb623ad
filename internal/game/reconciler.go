package game

import (
	"encoding/json"
	"math"
	"time"

	"github.com/tatianab/city-quest/internal/models"
)

// Scoring defaults used when a tool output omits the number.
const (
	DefaultPoints        = 10
	DefaultHintDeduction = 2
	BonusThreshold       = 0.7
)

// EventKind is the classified variant of a tool result.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventAnswerChecked
	EventHintGiven
	EventRoundAdvanced
	EventGameEnded
)

func (k EventKind) String() string {
	switch k {
	case EventAnswerChecked:
		return "answer-checked"
	case EventHintGiven:
		return "hint-given"
	case EventRoundAdvanced:
		return "round-advanced"
	case EventGameEnded:
		return "game-ended"
	default:
		return "ignored"
	}
}

// Event is a tool result decoded into one of the known variants.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Correct   bool
	Points    int
	Deduction int
}

// Classify decodes a tool result. The tool name is matched first; results
// from unknown tools fall back to the shape of their output. Anything that
// does not fit, including outputs that report an error, is EventIgnored.
func Classify(r models.ToolResult) Event {
	out := r.Output
	if out == nil {
		return Event{}
	}
	if _, failed := out["error"]; failed {
		return Event{}
	}

	switch r.Name {
	case models.ToolCheckAnswer:
		return answerEvent(out)
	case models.ToolGiveHint:
		return hintEvent(out)
	case models.ToolAdvanceRound:
		return roundEvent(out)
	case models.ToolEndGame:
		return Event{Kind: EventGameEnded}
	}

	if _, ok := out["correct"].(bool); ok {
		return answerEvent(out)
	}
	if _, ok := out["hint"].(string); ok {
		return hintEvent(out)
	}
	if done, _ := out["roundComplete"].(bool); done {
		return roundEvent(out)
	}
	if over, _ := out["gameOver"].(bool); over {
		return Event{Kind: EventGameEnded}
	}
	return Event{}
}

func answerEvent(out map[string]any) Event {
	correct, ok := out["correct"].(bool)
	if !ok {
		return Event{}
	}
	return Event{
		Kind:    EventAnswerChecked,
		Correct: correct,
		Points:  nonNegative(intField(out, "points", DefaultPoints)),
	}
}

func hintEvent(out map[string]any) Event {
	return Event{
		Kind:      EventHintGiven,
		Deduction: nonNegative(intField(out, "deduction", DefaultHintDeduction)),
	}
}

func roundEvent(out map[string]any) Event {
	return Event{
		Kind:   EventRoundAdvanced,
		Points: nonNegative(intField(out, "pointsEarned", 0)),
	}
}

// intField reads a numeric field that may have come through JSON (float64)
// or straight from Go code (int). Missing or non-numeric values yield def.
func intField(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(math.Round(float64(v)))
	case float64:
		return int(math.Round(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return int(math.Round(f))
		}
	}
	return def
}

func nonNegative(n int) int {
	return max(n, 0)
}

// Multiplier is the score multiplier applied to correct answers.
func Multiplier(d models.Difficulty) float64 {
	switch d {
	case models.DifficultyMedium:
		return 1.5
	case models.DifficultyHard:
		return 2
	default:
		return 1
	}
}

// Reconcile applies one event to the state and returns the new state. A
// summary is returned only by the transition into finished. Finished states
// are terminal: every event is ignored until the session is reset.
func Reconcile(s models.GameState, e Event, now time.Time) (models.GameState, *models.SessionSummary) {
	if s.Status != models.StatusPlaying {
		return s, nil
	}

	switch e.Kind {
	case EventAnswerChecked:
		if e.Correct {
			s.Score += int(math.Round(float64(e.Points) * Multiplier(s.Difficulty)))
			s.CorrectAnswers++
		} else {
			s.WrongAnswers++
		}
		s.Round = nextRound(s)
	case EventHintGiven:
		s.HintsUsed++
		s.Score = max(0, s.Score-e.Deduction)
	case EventRoundAdvanced:
		s.Score += e.Points
		s.Round = nextRound(s)
	case EventGameEnded:
		finished := now
		s.Status = models.StatusFinished
		s.FinishedAt = &finished
		return s, Summarize(s)
	}
	return s, nil
}

func nextRound(s models.GameState) int {
	return min(s.Round+1, s.TotalRounds+1)
}

// Summarize builds the end-of-game snapshot for a state.
func Summarize(s models.GameState) *models.SessionSummary {
	var ratio float64
	if s.TotalRounds > 0 {
		ratio = float64(s.CorrectAnswers) / float64(s.TotalRounds)
	}
	sum := &models.SessionSummary{
		GameID:         s.GameID,
		Score:          s.Score,
		CorrectAnswers: s.CorrectAnswers,
		TotalRounds:    s.TotalRounds,
		Ratio:          ratio,
		BonusEarned:    ratio >= BonusThreshold,
		Difficulty:     s.Difficulty,
	}
	if s.FinishedAt != nil {
		sum.FinishedAt = *s.FinishedAt
	}
	return sum
}
