package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// PartType discriminates the content of a Part.
type PartType string

const (
	PartText           PartType = "text"
	PartToolInvocation PartType = "tool-invocation"
	PartFile           PartType = "file"
)

// ToolState tracks whether a tool invocation has produced its output yet.
type ToolState string

const (
	ToolStateCall   ToolState = "call"
	ToolStateResult ToolState = "result"
)

// Tool names shared by the prompt layer, the tool executor and the reconciler.
const (
	ToolCheckAnswer  = "check_answer"
	ToolGiveHint     = "give_hint"
	ToolAdvanceRound = "advance_round"
	ToolEndGame      = "end_game"
)

// ToolInvocation is a single tool call made by the model, with its output once resolved.
type ToolInvocation struct {
	CallID string         `json:"callId,omitempty" yaml:"call_id,omitempty"`
	Name   string         `json:"name" yaml:"name"`
	Input  map[string]any `json:"input,omitempty" yaml:"input,omitempty"`
	Output map[string]any `json:"output,omitempty" yaml:"output,omitempty"`
	State  ToolState      `json:"state" yaml:"state"`
}

// Resolved reports whether the invocation carries an output.
func (t *ToolInvocation) Resolved() bool {
	return t != nil && t.State == ToolStateResult && t.Output != nil
}

// FileRef points at an attachment. The game logic never reads it.
type FileRef struct {
	URL       string `json:"url" yaml:"url"`
	MediaType string `json:"mediaType,omitempty" yaml:"media_type,omitempty"`
}

// Part is one piece of a turn.
type Part struct {
	Type PartType        `json:"type" yaml:"type"`
	Text string          `json:"text,omitempty" yaml:"text,omitempty"`
	Tool *ToolInvocation `json:"tool,omitempty" yaml:"tool,omitempty"`
	File *FileRef        `json:"file,omitempty" yaml:"file,omitempty"`
}

// Checkpoint is attached to the synthetic turn produced by history compaction.
// It carries the facts derived from the turns it replaced.
type Checkpoint struct {
	CompletedRounds int      `json:"completedRounds" yaml:"completed_rounds"`
	UsedCityIDs     []string `json:"usedCityIds,omitempty" yaml:"used_city_ids,omitempty"`
}

// Turn is one message in the conversation.
type Turn struct {
	ID         string      `json:"id" yaml:"id"`
	Role       Role        `json:"role" yaml:"role"`
	Parts      []Part      `json:"parts" yaml:"parts"`
	Checkpoint *Checkpoint `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
}

// NewTurn builds a turn with a fresh id.
func NewTurn(role Role, parts ...Part) Turn {
	return Turn{ID: uuid.NewString(), Role: role, Parts: parts}
}

// TextPart is a shorthand for a text part.
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// ToolPart is a shorthand for a resolved tool invocation part.
func ToolPart(name string, input, output map[string]any) Part {
	return Part{
		Type: PartToolInvocation,
		Tool: &ToolInvocation{CallID: uuid.NewString(), Name: name, Input: input, Output: output, State: ToolStateResult},
	}
}

// Text concatenates the text parts of a turn.
func (t Turn) Text() string {
	var s string
	for _, p := range t.Parts {
		if p.Type == PartText {
			s += p.Text
		}
	}
	return s
}

// ToolResult is a resolved tool call as the client sees it.
type ToolResult struct {
	Name   string         `json:"name" yaml:"name"`
	Output map[string]any `json:"output" yaml:"output"`
}

// Difficulty of a game session.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// OrDefault returns d, or medium when d is empty.
func (d Difficulty) OrDefault() Difficulty {
	if d == "" {
		return DifficultyMedium
	}
	return d
}

// Status of a game session.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// GameState is the mutable record of one game session.
type GameState struct {
	GameID         string     `json:"gameId" yaml:"game_id"`
	Score          int        `json:"score" yaml:"score"`
	Round          int        `json:"round" yaml:"round"`
	TotalRounds    int        `json:"totalRounds" yaml:"total_rounds"`
	CorrectAnswers int        `json:"correctAnswers" yaml:"correct_answers"`
	WrongAnswers   int        `json:"wrongAnswers" yaml:"wrong_answers"`
	HintsUsed      int        `json:"hintsUsed" yaml:"hints_used"`
	Status         Status     `json:"status" yaml:"status"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	StartedAt      time.Time  `json:"startedAt" yaml:"started_at"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty" yaml:"finished_at,omitempty"`
}

// SessionSummary is the immutable snapshot produced when a game ends.
type SessionSummary struct {
	GameID         string     `json:"gameId" yaml:"game_id"`
	Score          int        `json:"score" yaml:"score"`
	CorrectAnswers int        `json:"correctAnswers" yaml:"correct_answers"`
	TotalRounds    int        `json:"totalRounds" yaml:"total_rounds"`
	Ratio          float64    `json:"ratio" yaml:"ratio"`
	BonusEarned    bool       `json:"bonusEarned" yaml:"bonus_earned"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	FinishedAt     time.Time  `json:"finishedAt" yaml:"finished_at"`
}

// Player is the optional profile of the child playing.
type Player struct {
	ProfileID string `json:"profileId,omitempty" yaml:"profile_id,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Age       int    `json:"age,omitempty" yaml:"age,omitempty"`
}
