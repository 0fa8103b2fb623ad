package models

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTurnYAML(t *testing.T) {
	turn := NewTurn(RoleAssistant,
		TextPart("Great guess! "),
		ToolPart(ToolAdvanceRound, map[string]any{"pointsEarned": 10}, map[string]any{"roundComplete": true}),
	)

	data, err := yaml.Marshal(turn)
	if err != nil {
		t.Fatalf("Failed to marshal turn: %v", err)
	}

	var turn2 Turn
	if err := yaml.Unmarshal(data, &turn2); err != nil {
		t.Fatalf("Failed to unmarshal turn: %v", err)
	}

	if turn2.ID != turn.ID {
		t.Errorf("Expected id %s, got %s", turn.ID, turn2.ID)
	}
	if len(turn2.Parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(turn2.Parts))
	}
	if !turn2.Parts[1].Tool.Resolved() {
		t.Errorf("Expected tool part to stay resolved")
	}
	if turn2.Parts[1].Tool.Output["roundComplete"] != true {
		t.Errorf("Expected roundComplete marker to survive, got %v", turn2.Parts[1].Tool.Output)
	}
}

func TestTurnText(t *testing.T) {
	turn := NewTurn(RoleAssistant,
		TextPart("Hello "),
		ToolPart(ToolGiveHint, nil, map[string]any{"hint": "olives"}),
		TextPart("friend"),
	)
	if got := turn.Text(); got != "Hello friend" {
		t.Errorf("Expected %q, got %q", "Hello friend", got)
	}
}

func TestDifficulty(t *testing.T) {
	if Difficulty("").OrDefault() != DifficultyMedium {
		t.Errorf("Expected empty difficulty to default to medium")
	}
	if DifficultyHard.OrDefault() != DifficultyHard {
		t.Errorf("Expected hard to stay hard")
	}
	if Difficulty("extreme").Valid() {
		t.Errorf("Expected unknown difficulty to be invalid")
	}
}
