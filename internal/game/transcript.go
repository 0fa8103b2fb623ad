package game

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/storage"
)

// Transcript is the conversation of a saved game together with the seed it
// was played with. The terminal client stores it next to the GameState so
// that a resumed game continues with the same rounds.
type Transcript struct {
	Seed  int           `yaml:"seed"`
	Turns []models.Turn `yaml:"turns"`
}

// TranscriptKey builds the storage key for a game and profile.
func TranscriptKey(gameID, profileID string) string {
	return "transcript:" + gameID + ":" + profileID
}

// SaveTranscript writes t as YAML.
func SaveTranscript(ctx context.Context, store storage.Store, key string, t Transcript) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	return store.Set(ctx, key, data)
}

// LoadTranscript reads a transcript saved by SaveTranscript.
func LoadTranscript(ctx context.Context, store storage.Store, key string) (Transcript, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return Transcript{}, err
	}
	var t Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Transcript{}, fmt.Errorf("decoding transcript %s: %w", key, err)
	}
	return t, nil
}
