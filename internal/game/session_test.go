package game

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/storage"
)

// brokenStore fails every operation, like a full or unavailable disk.
type brokenStore struct{}

var errDiskFull = errors.New("disk full")

func (brokenStore) Get(context.Context, string) ([]byte, error)    { return nil, errDiskFull }
func (brokenStore) Set(context.Context, string, []byte) error      { return errDiskFull }
func (brokenStore) Delete(context.Context, string) error           { return errDiskFull }
func (brokenStore) Keys(context.Context, string) ([]string, error) { return nil, errDiskFull }
func (brokenStore) Close() error                                   { return nil }

func newTestSession(t *testing.T, store storage.Store) *Session {
	t.Helper()
	def, err := Lookup("city-guess")
	require.NoError(t, err)

	s := NewSession(def, "maya", store, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func fileStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func saved(t *testing.T, store storage.Store, key string) (models.GameState, bool) {
	t.Helper()
	data, err := store.Get(context.Background(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return models.GameState{}, false
	}
	require.NoError(t, err)
	var s models.GameState
	require.NoError(t, json.Unmarshal(data, &s))
	return s, true
}

func TestSessionReset(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)
	s := newTestSession(t, store)

	state := s.Reset(ctx, models.DifficultyHard)
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, 10, state.TotalRounds)
	assert.Equal(t, models.StatusPlaying, state.Status)
	assert.Equal(t, models.DifficultyHard, state.Difficulty)
	assert.Equal(t, now, state.StartedAt)

	got, ok := saved(t, store, "game:city-guess:maya")
	require.True(t, ok)
	assert.Equal(t, state, got)
}

func TestSessionWriteThroughAndResume(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)

	s := newTestSession(t, store)
	s.Reset(ctx, models.DifficultyEasy)
	s.Apply(ctx, models.ToolResult{Name: models.ToolCheckAnswer, Output: map[string]any{"correct": true, "points": 10}})
	s.Apply(ctx, models.ToolResult{Name: models.ToolGiveHint, Output: map[string]any{"hint": "sea", "deduction": 2}})

	reloaded := newTestSession(t, store)
	state, resumed := reloaded.Resume(ctx)
	assert.True(t, resumed)
	assert.Equal(t, s.State(), state)
	assert.Equal(t, 8, state.Score)
	assert.Equal(t, 2, state.Round)
}

func TestSessionResumeFresh(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, fileStore(t))

	state, resumed := s.Resume(ctx)
	assert.False(t, resumed)
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, models.DifficultyMedium, state.Difficulty)
}

func TestSessionResumeIgnoresCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)
	require.NoError(t, store.Set(ctx, "game:city-guess:maya", []byte("{not json")))

	state, resumed := newTestSession(t, store).Resume(ctx)
	assert.False(t, resumed)
	assert.Equal(t, 1, state.Round)
}

func TestSessionFinishDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := fileStore(t)
	s := newTestSession(t, store)
	s.Reset(ctx, models.DifficultyMedium)

	for i := 0; i < 7; i++ {
		s.Apply(ctx, models.ToolResult{Name: models.ToolCheckAnswer, Output: map[string]any{"correct": true, "points": 10}})
	}
	state, sum := s.Apply(ctx, models.ToolResult{Name: models.ToolEndGame, Output: map[string]any{"gameOver": true}})
	require.NotNil(t, sum)
	assert.True(t, sum.BonusEarned)
	assert.Equal(t, 105, sum.Score)
	assert.Equal(t, models.StatusFinished, state.Status)

	_, ok := saved(t, store, "game:city-guess:maya")
	assert.False(t, ok, "finished games cannot be resumed")

	after, sum := s.Apply(ctx, models.ToolResult{Name: models.ToolCheckAnswer, Output: map[string]any{"correct": true}})
	assert.Nil(t, sum)
	assert.Equal(t, state, after)

	_, resumed := newTestSession(t, store).Resume(ctx)
	assert.False(t, resumed)
}

func TestSessionIgnoresUnknownTools(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, fileStore(t))
	before := s.Reset(ctx, "")

	after, sum := s.Apply(ctx, models.ToolResult{Name: "show_map", Output: map[string]any{"lat": 31.7}})
	assert.Equal(t, before, after)
	assert.Nil(t, sum)
}

func TestSessionSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, brokenStore{})

	state, resumed := s.Resume(ctx)
	assert.False(t, resumed)
	assert.Equal(t, 1, state.Round)

	state, _ = s.Apply(ctx, models.ToolResult{Name: models.ToolAdvanceRound, Output: map[string]any{"roundComplete": true, "pointsEarned": 4}})
	assert.Equal(t, 2, state.Round)
	assert.Equal(t, 4, state.Score)
}
