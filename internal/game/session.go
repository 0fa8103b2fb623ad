package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/storage"
)

// Session owns the GameState of one game for one profile and writes every
// change through to the store. It is driven by a single thread of control
// and is not safe for concurrent use.
//
// Storage failures never stop the game: they are logged and the session
// keeps playing from memory.
type Session struct {
	def       Definition
	profileID string
	store     storage.Store
	logger    zerolog.Logger
	now       func() time.Time

	state models.GameState
}

// NewSession returns a session for def and profileID. Call Resume or Reset
// before applying tool results.
func NewSession(def Definition, profileID string, store storage.Store, logger zerolog.Logger) *Session {
	return &Session{
		def:       def,
		profileID: profileID,
		store:     store,
		logger:    logger.With().Str("game", def.ID).Str("profile", profileID).Logger(),
		now:       time.Now,
	}
}

// Key is the storage key of the session snapshot.
func (s *Session) Key() string {
	return SessionKey(s.def.ID, s.profileID)
}

// SessionKey builds the storage key for a game and profile.
func SessionKey(gameID, profileID string) string {
	return "game:" + gameID + ":" + profileID
}

// State returns a copy of the current state.
func (s *Session) State() models.GameState {
	return s.state
}

// Reset starts a fresh game at round 1. An empty difficulty means medium.
func (s *Session) Reset(ctx context.Context, difficulty models.Difficulty) models.GameState {
	s.state = models.GameState{
		GameID:      s.def.ID,
		Round:       1,
		TotalRounds: s.def.TotalRounds,
		Status:      models.StatusPlaying,
		Difficulty:  difficulty.OrDefault(),
		StartedAt:   s.now().UTC(),
	}
	s.remove(ctx)
	s.persist(ctx)
	return s.state
}

// Resume reloads the last persisted game that is still playing. When there
// is none, or it cannot be read, it starts a fresh game instead. The boolean
// reports whether a saved game was resumed.
func (s *Session) Resume(ctx context.Context) (models.GameState, bool) {
	data, err := s.store.Get(ctx, s.Key())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("loading saved game")
		}
		return s.Reset(ctx, ""), false
	}

	var saved models.GameState
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.Warn().Err(err).Msg("decoding saved game")
		return s.Reset(ctx, ""), false
	}
	if saved.Status != models.StatusPlaying || saved.GameID != s.def.ID {
		return s.Reset(ctx, saved.Difficulty), false
	}

	s.state = saved
	s.logger.Info().Int("round", saved.Round).Int("score", saved.Score).Msg("resumed game")
	return s.state, true
}

// Apply reconciles one tool result into the state. The summary is non-nil
// only when this result ended the game; the snapshot is then deleted.
func (s *Session) Apply(ctx context.Context, result models.ToolResult) (models.GameState, *models.SessionSummary) {
	event := Classify(result)
	if event.Kind == EventIgnored {
		s.logger.Debug().Str("tool", result.Name).Msg("ignoring tool result")
		return s.state, nil
	}

	next, summary := Reconcile(s.state, event, s.now().UTC())
	if next == s.state {
		return s.state, nil
	}
	s.state = next
	s.logger.Debug().
		Stringer("event", event.Kind).
		Int("round", next.Round).
		Int("score", next.Score).
		Msg("applied tool result")

	if summary != nil {
		s.remove(ctx)
		s.logger.Info().
			Int("score", summary.Score).
			Float64("ratio", summary.Ratio).
			Bool("bonus", summary.BonusEarned).
			Msg("game finished")
		return s.state, summary
	}
	s.persist(ctx)
	return s.state, nil
}

func (s *Session) persist(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encoding game state")
		return
	}
	if err := s.store.Set(ctx, s.Key(), data); err != nil {
		s.logger.Warn().Err(err).Msg("saving game state")
	}
}

func (s *Session) remove(ctx context.Context) {
	if err := s.store.Delete(ctx, s.Key()); err != nil {
		s.logger.Warn().Err(err).Msg("deleting game state")
	}
}
