// Package history derives game facts from the conversation transcript.
//
// The transcript is treated as an append-only event log: round progress and
// the set of cities already asked about are recomputed from it on every
// request, so no session state has to live on the server.
package history

import (
	"sort"

	"github.com/tatianab/city-quest/internal/models"
)

// Detector finds city ids mentioned in free text.
type Detector interface {
	Detect(text string) []string
}

// explanationKey is the tool output field scanned for city mentions.
const explanationKey = "explanation"

// roundCompleteKey marks a tool output as closing a round, whatever the tool name.
const roundCompleteKey = "roundComplete"

// IsRoundMarker reports whether p is a tool invocation that completes a round:
// either an advance_round call or any output carrying roundComplete=true.
// Outputs that report an error never count, and a check_answer output only
// counts when it carries a verdict, matching how scores are reconciled.
func IsRoundMarker(p models.Part) bool {
	if p.Type != models.PartToolInvocation || p.Tool == nil {
		return false
	}
	if _, failed := p.Tool.Output["error"]; failed {
		return false
	}
	switch p.Tool.Name {
	case models.ToolAdvanceRound:
		return true
	case models.ToolCheckAnswer:
		if _, ok := p.Tool.Output["correct"].(bool); !ok {
			return false
		}
	}
	done, _ := p.Tool.Output[roundCompleteKey].(bool)
	return done
}

// isMarkerTurn counts an assistant turn at most once, however many marker parts it has.
func isMarkerTurn(t models.Turn) bool {
	if t.Role != models.RoleAssistant {
		return false
	}
	for _, p := range t.Parts {
		if IsRoundMarker(p) {
			return true
		}
	}
	return false
}

// CountCompletedRounds folds the transcript into the number of completed rounds.
// A compaction checkpoint resets the count to the value it recorded.
func CountCompletedRounds(turns []models.Turn) int {
	n := 0
	for _, t := range turns {
		if t.Checkpoint != nil {
			n = t.Checkpoint.CompletedRounds
			continue
		}
		if isMarkerTurn(t) {
			n++
		}
	}
	return n
}

// LastMarkerIndex returns the index of the last turn that closes a round
// (including a compaction checkpoint), or -1 when there is none.
func LastMarkerIndex(turns []models.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Checkpoint != nil || isMarkerTurn(turns[i]) {
			return i
		}
	}
	return -1
}

// Scanner extracts the cities already used in a conversation.
type Scanner struct {
	detector Detector
}

// NewScanner returns a Scanner backed by the given name detector.
func NewScanner(d Detector) *Scanner {
	return &Scanner{detector: d}
}

// SettledEntityIDs is UsedEntityIDs restricted to the turns up to and
// including the last round marker. Mentions in the round still being played
// are left out, so the set only changes when a round closes.
func (s *Scanner) SettledEntityIDs(turns []models.Turn, persisted ...string) []string {
	return s.UsedEntityIDs(turns[:LastMarkerIndex(turns)+1], persisted...)
}

// UsedEntityIDs returns the sorted, deduplicated union of the city ids
// mentioned by the assistant (text parts and tool explanations), the ids
// recorded in compaction checkpoints, and the persisted ids from earlier sessions.
func (s *Scanner) UsedEntityIDs(turns []models.Turn, persisted ...string) []string {
	set := make(map[string]struct{}, len(persisted))
	for _, id := range persisted {
		if id != "" {
			set[id] = struct{}{}
		}
	}

	for _, t := range turns {
		if t.Checkpoint != nil {
			for _, id := range t.Checkpoint.UsedCityIDs {
				set[id] = struct{}{}
			}
		}
		if t.Role != models.RoleAssistant {
			continue
		}
		for _, p := range t.Parts {
			for _, id := range s.detectPart(p) {
				set[id] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scanner) detectPart(p models.Part) []string {
	switch p.Type {
	case models.PartText:
		return s.detector.Detect(p.Text)
	case models.PartToolInvocation:
		if p.Tool == nil {
			return nil
		}
		if text, ok := p.Tool.Output[explanationKey].(string); ok {
			return s.detector.Detect(text)
		}
	}
	return nil
}
