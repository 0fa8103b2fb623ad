package history

import (
	"fmt"
	"strings"

	"github.com/tatianab/city-quest/internal/models"
)

// Compactor folds completed rounds into a single summary turn so the
// context forwarded to the model stays small as the game goes on.
type Compactor struct {
	scanner *Scanner
}

// NewCompactor returns a Compactor that records used cities with scanner.
func NewCompactor(scanner *Scanner) *Compactor {
	return &Compactor{scanner: scanner}
}

// Compact replaces every turn up to and including the last round marker with
// one synthetic user turn. currentRound is zero-based (completed rounds), and
// discoveredNames are the display names of the cities found so far. Turns
// after the marker are returned unmodified. Without a marker turns is
// returned as is.
//
// The synthetic turn carries a checkpoint, so CountCompletedRounds and
// UsedEntityIDs give the same answers before and after compaction.
func (c *Compactor) Compact(turns []models.Turn, currentRound int, discoveredNames []string) []models.Turn {
	idx := LastMarkerIndex(turns)
	if idx < 0 {
		return turns
	}

	prefix := turns[:idx+1]
	completed := CountCompletedRounds(prefix)

	summary := models.Turn{
		ID:    fmt.Sprintf("checkpoint-%d", completed),
		Role:  models.RoleUser,
		Parts: []models.Part{models.TextPart(SummaryText(currentRound+1, discoveredNames))},
		Checkpoint: &models.Checkpoint{
			CompletedRounds: completed,
			UsedCityIDs:     c.scanner.UsedEntityIDs(prefix),
		},
	}

	out := make([]models.Turn, 0, len(turns)-idx)
	out = append(out, summary)
	out = append(out, turns[idx+1:]...)
	return out
}

// SummaryText is the text of the synthetic turn for a one-indexed round.
func SummaryText(round int, discoveredNames []string) string {
	found := "none yet"
	if len(discoveredNames) > 0 {
		found = strings.Join(discoveredNames, ", ")
	}
	return fmt.Sprintf("[Game progress] We are now on round %d. Cities discovered so far: %s.", round, found)
}
