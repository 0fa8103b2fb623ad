package game

import (
	"errors"
	"fmt"
)

// ErrUnknownGame is returned for a game id that is not registered.
var ErrUnknownGame = errors.New("unknown game")

// Definition describes one of the guessing games.
type Definition struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	TotalRounds int    `json:"totalRounds" yaml:"total_rounds"`
}

var definitions = []Definition{
	{
		ID:          "city-guess",
		Title:       "Guess the City",
		Description: "Read the clues and guess which Palestinian city they describe.",
		TotalRounds: 10,
	},
	{
		ID:          "city-riddle",
		Title:       "City Riddles",
		Description: "Solve short rhyming riddles about Palestinian cities.",
		TotalRounds: 5,
	},
}

// Games lists every registered game in display order.
func Games() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for id.
func Lookup(id string) (Definition, error) {
	for _, d := range definitions {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownGame, id)
}
