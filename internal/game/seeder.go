package game

import "github.com/tatianab/city-quest/internal/cities"

// RoundKey combines the per-session seed with the number of completed rounds.
// Replaying the same history with the same seed always yields the same key.
func RoundKey(seed, round int) int {
	return seed + round
}

// SelectCity picks the city for a round key from the pool, skipping excluded
// ids. The pool order is kept, so the choice depends only on the inputs.
// It returns false when every candidate is excluded.
func SelectCity(key int, excluded []string, pool []cities.City) (cities.City, bool) {
	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}

	candidates := make([]cities.City, 0, len(pool))
	for _, c := range pool {
		if !skip[c.ID] {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return cities.City{}, false
	}

	n := len(candidates)
	return candidates[((key%n)+n)%n], true
}
