package server

import (
	"net/http"

	"github.com/tatianab/city-quest/internal/game"
)

func handleGames() http.HandlerFunc {
	type gameResponse struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		TotalRounds int    `json:"totalRounds"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		defs := game.Games()
		out := make([]gameResponse, 0, len(defs))
		for _, d := range defs {
			out = append(out, gameResponse{ID: d.ID, Title: d.Title, Description: d.Description, TotalRounds: d.TotalRounds})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
