package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func addRoutes(r chi.Router, logger zerolog.Logger, chat Chatter) {
	r.Get("/healthz", handleHealth())

	r.Route("/api", func(r chi.Router) {
		r.Get("/games", handleGames())
		r.Post("/chat", handleChat(logger, chat))
	})
}
