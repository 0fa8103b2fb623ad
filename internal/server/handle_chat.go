package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tatianab/city-quest/internal/engine"
)

// Chatter runs one chat turn. *engine.Engine implements it.
type Chatter interface {
	Chat(ctx context.Context, req engine.Request, emit func(engine.Event)) (*engine.Result, error)
}

func handleChat(logger zerolog.Logger, chat Chatter) http.HandlerFunc {
	type validationResponse struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.Request
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			var ve *engine.ValidationError
			if errors.As(err, &ve) {
				writeJSON(w, http.StatusBadRequest, validationResponse{Error: engine.UserMessage(err, req.Locale), Field: ve.Field})
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		log := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Str("game", req.GameID).Logger()
		send := func(e engine.Event) {
			data, err := json.Marshal(e)
			if err != nil {
				log.Error().Err(err).Msg("encoding event")
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}

		if _, err := chat.Chat(r.Context(), req, send); err != nil {
			log.Error().Err(err).Msg("chat failed")
			send(engine.Event{Type: engine.EventError, Message: engine.UserMessage(err, req.Locale)})
		}
	}
}
