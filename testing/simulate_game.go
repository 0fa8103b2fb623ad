package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tatianab/city-quest/internal/config"
	"github.com/tatianab/city-quest/internal/engine"
	"github.com/tatianab/city-quest/internal/game"
	"github.com/tatianab/city-quest/internal/logging"
	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/storage"
)

// maxTurns bounds the simulation in case the storyteller never ends the game.
const maxTurns = 30

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	// The storyteller
	gemini, err := engine.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create storyteller transport: %v", err)
	}
	defer gemini.Close()
	eng, err := engine.New(gemini, engine.Options{MaxToolSteps: cfg.MaxToolSteps, Timeout: cfg.RequestTimeout, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	// The player
	playerClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create player client: %v", err)
	}
	defer playerClient.Close()
	playerModel := playerClient.GenerativeModel(cfg.GeminiModel)

	store, err := storage.OpenSQLite(":memory:")
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	def, err := game.Lookup("city-riddle")
	if err != nil {
		log.Fatalf("Failed to find game: %v", err)
	}
	session := game.NewSession(def, "simulated-player", store, logger)
	session.Reset(ctx, models.DifficultyEasy)

	seed := rand.Intn(1_000_000)
	player := models.Player{ProfileID: "simulated-player", Name: "Sami", Age: 9}
	fmt.Printf("--- Playing %s with seed %d ---\n\n", def.Title, seed)

	var turns []models.Turn
	message := "Hello! Let's play."
	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d ---\n", turn)
		fmt.Printf("Player: %s\n", message)
		turns = append(turns, models.NewTurn(models.RoleUser, models.TextPart(message)))

		res, err := eng.Chat(ctx, engine.Request{
			GameID:      def.ID,
			Difficulty:  session.State().Difficulty,
			Messages:    turns,
			Player:      &player,
			SessionSeed: &seed,
		}, nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		turns = append(turns, res.Turn)
		fmt.Printf("Storyteller: %s\n", res.Turn.Text())

		var summary *models.SessionSummary
		for _, r := range res.ToolResults {
			fmt.Printf("Tool %s: %v\n", r.Name, r.Output)
			if _, s := session.Apply(ctx, r); s != nil {
				summary = s
			}
		}
		state := session.State()
		fmt.Printf("Round %d/%d, score %d (correct %d, wrong %d, hints %d)\n\n",
			min(state.Round, state.TotalRounds), state.TotalRounds, state.Score,
			state.CorrectAnswers, state.WrongAnswers, state.HintsUsed)

		if summary != nil {
			fmt.Printf("Game Ended: %d points, %.0f%% correct, bonus=%t\n", summary.Score, summary.Ratio*100, summary.BonusEarned)
			break
		}

		message = getPlayerMessage(ctx, playerModel, res.Turn.Text())
	}
}

func getPlayerMessage(ctx context.Context, model *genai.GenerativeModel, storyteller string) string {
	prompt := fmt.Sprintf(`You are a 9 year old child playing a game about the cities of Palestine.
The storyteller just said:
%s

Answer the way a child would: guess a city, ask for a hint, or say you want to skip.
Return ONLY your reply, no extra commentary.`, storyteller)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "Can I have a hint?"
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "Is it Jerusalem?"
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
