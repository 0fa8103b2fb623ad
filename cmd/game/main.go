package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tatianab/city-quest/internal/config"
	"github.com/tatianab/city-quest/internal/engine"
	"github.com/tatianab/city-quest/internal/logging"
	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/storage"
	"github.com/tatianab/city-quest/internal/tui"
)

// defaultLogFile is used when LOG_FILE is unset: the TUI owns the terminal.
const defaultLogFile = "city-quest.log"

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = defaultLogFile
	}
	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: logFile})
	if err != nil {
		fmt.Printf("Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store, err := storage.Open(cfg.Store, cfg.StorePath())
	if err != nil {
		fmt.Printf("Error opening save store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	gemini, err := engine.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		fmt.Printf("Error creating model client: %v\n", err)
		os.Exit(1)
	}
	defer gemini.Close()

	eng, err := engine.New(gemini, engine.Options{
		MaxToolSteps: cfg.MaxToolSteps,
		Timeout:      cfg.RequestTimeout,
		Logger:       logger,
	})
	if err != nil {
		fmt.Printf("Error creating engine: %v\n", err)
		os.Exit(1)
	}

	player := models.Player{ProfileID: cfg.ProfileID, Name: cfg.PlayerName, Age: cfg.PlayerAge}
	if err := tui.Run(eng, store, player, logger); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
