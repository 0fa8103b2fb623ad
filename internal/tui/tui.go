package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tatianab/city-quest/internal/engine"
	"github.com/tatianab/city-quest/internal/game"
	"github.com/tatianab/city-quest/internal/models"
	"github.com/tatianab/city-quest/internal/storage"
)

type sessionState int

const (
	stateChooseGame sessionState = iota
	stateLoading
	statePlaying
	stateFinished
)

// openingLine starts every new game so the storyteller introduces the first city.
const openingLine = "Hello! Let's play."

type model struct {
	state     sessionState
	engine    *engine.Engine
	store     storage.Store
	player    models.Player
	logger    zerolog.Logger
	session   *game.Session
	turns     []models.Turn
	seed      int
	summary   *models.SessionSummary
	textInput textinput.Model
	viewport  viewport.Model
	notice    string
	gameLog   string
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AF87")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8787"))

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func NewModel(eng *engine.Engine, store storage.Store, player models.Player, logger zerolog.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "1 or 2, optionally followed by easy, medium or hard"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 60

	return model{
		state:     stateChooseGame,
		engine:    eng,
		store:     store,
		player:    player,
		logger:    logger,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type chatDoneMsg struct {
	res *engine.Result
	err error
}

// parseChoice reads a menu answer such as "2 hard".
func parseChoice(input string) (game.Definition, models.Difficulty, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return game.Definition{}, "", errors.New("type the number of a game")
	}
	games := game.Games()
	var idx int
	if _, err := fmt.Sscanf(fields[0], "%d", &idx); err != nil || idx < 1 || idx > len(games) {
		return game.Definition{}, "", fmt.Errorf("pick a game between 1 and %d", len(games))
	}
	var d models.Difficulty
	if len(fields) > 1 {
		d = models.Difficulty(fields[1])
		if !d.Valid() {
			return game.Definition{}, "", fmt.Errorf("unknown difficulty %q", fields[1])
		}
	}
	return games[idx-1], d, nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			switch m.state {
			case stateChooseGame:
				def, difficulty, err := parseChoice(input)
				if err != nil {
					m.notice = err.Error()
					return m, nil
				}
				m.textInput.Reset()
				return m.startGame(def, difficulty)

			case statePlaying, stateFinished:
				if input == "" {
					return m, nil
				}
				m.textInput.Reset()
				m.notice = ""

				if input == "/quit" {
					return m, tea.Quit
				}
				if input == "/restart" {
					m.restart()
					return m, nil
				}
				if m.state == stateFinished {
					m.notice = "The game is over. Type /restart to play again."
					return m, nil
				}

				m.appendLog(userStyle.Width(m.logWidth()).Render("> " + input))
				return m.send(input)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.gameLog)

	case chatDoneMsg:
		m.state = statePlaying
		if msg.err != nil {
			// Drop the unanswered message so a retry does not send it twice.
			last := m.turns[len(m.turns)-1]
			m.turns = m.turns[:len(m.turns)-1]
			m.textInput.SetValue(last.Text())
			m.notice = engine.UserMessage(msg.err, "en")
			return m, nil
		}
		m.turns = append(m.turns, msg.res.Turn)
		m.renderTurn(msg.res.Turn)

		ctx := context.Background()
		for _, r := range msg.res.ToolResults {
			if _, summary := m.session.Apply(ctx, r); summary != nil {
				m.summary = summary
				m.state = stateFinished
			}
		}
		m.saveTranscript(ctx)
		return m, nil
	}

	if m.state != stateLoading {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// startGame resumes the saved game for def, or starts a new one when there
// is none or the player picked a difficulty.
func (m model) startGame(def game.Definition, difficulty models.Difficulty) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	m.session = game.NewSession(def, m.player.ProfileID, m.store, m.logger)
	m.summary = nil
	m.gameLog = ""
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.logWidth(), max(m.height-6, 10))
	}

	key := game.TranscriptKey(def.ID, m.player.ProfileID)
	if _, resumed := m.session.Resume(ctx); resumed && difficulty == "" {
		t, err := game.LoadTranscript(ctx, m.store, key)
		if err == nil && len(t.Turns) > 0 {
			m.seed = t.Seed
			m.turns = t.Turns
			for _, turn := range m.turns {
				m.renderTurn(turn)
			}
			m.state = statePlaying
			m.textInput.Placeholder = "Type your guess, or ask for a hint"
			m.appendLog(helpStyle.Render("Welcome back! Your game was saved."))
			return m, nil
		}
		m.logger.Warn().Err(err).Msg("saved game has no transcript, starting over")
	}

	m.session.Reset(ctx, difficulty)
	m.seed = rand.Intn(1_000_000)
	m.turns = nil
	m.textInput.Placeholder = "Type your guess, or ask for a hint"
	return m.send(openingLine)
}

func (m model) send(text string) (tea.Model, tea.Cmd) {
	m.turns = append(m.turns, models.NewTurn(models.RoleUser, models.TextPart(text)))
	m.state = stateLoading

	state := m.session.State()
	seed := m.seed
	req := engine.Request{
		GameID:      state.GameID,
		Difficulty:  state.Difficulty,
		Messages:    append([]models.Turn(nil), m.turns...),
		Player:      &m.player,
		SessionSeed: &seed,
		Locale:      "en",
	}
	eng := m.engine
	return m, func() tea.Msg {
		res, err := eng.Chat(context.Background(), req, nil)
		return chatDoneMsg{res: res, err: err}
	}
}

func (m *model) restart() {
	ctx := context.Background()
	if m.session != nil {
		m.session.Reset(ctx, "")
		if err := m.store.Delete(ctx, game.TranscriptKey(m.session.State().GameID, m.player.ProfileID)); err != nil {
			m.logger.Warn().Err(err).Msg("deleting transcript")
		}
	}
	m.state = stateChooseGame
	m.session = nil
	m.turns = nil
	m.summary = nil
	m.gameLog = ""
	m.textInput.Placeholder = "1 or 2, optionally followed by easy, medium or hard"
}

// saveTranscript keeps the transcript next to the saved GameState. A
// finished game has no saved state, so its transcript is removed as well.
func (m model) saveTranscript(ctx context.Context) {
	key := game.TranscriptKey(m.session.State().GameID, m.player.ProfileID)
	var err error
	if m.state == stateFinished {
		err = m.store.Delete(ctx, key)
	} else {
		err = game.SaveTranscript(ctx, m.store, key, game.Transcript{Seed: m.seed, Turns: m.turns})
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("saving transcript")
	}
}

func (m *model) renderTurn(t models.Turn) {
	if t.Role == models.RoleUser {
		if text := t.Text(); text != openingLine {
			m.appendLog(userStyle.Width(m.logWidth()).Render("> " + text))
		}
		return
	}
	for _, p := range t.Parts {
		switch {
		case p.Type == models.PartText && strings.TrimSpace(p.Text) != "":
			m.appendLog(gameStyle.Width(m.logWidth()).Render(strings.TrimSpace(p.Text)))
		case p.Type == models.PartToolInvocation && p.Tool.Resolved():
			if line := toolLine(p.Tool); line != "" {
				m.appendLog(toolStyle.Width(m.logWidth()).Render(line))
			}
		}
	}
}

func toolLine(t *models.ToolInvocation) string {
	if _, failed := t.Output["error"]; failed {
		return ""
	}
	switch t.Name {
	case models.ToolCheckAnswer, models.ToolAdvanceRound:
		s, _ := t.Output["explanation"].(string)
		return s
	case models.ToolGiveHint:
		s, _ := t.Output["hint"].(string)
		return "Hint: " + s
	case models.ToolEndGame:
		return "The game is over!"
	}
	return ""
}

func (m *model) appendLog(s string) {
	m.gameLog += s + "\n\n"
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateChooseGame:
		var menu strings.Builder
		for i, d := range game.Games() {
			fmt.Fprintf(&menu, "  %d. %s (%d rounds): %s\n", i+1, d.Title, d.TotalRounds, d.Description)
		}
		s = fmt.Sprintf(
			"Welcome to City Quest!\n\n%s\n%s\n\n%s",
			menu.String(),
			"Which game would you like to play?",
			m.textInput.View(),
		)

	case stateLoading:
		s = lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderState()) +
			"\n\n" + helpStyle.Render("The storyteller is thinking...")

	case statePlaying, stateFinished:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)

		help := helpStyle.Render("Commands: /restart, /quit, or just type your guess.")

		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)
	}

	if m.notice != "" {
		s += "\n" + noticeStyle.Render(m.notice)
	}
	return "\n" + s + "\n"
}

func (m model) renderState() string {
	if m.session == nil {
		return ""
	}
	state := m.session.State()

	round := state.Round
	if round > state.TotalRounds {
		round = state.TotalRounds
	}
	progress := titleStyle.Render("ROUND") + fmt.Sprintf("\n%d of %d\n\n", round, state.TotalRounds)
	score := titleStyle.Render("SCORE") + fmt.Sprintf("\n%d\n\n", state.Score)
	stats := titleStyle.Render("ANSWERS") + fmt.Sprintf("\nCorrect: %d\nWrong: %d\nHints: %d\n\n",
		state.CorrectAnswers, state.WrongAnswers, state.HintsUsed)
	level := titleStyle.Render("LEVEL") + "\n" + string(state.Difficulty) + "\n"

	content := progress + score + stats + level
	if m.summary != nil {
		content += "\n" + titleStyle.Render("FINAL") + fmt.Sprintf("\n%d%% correct\n", int(m.summary.Ratio*100))
		if m.summary.BonusEarned {
			content += "You earned a sticker!\n"
		}
	}

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func Run(eng *engine.Engine, store storage.Store, player models.Player, logger zerolog.Logger) error {
	p := tea.NewProgram(NewModel(eng, store, player, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
