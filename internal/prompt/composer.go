// Package prompt builds the system instruction sent to the model for the
// next turn of a game. Building is a pure function of its inputs: all
// variety comes from the round key.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/tatianab/city-quest/internal/cities"
	"github.com/tatianab/city-quest/internal/game"
	"github.com/tatianab/city-quest/internal/models"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// secretName replaces the target city's name inside clues.
const secretName = "this city"

// Params are the inputs of one prompt.
type Params struct {
	GameID      string
	Difficulty  models.Difficulty
	ChatContext []string
	PlayerAge   int
	PlayerName  string
	ExcludedIDs []string
	RoundKey    int
	// Round is the one-indexed round being played.
	Round int
}

// Prompt is a built system instruction together with the choices behind it.
// Target is for the tool executor only and never appears in Text.
type Prompt struct {
	Text      string
	Game      game.Definition
	Target    cities.City
	Exhausted bool
}

// Composer renders the per-game prompt templates.
type Composer struct {
	gazetteer *cities.Gazetteer
	tmpl      *template.Template
}

// NewComposer parses the embedded templates.
func NewComposer(g *cities.Gazetteer) (*Composer, error) {
	tmpl, err := template.New("prompts").Funcs(template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
	}).ParseFS(promptFS, "prompts/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}
	return &Composer{gazetteer: g, tmpl: tmpl}, nil
}

type templateData struct {
	PlayerName          string
	ChatContext         []string
	Tone                string
	DifficultyDirective string
	Round               int
	TotalRounds         int
	Finished            bool
	Exhausted           bool
	Excluded            []string
	Region              string
	FamousFor           string
	Clues               []string
}

// Build renders the prompt for p. It fails only for an unknown game.
func (c *Composer) Build(p Params) (Prompt, error) {
	def, err := game.Lookup(p.GameID)
	if err != nil {
		return Prompt{}, err
	}
	difficulty := p.Difficulty.OrDefault()

	excluded := append([]string(nil), p.ExcludedIDs...)
	sort.Strings(excluded)

	round := max(p.Round, 1)
	target, ok := game.SelectCity(p.RoundKey, excluded, c.gazetteer.All())

	data := templateData{
		PlayerName:          strings.TrimSpace(p.PlayerName),
		ChatContext:         nonEmpty(p.ChatContext),
		Tone:                toneFor(p.PlayerAge),
		DifficultyDirective: directiveFor(difficulty),
		Round:               round,
		TotalRounds:         def.TotalRounds,
		Finished:            round > def.TotalRounds,
		Exhausted:           !ok,
		Excluded:            c.excludedLabels(excluded),
	}
	if ok {
		data.Region = maskSentence(target, target.Region)
		data.FamousFor = maskSentence(target, target.FamousFor)
		for _, f := range target.Facts[:clueCount(difficulty, len(target.Facts))] {
			data.Clues = append(data.Clues, maskSentence(target, f))
		}
	}

	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, def.ID+".txt", data); err != nil {
		return Prompt{}, fmt.Errorf("rendering %s prompt: %w", def.ID, err)
	}

	return Prompt{
		Text:      strings.TrimSpace(buf.String()) + "\n",
		Game:      def,
		Target:    target,
		Exhausted: !ok,
	}, nil
}

func (c *Composer) excludedLabels(ids []string) []string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if city, ok := c.gazetteer.ByID(id); ok {
			labels = append(labels, fmt.Sprintf("%s (%s)", city.Name, id))
		} else {
			labels = append(labels, id)
		}
	}
	return labels
}

func maskSentence(c cities.City, s string) string {
	s = c.Mask(s, secretName)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func clueCount(d models.Difficulty, available int) int {
	n := available
	switch d {
	case models.DifficultyMedium:
		n = 3
	case models.DifficultyHard:
		n = 2
	}
	return min(n, available)
}

func toneFor(age int) string {
	switch {
	case age <= 0:
		return "You are talking to a child between 6 and 12 years old. Use a warm, friendly tone."
	case age <= 7:
		return fmt.Sprintf("You are talking to a %d year old. Use very short sentences and simple words, and cheer every try.", age)
	case age <= 10:
		return fmt.Sprintf("You are talking to a %d year old. Use simple, friendly sentences and explain any new word.", age)
	default:
		return fmt.Sprintf("You are talking to a %d year old. You may use richer words and add one interesting extra fact after each answer.", age)
	}
}

func directiveFor(d models.Difficulty) string {
	switch d {
	case models.DifficultyEasy:
		return "Difficulty: easy. Give generous clues and accept close spellings of the city's name."
	case models.DifficultyHard:
		return "Difficulty: hard. Share one clue at a time and keep the clues short and tricky."
	default:
		return "Difficulty: medium. Share clues one at a time and encourage the child to think about the region."
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
