// Package cities is the read-only gazetteer of Palestinian cities used by the
// guessing games: display names, aliases, kid-friendly facts and graded hints.
package cities

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

// City is one entry of the gazetteer.
type City struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Aliases   []string `yaml:"aliases"`
	Region    string   `yaml:"region"`
	FamousFor string   `yaml:"famous_for"`
	Facts     []string `yaml:"facts"`
	Hints     []string `yaml:"hints"`

	masks []*regexp.Regexp
}

// Terms returns the display name followed by every alias.
func (c City) Terms() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// Mask replaces every mention of the city's name or aliases in text with repl.
func (c City) Mask(text, repl string) string {
	for _, re := range c.masks {
		text = replaceBounded(re, text, repl)
	}
	return text
}

func replaceBounded(re *regexp.Regexp, text, repl string) string {
	var b strings.Builder
	last, replaced := 0, false
	for _, m := range re.FindAllStringIndex(text, -1) {
		if !wordBounded(text, m[0], m[1]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(repl)
		last, replaced = m[1], true
	}
	if !replaced {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// wordBounded reports whether text[start:end] is not glued to a letter or
// digit on either side. RE2's \b only knows ASCII, so Arabic aliases need this.
func wordBounded(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Hint returns the hint for the given 1-indexed level, clamped to the available hints.
func (c City) Hint(level int) string {
	if len(c.Hints) == 0 {
		return "This city is somewhere in Palestine."
	}
	if level < 1 {
		level = 1
	}
	if level > len(c.Hints) {
		level = len(c.Hints)
	}
	return c.Hints[level-1]
}

// Gazetteer indexes cities by id and by normalized name.
type Gazetteer struct {
	cities []City
	byID   map[string]int
	terms  []term
}

type term struct {
	phrase string // normalized, space padded
	cityID string
}

// Load parses a gazetteer from YAML.
func Load(data []byte) (*Gazetteer, error) {
	var list []City
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing gazetteer: %w", err)
	}

	g := &Gazetteer{byID: make(map[string]int, len(list))}
	for i := range list {
		c := &list[i]
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("gazetteer entry %d: id and name are required", i)
		}
		if _, dup := g.byID[c.ID]; dup {
			return nil, fmt.Errorf("gazetteer entry %d: duplicate id %q", i, c.ID)
		}
		g.byID[c.ID] = i

		var quoted []string
		for _, t := range c.Terms() {
			if n := Normalize(t); n != "" {
				g.terms = append(g.terms, term{phrase: " " + n + " ", cityID: c.ID})
			}
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
		// Longest first so "Gaza City" wins over "Gaza".
		sort.Slice(quoted, func(a, b int) bool { return len(quoted[a]) > len(quoted[b]) })
		for _, q := range quoted {
			c.masks = append(c.masks, regexp.MustCompile(`(?i)`+q))
		}
	}
	g.cities = list
	return g, nil
}

var defaultGazetteer = sync.OnceValue(func() *Gazetteer {
	g, err := Load(citiesYAML)
	if err != nil {
		panic(err)
	}
	return g
})

// Default returns the gazetteer embedded in the binary.
func Default() *Gazetteer {
	return defaultGazetteer()
}

// All returns every city in stable gazetteer order.
func (g *Gazetteer) All() []City {
	out := make([]City, len(g.cities))
	copy(out, g.cities)
	return out
}

// ByID looks a city up by id.
func (g *Gazetteer) ByID(id string) (City, bool) {
	i, ok := g.byID[id]
	if !ok {
		return City{}, false
	}
	return g.cities[i], true
}

// Names maps ids to display names, skipping unknown ids.
func (g *Gazetteer) Names(ids []string) []string {
	var names []string
	for _, id := range ids {
		if c, ok := g.ByID(id); ok {
			names = append(names, c.Name)
		}
	}
	return names
}

// Detect returns the ids of every city mentioned in text, in gazetteer order.
// Matching is whole-word on normalized text, so oblique references ("the city
// of the golden dome") are not detected.
func (g *Gazetteer) Detect(text string) []string {
	n := Normalize(text)
	if n == "" {
		return nil
	}
	padded := " " + n + " "

	seen := make(map[string]bool)
	for _, t := range g.terms {
		if !seen[t.cityID] && strings.Contains(padded, t.phrase) {
			seen[t.cityID] = true
		}
	}

	var ids []string
	for _, c := range g.cities {
		if seen[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Matches reports whether guess names the city with the given id.
func (g *Gazetteer) Matches(guess, cityID string) bool {
	for _, id := range g.Detect(guess) {
		if id == cityID {
			return true
		}
	}
	return false
}

// Normalize lowercases s, strips diacritics and collapses every run of
// non-letter, non-digit characters into a single space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	fields := strings.FieldsFunc(strings.ToLower(stripped), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}
