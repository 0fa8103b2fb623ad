package cities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGazetteer(t *testing.T) {
	g := Default()
	all := g.All()
	require.NotEmpty(t, all)

	for _, c := range all {
		assert.NotEmpty(t, c.Facts, "city %s has no facts", c.ID)
		assert.NotEmpty(t, c.Hints, "city %s has no hints", c.ID)
		got, ok := g.ByID(c.ID)
		require.True(t, ok)
		assert.Equal(t, c.Name, got.Name)
	}

	assert.Equal(t, "jerusalem", all[0].ID, "gazetteer order must follow the data file")
}

func TestDetect(t *testing.T) {
	g := Default()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "no city", text: "Let's play a game about olives!", want: nil},
		{name: "display name", text: "Yes! It was Nablus, well done.", want: []string{"nablus"}},
		{name: "alias with hyphen", text: "You found al-khalil", want: []string{"hebron"}},
		{name: "arabic alias", text: "مدينة القدس جميلة", want: []string{"jerusalem"}},
		{name: "diacritics", text: "Welcome to Jeníñ", want: []string{"jenin"}},
		{name: "two cities in gazetteer order", text: "From Jaffa we sail to Gaza", want: []string{"gaza", "jaffa"}},
		{name: "partial word is not a match", text: "Gazala is not a city here", want: nil},
		{name: "multi word alias", text: "khan younis has date palms", want: []string{"khan-yunis"}},
		{name: "possessive", text: "Bethlehem's olive wood", want: []string{"bethlehem"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Detect(tt.text))
		})
	}
}

func TestMatches(t *testing.T) {
	g := Default()
	assert.True(t, g.Matches("is it Ariha?", "jericho"))
	assert.True(t, g.Matches("JERICHO", "jericho"))
	assert.False(t, g.Matches("is it Ramallah?", "jericho"))
	assert.False(t, g.Matches("", "jericho"))
}

func TestMask(t *testing.T) {
	c, ok := Default().ByID("hebron")
	require.True(t, ok)

	got := c.Mask("Hebron's grapes are sweet and al-khalil glass is blue", "this city")
	assert.Equal(t, "this city's grapes are sweet and this city glass is blue", got)

	gaza, _ := Default().ByID("gaza")
	assert.Equal(t, "Welcome to this city!", gaza.Mask("Welcome to Gaza City!", "this city"))
	assert.Equal(t, "Gazans love this city", gaza.Mask("Gazans love Gaza", "this city"))
}

func TestMaskArabicAliases(t *testing.T) {
	jerusalem, _ := Default().ByID("jerusalem")
	assert.Equal(t, "مدينة this city القديمة", jerusalem.Mask("مدينة القدس القديمة", "this city"))
	assert.Equal(t, "(this city)", jerusalem.Mask("(القدس)", "this city"))

	gaza, _ := Default().ByID("gaza")
	assert.Equal(t, "Sea of this city.", gaza.Mask("Sea of غزة.", "this city"))
	assert.Equal(t, "this city Cityscape", gaza.Mask("Gaza Cityscape", "this city"))
}

func TestHintClamp(t *testing.T) {
	c, _ := Default().ByID("jericho")
	assert.Equal(t, c.Hints[0], c.Hint(0))
	assert.Equal(t, c.Hints[len(c.Hints)-1], c.Hint(99))
	assert.Equal(t, "This city is somewhere in Palestine.", City{}.Hint(1))
}

func TestLoadRejectsDuplicates(t *testing.T) {
	_, err := Load([]byte("- {id: a, name: A}\n- {id: a, name: B}\n"))
	assert.Error(t, err)

	_, err = Load([]byte("- {id: '', name: A}\n"))
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"Gaza", "Haifa"}, Default().Names([]string{"gaza", "nowhere", "haifa"}))
}
