package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLookupMissingKeyReturnsDefaults(t *testing.T) {
	cat := &Catalog{Entries: map[string]Entry{}}

	info := cat.Lookup("Potato", "Late blight", KeyModeComposite)
	assert.Equal(t, Info{
		PlantName:   "Potato",
		DiseaseName: "Late blight",
		Description: DefaultDescription,
		Solution:    DefaultSolution,
		Link:        DefaultLink,
	}, info)
}

func TestLookupDefaultsEachFieldIndependently(t *testing.T) {
	cat := &Catalog{Entries: map[string]Entry{
		"Tomato Leaf Mold": {Description: strPtr("Fungal disease of tomato leaves.")},
	}}

	info := cat.Lookup("Tomato", "Leaf Mold", KeyModeComposite)
	assert.Equal(t, "Fungal disease of tomato leaves.", info.Description)
	assert.Equal(t, DefaultSolution, info.Solution)
	assert.Equal(t, DefaultLink, info.Link)
	assert.Equal(t, "Tomato", info.PlantName)
	assert.Equal(t, "Leaf Mold", info.DiseaseName)
}

func TestLookupKeepsPresentEmptyValues(t *testing.T) {
	cat := &Catalog{Entries: map[string]Entry{
		"Tomato healthy": {Solution: strPtr(""), Link: strPtr("")},
	}}

	info := cat.Lookup("Tomato", "healthy", KeyModeComposite)
	assert.Equal(t, "", info.Solution)
	assert.Equal(t, "", info.Link)
	assert.Equal(t, DefaultDescription, info.Description)
}

func TestLookupNilCatalog(t *testing.T) {
	var cat *Catalog
	info := cat.Lookup("Pepper", "bell healthy", KeyModePerToken)
	assert.Equal(t, "Pepper", info.PlantName)
	assert.Equal(t, DefaultDescription, info.Description)
}

func TestLookupPlantOnlyLabel(t *testing.T) {
	cat := &Catalog{Entries: map[string]Entry{
		"Tomato": {DiseaseName: strPtr("none")},
	}}

	info := cat.Lookup("Tomato", "", KeyModeComposite)
	assert.Equal(t, "none", info.DiseaseName)
}

func TestLookupKeyModes(t *testing.T) {
	cat, err := decodeJSON([]byte(frJSON))
	require.NoError(t, err)

	composite := cat.Lookup("Potato", "Late blight", KeyModeComposite)
	assert.Equal(t, "Pomme de terre", composite.PlantName)
	assert.Equal(t, "Late blight", composite.DiseaseName)
	assert.Equal(t, "Mildiou de la pomme de terre.", composite.Description)

	perToken := cat.Lookup("Potato", "Late blight", KeyModePerToken)
	assert.Equal(t, "Pomme de terre", perToken.PlantName)
	assert.Equal(t, "Mildiou", perToken.DiseaseName)
	assert.Equal(t, "Maladie fongique.", perToken.Description)
	assert.Equal(t, DefaultSolution, perToken.Solution)

	untranslated := cat.Lookup("Tomato", "Leaf Mold", KeyModePerToken)
	assert.Equal(t, "Tomato", untranslated.PlantName)
	assert.Equal(t, "Leaf Mold", untranslated.DiseaseName)
	assert.Equal(t, DefaultDescription, untranslated.Description)
}

func TestParseKeyMode(t *testing.T) {
	for in, want := range map[string]KeyMode{
		"":          KeyModeComposite,
		"composite": KeyModeComposite,
		"Per-Token": KeyModePerToken,
		"per_token": KeyModePerToken,
	} {
		got, err := ParseKeyMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKeyMode("fuzzy")
	assert.Error(t, err)
}
