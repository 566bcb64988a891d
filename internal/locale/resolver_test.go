package locale

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const enJSON = `{
  "Potato Late blight": {
    "plant_name": "Potato",
    "disease_name": "Late blight",
    "description": "Caused by Phytophthora infestans.",
    "solution": "Remove infected plants.",
    "link": "https://example.org/late-blight"
  },
  "Tomato healthy": {"description": "The leaf looks healthy."}
}`

const frJSON = `{
  "_keys": {"Potato": "Pomme de terre", "Late blight": "Mildiou"},
  "Pomme de terre Mildiou": {"description": "Maladie fongique."},
  "Potato Late blight": {"plant_name": "Pomme de terre", "description": "Mildiou de la pomme de terre."}
}`

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestResolver(t *testing.T, dir string) *Resolver {
	t.Helper()
	r, err := NewResolver(dir, "en", "json", zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestNewResolverValidatesArguments(t *testing.T) {
	_, err := NewResolver(t.TempDir(), "en", "toml", zap.NewNop())
	assert.Error(t, err)

	_, err = NewResolver(t.TempDir(), "../en", "json", zap.NewNop())
	assert.Error(t, err)

	r, err := NewResolver("locales", "en", ".JSON", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("locales", "fr.json"), r.Path("fr"))
	assert.Equal(t, "en", r.DefaultLanguage())
}

func TestLoadRequestedLanguage(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", enJSON)
	writeLocale(t, dir, "fr.json", frJSON)

	cat, err := newTestResolver(t, dir).Load("fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", cat.Language)
	assert.False(t, cat.Fallback())
	assert.Equal(t, "Pomme de terre", cat.Keys["Potato"])
	assert.Contains(t, cat.Entries, "Pomme de terre Mildiou")
	assert.NotContains(t, cat.Entries, keysField)
}

func TestLoadMissingLanguageMatchesDefault(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", enJSON)
	r := newTestResolver(t, dir)

	fallback, err := r.Load("fr")
	require.NoError(t, err)
	direct, err := r.Load("en")
	require.NoError(t, err)

	assert.Equal(t, direct.Entries, fallback.Entries)
	assert.Equal(t, direct.Keys, fallback.Keys)
	assert.Equal(t, "en", fallback.Language)
	assert.Equal(t, "fr", fallback.Requested)
	assert.True(t, fallback.Fallback())
	assert.False(t, direct.Fallback())
}

func TestLoadRejectsPathLikeCodes(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", enJSON)
	secret := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(secret, 0o755))
	writeLocale(t, secret, "x.json", `{"leak": {"description": "secret"}}`)

	for _, lang := range []string{"sub/x", "../en", "", "fr;q=0.8"} {
		cat, err := newTestResolver(t, dir).Load(lang)
		require.NoError(t, err, lang)
		assert.Equal(t, "en", cat.Language, lang)
		assert.NotContains(t, cat.Entries, "leak", lang)
	}
}

func TestLoadMissingDefaultIsFatal(t *testing.T) {
	cat, err := newTestResolver(t, t.TempDir()).Load("fr")
	assert.Nil(t, cat)
	assert.ErrorIs(t, err, ErrDefaultLocale)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadMalformedDefaultIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", `{"Potato Late blight": `)

	_, err := newTestResolver(t, dir).Load("en")
	assert.ErrorIs(t, err, ErrDefaultLocale)
	assert.ErrorIs(t, err, ErrInvalidLocale)
}

func TestLoadMalformedRequestedIsSurfaced(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", enJSON)
	writeLocale(t, dir, "de.json", `{"Potato Late blight": "not a record"}`)

	_, err := newTestResolver(t, dir).Load("de")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLocale))
	assert.False(t, errors.Is(err, ErrDefaultLocale))
}

func TestLoadReadsFileEveryCall(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", enJSON)
	r := newTestResolver(t, dir)

	first, err := r.Load("en")
	require.NoError(t, err)
	assert.Contains(t, first.Entries, "Tomato healthy")

	writeLocale(t, dir, "en.json", `{"Tomato Leaf Mold": {"description": "updated"}}`)
	second, err := r.Load("en")
	require.NoError(t, err)
	assert.NotContains(t, second.Entries, "Tomato healthy")
	assert.Contains(t, second.Entries, "Tomato Leaf Mold")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yaml", `
_keys:
  Potato: Potato
Potato Late blight:
  description: Caused by Phytophthora infestans.
  link: https://example.org/late-blight
`)
	r, err := NewResolver(dir, "en", "yaml", zap.NewNop())
	require.NoError(t, err)

	cat, err := r.Load("es")
	require.NoError(t, err)
	require.Contains(t, cat.Entries, "Potato Late blight")
	info := cat.Lookup("Potato", "Late blight", KeyModeComposite)
	assert.Equal(t, "Caused by Phytophthora infestans.", info.Description)
	assert.Equal(t, DefaultSolution, info.Solution)
	assert.Equal(t, "https://example.org/late-blight", info.Link)
}

func TestNegotiate(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", enJSON)
	writeLocale(t, dir, "fr.json", frJSON)
	writeLocale(t, dir, "pt-BR.json", `{}`)
	r := newTestResolver(t, dir)

	tests := []struct {
		header  string
		want    string
		matched bool
	}{
		{"", "en", true},
		{"en", "en", true},
		{"fr", "fr", true},
		{"de", "en", false},
		{"fr-CA,fr;q=0.9,en;q=0.8", "fr", true},
		{"de-DE,de;q=0.9,fr;q=0.5", "fr", true},
		{"pt-BR", "pt-BR", true},
		{"pt-br", "pt-BR", true},
		{"*", "en", false},
		{"../../etc/passwd", "en", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, matched := r.Negotiate(tt.header)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, matched)
		})
	}
}
