package locale

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/agrivision-api/internal/labels"
)

// Placeholders returned when a record does not carry the field.
const (
	DefaultDescription = "Information not available"
	DefaultSolution    = "No solution available"
	DefaultLink        = "No link available"
)

// keysField is the reserved top-level key holding the token translation table.
const keysField = "_keys"

// KeyMode selects how a predicted label is turned into a catalog key.
type KeyMode string

const (
	// KeyModeComposite keys records on the raw "plant disease" string.
	KeyModeComposite KeyMode = "composite"
	// KeyModePerToken translates plant and disease through the catalog's
	// token table before building the key.
	KeyModePerToken KeyMode = "per-token"
)

// ParseKeyMode parses a configured key mode. The empty string selects composite.
func ParseKeyMode(s string) (KeyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "composite":
		return KeyModeComposite, nil
	case "per-token", "per_token", "token":
		return KeyModePerToken, nil
	}
	return "", fmt.Errorf("unknown locale key mode %q", s)
}

// Entry is one record of a locale file. Absent fields stay nil.
type Entry struct {
	PlantName   *string `json:"plant_name" yaml:"plant_name"`
	DiseaseName *string `json:"disease_name" yaml:"disease_name"`
	Description *string `json:"description" yaml:"description"`
	Solution    *string `json:"solution" yaml:"solution"`
	Link        *string `json:"link" yaml:"link"`
}

// Info is a fully populated lookup result.
type Info struct {
	PlantName   string
	DiseaseName string
	Description string
	Solution    string
	Link        string
}

// Catalog is the parsed content of one locale file.
type Catalog struct {
	// Language is the code of the file that was actually read.
	Language string
	// Requested is the code the caller asked for.
	Requested string
	Entries   map[string]Entry
	Keys      map[string]string
}

// Fallback reports whether the default locale was served instead of the
// requested one.
func (c *Catalog) Fallback() bool {
	return c != nil && c.Requested != c.Language
}

// Lookup returns the localized information for plant and disease. Every field
// missing from the catalog is defaulted on its own, so Lookup always returns a
// complete Info, even on a nil catalog.
func (c *Catalog) Lookup(plant, disease string, mode KeyMode) Info {
	if mode == KeyModePerToken && c != nil {
		plant = c.translate(plant)
		disease = c.translate(disease)
	}

	var entry Entry
	if c != nil {
		entry = c.Entries[labels.CompositeKey(plant, disease)]
	}

	return Info{
		PlantName:   valueOr(entry.PlantName, plant),
		DiseaseName: valueOr(entry.DiseaseName, disease),
		Description: valueOr(entry.Description, DefaultDescription),
		Solution:    valueOr(entry.Solution, DefaultSolution),
		Link:        valueOr(entry.Link, DefaultLink),
	}
}

func (c *Catalog) translate(token string) string {
	if v, ok := c.Keys[token]; ok && v != "" {
		return v
	}
	return token
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func decodeJSON(data []byte) (*Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cat := newCatalog(len(raw))
	for key, msg := range raw {
		if key == keysField {
			if err := json.Unmarshal(msg, &cat.Keys); err != nil {
				return nil, fmt.Errorf("%s: %w", keysField, err)
			}
			continue
		}
		var entry Entry
		if err := json.Unmarshal(msg, &entry); err != nil {
			return nil, fmt.Errorf("record %q: %w", key, err)
		}
		cat.Entries[key] = entry
	}
	return cat, nil
}

func decodeYAML(data []byte) (*Catalog, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cat := newCatalog(len(raw))
	for key, node := range raw {
		if key == keysField {
			if err := node.Decode(&cat.Keys); err != nil {
				return nil, fmt.Errorf("%s: %w", keysField, err)
			}
			continue
		}
		var entry Entry
		if err := node.Decode(&entry); err != nil {
			return nil, fmt.Errorf("record %q: %w", key, err)
		}
		cat.Entries[key] = entry
	}
	return cat, nil
}

func newCatalog(size int) *Catalog {
	return &Catalog{
		Entries: make(map[string]Entry, size),
		Keys:    map[string]string{},
	}
}
