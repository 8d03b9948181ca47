// Package catalog is the read-only character and wyrmspell database that
// builders validate names against.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

// Data file names inside a data directory
const (
	CharactersFile = "characters.json"
	WyrmspellsFile = "wyrmspells.json"
)

// Listing order of classes and qualities; anything else sorts after them
var (
	classOrder = []models.CharacterClass{
		models.ClassGuardian, models.ClassPriest, models.ClassAssassin,
		models.ClassWarrior, models.ClassArcher, models.ClassMage,
	}
	qualityOrder = []models.Quality{
		models.QualityMyth, models.QualityLegendPlus, models.QualityLegend,
		models.QualityEpic, models.QualityElite,
	}
)

// Catalog indexes characters by name. It keeps a collated name listing and a
// roster listing ordered by class, quality, then name.
type Catalog struct {
	byName     map[string]models.Character
	ordered    []models.Character
	roster     []models.Character
	keys       map[string]string
	wyrmspells []models.Wyrmspell
}

// New builds a catalog. Later duplicates of a name are dropped.
func New(characters []models.Character, wyrmspells []models.Wyrmspell) *Catalog {
	c := &Catalog{
		byName: make(map[string]models.Character, len(characters)),
		keys:   make(map[string]string, len(characters)),
	}
	for _, ch := range characters {
		ch.Name = strings.TrimSpace(ch.Name)
		if ch.Name == "" {
			continue
		}
		if _, dup := c.byName[ch.Name]; dup {
			continue
		}
		c.byName[ch.Name] = ch
		c.ordered = append(c.ordered, ch)
		c.keys[ch.Name] = Fold(ch.Name + " " + ch.Title)
	}

	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(c.ordered, func(a, b models.Character) int {
		return col.CompareString(a.Name, b.Name)
	})
	c.roster = slices.Clone(c.ordered)
	slices.SortStableFunc(c.roster, func(a, b models.Character) int {
		if d := rank(classOrder, a.CharacterClass) - rank(classOrder, b.CharacterClass); d != 0 {
			return d
		}
		return rank(qualityOrder, a.Quality) - rank(qualityOrder, b.Quality)
	})

	c.wyrmspells = slices.Clone(wyrmspells)
	slices.SortStableFunc(c.wyrmspells, func(a, b models.Wyrmspell) int {
		return col.CompareString(a.Name, b.Name)
	})
	return c
}

func rank[T comparable](order []T, v T) int {
	if i := slices.Index(order, v); i >= 0 {
		return i
	}
	return len(order)
}

// Load reads characters.json and, when present, wyrmspells.json from dir
func Load(dir string) (*Catalog, error) {
	var characters []models.Character
	if err := readJSON(filepath.Join(dir, CharactersFile), &characters); err != nil {
		return nil, err
	}
	var wyrmspells []models.Wyrmspell
	if err := readJSON(filepath.Join(dir, WyrmspellsFile), &wyrmspells); err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	return New(characters, wyrmspells), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundf("data file %s not found", path)
		}
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode "+path)
	}
	return nil
}

// Character looks a character up by exact name
func (c *Catalog) Character(name string) (models.Character, bool) {
	ch, ok := c.byName[name]
	return ch, ok
}

// Characters returns every character in roster order
func (c *Catalog) Characters() []models.Character {
	return slices.Clone(c.roster)
}

// Names returns every character name in collated order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.ordered))
	for i, ch := range c.ordered {
		names[i] = ch.Name
	}
	return names
}

// Len returns the number of characters
func (c *Catalog) Len() int { return len(c.ordered) }

// Filter narrows a character listing. Zero fields match everything.
type Filter struct {
	Query   string
	Class   models.CharacterClass
	Faction models.Faction
	Quality models.Quality
}

// Find returns the characters matching f in roster order. The query
// matches folded substrings of the name and title.
func (c *Catalog) Find(f Filter) []models.Character {
	query := Fold(f.Query)
	out := []models.Character{}
	for _, ch := range c.roster {
		if f.Class != "" && ch.CharacterClass != f.Class {
			continue
		}
		if f.Faction != "" && !ch.HasFaction(f.Faction) {
			continue
		}
		if f.Quality != "" && ch.Quality != f.Quality {
			continue
		}
		if query != "" && !strings.Contains(c.keys[ch.Name], query) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// Wyrmspells returns the wyrmspells of a category, or all when category is empty
func (c *Catalog) Wyrmspells(category models.WyrmspellCategory) []models.Wyrmspell {
	out := []models.Wyrmspell{}
	for _, w := range c.wyrmspells {
		if category == "" || w.Type == category {
			out = append(out, w)
		}
	}
	return out
}

// Wyrmspell looks a wyrmspell up by exact name
func (c *Catalog) Wyrmspell(name string) (models.Wyrmspell, bool) {
	i := slices.IndexFunc(c.wyrmspells, func(w models.Wyrmspell) bool { return w.Name == name })
	if i < 0 {
		return models.Wyrmspell{}, false
	}
	return c.wyrmspells[i], true
}
