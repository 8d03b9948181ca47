package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/dtwiki/internal/catalog"
	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

func sample() *catalog.Catalog {
	return catalog.New([]models.Character{
		{Name: "zephyr", Title: "Wind Rider", Quality: models.QualityEpic, CharacterClass: models.ClassArcher,
			Factions: []models.Faction{models.FactionWildSpirit}},
		{Name: "Élodie", Title: "Dawn Singer", Quality: models.QualityMyth, CharacterClass: models.ClassPriest,
			Factions: []models.Faction{models.FactionSanctumGlory}},
		{Name: "Aldric", Quality: models.QualityLegend, CharacterClass: models.ClassGuardian,
			Factions: []models.Faction{models.FactionSanctumGlory, models.FactionIllusionVeil}},
		{Name: "Aldric", Title: "duplicate"},
		{Name: "  "},
	}, []models.Wyrmspell{
		{Name: "Stormcall", Type: models.WyrmspellWildcry},
		{Name: "Aegis", Type: models.WyrmspellRefuge},
	})
}

func names(chars []models.Character) []string {
	out := []string{}
	for _, ch := range chars {
		out = append(out, ch.Name)
	}
	return out
}

func TestCollatedOrder(t *testing.T) {
	c := sample()
	assert.Equal(t, []string{"Aldric", "Élodie", "zephyr"}, c.Names())
	assert.Equal(t, 3, c.Len())

	ch, ok := c.Character("Aldric")
	require.True(t, ok)
	assert.Empty(t, ch.Title, "the first record of a name wins")
}

func TestRosterOrder(t *testing.T) {
	c := catalog.New([]models.Character{
		{Name: "Ayla", Quality: models.QualityMyth, CharacterClass: models.ClassMage},
		{Name: "Bran", Quality: models.QualityElite, CharacterClass: models.ClassGuardian},
		{Name: "Cora", Quality: models.QualityMyth, CharacterClass: models.ClassGuardian},
		{Name: "Dax", Quality: models.QualityEpic, CharacterClass: models.ClassPriest},
		{Name: "Eno", Quality: "Mystery", CharacterClass: models.ClassGuardian},
		{Name: "Abe", Quality: models.QualityMyth, CharacterClass: models.ClassGuardian},
		{Name: "Fyn", Quality: models.QualityMyth},
	}, nil)

	want := []string{"Abe", "Cora", "Bran", "Eno", "Dax", "Ayla", "Fyn"}
	assert.Equal(t, want, names(c.Characters()))
	assert.Equal(t, want, names(c.Find(catalog.Filter{})))
	assert.Equal(t, []string{"Abe", "Ayla", "Bran", "Cora", "Dax", "Eno", "Fyn"}, c.Names())
}

func TestFold(t *testing.T) {
	assert.Equal(t, "elodie dawn", catalog.Fold("  ÉLODIE   Dawn "))
	assert.Equal(t, "strasse", catalog.Fold("STRASSE"))
}

func TestFindByQueryIgnoresAccentsAndCase(t *testing.T) {
	c := sample()
	assert.Equal(t, []string{"Élodie"}, names(c.Find(catalog.Filter{Query: "elo"})))
	assert.Equal(t, []string{"Élodie"}, names(c.Find(catalog.Filter{Query: "DAWN"})))
	assert.Empty(t, c.Find(catalog.Filter{Query: "nobody"}))
	assert.Len(t, c.Find(catalog.Filter{}), 3)
}

func TestFindByAttributes(t *testing.T) {
	c := sample()
	assert.Equal(t, []string{"Aldric", "Élodie"}, names(c.Find(catalog.Filter{Faction: models.FactionSanctumGlory})))
	assert.Equal(t, []string{"zephyr"}, names(c.Find(catalog.Filter{Class: models.ClassArcher})))
	assert.Equal(t, []string{"Élodie"}, names(c.Find(catalog.Filter{Quality: models.QualityMyth, Faction: models.FactionSanctumGlory})))
}

func TestWyrmspells(t *testing.T) {
	c := sample()
	assert.Len(t, c.Wyrmspells(""), 2)
	assert.Equal(t, "Aegis", c.Wyrmspells("")[0].Name)
	assert.Len(t, c.Wyrmspells(models.WyrmspellRefuge), 1)
	assert.Empty(t, c.Wyrmspells(models.WyrmspellBreach))

	w, ok := c.Wyrmspell("Stormcall")
	require.True(t, ok)
	assert.Equal(t, models.WyrmspellWildcry, w.Type)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.CharactersFile),
		[]byte(`[{"name":"Thane","character_class":"Guardian","factions":["Sanctum Glory"]}]`), 0o644))

	c, err := catalog.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thane"}, c.Names())
	assert.Empty(t, c.Wyrmspells(""))

	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.WyrmspellsFile), []byte(`{`), 0o644))
	_, err = catalog.Load(dir)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = catalog.Load(t.TempDir())
	assert.True(t, errors.IsNotFound(err))
}
