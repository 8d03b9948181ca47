package team_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/team"
)

func mustOrder(t *testing.T, b *team.Builder, c team.Composition, slot int, rank float64) team.Composition {
	t.Helper()
	next, err := b.SetOverdriveOrder(c, slot, &rank)
	require.NoError(t, err)
	return next
}

func mustPlace(t *testing.T, b *team.Builder, c team.Composition, name string, slot int) team.Composition {
	t.Helper()
	next, err := b.PlaceOnSlot(c, name, slot)
	require.NoError(t, err)
	return next
}

func richComposition(t *testing.T, b *team.Builder) team.Composition {
	t.Helper()
	name, author, desc := "Veil Rush", "meur", "Burst the backline"
	content, faction := models.ContentPvE, models.FactionIllusionVeil

	c, err := b.SetMetadata(team.New(), team.Metadata{
		Name: &name, Author: &author, Description: &desc, ContentType: &content, Faction: &faction,
	})
	require.NoError(t, err)
	c = mustPlace(t, b, c, "Thane", 0)
	c = mustPlace(t, b, c, "Kestrel", 2)
	c = mustPlace(t, b, c, "Lumi", 4)
	c = mustPlace(t, b, c, "Sable", 6)
	c = mustPlace(t, b, c, "Ysolde", 8)
	c, err = b.SetSlotNote(c, 4, "keep alive")
	require.NoError(t, err)
	c = mustOrder(t, b, c, 6, 1)
	c = mustOrder(t, b, c, 2, 1)
	c = mustOrder(t, b, c, 4, 3)
	c, err = b.MoveToBench(c, "Vex", "")
	require.NoError(t, err)
	c, err = b.MoveToBench(c, "Maren", "")
	require.NoError(t, err)
	c, err = b.SetBenchNote(c, "Maren", "swap in for bosses")
	require.NoError(t, err)
	c, err = b.SetWyrmspell(c, models.WyrmspellBreach, "Flame Breath")
	require.NoError(t, err)
	c, err = b.SetWyrmspell(c, models.WyrmspellDragonsCall, "Roar")
	require.NoError(t, err)
	c.LastUpdated = 1700000000000
	return c
}

func TestSerializeOrdersOverdriveFirst(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := mustPlace(t, b, team.New(), "Thane", 1)
	c = mustPlace(t, b, c, "Fenrir", 2)
	c = mustPlace(t, b, c, "Lumi", 3)
	c = mustPlace(t, b, c, "Sable", 7)
	c = mustOrder(t, b, c, 3, 1)
	c = mustOrder(t, b, c, 1, 2)
	c = mustOrder(t, b, c, 2, 3)
	require.Equal(t, []int{3, 1, 2}, c.Overdrive)

	doc := team.Serialize(c)

	require.Len(t, doc.Members, 4)
	var names []string
	var orders []any
	for _, m := range doc.Members {
		names = append(names, m.CharacterName)
		if m.OverdriveOrder == nil {
			orders = append(orders, nil)
		} else {
			orders = append(orders, *m.OverdriveOrder)
		}
	}
	assert.Equal(t, []string{"Lumi", "Thane", "Fenrir", "Sable"}, names)
	assert.Equal(t, []any{1, 2, 3, nil}, orders)
	assert.Equal(t, &models.Position{Row: 2, Col: 1}, doc.Members[3].Position)
}

func TestSerializeOmitsEmptyOptionalBlocks(t *testing.T) {
	data, err := team.Marshal(team.New())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "bench")
	assert.NotContains(t, raw, "bench_notes")
	assert.NotContains(t, raw, "wyrmspells")
	assert.Equal(t, []any{}, raw["members"])
	assert.Equal(t, "All", raw["content_type"])
}

func TestSerializeOmitsBlankNotes(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := mustPlace(t, b, team.New(), "Thane", 0)
	c, _ = b.SetSlotNote(c, 0, "   ")
	c, _ = b.MoveToBench(c, "Lumi", "")

	data, err := team.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"note"`)
	assert.NotContains(t, string(data), `"bench_notes"`)
	assert.Contains(t, string(data), `"bench": [`)
}

func TestSerializeIsStable(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := richComposition(t, b)

	first, err := team.Marshal(c)
	require.NoError(t, err)
	second, err := team.Marshal(c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRoundTrip(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := richComposition(t, b)

	data, err := team.Marshal(c)
	require.NoError(t, err)
	restored, err := b.Paste(team.New(), string(data))
	require.NoError(t, err)

	assert.Equal(t, c, restored)
	assert.Equal(t, []int{2, 6, 4}, restored.Overdrive)
}

func TestPasteMemberWithoutPosition(t *testing.T) {
	b := team.NewBuilder(newCatalog())

	c, err := b.Paste(team.New(), `{"members":[{"character_name":"Fenrir"}]}`)

	require.NoError(t, err)
	assert.Equal(t, "Fenrir", c.Slots[0])
	assert.Equal(t, 1, c.RosterCount())
}

func TestPasteBareListPlacesInInputOrder(t *testing.T) {
	b := team.NewBuilder(newCatalog())

	c, err := b.Paste(team.New(), `[{"character_name":"Lumi"},{"character_name":"Kestrel"},{"character_name":"Sable"}]`)

	require.NoError(t, err)
	assert.Equal(t, "Lumi", c.Slots[3])
	assert.Equal(t, "Kestrel", c.Slots[0])
	assert.Equal(t, "Sable", c.Slots[4])
}

func TestPasteInvalidJSONLeavesStateUnchanged(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := richComposition(t, b)

	next, err := b.Paste(c, "not json")

	require.Error(t, err)
	assert.Equal(t, "syntax", errors.GetMeta(err)["reason"])
	assert.Equal(t, c, next)
}

func TestPasteMergesOnlyPresentFields(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := richComposition(t, b)

	next, err := b.Paste(c, `{"name":"Renamed","members":[{"character_name":"Fenrir","position":{"row":0,"col":1}}]}`)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", next.Name)
	assert.Equal(t, c.Author, next.Author)
	assert.Equal(t, c.Faction, next.Faction)
	assert.Equal(t, c.Bench, next.Bench)
	assert.Equal(t, c.BenchNotes, next.BenchNotes)
	assert.Equal(t, c.Wyrmspells, next.Wyrmspells)
	assert.Equal(t, []string{"Fenrir"}, next.Roster())
	assert.Equal(t, 1, next.SlotOf("Fenrir"))
	assert.Nil(t, next.Overdrive)
}

func TestPasteMalformedFieldsFallBack(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := richComposition(t, b)

	next, err := b.Paste(c, `{"members":"oops","name":5,"content_type":"Raid","faction":"Nowhere","bench":["Vex",3],"wyrmspells":{"refuge":"Aegis","breach":7}}`)

	require.NoError(t, err)
	assert.Equal(t, c.Slots, next.Slots)
	assert.Equal(t, c.Overdrive, next.Overdrive)
	assert.Equal(t, c.Name, next.Name)
	assert.Equal(t, c.ContentType, next.ContentType)
	assert.Equal(t, c.Faction, next.Faction)
	assert.Equal(t, c.Bench, next.Bench)
	assert.Equal(t, "Flame Breath", next.Wyrmspells.Breach)
	assert.Equal(t, "Aegis", next.Wyrmspells.Refuge)
}

func TestPasteDuplicateSlotsAndOverdriveRenumbering(t *testing.T) {
	b := team.NewBuilder(newCatalog())

	c, err := b.Paste(team.New(), `{"members":[
		{"character_name":"Thane","position":{"row":0,"col":0},"overdrive_order":5},
		{"character_name":"Fenrir","position":{"row":0,"col":0},"overdrive_order":1},
		{"character_name":"Kestrel","overdrive_order":2},
		{"character_name":"Thane","position":{"row":0,"col":2}},
		{"character_name":"Ghost"}
	]}`)

	require.NoError(t, err)
	assert.Equal(t, "Thane", c.Slots[0])
	assert.Equal(t, "Kestrel", c.Slots[1])
	assert.Equal(t, -1, c.SlotOf("Fenrir"))
	assert.Equal(t, 2, c.RosterCount())
	assert.Equal(t, []int{1, 0}, c.Overdrive)

	doc := team.Serialize(c)
	require.Len(t, doc.Members, 2)
	assert.Equal(t, "Kestrel", doc.Members[0].CharacterName)
	assert.Equal(t, 1, *doc.Members[0].OverdriveOrder)
	assert.Equal(t, "Thane", doc.Members[1].CharacterName)
	assert.Equal(t, 2, *doc.Members[1].OverdriveOrder)
}

func TestPasteIllegalPositionFallsBackToFirstLegalSlot(t *testing.T) {
	b := team.NewBuilder(newCatalog())

	c, err := b.Paste(team.New(), `{"members":[{"character_name":"Thane","position":{"row":2,"col":0}},{"character_name":"Lumi","position":{"row":1.5,"col":0}}]}`)

	require.NoError(t, err)
	assert.Equal(t, "Thane", c.Slots[0])
	assert.Equal(t, "Lumi", c.Slots[3])
	assert.NoError(t, b.Validate(c))
}

func TestPasteCapsRosterAndPrunesBench(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c, err := b.MoveToBench(team.New(), "Thane", "")
	require.NoError(t, err)

	next, err := b.Paste(c, `[{"character_name":"Thane"},{"character_name":"Fenrir"},{"character_name":"Orrin"},
		{"character_name":"Lumi"},{"character_name":"Sable"},{"character_name":"Ysolde"},{"character_name":"Maren"}]`)

	require.NoError(t, err)
	assert.Equal(t, team.MaxRosterSize, next.RosterCount())
	assert.Equal(t, -1, next.SlotOf("Maren"))
	assert.Nil(t, next.Bench)
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	names := []string{"Thane", "Brakka", "Gorm", "Fenrir", "Orrin", "Kestrel", "Vex", "Lumi", "Maren", "Sable", "Corvin", "Ysolde", "Nobody"}
	rng := rand.New(rand.NewSource(42))

	c := team.New()
	for i := 0; i < 2000; i++ {
		name := names[rng.Intn(len(names))]
		before := c
		var err error
		switch rng.Intn(7) {
		case 0, 1:
			c, err = b.PlaceOnSlot(c, name, rng.Intn(team.SlotCount))
		case 2:
			anchor := ""
			if len(c.Bench) > 0 {
				anchor = c.Bench[rng.Intn(len(c.Bench))]
			}
			c, err = b.MoveToBench(c, name, anchor)
		case 3:
			c, err = b.MoveToAvailable(c, name)
		case 4:
			c, err = b.AddToNextValidSlot(c, name)
		case 5:
			rank := rng.Float64()*9 - 1
			c, err = b.SetOverdriveOrder(c, rng.Intn(team.SlotCount), &rank)
		case 6:
			c, err = b.SetSlotNote(c, rng.Intn(team.SlotCount), names[rng.Intn(len(names))])
		}
		if err != nil {
			require.Equal(t, before, c, "rejected operation %d changed state", i)
		}
		require.NoError(t, b.Validate(c), "operation %d broke an invariant", i)

		data, err := team.Marshal(c)
		require.NoError(t, err)
		restored, err := b.Paste(team.New(), string(data))
		require.NoError(t, err)
		require.Equal(t, c, restored, "round trip diverged at operation %d", i)
	}
}

func TestPasteOutOfRangeLastUpdatedKeepsCurrent(t *testing.T) {
	b := team.NewBuilder(newCatalog())
	c := team.New()
	c.LastUpdated = 1700000000000

	for _, raw := range []string{
		`{"members":[],"last_updated":9223372036854775807}`,
		`{"members":[],"last_updated":1e19}`,
		`{"members":[],"last_updated":-1}`,
	} {
		next, err := b.Paste(c, raw)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000000), next.LastUpdated, raw)
	}

	next, err := b.Paste(c, `{"members":[],"last_updated":1800000000000}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1800000000000), next.LastUpdated)
}
