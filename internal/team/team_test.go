package team_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/team"
)

type fakeCatalog map[string]models.Character

func (f fakeCatalog) Character(name string) (models.Character, bool) {
	ch, ok := f[name]
	return ch, ok
}

func newCatalog() fakeCatalog {
	cat := fakeCatalog{}
	add := func(name string, class models.CharacterClass, factions ...models.Faction) {
		cat[name] = models.Character{Name: name, CharacterClass: class, Factions: factions}
	}
	add("Thane", models.ClassGuardian, models.FactionSanctumGlory)
	add("Brakka", models.ClassGuardian, models.FactionWildSpirit)
	add("Gorm", models.ClassGuardian, models.FactionWildSpirit)
	add("Fenrir", models.ClassWarrior, models.FactionWildSpirit)
	add("Orrin", models.ClassWarrior, models.FactionSanctumGlory)
	add("Kestrel", models.ClassAssassin, models.FactionIllusionVeil)
	add("Vex", models.ClassAssassin, models.FactionIllusionVeil)
	add("Lumi", models.ClassPriest, models.FactionSanctumGlory)
	add("Maren", models.ClassPriest, models.FactionElementalEcho)
	add("Sable", models.ClassMage, models.FactionArcaneWisdom)
	add("Corvin", models.ClassMage, models.FactionArcaneWisdom)
	add("Ysolde", models.ClassArcher, models.FactionOtherworldReturn)
	add("Nobody", models.CharacterClass("Bard"))
	return cat
}

type BuilderTestSuite struct {
	suite.Suite
	builder *team.Builder
}

func (s *BuilderTestSuite) SetupTest() {
	s.builder = team.NewBuilder(newCatalog())
}

func TestBuilderTestSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

func (s *BuilderTestSuite) place(c team.Composition, name string, slot int) team.Composition {
	next, err := s.builder.PlaceOnSlot(c, name, slot)
	s.Require().NoError(err)
	return next
}

func (s *BuilderTestSuite) auto(c team.Composition, names ...string) team.Composition {
	for _, name := range names {
		var err error
		c, err = s.builder.AddToNextValidSlot(c, name)
		s.Require().NoError(err)
	}
	return c
}

func (s *BuilderTestSuite) order(c team.Composition, slot int, rank float64) team.Composition {
	next, err := s.builder.SetOverdriveOrder(c, slot, &rank)
	s.Require().NoError(err)
	return next
}

func (s *BuilderTestSuite) fullRoster() team.Composition {
	return s.auto(team.New(), "Thane", "Fenrir", "Orrin", "Lumi", "Sable", "Ysolde")
}

func (s *BuilderTestSuite) TestLegalRows() {
	tests := []struct {
		class models.CharacterClass
		rows  []team.Row
	}{
		{models.ClassGuardian, []team.Row{team.RowFront}},
		{models.ClassWarrior, []team.Row{team.RowFront, team.RowMiddle}},
		{models.ClassPriest, []team.Row{team.RowMiddle, team.RowBack}},
		{models.ClassMage, []team.Row{team.RowMiddle, team.RowBack}},
		{models.ClassArcher, []team.Row{team.RowMiddle, team.RowBack}},
		{models.ClassAssassin, []team.Row{team.RowFront, team.RowMiddle, team.RowBack}},
		{models.CharacterClass("Bard"), []team.Row{team.RowFront, team.RowMiddle, team.RowBack}},
		{models.CharacterClass(""), []team.Row{team.RowFront, team.RowMiddle, team.RowBack}},
	}
	for _, tt := range tests {
		s.Equal(tt.rows, team.LegalRows(tt.class), string(tt.class))
	}
}

func (s *BuilderTestSuite) TestPlaceGuardianInBackRowIsRejected() {
	c := s.auto(team.New(), "Fenrir")

	next, err := s.builder.PlaceOnSlot(c, "Thane", team.SlotIndex(team.RowBack, 0))

	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Contains(errors.GetMessage(err), "Thane")
	s.Contains(errors.GetMessage(err), "the back row")
	s.Equal(team.ReasonInvalidPlacement, errors.GetMeta(err)["reason"])
	s.Equal(c, next)
}

func (s *BuilderTestSuite) TestPlaceUnknownCharacter() {
	c := team.New()
	next, err := s.builder.PlaceOnSlot(c, "Ghost", 0)
	s.True(errors.IsNotFound(err))
	s.Equal(c, next)
}

func (s *BuilderTestSuite) TestPlaceOnEmptySlotWithFullRosterIsRejected() {
	c := s.fullRoster()
	s.Equal(6, c.RosterCount())

	next, err := s.builder.PlaceOnSlot(c, "Kestrel", 8)

	s.True(errors.IsResourceExhausted(err))
	s.Equal(c, next)
}

func (s *BuilderTestSuite) TestFullRosterDropOnOccupiedSlotEvictsOccupant() {
	c := s.fullRoster()
	s.Equal("Lumi", c.Slots[3])
	c = s.order(c, 3, 1)

	next, err := s.builder.PlaceOnSlot(c, "Maren", 3)

	s.Require().NoError(err)
	s.Equal("Maren", next.Slots[3])
	s.Equal(6, next.RosterCount())
	s.Equal(-1, next.SlotOf("Lumi"))
	s.False(next.OnBench("Lumi"))
	s.Empty(next.Overdrive)
}

func (s *BuilderTestSuite) TestFullRosterBenchDropCarriesBenchNote() {
	c := s.fullRoster()
	c, err := s.builder.SetSlotNote(c, 0, "old tank note")
	s.Require().NoError(err)
	c, err = s.builder.MoveToBench(c, "Kestrel", "")
	s.Require().NoError(err)
	c, err = s.builder.SetBenchNote(c, "Kestrel", "  dive the backline ")
	s.Require().NoError(err)

	next, err := s.builder.PlaceOnSlot(c, "Kestrel", 0)

	s.Require().NoError(err)
	s.Equal("Kestrel", next.Slots[0])
	s.Equal("dive the backline", next.SlotNotes[0])
	s.Equal(-1, next.SlotOf("Thane"))
	s.False(next.OnBench("Thane"))
	s.Empty(next.Bench)
	s.Nil(next.BenchNotes)
}

func (s *BuilderTestSuite) TestOccupantRelocatesWhenRosterHasRoom() {
	c := s.place(team.New(), "Fenrir", 0)
	c, err := s.builder.SetSlotNote(c, 0, "opener")
	s.Require().NoError(err)
	c = s.order(c, 0, 1)

	next, err := s.builder.PlaceOnSlot(c, "Thane", 0)

	s.Require().NoError(err)
	s.Equal("Thane", next.Slots[0])
	s.Equal("Fenrir", next.Slots[1])
	s.Equal("opener", next.SlotNotes[1])
	s.Empty(next.SlotNotes[0])
	s.Empty(next.Overdrive)
}

func (s *BuilderTestSuite) TestOccupantWithNoLegalSlotAbandonsPlacement() {
	c := s.place(team.New(), "Thane", 0)
	c = s.place(c, "Brakka", 1)
	c = s.place(c, "Gorm", 2)

	next, err := s.builder.PlaceOnSlot(c, "Fenrir", 0)

	s.NoError(err)
	s.Equal(c, next)
}

func (s *BuilderTestSuite) TestSlotSwapCarriesOverdriveAndNotes() {
	c := s.place(team.New(), "Fenrir", 0)
	c = s.place(c, "Kestrel", 3)
	c, _ = s.builder.SetSlotNote(c, 0, "fenrir note")
	c, _ = s.builder.SetSlotNote(c, 3, "kestrel note")
	c = s.order(c, 0, 1)
	c = s.order(c, 3, 2)
	s.Equal([]int{0, 3}, c.Overdrive)

	next, err := s.builder.PlaceOnSlot(c, "Fenrir", 3)

	s.Require().NoError(err)
	s.Equal("Kestrel", next.Slots[0])
	s.Equal("Fenrir", next.Slots[3])
	s.Equal("kestrel note", next.SlotNotes[0])
	s.Equal("fenrir note", next.SlotNotes[3])
	s.Equal([]int{3, 0}, next.Overdrive)
}

func (s *BuilderTestSuite) TestSlotSwapValidatesReversePlacement() {
	c := s.place(team.New(), "Thane", 0)
	c = s.place(c, "Fenrir", 3)

	next, err := s.builder.PlaceOnSlot(c, "Fenrir", 0)

	s.Require().Error(err)
	s.Contains(errors.GetMessage(err), "Thane")
	s.Contains(errors.GetMessage(err), "the middle row")
	s.Equal(c, next)
}

func (s *BuilderTestSuite) TestSlotMoveToEmptySlotKeepsOverdrive() {
	c := s.place(team.New(), "Kestrel", 0)
	c = s.order(c, 0, 1)

	next := s.place(c, "Kestrel", 8)

	s.Equal("Kestrel", next.Slots[8])
	s.Empty(next.Slots[0])
	s.Equal([]int{8}, next.Overdrive)
}

func (s *BuilderTestSuite) TestBenchMovesAndReordering() {
	c := s.place(team.New(), "Thane", 0)
	c, _ = s.builder.SetSlotNote(c, 0, "tank")
	c = s.order(c, 0, 1)

	c, err := s.builder.MoveToBench(c, "Thane", "")
	s.Require().NoError(err)
	s.Empty(c.Slots[0])
	s.Empty(c.SlotNotes[0])
	s.Nil(c.Overdrive)
	s.Equal([]string{"Thane"}, c.Bench)
	s.Equal(map[string]string{"Thane": "tank"}, c.BenchNotes)

	c, err = s.builder.MoveToBench(c, "Lumi", "Thane")
	s.Require().NoError(err)
	s.Equal([]string{"Lumi", "Thane"}, c.Bench)

	c, err = s.builder.MoveToBench(c, "Thane", "Lumi")
	s.Require().NoError(err)
	s.Equal([]string{"Thane", "Lumi"}, c.Bench)
	s.Equal("tank", c.BenchNotes["Thane"])

	c = s.place(c, "Thane", 1)
	s.Equal("tank", c.SlotNotes[1])
	s.Equal([]string{"Lumi"}, c.Bench)
	s.Nil(c.BenchNotes)
	s.NoError(s.builder.Validate(c))
}

func (s *BuilderTestSuite) TestMoveToAvailableDiscardsNotes() {
	c := s.place(team.New(), "Thane", 0)
	c, _ = s.builder.SetSlotNote(c, 0, "tank")
	c, _ = s.builder.MoveToBench(c, "Lumi", "")
	c, _ = s.builder.SetBenchNote(c, "Lumi", "heals")

	c, err := s.builder.MoveToAvailable(c, "Thane")
	s.Require().NoError(err)
	c, err = s.builder.MoveToAvailable(c, "Lumi")
	s.Require().NoError(err)

	s.Equal(team.New(), c)

	same, err := s.builder.MoveToAvailable(c, "Sable")
	s.NoError(err)
	s.Equal(c, same)
}

func (s *BuilderTestSuite) TestSetOverdriveOrder() {
	c := s.place(team.New(), "Thane", 0)
	c = s.place(c, "Fenrir", 1)
	c = s.place(c, "Lumi", 3)
	c = s.place(c, "Sable", 4)

	c = s.order(c, 3, 1)
	s.Equal([]int{3}, c.Overdrive)

	c = s.order(c, 0, 5)
	s.Equal([]int{3, 0}, c.Overdrive, "rank is clamped to the sequence end")

	c = s.order(c, 1, 1.4)
	s.Equal([]int{1, 3, 0}, c.Overdrive)

	c = s.order(c, 0, 0.6)
	s.Equal([]int{0, 1, 3}, c.Overdrive, "moving to an absolute rank shifts later entries down")

	c, err := s.builder.SetOverdriveOrder(c, 3, nil)
	s.Require().NoError(err)
	s.Equal([]int{0, 1}, c.Overdrive)

	same := s.order(c, 8, 1)
	s.Equal(c, same, "empty slots are ignored")

	c = s.order(c, 4, -3)
	s.Equal([]int{4, 0, 1}, c.Overdrive)
	s.Equal(1, c.OverdriveRank(4))

	nan := math.NaN()
	_, err = s.builder.SetOverdriveOrder(c, 4, &nan)
	s.True(errors.IsInvalidArgument(err))
}

func (s *BuilderTestSuite) TestSetOverdriveOrderClampsExtremeOrders() {
	c := s.place(team.New(), "Thane", 0)
	c = s.place(c, "Fenrir", 1)
	c = s.place(c, "Lumi", 4)
	c = s.order(c, 0, 1)
	c = s.order(c, 1, 2)
	s.Require().Equal([]int{0, 1}, c.Overdrive)

	for _, order := range []float64{1e19, 1e300} {
		got := s.order(c, 4, order)
		s.Equal([]int{0, 1, 4}, got.Overdrive, "order %g goes last", order)
	}

	got := s.order(c, 4, -1e300)
	s.Equal([]int{4, 0, 1}, got.Overdrive)
}

func (s *BuilderTestSuite) TestAddToNextValidSlot() {
	c := s.auto(team.New(), "Lumi", "Thane", "Fenrir", "Kestrel")

	s.Equal("Lumi", c.Slots[3])
	s.Equal("Thane", c.Slots[0])
	s.Equal("Fenrir", c.Slots[1])
	s.Equal("Kestrel", c.Slots[2])
	s.Nil(c.Overdrive)
}

func (s *BuilderTestSuite) TestAddToNextValidSlotKeepsOtherOverdrive() {
	c := s.auto(team.New(), "Thane")
	c = s.order(c, 0, 1)
	c = s.auto(c, "Lumi")
	s.Equal([]int{0}, c.Overdrive)
}

func (s *BuilderTestSuite) TestAddToNextValidSlotWithoutRoom() {
	c := s.auto(team.New(), "Thane", "Brakka", "Gorm")

	next, err := s.builder.AddToNextValidSlot(c, "Fenrir")
	s.Require().NoError(err)
	s.Equal("Fenrir", next.Slots[3])

	next, err = s.builder.AddToNextValidSlot(c, "Lumi")
	s.Require().NoError(err)
	s.Equal("Lumi", next.Slots[3])

	c = s.auto(team.New(), "Thane", "Brakka", "Gorm")
	blocked, err := s.builder.AddToNextValidSlot(c, "Thane")
	s.NoError(err, "already placed characters are left alone")
	s.Equal(c, blocked)

	c = s.auto(team.New(), "Brakka", "Gorm", "Kestrel")
	s.Equal("Kestrel", c.Slots[2])
	full, err := s.builder.AddToNextValidSlot(c, "Thane")
	s.Require().Error(err)
	s.Equal(team.ReasonNoValidSlot, errors.GetMeta(err)["reason"])
	s.Contains(errors.GetMessage(err), "Thane")
	s.Equal(c, full)
}

func (s *BuilderTestSuite) TestAddToNextValidSlotAtCap() {
	c := s.fullRoster()
	next, err := s.builder.AddToNextValidSlot(c, "Kestrel")
	s.True(errors.IsResourceExhausted(err))
	s.Equal(c, next)
}

func (s *BuilderTestSuite) TestClear() {
	name, author := "Rush", "meur"
	faction := models.FactionWildSpirit
	c, err := s.builder.SetMetadata(s.fullRoster(), team.Metadata{Name: &name, Author: &author, Faction: &faction})
	s.Require().NoError(err)
	c, _ = s.builder.MoveToBench(c, "Kestrel", "")
	c, _ = s.builder.SetWyrmspell(c, models.WyrmspellBreach, "Flame Breath")
	c = s.order(c, 0, 1)

	kept := s.builder.Clear(c, false)
	s.Equal("Rush", kept.Name)
	s.Equal("meur", kept.Author)
	s.Equal(models.FactionWildSpirit, kept.Faction)
	s.Zero(kept.RosterCount())
	s.Nil(kept.Bench)
	s.Nil(kept.Overdrive)
	s.True(kept.Wyrmspells.IsZero())

	s.Equal(team.New(), s.builder.Clear(c, true))
}

func (s *BuilderTestSuite) TestSetMetadataValidatesEnums() {
	bad := models.ContentType("Raid")
	c := team.New()
	next, err := s.builder.SetMetadata(c, team.Metadata{ContentType: &bad})
	s.True(errors.IsInvalidArgument(err))
	s.Equal(c, next)

	_, err = s.builder.SetWyrmspell(c, models.WyrmspellCategory("Fizzle"), "x")
	s.True(errors.IsInvalidArgument(err))
}

func (s *BuilderTestSuite) TestNotesOnEmptyTargetsAreIgnored() {
	c := team.New()
	next, err := s.builder.SetSlotNote(c, 4, "nobody here")
	s.NoError(err)
	s.Equal(c, next)

	next, err = s.builder.SetBenchNote(c, "Thane", "not benched")
	s.NoError(err)
	s.Equal(c, next)
}
