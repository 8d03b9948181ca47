package team

import (
	"math"
	"slices"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

// Warning reasons attached to rejected operations under the "reason" meta key
const (
	ReasonInvalidPlacement = "invalid_placement"
	ReasonRosterFull       = "roster_full"
	ReasonNoValidSlot      = "no_valid_slot"
)

// Catalog resolves character names to catalog records
type Catalog interface {
	Character(name string) (models.Character, bool)
}

// Builder applies composition operations, validating them against the catalog
type Builder struct {
	catalog Catalog
}

// NewBuilder creates a Builder backed by catalog
func NewBuilder(catalog Catalog) *Builder {
	return &Builder{catalog: catalog}
}

func (b *Builder) lookup(name string) (models.Character, error) {
	ch, ok := b.catalog.Character(name)
	if !ok {
		return models.Character{}, errors.NotFoundf("unknown character %q", name)
	}
	return ch, nil
}

// classOf returns "" for characters missing from the catalog, which places
// them under the permissive default.
func (b *Builder) classOf(name string) models.CharacterClass {
	ch, _ := b.catalog.Character(name)
	return ch.CharacterClass
}

func invalidPlacement(name string, class models.CharacterClass, row Row) error {
	return errors.FailedPreconditionf("%s is a %s and cannot be placed in %s", name, class, row.Label()).
		WithMeta("reason", ReasonInvalidPlacement).
		WithMeta("character", name).
		WithMeta("class", string(class)).
		WithMeta("row", row.Label())
}

func rosterFull(name string) error {
	return errors.ResourceExhaustedf("cannot add %s: the team already has %d members", name, MaxRosterSize).
		WithMeta("reason", ReasonRosterFull).
		WithMeta("character", name)
}

func noValidSlot(name string, class models.CharacterClass) error {
	return errors.FailedPreconditionf("no valid slot for %s (%s)", name, class).
		WithMeta("reason", ReasonNoValidSlot).
		WithMeta("character", name).
		WithMeta("class", string(class))
}

// PlaceOnSlot moves a character from the available pool, the bench or
// another slot onto target.
//
// Dropping onto an occupied slot relocates the occupant to its first legal
// empty slot while the roster has room. With a full roster the occupant
// leaves the grid and is not benched. Slot to slot moves swap the two
// characters and carry their overdrive ranks.
func (b *Builder) PlaceOnSlot(c Composition, name string, target int) (Composition, error) {
	if !validSlot(target) {
		return c, errors.InvalidArgumentf("slot %d is out of range", target)
	}
	ch, err := b.lookup(name)
	if err != nil {
		return c, err
	}
	row := SlotRow(target)
	if !CanOccupy(ch.CharacterClass, row) {
		return c, invalidPlacement(name, ch.CharacterClass, row)
	}

	src := c.SlotOf(name)
	if src == target {
		return c, nil
	}
	if src >= 0 {
		return b.swapSlots(c, src, target)
	}

	occupant := c.Slots[target]
	next := c.clone()
	note := next.removeFromBench(name)
	switch {
	case occupant == "":
		if c.RosterCount() >= MaxRosterSize {
			return c, rosterFull(name)
		}
	case c.RosterCount() >= MaxRosterSize:
		next.dropOverdrive(target)
	default:
		dest := next.firstEmptySlot(b.classOf(occupant))
		if dest < 0 {
			return c, nil
		}
		next.Slots[dest] = occupant
		next.SlotNotes[dest] = c.SlotNotes[target]
		next.dropOverdrive(target)
	}
	next.Slots[target] = name
	next.SlotNotes[target] = note
	next.normalize()
	return next, nil
}

func (b *Builder) swapSlots(c Composition, src, target int) (Composition, error) {
	occupant := c.Slots[target]
	if occupant != "" {
		class := b.classOf(occupant)
		if !CanOccupy(class, SlotRow(src)) {
			return c, invalidPlacement(occupant, class, SlotRow(src))
		}
	}

	next := c.clone()
	next.Slots[src], next.Slots[target] = c.Slots[target], c.Slots[src]
	next.SlotNotes[src], next.SlotNotes[target] = c.SlotNotes[target], c.SlotNotes[src]
	for i, slot := range next.Overdrive {
		switch slot {
		case src:
			next.Overdrive[i] = target
		case target:
			next.Overdrive[i] = src
		}
	}
	next.normalize()
	return next, nil
}

// MoveToBench takes a character off the grid (or out of the pool) and puts
// it on the bench before anchor, or at the end when anchor is not benched.
// Moving a benched character reorders the bench.
func (b *Builder) MoveToBench(c Composition, name, anchor string) (Composition, error) {
	if _, err := b.lookup(name); err != nil {
		return c, err
	}
	if anchor == name {
		return c, nil
	}

	next := c.clone()
	var note string
	if slot := c.SlotOf(name); slot >= 0 {
		note = next.SlotNotes[slot]
		next.Slots[slot] = ""
		next.SlotNotes[slot] = ""
		next.dropOverdrive(slot)
	} else if c.OnBench(name) {
		note = next.removeFromBench(name)
	}

	if at := slices.Index(next.Bench, anchor); anchor != "" && at >= 0 {
		next.Bench = slices.Insert(next.Bench, at, name)
	} else {
		next.Bench = append(next.Bench, name)
	}
	next.setBenchNote(name, note)
	next.normalize()
	return next, nil
}

// MoveToAvailable removes a character from the composition entirely and
// discards its notes.
func (b *Builder) MoveToAvailable(c Composition, name string) (Composition, error) {
	slot := c.SlotOf(name)
	if slot < 0 && !c.OnBench(name) {
		return c, nil
	}

	next := c.clone()
	if slot >= 0 {
		next.Slots[slot] = ""
		next.SlotNotes[slot] = ""
		next.dropOverdrive(slot)
	}
	next.removeFromBench(name)
	next.normalize()
	return next, nil
}

// SetOverdriveOrder moves an occupied slot to an absolute 1-based rank in
// the overdrive sequence, or removes it when order is nil. The rank is
// rounded and clamped to [1, min(MaxOverdrive, roster size)].
func (b *Builder) SetOverdriveOrder(c Composition, slot int, order *float64) (Composition, error) {
	if !validSlot(slot) {
		return c, errors.InvalidArgumentf("slot %d is out of range", slot)
	}
	if order != nil && (math.IsNaN(*order) || math.IsInf(*order, 0)) {
		return c, errors.InvalidArgument("overdrive order must be a finite number")
	}
	if c.Slots[slot] == "" {
		return c, nil
	}

	next := c.clone()
	next.dropOverdrive(slot)
	if order != nil {
		limit := min(MaxOverdrive, next.RosterCount())
		// clamp before converting; huge orders overflow int
		rank := int(math.Min(math.Max(math.Round(*order), 1), float64(limit)))
		pos := min(rank-1, len(next.Overdrive))
		next.Overdrive = slices.Insert(next.Overdrive, pos, slot)
	}
	next.normalize()
	return next, nil
}

// AddToNextValidSlot places a character on the first empty slot its class
// allows, scanning legal rows in order and columns ascending.
func (b *Builder) AddToNextValidSlot(c Composition, name string) (Composition, error) {
	ch, err := b.lookup(name)
	if err != nil {
		return c, err
	}
	if c.SlotOf(name) >= 0 {
		return c, nil
	}
	if c.RosterCount() >= MaxRosterSize {
		return c, rosterFull(name)
	}
	slot := c.firstEmptySlot(ch.CharacterClass)
	if slot < 0 {
		return c, noValidSlot(name, ch.CharacterClass)
	}

	next := c.clone()
	note := next.removeFromBench(name)
	next.Slots[slot] = name
	next.SlotNotes[slot] = note
	next.normalize()
	return next, nil
}

// SetSlotNote sets the note of an occupied slot
func (b *Builder) SetSlotNote(c Composition, slot int, note string) (Composition, error) {
	if !validSlot(slot) {
		return c, errors.InvalidArgumentf("slot %d is out of range", slot)
	}
	if c.Slots[slot] == "" {
		return c, nil
	}
	next := c.clone()
	next.SlotNotes[slot] = strings.TrimSpace(note)
	return next, nil
}

// SetBenchNote sets the note of a benched character
func (b *Builder) SetBenchNote(c Composition, name, note string) (Composition, error) {
	if !c.OnBench(name) {
		return c, nil
	}
	next := c.clone()
	next.setBenchNote(name, strings.TrimSpace(note))
	next.normalize()
	return next, nil
}

// Metadata carries optional metadata changes; nil fields are left alone
type Metadata struct {
	Name        *string             `json:"name,omitempty"`
	Author      *string             `json:"author,omitempty"`
	Description *string             `json:"description,omitempty"`
	ContentType *models.ContentType `json:"content_type,omitempty"`
	Faction     *models.Faction     `json:"faction,omitempty"`
}

// SetMetadata applies metadata changes
func (b *Builder) SetMetadata(c Composition, m Metadata) (Composition, error) {
	if m.ContentType != nil && !m.ContentType.Valid() {
		return c, errors.InvalidArgumentf("unknown content type %q", *m.ContentType)
	}
	if m.Faction != nil && *m.Faction != "" && !m.Faction.Valid() {
		return c, errors.InvalidArgumentf("unknown faction %q", *m.Faction)
	}

	next := c.clone()
	if m.Name != nil {
		next.Name = *m.Name
	}
	if m.Author != nil {
		next.Author = *m.Author
	}
	if m.Description != nil {
		next.Description = *m.Description
	}
	if m.ContentType != nil {
		next.ContentType = *m.ContentType
	}
	if m.Faction != nil {
		next.Faction = *m.Faction
	}
	return next, nil
}

// SetWyrmspell selects a wyrmspell for a category; an empty name clears it
func (b *Builder) SetWyrmspell(c Composition, category models.WyrmspellCategory, name string) (Composition, error) {
	if !slices.Contains(models.WyrmspellCategories(), category) {
		return c, errors.InvalidArgumentf("unknown wyrmspell category %q", category)
	}
	next := c.clone()
	next.Wyrmspells = next.Wyrmspells.With(category, strings.TrimSpace(name))
	return next, nil
}

// Clear empties the grid, bench, notes, overdrive sequence and wyrmspells.
// Metadata survives unless resetMetadata is set.
func (b *Builder) Clear(c Composition, resetMetadata bool) Composition {
	next := New()
	if !resetMetadata {
		next.Name = c.Name
		next.Author = c.Author
		next.Description = c.Description
		next.ContentType = c.ContentType
		next.Faction = c.Faction
	}
	next.LastUpdated = c.LastUpdated
	return next
}

// Validate checks every composition invariant
func (b *Builder) Validate(c Composition) error {
	seen := make(map[string]bool)
	for slot, name := range c.Slots {
		if name == "" {
			continue
		}
		if seen[name] {
			return errors.FailedPreconditionf("%s occupies more than one slot", name)
		}
		seen[name] = true
		class := b.classOf(name)
		if !CanOccupy(class, SlotRow(slot)) {
			return invalidPlacement(name, class, SlotRow(slot))
		}
	}
	if len(seen) > MaxRosterSize {
		return errors.FailedPreconditionf("roster has %d members, the limit is %d", len(seen), MaxRosterSize)
	}

	benched := make(map[string]bool)
	for _, name := range c.Bench {
		if seen[name] {
			return errors.FailedPreconditionf("%s is both placed and benched", name)
		}
		if benched[name] {
			return errors.FailedPreconditionf("%s is benched twice", name)
		}
		benched[name] = true
	}

	if len(c.Overdrive) > MaxOverdrive {
		return errors.FailedPreconditionf("overdrive sequence has %d entries", len(c.Overdrive))
	}
	for _, slot := range c.Overdrive {
		if !validSlot(slot) || c.Slots[slot] == "" {
			return errors.FailedPreconditionf("overdrive sequence references empty slot %d", slot)
		}
	}
	return nil
}
