package team

import (
	"encoding/json"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/patch"
)

var wyrmspellFields = map[string]models.WyrmspellCategory{
	"breach":       models.WyrmspellBreach,
	"refuge":       models.WyrmspellRefuge,
	"wildcry":      models.WyrmspellWildcry,
	"dragons_call": models.WyrmspellDragonsCall,
}

// Serialize builds the canonical document. Members with an overdrive rank
// come first in sequence order, numbered from 1; the rest follow in
// row-major order with a null rank.
func Serialize(c Composition) models.TeamDocument {
	doc := models.TeamDocument{
		Name:        c.Name,
		Author:      c.Author,
		ContentType: c.ContentType,
		Description: c.Description,
		Faction:     c.Faction,
		Members:     []models.TeamMember{},
		LastUpdated: c.LastUpdated,
	}

	var listed [SlotCount]bool
	rank := 0
	for _, slot := range c.Overdrive {
		if rank == MaxOverdrive {
			break
		}
		if !validSlot(slot) || c.Slots[slot] == "" || listed[slot] {
			continue
		}
		rank++
		order := rank
		doc.Members = append(doc.Members, member(c, slot, &order))
		listed[slot] = true
	}
	for slot, name := range c.Slots {
		if name != "" && !listed[slot] {
			doc.Members = append(doc.Members, member(c, slot, nil))
		}
	}

	if len(c.Bench) > 0 {
		doc.Bench = slices.Clone(c.Bench)
		for _, name := range c.Bench {
			if note := strings.TrimSpace(c.BenchNotes[name]); note != "" {
				if doc.BenchNotes == nil {
					doc.BenchNotes = make(map[string]string)
				}
				doc.BenchNotes[name] = note
			}
		}
	}
	if !c.Wyrmspells.IsZero() {
		spells := c.Wyrmspells
		doc.Wyrmspells = &spells
	}
	return doc
}

func member(c Composition, slot int, order *int) models.TeamMember {
	return models.TeamMember{
		CharacterName:  c.Slots[slot],
		OverdriveOrder: order,
		Position:       &models.Position{Row: int(SlotRow(slot)), Col: SlotCol(slot)},
		Note:           strings.TrimSpace(c.SlotNotes[slot]),
	}
}

// Marshal renders the canonical document as indented JSON
func Marshal(c Composition) ([]byte, error) {
	data, err := json.MarshalIndent(Serialize(c), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal team")
	}
	return data, nil
}

// Paste parses raw and merges it onto current. A rejected paste leaves
// current untouched.
func (b *Builder) Paste(current Composition, raw string) (Composition, error) {
	p, err := patch.Parse(raw, patch.Team)
	if err != nil {
		return current, err
	}
	return b.Merge(p, current)
}

// Merge applies every present, well-typed field of p onto current. Absent
// or malformed fields keep their current value.
func (b *Builder) Merge(p patch.Patch, current Composition) (Composition, error) {
	next := current.clone()

	if v, ok := p.String("name"); ok {
		next.Name = v
	}
	if v, ok := p.String("author"); ok {
		next.Author = v
	}
	if v, ok := p.String("description"); ok {
		next.Description = v
	}
	if v, ok := p.String("content_type"); ok && models.ContentType(v).Valid() {
		next.ContentType = models.ContentType(v)
	}
	if v, ok := p.String("faction"); ok && (v == "" || models.Faction(v).Valid()) {
		next.Faction = models.Faction(v)
	}
	if v, ok := p.Number("last_updated"); ok && v >= 0 && v < math.MaxInt64 {
		next.LastUpdated = int64(v)
	}
	if spells, ok := p.Object("wyrmspells"); ok {
		for field, category := range wyrmspellFields {
			if v, ok := patch.AsString(spells[field]); ok {
				next.Wyrmspells = next.Wyrmspells.With(category, strings.TrimSpace(v))
			}
		}
	}
	if items, ok := p.Array("members"); ok {
		b.mergeMembers(&next, items)
	}
	if names, ok := patch.AsStrings(p.Fields["bench"]); ok {
		next.Bench = b.knownUnique(names)
	}
	if notes, ok := patch.AsStringMap(p.Fields["bench_notes"]); ok {
		next.BenchNotes = nil
		for name, note := range notes {
			next.setBenchNote(name, strings.TrimSpace(note))
		}
	}

	next.Bench = slices.DeleteFunc(next.Bench, func(name string) bool {
		return next.SlotOf(name) >= 0
	})
	next.normalize()
	if err := b.Validate(next); err != nil {
		return current, errors.Wrap(err, "merged team is inconsistent")
	}
	return next, nil
}

type incoming struct {
	name     string
	class    models.CharacterClass
	note     string
	slot     int
	order    float64
	hasOrder bool
}

type ranked struct {
	slot  int
	order float64
}

// mergeMembers rebuilds the grid from member entries. Members with a legal
// position are placed first, first claim on a slot wins; the rest fill the
// first legal empty slot in input order.
func (b *Builder) mergeMembers(c *Composition, items []json.RawMessage) {
	seen := make(map[string]bool)
	var positioned, floating []incoming
	for _, item := range items {
		fields, ok := patch.AsObject(item)
		if !ok {
			continue
		}
		name, ok := patch.AsString(fields["character_name"])
		name = strings.TrimSpace(name)
		if !ok || name == "" || seen[name] {
			continue
		}
		ch, ok := b.catalog.Character(name)
		if !ok {
			continue
		}
		seen[name] = true

		m := incoming{name: name, class: ch.CharacterClass, slot: -1}
		m.note, _ = patch.AsString(fields["note"])
		m.note = strings.TrimSpace(m.note)
		m.order, m.hasOrder = patch.AsNumber(fields["overdrive_order"])
		if slot, ok := position(fields["position"]); ok && CanOccupy(ch.CharacterClass, SlotRow(slot)) {
			m.slot = slot
			positioned = append(positioned, m)
		} else {
			floating = append(floating, m)
		}
	}

	grid := Composition{}
	var ranks []ranked
	place := func(m incoming, slot int) {
		grid.Slots[slot] = m.name
		grid.SlotNotes[slot] = m.note
		if m.hasOrder {
			ranks = append(ranks, ranked{slot: slot, order: m.order})
		}
	}
	for _, m := range positioned {
		if grid.RosterCount() >= MaxRosterSize {
			break
		}
		if grid.Slots[m.slot] != "" {
			continue
		}
		place(m, m.slot)
	}
	for _, m := range floating {
		if grid.RosterCount() >= MaxRosterSize {
			break
		}
		if slot := grid.firstEmptySlot(m.class); slot >= 0 {
			place(m, slot)
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].order < ranks[j].order })
	var sequence []int
	for _, r := range ranks {
		if len(sequence) == MaxOverdrive {
			break
		}
		sequence = append(sequence, r.slot)
	}

	c.Slots = grid.Slots
	c.SlotNotes = grid.SlotNotes
	c.Overdrive = sequence
}

func position(raw json.RawMessage) (int, bool) {
	fields, ok := patch.AsObject(raw)
	if !ok {
		return 0, false
	}
	row, okRow := patch.AsNumber(fields["row"])
	col, okCol := patch.AsNumber(fields["col"])
	if !okRow || !okCol || row != math.Trunc(row) || col != math.Trunc(col) {
		return 0, false
	}
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0, false
	}
	return SlotIndex(Row(row), int(col)), true
}

func (b *Builder) knownUnique(names []string) []string {
	var out []string
	for _, name := range names {
		if name == "" || slices.Contains(out, name) {
			continue
		}
		if _, ok := b.catalog.Character(name); ok {
			out = append(out, name)
		}
	}
	return out
}
