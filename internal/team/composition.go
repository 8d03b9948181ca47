// Package team holds the team-builder state model: a 3x3 placement grid, a
// bench, per-slot notes, the overdrive sequence and team metadata.
//
// A Composition is a value. Every operation on a Builder takes the current
// Composition and returns a new one, leaving the input untouched; a rejected
// operation returns the input unchanged together with an error.
package team

import (
	"slices"

	"github.com/meur/dtwiki/internal/models"
)

const (
	// Rows and Cols size the placement grid
	Rows = 3
	Cols = 3
	// SlotCount is the number of grid slots
	SlotCount = Rows * Cols
	// MaxRosterSize caps distinct characters on the grid. The bench is uncapped.
	MaxRosterSize = 6
	// MaxOverdrive caps the overdrive sequence
	MaxOverdrive = MaxRosterSize
)

// SlotIndex returns the slot index for a grid position
func SlotIndex(row Row, col int) int {
	return int(row)*Cols + col
}

// SlotRow returns the row a slot index belongs to
func SlotRow(slot int) Row {
	return Row(slot / Cols)
}

// SlotCol returns the column a slot index belongs to
func SlotCol(slot int) int {
	return slot % Cols
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < SlotCount
}

// Composition is the team being built
type Composition struct {
	Name        string
	Author      string
	Description string
	ContentType models.ContentType
	Faction     models.Faction

	// Slots holds a character name per slot, "" when empty
	Slots     [SlotCount]string
	SlotNotes [SlotCount]string
	// Overdrive lists slot indices in priority order
	Overdrive  []int
	Bench      []string
	BenchNotes map[string]string
	Wyrmspells models.Wyrmspells

	LastUpdated int64
}

// New returns an empty composition with default metadata
func New() Composition {
	return Composition{ContentType: models.ContentAll}
}

// clone deep-copies the slices and maps so the copy can be mutated freely
func (c Composition) clone() Composition {
	out := c
	out.Overdrive = slices.Clone(c.Overdrive)
	out.Bench = slices.Clone(c.Bench)
	if c.BenchNotes != nil {
		out.BenchNotes = make(map[string]string, len(c.BenchNotes))
		for k, v := range c.BenchNotes {
			out.BenchNotes[k] = v
		}
	}
	return out
}

// normalize prunes dangling overdrive entries and stale bench notes, and
// collapses empty collections to nil so equal states compare equal.
func (c *Composition) normalize() {
	seq := c.Overdrive[:0:0]
	for _, slot := range c.Overdrive {
		if validSlot(slot) && c.Slots[slot] != "" && !slices.Contains(seq, slot) {
			seq = append(seq, slot)
		}
	}
	if len(seq) > MaxOverdrive {
		seq = seq[:MaxOverdrive]
	}
	c.Overdrive = nil
	if len(seq) > 0 {
		c.Overdrive = seq
	}

	if len(c.Bench) == 0 {
		c.Bench = nil
	}
	for name, note := range c.BenchNotes {
		if note == "" || !slices.Contains(c.Bench, name) {
			delete(c.BenchNotes, name)
		}
	}
	if len(c.BenchNotes) == 0 {
		c.BenchNotes = nil
	}
	for i := range c.Slots {
		if c.Slots[i] == "" {
			c.SlotNotes[i] = ""
		}
	}
}

// RosterCount returns the number of occupied slots
func (c Composition) RosterCount() int {
	n := 0
	for _, name := range c.Slots {
		if name != "" {
			n++
		}
	}
	return n
}

// SlotOf returns the slot holding name, or -1
func (c Composition) SlotOf(name string) int {
	if name == "" {
		return -1
	}
	for i, occupant := range c.Slots {
		if occupant == name {
			return i
		}
	}
	return -1
}

// OnBench reports whether name is on the bench
func (c Composition) OnBench(name string) bool {
	return slices.Contains(c.Bench, name)
}

// OverdriveRank returns the 1-based overdrive rank of a slot, or 0
func (c Composition) OverdriveRank(slot int) int {
	return slices.Index(c.Overdrive, slot) + 1
}

// Roster returns the occupied slot names in row-major order
func (c Composition) Roster() []string {
	var names []string
	for _, name := range c.Slots {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (c *Composition) dropOverdrive(slot int) {
	c.Overdrive = slices.DeleteFunc(c.Overdrive, func(s int) bool { return s == slot })
}

func (c *Composition) removeFromBench(name string) (note string) {
	note = c.BenchNotes[name]
	c.Bench = slices.DeleteFunc(c.Bench, func(n string) bool { return n == name })
	delete(c.BenchNotes, name)
	return note
}

func (c *Composition) setBenchNote(name, note string) {
	if note == "" {
		delete(c.BenchNotes, name)
		return
	}
	if c.BenchNotes == nil {
		c.BenchNotes = make(map[string]string)
	}
	c.BenchNotes[name] = note
}

// firstEmptySlot scans the legal rows of class in order, columns ascending
func (c Composition) firstEmptySlot(class models.CharacterClass) int {
	for _, row := range LegalRows(class) {
		for col := 0; col < Cols; col++ {
			slot := SlotIndex(row, col)
			if c.Slots[slot] == "" {
				return slot
			}
		}
	}
	return -1
}
