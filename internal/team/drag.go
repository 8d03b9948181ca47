package team

import (
	"strconv"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
)

// Drag and drop identifiers. Draggable characters are addressed by where
// they sit; drop targets are slots, the bench (or a benched character used
// as an insertion anchor) and the available pool.
const (
	BenchID     = "bench"
	AvailableID = "available"

	slotPrefix      = "slot-"
	benchPrefix     = "bench:"
	availablePrefix = "available:"
)

// SlotID identifies a grid slot
func SlotID(slot int) string { return slotPrefix + strconv.Itoa(slot) }

// BenchItemID identifies a benched character
func BenchItemID(name string) string { return benchPrefix + name }

// AvailableItemID identifies a character in the available pool
func AvailableItemID(name string) string { return availablePrefix + name }

// DragEvent is a finished drag gesture. An empty OverID means the drag was
// cancelled or dropped outside any target.
type DragEvent struct {
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

// Destination says where a move sends a character
type Destination int

const (
	ToSlot Destination = iota + 1
	ToBench
	ToAvailable
)

// Move is the discrete command a drag gesture resolves to
type Move struct {
	Character string
	To        Destination
	Slot      int
	Anchor    string
}

// ResolveDrop turns a drag event into a move. ok is false for a cancelled
// drag, which must not change anything.
func ResolveDrop(c Composition, ev DragEvent) (m Move, ok bool, err error) {
	if ev.OverID == "" {
		return Move{}, false, nil
	}

	name, err := draggedCharacter(c, ev.ActiveID)
	if err != nil {
		return Move{}, false, err
	}
	m.Character = name

	switch over := ev.OverID; {
	case strings.HasPrefix(over, slotPrefix):
		slot, err := parseSlot(over)
		if err != nil {
			return Move{}, false, err
		}
		m.To, m.Slot = ToSlot, slot
	case over == BenchID:
		m.To = ToBench
	case strings.HasPrefix(over, benchPrefix):
		m.To, m.Anchor = ToBench, strings.TrimPrefix(over, benchPrefix)
	case over == AvailableID, strings.HasPrefix(over, availablePrefix):
		m.To = ToAvailable
	default:
		return Move{}, false, errors.InvalidArgumentf("unknown drop target %q", over)
	}
	return m, true, nil
}

func draggedCharacter(c Composition, activeID string) (string, error) {
	switch {
	case strings.HasPrefix(activeID, slotPrefix):
		slot, err := parseSlot(activeID)
		if err != nil {
			return "", err
		}
		if c.Slots[slot] == "" {
			return "", errors.InvalidArgumentf("slot %d is empty", slot)
		}
		return c.Slots[slot], nil
	case strings.HasPrefix(activeID, benchPrefix):
		name := strings.TrimPrefix(activeID, benchPrefix)
		if !c.OnBench(name) {
			return "", errors.InvalidArgumentf("%s is not on the bench", name)
		}
		return name, nil
	case strings.HasPrefix(activeID, availablePrefix):
		return strings.TrimPrefix(activeID, availablePrefix), nil
	}
	return "", errors.InvalidArgumentf("unknown drag source %q", activeID)
}

func parseSlot(id string) (int, error) {
	slot, err := strconv.Atoi(strings.TrimPrefix(id, slotPrefix))
	if err != nil || !validSlot(slot) {
		return 0, errors.InvalidArgumentf("invalid slot id %q", id)
	}
	return slot, nil
}

// Apply runs a move against c
func (b *Builder) Apply(c Composition, m Move) (Composition, error) {
	switch m.To {
	case ToSlot:
		return b.PlaceOnSlot(c, m.Character, m.Slot)
	case ToBench:
		return b.MoveToBench(c, m.Character, m.Anchor)
	case ToAvailable:
		return b.MoveToAvailable(c, m.Character)
	}
	return c, errors.InvalidArgumentf("unknown move destination %d", m.To)
}

// Drop resolves and applies a drag event
func (b *Builder) Drop(c Composition, ev DragEvent) (Composition, error) {
	m, ok, err := ResolveDrop(c, ev)
	if err != nil || !ok {
		return c, err
	}
	return b.Apply(c, m)
}
