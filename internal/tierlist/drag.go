package tierlist

import (
	"strconv"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
)

// Drag and drop identifiers. Tiers are drop containers, ranked characters
// double as drop targets and the pool takes characters back.
const (
	PoolID = "pool"

	tierPrefix = "tier-"
	itemPrefix = "ranked:"
	poolPrefix = "pool:"
)

// TierID identifies a tier container
func TierID(tier int) string { return tierPrefix + strconv.Itoa(tier) }

// RankedItemID identifies a character placed in a tier
func RankedItemID(name string) string { return itemPrefix + name }

// PoolItemID identifies a character in the unranked pool
func PoolItemID(name string) string { return poolPrefix + name }

// DragEvent is a finished drag gesture. An empty OverID means the drag was
// cancelled.
type DragEvent struct {
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

// Drop resolves and applies a drag event
func (b *Builder) Drop(c Composition, ev DragEvent) (Composition, error) {
	if ev.OverID == "" {
		return c, nil
	}

	var name string
	switch id := ev.ActiveID; {
	case strings.HasPrefix(id, itemPrefix):
		name = strings.TrimPrefix(id, itemPrefix)
		if !c.Ranked(name) {
			return c, errors.InvalidArgumentf("%s is not ranked", name)
		}
	case strings.HasPrefix(id, poolPrefix):
		name = strings.TrimPrefix(id, poolPrefix)
	default:
		return c, errors.InvalidArgumentf("unknown drag source %q", id)
	}

	switch over := ev.OverID; {
	case strings.HasPrefix(over, tierPrefix):
		tier, err := strconv.Atoi(strings.TrimPrefix(over, tierPrefix))
		if err != nil || !c.validTier(tier) {
			return c, errors.InvalidArgumentf("invalid tier id %q", over)
		}
		return b.PlaceInTier(c, name, tier, "")
	case strings.HasPrefix(over, itemPrefix):
		return b.DropOnCharacter(c, name, strings.TrimPrefix(over, itemPrefix))
	case over == PoolID, strings.HasPrefix(over, poolPrefix):
		return b.Unrank(c, name)
	}
	return c, errors.InvalidArgumentf("unknown drop target %q", ev.OverID)
}
