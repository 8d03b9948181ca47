// Package tierlist holds the tier-list builder state model: an ordered,
// user-extensible list of named tiers, each an ordered list of characters,
// with per-character and per-tier notes.
//
// Like team.Composition, a Composition is a value; Builder operations return
// a new one and leave the input untouched.
package tierlist

import (
	"slices"

	"github.com/meur/dtwiki/internal/models"
)

// Tier is one named row of the list
type Tier struct {
	Name       string
	Note       string
	Characters []string
}

// Composition is the tier list being built
type Composition struct {
	Name        string
	Author      string
	Description string
	ContentType models.ContentType

	Tiers []Tier
	// Notes holds a note per ranked character
	Notes map[string]string

	LastUpdated int64
}

// New returns an empty tier list with the default tiers
func New() Composition {
	c := Composition{ContentType: models.ContentAll}
	for _, name := range models.DefaultTierNames() {
		c.Tiers = append(c.Tiers, Tier{Name: name})
	}
	return c
}

func (c Composition) clone() Composition {
	out := c
	out.Tiers = make([]Tier, len(c.Tiers))
	for i, t := range c.Tiers {
		t.Characters = slices.Clone(t.Characters)
		out.Tiers[i] = t
	}
	if c.Notes != nil {
		out.Notes = make(map[string]string, len(c.Notes))
		for k, v := range c.Notes {
			out.Notes[k] = v
		}
	}
	return out
}

// Locate returns the tier and position of a ranked character, or -1, -1
func (c Composition) Locate(name string) (tier, pos int) {
	for i, t := range c.Tiers {
		if j := slices.Index(t.Characters, name); j >= 0 {
			return i, j
		}
	}
	return -1, -1
}

// Ranked reports whether name sits in any tier
func (c Composition) Ranked(name string) bool {
	tier, _ := c.Locate(name)
	return tier >= 0
}

// RankedCount returns how many characters are placed in tiers
func (c Composition) RankedCount() int {
	n := 0
	for _, t := range c.Tiers {
		n += len(t.Characters)
	}
	return n
}

// TierIndex returns the index of the tier called name, or -1
func (c Composition) TierIndex(name string) int {
	return slices.IndexFunc(c.Tiers, func(t Tier) bool { return t.Name == name })
}

// Unranked returns the members of pool that are not in any tier, in pool order
func (c Composition) Unranked(pool []string) []string {
	out := []string{}
	for _, name := range pool {
		if !c.Ranked(name) {
			out = append(out, name)
		}
	}
	return out
}

func (c Composition) validTier(i int) bool {
	return i >= 0 && i < len(c.Tiers)
}

// remove takes name out of its tier and returns where it was
func (c *Composition) remove(name string) (tier, pos int) {
	tier, pos = c.Locate(name)
	if tier >= 0 {
		c.Tiers[tier].Characters = slices.Delete(c.Tiers[tier].Characters, pos, pos+1)
	}
	return tier, pos
}

func (c *Composition) setNote(name, note string) {
	if note == "" {
		delete(c.Notes, name)
	} else {
		if c.Notes == nil {
			c.Notes = make(map[string]string)
		}
		c.Notes[name] = note
	}
	if len(c.Notes) == 0 {
		c.Notes = nil
	}
}

// normalize drops notes of unranked characters and nils empty collections
func (c *Composition) normalize() {
	for name := range c.Notes {
		if !c.Ranked(name) {
			delete(c.Notes, name)
		}
	}
	if len(c.Notes) == 0 {
		c.Notes = nil
	}
	for i := range c.Tiers {
		if len(c.Tiers[i].Characters) == 0 {
			c.Tiers[i].Characters = nil
		}
	}
}
