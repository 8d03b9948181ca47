package tierlist

import (
	"slices"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

// Catalog resolves character names to catalog records
type Catalog interface {
	Character(name string) (models.Character, bool)
}

// Builder applies tier-list operations
type Builder struct {
	catalog Catalog
}

// NewBuilder creates a Builder backed by catalog
func NewBuilder(catalog Catalog) *Builder {
	return &Builder{catalog: catalog}
}

func (b *Builder) known(name string) error {
	if _, ok := b.catalog.Character(name); !ok {
		return errors.NotFoundf("unknown character %q", name)
	}
	return nil
}

func tierOutOfRange(i int) error {
	return errors.InvalidArgumentf("tier %d does not exist", i)
}

// PlaceInTier moves name into tier, before anchor when anchor sits in that
// tier and at the end otherwise. A character's note follows it.
func (b *Builder) PlaceInTier(c Composition, name string, tier int, anchor string) (Composition, error) {
	if !c.validTier(tier) {
		return c, tierOutOfRange(tier)
	}
	if err := b.known(name); err != nil {
		return c, err
	}
	if name == anchor {
		return c, nil
	}

	next := c.clone()
	next.remove(name)
	chars := next.Tiers[tier].Characters
	if at := slices.Index(chars, anchor); anchor != "" && at >= 0 {
		next.Tiers[tier].Characters = slices.Insert(chars, at, name)
	} else {
		next.Tiers[tier].Characters = append(chars, name)
	}
	next.normalize()
	return next, nil
}

// DropOnCharacter handles a character dropped onto a ranked character.
// Within one tier the two swap positions. Across tiers the dragged
// character takes the target's position and the target moves to the end of
// the dragged character's source tier. A character coming from the pool is
// inserted before the target.
func (b *Builder) DropOnCharacter(c Composition, name, target string) (Composition, error) {
	dstTier, dstPos := c.Locate(target)
	if dstTier < 0 {
		return c, errors.InvalidArgumentf("%s is not ranked", target)
	}
	if err := b.known(name); err != nil {
		return c, err
	}
	if name == target {
		return c, nil
	}

	srcTier, srcPos := c.Locate(name)
	if srcTier < 0 {
		return b.PlaceInTier(c, name, dstTier, target)
	}

	next := c.clone()
	if srcTier == dstTier {
		chars := next.Tiers[srcTier].Characters
		chars[srcPos], chars[dstPos] = chars[dstPos], chars[srcPos]
		return next, nil
	}
	next.Tiers[dstTier].Characters[dstPos] = name
	src := slices.Delete(next.Tiers[srcTier].Characters, srcPos, srcPos+1)
	next.Tiers[srcTier].Characters = append(src, target)
	return next, nil
}

// Unrank returns name to the pool and discards its note
func (b *Builder) Unrank(c Composition, name string) (Composition, error) {
	if !c.Ranked(name) {
		return c, nil
	}
	next := c.clone()
	next.remove(name)
	next.normalize()
	return next, nil
}

func (c Composition) checkTierName(name string, except int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.InvalidArgument("tier name cannot be empty")
	}
	if i := c.TierIndex(name); i >= 0 && i != except {
		return "", errors.AlreadyExistsf("tier %q already exists", name)
	}
	return name, nil
}

// AddTier appends an empty tier
func (b *Builder) AddTier(c Composition, name string) (Composition, error) {
	name, err := c.checkTierName(name, -1)
	if err != nil {
		return c, err
	}
	next := c.clone()
	next.Tiers = append(next.Tiers, Tier{Name: name})
	return next, nil
}

// RenameTier renames tier i. Its characters and notes stay.
func (b *Builder) RenameTier(c Composition, i int, name string) (Composition, error) {
	if !c.validTier(i) {
		return c, tierOutOfRange(i)
	}
	name, err := c.checkTierName(name, i)
	if err != nil {
		return c, err
	}
	next := c.clone()
	next.Tiers[i].Name = name
	return next, nil
}

// SetTierNote sets the note of tier i; blank clears it
func (b *Builder) SetTierNote(c Composition, i int, note string) (Composition, error) {
	if !c.validTier(i) {
		return c, tierOutOfRange(i)
	}
	next := c.clone()
	next.Tiers[i].Note = strings.TrimSpace(note)
	return next, nil
}

// MoveTier moves tier from to index to, shifting the tiers in between
func (b *Builder) MoveTier(c Composition, from, to int) (Composition, error) {
	if !c.validTier(from) {
		return c, tierOutOfRange(from)
	}
	if !c.validTier(to) {
		return c, tierOutOfRange(to)
	}
	if from == to {
		return c, nil
	}
	next := c.clone()
	t := next.Tiers[from]
	next.Tiers = slices.Delete(next.Tiers, from, from+1)
	next.Tiers = slices.Insert(next.Tiers, to, t)
	return next, nil
}

// DeleteTier removes tier i and returns its characters to the pool. The
// last remaining tier cannot be deleted.
func (b *Builder) DeleteTier(c Composition, i int) (Composition, error) {
	if !c.validTier(i) {
		return c, tierOutOfRange(i)
	}
	if len(c.Tiers) == 1 {
		return c, errors.FailedPrecondition("a tier list needs at least one tier").
			WithMeta("reason", "last_tier")
	}
	next := c.clone()
	next.Tiers = slices.Delete(next.Tiers, i, i+1)
	next.normalize()
	return next, nil
}

// SetNote sets the note of a ranked character; blank clears it. Notes on
// unranked characters are ignored.
func (b *Builder) SetNote(c Composition, name, note string) (Composition, error) {
	if !c.Ranked(name) {
		return c, nil
	}
	next := c.clone()
	next.setNote(name, strings.TrimSpace(note))
	return next, nil
}

// Metadata carries optional metadata changes; nil fields are left alone
type Metadata struct {
	Name        *string             `json:"name,omitempty"`
	Author      *string             `json:"author,omitempty"`
	Description *string             `json:"description,omitempty"`
	ContentType *models.ContentType `json:"content_type,omitempty"`
}

// SetMetadata applies metadata changes
func (b *Builder) SetMetadata(c Composition, m Metadata) (Composition, error) {
	if m.ContentType != nil && !m.ContentType.Valid() {
		return c, errors.InvalidArgumentf("unknown content type %q", *m.ContentType)
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
	return next, nil
}

// Clear unranks everyone and drops their notes. Tier names and notes stay
// unless resetMetadata is set, which also restores the default tiers.
func (b *Builder) Clear(c Composition, resetMetadata bool) Composition {
	next := New()
	if !resetMetadata {
		next = c.clone()
		for i := range next.Tiers {
			next.Tiers[i].Characters = nil
		}
		next.Notes = nil
	}
	next.LastUpdated = c.LastUpdated
	return next
}

// Validate checks every tier-list invariant
func (b *Builder) Validate(c Composition) error {
	if len(c.Tiers) == 0 {
		return errors.FailedPrecondition("a tier list needs at least one tier")
	}
	names := make(map[string]bool)
	seen := make(map[string]bool)
	for _, t := range c.Tiers {
		if strings.TrimSpace(t.Name) == "" {
			return errors.FailedPrecondition("tier name cannot be empty")
		}
		if names[t.Name] {
			return errors.FailedPreconditionf("tier %q appears more than once", t.Name)
		}
		names[t.Name] = true
		for _, name := range t.Characters {
			if seen[name] {
				return errors.FailedPreconditionf("%s is ranked more than once", name)
			}
			seen[name] = true
		}
	}
	for name := range c.Notes {
		if !seen[name] {
			return errors.FailedPreconditionf("note for unranked character %s", name)
		}
	}
	return nil
}
