package tierlist

import (
	"encoding/json"
	"math"
	"slices"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/patch"
)

// Serialize builds the canonical document. Entries follow tier order, then
// position within the tier.
func Serialize(c Composition) models.TierListDocument {
	doc := models.TierListDocument{
		Name:        c.Name,
		Author:      c.Author,
		ContentType: c.ContentType,
		Description: c.Description,
		Tiers:       make([]models.TierDefinition, 0, len(c.Tiers)),
		Entries:     []models.TierEntry{},
		LastUpdated: c.LastUpdated,
	}
	for _, t := range c.Tiers {
		doc.Tiers = append(doc.Tiers, models.TierDefinition{Name: t.Name, Note: strings.TrimSpace(t.Note)})
		for _, name := range t.Characters {
			doc.Entries = append(doc.Entries, models.TierEntry{
				CharacterName: name,
				Tier:          t.Name,
				Note:          strings.TrimSpace(c.Notes[name]),
			})
		}
	}
	return doc
}

// Marshal renders the canonical document as indented JSON
func Marshal(c Composition) ([]byte, error) {
	data, err := json.MarshalIndent(Serialize(c), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tier list")
	}
	return data, nil
}

// Paste parses raw and merges it onto current. A rejected paste leaves
// current untouched.
func (b *Builder) Paste(current Composition, raw string) (Composition, error) {
	p, err := patch.Parse(raw, patch.TierList)
	if err != nil {
		return current, err
	}
	return b.Merge(p, current)
}

// Merge applies every present, well-typed field of p onto current.
//
// A valid tiers array replaces the tier setup; characters whose tier no
// longer exists fall back to the pool. An entries array rebuilds every
// placement, and an entry naming an undeclared tier appends that tier.
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
	if v, ok := p.Number("last_updated"); ok && v >= 0 && v < math.MaxInt64 {
		next.LastUpdated = int64(v)
	}
	if items, ok := p.Array("tiers"); ok {
		if tiers := mergeTiers(items, next.Tiers); len(tiers) > 0 {
			next.Tiers = tiers
		}
	}
	if items, ok := p.Array("entries"); ok {
		b.mergeEntries(&next, items)
	}

	next.normalize()
	if err := b.Validate(next); err != nil {
		return current, errors.Wrap(err, "merged tier list is inconsistent")
	}
	return next, nil
}

// mergeTiers builds a tier setup from tier definitions, carrying over the
// characters of tiers that keep their name. Malformed and duplicate
// definitions are skipped.
func mergeTiers(items []json.RawMessage, current []Tier) []Tier {
	var tiers []Tier
	for _, item := range items {
		fields, ok := patch.AsObject(item)
		if !ok {
			continue
		}
		name, ok := patch.AsString(fields["name"])
		name = strings.TrimSpace(name)
		if !ok || name == "" || slices.ContainsFunc(tiers, func(t Tier) bool { return t.Name == name }) {
			continue
		}
		t := Tier{Name: name}
		t.Note, _ = patch.AsString(fields["note"])
		t.Note = strings.TrimSpace(t.Note)
		if i := slices.IndexFunc(current, func(t Tier) bool { return t.Name == name }); i >= 0 {
			t.Characters = slices.Clone(current[i].Characters)
		}
		tiers = append(tiers, t)
	}
	return tiers
}

func (b *Builder) mergeEntries(c *Composition, items []json.RawMessage) {
	for i := range c.Tiers {
		c.Tiers[i].Characters = nil
	}
	c.Notes = nil

	seen := make(map[string]bool)
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
		if _, known := b.catalog.Character(name); !known {
			continue
		}
		tierName, ok := patch.AsString(fields["tier"])
		tierName = strings.TrimSpace(tierName)
		if !ok || tierName == "" {
			continue
		}
		seen[name] = true

		tier := c.TierIndex(tierName)
		if tier < 0 {
			c.Tiers = append(c.Tiers, Tier{Name: tierName})
			tier = len(c.Tiers) - 1
		}
		c.Tiers[tier].Characters = append(c.Tiers[tier].Characters, name)
		if note, ok := patch.AsString(fields["note"]); ok {
			c.setNote(name, strings.TrimSpace(note))
		}
	}
}
