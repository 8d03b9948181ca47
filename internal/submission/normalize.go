package submission

import (
	"github.com/meur/dtwiki/internal/errors"
)

// The entry types below fix the key order written to the data files.

type codeEntry struct {
	Code   any `json:"code"`
	Active any `json:"active"`
}

type wyrmspellEntry struct {
	Name   any `json:"name"`
	Effect any `json:"effect"`
	Type   any `json:"type"`
}

type statusEffectEntry struct {
	Name   any `json:"name"`
	Type   any `json:"type"`
	Effect any `json:"effect"`
	Remark any `json:"remark"`
}

type linkEntry struct {
	Icon        any `json:"icon"`
	Application any `json:"application"`
	Name        any `json:"name"`
	Description any `json:"description"`
	Link        any `json:"link"`
}

type characterEntry struct {
	Name           any `json:"name"`
	Title          any `json:"title"`
	Quality        any `json:"quality"`
	CharacterClass any `json:"character_class"`
	Factions       any `json:"factions"`
	IsGlobal       any `json:"is_global"`
	Subclasses     any `json:"subclasses"`
	Height         any `json:"height"`
	Weight         any `json:"weight"`
	Origin         any `json:"origin"`
	Lore           any `json:"lore"`
	Quote          any `json:"quote"`
	Talent         any `json:"talent"`
	Skills         any `json:"skills"`
	NoblePhantasm  any `json:"noble_phantasm"`
}

type tierListEntry struct {
	Name        any              `json:"name"`
	Author      any              `json:"author"`
	ContentType any              `json:"content_type"`
	Description any              `json:"description"`
	Entries     []tierEntryEntry `json:"entries"`
}

type tierEntryEntry struct {
	CharacterName any `json:"character_name"`
	Tier          any `json:"tier"`
	Note          any `json:"note"`
}

type teamEntry struct {
	Name        any               `json:"name"`
	Author      any               `json:"author"`
	ContentType any               `json:"content_type"`
	Description any               `json:"description"`
	Faction     any               `json:"faction"`
	Members     []teamMemberEntry `json:"members"`
	Wyrmspells  wyrmspellsEntry   `json:"wyrmspells"`
}

type teamMemberEntry struct {
	CharacterName  any `json:"character_name"`
	OverdriveOrder any `json:"overdrive_order"`
	Substitutes    any `json:"substitutes"`
	Note           any `json:"note"`
}

type wyrmspellsEntry struct {
	Breach      any `json:"breach"`
	Refuge      any `json:"refuge"`
	Wildcry     any `json:"wildcry"`
	DragonsCall any `json:"dragons_call"`
}

// get returns data[key], or def when the key is absent
func get(data map[string]any, key string, def any) any {
	if v, ok := data[key]; ok {
		return v
	}
	return def
}

func objects(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		if obj == nil {
			obj = map[string]any{}
		}
		out = append(out, obj)
	}
	return out
}

// Normalize reshapes suggestion data into the entry written to the data file
func Normalize(label Label, data map[string]any) (any, error) {
	switch label {
	case LabelCodes:
		return codeEntry{Code: data["code"], Active: get(data, "active", true)}, nil

	case LabelWyrmspell:
		return wyrmspellEntry{
			Name:   data["name"],
			Effect: get(data, "effect", ""),
			Type:   get(data, "type", ""),
		}, nil

	case LabelStatusEffect:
		return statusEffectEntry{
			Name:   data["name"],
			Type:   get(data, "type", ""),
			Effect: get(data, "effect", ""),
			Remark: get(data, "remark", ""),
		}, nil

	case LabelLinks:
		return linkEntry{
			Icon:        get(data, "icon", ""),
			Application: get(data, "application", ""),
			Name:        data["name"],
			Description: get(data, "description", ""),
			Link:        data["link"],
		}, nil

	case LabelCharacter:
		return characterEntry{
			Name:           data["name"],
			Title:          get(data, "title", ""),
			Quality:        get(data, "quality", ""),
			CharacterClass: get(data, "character_class", ""),
			Factions:       get(data, "factions", []any{}),
			IsGlobal:       get(data, "is_global", true),
			Subclasses:     get(data, "subclasses", []any{}),
			Height:         get(data, "height", ""),
			Weight:         get(data, "weight", ""),
			Origin:         get(data, "origin", ""),
			Lore:           get(data, "lore", ""),
			Quote:          get(data, "quote", ""),
			Talent:         data["talent"],
			Skills:         get(data, "skills", []any{}),
			NoblePhantasm:  data["noble_phantasm"],
		}, nil

	case LabelTierList:
		out := tierListEntry{
			Name:        data["name"],
			Author:      get(data, "author", ""),
			ContentType: get(data, "content_type", ""),
			Description: get(data, "description", ""),
			Entries:     []tierEntryEntry{},
		}
		for _, e := range objects(data["entries"]) {
			out.Entries = append(out.Entries, tierEntryEntry{
				CharacterName: get(e, "character_name", ""),
				Tier:          get(e, "tier", ""),
				Note:          get(e, "note", ""),
			})
		}
		return out, nil

	case LabelTeam:
		out := teamEntry{
			Name:        data["name"],
			Author:      get(data, "author", ""),
			ContentType: get(data, "content_type", ""),
			Description: get(data, "description", ""),
			Faction:     get(data, "faction", ""),
			Members:     []teamMemberEntry{},
		}
		for _, m := range objects(data["members"]) {
			out.Members = append(out.Members, teamMemberEntry{
				CharacterName:  get(m, "character_name", ""),
				OverdriveOrder: m["overdrive_order"],
				Substitutes:    get(m, "substitutes", []any{}),
				Note:           get(m, "note", ""),
			})
		}
		spells, _ := data["wyrmspells"].(map[string]any)
		out.Wyrmspells = wyrmspellsEntry{
			Breach:      get(spells, "breach", ""),
			Refuge:      get(spells, "refuge", ""),
			Wildcry:     get(spells, "wildcry", ""),
			DragonsCall: get(spells, "dragons_call", ""),
		}
		return out, nil
	}
	return nil, errors.InvalidArgumentf("unknown label %q", label)
}
