package models

// Quality is a character's rarity
type Quality string

const (
	QualityMyth       Quality = "Myth"
	QualityLegendPlus Quality = "Legend+"
	QualityLegend     Quality = "Legend"
	QualityEpic       Quality = "Epic"
	QualityElite      Quality = "Elite"
)

// CharacterClass decides which grid rows a character may occupy
type CharacterClass string

const (
	ClassGuardian CharacterClass = "Guardian"
	ClassWarrior  CharacterClass = "Warrior"
	ClassAssassin CharacterClass = "Assassin"
	ClassPriest   CharacterClass = "Priest"
	ClassMage     CharacterClass = "Mage"
	ClassArcher   CharacterClass = "Archer"
)

// Faction is one of the six in-game factions
type Faction string

const (
	FactionElementalEcho    Faction = "Elemental Echo"
	FactionWildSpirit       Faction = "Wild Spirit"
	FactionArcaneWisdom     Faction = "Arcane Wisdom"
	FactionSanctumGlory     Faction = "Sanctum Glory"
	FactionOtherworldReturn Faction = "Otherworld Return"
	FactionIllusionVeil     Faction = "Illusion Veil"
)

// Factions lists every known faction in display order
func Factions() []Faction {
	return []Faction{
		FactionElementalEcho,
		FactionWildSpirit,
		FactionArcaneWisdom,
		FactionSanctumGlory,
		FactionOtherworldReturn,
		FactionIllusionVeil,
	}
}

// Valid reports whether f names a known faction
func (f Faction) Valid() bool {
	for _, known := range Factions() {
		if f == known {
			return true
		}
	}
	return false
}

// Skill is a named ability; only name and description feed synergy matching
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Subclass is a cosmetic class variant
type Subclass struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Character is a read-only catalog record, keyed by Name
type Character struct {
	Name           string         `json:"name"`
	Title          string         `json:"title,omitempty"`
	Quality        Quality        `json:"quality"`
	CharacterClass CharacterClass `json:"character_class"`
	Factions       []Faction      `json:"factions"`
	IsGlobal       bool           `json:"is_global"`
	Subclasses     []Subclass     `json:"subclasses,omitempty"`
	Lore           string         `json:"lore,omitempty"`
	Talent         *Skill         `json:"talent,omitempty"`
	Skills         []Skill        `json:"skills"`
	LastUpdated    int64          `json:"last_updated,omitempty"`
}

// HasFaction reports whether the character belongs to f
func (c Character) HasFaction(f Faction) bool {
	for _, own := range c.Factions {
		if own == f {
			return true
		}
	}
	return false
}
