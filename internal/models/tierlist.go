package models

// TierDefinition names a tier in a tier-list document
type TierDefinition struct {
	Name string `json:"name"`
	Note string `json:"note,omitempty"`
}

// TierEntry places one character in a named tier
type TierEntry struct {
	CharacterName string `json:"character_name"`
	Tier          string `json:"tier"`
	Note          string `json:"note,omitempty"`
}

// TierListDocument is the canonical JSON form of a tier list
type TierListDocument struct {
	Name        string           `json:"name"`
	Author      string           `json:"author"`
	ContentType ContentType      `json:"content_type"`
	Description string           `json:"description"`
	Tiers       []TierDefinition `json:"tiers"`
	Entries     []TierEntry      `json:"entries"`
	LastUpdated int64            `json:"last_updated"`
}

// DefaultTierNames returns the standard S+ to D tier setup
func DefaultTierNames() []string {
	return []string{"S+", "S", "A", "B", "C", "D"}
}
