package models

// ContentType is the game mode a team or tier list targets
type ContentType string

const (
	ContentAll  ContentType = "All"
	ContentPvP  ContentType = "PvP"
	ContentPvE  ContentType = "PvE"
	ContentBoss ContentType = "Boss"
)

// Valid reports whether c is a known content type
func (c ContentType) Valid() bool {
	switch c {
	case ContentAll, ContentPvP, ContentPvE, ContentBoss:
		return true
	}
	return false
}

// Position addresses a grid slot; Row 0 is the front row
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// TeamMember is one placed character of a team document
type TeamMember struct {
	CharacterName  string    `json:"character_name"`
	OverdriveOrder *int      `json:"overdrive_order"`
	Position       *Position `json:"position,omitempty"`
	Note           string    `json:"note,omitempty"`
}

// TeamDocument is the canonical JSON form of a team composition
type TeamDocument struct {
	Name        string            `json:"name"`
	Author      string            `json:"author"`
	ContentType ContentType       `json:"content_type"`
	Description string            `json:"description"`
	Faction     Faction           `json:"faction"`
	Members     []TeamMember      `json:"members"`
	Bench       []string          `json:"bench,omitempty"`
	BenchNotes  map[string]string `json:"bench_notes,omitempty"`
	Wyrmspells  *Wyrmspells       `json:"wyrmspells,omitempty"`
	LastUpdated int64             `json:"last_updated"`
}
