// Package synergy scores a team against a faction and content type. The
// score is a heuristic: a weighted sum of independent signals, each owning
// a fixed share of 100 points.
package synergy

import (
	"math"
	"regexp"
	"strings"

	"github.com/meur/dtwiki/internal/models"
)

// Point budget per signal. They add up to 100.
const (
	weightFullness   = 10.0
	weightFaction    = 20.0
	weightDiversity  = 10.0
	weightFrontline  = 7.5
	weightSustain    = 7.5
	weightDamage     = 10.0
	weightBuff       = 5.0
	weightDebuff     = 5.0
	weightControl    = 5.0
	weightContentFit = 10.0
	weightOverdrive  = 5.0
	weightWyrmspells = 5.0
)

const (
	idealRosterSize  = 6
	idealClassCount  = 4
	idealDamageCount = 3
	// factionTarget is the cohesion ratio below which more faction members are recommended
	factionTarget = 0.67
)

var (
	buffPattern    = regexp.MustCompile(`(?i)\b(increase[sd]?|boost|enhance|empower|grants?|bonus|buff|amplif)`)
	debuffPattern  = regexp.MustCompile(`(?i)\b(reduce[sd]?|decrease[sd]?|weaken|debuff|vulnerab|lowers?|curse|armor break)`)
	controlPattern = regexp.MustCompile(`(?i)\b(stun|freeze|frozen|silence|taunt|knock|root|sleep|petrif|immobil|charm|fear)`)
	sustainPattern = regexp.MustCompile(`(?i)\b(heal|restore|shield|regenerat|recover|lifesteal|revive)`)
)

// Input is a snapshot of everything the scorer looks at
type Input struct {
	Roster         []models.Character
	Faction        models.Faction
	ContentType    models.ContentType
	OverdriveCount int
	Wyrmspells     models.Wyrmspells
}

// Signals are the intermediate measurements behind a score
type Signals struct {
	RosterSize      int     `json:"roster_size"`
	FactionMatches  int     `json:"faction_matches"`
	FactionRatio    float64 `json:"faction_ratio"`
	DistinctClasses int     `json:"distinct_classes"`
	Frontline       int     `json:"frontline"`
	Sustain         int     `json:"sustain"`
	DamageDealers   int     `json:"damage_dealers"`
	HasBuff         bool    `json:"has_buff"`
	HasDebuff       bool    `json:"has_debuff"`
	HasControl      bool    `json:"has_control"`
	Assassins       int     `json:"assassins"`
}

// Breakdown holds the points each signal contributed
type Breakdown struct {
	Fullness   float64 `json:"fullness"`
	Faction    float64 `json:"faction"`
	Diversity  float64 `json:"diversity"`
	Frontline  float64 `json:"frontline"`
	Sustain    float64 `json:"sustain"`
	Damage     float64 `json:"damage"`
	Buff       float64 `json:"buff"`
	Debuff     float64 `json:"debuff"`
	Control    float64 `json:"control"`
	ContentFit float64 `json:"content_fit"`
	Overdrive  float64 `json:"overdrive"`
	Wyrmspells float64 `json:"wyrmspells"`
}

func (b Breakdown) total() float64 {
	return b.Fullness + b.Faction + b.Diversity + b.Frontline + b.Sustain + b.Damage +
		b.Buff + b.Debuff + b.Control + b.ContentFit + b.Overdrive + b.Wyrmspells
}

// Result is a composite score with its grade and hints
type Result struct {
	Score           int       `json:"score"`
	Grade           string    `json:"grade"`
	Signals         Signals   `json:"signals"`
	Breakdown       Breakdown `json:"breakdown"`
	Recommendations []string  `json:"recommendations"`
}

// Grade maps a 0-100 score to a letter
func Grade(score int) string {
	switch {
	case score >= 90:
		return "S"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	default:
		return "D"
	}
}

// Measure extracts the signals of a roster
func Measure(in Input) Signals {
	s := Signals{RosterSize: len(in.Roster)}
	classes := make(map[models.CharacterClass]bool)
	for _, ch := range in.Roster {
		classes[ch.CharacterClass] = true
		if in.Faction != "" && ch.HasFaction(in.Faction) {
			s.FactionMatches++
		}
		text := skillText(ch)
		switch ch.CharacterClass {
		case models.ClassGuardian, models.ClassWarrior:
			s.Frontline++
		}
		switch ch.CharacterClass {
		case models.ClassAssassin, models.ClassMage, models.ClassArcher:
			s.DamageDealers++
		}
		if ch.CharacterClass == models.ClassAssassin {
			s.Assassins++
		}
		if ch.CharacterClass == models.ClassPriest || sustainPattern.MatchString(text) {
			s.Sustain++
		}
		s.HasBuff = s.HasBuff || buffPattern.MatchString(text)
		s.HasDebuff = s.HasDebuff || debuffPattern.MatchString(text)
		s.HasControl = s.HasControl || controlPattern.MatchString(text)
	}
	s.DistinctClasses = len(classes)
	if s.RosterSize > 0 {
		s.FactionRatio = float64(s.FactionMatches) / float64(s.RosterSize)
	}
	return s
}

func skillText(ch models.Character) string {
	var b strings.Builder
	for _, sk := range ch.Skills {
		b.WriteString(sk.Name)
		b.WriteByte('\n')
		b.WriteString(sk.Description)
		b.WriteByte('\n')
	}
	if ch.Talent != nil {
		b.WriteString(ch.Talent.Name)
		b.WriteByte('\n')
		b.WriteString(ch.Talent.Description)
	}
	return b.String()
}

func ratio(n, ideal int) float64 {
	if ideal <= 0 {
		return 0
	}
	return math.Min(1, float64(n)/float64(ideal))
}

func flag(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// contentFit scores how well the team's shape suits the content type.
// PvP wants control, burst and a frontline; PvE and bosses want sustain,
// damage and buffs. "All" averages both.
func contentFit(s Signals, content models.ContentType) float64 {
	pvp := (flag(s.HasControl) + math.Min(1, float64(s.Assassins+s.DamageDealers)/3) + flag(s.Frontline > 0)) / 3
	pve := (flag(s.Sustain > 0) + ratio(s.DamageDealers, idealDamageCount) + flag(s.HasBuff)) / 3
	switch content {
	case models.ContentPvP:
		return pvp
	case models.ContentPvE, models.ContentBoss:
		return pve
	default:
		return (pvp + pve) / 2
	}
}

// Score computes the composite score, grade and recommendations
func Score(in Input) Result {
	s := Measure(in)
	b := Breakdown{
		Fullness:   weightFullness * ratio(s.RosterSize, idealRosterSize),
		Faction:    weightFaction * s.FactionRatio,
		Diversity:  weightDiversity * ratio(s.DistinctClasses, idealClassCount),
		Frontline:  weightFrontline * flag(s.Frontline > 0),
		Sustain:    weightSustain * flag(s.Sustain > 0),
		Damage:     weightDamage * ratio(s.DamageDealers, idealDamageCount),
		Buff:       weightBuff * flag(s.HasBuff),
		Debuff:     weightDebuff * flag(s.HasDebuff),
		Control:    weightControl * flag(s.HasControl),
		ContentFit: weightContentFit * contentFit(s, in.ContentType),
		Overdrive:  weightOverdrive * ratio(in.OverdriveCount, min(s.RosterSize, idealRosterSize)),
		Wyrmspells: weightWyrmspells * ratio(in.Wyrmspells.Count(), len(models.WyrmspellCategories())),
	}
	if s.RosterSize == 0 {
		b = Breakdown{}
	}

	score := int(math.Round(math.Min(100, b.total())))
	return Result{
		Score:           score,
		Grade:           Grade(score),
		Signals:         s,
		Breakdown:       b,
		Recommendations: recommend(s, in),
	}
}

func recommend(s Signals, in Input) []string {
	hints := []string{}
	add := func(cond bool, hint string) {
		if cond {
			hints = append(hints, hint)
		}
	}
	add(s.RosterSize < idealRosterSize, "Fill the remaining roster slots to reach a full team of 6.")
	add(in.Faction == "", "Pick a faction to benefit from faction bonuses.")
	add(in.Faction != "" && s.RosterSize > 0 && s.FactionRatio < factionTarget,
		"Add more "+string(in.Faction)+" members to strengthen faction cohesion.")
	add(s.RosterSize > 0 && s.DistinctClasses < 3, "Mix in more classes for a more flexible lineup.")
	add(s.Frontline == 0, "Add a frontline unit (Guardian or Warrior) to absorb damage.")
	add(s.Sustain == 0, "Add a sustain unit (Priest or a healer) to keep the team alive.")
	add(s.DamageDealers < 2, "Add more damage dealers (Assassin, Mage or Archer).")
	add(!s.HasBuff, "No buffs detected: consider a support that empowers allies.")
	add(!s.HasDebuff, "No debuffs detected: consider a unit that weakens enemies.")
	add(in.ContentType == models.ContentPvP && !s.HasControl, "PvP teams benefit from crowd control (stuns, silences, freezes).")
	add((in.ContentType == models.ContentBoss || in.ContentType == models.ContentPvE) && s.DamageDealers < idealDamageCount,
		"Boss and PvE content rewards sustained damage: bring a third damage dealer.")
	add(s.RosterSize > 0 && in.OverdriveCount == 0, "Set an overdrive order to plan your ultimate rotation.")
	add(in.Wyrmspells.IsZero(), "Choose wyrmspells for your team.")
	return hints
}
