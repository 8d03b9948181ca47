package team

import "github.com/meur/dtwiki/internal/models"

// Row is a grid row; lower rows stand closer to the enemy
type Row int

const (
	RowFront Row = iota
	RowMiddle
	RowBack
)

// Label is the user-facing name used in placement warnings
func (r Row) Label() string {
	switch r {
	case RowFront:
		return "the front row"
	case RowMiddle:
		return "the middle row"
	case RowBack:
		return "the back row"
	}
	return "an unknown row"
}

var allRows = []Row{RowFront, RowMiddle, RowBack}

// LegalRows returns the rows a class may occupy, in scan order.
// Unknown classes may stand anywhere.
func LegalRows(class models.CharacterClass) []Row {
	switch class {
	case models.ClassGuardian:
		return []Row{RowFront}
	case models.ClassWarrior:
		return []Row{RowFront, RowMiddle}
	case models.ClassPriest, models.ClassMage, models.ClassArcher:
		return []Row{RowMiddle, RowBack}
	default:
		return allRows
	}
}

// CanOccupy reports whether class may stand in row
func CanOccupy(class models.CharacterClass, row Row) bool {
	for _, r := range LegalRows(class) {
		if r == row {
			return true
		}
	}
	return false
}
