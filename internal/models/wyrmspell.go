package models

// WyrmspellCategory is one of the four fixed wyrmspell slots of a team
type WyrmspellCategory string

const (
	WyrmspellBreach      WyrmspellCategory = "Breach"
	WyrmspellRefuge      WyrmspellCategory = "Refuge"
	WyrmspellWildcry     WyrmspellCategory = "Wildcry"
	WyrmspellDragonsCall WyrmspellCategory = "Dragon's Call"
)

// WyrmspellCategories lists the categories in slot order
func WyrmspellCategories() []WyrmspellCategory {
	return []WyrmspellCategory{WyrmspellBreach, WyrmspellRefuge, WyrmspellWildcry, WyrmspellDragonsCall}
}

// Wyrmspell is a catalog record
type Wyrmspell struct {
	Name   string            `json:"name"`
	Effect string            `json:"effect"`
	Type   WyrmspellCategory `json:"type"`
}

// Wyrmspells holds one optional selection per category
type Wyrmspells struct {
	Breach      string `json:"breach,omitempty"`
	Refuge      string `json:"refuge,omitempty"`
	Wildcry     string `json:"wildcry,omitempty"`
	DragonsCall string `json:"dragons_call,omitempty"`
}

// IsZero reports whether no category is set
func (w Wyrmspells) IsZero() bool {
	return w.Count() == 0
}

// Count returns how many categories are set
func (w Wyrmspells) Count() int {
	n := 0
	for _, v := range []string{w.Breach, w.Refuge, w.Wildcry, w.DragonsCall} {
		if v != "" {
			n++
		}
	}
	return n
}

// Get returns the selection for a category
func (w Wyrmspells) Get(category WyrmspellCategory) string {
	switch category {
	case WyrmspellBreach:
		return w.Breach
	case WyrmspellRefuge:
		return w.Refuge
	case WyrmspellWildcry:
		return w.Wildcry
	case WyrmspellDragonsCall:
		return w.DragonsCall
	}
	return ""
}

// With returns a copy with category set to name
func (w Wyrmspells) With(category WyrmspellCategory, name string) Wyrmspells {
	switch category {
	case WyrmspellBreach:
		w.Breach = name
	case WyrmspellRefuge:
		w.Refuge = name
	case WyrmspellWildcry:
		w.Wildcry = name
	case WyrmspellDragonsCall:
		w.DragonsCall = name
	}
	return w
}
