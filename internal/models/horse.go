package models

import "encoding/json"

// Class represents the experience tier a horse races in
type Class string

const (
	ClassMaiden Class = "maiden"
	ClassNovice Class = "novice"
	ClassOpen   Class = "open"
)

// Classes lists every class in field-selection priority order
var Classes = []Class{ClassMaiden, ClassNovice, ClassOpen}

// DefaultRetireAfter is the number of races a horse runs before retiring
const DefaultRetireAfter = 10

// formLength is the number of recent placings kept on a horse
const formLength = 5

// Stats holds the performance attributes that drive the movement model
type Stats struct {
	Energy      float64 `json:"energy" db:"energy" validate:"gt=0"`
	Agility     float64 `json:"agility" db:"agility" validate:"gt=0"`
	Discipline  float64 `json:"discipline" db:"discipline" validate:"gt=0"`
	Temperament float64 `json:"temperament" db:"temperament" validate:"gte=0,lte=10"`
}

// Horse represents a horse in the league
type Horse struct {
	ID          string `json:"id" db:"id" validate:"required"`
	Name        string `json:"name" db:"name" validate:"required"`
	Stats       Stats  `json:"stats"`
	Wins        int    `json:"wins" db:"wins" validate:"gte=0"`
	Losses      int    `json:"losses" db:"losses" validate:"gte=0"`
	AgeRaces    int    `json:"age_races" db:"age_races" validate:"gte=0"`
	RetireAfter int    `json:"retire_after" db:"retire_after" validate:"gt=0"`
	Form        []int  `json:"form,omitempty" db:"form"`
}

// ClassFor derives a class from a win count
func ClassFor(wins int) Class {
	switch {
	case wins <= 0:
		return ClassMaiden
	case wins <= 3:
		return ClassNovice
	default:
		return ClassOpen
	}
}

// Class returns the horse's class derived from its wins
func (h *Horse) Class() Class {
	return ClassFor(h.Wins)
}

// MarshalJSON writes the derived class alongside the stored fields.
// The class is not read back; it is always recomputed from wins.
func (h Horse) MarshalJSON() ([]byte, error) {
	type horse Horse
	return json.Marshal(struct {
		horse
		Class Class `json:"class"`
	}{horse(h), ClassFor(h.Wins)})
}

// IsActive checks if the horse is still eligible to race
func (h *Horse) IsActive() bool {
	return h.AgeRaces < h.RetireAfter
}

// Runs returns the number of completed races
func (h *Horse) Runs() int {
	return h.Wins + h.Losses
}

// WinRate returns wins as a fraction of completed races
func (h *Horse) WinRate() float64 {
	runs := h.Runs()
	if runs == 0 {
		return 0
	}
	return float64(h.Wins) / float64(runs)
}

// RecordPlacing pushes a finishing position onto the form, most recent first
func (h *Horse) RecordPlacing(position int) {
	form := append([]int{position}, h.Form...)
	if len(form) > formLength {
		form = form[:formLength]
	}
	h.Form = form
}
