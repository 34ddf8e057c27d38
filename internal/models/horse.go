package models

import "math/rand"

// Horse represents a race participant. The performance attributes are fixed
// at creation; Position, Finished and FinishPosition change only while the
// race runs and are guarded by the owning Race.
type Horse struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Speed          float64 `json:"speed"`
	Stamina        float64 `json:"stamina"`
	Consistency    float64 `json:"consistency"`
	Position       float64 `json:"position"`
	Finished       bool    `json:"finished"`
	FinishPosition int     `json:"finish_position,omitempty"`
}

// NewHorse creates a horse with attributes drawn uniformly from
// [attrMin, attrMax] using the supplied source of randomness.
func NewHorse(id int, name string, attrMin, attrMax float64, rng *rand.Rand) *Horse {
	span := attrMax - attrMin
	return &Horse{
		ID:          id,
		Name:        name,
		Speed:       attrMin + rng.Float64()*span,
		Stamina:     attrMin + rng.Float64()*span,
		Consistency: attrMin + rng.Float64()*span,
	}
}

// Strength is the combined ability score. It drives both the opening odds
// and the per-tick movement during simulation.
func (h *Horse) Strength() float64 {
	return h.Speed * h.Stamina * h.Consistency
}

// State copies the mutable race-facing view of the horse.
func (h *Horse) State() HorseState {
	return HorseState{
		ID:             h.ID,
		Name:           h.Name,
		Position:       h.Position,
		Finished:       h.Finished,
		FinishPosition: h.FinishPosition,
	}
}
