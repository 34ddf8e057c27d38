package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/yourusername/saddleup/internal/models"
)

// RaceConfig controls how fresh race fields are generated.
type RaceConfig struct {
	HorseCount int
	Distance   float64
	AttrMin    float64
	AttrMax    float64
}

// DefaultRaceConfig returns the standard twenty horse field over a
// one hundred unit course.
func DefaultRaceConfig() RaceConfig {
	return RaceConfig{
		HorseCount: 20,
		Distance:   100.0,
		AttrMin:    0.8,
		AttrMax:    1.2,
	}
}

var horseNames = []string{
	"Thunder Bolt", "Lightning Strike", "Storm Chaser", "Wind Runner",
	"Fire Starter", "Ice Breaker", "Star Gazer", "Moon Walker",
	"Sun Dancer", "Rain Maker", "Snow Flake", "Thunder Cloud",
	"Lightning Bug", "Storm Front", "Wind Rider", "Fire Ball",
	"Ice Storm", "Star Light", "Moon Beam", "Sun Shine",
}

// CreateRace builds a race with a freshly randomized field. Horse IDs are
// assigned 1..n and names cycle through the stable pool, picking up a
// numeric suffix if the field outgrows it.
func CreateRace(id int, cfg RaceConfig, rng *rand.Rand) *models.Race {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	count := cfg.HorseCount
	if count <= 0 {
		count = len(horseNames)
	}

	horses := make([]*models.Horse, 0, count)
	for i := 0; i < count; i++ {
		name := horseNames[i%len(horseNames)]
		if i >= len(horseNames) {
			name = fmt.Sprintf("%s %d", name, i/len(horseNames)+1)
		}
		horses = append(horses, models.NewHorse(i+1, name, cfg.AttrMin, cfg.AttrMax, rng))
	}
	return models.NewRace(id, horses, cfg.Distance)
}
