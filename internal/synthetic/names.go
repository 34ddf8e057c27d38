package synthetic

import (
	"fmt"
	"math/rand"
)

var firstNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery", "Quinn", "Blake", "Cameron",
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason", "Isabella", "William",
	"James", "Benjamin", "Lucas", "Henry", "Alexander", "Michael", "Daniel", "Jacob", "Logan", "Jackson",
	"Sebastian", "Jack", "Aiden", "Owen", "Samuel", "Matthew", "Joseph", "Levi", "Mateo", "David",
	"John", "Wyatt", "Carter", "Luke", "Grayson", "Isaac", "Gabriel", "Julian", "Maverick", "Anthony",
	"Charlotte", "Amelia", "Harper", "Evelyn", "Abigail", "Emily", "Elizabeth", "Mila", "Ella", "Sofia",
	"Camila", "Aria", "Scarlett", "Victoria", "Madison", "Luna", "Grace", "Chloe", "Penelope", "Layla",
	"Riley", "Zoey", "Nora", "Lily", "Eleanor", "Hannah", "Lillian", "Addison", "Aubrey", "Ellie",
	"Stella", "Natalie", "Zoe", "Leah", "Hazel", "Violet", "Aurora", "Savannah", "Audrey", "Brooklyn",
	"Bella", "Claire", "Skylar", "Lucy", "Paisley", "Everly", "Anna", "Caroline", "Nova", "Genesis",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
	"Walker", "Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell", "Carter", "Roberts",
	"Gomez", "Phillips", "Evans", "Turner", "Diaz", "Parker", "Cruz", "Edwards", "Collins", "Reyes",
	"Stewart", "Morris", "Morales", "Murphy", "Cook", "Rogers", "Gutierrez", "Ortiz", "Morgan", "Cooper",
	"Peterson", "Bailey", "Reed", "Kelly", "Howard", "Ramos", "Kim", "Cox", "Ward", "Richardson",
	"Watson", "Brooks", "Chavez", "Wood", "James", "Bennett", "Gray", "Mendoza", "Ruiz", "Hughes",
	"Price", "Alvarez", "Castillo", "Sanders", "Patel", "Myers", "Long", "Ross", "Foster", "Jimenez",
}

// nameGenerator hands out realistic bettor names, unique for the lifetime
// of the process. Once the combination space runs dry it falls back to a
// numeric suffix.
type nameGenerator struct {
	rng  *rand.Rand
	used map[string]bool
}

func newNameGenerator(rng *rand.Rand) *nameGenerator {
	return &nameGenerator{rng: rng, used: make(map[string]bool)}
}

const nameAttempts = 100

func (g *nameGenerator) Generate() string {
	for i := 0; i < nameAttempts; i++ {
		name := firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
		if !g.used[name] {
			g.used[name] = true
			return name
		}
	}

	name := fmt.Sprintf("%s %s%d",
		firstNames[g.rng.Intn(len(firstNames))],
		lastNames[g.rng.Intn(len(lastNames))],
		10+g.rng.Intn(90))
	g.used[name] = true
	return name
}
