package history

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var adjectives = []string{
	"amber", "arctic", "bold", "brave", "bright", "calm", "clever", "copper",
	"coral", "crimson", "dusty", "eager", "early", "frosty", "gentle", "golden",
	"hidden", "indigo", "ivory", "jade", "lucky", "lunar", "misty", "noble",
	"quiet", "rapid", "rusty", "silent", "silver", "solar", "swift", "violet",
}

var nouns = []string{
	"badger", "beacon", "cedar", "comet", "cursor", "falcon", "fern", "harbor",
	"heron", "index", "kernel", "ledger", "lynx", "maple", "meadow", "otter",
	"pebble", "pixel", "quartz", "raven", "ridge", "river", "schema", "spark",
	"summit", "thistle", "tundra", "vector", "walrus", "willow", "wren", "zephyr",
}

// NameGenerator generates handles for anonymous users. It is safe for
// concurrent use.
type NameGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNameGenerator creates a new name generator.
func NewNameGenerator() *NameGenerator {
	return &NameGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Generate returns a name in the form "adjective-noun-NN".
func (g *NameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return generate(g.rng)
}

// GenerateWithSeed returns the name a generator seeded with seed produces
// first.
func GenerateWithSeed(seed int64) string {
	return generate(rand.New(rand.NewSource(seed)))
}

func generate(rng *rand.Rand) string {
	adj := adjectives[rng.Intn(len(adjectives))]
	noun := nouns[rng.Intn(len(nouns))]
	return fmt.Sprintf("%s-%s-%02d", adj, noun, rng.Intn(100))
}
