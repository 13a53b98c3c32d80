package codename

import (
	"fmt"
	"math/rand/v2"
)

var adjectives = []string{
	"Phantom", "Shadow", "Silent", "Stealth", "Covert",
	"Midnight", "Golden", "Silver", "Iron", "Ghost",
}

var nouns = []string{
	"Eagle", "Phoenix", "Hawk", "Falcon", "Wolf",
	"Viper", "Cobra", "Raven", "Panther", "Tiger",
}

// maxAttempts bounds rejection sampling. With 100 possible combinations
// the space can genuinely run out, so after this many collisions we
// switch to a suffix fallback instead of looping forever.
const maxAttempts = 100

// ExistsFunc reports whether a codename is already taken. The lookup is
// an optimization only; the store's unique constraint is the actual
// backstop against a concurrent insert of the same codename.
type ExistsFunc func(codename string) (bool, error)

// Generator produces unique gadget codenames of the form
// "The <Adjective> <Noun>".
type Generator struct {
	exists ExistsFunc
}

// NewGenerator creates a generator backed by the given existence check
func NewGenerator(exists ExistsFunc) *Generator {
	return &Generator{exists: exists}
}

// Generate samples until it finds a codename with no collision. If the
// combination space is exhausted it appends the first free numeric
// suffix to the last candidate.
func (g *Generator) Generate() (string, error) {
	var candidate string

	for i := 0; i < maxAttempts; i++ {
		adjective := adjectives[rand.IntN(len(adjectives))]
		noun := nouns[rand.IntN(len(nouns))]
		candidate = fmt.Sprintf("The %s %s", adjective, noun)

		taken, err := g.exists(candidate)
		if err != nil {
			return "", fmt.Errorf("codename lookup failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	// Fallback: disambiguate the last candidate with a counter
	for n := 2; ; n++ {
		suffixed := fmt.Sprintf("%s %d", candidate, n)
		taken, err := g.exists(suffixed)
		if err != nil {
			return "", fmt.Errorf("codename lookup failed: %w", err)
		}
		if !taken {
			return suffixed, nil
		}
	}
}
