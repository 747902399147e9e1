package league

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/gallop/internal/models"
)

// Generator creates new horses with random stats
type Generator struct {
	names []string
	rng   *rand.Rand
}

// NewGenerator creates a generator drawing names from names, if any
func NewGenerator(names []string, rng *rand.Rand) *Generator {
	return &Generator{names: names, rng: rng}
}

// LoadNames reads one horse name per line. A missing file yields no names.
func LoadNames(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open names file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read names file: %w", err)
	}
	return names, nil
}

// New creates a maiden horse
func (g *Generator) New(retireAfter int) models.Horse {
	if retireAfter <= 0 {
		retireAfter = models.DefaultRetireAfter
	}
	return models.Horse{
		ID:          "h_" + hexID(6),
		Name:        g.name(),
		Stats:       g.stats(),
		RetireAfter: retireAfter,
	}
}

func (g *Generator) name() string {
	if len(g.names) > 0 {
		return g.names[g.rng.Intn(len(g.names))]
	}
	return "Horse-" + hexID(4)
}

func (g *Generator) stats() models.Stats {
	return models.Stats{
		Energy:      g.uniform(6, 9),
		Agility:     g.uniform(6, 9),
		Discipline:  g.uniform(5, 9),
		Temperament: g.uniform(3, 7),
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

func hexID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
