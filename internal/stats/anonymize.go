package stats

import (
	"fmt"
	"math/rand"
	"sort"
)

// Codename pools, three themes combined into one deck before
// shuffling. The pool only needs to be large enough that the
// numeric-suffix overflow path is rare, not impossible.
var (
	constellationNames = []string{
		"Andromeda", "Aquila", "Cassiopeia", "Centaurus", "Cygnus",
		"Draco", "Hydra", "Lyra", "Orion", "Pegasus", "Perseus",
		"Phoenix", "Vela",
	}
	mineralNames = []string{
		"Agate", "Basalt", "Beryl", "Feldspar", "Garnet", "Jasper",
		"Obsidian", "Onyx", "Opal", "Pyrite", "Quartz", "Topaz",
		"Zircon",
	}
	windNames = []string{
		"Bora", "Chinook", "Foehn", "Harmattan", "Levante",
		"Mistral", "Monsoon", "Pampero", "Sirocco", "Zephyr",
	}
)

// AnonymizationMap holds the independent name→codename maps for
// projects and pipelines.
type AnonymizationMap struct {
	Projects  map[string]string `json:"projects"`
	Pipelines map[string]string `json:"pipelines"`
}

// codenamePool returns the combined deck shuffled with rng. A
// fresh shuffle per call keeps the project and pipeline maps
// uncorrelated.
func codenamePool(rng *rand.Rand) []string {
	pool := make([]string, 0,
		len(constellationNames)+len(mineralNames)+len(windNames))
	pool = append(pool, constellationNames...)
	pool = append(pool, mineralNames...)
	pool = append(pool, windNames...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

// assignCodenames maps sorted distinct names onto the shuffled
// pool in order, falling back to a numeric suffix once the pool
// is exhausted.
func assignCodenames(names []string, pool []string) map[string]string {
	distinct := make(map[string]bool, len(names))
	for _, name := range names {
		if name != "" {
			distinct[name] = true
		}
	}
	sorted := make([]string, 0, len(distinct))
	for name := range distinct {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	assigned := make(map[string]string, len(sorted))
	for i, name := range sorted {
		if i < len(pool) {
			assigned[name] = pool[i]
		} else {
			assigned[name] = fmt.Sprintf("Workflow-%d", i-len(pool)+1)
		}
	}
	return assigned
}

// BuildAnonymizationMap assigns randomized, collision-free
// codenames to project and pipeline names. The random source is
// caller-injected: the CLI passes an unseeded-by-us wall-clock
// source, so the mapping differs run to run; tests pass a
// seeded one.
func BuildAnonymizationMap(
	projectNames, pipelineNames []string, rng *rand.Rand,
) AnonymizationMap {
	return AnonymizationMap{
		Projects:  assignCodenames(projectNames, codenamePool(rng)),
		Pipelines: assignCodenames(pipelineNames, codenamePool(rng)),
	}
}
