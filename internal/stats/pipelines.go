package stats

import (
	"sort"

	"github.com/runlab/unwrapped/internal/record"
)

// UnlistedPipeline is the sentinel name the source platform
// assigns to runs that never belonged to a named pipeline. It
// is excluded from top-pipeline rankings.
const UnlistedPipeline = "unlisted"

// topPipelineLimit caps the ranking length.
const topPipelineLimit = 10

// PipelineCount is one entry in the top-pipelines ranking.
type PipelineCount struct {
	Name string `json:"name"`
	Runs int    `json:"runs"`
}

// ComputeTopPipelines ranks pipelines by resolved run count and
// returns the top 10. Runs that resolve to no pipeline ID are
// skipped, as is the "unlisted" sentinel. The sort is stable:
// equal counts keep first-encounter order.
func ComputeTopPipelines(
	runs []record.Run, maps PipelineMaps,
) []PipelineCount {
	counts := make(map[string]int)
	names := make(map[string]string)
	var order []string

	for _, run := range runs {
		id, name := maps.ResolvePipeline(run)
		if id == "" {
			continue
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
		if _, ok := names[id]; !ok {
			if name == "" {
				name = maps.NameByID[id]
			}
			if name == "" {
				name = record.ShortID(id)
			}
			names[id] = name
		}
	}

	ranked := make([]PipelineCount, 0, len(order))
	for _, id := range order {
		if names[id] == UnlistedPipeline {
			continue
		}
		ranked = append(ranked, PipelineCount{
			Name: names[id],
			Runs: counts[id],
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Runs > ranked[j].Runs
	})
	if len(ranked) > topPipelineLimit {
		ranked = ranked[:topPipelineLimit]
	}
	return ranked
}
