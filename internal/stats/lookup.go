// Package stats is the aggregation core: pure transformations
// from a normalized record set into counters, time analytics,
// leaderboards, awards, fun facts, and the anonymization maps.
// Every function here is deterministic in its inputs except the
// codename shuffle, which takes an injected random source.
//
// Iteration-order contracts are explicit: rankings use stable
// sorts, "max by" selections keep the first maximal element in
// input order, and duplicate pipeline names resolve
// last-write-wins when building lookups.
package stats

import (
	"github.com/runlab/unwrapped/internal/record"
)

// PipelineMaps holds the bidirectional pipeline lookups every
// downstream stage uses to resolve a run to its pipeline
// identity, plus the pipeline→project map in multi-project mode.
type PipelineMaps struct {
	NameByID map[string]string
	IDByName map[string]string

	// ProjectByPipelineID maps pipeline ID to owning project
	// name. Empty outside multi-project mode.
	ProjectByPipelineID map[string]string
}

// BuildPipelineMaps builds the lookup maps from the full
// pipeline collection. When two pipelines share a name, the
// later one in input order wins the IDByName entry; this
// mirrors the source platform's ambiguity and is asserted on,
// not corrected.
func BuildPipelineMaps(pipelines []record.Pipeline) PipelineMaps {
	m := PipelineMaps{
		NameByID:            make(map[string]string, len(pipelines)),
		IDByName:            make(map[string]string, len(pipelines)),
		ProjectByPipelineID: make(map[string]string),
	}
	for _, p := range pipelines {
		if p.ID == "" {
			continue
		}
		m.NameByID[p.ID] = p.Name
		if p.Name != "" {
			m.IDByName[p.Name] = p.ID
		}
		if p.ProjectID != "" {
			m.ProjectByPipelineID[p.ID] = p.ProjectID
		}
	}
	return m
}

// ResolvePipeline extracts the pipeline identity of a run:
// the embedded reference when present, else the config-derived
// name resolved through IDByName, else the bare name with no
// ID. A run with neither path yields ("", ""), contributing to
// totals but not to unique counts or rankings.
func (m PipelineMaps) ResolvePipeline(run record.Run) (id, name string) {
	if run.PipelineID != "" {
		return run.PipelineID, run.PipelineName
	}
	if run.ConfigName == "" {
		return "", ""
	}
	if id, ok := m.IDByName[run.ConfigName]; ok {
		if canonical, ok := m.NameByID[id]; ok && canonical != "" {
			return id, canonical
		}
		return id, run.ConfigName
	}
	return "", run.ConfigName
}

// ResolveUser extracts the user ID of a run, or "" when the run
// carries no user reference.
func ResolveUser(run record.Run) string {
	return run.UserID
}
