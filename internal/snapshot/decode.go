// Package snapshot decodes raw exporter snapshots into
// normalized record sets. The raw JSON is duck-typed: statuses
// may be plain strings or enum objects with a "value" field,
// timestamps may be missing, and optional counts go by several
// names. Every field access here is probing and tolerant; a
// malformed entry degrades to defaulted fields or is skipped,
// it never aborts the decode.
package snapshot

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/runlab/unwrapped/internal/record"
)

// Load reads and decodes a snapshot file.
func Load(path string) (record.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record.Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return Decode(data)
}

// Decode parses raw snapshot JSON. The top level carries either
// flat record arrays (single-workspace exports) or a "projects"
// array of per-project record sets.
func Decode(data []byte) (record.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return record.Snapshot{}, fmt.Errorf("snapshot is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	snap := record.Snapshot{
		Workspace: root.Get("workspace").String(),
		Year:      int(root.Get("year").Int()),
		Records:   decodeSet(root),
	}

	root.Get("projects").ForEach(func(_, raw gjson.Result) bool {
		name := raw.Get("name").String()
		if name == "" {
			return true // unnamed project entries are skipped
		}
		snap.Projects = append(snap.Projects, record.Project{
			ID:          raw.Get("id").String(),
			Name:        name,
			DisplayName: raw.Get("display_name").String(),
			Records:     decodeSet(raw),
		})
		return true
	})

	return snap, nil
}

// decodeSet decodes the record arrays found directly under a
// JSON object (the top level or one project entry).
func decodeSet(obj gjson.Result) record.Set {
	var set record.Set

	obj.Get("runs").ForEach(func(_, raw gjson.Result) bool {
		set.Runs = append(set.Runs, decodeRun(raw))
		return true
	})
	obj.Get("pipelines").ForEach(func(_, raw gjson.Result) bool {
		set.Pipelines = append(set.Pipelines, record.Pipeline{
			ID:        raw.Get("id").String(),
			Name:      raw.Get("name").String(),
			ProjectID: raw.Get("project_id").String(),
		})
		return true
	})
	obj.Get("users").ForEach(func(_, raw gjson.Result) bool {
		set.Users = append(set.Users, record.User{
			ID:               raw.Get("id").String(),
			Name:             raw.Get("name").String(),
			FullName:         raw.Get("full_name").String(),
			AvatarURL:        raw.Get("avatar_url").String(),
			IsServiceAccount: raw.Get("is_service_account").Bool(),
		})
		return true
	})
	obj.Get("artifacts").ForEach(func(_, raw gjson.Result) bool {
		set.Artifacts = append(set.Artifacts, record.Artifact{
			ID:      raw.Get("id").String(),
			Created: record.ParseTime(raw.Get("created").String()),
		})
		return true
	})
	obj.Get("models").ForEach(func(_, raw gjson.Result) bool {
		set.Models = append(set.Models, decodeModel(raw))
		return true
	})
	obj.Get("schedules").ForEach(func(_, raw gjson.Result) bool {
		set.Schedules = append(set.Schedules, record.Schedule{
			ID:     raw.Get("id").String(),
			Active: raw.Get("active").Bool(),
		})
		return true
	})
	obj.Get("services").ForEach(func(_, raw gjson.Result) bool {
		set.Services = append(set.Services, record.Service{
			ID:    raw.Get("id").String(),
			State: record.NormalizeStatus(enumString(raw.Get("state"))),
		})
		return true
	})

	// "stacks" is either a count or an array of stack records.
	stacks := obj.Get("stacks")
	switch {
	case stacks.IsArray():
		set.Stacks = len(stacks.Array())
	default:
		set.Stacks = int(stacks.Int())
	}

	return set
}

// decodeRun extracts a run with all documented fallbacks: the
// embedded pipeline reference under "resources.pipeline" or
// "pipeline", the config-derived pipeline name, and the user
// reference via "user_id" or "resources.user.id".
func decodeRun(raw gjson.Result) record.Run {
	run := record.Run{
		ID:         raw.Get("id").String(),
		ConfigName: raw.Get("config.name").String(),
		Created:    record.ParseTime(raw.Get("created").String()),
		Status:     record.NormalizeStatus(enumString(raw.Get("status"))),
	}

	pipeline := raw.Get("resources.pipeline")
	if !pipeline.Exists() {
		pipeline = raw.Get("pipeline")
	}
	if pipeline.IsObject() {
		run.PipelineID = pipeline.Get("id").String()
		run.PipelineName = pipeline.Get("name").String()
	}

	run.UserID = raw.Get("user_id").String()
	if run.UserID == "" {
		run.UserID = raw.Get("resources.user.id").String()
	}

	return run
}

// decodeModel extracts a model, resolving the version count
// from the first present of the differently-named count fields.
func decodeModel(raw gjson.Result) record.Model {
	m := record.Model{
		ID:                raw.Get("id").String(),
		Created:           record.ParseTime(raw.Get("created").String()),
		LatestVersionName: raw.Get("latest_version_name").String(),
		LatestVersionID:   raw.Get("latest_version_id").String(),
	}

	for _, key := range []string{
		"number_of_versions", "num_versions", "version_count",
	} {
		if n, ok := countValue(raw.Get(key)); ok && n >= 0 {
			m.NumVersions = &n
			break
		}
	}

	if v := raw.Get("latest_version_number"); v.Exists() &&
		v.Type == gjson.Number {
		n := int(v.Int())
		m.LatestVersionNumber = &n
	}

	return m
}

// countValue extracts an integer count from a raw value that is
// either a JSON number or a numeric string. A string "0" is a
// real zero count, not an absent field.
func countValue(v gjson.Result) (int, bool) {
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.String()))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// enumString renders a status-like value that is either a plain
// string or an enum object exposing a "value" field.
func enumString(v gjson.Result) string {
	if v.IsObject() {
		return v.Get("value").String()
	}
	return v.String()
}
