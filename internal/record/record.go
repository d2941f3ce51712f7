// Package record defines the normalized entity types the
// aggregation stages consume, plus the boundary normalization
// helpers that turn raw exporter values (datetime-or-string
// timestamps, enum-or-string statuses, optional counts) into a
// uniform shape. Everything downstream of this package can
// assume the documented defaults instead of probing for
// field presence.
package record

import "time"

// Statuses recognized by the aggregation stages. Any other
// normalized value is carried through as-is and lands in the
// status breakdown under its own key.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusUnknown   = "unknown"
)

// Run is one execution of a pipeline.
//
// PipelineID/PipelineName hold the embedded pipeline reference
// when the exporter included one. ConfigName is the fallback
// pipeline name from the run's configuration. Created is nil
// when the raw timestamp was absent or unparsable; such runs
// still count toward raw totals but are excluded from every
// time-bucketed aggregate.
type Run struct {
	ID           string
	PipelineID   string
	PipelineName string
	ConfigName   string
	UserID       string
	Created      *time.Time
	Status       string
}

// Pipeline is a named, reusable workflow definition.
type Pipeline struct {
	ID        string
	Name      string
	ProjectID string
}

// User is an account that triggered runs. Service accounts are
// excluded from user-level aggregation and awards.
type User struct {
	ID               string
	Name             string
	FullName         string
	AvatarURL        string
	IsServiceAccount bool
}

// Artifact is a stored output of a run.
type Artifact struct {
	ID      string
	Created *time.Time
}

// Model is a registered model. The per-model version count is
// best-effort: exporters disagree on the field name and some
// only expose a latest-version reference.
type Model struct {
	ID      string
	Created *time.Time

	// First present of the differently-named count fields,
	// nil when none was usable.
	NumVersions *int

	LatestVersionName   string
	LatestVersionID     string
	LatestVersionNumber *int
}

// VersionCount resolves the best available version count:
// the explicit count when present and non-negative, else 1 if
// any latest-version reference exists, else 0.
func (m Model) VersionCount() int {
	if m.NumVersions != nil && *m.NumVersions >= 0 {
		return *m.NumVersions
	}
	if m.LatestVersionName != "" || m.LatestVersionID != "" ||
		m.LatestVersionNumber != nil {
		return 1
	}
	return 0
}

// Schedule is a recurring trigger; only the activity flag is
// used (count of currently active schedules).
type Schedule struct {
	ID     string
	Active bool
}

// ServiceStateActive is the normalized state of a running
// deployed service.
const ServiceStateActive = "active"

// Service is a deployed endpoint; only its state is used.
type Service struct {
	ID    string
	State string
}

// Active reports whether the service is currently running.
func (s Service) Active() bool {
	return s.State == ServiceStateActive
}

// Project is an isolated workspace scoping its own record set
// (multi-project mode only).
type Project struct {
	ID          string
	Name        string
	DisplayName string
	Records     Set
}

// Label returns the human-facing project name, preferring the
// display name.
func (p Project) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// Set is one workspace's worth of records, fully materialized
// in memory before any aggregation stage runs.
type Set struct {
	Runs      []Run
	Pipelines []Pipeline
	Users     []User
	Artifacts []Artifact
	Models    []Model
	Schedules []Schedule
	Services  []Service
	Stacks    int
}

// Snapshot is the complete input to report generation: one
// record set per workspace, or a single top-level set when the
// source platform has no project scoping.
type Snapshot struct {
	Workspace string
	Year      int
	Records   Set
	Projects  []Project
}

// MultiProject reports whether the snapshot carries per-project
// record sets.
func (s Snapshot) MultiProject() bool {
	return len(s.Projects) > 0
}

// AllRecords returns the workspace-wide record set. In
// multi-project mode it is the concatenation of every project's
// records in project order; otherwise it is the top-level set.
func (s Snapshot) AllRecords() Set {
	if !s.MultiProject() {
		return s.Records
	}
	var all Set
	for _, p := range s.Projects {
		all.Runs = append(all.Runs, p.Records.Runs...)
		all.Pipelines = append(all.Pipelines, p.Records.Pipelines...)
		all.Users = append(all.Users, p.Records.Users...)
		all.Artifacts = append(all.Artifacts, p.Records.Artifacts...)
		all.Models = append(all.Models, p.Records.Models...)
		all.Schedules = append(all.Schedules, p.Records.Schedules...)
		all.Services = append(all.Services, p.Records.Services...)
		all.Stacks += p.Records.Stacks
	}
	// Users are workspace-global; the top-level list wins when
	// present so duplicates across projects don't inflate counts.
	if len(s.Records.Users) > 0 {
		all.Users = s.Records.Users
	}
	return all
}
