package stats

import (
	"fmt"
	"math"
	"time"
)

// FunFacts holds the two parallel narrative lists. Both are
// built from the same ordered catalogue: when a fact's
// condition fails, both lists shorten in lockstep, so index i
// always describes the same fact in either variant.
type FunFacts struct {
	// Specific names real pipelines and projects.
	Specific []string `json:"specific"`
	// Generic substitutes de-identified phrasing and is safe to
	// publish alongside the anonymization maps.
	Generic []string `json:"generic"`
}

// add appends a fact to both variants.
func (f *FunFacts) add(specific, generic string) {
	f.Specific = append(f.Specific, specific)
	f.Generic = append(f.Generic, generic)
}

// addBoth appends the same sentence to both variants, for facts
// that carry no identifying names.
func (f *FunFacts) addBoth(fact string) {
	f.add(fact, fact)
}

// ComputeFunFacts renders the fixed fact catalogue from the
// other stages' outputs. leadingProject is the top project's
// display name in multi-project mode, "" otherwise.
func ComputeFunFacts(
	core CoreStats, analytics TimeAnalytics,
	topPipelines []PipelineCount, leadingProject string,
	year int,
) FunFacts {
	// Both lists marshal as [] when no fact fires, never null.
	facts := FunFacts{Specific: []string{}, Generic: []string{}}

	if analytics.FirstRun != nil {
		if first, err := time.Parse(time.RFC3339, *analytics.FirstRun); err == nil {
			facts.addBoth(fmt.Sprintf(
				"Your team's first run of %d was on %s at %s",
				year, first.Format("January 02"), first.Format("15:04"),
			))
		}
	}

	if analytics.BusiestDay != nil {
		facts.addBoth(fmt.Sprintf(
			"%s was your most productive day with %d runs",
			*analytics.BusiestDay, analytics.BusiestDayRuns,
		))
	}

	if analytics.BusiestMonth != nil {
		facts.addBoth(fmt.Sprintf(
			"%s was your busiest month with %d pipeline runs",
			*analytics.BusiestMonth, analytics.BusiestMonthRuns,
		))
	}

	if analytics.WeekendRuns > 0 {
		total := analytics.WeekendRuns + analytics.WeekdayRuns
		pct := int(math.Round(
			float64(analytics.WeekendRuns) / float64(total) * 100,
		))
		facts.addBoth(fmt.Sprintf(
			"%d%% of your runs happened on weekends 🎉", pct,
		))
	}

	if len(topPipelines) > 0 {
		top := topPipelines[0]
		facts.add(
			fmt.Sprintf(
				"Your most-run pipeline was '%s' with %d executions",
				top.Name, top.Runs,
			),
			fmt.Sprintf(
				"Your most popular workflow ran %d times", top.Runs,
			),
		)
	}

	switch {
	case core.SuccessRate >= 90:
		facts.addBoth(fmt.Sprintf(
			"Your team achieved a %v%% success rate - impressive! 🎯",
			core.SuccessRate,
		))
	case core.SuccessRate >= 70:
		facts.addBoth(fmt.Sprintf(
			"Your team's success rate was %v%% - solid experimentation!",
			core.SuccessRate,
		))
	}

	switch {
	case core.TotalRuns >= 1000:
		facts.addBoth("You crossed the 1,000 pipeline runs milestone! 🚀")
	case core.TotalRuns >= 500:
		facts.addBoth("You ran over 500 pipelines this year!")
	case core.TotalRuns >= 100:
		facts.addBoth(fmt.Sprintf(
			"You hit triple digits with %d pipeline runs!", core.TotalRuns,
		))
	}

	if core.ModelsCreated > 0 {
		facts.addBoth(fmt.Sprintf(
			"Your team created %d models with %d total versions",
			core.ModelsCreated, core.ModelVersions,
		))
	}

	if leadingProject != "" {
		facts.add(
			fmt.Sprintf(
				"'%s' led the workspace in pipeline runs", leadingProject,
			),
			"One project led the workspace in pipeline runs",
		)
	}

	return facts
}
