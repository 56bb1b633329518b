package history

import (
	"fmt"
	"sort"
)

// TrendPoint is one run with deltas against the run before it.
type TrendPoint struct {
	Run           Run
	DeltaFiles    int
	DeltaMatches  int
	DeltaFailures int
}

// BuildTrend orders runs by time and computes per-run deltas.
func BuildTrend(runs []Run) ([]TrendPoint, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs to build a trend from")
	}
	ordered := append([]Run(nil), runs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	points := make([]TrendPoint, 0, len(ordered))
	for i, run := range ordered {
		p := TrendPoint{Run: run}
		if i > 0 {
			prev := ordered[i-1]
			p.DeltaFiles = run.Files - prev.Files
			p.DeltaMatches = run.Matches - prev.Matches
			p.DeltaFailures = run.Failures - prev.Failures
		}
		points = append(points, p)
	}
	return points, nil
}
