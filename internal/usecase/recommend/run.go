// Package recommend implements the deterministic filter-and-rank core of
// the trail pipeline. It is pure: no I/O, no model calls, no randomness.
package recommend

import (
	"sort"
	"strings"

	"trail-orchestrator/internal/domain"
)

// Run executes a plan against the catalog records and returns the top-k
// candidates ranked by overall appeal. All filter stages are conjunctive;
// each stage only narrows the candidate set. A contradictory plan (for
// example min above max) simply yields an empty result, never an error.
func Run(records []domain.TrailRecord, plan domain.Plan, topK int) []domain.TrailRecord {
	candidates := make([]domain.TrailRecord, len(records))
	copy(candidates, records)

	candidates = filterCluster(candidates, plan.ClusterPreference)
	candidates = filterDifficulty(candidates, plan.Constraints.DifficultyMin, plan.Constraints.DifficultyMax)
	candidates = filterInfra(candidates, plan.Constraints.InfraMin, plan.Constraints.InfraMax)
	candidates = filterParking(candidates, plan.Constraints.ParkDistMax)
	candidates = filterDistance(candidates, plan.Constraints.DistanceMaxKm)
	candidates = filterAltitude(candidates, plan.Constraints.AltitudeMinM, plan.Constraints.AltitudeMaxM)
	candidates = filterExclusions(candidates, plan.Exclude)

	rank(candidates)

	if topK >= 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

func filterCluster(in []domain.TrailRecord, pref domain.Cluster) []domain.TrailRecord {
	id, ok := pref.ID()
	if !ok {
		return in
	}
	out := in[:0]
	for _, r := range in {
		if r.ClusterID == id {
			out = append(out, r)
		}
	}
	return out
}

func filterDifficulty(in []domain.TrailRecord, min, max *int) []domain.TrailRecord {
	if min == nil && max == nil {
		return in
	}
	allowed := make(map[string]struct{})
	for _, label := range domain.ExpandDifficultyLevels(min, max) {
		allowed[label] = struct{}{}
	}
	out := in[:0]
	for _, r := range in {
		if _, ok := allowed[strings.TrimSpace(r.DifficultyTier)]; ok {
			out = append(out, r)
			continue
		}
		if _, ok := allowed[strings.TrimSpace(r.DifficultyDetail)]; ok {
			out = append(out, r)
		}
	}
	return out
}

func filterInfra(in []domain.TrailRecord, min, max *float64) []domain.TrailRecord {
	if min == nil && max == nil {
		return in
	}
	out := in[:0]
	for _, r := range in {
		if min != nil && r.InfraScore < *min {
			continue
		}
		if max != nil && r.InfraScore > *max {
			continue
		}
		out = append(out, r)
	}
	return out
}

// filterParking drops sentinel rows first: "no parking data" is not the
// same as "parking at the trailhead", so an active parking bound can never
// admit a record whose distance is unknown.
func filterParking(in []domain.TrailRecord, maxDist *float64) []domain.TrailRecord {
	if maxDist == nil {
		return in
	}
	out := in[:0]
	for _, r := range in {
		if r.ParkingDistanceM == domain.NoDataSentinel {
			continue
		}
		if r.ParkingDistanceM <= *maxDist {
			out = append(out, r)
		}
	}
	return out
}

func filterDistance(in []domain.TrailRecord, maxKm *float64) []domain.TrailRecord {
	if maxKm == nil {
		return in
	}
	out := in[:0]
	for _, r := range in {
		if r.TotalDistanceKm <= *maxKm {
			out = append(out, r)
		}
	}
	return out
}

func filterAltitude(in []domain.TrailRecord, min, max *float64) []domain.TrailRecord {
	if min == nil && max == nil {
		return in
	}
	out := in[:0]
	for _, r := range in {
		if min != nil && r.MaxAltitudeM < *min {
			continue
		}
		if max != nil && r.MaxAltitudeM > *max {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filterExclusions(in []domain.TrailRecord, excl domain.Exclusions) []domain.TrailRecord {
	if len(excl.Mountains) == 0 && len(excl.Trails) == 0 {
		return in
	}
	mountains := make(map[string]struct{}, len(excl.Mountains))
	for _, m := range excl.Mountains {
		mountains[strings.TrimSpace(m)] = struct{}{}
	}
	trails := make(map[string]struct{}, len(excl.Trails))
	for _, c := range excl.Trails {
		trails[strings.TrimSpace(c)] = struct{}{}
	}
	out := in[:0]
	for _, r := range in {
		if _, ok := mountains[strings.TrimSpace(r.MountainName)]; ok {
			continue
		}
		if _, ok := trails[strings.TrimSpace(r.CourseName)]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// rank orders by overall appeal descending. Equal appeal is broken by
// (mountain name, course name) ascending so the ordering never depends on
// catalog row order.
func rank(records []domain.TrailRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.OverallAppealScore != b.OverallAppealScore {
			return a.OverallAppealScore > b.OverallAppealScore
		}
		if a.MountainName != b.MountainName {
			return a.MountainName < b.MountainName
		}
		return a.CourseName < b.CourseName
	})
}
