package domain

import "strings"

// Intent labels the five conversational moves the pipeline distinguishes.
type Intent string

const (
	IntentRecommend Intent = "recommend"
	IntentRefine    Intent = "refine"
	IntentExplain   Intent = "explain"
	IntentQuestion  Intent = "question"
	IntentOther     Intent = "other"
)

// ParseIntent validates a raw label, tolerating case and whitespace.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentRecommend:
		return IntentRecommend, true
	case IntentRefine:
		return IntentRefine, true
	case IntentExplain:
		return IntentExplain, true
	case IntentQuestion:
		return IntentQuestion, true
	case IntentOther:
		return IntentOther, true
	}
	return "", false
}

// Constraints carries the nullable numeric bounds of a plan. A nil field
// means "no bound".
type Constraints struct {
	DifficultyMin *int     `json:"difficulty_min"`
	DifficultyMax *int     `json:"difficulty_max"`
	InfraMin      *float64 `json:"infra_min"`
	InfraMax      *float64 `json:"infra_max"`
	ParkDistMax   *float64 `json:"park_dist_max"`
	DistanceMaxKm *float64 `json:"distance_max_km"`
	AltitudeMinM  *float64 `json:"altitude_min_m"`
	AltitudeMaxM  *float64 `json:"altitude_max_m"`
}

// Exclusions lists hard exclusions by natural-key component.
type Exclusions struct {
	Mountains []string `json:"mountains"`
	Trails    []string `json:"trails"`
}

// Plan is the structured query the translator emits and the recommendation
// engine consumes. It is the contract between free-text preference and
// deterministic filtering.
type Plan struct {
	Intent              Intent      `json:"intent"`
	ClusterPreference   Cluster     `json:"cluster_preference"`
	Constraints         Constraints `json:"constraints"`
	Exclude             Exclusions  `json:"exclude"`
	UnavailableNeeds    []string    `json:"unavailable_needs"`
	ClarifyingQuestions []string    `json:"clarifying_questions"`
	NotesForUI          string      `json:"notes_for_ui"`
}

// NewOpenPlan builds the total fallback plan: no cluster preference, no
// bounds, no exclusions. Used whenever translation cannot produce a
// trustworthy structured result.
func NewOpenPlan(intent Intent, note string) Plan {
	return Plan{
		Intent:            intent,
		ClusterPreference: ClusterAny,
		Exclude:           Exclusions{Mountains: []string{}, Trails: []string{}},
		UnavailableNeeds:  []string{},
		NotesForUI:        note,
	}
}

// ExcludeAllMountainsExcept adds every catalog mountain other than keep to
// the plan's mountain exclusions, deduplicating against entries already
// present. Used for single-mountain scoping when the user names a mountain.
func (p *Plan) ExcludeAllMountainsExcept(keep string, allMountains []string) {
	present := make(map[string]struct{}, len(p.Exclude.Mountains))
	for _, m := range p.Exclude.Mountains {
		present[m] = struct{}{}
	}
	for _, m := range allMountains {
		if m == keep {
			continue
		}
		if _, ok := present[m]; ok {
			continue
		}
		present[m] = struct{}{}
		p.Exclude.Mountains = append(p.Exclude.Mountains, m)
	}
}
