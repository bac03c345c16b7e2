package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"trail-orchestrator/internal/domain"
)

// requiredPlanKeys are the top-level keys a translator response must carry.
// A response missing any of them falls back to the open plan instead of
// being repaired field by field; downstream code never branches on a
// partially populated plan.
var requiredPlanKeys = []string{
	"intent",
	"cluster_preference",
	"constraints",
	"exclude",
	"unavailable_needs",
	"clarifying_questions",
	"notes_for_ui",
}

// PlanValidator parses and checks the JSON plan emitted by the LLM.
type PlanValidator struct{}

func NewPlanValidator() PlanValidator {
	return PlanValidator{}
}

// Validate turns a raw LLM response into a well-formed plan. The intent is
// always forced to the classifier's decision regardless of what the model
// proposed. An error means the caller should use the fallback open plan.
func (v PlanValidator) Validate(raw string, intent domain.Intent) (*domain.Plan, error) {
	trimmed := stripCodeFence(raw)
	if trimmed == "" {
		return nil, errors.New("llm response is empty")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &keys); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}
	for _, key := range requiredPlanKeys {
		if _, ok := keys[key]; !ok {
			return nil, fmt.Errorf("plan response missing required key %q", key)
		}
	}

	var plan domain.Plan
	if err := json.Unmarshal([]byte(trimmed), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan response: %w", err)
	}

	plan.Intent = intent
	v.normalize(&plan)
	return &plan, nil
}

// normalize clamps list lengths, defaults absent collections, and nulls
// out-of-domain constraint values so every field is either nil or inside
// its declared domain.
func (v PlanValidator) normalize(plan *domain.Plan) {
	if cluster, ok := domain.ParseCluster(string(plan.ClusterPreference)); ok {
		plan.ClusterPreference = cluster
	} else {
		plan.ClusterPreference = domain.ClusterAny
	}

	if len(plan.ClarifyingQuestions) > 2 {
		plan.ClarifyingQuestions = plan.ClarifyingQuestions[:2]
	}
	if plan.UnavailableNeeds == nil {
		plan.UnavailableNeeds = []string{}
	}
	if plan.Exclude.Mountains == nil {
		plan.Exclude.Mountains = []string{}
	}
	if plan.Exclude.Trails == nil {
		plan.Exclude.Trails = []string{}
	}

	c := &plan.Constraints
	c.DifficultyMin = clampIntDomain(c.DifficultyMin, domain.DifficultyMinLevel, domain.DifficultyMaxLevel)
	c.DifficultyMax = clampIntDomain(c.DifficultyMax, domain.DifficultyMinLevel, domain.DifficultyMaxLevel)
	c.InfraMin = clampFloatDomain(c.InfraMin, 0, 10)
	c.InfraMax = clampFloatDomain(c.InfraMax, 0, 10)
	c.ParkDistMax = dropNegative(c.ParkDistMax)
	c.DistanceMaxKm = dropNegative(c.DistanceMaxKm)
	c.AltitudeMinM = dropNegative(c.AltitudeMinM)
	c.AltitudeMaxM = dropNegative(c.AltitudeMaxM)
}

func clampIntDomain(v *int, lo, hi int) *int {
	if v == nil || *v < lo || *v > hi {
		return nil
	}
	return v
}

func clampFloatDomain(v *float64, lo, hi float64) *float64 {
	if v == nil || *v < lo || *v > hi {
		return nil
	}
	return v
}

func dropNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// stripCodeFence defends against a model that wraps its JSON in a markdown
// fence despite the prompt forbidding it.
func stripCodeFence(raw string) string {
	t := strings.TrimSpace(raw)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.Trim(t, "`")
	t = strings.TrimSpace(t)
	if len(t) >= 4 && strings.EqualFold(t[:4], "json") {
		t = strings.TrimSpace(t[4:])
	}
	return t
}
