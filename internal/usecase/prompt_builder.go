package usecase

import (
	"fmt"
	"strings"

	"trail-orchestrator/internal/domain"
)

// Fixed call temperatures. Classification and translation need stable
// structure; composition wants phrasing variety.
const (
	intentTemperature    = 0.0
	translateTemperature = 0.2
	recommendTemperature = 1.0
	explainTemperature   = 0.7
	detailTemperature    = 0.7
	mountainTemperature  = 0.8
	qaTemperature        = 0.7
)

const intentSystemPrompt = `You are the intent classifier of a hiking-trail recommendation chatbot.

Classify the user input into exactly one of five labels:

1. recommend: a new trail recommendation request.
   Examples: "somewhere healing", "a place to go with family", "Bukhansan please", "beginner level", "good photo spots".
   A mountain name alone is a recommendation request. Style or difficulty keywords alone are a recommendation request.
2. refine: an adjustment of the previous recommendation.
   Examples: "somewhere easier", "a bit quieter", "not great", "a different one".
   Words like "more", "less", "instead" usually signal refinement.
3. explain: a request for the reasoning behind a recommendation or for details of a specific recommended course.
   Examples: "why did you pick that?", "tell me about Garisan course 01", "what was the reason?".
4. question: a general question about a mountain or hiking, not a recommendation.
   Examples: "what kind of mountain is Bukhansan?", "how many courses are there?".
5. other: none of the above. Examples: "hello", "thanks", "how do I make pancakes".

Rules:
- Mountain name plus anything else is usually recommend (exception: "what kind of mountain is X?" is question).
- A question mark does not prevent recommend when the text asks to find or suggest something.
- When in doubt, choose recommend; recommendation is the core function.

Output exactly one of: recommend, refine, explain, question, other.
No explanation, no punctuation, a single word only.`

func buildIntentUserPrompt(userText string, hasPriorResults bool) string {
	var sb strings.Builder
	sb.WriteString("User input: \"")
	sb.WriteString(userText)
	sb.WriteString("\"\n")
	if hasPriorResults {
		sb.WriteString("\nNote: a previous recommendation result exists. The user may be talking about it.\n")
	}
	sb.WriteString("\nClassify the intent. Output exactly one of recommend, refine, explain, question, other.")
	return sb.String()
}

const translateSystemPrompt = `You are the translator of a hiking-trail recommendation system.

Rules:
1) Never recommend or name specific mountains or trails yourself.
2) Output a single JSON object only. No prose, no markdown, no code fences.
3) Map the user's natural language onto the rule-based engine parameters below.
4) Needs the dataset cannot satisfy (toilets, dogs allowed, night hiking, live closure info, exact gradients) go into unavailable_needs; generate at most 2 clarifying_questions.
5) When a mapping involves guesswork (e.g. "quiet" ~ low infra score), leave a short note in notes_for_ui.

Available clusters:
- seasonal: seasonal beauty (spring blossoms, autumn foliage)
- view: scenery and photo spots
- family: good access and plenty of amenities
- healing: quiet and peaceful
- hidden: remote, little-known places
- any: no preference

Available numeric filters:
- difficulty_min, difficulty_max: beginner(1), novice(2), intermediate(3), advanced(4), expert(5), superhuman(6), godlike(7)
- infra_min, infra_max: tourism infrastructure score, 0-10
- park_dist_max: distance to parking in meters (2000 or less recommended)
- distance_max_km: total course distance in kilometers
- altitude_min_m, altitude_max_m: maximum altitude in meters

Mapping hints (use these where they apply):
- quiet / peaceful / few people -> healing or hidden cluster, infra_max low (5 or less)
- view / scenery / photos -> view cluster
- beginner / light / easy / healing -> healing or family, difficulty_max intermediate(3) or less
- workout / tough / training / challenge -> difficulty_min advanced(4) or more
- family / kids / amenities -> family cluster, infra_min high (5 or more), difficulty_max novice(2) or less
- easy access / nearby -> park_dist_max 500 or less
- short / light -> distance_max_km low (5 km or less)
- high mountain / alpine -> altitude_min_m high (1000 m or more)
- foliage / blossoms / seasons -> seasonal cluster

Output exactly this schema (key names and structure are fixed):
{
  "intent": "recommend" | "refine",
  "cluster_preference": "seasonal" | "view" | "family" | "healing" | "hidden" | "any",
  "constraints": {
    "difficulty_min": int 1-7 | null,
    "difficulty_max": int 1-7 | null,
    "infra_min": float 0-10 | null,
    "infra_max": float 0-10 | null,
    "park_dist_max": int meters | null,
    "distance_max_km": float | null,
    "altitude_min_m": int | null,
    "altitude_max_m": int | null
  },
  "exclude": {"mountains": [string], "trails": [string]},
  "unavailable_needs": [string],
  "clarifying_questions": [string],
  "notes_for_ui": string
}`

func buildTranslateUserPrompt(userText string, intent domain.Intent, lastPlan *domain.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User input: %q\nIntent: %s\n", userText, intent)

	if intent == domain.IntentRefine && lastPlan != nil {
		fmt.Fprintf(&sb, "\nPrevious parameters:\n- cluster: %s\n- constraints: %s\n", lastPlan.ClusterPreference, formatConstraints(lastPlan.Constraints))
		sb.WriteString("\nAdjust the previous parameters to reflect the user's feedback instead of starting over.\n")
	}

	sb.WriteString("\nOutput the JSON object only.")
	return sb.String()
}

const recommendSystemPrompt = `You are a friendly hiking-trail recommendation assistant.

Hard rules:
- Use only the trail data provided in the message.
- Never mention a mountain or course that is not in the provided data.
- Never invent facts beyond the provided fields.

Role:
- Explain the results of the user's request naturally, as in a conversation.
- Introduce each recommended trail and its concrete characteristics.

Variety:
- Open differently every time (summarize the request, jump straight in, empathize, or ask a light question).
- Vary sentence length, ordering, and how you phrase the reasons.`

func buildRecommendUserPrompt(userText, trailFacts string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User request: %q\n\nRecommended trails:\n%s\n", userText, trailFacts)
	sb.WriteString("\nRecommend these trails naturally. Mention only the trails above, and answer in a different style each time.")
	return sb.String()
}

const explainSystemPrompt = `You explain recommendation results briefly and convincingly.

Rules:
- Never invent facts that are not in the data.
- Ground every statement in the scores, cluster, constraints, and interpretation notes provided.
- Keep it to 5-7 sentences, in a friendly natural tone.`

func buildExplainUserPrompt(userText string, plan *domain.Plan, results []domain.TrailRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User message: %s\n\nApplied criteria:\n", userText)
	if plan != nil {
		fmt.Fprintf(&sb, "- cluster: %s\n- constraints: %s\n- interpretation notes: %s\n", plan.ClusterPreference, formatConstraints(plan.Constraints), plan.NotesForUI)
	} else {
		sb.WriteString("- no structured criteria recorded\n")
	}
	sb.WriteString("\nTop recommended trails:\n")
	for _, r := range topN(results, 3) {
		fmt.Fprintf(&sb, "- %s: difficulty %s, infra %.1f, appeal %.1f\n", r.DisplayName(), r.DifficultyDetail, r.InfraScore, r.OverallAppealScore)
	}
	sb.WriteString("\nExplain the reasoning using only the information above.")
	return sb.String()
}

const detailSystemPrompt = `You are a friendly hiking-trail guide.

When describing a specific trail:
1. Introduce the location and basic facts.
2. Cover practical details: difficulty, distance, expected time.
3. Cover access: parking and public transport.
4. Describe the appeal concretely.
5. Say who the course suits.

Natural, friendly tone. Every fact must come from the provided data.`

func buildDetailUserPrompt(r domain.TrailRecord) string {
	var sb strings.Builder
	sb.WriteString("Describe this trail in detail:\n\n")
	sb.WriteString(trailFactSheet(r))
	sb.WriteString("\nHelp the user decide whether to pick this course.")
	return sb.String()
}

const mountainSystemPrompt = `You are a friendly hiking-trail guide.

When answering a question about a specific mountain:
1. Introduce the basic facts.
2. Briefly describe its courses.
3. If the user mentioned conditions (difficulty etc.), point at matching courses.
4. Invite a more detailed recommendation.

Natural, friendly tone. Use only the provided data.`

func buildMountainUserPrompt(userText string, s domain.MountainSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User question: %q\n\n%s facts:\n", userText, s.Mountain)
	fmt.Fprintf(&sb, "- region: %s\n- courses: %d\n- most common difficulty: %s\n- mean distance: %.1f km\n- mean max altitude: %.0f m\n- main appeal: %s\n\nCourse list:\n",
		s.Region, s.CourseCount, s.CommonDifficulty, s.MeanDistanceKm, s.MeanAltitudeM, s.StandoutTrait)
	for _, r := range s.Courses {
		fmt.Fprintf(&sb, "- %s: difficulty %s, %.1f km\n", r.CourseName, r.DifficultyDetail, r.TotalDistanceKm)
	}
	sb.WriteString("\nAnswer naturally from the facts above, and suggest matching courses when the user stated conditions.")
	return sb.String()
}

const qaSystemPrompt = `You answer using the internal trail dataset only.

Rules:
- If the dataset does not contain the information, say it cannot be confirmed.
- Prefer dataset summaries (means, distributions, cluster traits).
- End with one question that could lead into a recommendation.
- Natural, friendly tone.`

func buildQAUserPrompt(question string, s domain.CatalogSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nDataset summary:\n", question)
	fmt.Fprintf(&sb, "- trails: %d across %d mountains\n- mean appeal score: %.1f\n- mean infrastructure score: %.1f\n", s.TrailCount, s.MountainCount, s.MeanAppeal, s.MeanInfra)
	if len(s.Mountains) > 0 {
		fmt.Fprintf(&sb, "- mountains (sample): %s\n", strings.Join(s.Mountains, ", "))
	}
	sb.WriteString("\nAnswer with this information only.")
	return sb.String()
}

// trailFactSheet renders every material attribute of one record for the
// per-record explanation prompt and its fallback template.
func trailFactSheet(r domain.TrailRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trail: %s\n", r.DisplayName())
	fmt.Fprintf(&sb, "Region: %s\n", r.RegionLabel)
	fmt.Fprintf(&sb, "Difficulty: %s\n", r.DifficultyDetail)
	fmt.Fprintf(&sb, "Total distance: %.1f km\n", r.TotalDistanceKm)
	fmt.Fprintf(&sb, "Max altitude: %.0f m\n", r.MaxAltitudeM)
	fmt.Fprintf(&sb, "Estimated time: %s\n", r.EstimatedDuration)
	fmt.Fprintf(&sb, "Parking: %s (%s)\n", r.ParkingName, formatDistance(r.ParkingDistanceM))
	fmt.Fprintf(&sb, "Bus stop: %s (%s)\n", r.TransitName, formatDistance(r.TransitDistanceM))
	fmt.Fprintf(&sb, "Infrastructure score: %.1f/10\n", r.InfraScore)
	fmt.Fprintf(&sb, "Overall appeal score: %.1f\n", r.OverallAppealScore)
	fmt.Fprintf(&sb, "Standout trait: %s (%.1f)\n", r.StandoutTrait, r.StandoutScore)
	return sb.String()
}

// trailFacts renders the compact top-n summary the recommendation prompt
// and its fallback share, so degraded answers stay grounded in the same
// facts as generated ones.
func trailFacts(results []domain.TrailRecord, n int) string {
	blocks := make([]string, 0, n)
	for _, r := range topN(results, n) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%s)\n", r.DisplayName(), r.RegionLabel)
		fmt.Fprintf(&sb, "- difficulty: %s\n", r.DifficultyDetail)
		fmt.Fprintf(&sb, "- total distance: %.1f km\n", r.TotalDistanceKm)
		fmt.Fprintf(&sb, "- max altitude: %.0f m\n", r.MaxAltitudeM)
		fmt.Fprintf(&sb, "- estimated time: %s\n", r.EstimatedDuration)
		fmt.Fprintf(&sb, "- infrastructure score: %.1f/10\n", r.InfraScore)
		fmt.Fprintf(&sb, "- appeal score: %.1f\n", r.OverallAppealScore)
		fmt.Fprintf(&sb, "- standout trait: %s (%.1f)", r.StandoutTrait, r.StandoutScore)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

func formatDistance(m float64) string {
	if m == domain.NoDataSentinel {
		return "no data"
	}
	return fmt.Sprintf("%.0f m from trailhead", m)
}

func formatConstraints(c domain.Constraints) string {
	var parts []string
	add := func(name string, v any) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, v))
	}
	if c.DifficultyMin != nil {
		add("difficulty_min", *c.DifficultyMin)
	}
	if c.DifficultyMax != nil {
		add("difficulty_max", *c.DifficultyMax)
	}
	if c.InfraMin != nil {
		add("infra_min", *c.InfraMin)
	}
	if c.InfraMax != nil {
		add("infra_max", *c.InfraMax)
	}
	if c.ParkDistMax != nil {
		add("park_dist_max", *c.ParkDistMax)
	}
	if c.DistanceMaxKm != nil {
		add("distance_max_km", *c.DistanceMaxKm)
	}
	if c.AltitudeMinM != nil {
		add("altitude_min_m", *c.AltitudeMinM)
	}
	if c.AltitudeMaxM != nil {
		add("altitude_max_m", *c.AltitudeMaxM)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func topN(results []domain.TrailRecord, n int) []domain.TrailRecord {
	if len(results) > n {
		return results[:n]
	}
	return results
}
