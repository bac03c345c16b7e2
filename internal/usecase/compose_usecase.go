package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"trail-orchestrator/internal/domain"
)

// Fixed responses that never involve a model call.
const (
	noMatchMessage = "Sorry, I couldn't find a trail that fits those conditions. 😅\n\nCould you relax them a little and try again?"

	noPriorResultsMessage = "There is no recommendation yet. Ask me for a trail first! 😊"

	explainFallbackMessage = "The trails I recommended are the ones that best matched your conditions! 😊"

	guidanceMessage = `Sorry, I didn't quite get that. 😅

I'm a hiking-trail recommendation assistant. Try something like:

- "somewhere quiet and healing"
- "an easy course for a family trip"
- "a place with a great view"
- "something easier" (to adjust the last recommendation)
- "tell me more about Garisan course 01"

Feel free to ask anything about the trails or mountains! 😊`

	greetingMessage = `Hi! I'm your hiking-trail recommendation assistant. ⛰️

Tell me what kind of hike you're after, for example:

- somewhere quiet with good scenery to unwind
- a tough course for a workout
- a photogenic spot
- seasonal views (foliage, snow...)

Let me know the style you want, and a preferred difficulty if you have one!`
)

// ComposeResponseUsecase renders result sets and lookups back into natural
// language. Every model-backed path has a deterministic, data-grounded
// fallback, so each method is total: it always returns non-empty text. The
// degraded flag reports that a fallback template was used instead of
// generated prose.
type ComposeResponseUsecase interface {
	Recommendation(ctx context.Context, userText string, plan domain.Plan, results []domain.TrailRecord) (text string, degraded bool)
	Explanation(ctx context.Context, userText string, lastPlan *domain.Plan, lastResults []domain.TrailRecord) (text string, degraded bool)
	Question(ctx context.Context, userText string) (text string, degraded bool)
	Guidance() string
	Greeting() string
}

type composeResponseUsecase struct {
	llm     domain.CompletionClient
	catalog *domain.Catalog
	logger  *slog.Logger
}

func NewComposeResponseUsecase(llm domain.CompletionClient, catalog *domain.Catalog, logger *slog.Logger) ComposeResponseUsecase {
	return &composeResponseUsecase{llm: llm, catalog: catalog, logger: logger}
}

func (u *composeResponseUsecase) Guidance() string { return guidanceMessage }
func (u *composeResponseUsecase) Greeting() string { return greetingMessage }

func (u *composeResponseUsecase) Recommendation(ctx context.Context, userText string, plan domain.Plan, results []domain.TrailRecord) (string, bool) {
	if len(results) == 0 {
		return noMatchMessage, false
	}

	facts := trailFacts(results, 3)
	text, err := u.llm.Complete(ctx, recommendSystemPrompt, buildRecommendUserPrompt(userText, facts), recommendTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		u.logComposeFailure(ctx, "recommendation", err)
		return recommendationTemplate(results), true
	}
	return text, false
}

func (u *composeResponseUsecase) Explanation(ctx context.Context, userText string, lastPlan *domain.Plan, lastResults []domain.TrailRecord) (string, bool) {
	if len(lastResults) == 0 {
		return noPriorResultsMessage, false
	}

	if record, ok := findMentionedTrail(userText, lastResults); ok {
		text, err := u.llm.Complete(ctx, detailSystemPrompt, buildDetailUserPrompt(record), detailTemperature)
		if err != nil || strings.TrimSpace(text) == "" {
			u.logComposeFailure(ctx, "trail_detail", err)
			return detailTemplate(record), true
		}
		return text, false
	}

	text, err := u.llm.Complete(ctx, explainSystemPrompt, buildExplainUserPrompt(userText, lastPlan, lastResults), explainTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		u.logComposeFailure(ctx, "explanation", err)
		return explainFallbackMessage, true
	}
	return text, false
}

func (u *composeResponseUsecase) Question(ctx context.Context, userText string) (string, bool) {
	if mountain, ok := u.catalog.ExtractMountain(userText); ok {
		summary, found := u.catalog.SummarizeMountain(mountain)
		if !found {
			return fmt.Sprintf("Sorry, I couldn't find any data about %s. 😅", mountain), false
		}
		text, err := u.llm.Complete(ctx, mountainSystemPrompt, buildMountainUserPrompt(userText, summary), mountainTemperature)
		if err != nil || strings.TrimSpace(text) == "" {
			u.logComposeFailure(ctx, "mountain_question", err)
			return mountainTemplate(summary), true
		}
		return text, false
	}

	text, err := u.llm.Complete(ctx, qaSystemPrompt, buildQAUserPrompt(userText, u.catalog.Summary()), qaTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		u.logComposeFailure(ctx, "general_question", err)
		return "Sorry, I can't answer that precisely. 😅\n\nTell me the style of hike you want and I'll find something that fits!", true
	}
	return text, false
}

func (u *composeResponseUsecase) logComposeFailure(ctx context.Context, stage string, err error) {
	msg := "empty llm response"
	if err != nil {
		msg = err.Error()
	}
	u.logger.WarnContext(ctx, "composition degraded to template",
		slog.String("stage", stage),
		slog.String("error", msg))
}

// mentionFillers are stripped before matching a result name against the
// user text, mirroring the catalog-level mountain extraction.
var mentionFillers = []string{" ", "_", "번", "코스", "course", "trail"}

func normalizeMention(s string) string {
	s = strings.ToLower(s)
	for _, f := range mentionFillers {
		s = strings.ReplaceAll(s, f, "")
	}
	return s
}

// findMentionedTrail looks for a prior result whose mountain or course
// name the user text mentions, using normalized containment.
func findMentionedTrail(userText string, results []domain.TrailRecord) (domain.TrailRecord, bool) {
	cleaned := normalizeMention(userText)
	for _, r := range results {
		mountain := normalizeMention(r.MountainName)
		course := normalizeMention(r.CourseName)
		if (mountain != "" && strings.Contains(cleaned, mountain)) ||
			(course != "" && strings.Contains(cleaned, course)) ||
			strings.Contains(userText, r.MountainName) ||
			strings.Contains(userText, r.CourseName) {
			return r, true
		}
	}
	return domain.TrailRecord{}, false
}

// recommendationTemplate is the deterministic rendering used when the
// generative call is unavailable. Same facts, fixed shape.
func recommendationTemplate(results []domain.TrailRecord) string {
	var sb strings.Builder
	sb.WriteString("I found trails matching your conditions.\n\n🏔️ Recommended trails\n\n")
	for _, r := range topN(results, 3) {
		fmt.Fprintf(&sb, "**%s** (%s)\n", r.DisplayName(), r.RegionLabel)
		fmt.Fprintf(&sb, "Why: difficulty %s, strong %s score.\n", r.DifficultyDetail, r.StandoutTrait)
		fmt.Fprintf(&sb, "At a glance: %.1f km total, about %s.\n\n", r.TotalDistanceKm, r.EstimatedDuration)
	}
	sb.WriteString("How do these look? Tell me if you'd like other options! 🌲")
	return sb.String()
}

func detailTemplate(r domain.TrailRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's **%s** in %s.\n\n", r.DisplayName(), r.RegionLabel)
	sb.WriteString("**Basics**\n")
	fmt.Fprintf(&sb, "- difficulty: %s\n", r.DifficultyDetail)
	fmt.Fprintf(&sb, "- total distance: %.1f km\n", r.TotalDistanceKm)
	fmt.Fprintf(&sb, "- max altitude: %.0f m\n", r.MaxAltitudeM)
	fmt.Fprintf(&sb, "- estimated time: %s\n\n", r.EstimatedDuration)
	sb.WriteString("**Access**\n")
	fmt.Fprintf(&sb, "- parking: %s (%s)\n", r.ParkingName, formatDistance(r.ParkingDistanceM))
	fmt.Fprintf(&sb, "- public transport: %s (%s)\n\n", r.TransitName, formatDistance(r.TransitDistanceM))
	fmt.Fprintf(&sb, "**Appeal**\nIts biggest draw is **%s**.\n\nAsk me if you want to know more! 😊", r.StandoutTrait)
	return sb.String()
}

func mountainTemplate(s domain.MountainSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Let me tell you about %s!\n\n", s.Mountain)
	fmt.Fprintf(&sb, "%s is in %s and has %d courses.\n\n", s.Mountain, s.Region, s.CourseCount)
	fmt.Fprintf(&sb, "Its main appeal is **%s**, and courses average about %.1f km.\n\n", s.StandoutTrait, s.MeanDistanceKm)
	sb.WriteString("Tell me the style of course you want and I'll recommend one! 😊")
	return sb.String()
}

var _ ComposeResponseUsecase = (*composeResponseUsecase)(nil)
