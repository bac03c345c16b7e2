package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"trail-orchestrator/internal/domain"
)

// Classifier maps one free-text user turn to an intent. Implementations
// are total: they always return a usable intent, never an error.
type Classifier interface {
	Classify(ctx context.Context, userText string, hasPriorResults bool) domain.Intent
}

// Pattern groups for the rule-based strategy, in precedence order: refine
// signals first, then explain, recommend, question. First matching group
// wins; there is no scoring. The catalog and most of its users are Korean,
// so each group carries the Korean source phrases alongside English
// equivalents.
var (
	refinePatterns = compileAll(
		`더\s*(한적|조용|사람\s*적)`,
		`더\s*(쉬운|가벼운|초보)`,
		`더\s*(뷰|경치)`,
		`(별로|마음에\s*안|다른\s*거|다시|바꿔)`,
		`(너무\s*멀|가까운\s*걸로|거리)`,
		`(좀\s*더|조금\s*더|덜)`,
		`(?i)\b(easier|harder|quieter|shorter|longer|closer)\b`,
		`(?i)\btoo\s+(far|hard|easy|long|crowded)\b`,
		`(?i)\b(something else|different one|another one|not that one)\b`,
	)
	explainPatterns = compileAll(
		`(왜|이유|근거).*(추천|나왔|골랐)`,
		`(설명).*(해줘|해봐|해주세요)`,
		`(이\s*결과).*(왜|이유)`,
		`(어떻게|무슨\s*기준)`,
		`(?i)\bwhy\b.*\b(recommend|pick|chose|choose)`,
		`(?i)\b(explain|tell me (more )?about)\b`,
	)
	recommendPatterns = compileAll(
		`(추천|갈만한|어디\s*가|코스|등산로)`,
		`(찾아줘|골라줘|제안해줘|보여줘)`,
		`(어디|어느|뭐)\s*(좋|괜찮)`,
		`(?i)\b(recommend|suggest|find me|show me|looking for)\b`,
		`(?i)\b(trail|course|hike|hiking)\b`,
	)
	questionPatterns = compileAll(
		`(뭐야|어때|가능|있어|없어|언제|어떻게)`,
		`(기준|정의|의미|특징)`,
		`(몇\s*개|얼마나|어느\s*정도)`,
		`(?i)\b(what is|what's|how many|how much|is there|can i|does it)\b`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// RuleClassifier is the pattern-matching strategy. It is deterministic and
// needs no model call.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (c *RuleClassifier) Classify(_ context.Context, userText string, hasPriorResults bool) domain.Intent {
	m := strings.TrimSpace(userText)

	if matchAny(refinePatterns, m) {
		// There is nothing to refine before the first result set; treat the
		// turn as a fresh recommendation request instead.
		if hasPriorResults {
			return domain.IntentRefine
		}
		return domain.IntentRecommend
	}
	if matchAny(explainPatterns, m) {
		return domain.IntentExplain
	}
	if matchAny(recommendPatterns, m) {
		return domain.IntentRecommend
	}
	if matchAny(questionPatterns, m) {
		return domain.IntentQuestion
	}
	return domain.IntentOther
}

// ModelClassifier delegates classification to the completion client at
// temperature zero. Any transport failure or off-vocabulary label defaults
// to recommend: the system is biased toward attempting a recommendation
// rather than stalling.
type ModelClassifier struct {
	llm    domain.CompletionClient
	logger *slog.Logger
}

func NewModelClassifier(llm domain.CompletionClient, logger *slog.Logger) *ModelClassifier {
	return &ModelClassifier{llm: llm, logger: logger}
}

func (c *ModelClassifier) Classify(ctx context.Context, userText string, hasPriorResults bool) domain.Intent {
	raw, err := c.llm.Complete(ctx, intentSystemPrompt, buildIntentUserPrompt(userText, hasPriorResults), intentTemperature)
	if err != nil {
		c.logger.Warn("intent classification failed, defaulting to recommend",
			slog.String("error", err.Error()))
		return domain.IntentRecommend
	}

	intent, ok := domain.ParseIntent(raw)
	if !ok {
		c.logger.Warn("invalid intent label from llm, defaulting to recommend",
			slog.String("label", strings.TrimSpace(raw)))
		return domain.IntentRecommend
	}
	return intent
}

var (
	_ Classifier = (*RuleClassifier)(nil)
	_ Classifier = (*ModelClassifier)(nil)
)
