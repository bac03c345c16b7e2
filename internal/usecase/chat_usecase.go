package usecase

import (
	"context"
	"log/slog"
	"time"

	"trail-orchestrator/internal/domain"
	"trail-orchestrator/internal/usecase/recommend"

	"github.com/google/uuid"
)

// HandleTurnInput carries one user turn plus the caller-owned state.
// TurnID is optional; callers that stamp it into their logging context
// pass it here so the archived record carries the same id.
type HandleTurnInput struct {
	SessionID string
	TurnID    uuid.UUID
	UserText  string
	State     domain.ConversationState
}

// HandleTurnOutput returns the response text and the updated state the
// caller must persist until the next turn.
type HandleTurnOutput struct {
	Response string
	State    domain.ConversationState
	Intent   domain.Intent
	Degraded bool
}

// ChatUsecase is the conversation orchestrator. HandleTurn is total: no
// failure of the classifier, translator, or composer escapes it; every
// turn produces a response and a consistent updated state.
type ChatUsecase interface {
	HandleTurn(ctx context.Context, input HandleTurnInput) HandleTurnOutput
	Greeting() string
}

type chatUsecase struct {
	catalog    *domain.Catalog
	classifier Classifier
	translator TranslatePreferencesUsecase
	composer   ComposeResponseUsecase
	sink       domain.TurnSink
	topK       int
	logger     *slog.Logger
}

func NewChatUsecase(
	catalog *domain.Catalog,
	classifier Classifier,
	translator TranslatePreferencesUsecase,
	composer ComposeResponseUsecase,
	sink domain.TurnSink,
	topK int,
	logger *slog.Logger,
) ChatUsecase {
	return &chatUsecase{
		catalog:    catalog,
		classifier: classifier,
		translator: translator,
		composer:   composer,
		sink:       sink,
		topK:       topK,
		logger:     logger,
	}
}

func (u *chatUsecase) Greeting() string { return u.composer.Greeting() }

func (u *chatUsecase) HandleTurn(ctx context.Context, input HandleTurnInput) HandleTurnOutput {
	state := input.State
	if input.TurnID == uuid.Nil {
		input.TurnID = uuid.New()
	}
	intent := u.classifier.Classify(ctx, input.UserText, state.HasPriorResults())

	var (
		response string
		degraded bool
		results  []domain.TrailRecord
	)

	switch intent {
	case domain.IntentRecommend, domain.IntentRefine:
		var plan domain.Plan
		plan, results = u.recommendTurn(ctx, input.UserText, intent, &state)
		response, degraded = u.composer.Recommendation(ctx, input.UserText, plan, results)
		// Plan and results are written together, and only after the engine
		// has completed; a degraded composition still reflects this turn's
		// query, so the next refine has the right baseline.
		state.SetResults(plan, results)

	case domain.IntentExplain:
		response, degraded = u.composer.Explanation(ctx, input.UserText, state.LastPlan, state.LastResults)

	case domain.IntentQuestion:
		response, degraded = u.composer.Question(ctx, input.UserText)

	default:
		response = u.composer.Guidance()
	}

	state.Append(domain.RoleUser, input.UserText)
	state.Append(domain.RoleAssistant, response)

	u.logger.InfoContext(ctx, "turn completed",
		slog.String("session_id", input.SessionID),
		slog.String("intent", string(intent)),
		slog.Int("result_count", len(results)),
		slog.Bool("degraded", degraded))

	if u.sink != nil {
		u.sink.Enqueue(domain.TurnRecord{
			ID:           input.TurnID,
			SessionID:    input.SessionID,
			Intent:       intent,
			UserText:     input.UserText,
			ResponseText: response,
			ResultCount:  len(results),
			Degraded:     degraded,
			CreatedAt:    time.Now(),
		})
	}

	return HandleTurnOutput{
		Response: response,
		State:    state,
		Intent:   intent,
		Degraded: degraded,
	}
}

func (u *chatUsecase) recommendTurn(ctx context.Context, userText string, intent domain.Intent, state *domain.ConversationState) (domain.Plan, []domain.TrailRecord) {
	var lastPlan *domain.Plan
	if intent == domain.IntentRefine {
		lastPlan = state.LastPlan
	}

	plan := u.translator.Execute(ctx, userText, intent, lastPlan)

	// Single-mountain scoping: when the user names a catalog mountain, the
	// orchestrator excludes every other mountain. This runs independently
	// of the translator's cluster inference; both apply conjunctively.
	if mountain, ok := u.catalog.ExtractMountain(userText); ok {
		plan.ExcludeAllMountainsExcept(mountain, u.catalog.MountainNames())
	}

	results := recommend.Run(u.catalog.Records(), plan, u.topK)
	return plan, results
}

var _ ChatUsecase = (*chatUsecase)(nil)
