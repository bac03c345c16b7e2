package usecase

import (
	"context"
	"log/slog"

	"trail-orchestrator/internal/domain"
)

const parseFallbackNote = "Could not parse the translated preferences; proceeding with open criteria."

// TranslatePreferencesUsecase turns a free-text turn into a structured
// plan. The contract is total: it always returns a well-formed plan, never
// an error, falling back to the open plan on any transport or parse
// failure.
type TranslatePreferencesUsecase interface {
	Execute(ctx context.Context, userText string, intent domain.Intent, lastPlan *domain.Plan) domain.Plan
}

type translatePreferencesUsecase struct {
	llm       domain.CompletionClient
	validator PlanValidator
	logger    *slog.Logger
}

func NewTranslatePreferencesUsecase(llm domain.CompletionClient, validator PlanValidator, logger *slog.Logger) TranslatePreferencesUsecase {
	return &translatePreferencesUsecase{llm: llm, validator: validator, logger: logger}
}

func (u *translatePreferencesUsecase) Execute(ctx context.Context, userText string, intent domain.Intent, lastPlan *domain.Plan) domain.Plan {
	// Prior context is only passed for refinement. A fresh recommendation
	// must not inherit attributes from an unrelated earlier request.
	if intent != domain.IntentRefine {
		lastPlan = nil
	}

	raw, err := u.llm.Complete(ctx, translateSystemPrompt, buildTranslateUserPrompt(userText, intent, lastPlan), translateTemperature)
	if err != nil {
		u.logger.Warn("preference translation call failed",
			slog.String("intent", string(intent)),
			slog.String("error", err.Error()))
		return domain.NewOpenPlan(intent, parseFallbackNote)
	}

	plan, err := u.validator.Validate(raw, intent)
	if err != nil {
		u.logger.Warn("preference translation produced an invalid plan",
			slog.String("intent", string(intent)),
			slog.String("error", err.Error()))
		return domain.NewOpenPlan(intent, parseFallbackNote)
	}
	return *plan
}
