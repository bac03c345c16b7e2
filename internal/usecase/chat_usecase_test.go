package usecase_test

import (
	"context"
	"sync"
	"testing"

	"trail-orchestrator/internal/domain"
	"trail-orchestrator/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Deterministic stubs for the pipeline stages. Each turn-handling test
// pins the classifier and translator so it exercises exactly one branch.

type stubClassifier struct {
	intent   domain.Intent
	lastText string
	lastHas  bool
}

func (s *stubClassifier) Classify(_ context.Context, userText string, hasPriorResults bool) domain.Intent {
	s.lastText = userText
	s.lastHas = hasPriorResults
	return s.intent
}

type stubTranslator struct {
	plan     domain.Plan
	calls    int
	lastLast *domain.Plan
}

func (s *stubTranslator) Execute(_ context.Context, _ string, intent domain.Intent, lastPlan *domain.Plan) domain.Plan {
	s.calls++
	s.lastLast = lastPlan
	p := s.plan
	p.Intent = intent
	return p
}

type memorySink struct {
	mu    sync.Mutex
	turns []domain.TurnRecord
}

func (s *memorySink) Enqueue(turn domain.TurnRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

func chatCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.TrailRecord{
		{MountainName: "가리산", CourseName: "01코스", RegionLabel: "강원", DifficultyTier: "novice", DifficultyDetail: "novice1", DifficultyScore: 2, OverallAppealScore: 7.5, EstimatedDuration: "2h"},
		{MountainName: "가리산", CourseName: "02코스", RegionLabel: "강원", DifficultyTier: "intermediate", DifficultyDetail: "intermediate2", DifficultyScore: 3, OverallAppealScore: 6.0, EstimatedDuration: "3h"},
		{MountainName: "북한산", CourseName: "백운대코스", RegionLabel: "서울", DifficultyTier: "advanced", DifficultyDetail: "advanced1", DifficultyScore: 4, OverallAppealScore: 9.0, EstimatedDuration: "4h"},
	})
}

type chatFixture struct {
	usecase    usecase.ChatUsecase
	classifier *stubClassifier
	translator *stubTranslator
	llm        *fakeLLM
	sink       *memorySink
}

func newChatFixture(t *testing.T, intent domain.Intent) *chatFixture {
	t.Helper()
	catalog := chatCatalog()
	llm := &fakeLLM{response: "generated answer"}
	classifier := &stubClassifier{intent: intent}
	translator := &stubTranslator{plan: domain.NewOpenPlan(domain.IntentRecommend, "")}
	sink := &memorySink{}
	composer := usecase.NewComposeResponseUsecase(llm, catalog, testLogger())
	return &chatFixture{
		usecase:    usecase.NewChatUsecase(catalog, classifier, translator, composer, sink, 5, testLogger()),
		classifier: classifier,
		translator: translator,
		llm:        llm,
		sink:       sink,
	}
}

func TestHandleTurn_RecommendUpdatesStateAtomically(t *testing.T) {
	f := newChatFixture(t, domain.IntentRecommend)

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "somewhere with a view",
	})

	assert.Equal(t, domain.IntentRecommend, out.Intent)
	assert.Equal(t, "generated answer", out.Response)
	assert.False(t, out.Degraded)

	require.NotNil(t, out.State.LastPlan)
	assert.Equal(t, domain.IntentRecommend, out.State.LastPlan.Intent)
	require.Len(t, out.State.LastResults, 3)
	assert.Equal(t, "백운대코스", out.State.LastResults[0].CourseName, "results ranked by appeal")

	require.Len(t, out.State.Messages, 2)
	assert.Equal(t, domain.RoleUser, out.State.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, out.State.Messages[1].Role)
}

func TestHandleTurn_RefinePassesPriorPlan(t *testing.T) {
	f := newChatFixture(t, domain.IntentRefine)

	three := 3
	prior := domain.NewOpenPlan(domain.IntentRecommend, "")
	prior.Constraints.DifficultyMax = &three

	var state domain.ConversationState
	state.SetResults(prior, []domain.TrailRecord{{MountainName: "가리산", CourseName: "01코스"}})

	f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "something easier",
		State:     state,
	})

	require.NotNil(t, f.translator.lastLast)
	require.NotNil(t, f.translator.lastLast.Constraints.DifficultyMax)
	assert.Equal(t, 3, *f.translator.lastLast.Constraints.DifficultyMax)
	assert.True(t, f.classifier.lastHas, "prior results visible to the classifier")
}

func TestHandleTurn_RecommendIgnoresPriorPlan(t *testing.T) {
	f := newChatFixture(t, domain.IntentRecommend)

	var state domain.ConversationState
	state.SetResults(domain.NewOpenPlan(domain.IntentRecommend, ""), []domain.TrailRecord{{MountainName: "가리산"}})

	f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "a fresh request",
		State:     state,
	})

	assert.Nil(t, f.translator.lastLast, "fresh recommendations start from scratch")
}

func TestHandleTurn_MountainMentionScopesResults(t *testing.T) {
	f := newChatFixture(t, domain.IntentRecommend)

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "가리산 등산로 추천해줘",
	})

	require.NotNil(t, out.State.LastPlan)
	assert.Contains(t, out.State.LastPlan.Exclude.Mountains, "북한산")
	assert.NotContains(t, out.State.LastPlan.Exclude.Mountains, "가리산")
	require.Len(t, out.State.LastResults, 2)
	for _, r := range out.State.LastResults {
		assert.Equal(t, "가리산", r.MountainName)
	}
}

func TestHandleTurn_ExplainWithoutPriorResults(t *testing.T) {
	f := newChatFixture(t, domain.IntentExplain)

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "why did you pick those?",
	})

	assert.Zero(t, f.llm.calls)
	assert.Zero(t, f.translator.calls)
	assert.Contains(t, out.Response, "no recommendation yet")
	assert.Nil(t, out.State.LastPlan, "explain turns never touch the result state")
}

func TestHandleTurn_ExplainUsesStoredResults(t *testing.T) {
	f := newChatFixture(t, domain.IntentExplain)

	var state domain.ConversationState
	plan := domain.NewOpenPlan(domain.IntentRecommend, "")
	state.SetResults(plan, []domain.TrailRecord{{MountainName: "가리산", CourseName: "01코스", DifficultyDetail: "novice1"}})

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "why?",
		State:     state,
	})

	assert.Equal(t, "generated answer", out.Response)
	assert.Equal(t, 1, f.llm.calls)
	assert.Contains(t, f.llm.lastUser, "가리산 01코스")
}

func TestHandleTurn_OtherGetsGuidance(t *testing.T) {
	f := newChatFixture(t, domain.IntentOther)

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "how do I make pancakes",
	})

	assert.Zero(t, f.llm.calls)
	assert.Contains(t, out.Response, "recommendation assistant")
	assert.False(t, out.Degraded)
	require.Len(t, out.State.Messages, 2)
}

func TestHandleTurn_TotalUnderModelFailure(t *testing.T) {
	f := newChatFixture(t, domain.IntentRecommend)
	f.llm.err = assert.AnError
	f.llm.response = ""

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "anything at all",
	})

	assert.True(t, out.Degraded)
	assert.NotEmpty(t, out.Response)
	require.NotNil(t, out.State.LastPlan, "state still advances on degraded turns")
	assert.NotEmpty(t, out.State.LastResults)
}

func TestHandleTurn_ArchivesEveryTurn(t *testing.T) {
	f := newChatFixture(t, domain.IntentOther)

	f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{SessionID: "abc", UserText: "hi"})
	f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{SessionID: "abc", UserText: "hello"})

	require.Len(t, f.sink.turns, 2)
	first := f.sink.turns[0]
	assert.Equal(t, "abc", first.SessionID)
	assert.Equal(t, domain.IntentOther, first.Intent)
	assert.Equal(t, "hi", first.UserText)
	assert.NotEmpty(t, first.ResponseText)
	assert.NotEqual(t, first.ID, f.sink.turns[1].ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestHandleTurn_CallerTurnIDReachesArchive(t *testing.T) {
	f := newChatFixture(t, domain.IntentOther)
	turnID := uuid.New()

	f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "abc",
		TurnID:    turnID,
		UserText:  "hi",
	})

	require.Len(t, f.sink.turns, 1)
	assert.Equal(t, turnID, f.sink.turns[0].ID)
}

func TestHandleTurn_NoMatchStillStoresQuery(t *testing.T) {
	f := newChatFixture(t, domain.IntentRecommend)
	godlike := 7
	f.translator.plan.Constraints.DifficultyMin = &godlike

	out := f.usecase.HandleTurn(context.Background(), usecase.HandleTurnInput{
		SessionID: "s1",
		UserText:  "an impossible hike",
	})

	assert.Zero(t, f.llm.calls, "empty result sets never reach the model")
	assert.Contains(t, out.Response, "relax")
	require.NotNil(t, out.State.LastPlan)
	assert.Empty(t, out.State.LastResults)
}

func TestGreetingDelegation(t *testing.T) {
	f := newChatFixture(t, domain.IntentOther)
	assert.NotEmpty(t, f.usecase.Greeting())
}
