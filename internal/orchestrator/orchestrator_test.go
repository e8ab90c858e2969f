package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/registry"
	"github.com/scamshield/agent/internal/tools/domainrep"
	"github.com/scamshield/agent/internal/tools/phonevalidator"
	"github.com/scamshield/agent/internal/tools/websearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct{ calls int }

func (s *stubSearch) Search(ctx context.Context, entityValue, entityType string) websearch.Response {
	s.calls++
	return websearch.Response{QueryUsed: entityValue}
}

type stubDomain struct{}

func (stubDomain) CheckDomain(ctx context.Context, rawURL string) domainrep.Result {
	return domainrep.Result{Domain: rawURL, RiskLevel: "low"}
}

type stubPhone struct{}

func (stubPhone) Validate(raw string) phonevalidator.Result {
	return phonevalidator.Result{E164: raw, Valid: true}
}

type stubReasoner struct {
	result models.AgentResult
	err    error
}

func (s stubReasoner) Reason(ctx context.Context, ocrText string, entities models.ExtractedEntities, evidence []models.AgentEvidence) (models.AgentResult, error) {
	if s.err != nil {
		return models.AgentResult{}, s.err
	}
	r := s.result
	r.RiskLevel = models.RiskLow
	r.ReasoningMethod = models.ReasoningHeuristic
	return r, nil
}

type stubStore struct {
	saved []models.AgentResult
}

func (s *stubStore) SaveResult(ctx context.Context, result models.AgentResult) error {
	s.saved = append(s.saved, result)
	return nil
}

type stubPublisher struct {
	messages []models.ProgressMessage
}

func (s *stubPublisher) Publish(ctx context.Context, taskID string, msg models.ProgressMessage) {
	s.messages = append(s.messages, msg)
}

func newTestOrchestrator(reasoner Reasoner, store ResultStore, publisher ProgressPublisher) *Orchestrator {
	return New(registry.NewMemoryRegistry(), &stubSearch{}, stubDomain{}, stubPhone{}, nil, reasoner, store, publisher, "US")
}

func TestExecute_NoEntities_PublishesCompletedAndPersists(t *testing.T) {
	store := &stubStore{}
	publisher := &stubPublisher{}
	o := newTestOrchestrator(stubReasoner{}, store, publisher)

	result, err := o.Execute(context.Background(), Task{TaskID: "t1", SessionID: "s1", OCRText: "just some ordinary text with nothing suspicious"})

	require.NoError(t, err)
	assert.Equal(t, "t1", result.TaskID)
	require.Len(t, store.saved, 1)
	assert.Equal(t, models.StepCompleted, publisher.messages[len(publisher.messages)-1].Step)
}

func TestExecute_WithEntities_FansOutAndCollectsEvidence(t *testing.T) {
	store := &stubStore{}
	publisher := &stubPublisher{}
	search := &stubSearch{}
	o := New(registry.NewMemoryRegistry(), search, stubDomain{}, stubPhone{}, nil, stubReasoner{}, store, publisher, "US")

	ocr := "Call us at +1-202-555-0175 or visit http://totally-legit-bank.com, wire to account 00012345678"
	result, err := o.Execute(context.Background(), Task{TaskID: "t2", SessionID: "s2", OCRText: ocr})

	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.NotEmpty(t, result.Evidence)
	assert.Greater(t, search.calls, 0)
}

func TestExecute_ReasonerError_PersistsMinimalFailureResult(t *testing.T) {
	store := &stubStore{}
	publisher := &stubPublisher{}
	o := newTestOrchestrator(stubReasoner{err: errors.New("llm unavailable")}, store, publisher)

	result, err := o.Execute(context.Background(), Task{TaskID: "t3", SessionID: "s3", OCRText: "some text"})

	require.Error(t, err)
	assert.Equal(t, models.RiskLow, result.RiskLevel)
	assert.Equal(t, models.ReasoningHeuristic, result.ReasoningMethod)
	require.Len(t, store.saved, 1)
	assert.True(t, publisher.messages[len(publisher.messages)-1].Error)
}

func TestFanOutAllEntities_CollectsEvidenceFromEveryToolForEachEntity(t *testing.T) {
	o := New(registry.NewMemoryRegistry(), &stubSearch{}, stubDomain{}, stubPhone{}, nil, stubReasoner{}, &stubStore{}, &stubPublisher{}, "US")

	entities := models.ExtractedEntities{
		Phones: []models.Phone{{Raw: "+12025550175", E164: "+12025550175"}},
		URLs:   []models.URL{{Raw: "example.com", Normalized: "https://example.com", Domain: "example.com"}},
	}
	toolsUsed := make(map[string]bool)
	evidence := o.fanOutAllEntities(context.Background(), entities, func(models.ProgressMessage) {}, toolsUsed)

	assert.Len(t, evidence, 6)
	for _, e := range evidence {
		assert.True(t, e.Success)
	}
}

func TestFanOutAllEntities_NilCompanyLookupMarksUnsuccessfulWithoutPanicking(t *testing.T) {
	o := New(registry.NewMemoryRegistry(), &stubSearch{}, stubDomain{}, stubPhone{}, nil, stubReasoner{}, &stubStore{}, &stubPublisher{}, "US")

	entities := models.ExtractedEntities{
		Companies: []models.Company{{Raw: "Acme Corp", Normalized: "acme corp"}},
	}
	toolsUsed := make(map[string]bool)
	evidence := o.fanOutAllEntities(context.Background(), entities, func(models.ProgressMessage) {}, toolsUsed)

	require.Len(t, evidence, 3)
	found := false
	for _, e := range evidence {
		if e.ToolName == "company_registry" {
			found = true
			assert.False(t, e.Success)
		}
	}
	assert.True(t, found)
}
