package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoagente/promoagente-backend/internal/models"
	"github.com/promoagente/promoagente-backend/internal/services/excel"
)

type fakeStore struct {
	states  map[string]*models.PromoState
	saveErr error
	loadErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: map[string]*models.PromoState{}}
}

func (f *fakeStore) Load(sessionID string) (*models.PromoState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.states[sessionID], nil
}

func (f *fakeStore) Save(state *models.PromoState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.states[state.SessionID] = state
	return nil
}

func (f *fakeStore) Delete(sessionID string) error {
	delete(f.states, sessionID)
	return nil
}

type fakeExtractor struct {
	result *models.ExtractionResult
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, text string, state *models.PromoState) (*models.ExtractionResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeValidator struct {
	result *models.ValidationResult
	err    error
	calls  int
}

func (f *fakeValidator) Validate(ctx context.Context, state *models.PromoState) (*models.ValidationResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeSummarizer struct {
	summary    string
	summaryErr error
	answer     string
	answerErr  error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, state *models.PromoState) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeSummarizer) AnswerQuestion(ctx context.Context, question string, state *models.PromoState) (string, error) {
	return f.answer, f.answerErr
}

type fakeExporter struct {
	result *excel.ExportResult
	err    error
	calls  int
}

func (f *fakeExporter) Export(promotions []*models.PromoState) (*excel.ExportResult, error) {
	f.calls++
	return f.result, f.err
}

type fakePromotionStore struct {
	saved []*models.Promotion
	err   error
}

func (f *fakePromotionStore) SaveFinalized(promo *models.Promotion) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, promo)
	return nil
}

type fakePublisher struct {
	published []*models.Promotion
	err       error
}

func (f *fakePublisher) PublishPromotion(promo *models.Promotion) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, promo)
	return nil
}

type testHarness struct {
	orchestrator *Orchestrator
	store        *fakeStore
	extractor    *fakeExtractor
	validator    *fakeValidator
	summarizer   *fakeSummarizer
	exporter     *fakeExporter
	promotions   *fakePromotionStore
	publisher    *fakePublisher
}

func newHarness() *testHarness {
	h := &testHarness{
		store:      newFakeStore(),
		extractor:  &fakeExtractor{result: &models.ExtractionResult{Fields: map[string]interface{}{}}},
		validator:  &fakeValidator{result: &models.ValidationResult{Valid: true}},
		summarizer: &fakeSummarizer{summary: "## Resumo da promoção", answer: "Resposta"},
		exporter:   &fakeExporter{result: &excel.ExportResult{Filename: "promocoes_20260315_100000.xlsx", Rows: 1}},
		promotions: &fakePromotionStore{},
		publisher:  &fakePublisher{},
	}
	h.orchestrator = NewOrchestrator(
		h.extractor, h.validator, h.summarizer, h.exporter,
		NewClassifier(nil), h.store, h.promotions, h.publisher,
	)
	return h
}

func completeFields() map[string]interface{} {
	return map[string]interface{}{
		"titulo":         "Leve 3 Pague 2",
		"mecanica":       "progressiva",
		"descricao":      "A cada 3 unidades paga 2",
		"segmentacao":    "Varejos de bairro",
		"periodo_inicio": "01/03/2030",
		"periodo_fim":    "31/03/2030",
		"condicoes":      "Pedido mínimo de 10 caixas",
		"recompensas":    "Uma caixa grátis",
	}
}

func (h *testHarness) seedState(status string) *models.PromoState {
	state := models.NewPromoState("sess-1")
	MergeExtraction(state, &models.ExtractionResult{Fields: completeFields()})
	state.Status = status
	h.store.states["sess-1"] = state
	return state
}

func TestCompleteMessageReachesReady(t *testing.T) {
	h := newHarness()
	h.extractor.result = &models.ExtractionResult{Fields: completeFields()}

	result, err := h.orchestrator.HandleMessage(context.Background(), "segue a promoção completa", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, result.Status)
	assert.Equal(t, 100.0, result.Completion)
	assert.Contains(t, result.Response, "## Resumo da promoção")
	assert.Equal(t, "## Resumo da promoção", result.State.Metadata["summary"])
	assert.Equal(t, 1, h.validator.calls)
}

func TestPartialMessageListsMissingFields(t *testing.T) {
	h := newHarness()
	h.extractor.result = &models.ExtractionResult{Fields: map[string]interface{}{
		"titulo":   "Promoção de Páscoa",
		"mecanica": "casada",
	}}

	result, err := h.orchestrator.HandleMessage(context.Background(), "promoção de páscoa, mecânica casada", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCollecting, result.Status)
	assert.InDelta(t, 25.0, result.Completion, 0.01)
	assert.Contains(t, result.Response, models.FieldLabel("descricao"))
	assert.Contains(t, result.Response, models.FieldLabel("recompensas"))
	// Validation only runs once all required fields are present.
	assert.Equal(t, 0, h.validator.calls)
}

func TestRejectionThenFixRevalidates(t *testing.T) {
	h := newHarness()
	h.extractor.result = &models.ExtractionResult{Fields: completeFields()}
	h.validator.result = &models.ValidationResult{
		Valid:    false,
		Feedback: "Período inconsistente",
		Issues:   []string{"Data final anterior à inicial"},
	}

	result, err := h.orchestrator.HandleMessage(context.Background(), "segue a promoção", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, result.Status)
	assert.Contains(t, result.Response, "Data final anterior à inicial")

	// The fix arrives; the state re-enters collecting and validation runs again.
	h.extractor.result = &models.ExtractionResult{Fields: map[string]interface{}{
		"periodo_fim": "30/04/2030",
	}}
	h.validator.result = &models.ValidationResult{Valid: true}

	result, err = h.orchestrator.HandleMessage(context.Background(), "corrige a data final para 30/04/2030", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, result.Status)
	assert.Equal(t, 2, h.validator.calls)
}

func TestRejectionWithoutIssuesFallsBackToFeedback(t *testing.T) {
	h := newHarness()
	h.extractor.result = &models.ExtractionResult{Fields: completeFields()}
	h.validator.result = &models.ValidationResult{Valid: false, Feedback: "Desconto acima da política comercial"}

	result, err := h.orchestrator.HandleMessage(context.Background(), "segue a promoção", "sess-1")

	require.NoError(t, err)
	assert.Contains(t, result.Response, "Desconto acima da política comercial")
}

func TestReadyConfirmationMovesToAwaitingExcel(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusReady)

	result, err := h.orchestrator.HandleMessage(context.Background(), "sim, tudo certo", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingExcel, result.Status)
	assert.Contains(t, result.Response, "Excel")
	assert.Equal(t, 0, h.extractor.calls)
}

func TestReadyDeclineAppliesEditWithoutRevalidating(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusReady)
	h.extractor.result = &models.ExtractionResult{Fields: map[string]interface{}{
		"desconto_percentual": "15",
	}}

	result, err := h.orchestrator.HandleMessage(context.Background(), "não, muda o desconto para 15%", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCollecting, result.Status)
	assert.Equal(t, "15", result.State.DescontoPercentual)
	assert.Contains(t, result.Response, models.FieldLabel("desconto_percentual"))
	// The decline turn itself never re-validates.
	assert.Equal(t, 0, h.validator.calls)
}

func TestExportConfirmationArchivesAndPublishes(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusAwaitingExcel)

	result, err := h.orchestrator.HandleMessage(context.Background(), "sim", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Contains(t, result.Response, "promocoes_20260315_100000.xlsx")
	require.Len(t, h.promotions.saved, 1)
	assert.True(t, strings.HasPrefix(h.promotions.saved[0].PromoID, "promo_"))
	assert.Equal(t, models.StatusCompleted, h.promotions.saved[0].Status)
	require.Len(t, h.publisher.published, 1)
}

func TestExportDeclineStillArchives(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusAwaitingExcel)

	result, err := h.orchestrator.HandleMessage(context.Background(), "não precisa", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, 0, h.exporter.calls)
	assert.Len(t, h.promotions.saved, 1)
}

func TestExportFailureKeepsAwaitingAndArchivesNothing(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusAwaitingExcel)
	h.exporter.result = nil
	h.exporter.err = excel.ErrExport

	result, err := h.orchestrator.HandleMessage(context.Background(), "sim", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingExcel, result.Status)
	assert.Contains(t, result.Response, "tentar novamente")
	assert.Empty(t, h.promotions.saved)
	assert.Empty(t, h.publisher.published)
}

func TestMultiplePromotionsArchivedIndividually(t *testing.T) {
	h := newHarness()
	state := h.seedState(models.StatusAwaitingExcel)
	state.Metadata[models.MetadataMultiplePromotions] = []map[string]interface{}{
		{"titulo": "Promo Março", "periodo_inicio": "01/03/2030"},
		{"titulo": "Promo Abril", "periodo_inicio": "01/04/2030"},
	}

	_, err := h.orchestrator.HandleMessage(context.Background(), "sim", "sess-1")

	require.NoError(t, err)
	require.Len(t, h.promotions.saved, 2)
	assert.Equal(t, "Promo Março", h.promotions.saved[0].Titulo)
	assert.Equal(t, "Promo Abril", h.promotions.saved[1].Titulo)
	assert.NotEqual(t, h.promotions.saved[0].PromoID, h.promotions.saved[1].PromoID)
}

func TestNewPromotionRequestResetsExactly(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusCompleted)

	result, err := h.orchestrator.HandleMessage(context.Background(), "vamos criar uma nova promoção", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCollecting, result.Status)
	assert.Equal(t, 0.0, result.Completion)
	assert.Empty(t, result.State.Titulo)
	assert.Equal(t, "sess-1", result.State.SessionID)
	assert.Equal(t, 0, h.extractor.calls)
}

func TestQuestionAnsweredWithoutMutation(t *testing.T) {
	h := newHarness()
	state := models.NewPromoState("sess-1")
	state.Titulo = "Promoção de Verão"
	h.store.states["sess-1"] = state
	h.summarizer.answer = "Faltam 7 campos obrigatórios."

	result, err := h.orchestrator.HandleMessage(context.Background(), "quais campos ainda faltam?", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "Faltam 7 campos obrigatórios.", result.Response)
	assert.Equal(t, 0, h.extractor.calls)
	assert.Equal(t, 0, h.store.saves)
}

func TestExtractionFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness()
	state := models.NewPromoState("sess-1")
	state.Titulo = "Promoção de Verão"
	h.store.states["sess-1"] = state
	h.extractor.result = nil
	h.extractor.err = errors.New("model timeout")

	result, err := h.orchestrator.HandleMessage(context.Background(), "adiciona desconto de 10%", "sess-1")

	require.NoError(t, err)
	assert.Contains(t, result.Response, "tentar novamente")
	assert.Equal(t, "Promoção de Verão", result.State.Titulo)
	assert.Equal(t, 0, h.store.saves)
}

func TestValidationCallFailureRejectsWithoutPass(t *testing.T) {
	h := newHarness()
	h.extractor.result = &models.ExtractionResult{Fields: completeFields()}
	h.validator.result = nil
	h.validator.err = errors.New("model timeout")

	result, err := h.orchestrator.HandleMessage(context.Background(), "segue a promoção", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, result.Status)
	assert.NotContains(t, result.Response, "pronta")
}

func TestSummaryFailureUsesTemplate(t *testing.T) {
	h := newHarness()
	h.extractor.result = &models.ExtractionResult{Fields: completeFields()}
	h.summarizer.summary = ""
	h.summarizer.summaryErr = errors.New("model timeout")

	result, err := h.orchestrator.HandleMessage(context.Background(), "segue a promoção", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, result.Status)
	assert.Contains(t, result.Response, "Leve 3 Pague 2")
	assert.Contains(t, result.Response, "01/03/2030")
}

func TestPastStartDateWarnsBeforeCompleting(t *testing.T) {
	h := newHarness()
	fields := completeFields()
	fields["periodo_inicio"] = "01/03/2020"
	h.extractor.result = &models.ExtractionResult{Fields: fields}

	result, err := h.orchestrator.HandleMessage(context.Background(), "segue a promoção", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCollecting, result.Status)
	assert.Contains(t, result.Response, "01/03/2020")
	assert.Equal(t, 0, h.validator.calls)
	// The date itself is kept so the user's correction can overwrite it.
	assert.Equal(t, "01/03/2020", result.State.PeriodoInicio)
}

func TestStoreFailureSurfacesError(t *testing.T) {
	h := newHarness()
	h.store.loadErr = errors.New("connection refused")

	_, err := h.orchestrator.HandleMessage(context.Background(), "olá", "sess-1")
	assert.Error(t, err)

	h = newHarness()
	h.store.saveErr = errors.New("connection refused")
	h.extractor.result = &models.ExtractionResult{Fields: map[string]interface{}{"titulo": "Promo"}}

	_, err = h.orchestrator.HandleMessage(context.Background(), "promo nova", "sess-1")
	assert.Error(t, err)
}

func TestPublishFailureDoesNotBlockArchival(t *testing.T) {
	h := newHarness()
	h.seedState(models.StatusAwaitingExcel)
	h.publisher.err = errors.New("broker down")

	result, err := h.orchestrator.HandleMessage(context.Background(), "sim", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Len(t, h.promotions.saved, 1)
}
