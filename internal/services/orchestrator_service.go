package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/promoagente/promoagente-backend/internal/models"
	"github.com/promoagente/promoagente-backend/internal/services/excel"
)

// Extractor turns free text plus current state into field updates.
type Extractor interface {
	Extract(ctx context.Context, text string, state *models.PromoState) (*models.ExtractionResult, error)
}

// Validator checks business rules over a complete state.
type Validator interface {
	Validate(ctx context.Context, state *models.PromoState) (*models.ValidationResult, error)
}

// Summarizer produces prose from a complete state and answers process
// questions without mutating state.
type Summarizer interface {
	Summarize(ctx context.Context, state *models.PromoState) (string, error)
	AnswerQuestion(ctx context.Context, question string, state *models.PromoState) (string, error)
}

// Exporter produces the spreadsheet artifact.
type Exporter interface {
	Export(promotions []*models.PromoState) (*excel.ExportResult, error)
}

// PromotionStore archives finalized promotions.
type PromotionStore interface {
	SaveFinalized(promo *models.Promotion) error
}

// EventPublisher announces finalized promotions to downstream consumers.
type EventPublisher interface {
	PublishPromotion(promo *models.Promotion) error
}

// Orchestrator owns the per-session conversation state machine. All
// collaborators are injected at construction; nothing here reaches for
// globals. Within a session turns are strictly sequential; across sessions
// HandleMessage may run concurrently.
type Orchestrator struct {
	extractor  Extractor
	validator  Validator
	summarizer Summarizer
	exporter   Exporter
	classifier *Classifier
	memory     SessionStore
	promotions PromotionStore
	publisher  EventPublisher // optional, nil disables events
}

func NewOrchestrator(
	extractor Extractor,
	validator Validator,
	summarizer Summarizer,
	exporter Exporter,
	classifier *Classifier,
	memory SessionStore,
	promotions PromotionStore,
	publisher EventPublisher,
) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		validator:  validator,
		summarizer: summarizer,
		exporter:   exporter,
		classifier: classifier,
		memory:     memory,
		promotions: promotions,
		publisher:  publisher,
	}
}

// HandleMessage processes one user turn. The returned error is non-nil only
// for state store failures, which are fatal for the turn; every collaborator
// failure is converted into a user-facing response with the state left
// untouched or in a recoverable status.
func (o *Orchestrator) HandleMessage(ctx context.Context, message, sessionID string) (*models.TurnResult, error) {
	state, err := o.memory.Load(sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = models.NewPromoState(sessionID)
	}
	logrus.Infof("Turn for session %s, status %s", sessionID, state.Status)

	// Highest priority: explicit request to start a new promotion.
	if o.classifier.IsNewPromotionRequest(message, state) {
		return o.resetSession(sessionID)
	}

	switch state.Status {
	case models.StatusAwaitingExcel:
		return o.handleExcelConfirmation(message, state)
	case models.StatusReady:
		if o.classifier.IsAffirmative(message) {
			state.Status = models.StatusAwaitingExcel
			if err := o.memory.Save(state); err != nil {
				return nil, err
			}
			return o.turnResult(state,
				"✅ Ótimo! Dados confirmados.\n\n📊 Deseja exportar esta promoção para Excel agora? (responda sim ou não)"), nil
		}
		// The user wants changes: drop back to collecting and treat the
		// same message as data, since it often carries the edit itself.
		// The state was already validated, so this turn skips
		// re-validation and just acknowledges the edit.
		state.Status = models.StatusCollecting
		return o.handleData(ctx, message, state, true)
	}

	// Questions are answered from current state without mutating it.
	if o.classifier.IsQuestion(ctx, message) {
		answer, err := o.summarizer.AnswerQuestion(ctx, message, state)
		if err != nil {
			logrus.Warnf("Question answering failed for session %s: %v", sessionID, err)
			answer = "Desculpe, não consegui processar sua pergunta. Pode reformular?"
		}
		return o.turnResult(state, answer), nil
	}

	return o.handleData(ctx, message, state, false)
}

// handleData runs the extract → merge → complete? → validate flow.
func (o *Orchestrator) handleData(ctx context.Context, message string, state *models.PromoState, skipValidation bool) (*models.TurnResult, error) {
	// A rejected promotion returns to collecting on the next edit.
	if state.Status == models.StatusRejected {
		state.Status = models.StatusCollecting
	}

	result, err := o.extractor.Extract(ctx, message, state)
	if err != nil {
		// No partial merge on extractor failure: state is untouched and
		// not saved.
		logrus.Errorf("Extraction failed for session %s: %v", state.SessionID, err)
		return o.turnResult(state,
			"Desculpe, ocorreu um erro ao processar sua mensagem. Pode tentar novamente ou reformular?"), nil
	}

	updated := MergeExtraction(state, result)
	logrus.Infof("Session %s: %d fields updated: %v", state.SessionID, len(updated), updated)

	if warning := startDateWarning(state, time.Now()); warning != "" {
		if err := o.memory.Save(state); err != nil {
			return nil, err
		}
		return o.turnResult(state, warning), nil
	}

	if missing := state.MissingFields(); len(missing) > 0 {
		if err := o.memory.Save(state); err != nil {
			return nil, err
		}
		return o.turnResult(state, buildProgressResponse(state, missing, updated)), nil
	}

	if skipValidation {
		if err := o.memory.Save(state); err != nil {
			return nil, err
		}
		return o.turnResult(state, buildEditAcknowledgement(state, updated)), nil
	}

	return o.finishCollection(ctx, state)
}

// finishCollection validates a complete state and moves it to ready or
// rejected. Validation runs once per completeness event; a state already
// ready never re-enters here.
func (o *Orchestrator) finishCollection(ctx context.Context, state *models.PromoState) (*models.TurnResult, error) {
	validation, err := o.validator.Validate(ctx, state)
	if err != nil {
		// Never treat a validation failure as a pass.
		logrus.Errorf("Validation call failed for session %s: %v", state.SessionID, err)
		state.Status = models.StatusRejected
		if saveErr := o.memory.Save(state); saveErr != nil {
			return nil, saveErr
		}
		return o.turnResult(state,
			"⚠️ Não consegui validar a promoção agora. Os dados foram mantidos; revise-os ou tente novamente em instantes."), nil
	}

	if !validation.Valid {
		state.Status = models.StatusRejected
		if err := o.memory.Save(state); err != nil {
			return nil, err
		}
		return o.turnResult(state, buildRejectionResponse(validation)), nil
	}

	summary, err := o.summarizer.Summarize(ctx, state)
	if err != nil {
		// Required safety net: a template built purely from known fields.
		logrus.Warnf("Summary generation failed for session %s, using template: %v", state.SessionID, err)
		summary = templateSummary(state)
	}
	if state.Metadata == nil {
		state.Metadata = map[string]interface{}{}
	}
	state.Metadata["summary"] = summary
	state.Status = models.StatusReady
	if err := o.memory.Save(state); err != nil {
		return nil, err
	}

	response := summary + "\n\n---\n\n✅ Promoção pronta!\n\n🤔 Está tudo certo ou deseja ajustar algo?"
	return o.turnResult(state, response), nil
}

// handleExcelConfirmation drives the export-and-archive versus
// archive-without-export decision.
func (o *Orchestrator) handleExcelConfirmation(message string, state *models.PromoState) (*models.TurnResult, error) {
	promos := o.finalizedPromotions(state)

	if o.classifier.IsAffirmative(message) {
		result, err := o.exporter.Export(promos)
		if err != nil {
			// Keep awaiting so the user may retry; nothing is archived.
			logrus.Errorf("Excel export failed for session %s: %v", state.SessionID, err)
			return o.turnResult(state,
				fmt.Sprintf("❌ Erro ao gerar o arquivo Excel: %v\n\nDeseja tentar novamente?", err)), nil
		}

		if err := o.archive(state, promos); err != nil {
			return nil, err
		}
		response := fmt.Sprintf(
			"✅ Arquivo Excel gerado com %d linha(s)!\n\n📄 Arquivo: %s\n\n💾 As promoções também foram salvas no sistema.\n\n🎉 Tudo pronto! Posso ajudar com outra promoção?",
			result.Rows, result.Filename)
		return o.turnResult(state, response), nil
	}

	if err := o.archive(state, promos); err != nil {
		return nil, err
	}
	return o.turnResult(state,
		"✅ Promoções salvas no sistema sem exportação.\n\n🎉 Tudo pronto! Posso ajudar com outra promoção?"), nil
}

// finalizedPromotions returns the batch being finalized: the sibling
// promotions stashed in the metadata when one message described several, or
// just the live state.
func (o *Orchestrator) finalizedPromotions(state *models.PromoState) []*models.PromoState {
	multiple := state.MultiplePromotions()
	if len(multiple) > 1 {
		promos := make([]*models.PromoState, 0, len(multiple))
		for _, doc := range multiple {
			promo := models.PromoStateFromMap(doc)
			promo.SessionID = state.SessionID
			promos = append(promos, promo)
		}
		return promos
	}
	return []*models.PromoState{state}
}

// archive marks the session completed and stores each finalized promotion,
// assigning time-based promo ids where none exist.
func (o *Orchestrator) archive(state *models.PromoState, promos []*models.PromoState) error {
	token := time.Now().UTC().Format("20060102_150405")
	for i, promo := range promos {
		if promo.PromoID == "" {
			if len(promos) == 1 {
				promo.PromoID = fmt.Sprintf("promo_%s", token)
			} else {
				promo.PromoID = fmt.Sprintf("promo_%s_%02d", token, i+1)
			}
		}
		promo.Status = models.StatusCompleted

		record := models.PromotionFromState(promo)
		if err := o.promotions.SaveFinalized(record); err != nil {
			return err
		}
		if o.publisher != nil {
			if err := o.publisher.PublishPromotion(record); err != nil {
				logrus.Warnf("Failed to publish finalized promotion %s: %v", record.PromoID, err)
			}
		}
	}

	state.Status = models.StatusCompleted
	if state.PromoID == "" {
		state.PromoID = promos[0].PromoID
	}
	return o.memory.Save(state)
}

// resetSession discards the current promotion and starts a fresh one.
func (o *Orchestrator) resetSession(sessionID string) (*models.TurnResult, error) {
	if err := o.memory.Delete(sessionID); err != nil {
		return nil, err
	}
	state := models.NewPromoState(sessionID)
	if err := o.memory.Save(state); err != nil {
		return nil, err
	}
	response := "✨ Vamos criar uma nova promoção!\n\n😊 Me conte sobre ela. Pode me passar todas as informações que tiver:\n\n" +
		"📌 Título\n🎯 Tipo/Mecânica\n📝 Descrição\n👥 Público-alvo\n📅 Período\n✅ Condições\n🎁 Recompensas\n\n" +
		"💡 Pode me enviar tudo de uma vez ou aos poucos!"
	return o.turnResult(state, response), nil
}

func (o *Orchestrator) turnResult(state *models.PromoState, response string) *models.TurnResult {
	return &models.TurnResult{
		Response:   response,
		Status:     state.Status,
		Completion: state.CompletionPercent(),
		State:      state,
		SessionID:  state.SessionID,
	}
}

// buildProgressResponse enumerates what is already known and names every
// missing required field individually.
func buildProgressResponse(state *models.PromoState, missing, updated []string) string {
	var parts []string

	if state.Titulo == "" && state.Mecanica == "" && state.Descricao == "" {
		parts = append(parts, "😊 Olá! Vamos criar uma promoção juntos.")
	} else if len(updated) > 0 {
		parts = append(parts, "✨ Perfeito! Anotei as novas informações.")
	}

	var filled []string
	for _, f := range models.RequiredFields {
		if v := state.RequiredValue(f); v != "" {
			filled = append(filled, fmt.Sprintf("✅ %s: %s", models.FieldLabel(f), truncate(v, 100)))
		}
	}
	if len(filled) > 0 {
		parts = append(parts, "📋 Informações que já tenho:\n"+strings.Join(filled, "\n"))
	}

	parts = append(parts, fmt.Sprintf("📊 Progresso: %.0f%% completo", state.CompletionPercent()))

	var wanted []string
	for _, f := range missing {
		wanted = append(wanted, "• "+models.FieldLabel(f))
	}
	parts = append(parts, "💬 Ainda preciso de:\n"+strings.Join(wanted, "\n"))

	if state.CompletionPercent() < 50 {
		parts = append(parts, "💡 Pode me enviar tudo de uma vez ou aos poucos, como preferir!")
	} else {
		parts = append(parts, "✨ Estamos quase lá!")
	}

	return strings.Join(parts, "\n\n")
}

// buildEditAcknowledgement confirms changes made while the user is revising
// an already validated promotion.
func buildEditAcknowledgement(state *models.PromoState, updated []string) string {
	if len(updated) == 0 {
		return "📝 Entendido. Me diga o que gostaria de ajustar e vou atualizar a promoção."
	}
	var changed []string
	for _, f := range updated {
		changed = append(changed, "• "+models.FieldLabel(f))
	}
	return fmt.Sprintf("📝 Ajustes aplicados:\n\n%s\n\nAlgo mais a mudar? Quando estiver satisfeito, me avise para revalidar.",
		strings.Join(changed, "\n"))
}

// buildRejectionResponse surfaces the validator's feedback. An empty issues
// list falls back to the raw feedback text so a failed validation never
// shows an empty problem list.
func buildRejectionResponse(validation *models.ValidationResult) string {
	issues := validation.Issues
	if len(issues) == 0 {
		if validation.Feedback != "" {
			issues = []string{validation.Feedback}
		} else {
			issues = []string{"Validação reprovou - verifique os dados da promoção"}
		}
	}
	var list []string
	for _, issue := range issues {
		list = append(list, "- "+issue)
	}
	response := "⚠️ A validação encontrou alguns problemas:\n\n"
	if validation.Feedback != "" {
		response += validation.Feedback + "\n\n"
	}
	response += "Problemas:\n" + strings.Join(list, "\n") +
		"\n\nPor favor, corrija ou complemente as informações."
	return response
}

// templateSummary builds a markdown summary purely from known fields, the
// local fallback when the model-backed summarizer fails.
func templateSummary(state *models.PromoState) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("## %s", state.Titulo))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("- **Mecânica**: %s", state.Mecanica))
	lines = append(lines, fmt.Sprintf("- **Descrição**: %s", state.Descricao))
	lines = append(lines, fmt.Sprintf("- **Público-alvo**: %s", state.Segmentacao))
	lines = append(lines, fmt.Sprintf("- **Período**: %s até %s", state.PeriodoInicio, state.PeriodoFim))
	lines = append(lines, fmt.Sprintf("- **Condições**: %s", state.Condicoes))
	lines = append(lines, fmt.Sprintf("- **Recompensas**: %s", state.Recompensas))
	if len(state.Produtos) > 0 {
		lines = append(lines, fmt.Sprintf("- **Produtos**: %s", strings.Join(state.Produtos, ", ")))
	}
	if state.DescontoPercentual != "" {
		lines = append(lines, fmt.Sprintf("- **Desconto**: %s%%", strings.TrimSuffix(state.DescontoPercentual, "%")))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
