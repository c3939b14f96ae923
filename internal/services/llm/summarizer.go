package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// Summarizer turns a complete state into human-readable prose and answers
// process questions using the current state as context.
type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize returns a markdown summary of the promotion. Callers fall back
// to a local template on error.
func (s *Summarizer) Summarize(ctx context.Context, state *models.PromoState) (string, error) {
	user := "DADOS DA PROMOÇÃO:\n" + cleanStateJSON(state)
	content, err := s.client.Chat(ctx, summaryPrompt, user, 0.5)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummary, err)
	}
	return content, nil
}

// AnswerQuestion responds conversationally without mutating state.
func (s *Summarizer) AnswerQuestion(ctx context.Context, question string, state *models.PromoState) (string, error) {
	var lines []string
	lines = append(lines, "CONTEXTO DA PROMOÇÃO ATUAL:")
	for _, f := range models.RequiredFields {
		if v := state.RequiredValue(f); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", models.FieldLabel(f), v))
		}
	}
	lines = append(lines, fmt.Sprintf("- Progresso: %.0f%% completo", state.CompletionPercent()))
	if missing := state.MissingFields(); len(missing) > 0 {
		lines = append(lines, "- Faltam: "+strings.Join(missing, ", "))
	}

	user := strings.Join(lines, "\n") + "\n\nPERGUNTA DO USUÁRIO:\n" + question
	content, err := s.client.Chat(ctx, personaPrompt, user, 0.7)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummary, err)
	}
	return content, nil
}
