package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// ChatFunc is the two-way classification hook into the language model.
type ChatFunc func(ctx context.Context, system, user string, temperature float64) (string, error)

// Classifier routes each incoming message to exactly one handling branch.
// The model call is optional; every decision has a deterministic keyword
// fallback so routing keeps working when the model is down.
type Classifier struct {
	chat ChatFunc
}

func NewClassifier(chat ChatFunc) *Classifier {
	return &Classifier{chat: chat}
}

var newPromotionPhrases = []string{
	"nova promoção",
	"nova promocao",
	"outra promoção",
	"outra promocao",
	"criar outra",
	"criar nova",
	"nova promo",
	"fazer outra",
	"cadastrar outra",
	"cadastrar nova",
}

var affirmativeWords = []string{
	"sim", "yes", "correto", "ok", "confirma", "confirmo",
	"tudo cert", "perfeito", "está bem", "esta bem", "tá bom", "ta bom",
	"pode gerar", "exportar", "quero",
}

var noAdjustmentPhrases = []string{
	"não quero ajustar", "nao quero ajustar",
	"não precisa ajustar", "nao precisa ajustar",
	"está correto", "esta correto", "tá correto", "ta correto",
	"sem ajuste",
}

var questionWords = []string{
	"como", "qual", "quais", "quando", "quanto", "quantos",
	"o que", "por que", "porque", "onde", "quem", "posso",
}

// IsNewPromotionRequest detects an explicit request to start over. It only
// fires once a promotion has been finalized or is awaiting confirmation;
// while data is still being collected the same phrases almost always
// describe the promotion in progress, so they are ignored there.
func (c *Classifier) IsNewPromotionRequest(message string, state *models.PromoState) bool {
	switch state.Status {
	case models.StatusReady, models.StatusAwaitingExcel, models.StatusCompleted:
	default:
		return false
	}
	msg := normalize(message)
	for _, phrase := range newPromotionPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// IsAffirmative is the deterministic yes/no classification used by the
// confirmation branches.
func (c *Classifier) IsAffirmative(message string) bool {
	msg := normalize(message)
	for _, phrase := range noAdjustmentPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	// "não" before any positive word wins, so "não, pode gerar depois"
	// does not read as a yes.
	if strings.HasPrefix(msg, "não") || strings.HasPrefix(msg, "nao") || strings.HasPrefix(msg, "no") {
		return false
	}
	for _, word := range affirmativeWords {
		if strings.Contains(msg, word) {
			return true
		}
	}
	return false
}

// IsQuestion classifies a message as a question about the process versus
// new promotion data. It asks the model first and falls back to keyword
// heuristics on any failure.
func (c *Classifier) IsQuestion(ctx context.Context, message string) bool {
	if c.chat != nil {
		system := "Você analisa se uma mensagem é PERGUNTA ou INFORMAÇÃO. Responda apenas 'PERGUNTA' ou 'INFORMAÇÃO'."
		user := "Mensagem: '" + message + "'\n\nIsto é uma PERGUNTA (usuário quer saber algo) ou INFORMAÇÃO (usuário está fornecendo dados)?"
		result, err := c.chat(ctx, system, user, 0.1)
		if err == nil {
			return strings.Contains(strings.ToUpper(result), "PERGUNTA")
		}
		logrus.Warnf("Question classification via model failed, using keyword fallback: %v", err)
	}
	return isQuestionKeyword(message)
}

// isQuestionKeyword is the deterministic fallback: a trailing question mark
// or a leading interrogative.
func isQuestionKeyword(message string) bool {
	msg := normalize(message)
	if strings.HasSuffix(msg, "?") {
		return true
	}
	for _, word := range questionWords {
		if strings.HasPrefix(msg, word+" ") {
			return true
		}
	}
	return false
}

func normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}
