package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// Extractor turns free text plus the current state into field updates.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// Extract calls the model and parses its output as either a single field
// document or an array of candidate promotions. The state is never mutated
// here; the result is handed to the merge algorithm.
func (e *Extractor) Extract(ctx context.Context, text string, state *models.PromoState) (*models.ExtractionResult, error) {
	system := fmt.Sprintf(extractionPrompt, time.Now().Format("02/01/2006"))
	user := e.buildUserPrompt(text, state)

	content, err := e.client.Chat(ctx, system, user, 0.3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	content = StripCodeFence(content)

	// Arrays mean the message described several promotions at once.
	if strings.HasPrefix(content, "[") {
		var multiple []map[string]interface{}
		if err := json.Unmarshal([]byte(content), &multiple); err != nil {
			return nil, fmt.Errorf("%w: unparseable array output: %v", ErrExtraction, err)
		}
		if len(multiple) == 0 {
			return &models.ExtractionResult{Fields: map[string]interface{}{}}, nil
		}
		logrus.Infof("Extractor detected %d promotions in one message", len(multiple))
		return &models.ExtractionResult{
			Fields:   multiple[0],
			Multiple: multiple,
		}, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("%w: unparseable output: %v", ErrExtraction, err)
	}
	return &models.ExtractionResult{Fields: fields}, nil
}

// buildUserPrompt summarizes what is already known so the model does not
// re-extract or contradict confirmed fields.
func (e *Extractor) buildUserPrompt(text string, state *models.PromoState) string {
	var parts []string
	if state != nil {
		var known []string
		for _, f := range models.RequiredFields {
			if v := state.RequiredValue(f); v != "" {
				known = append(known, fmt.Sprintf("- %s: %s", f, v))
			}
		}
		if len(known) > 0 {
			parts = append(parts, "CONTEXTO - campos já coletados:\n"+strings.Join(known, "\n"))
		}
	}
	parts = append(parts, "TEXTO DO USUÁRIO:\n"+text)
	return strings.Join(parts, "\n\n")
}
