package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// Validator checks business rules over a complete state.
type Validator struct {
	client *Client
}

func NewValidator(client *Client) *Validator {
	return &Validator{client: client}
}

// Validate runs a local missing-field pre-check and then the model-backed
// business-rule review. A transport or parse failure is an ErrValidation,
// never a silent pass.
func (v *Validator) Validate(ctx context.Context, state *models.PromoState) (*models.ValidationResult, error) {
	if missing := state.MissingFields(); len(missing) > 0 {
		issues := make([]string, 0, len(missing))
		for _, f := range missing {
			issues = append(issues, fmt.Sprintf("Campo obrigatório ausente: %s", models.FieldLabel(f)))
		}
		return &models.ValidationResult{
			Valid:    false,
			Feedback: "Campos obrigatórios ainda não preenchidos",
			Issues:   issues,
		}, nil
	}

	system := fmt.Sprintf(validationPrompt, time.Now().Format("02/01/2006"))
	user := "PROMOÇÃO PARA VALIDAR:\n" + cleanStateJSON(state)

	content, err := v.client.Chat(ctx, system, user, 0.1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var result models.ValidationResult
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &result); err != nil {
		return nil, fmt.Errorf("%w: unparseable output: %v", ErrValidation, err)
	}
	return &result, nil
}

// cleanStateJSON serializes the business fields only, leaving out metadata
// and bookkeeping so they do not confuse the model.
func cleanStateJSON(state *models.PromoState) string {
	doc := state.ToMap()
	delete(doc, "metadata")
	delete(doc, "status")
	delete(doc, "created_at")
	delete(doc, "updated_at")
	delete(doc, "session_id")
	delete(doc, "promo_id")
	b, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(b)
}
