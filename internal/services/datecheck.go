package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// startDateWarning is a local rule-based pre-check run right after a merge:
// a parseable start date in the past earns an immediate corrective response
// instead of waiting for full validation. Returns "" when the date is fine
// or cannot be parsed.
func startDateWarning(state *models.PromoState, now time.Time) string {
	raw := strings.TrimSpace(state.PeriodoInicio)
	if raw == "" {
		return ""
	}

	start, ok := parseStartDate(raw, now)
	if !ok {
		return ""
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !start.Before(today) {
		return ""
	}

	switch {
	case start.Year() == now.Year() && start.Month() == now.Month():
		return fmt.Sprintf("⚠️ A data de início (%s) já passou. Hoje é %s.\n\nPor favor, informe uma nova data a partir de hoje.",
			raw, now.Format("02/01/2006"))
	case start.Year() == now.Year():
		suggested := strings.Replace(raw, fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%d", now.Year()+1), 1)
		return fmt.Sprintf("💡 A data de início (%s) está no passado. Sugiro ajustar para %s (ano seguinte). Confirma essa mudança?",
			raw, suggested)
	default:
		suggested := strings.Replace(raw, fmt.Sprintf("%d", start.Year()), fmt.Sprintf("%d", now.Year()+1), 1)
		return fmt.Sprintf("💡 A data de início (%s) está no ano passado. Sugiro ajustar para %s. Confirma?",
			raw, suggested)
	}
}

// parseStartDate accepts DD/MM/YYYY or DD/MM (current year assumed).
func parseStartDate(raw string, now time.Time) (time.Time, bool) {
	if t, err := time.Parse("02/01/2006", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("02/01", raw); err == nil {
		return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
