package services

import (
	"strconv"
	"strings"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// MergeExtraction folds an extraction result into the state and returns the
// names of the fields that changed. It is the only code path that mutates
// PromoState business fields.
//
// A value only overwrites the existing field when it is non-empty: empty
// strings, nulls and empty lists never erase previously confirmed data.
// Re-applying the same result is a no-op, so the merge is idempotent.
func MergeExtraction(state *models.PromoState, result *models.ExtractionResult) []string {
	if result == nil {
		return nil
	}

	var updated []string
	for field, value := range result.Fields {
		if applyField(state, field, value) {
			updated = append(updated, field)
		}
	}

	if len(result.Multiple) > 1 {
		if state.Metadata == nil {
			state.Metadata = map[string]interface{}{}
		}
		state.Metadata[models.MetadataMultiplePromotions] = result.Multiple
	}

	return updated
}

// applyField sets one field when the new value is usable and different.
func applyField(state *models.PromoState, field string, value interface{}) bool {
	switch field {
	case "produtos":
		return setList(&state.Produtos, value)
	case "categorias":
		return setList(&state.Categorias, value)
	case "clientes_alvo":
		return setList(&state.ClientesAlvo, value)
	case "titulo":
		return setString(&state.Titulo, value)
	case "mecanica":
		return setString(&state.Mecanica, value)
	case "descricao":
		return setString(&state.Descricao, value)
	case "segmentacao":
		return setString(&state.Segmentacao, value)
	case "periodo_inicio":
		return setString(&state.PeriodoInicio, value)
	case "periodo_fim":
		return setString(&state.PeriodoFim, value)
	case "condicoes":
		return setString(&state.Condicoes, value)
	case "recompensas":
		return setString(&state.Recompensas, value)
	case "volume_minimo":
		return setString(&state.VolumeMinimo, value)
	case "desconto_percentual":
		return setString(&state.DescontoPercentual, value)
	case "margem_esperada":
		return setString(&state.MargemEsperada, value)
	case "roi_estimado":
		return setString(&state.ROIEstimado, value)
	}
	// Unknown keys from the model are ignored.
	return false
}

func setString(dst *string, value interface{}) bool {
	var s string
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		// Models occasionally return numbers for percentage fields.
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return false
	}
	if s == "" || strings.EqualFold(s, "null") {
		return false
	}
	if *dst == s {
		return false
	}
	*dst = s
	return true
}

func setList(dst *[]string, value interface{}) bool {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				items = append(items, strings.TrimSpace(s))
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" && !strings.EqualFold(s, "null") {
			items = []string{s}
		}
	default:
		return false
	}
	if len(items) == 0 {
		return false
	}
	if equalStrings(*dst, items) {
		return false
	}
	*dst = items
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

