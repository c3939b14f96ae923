package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Promotion lifecycle statuses. A session with no stored row behaves as a
// "draft": the first message materializes it directly as StatusCollecting.
const (
	StatusCollecting    = "collecting"
	StatusReady         = "ready"
	StatusAwaitingExcel = "awaiting_excel_confirmation"
	StatusRejected      = "rejected"
	StatusCompleted     = "completed"
)

// MetadataMultiplePromotions is the metadata key where a batch of sibling
// promotions extracted from a single message is stashed for bulk export.
const MetadataMultiplePromotions = "multiple_promotions"

// RequiredFields lists the 8 business attributes that gate validation, in
// the order they are presented to the user.
var RequiredFields = []string{
	"titulo",
	"mecanica",
	"descricao",
	"segmentacao",
	"periodo_inicio",
	"periodo_fim",
	"condicoes",
	"recompensas",
}

// PromoState is the aggregate root of one promotion-in-progress. Its fields
// are only ever mutated through services.MergeExtraction and the
// orchestrator's status transitions; everything else treats it as read-only.
type PromoState struct {
	SessionID string `json:"session_id"`
	PromoID   string `json:"promo_id,omitempty"`

	Titulo        string `json:"titulo,omitempty"`
	Mecanica      string `json:"mecanica,omitempty"` // progressiva, casada, pontos, relampago, etc.
	Descricao     string `json:"descricao,omitempty"`
	Segmentacao   string `json:"segmentacao,omitempty"`
	PeriodoInicio string `json:"periodo_inicio,omitempty"`
	PeriodoFim    string `json:"periodo_fim,omitempty"`
	Condicoes     string `json:"condicoes,omitempty"`
	Recompensas   string `json:"recompensas,omitempty"`

	Produtos           []string `json:"produtos,omitempty"`
	Categorias         []string `json:"categorias,omitempty"`
	ClientesAlvo       []string `json:"clientes_alvo,omitempty"`
	VolumeMinimo       string   `json:"volume_minimo,omitempty"`
	DescontoPercentual string   `json:"desconto_percentual,omitempty"`
	MargemEsperada     string   `json:"margem_esperada,omitempty"`
	ROIEstimado        string   `json:"roi_estimado,omitempty"`

	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewPromoState creates an empty state for a session, status collecting.
func NewPromoState(sessionID string) *PromoState {
	now := time.Now().UTC().Format(time.RFC3339)
	return &PromoState{
		SessionID: sessionID,
		Status:    StatusCollecting,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]interface{}{},
	}
}

// RequiredValue returns the current value of a required field by name.
func (s *PromoState) RequiredValue(field string) string {
	switch field {
	case "titulo":
		return s.Titulo
	case "mecanica":
		return s.Mecanica
	case "descricao":
		return s.Descricao
	case "segmentacao":
		return s.Segmentacao
	case "periodo_inicio":
		return s.PeriodoInicio
	case "periodo_fim":
		return s.PeriodoFim
	case "condicoes":
		return s.Condicoes
	case "recompensas":
		return s.Recompensas
	}
	return ""
}

// MissingFields returns the required fields that are still empty, in
// presentation order. A field is missing iff it is the empty string.
func (s *PromoState) MissingFields() []string {
	var missing []string
	for _, f := range RequiredFields {
		if strings.TrimSpace(s.RequiredValue(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether all required fields are filled.
func (s *PromoState) IsComplete() bool {
	return len(s.MissingFields()) == 0
}

// CompletionPercent returns the share of required fields filled, 0..100.
// Always derived from the fields, never stored.
func (s *PromoState) CompletionPercent() float64 {
	total := len(RequiredFields)
	missing := len(s.MissingFields())
	return float64(total-missing) / float64(total) * 100
}

// Touch updates the modification timestamp.
func (s *PromoState) Touch() {
	s.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// MultiplePromotions returns the batch of sibling promotions stashed in the
// metadata, or nil when the session holds a single promotion.
func (s *PromoState) MultiplePromotions() []map[string]interface{} {
	if s.Metadata == nil {
		return nil
	}
	raw, ok := s.Metadata[MetadataMultiplePromotions]
	if !ok {
		return nil
	}
	var promos []map[string]interface{}
	switch v := raw.(type) {
	case []map[string]interface{}:
		promos = v
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				promos = append(promos, m)
			}
		}
	}
	return promos
}

// ToMap converts the state to a plain document for persistence and prompts.
func (s *PromoState) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"session_id":          s.SessionID,
		"promo_id":            s.PromoID,
		"titulo":              s.Titulo,
		"mecanica":            s.Mecanica,
		"descricao":           s.Descricao,
		"segmentacao":         s.Segmentacao,
		"periodo_inicio":      s.PeriodoInicio,
		"periodo_fim":         s.PeriodoFim,
		"condicoes":           s.Condicoes,
		"recompensas":         s.Recompensas,
		"produtos":            s.Produtos,
		"categorias":          s.Categorias,
		"clientes_alvo":       s.ClientesAlvo,
		"volume_minimo":       s.VolumeMinimo,
		"desconto_percentual": s.DescontoPercentual,
		"margem_esperada":     s.MargemEsperada,
		"roi_estimado":        s.ROIEstimado,
		"created_at":          s.CreatedAt,
		"updated_at":          s.UpdatedAt,
		"status":              s.Status,
		"metadata":            s.Metadata,
	}
}

// PromoStateFromMap rebuilds a state from a plain document. It is total:
// unknown keys are ignored and missing keys yield zero values.
func PromoStateFromMap(data map[string]interface{}) *PromoState {
	s := &PromoState{
		SessionID:          mapString(data, "session_id"),
		PromoID:            mapString(data, "promo_id"),
		Titulo:             mapString(data, "titulo"),
		Mecanica:           mapString(data, "mecanica"),
		Descricao:          mapString(data, "descricao"),
		Segmentacao:        mapString(data, "segmentacao"),
		PeriodoInicio:      mapString(data, "periodo_inicio"),
		PeriodoFim:         mapString(data, "periodo_fim"),
		Condicoes:          mapString(data, "condicoes"),
		Recompensas:        mapString(data, "recompensas"),
		Produtos:           mapStringList(data, "produtos"),
		Categorias:         mapStringList(data, "categorias"),
		ClientesAlvo:       mapStringList(data, "clientes_alvo"),
		VolumeMinimo:       mapString(data, "volume_minimo"),
		DescontoPercentual: mapString(data, "desconto_percentual"),
		MargemEsperada:     mapString(data, "margem_esperada"),
		ROIEstimado:        mapString(data, "roi_estimado"),
		CreatedAt:          mapString(data, "created_at"),
		UpdatedAt:          mapString(data, "updated_at"),
		Status:             mapString(data, "status"),
	}
	if md, ok := data["metadata"].(map[string]interface{}); ok {
		s.Metadata = md
	} else {
		s.Metadata = map[string]interface{}{}
	}
	if s.Status == "" {
		s.Status = StatusCollecting
	}
	return s
}

// ToJSON serializes the state for prompts and logs.
func (s *PromoState) ToJSON() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// FieldLabel translates a technical field name to the label shown to users.
func FieldLabel(field string) string {
	labels := map[string]string{
		"titulo":              "Título da promoção",
		"mecanica":            "Tipo de mecânica (progressiva, casada, pontos, etc)",
		"descricao":           "Descrição de como funciona",
		"segmentacao":         "Público-alvo/Segmentação",
		"periodo_inicio":      "Data de início",
		"periodo_fim":         "Data de término",
		"condicoes":           "Condições e regras",
		"recompensas":         "Benefícios e recompensas",
		"produtos":            "Produtos incluídos",
		"categorias":          "Categorias",
		"clientes_alvo":       "Clientes-alvo",
		"volume_minimo":       "Volume mínimo",
		"desconto_percentual": "Percentual de desconto",
	}
	if label, ok := labels[field]; ok {
		return label
	}
	return strings.ReplaceAll(field, "_", " ")
}

func mapString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func mapStringList(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, strings.TrimSpace(str))
			}
		}
		return out
	}
	return nil
}
