package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSON is a jsonb column holding an open document.
type JSON map[string]interface{}

// Value implements driver.Valuer for jsonb columns.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb columns.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSON column: %T", value)
	}
	return json.Unmarshal(b, j)
}

// PromoSession is the persisted record of one conversation session. The full
// PromoState is serialized into the State column; one row per session id so
// every save is a single-row upsert.
type PromoSession struct {
	SessionID string    `json:"session_id" gorm:"primaryKey;type:varchar(64)"`
	State     JSON      `json:"state" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PromoSession model
func (PromoSession) TableName() string {
	return "promo_sessions"
}

// Promotion is an archived, immutable copy of a promotion once the user
// completes the export/save flow.
type Promotion struct {
	PromoID   string `json:"promo_id" gorm:"primaryKey;type:varchar(64)"`
	SessionID string `json:"session_id" gorm:"type:varchar(64);index"`

	Titulo        string `json:"titulo" gorm:"type:varchar(255)"`
	Mecanica      string `json:"mecanica" gorm:"type:varchar(100)"`
	Descricao     string `json:"descricao" gorm:"type:text"`
	Segmentacao   string `json:"segmentacao" gorm:"type:text"`
	PeriodoInicio string `json:"periodo_inicio" gorm:"type:varchar(50)"`
	PeriodoFim    string `json:"periodo_fim" gorm:"type:varchar(50)"`
	Condicoes     string `json:"condicoes" gorm:"type:text"`
	Recompensas   string `json:"recompensas" gorm:"type:text"`

	Produtos           string `json:"produtos" gorm:"type:text"`
	Categorias         string `json:"categorias" gorm:"type:text"`
	ClientesAlvo       string `json:"clientes_alvo" gorm:"type:text"`
	VolumeMinimo       string `json:"volume_minimo" gorm:"type:varchar(100)"`
	DescontoPercentual string `json:"desconto_percentual" gorm:"type:varchar(50)"`
	MargemEsperada     string `json:"margem_esperada" gorm:"type:varchar(100)"`
	ROIEstimado        string `json:"roi_estimado" gorm:"type:varchar(100)"`

	Status    string     `json:"status" gorm:"type:varchar(50);index"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// TableName specifies the table name for the Promotion model
func (Promotion) TableName() string {
	return "promotions"
}

// PromotionFromState flattens a finalized PromoState into its archive record.
func PromotionFromState(state *PromoState) *Promotion {
	return &Promotion{
		PromoID:            state.PromoID,
		SessionID:          state.SessionID,
		Titulo:             state.Titulo,
		Mecanica:           state.Mecanica,
		Descricao:          state.Descricao,
		Segmentacao:        state.Segmentacao,
		PeriodoInicio:      state.PeriodoInicio,
		PeriodoFim:         state.PeriodoFim,
		Condicoes:          state.Condicoes,
		Recompensas:        state.Recompensas,
		Produtos:           strings.Join(state.Produtos, ", "),
		Categorias:         strings.Join(state.Categorias, ", "),
		ClientesAlvo:       strings.Join(state.ClientesAlvo, ", "),
		VolumeMinimo:       state.VolumeMinimo,
		DescontoPercentual: state.DescontoPercentual,
		MargemEsperada:     state.MargemEsperada,
		ROIEstimado:        state.ROIEstimado,
		Status:             state.Status,
		CreatedAt:          time.Now().UTC(),
	}
}
