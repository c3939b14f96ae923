package models

// ChatRequest represents one user turn sent to the conversational endpoint
type ChatRequest struct {
	Message   string `json:"message" binding:"required" example:"Quero criar uma promoção progressiva de cervejas"`
	SessionID string `json:"session_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// TurnResult is the full outcome of one conversation turn. The state is
// always returned so a caller that does not persist sessions itself can
// round-trip it on the next call.
type TurnResult struct {
	Response   string      `json:"response"`
	Status     string      `json:"status" example:"collecting"`
	Completion float64     `json:"completion" example:"25"`
	State      *PromoState `json:"state"`
	SessionID  string      `json:"session_id"`
}

// ExtractionResult is the output of the extractor collaborator: a set of
// field updates, plus the raw list when one message described several
// promotions at once.
type ExtractionResult struct {
	Fields   map[string]interface{}
	Multiple []map[string]interface{}
}

// ValidationResult is the output of the validator collaborator.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Feedback string   `json:"feedback"`
	Issues   []string `json:"issues"`
}
