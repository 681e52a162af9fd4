package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractRecord is one archived extraction for data transfer between layers.
type ExtractRecord struct {
	ID           uuid.UUID       `json:"id"`
	RunID        uuid.UUID       `json:"run_id"`
	SourceFile   string          `json:"source_file"`
	SourcePath   string          `json:"source_path"`
	Family       string          `json:"family"`
	Status       string          `json:"status"`
	RulesVersion string          `json:"rules_version"`
	Diagnostics  int             `json:"diagnostics"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}
