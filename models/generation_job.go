package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationJobStatus represents the status of a generation job
type GenerationJobStatus string

const (
	JobStatusPending    GenerationJobStatus = "pending"
	JobStatusInProgress GenerationJobStatus = "in_progress"
	JobStatusCompleted  GenerationJobStatus = "completed"
	JobStatusFailed     GenerationJobStatus = "failed"
)

// Step statuses
const (
	StepPending    = "pending"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
	StepFailed     = "failed"
)

// GenerationStep represents a step in the FIR generation process
type GenerationStep struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// GenerationSteps represents a list of generation steps
type GenerationSteps []GenerationStep

// Value implements driver.Valuer for JSONB
func (g GenerationSteps) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB
func (g *GenerationSteps) Scan(value interface{}) error {
	if value == nil {
		*g = make(GenerationSteps, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*g = make(GenerationSteps, 0)
		return nil
	}

	if len(bytes) == 0 {
		*g = make(GenerationSteps, 0)
		return nil
	}
	
	return json.Unmarshal(bytes, g)
}

// StepIndex returns the position of the named step, or -1
func (g GenerationSteps) StepIndex(name string) int {
	for i := range g {
		if g[i].Name == name {
			return i
		}
	}
	return -1
}

// GenerationJob tracks background FIR generation for a conversation
type GenerationJob struct {
	ID             uuid.UUID           `json:"id"`
	ConversationID uuid.UUID           `json:"conversation_id"`
	Status         GenerationJobStatus `json:"status"`
	CurrentStep    *string             `json:"current_step,omitempty"`
	Steps          GenerationSteps     `json:"steps"`
	DocumentID     *uuid.UUID          `json:"document_id,omitempty"`
	ErrorMessage   *string             `json:"error_message,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
}

