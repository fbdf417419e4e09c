package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractedSection is one labeled field carved out of generated text
type ExtractedSection struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// ExtractedSections represents the ordered sections of an FIR draft
type ExtractedSections []ExtractedSection

// Value implements driver.Valuer for JSONB
func (e ExtractedSections) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB
func (e *ExtractedSections) Scan(value interface{}) error {
	if value == nil {
		*e = make(ExtractedSections, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*e = make(ExtractedSections, 0)
		return nil
	}

	if len(bytes) == 0 {
		*e = make(ExtractedSections, 0)
		return nil
	}

	return json.Unmarshal(bytes, e)
}

// FIRDocument represents a generated First Information Report draft
type FIRDocument struct {
	ID             uuid.UUID         `json:"id"`
	ConversationID uuid.UUID         `json:"conversation_id"`
	JobID          uuid.UUID         `json:"job_id"`
	FileID         *uuid.UUID        `json:"file_id,omitempty"`
	RawText        string            `json:"raw_text"`
	Sections       ExtractedSections `json:"sections"`
	Markup         string            `json:"markup"`
	Pages          int               `json:"pages"`
	CreatedAt      time.Time         `json:"created_at"`
}
