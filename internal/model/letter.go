package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Letter status enum constants. COMPLETED, REJECTED and CANCELLED are
// terminal.
const (
	LetterProcessing = "PROCESSING"
	LetterCompleted  = "COMPLETED"
	LetterRejected   = "REJECTED"
	LetterCancelled  = "CANCELLED"
)

// ApproverMap freezes the concrete user assigned to each approval slot at
// submission time. Stored as jsonb; keys are WorkflowStep slot keys.
type ApproverMap map[string]uuid.UUID

func (m ApproverMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ApproverMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type %T for ApproverMap", src)
	}
}

// ForStep returns the assignee frozen for the given step.
func (m ApproverMap) ForStep(step WorkflowStep) (uuid.UUID, bool) {
	id, ok := m[step.SlotKey()]
	return id, ok
}

// JSONMap holds the opaque form payload of a letter as jsonb.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported source type for JSONMap")
	}
}

// Letter is one in-flight or completed PKL letter request.
//
// Invariants upheld by the services and the schema:
//   - CurrentStep is non-nil iff Status == PROCESSING.
//   - At most one PROCESSING letter per creator (partial unique index).
//   - Approvers is frozen at submission and never changes afterwards.
//   - Once SignedAt is set the letter cannot be self-revised or cancelled.
type Letter struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedBy      uuid.UUID    `gorm:"type:uuid;not null;index" json:"created_by"`
	Creator        *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	StudyProgramID uuid.UUID    `gorm:"type:uuid;not null;index" json:"study_program_id"`
	StudyProgram   *StudyProgram `gorm:"foreignKey:StudyProgramID" json:"study_program,omitempty"`
	Status         string       `gorm:"type:varchar(20);not null;default:'PROCESSING';index" json:"status"`
	CurrentStep    *int         `gorm:"index" json:"current_step"` // null once terminal
	Approvers      ApproverMap  `gorm:"type:jsonb;not null" json:"approvers"`
	Values         JSONMap      `gorm:"type:jsonb;not null" json:"values"` // opaque form payload

	LatestEditableVersion int `gorm:"not null;default:0" json:"latest_editable_version"`
	LatestPDFVersion      int `gorm:"not null;default:0" json:"latest_pdf_version"`

	SignedAt     *time.Time `json:"signed_at"`
	SignatureURL string     `gorm:"type:varchar(500)" json:"signature_url"`

	Number *LetterNumber `gorm:"foreignKey:LetterID" json:"number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Step returns the current step, or 0 when the letter is terminal.
func (l *Letter) Step() WorkflowStep {
	if l.CurrentStep == nil {
		return 0
	}
	return WorkflowStep(*l.CurrentStep)
}

// SetStep updates the current step pointer in place.
func (l *Letter) SetStep(s WorkflowStep) {
	v := int(s)
	l.CurrentStep = &v
}

// Terminal reports whether the letter left PROCESSING.
func (l *Letter) Terminal() bool {
	return l.Status != LetterProcessing
}
