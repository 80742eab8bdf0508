package model

import (
	"time"

	"github.com/google/uuid"
)

// History actions. One immutable row per transition; the signing step writes
// SIGNED and APPROVED in the same transaction.
const (
	ActionSubmitted         = "SUBMITTED"
	ActionApproved          = "APPROVED"
	ActionRejected          = "REJECTED"
	ActionRevised           = "REVISED"
	ActionSelfRevised       = "SELF_REVISED"
	ActionSigned            = "SIGNED"
	ActionResubmitted       = "RESUBMITTED"
	ActionNumbered          = "NUMBERED"
	ActionDocumentPublished = "DOCUMENT_PUBLISHED"
	ActionCancelled         = "CANCELLED"
)

// LetterStepHistory is the append-only ledger behind the workflow. Rows are
// never updated; the only delete in the system is the numbering-reservation
// compensation, which never touches this table. createdAt ascending (id as
// tiebreak) is the canonical timeline.
type LetterStepHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LetterID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"letter_id"`
	Action      string     `gorm:"type:varchar(30);not null;index" json:"action"`
	Step        *int       `json:"step"` // null for actions not tied to an approver step
	ActorUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"actor_user_id"`
	Actor       *User      `gorm:"foreignKey:ActorUserID" json:"actor,omitempty"`
	ActorRole   string     `gorm:"type:varchar(50);not null" json:"actor_role"`
	Comment     *string    `gorm:"type:text" json:"comment"`
	FromStep    *int       `json:"from_step"`
	ToStep      *int       `json:"to_step"` // null marks a terminal transition
	Metadata    JSONMap    `gorm:"type:jsonb" json:"metadata"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// StepPtr is a convenience for building nullable step columns.
func StepPtr(s WorkflowStep) *int {
	v := int(s)
	return &v
}
