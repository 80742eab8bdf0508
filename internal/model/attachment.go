package model

import (
	"time"

	"github.com/google/uuid"
)

// Attachment categories checked by the first-approval gate.
const (
	AttachmentProposal = "proposal"
	AttachmentKTM      = "ktm"
	AttachmentUtama    = "utama"
)

// LetterAttachment is a supporting file uploaded by the student. Deactivated
// attachments stay on record but no longer count toward the gate.
type LetterAttachment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LetterID   uuid.UUID `gorm:"type:uuid;not null;index" json:"letter_id"`
	Category   string    `gorm:"type:varchar(30);not null;index" json:"category"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	StorageKey string    `gorm:"type:varchar(500);not null" json:"storage_key"`
	URL        string    `gorm:"type:varchar(500);not null" json:"url"`
	MimeType   string    `gorm:"type:varchar(100)" json:"mime_type"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	Active     bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
