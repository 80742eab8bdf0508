package model

import (
	"time"

	"github.com/google/uuid"
)

// Document formats
const (
	FormatHTML = "HTML"
	FormatPDF  = "PDF"
)

// Version reasons
const (
	VersionReasonDraft     = "DRAFT_PUBLISHED"
	VersionReasonFinalized = "FINAL_NUMBERED"
)

// LetterDocumentVersion is one immutable document artifact of a letter.
// Version numbers are monotonic per letter, never reused, never reordered.
// The letter's LatestEditableVersion / LatestPDFVersion pointers track which
// row is current for each format.
type LetterDocumentVersion struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LetterID   uuid.UUID `gorm:"type:uuid;not null;index:idx_letter_version,unique" json:"letter_id"`
	Version    int       `gorm:"not null;index:idx_letter_version,unique" json:"version"`
	StorageKey string    `gorm:"type:varchar(500)" json:"storage_key"` // empty until persisted
	Format     string    `gorm:"type:varchar(10);not null" json:"format"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
	IsPDF      bool      `gorm:"not null;default:false" json:"is_pdf"`
	IsEditable bool      `gorm:"not null;default:false" json:"is_editable"`
	CreatedAt  time.Time `json:"created_at"`
}
