package model

import (
	"time"

	"github.com/google/uuid"
)

// LetterNumber is the institutional number assigned at the terminal step.
// One per letter; Counter is a per-(type, calendar date) sequence and Number
// carries the derived display form. The unique index on Number is the sole
// arbiter when two concurrent assignments race for the same counter.
type LetterNumber struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LetterID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"letter_id"`
	LetterTypeCode string    `gorm:"type:varchar(20);not null;index:idx_number_type_date" json:"letter_type_code"`
	Date           time.Time `gorm:"type:date;not null;index:idx_number_type_date" json:"date"`
	Counter        int       `gorm:"not null" json:"counter"`
	Number         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"number"`
	AssignedBy     uuid.UUID `gorm:"type:uuid;not null" json:"assigned_by"`
	CreatedAt      time.Time `json:"created_at"`
}
