package model

import (
	"time"

	"github.com/google/uuid"
)

// StudyProgram carries the per-program approver assignments the resolver
// reads at submission time: the PKL coordinator and the program head. These
// rows may change later without affecting letters already in flight; the
// resolved assignees are frozen onto each letter.
type StudyProgram struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	Faculty       string     `gorm:"type:varchar(255)" json:"faculty"`
	CoordinatorID *uuid.UUID `gorm:"type:uuid" json:"coordinator_id"`
	Coordinator   *User      `gorm:"foreignKey:CoordinatorID" json:"coordinator,omitempty"`
	HeadID        *uuid.UUID `gorm:"type:uuid" json:"head_id"`
	Head          *User      `gorm:"foreignKey:HeadID" json:"head,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
