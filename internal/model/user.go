package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role keys. The eight workflow roles mirror the approval chain; mahasiswa
// and admin exist outside it.
const (
	RoleStudent            = "mahasiswa"
	RoleAdmin              = "admin"
	RoleSupervisor         = "pembimbing_utama"
	RoleCoordinator        = "koordinator_pkl"
	RoleProgramHead        = "kaprodi"
	RoleFacultyAdmin       = "admin_fakultas"
	RoleAcademicSupervisor = "dosen_pa"
	RoleOfficeManager      = "kepala_tu"
	RoleViceDean           = "wakil_dekan"
	RoleNumbering          = "bagian_penomoran"

	// ActorRoleRequester is stamped on history entries for creator-initiated
	// transitions (submit, self-revise, resubmit, cancel).
	ActorRoleRequester = "pemohon"
)

// ValidRoles lists every role a user row may carry.
var ValidRoles = []string{
	RoleStudent, RoleAdmin,
	RoleSupervisor, RoleCoordinator, RoleProgramHead, RoleFacultyAdmin,
	RoleAcademicSupervisor, RoleOfficeManager, RoleViceDean, RoleNumbering,
}

// User represents the central user entity for logic and database structure
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	IdentityNumber string         `gorm:"type:varchar(30);index" json:"identity_number"` // NIM for students, NIP for staff
	Password       string         `gorm:"type:varchar(255);not null" json:"-"`           // Omit password from JSON requests/responses
	Role           string         `gorm:"type:varchar(50);not null;index" json:"role"`
	CanSupervise   bool           `gorm:"default:false" json:"can_supervise"` // Lecturer may be chosen as pembimbing utama
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
