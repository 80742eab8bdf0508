package database

import (
	"backend/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM. TranslateError
// lets repositories match on gorm.ErrDuplicatedKey instead of driver codes.
func NewConnection(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.StudyProgram{},
		&model.Letter{},
		&model.LetterStepHistory{},
		&model.LetterDocumentVersion{},
		&model.LetterNumber{},
		&model.LetterAttachment{},
		&model.Role{},
		&model.Permission{},
	)
	if err != nil {
		logger.Warn("failed to auto-migrate models", zap.Error(err))
	}

	// One in-flight letter per requester. Partial unique indexes are outside
	// AutoMigrate's vocabulary, so it is created directly.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_letters_one_active_per_creator
		ON letters (created_by)
		WHERE status = 'PROCESSING'
	`).Error
	if err != nil {
		logger.Warn("failed to create active-letter index", zap.Error(err))
	}

	if err := seedPermissions(db); err != nil {
		logger.Warn("failed to seed permissions", zap.Error(err))
	}

	return db, nil
}

// seedPermissions installs the built-in admin role and its permission codes.
// Idempotent: existing rows are left untouched.
func seedPermissions(db *gorm.DB) error {
	permissions := []model.Permission{
		{Code: "users.read", Name: "View users", Group: "users"},
		{Code: "users.manage", Name: "Create, update and delete users", Group: "users"},
		{Code: "programs.read", Name: "View study programs", Group: "programs"},
		{Code: "programs.manage", Name: "Configure study programs", Group: "programs"},
		{Code: "letters.read_all", Name: "View any letter", Group: "letters"},
		{Code: "statistics.read", Name: "View workflow statistics", Group: "statistics"},
	}
	for i := range permissions {
		if err := db.Where("code = ?", permissions[i].Code).
			FirstOrCreate(&permissions[i]).Error; err != nil {
			return err
		}
	}

	admin := model.Role{
		Name:        model.RoleAdmin,
		Description: "Built-in administrator with every permission",
		IsSystem:    true,
	}
	if err := db.Where("name = ?", admin.Name).FirstOrCreate(&admin).Error; err != nil {
		return err
	}
	return db.Model(&admin).Association("Permissions").Replace(permissions)
}
