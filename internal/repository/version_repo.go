package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VersionRepository interface {
	Create(ctx context.Context, version *model.LetterDocumentVersion) error
	// NextVersion returns max(version)+1 for the letter. Call inside the
	// transaction that also holds the letter row lock so two publishes cannot
	// allocate the same number.
	NextVersion(ctx context.Context, letterID uuid.UUID) (int, error)
	FindByLetterAndVersion(ctx context.Context, letterID uuid.UUID, version int) (*model.LetterDocumentVersion, error)
	ListByLetter(ctx context.Context, letterID uuid.UUID) ([]model.LetterDocumentVersion, error)
}

type versionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Create(ctx context.Context, version *model.LetterDocumentVersion) error {
	return GetDB(ctx, r.db).Create(version).Error
}

func (r *versionRepository) NextVersion(ctx context.Context, letterID uuid.UUID) (int, error) {
	var current struct {
		Max int
	}
	err := GetDB(ctx, r.db).
		Model(&model.LetterDocumentVersion{}).
		Select("COALESCE(MAX(version), 0) AS max").
		Where("letter_id = ?", letterID).
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current.Max + 1, nil
}

func (r *versionRepository) FindByLetterAndVersion(ctx context.Context, letterID uuid.UUID, version int) (*model.LetterDocumentVersion, error) {
	var v model.LetterDocumentVersion
	err := GetDB(ctx, r.db).
		Where("letter_id = ? AND version = ?", letterID, version).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *versionRepository) ListByLetter(ctx context.Context, letterID uuid.UUID) ([]model.LetterDocumentVersion, error) {
	var versions []model.LetterDocumentVersion
	err := GetDB(ctx, r.db).
		Where("letter_id = ?", letterID).
		Order("version ASC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}
