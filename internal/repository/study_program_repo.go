package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudyProgramRepository interface {
	Create(ctx context.Context, program *model.StudyProgram) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StudyProgram, error)
	List(ctx context.Context, page, limit int) ([]model.StudyProgram, int64, error)
	Update(ctx context.Context, program *model.StudyProgram) error
}

type studyProgramRepository struct {
	db *gorm.DB
}

func NewStudyProgramRepository(db *gorm.DB) StudyProgramRepository {
	return &studyProgramRepository{db: db}
}

func (r *studyProgramRepository) Create(ctx context.Context, program *model.StudyProgram) error {
	return GetDB(ctx, r.db).Create(program).Error
}

func (r *studyProgramRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StudyProgram, error) {
	var program model.StudyProgram
	err := GetDB(ctx, r.db).
		Preload("Coordinator").
		Preload("Head").
		First(&program, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

func (r *studyProgramRepository) List(ctx context.Context, page, limit int) ([]model.StudyProgram, int64, error) {
	var programs []model.StudyProgram
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.StudyProgram{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Coordinator").Preload("Head").
		Order("code ASC").
		Offset(offset).Limit(limit).
		Find(&programs).Error
	if err != nil {
		return nil, 0, err
	}

	return programs, total, nil
}

func (r *studyProgramRepository) Update(ctx context.Context, program *model.StudyProgram) error {
	return GetDB(ctx, r.db).Save(program).Error
}
