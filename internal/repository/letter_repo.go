package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LetterFilter narrows letter listings.
type LetterFilter struct {
	Status     string
	CreatedBy  *uuid.UUID
	AssigneeID *uuid.UUID // letters whose current step is assigned to this user
	Page       int
	Limit      int
}

type LetterRepository interface {
	Create(ctx context.Context, letter *model.Letter) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Letter, error)
	// FindByIDForUpdate locks the row for the duration of the surrounding
	// transaction; concurrent transitions on the same letter serialize here.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Letter, error)
	FindActiveByCreator(ctx context.Context, creatorID uuid.UUID) (*model.Letter, error)
	List(ctx context.Context, filter LetterFilter) ([]model.Letter, int64, error)
	Update(ctx context.Context, letter *model.Letter) error
}

type letterRepository struct {
	db *gorm.DB
}

func NewLetterRepository(db *gorm.DB) LetterRepository {
	return &letterRepository{db: db}
}

func (r *letterRepository) Create(ctx context.Context, letter *model.Letter) error {
	return GetDB(ctx, r.db).Create(letter).Error
}

func (r *letterRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
	var letter model.Letter
	err := GetDB(ctx, r.db).
		Preload("Creator").
		Preload("StudyProgram").
		Preload("Number").
		First(&letter, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &letter, nil
}

func (r *letterRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
	var letter model.Letter
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&letter, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &letter, nil
}

func (r *letterRepository) FindActiveByCreator(ctx context.Context, creatorID uuid.UUID) (*model.Letter, error) {
	var letter model.Letter
	err := GetDB(ctx, r.db).
		Where("created_by = ? AND status = ?", creatorID, model.LetterProcessing).
		First(&letter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &letter, nil
}

// applyLetterFilter narrows a query to the filter. The assignee match walks
// the frozen approver map with the slot key of the letter's current step.
func applyLetterFilter(query *gorm.DB, filter LetterFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.AssigneeID != nil {
		query = query.Where("status = ?", model.LetterProcessing).
			Where(`approvers ->> (
				SELECT slot FROM (VALUES
					(1,'pembimbing_utama'),(2,'koordinator_pkl'),(3,'kaprodi'),(4,'admin_fakultas'),
					(5,'dosen_pa'),(6,'kepala_tu'),(7,'wakil_dekan'),(8,'bagian_penomoran')
				) AS steps(num, slot) WHERE num = letters.current_step
			) = ?`, filter.AssigneeID.String())
	}
	return query
}

func (r *letterRepository) List(ctx context.Context, filter LetterFilter) ([]model.Letter, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := applyLetterFilter(db.Model(&model.Letter{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	var letters []model.Letter
	fetchQuery := applyLetterFilter(db.Model(&model.Letter{}), filter).
		Preload("Creator").
		Preload("StudyProgram").
		Preload("Number")
	if err := fetchQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&letters).Error; err != nil {
		return nil, 0, err
	}

	return letters, total, nil
}

func (r *letterRepository) Update(ctx context.Context, letter *model.Letter) error {
	return GetDB(ctx, r.db).Save(letter).Error
}
