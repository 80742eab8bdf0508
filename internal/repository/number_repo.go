package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NumberRepository interface {
	// NextCounter allocates the next per-(type, calendar date) sequence value.
	// An advisory xact lock on the (type, date) pair keeps concurrent
	// allocations in the same transaction scope from reading the same max;
	// the unique index on the number string remains the final arbiter.
	NextCounter(ctx context.Context, typeCode string, date time.Time) (int, error)
	Create(ctx context.Context, number *model.LetterNumber) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByLetter(ctx context.Context, letterID uuid.UUID) (*model.LetterNumber, error)
}

type numberRepository struct {
	db *gorm.DB
}

func NewNumberRepository(db *gorm.DB) NumberRepository {
	return &numberRepository{db: db}
}

func (r *numberRepository) NextCounter(ctx context.Context, typeCode string, date time.Time) (int, error) {
	db := GetDB(ctx, r.db)
	day := date.Format("2006-01-02")

	lockKey := fmt.Sprintf("letter_number:%s:%s", typeCode, day)
	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey)

	var current struct {
		Max int
	}
	err := db.Model(&model.LetterNumber{}).
		Select("COALESCE(MAX(counter), 0) AS max").
		Where("letter_type_code = ? AND date = ?", typeCode, day).
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current.Max + 1, nil
}

func (r *numberRepository) Create(ctx context.Context, number *model.LetterNumber) error {
	err := GetDB(ctx, r.db).Create(number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("number %q already taken: %w", number.Number, apperr.ErrDuplicateNumber)
		}
		return err
	}
	return nil
}

func (r *numberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.LetterNumber{}, "id = ?", id).Error
}

func (r *numberRepository) FindByLetter(ctx context.Context, letterID uuid.UUID) (*model.LetterNumber, error) {
	var number model.LetterNumber
	err := GetDB(ctx, r.db).First(&number, "letter_id = ?", letterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &number, nil
}
