package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository is the only writer of the step-history ledger. Append is
// the single mutation; rows are never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.LetterStepHistory) error
	ListByLetter(ctx context.Context, letterID uuid.UUID) ([]model.LetterStepHistory, error)
	CountByActions(ctx context.Context, letterID uuid.UUID, actions ...string) (int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *model.LetterStepHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// ListByLetter returns the canonical timeline: created_at ascending, id as
// the insertion-order tiebreak.
func (r *historyRepository) ListByLetter(ctx context.Context, letterID uuid.UUID) ([]model.LetterStepHistory, error) {
	var entries []model.LetterStepHistory
	err := GetDB(ctx, r.db).
		Preload("Actor").
		Where("letter_id = ?", letterID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) CountByActions(ctx context.Context, letterID uuid.UUID, actions ...string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.LetterStepHistory{}).
		Where("letter_id = ? AND action IN ?", letterID, actions).
		Count(&count).Error
	return count, err
}
