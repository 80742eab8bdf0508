package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.LetterAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LetterAttachment, error)
	ListActive(ctx context.Context, letterID uuid.UUID) ([]model.LetterAttachment, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.LetterAttachment) error {
	return GetDB(ctx, r.db).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LetterAttachment, error) {
	var attachment model.LetterAttachment
	err := GetDB(ctx, r.db).First(&attachment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListActive(ctx context.Context, letterID uuid.UUID) ([]model.LetterAttachment, error) {
	var attachments []model.LetterAttachment
	err := GetDB(ctx, r.db).
		Where("letter_id = ? AND active = true", letterID).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).
		Model(&model.LetterAttachment{}).
		Where("id = ?", id).
		Update("active", false).Error
}
