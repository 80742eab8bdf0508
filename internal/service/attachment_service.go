package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttachmentResponse struct {
	ID        string `json:"id"`
	LetterID  string `json:"letter_id"`
	Category  string `json:"category"`
	FileName  string `json:"file_name"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// AttachmentService manages the supporting files the first-approval gate
// checks. Upload and deactivate are creator-only and legal only while the
// letter is in flight.
type AttachmentService interface {
	Upload(ctx context.Context, letterID, callerID, category, fileName, mimeType string, content []byte) (*AttachmentResponse, error)
	List(ctx context.Context, letterID string) ([]AttachmentResponse, error)
	Deactivate(ctx context.Context, letterID, attachmentID, callerID string) error
}

type attachmentService struct {
	letters     repository.LetterRepository
	attachments repository.AttachmentRepository
	blobs       storage.BlobStorage
	logger      *zap.Logger
}

func NewAttachmentService(
	letters repository.LetterRepository,
	attachments repository.AttachmentRepository,
	blobs storage.BlobStorage,
	logger *zap.Logger,
) AttachmentService {
	return &attachmentService{
		letters:     letters,
		attachments: attachments,
		blobs:       blobs,
		logger:      logger,
	}
}

var allowedCategories = map[string]bool{
	model.AttachmentProposal: true,
	model.AttachmentKTM:      true,
	model.AttachmentUtama:    true,
}

func (s *attachmentService) Upload(ctx context.Context, letterID, callerID, category, fileName, mimeType string, content []byte) (*AttachmentResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}
	if !allowedCategories[category] {
		return nil, fmt.Errorf("unknown attachment category %q: %w", category, apperr.ErrValidation)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("empty attachment: %w", apperr.ErrValidation)
	}

	letter, err := s.letters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if letter.CreatedBy != caller {
		return nil, fmt.Errorf("only the requester may upload attachments: %w", apperr.ErrForbidden)
	}
	if letter.Status != model.LetterProcessing {
		return nil, fmt.Errorf("letter is %s: %w", letter.Status, apperr.ErrInvalidState)
	}

	stored, err := s.blobs.Store(content, "attachments/"+letter.ID.String(), mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", apperr.ErrStorage)
	}

	attachment := &model.LetterAttachment{
		LetterID:   letter.ID,
		Category:   category,
		FileName:   fileName,
		StorageKey: stored.StorageKey,
		URL:        stored.URL,
		MimeType:   mimeType,
		UploadedBy: caller,
		Active:     true,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}

	s.logger.Info("attachment uploaded",
		zap.String("letter_id", letterID),
		zap.String("category", category))

	return toAttachmentResponse(attachment), nil
}

func (s *attachmentService) List(ctx context.Context, letterID string) ([]AttachmentResponse, error) {
	id, err := parseLetterID(letterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.letters.FindByID(ctx, id); err != nil {
		return nil, err
	}

	attachments, err := s.attachments.ListActive(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		result = append(result, *toAttachmentResponse(&attachments[i]))
	}
	return result, nil
}

func (s *attachmentService) Deactivate(ctx context.Context, letterID, attachmentID, callerID string) error {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return err
	}
	attID, err := uuid.Parse(attachmentID)
	if err != nil {
		return fmt.Errorf("invalid attachment id: %w", apperr.ErrValidation)
	}

	letter, err := s.letters.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if letter.CreatedBy != caller {
		return fmt.Errorf("only the requester may remove attachments: %w", apperr.ErrForbidden)
	}
	if letter.Status != model.LetterProcessing {
		return fmt.Errorf("letter is %s: %w", letter.Status, apperr.ErrInvalidState)
	}

	attachment, err := s.attachments.FindByID(ctx, attID)
	if err != nil {
		return err
	}
	if attachment.LetterID != letter.ID {
		return fmt.Errorf("attachment belongs to another letter: %w", apperr.ErrNotFound)
	}

	return s.attachments.Deactivate(ctx, attID)
}

func toAttachmentResponse(a *model.LetterAttachment) *AttachmentResponse {
	return &AttachmentResponse{
		ID:        a.ID.String(),
		LetterID:  a.LetterID.String(),
		Category:  a.Category,
		FileName:  a.FileName,
		URL:       a.URL,
		MimeType:  a.MimeType,
		Active:    a.Active,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}
