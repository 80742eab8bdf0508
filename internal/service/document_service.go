package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/render"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/pkg/apperr"

	"go.uber.org/zap"
)

type PublishVersionRequest struct {
	Reason string `json:"reason"`
}

type VersionResponse struct {
	ID         string `json:"id"`
	LetterID   string `json:"letter_id"`
	Version    int    `json:"version"`
	Format     string `json:"format"`
	Reason     string `json:"reason"`
	IsPDF      bool   `json:"is_pdf"`
	IsEditable bool   `json:"is_editable"`
	URL        string `json:"url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type VersionDownload struct {
	FileName string
	MimeType string
	Content  []byte
}

// DocumentService manages the editable document versions of a letter. Only
// the academic-supervisor assignee may publish; publishing is a side-channel
// mutation that never moves the workflow.
type DocumentService interface {
	PublishVersion(ctx context.Context, letterID, callerID string, req PublishVersionRequest) (*VersionResponse, error)
	ListVersions(ctx context.Context, letterID string) ([]VersionResponse, error)
	DownloadVersion(ctx context.Context, letterID string, version int) (*VersionDownload, error)
}

type documentService struct {
	letters  repository.LetterRepository
	versions repository.VersionRepository
	history  repository.HistoryRepository
	renderer render.Renderer
	blobs    storage.BlobStorage
	tx       repository.TransactionManager
	logger   *zap.Logger
}

func NewDocumentService(
	letters repository.LetterRepository,
	versions repository.VersionRepository,
	history repository.HistoryRepository,
	renderer render.Renderer,
	blobs storage.BlobStorage,
	tx repository.TransactionManager,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		letters:  letters,
		versions: versions,
		history:  history,
		renderer: renderer,
		blobs:    blobs,
		tx:       tx,
		logger:   logger,
	}
}

func (s *documentService) PublishVersion(ctx context.Context, letterID, callerID string, req PublishVersionRequest) (*VersionResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}

	letter, err := s.letters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if letter.Status != model.LetterProcessing {
		return nil, fmt.Errorf("letter is %s: %w", letter.Status, apperr.ErrInvalidState)
	}
	// Publication belongs to the dosen PA slot regardless of where the
	// letter currently waits. A revision loop below step 5 must not block
	// republication.
	assignee, ok := letter.Approvers.ForStep(model.StepAcademicSupervisor)
	if !ok || assignee != caller {
		return nil, fmt.Errorf("caller is not the dosen PA of this letter: %w", apperr.ErrForbidden)
	}

	// Render and store before touching the database; an orphan blob on a
	// failed transaction is harmless, the reverse is not.
	html, err := s.renderer.Render(letter.Values, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", apperr.ErrStorage)
	}
	stored, err := s.blobs.Store(html, "letters/"+letter.ID.String(), "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", apperr.ErrStorage)
	}

	reason := req.Reason
	if reason == "" {
		reason = model.VersionReasonDraft
	}

	var published *model.LetterDocumentVersion
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		locked, txErr := s.letters.FindByIDForUpdate(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if locked.Status != model.LetterProcessing {
			return fmt.Errorf("letter is %s: %w", locked.Status, apperr.ErrInvalidState)
		}

		version, txErr := s.versions.NextVersion(txCtx, locked.ID)
		if txErr != nil {
			return txErr
		}

		published = &model.LetterDocumentVersion{
			LetterID:   locked.ID,
			Version:    version,
			StorageKey: stored.StorageKey,
			Format:     model.FormatHTML,
			CreatedBy:  caller,
			Reason:     reason,
			IsPDF:      false,
			IsEditable: true,
		}
		if txErr := s.versions.Create(txCtx, published); txErr != nil {
			return txErr
		}

		locked.LatestEditableVersion = version
		if txErr := s.letters.Update(txCtx, locked); txErr != nil {
			return fmt.Errorf("failed to move editable pointer: %w", txErr)
		}

		step := locked.Step()
		return s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    locked.ID,
			Action:      model.ActionDocumentPublished,
			Step:        model.StepPtr(model.StepAcademicSupervisor),
			ActorUserID: caller,
			ActorRole:   model.StepAcademicSupervisor.RoleKey(),
			FromStep:    model.StepPtr(step),
			ToStep:      model.StepPtr(step),
			Metadata:    model.JSONMap{"version": version, "reason": reason},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document version published",
		zap.String("letter_id", letterID),
		zap.Int("version", published.Version))

	return toVersionResponse(published, stored.URL), nil
}

func (s *documentService) ListVersions(ctx context.Context, letterID string) ([]VersionResponse, error) {
	id, err := parseLetterID(letterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.letters.FindByID(ctx, id); err != nil {
		return nil, err
	}

	versions, err := s.versions.ListByLetter(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		result = append(result, *toVersionResponse(&versions[i], ""))
	}
	return result, nil
}

func (s *documentService) DownloadVersion(ctx context.Context, letterID string, version int) (*VersionDownload, error) {
	id, err := parseLetterID(letterID)
	if err != nil {
		return nil, err
	}

	v, err := s.versions.FindByLetterAndVersion(ctx, id, version)
	if err != nil {
		return nil, err
	}
	if v.StorageKey == "" {
		return nil, fmt.Errorf("version %d has no stored artifact: %w", version, apperr.ErrNotFound)
	}

	content, err := s.blobs.Fetch(v.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch version %d: %w", version, apperr.ErrStorage)
	}

	mimeType := "text/html"
	ext := ".html"
	if v.IsPDF {
		mimeType = "application/pdf"
		ext = ".pdf"
	}

	return &VersionDownload{
		FileName: fmt.Sprintf("surat-%s-v%d%s", letterID, version, ext),
		MimeType: mimeType,
		Content:  content,
	}, nil
}

func toVersionResponse(v *model.LetterDocumentVersion, url string) *VersionResponse {
	return &VersionResponse{
		ID:         v.ID.String(),
		LetterID:   v.LetterID.String(),
		Version:    v.Version,
		Format:     v.Format,
		Reason:     v.Reason,
		IsPDF:      v.IsPDF,
		IsEditable: v.IsEditable,
		URL:        url,
		CreatedAt:  v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
