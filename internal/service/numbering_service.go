package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/render"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLetterTypeCode is used when the numbering authority does not pick a
// specific type.
const DefaultLetterTypeCode = "PKL"

type AssignNumberRequest struct {
	LetterTypeCode string `json:"letter_type_code"`
}

type NumberResponse struct {
	LetterID   string `json:"letter_id"`
	Number     string `json:"number"`
	Counter    int    `json:"counter"`
	TypeCode   string `json:"letter_type_code"`
	Status     string `json:"status"`
	PDFVersion int    `json:"pdf_version"`
}

// NumberingService finalizes a signed letter: it reserves the institutional
// number, materializes the final PDF artifact, and completes the letter.
//
// The three phases form an explicit compensation saga. The reservation
// commits on its own so the unique index can arbitrate concurrent counter
// races; if materialization or finalization fails afterwards, the
// reservation is deleted and the error propagates. The NUMBERED ledger row
// is written only in the finalize phase, so the ledger itself never needs
// compensating.
type NumberingService interface {
	AssignNumber(ctx context.Context, letterID, callerID string, req AssignNumberRequest) (*NumberResponse, error)
}

type numberingService struct {
	letters  repository.LetterRepository
	numbers  repository.NumberRepository
	versions repository.VersionRepository
	history  repository.HistoryRepository
	renderer render.Renderer
	blobs    storage.BlobStorage
	tx       repository.TransactionManager
	hub      NotificationHub
	logger   *zap.Logger
}

func NewNumberingService(
	letters repository.LetterRepository,
	numbers repository.NumberRepository,
	versions repository.VersionRepository,
	history repository.HistoryRepository,
	renderer render.Renderer,
	blobs storage.BlobStorage,
	tx repository.TransactionManager,
	hub NotificationHub,
	logger *zap.Logger,
) NumberingService {
	return &numberingService{
		letters:  letters,
		numbers:  numbers,
		versions: versions,
		history:  history,
		renderer: renderer,
		blobs:    blobs,
		tx:       tx,
		hub:      hub,
		logger:   logger,
	}
}

func (s *numberingService) AssignNumber(ctx context.Context, letterID, callerID string, req AssignNumberRequest) (*NumberResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}

	typeCode := req.LetterTypeCode
	if typeCode == "" {
		typeCode = DefaultLetterTypeCode
	}

	letter, err := s.letters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPreconditions(letter, caller); err != nil {
		return nil, err
	}

	// Phase 1: reserve the number in its own transaction so the unique index
	// arbitrates counter races before any out-of-process work starts.
	number, err := s.reserve(ctx, letter, caller, typeCode)
	if err != nil {
		return nil, err
	}

	// Phase 2: materialize the final artifact (render + PDF + blob store).
	// All of this is out of process; any failure rolls back the reservation.
	stored, err := s.materialize(letter, number.Number)
	if err != nil {
		s.compensate(ctx, number)
		return nil, err
	}

	// Phase 3: finalize. Version row, COMPLETED status and NUMBERED ledger
	// row land in one transaction.
	pdfVersion, err := s.finalize(ctx, id, caller, number, stored)
	if err != nil {
		s.compensate(ctx, number)
		return nil, err
	}

	s.logger.Info("letter numbered",
		zap.String("letter_id", letter.ID.String()),
		zap.String("number", number.Number))
	s.broadcastCompleted(letter.ID)

	return &NumberResponse{
		LetterID:   letter.ID.String(),
		Number:     number.Number,
		Counter:    number.Counter,
		TypeCode:   number.LetterTypeCode,
		Status:     model.LetterCompleted,
		PDFVersion: pdfVersion,
	}, nil
}

func (s *numberingService) checkPreconditions(letter *model.Letter, caller uuid.UUID) error {
	if letter.Status != model.LetterProcessing || letter.CurrentStep == nil {
		return fmt.Errorf("letter is %s: %w", letter.Status, apperr.ErrInvalidState)
	}
	if letter.Step() != model.StepNumbering {
		return fmt.Errorf("letter is at step %d, not the numbering step: %w", letter.Step(), apperr.ErrInvalidState)
	}
	if err := requireAssignee(letter, model.StepNumbering, caller); err != nil {
		return err
	}
	if letter.SignedAt == nil {
		return fmt.Errorf("letter must be signed before numbering: %w", apperr.ErrNotSigned)
	}
	if letter.Number != nil {
		return fmt.Errorf("letter already numbered as %s: %w", letter.Number.Number, apperr.ErrInvalidState)
	}
	return nil
}

func (s *numberingService) reserve(ctx context.Context, letter *model.Letter, caller uuid.UUID, typeCode string) (*model.LetterNumber, error) {
	var number *model.LetterNumber
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		today := time.Now()
		counter, txErr := s.numbers.NextCounter(txCtx, typeCode, today)
		if txErr != nil {
			return txErr
		}

		number = &model.LetterNumber{
			LetterID:       letter.ID,
			LetterTypeCode: typeCode,
			Date:           today,
			Counter:        counter,
			Number:         formatLetterNumber(counter, typeCode, today),
			AssignedBy:     caller,
		}
		return s.numbers.Create(txCtx, number)
	})
	if err != nil {
		return nil, err
	}
	return number, nil
}

func (s *numberingService) materialize(letter *model.Letter, number string) (*storage.StoredObject, error) {
	html, err := s.renderer.Render(letter.Values, &number, letter.SignatureURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render final letter: %w", apperr.ErrStorage)
	}

	pdf, err := s.renderer.ToPDF(html)
	if err != nil {
		return nil, fmt.Errorf("failed to convert final letter to pdf: %w", apperr.ErrStorage)
	}

	stored, err := s.blobs.Store(pdf, "letters/"+letter.ID.String(), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store final letter: %w", apperr.ErrStorage)
	}
	return stored, nil
}

func (s *numberingService) finalize(ctx context.Context, id uuid.UUID, caller uuid.UUID, number *model.LetterNumber, stored *storage.StoredObject) (int, error) {
	var pdfVersion int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, txErr := s.letters.FindByIDForUpdate(txCtx, id)
		if txErr != nil {
			return txErr
		}
		// Re-check under lock: a concurrent transition may have moved the
		// letter while the artifact was being materialized.
		if letter.Status != model.LetterProcessing || letter.Step() != model.StepNumbering {
			return fmt.Errorf("letter moved during numbering: %w", apperr.ErrInvalidState)
		}

		version, txErr := s.versions.NextVersion(txCtx, letter.ID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.versions.Create(txCtx, &model.LetterDocumentVersion{
			LetterID:   letter.ID,
			Version:    version,
			StorageKey: stored.StorageKey,
			Format:     model.FormatPDF,
			CreatedBy:  caller,
			Reason:     model.VersionReasonFinalized,
			IsPDF:      true,
			IsEditable: false,
		}); txErr != nil {
			return txErr
		}

		letter.LatestPDFVersion = version
		letter.Status = model.LetterCompleted
		letter.CurrentStep = nil
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to complete letter: %w", txErr)
		}

		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionNumbered,
			Step:        model.StepPtr(model.StepNumbering),
			ActorUserID: caller,
			ActorRole:   model.StepNumbering.RoleKey(),
			FromStep:    model.StepPtr(model.StepNumbering),
			ToStep:      nil, // terminal
			Metadata: model.JSONMap{
				"number":      number.Number,
				"pdf_version": version,
			},
		}); txErr != nil {
			return txErr
		}

		pdfVersion = version
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pdfVersion, nil
}

// compensate deletes the number reservation after a failed materialization
// or finalization. This is the single documented delete in the workflow.
func (s *numberingService) compensate(ctx context.Context, number *model.LetterNumber) {
	if err := s.numbers.Delete(ctx, number.ID); err != nil {
		// The reservation survives; it will block this letter from being
		// renumbered until cleaned up. Loud log, nothing else to do.
		s.logger.Error("failed to roll back number reservation",
			zap.String("letter_id", number.LetterID.String()),
			zap.String("number", number.Number),
			zap.Error(err))
		return
	}
	s.logger.Warn("number reservation rolled back",
		zap.String("letter_id", number.LetterID.String()),
		zap.String("number", number.Number))
}

// formatLetterNumber builds the institutional display form, e.g.
// 007/E-OFF/PKL/VIII/2026.
func formatLetterNumber(counter int, typeCode string, date time.Time) string {
	return fmt.Sprintf("%03d/E-OFF/%s/%s/%d", counter, typeCode, romanMonth(date.Month()), date.Year())
}

var romanMonths = [13]string{
	"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII",
}

func romanMonth(m time.Month) string {
	return romanMonths[m]
}

func (s *numberingService) broadcastCompleted(letterID uuid.UUID) {
	if s.hub == nil {
		return
	}
	event := fmt.Sprintf(`{"type":"letter_event","letter_id":%q,"action":%q,"status":%q}`,
		letterID.String(), model.ActionNumbered, model.LetterCompleted)
	select {
	case s.hub.GetBroadcast() <- []byte(event):
	default:
	}
}
