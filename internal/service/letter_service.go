package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minCommentLength = 10

// NotificationHub pushes workflow events to connected clients. Optional,
// the engine works without one.
type NotificationHub interface {
	GetBroadcast() chan []byte
}

// --- DTOs ---

type SubmitLetterRequest struct {
	StudyProgramID string                 `json:"study_program_id" binding:"required,uuid"`
	SupervisorID   string                 `json:"supervisor_id" binding:"required,uuid"`
	Values         map[string]interface{} `json:"values" binding:"required"`
}

type ApproveLetterRequest struct {
	Comment string `json:"comment"`
	// SignatureDataURL is mandatory at the signing step (wakil dekan) and
	// ignored elsewhere. Format: data:image/png;base64,...
	SignatureDataURL string `json:"signature_data_url"`
}

type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type ResubmitLetterRequest struct {
	Values map[string]interface{} `json:"values" binding:"required"`
}

type LetterResponse struct {
	ID            string                 `json:"id"`
	CreatedBy     string                 `json:"created_by"`
	CreatorName   string                 `json:"creator_name,omitempty"`
	ProgramID     string                 `json:"study_program_id"`
	Status        string                 `json:"status"`
	CurrentStep   *int                   `json:"current_step"`
	CurrentRole   string                 `json:"current_role,omitempty"`
	Approvers     map[string]string      `json:"approvers"`
	Values        map[string]interface{} `json:"values"`
	SignedAt      *string                `json:"signed_at"`
	SignatureURL  string                 `json:"signature_url,omitempty"`
	Number        string                 `json:"number,omitempty"`
	LatestVersion int                    `json:"latest_editable_version"`
	LatestPDF     int                    `json:"latest_pdf_version"`
	CreatedAt     string                 `json:"created_at"`
}

type HistoryResponse struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	Step      *int                   `json:"step"`
	ActorID   string                 `json:"actor_user_id"`
	ActorName string                 `json:"actor_name,omitempty"`
	ActorRole string                 `json:"actor_role"`
	Comment   *string                `json:"comment"`
	FromStep  *int                   `json:"from_step"`
	ToStep    *int                   `json:"to_step"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// --- Interface ---

// LetterService is the approval workflow engine. Every transition runs in a
// single transaction holding a row lock on the letter, so two concurrent
// calls against the same pre-state cannot both succeed; each transition
// appends its ledger rows inside that same transaction.
type LetterService interface {
	Submit(ctx context.Context, creatorID string, req SubmitLetterRequest) (*LetterResponse, error)
	Approve(ctx context.Context, letterID, callerID string, req ApproveLetterRequest) (*LetterResponse, error)
	Reject(ctx context.Context, letterID, callerID string, req CommentRequest) (*LetterResponse, error)
	Revise(ctx context.Context, letterID, callerID string, req CommentRequest) (*LetterResponse, error)
	SelfRevise(ctx context.Context, letterID, callerID string) (*LetterResponse, error)
	Resubmit(ctx context.Context, letterID, callerID string, req ResubmitLetterRequest) (*LetterResponse, error)
	Cancel(ctx context.Context, letterID, callerID string) (*LetterResponse, error)
	GetLetter(ctx context.Context, letterID string) (*LetterResponse, error)
	ListLetters(ctx context.Context, filter repository.LetterFilter) ([]LetterResponse, int64, error)
	ListHistory(ctx context.Context, letterID string) ([]HistoryResponse, error)
}

type letterService struct {
	letters     repository.LetterRepository
	history     repository.HistoryRepository
	attachments repository.AttachmentRepository
	resolver    ApproverResolver
	blobs       storage.BlobStorage
	tx          repository.TransactionManager
	hub         NotificationHub
	logger      *zap.Logger
}

func NewLetterService(
	letters repository.LetterRepository,
	history repository.HistoryRepository,
	attachments repository.AttachmentRepository,
	resolver ApproverResolver,
	blobs storage.BlobStorage,
	tx repository.TransactionManager,
	hub NotificationHub,
	logger *zap.Logger,
) LetterService {
	return &letterService{
		letters:     letters,
		history:     history,
		attachments: attachments,
		resolver:    resolver,
		blobs:       blobs,
		tx:          tx,
		hub:         hub,
		logger:      logger,
	}
}

// --- Implementation ---

func (s *letterService) Submit(ctx context.Context, creatorID string, req SubmitLetterRequest) (*LetterResponse, error) {
	creator, err := uuid.Parse(creatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator id: %w", apperr.ErrValidation)
	}
	programID, err := uuid.Parse(req.StudyProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid study program id: %w", apperr.ErrValidation)
	}
	supervisorID, err := uuid.Parse(req.SupervisorID)
	if err != nil {
		return nil, fmt.Errorf("invalid supervisor id: %w", apperr.ErrValidation)
	}

	// One active letter per creator. The partial unique index on
	// letters(created_by) WHERE status='PROCESSING' closes the race this
	// check leaves open.
	if _, err := s.letters.FindActiveByCreator(ctx, creator); err == nil {
		return nil, fmt.Errorf("an active letter already exists for this user: %w", apperr.ErrInvalidState)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	approvers, err := s.resolver.Resolve(ctx, programID, supervisorID)
	if err != nil {
		return nil, err
	}

	letter := &model.Letter{
		CreatedBy:      creator,
		StudyProgramID: programID,
		Status:         model.LetterProcessing,
		Approvers:      approvers,
		Values:         model.JSONMap(req.Values),
	}
	letter.SetStep(model.StepSupervisor)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.letters.Create(txCtx, letter); createErr != nil {
			// Partial unique index backstop for a concurrent double submit.
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("an active letter already exists for this user: %w", apperr.ErrInvalidState)
			}
			return fmt.Errorf("failed to create letter: %w", createErr)
		}
		return s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionSubmitted,
			Step:        model.StepPtr(model.StepSupervisor),
			ActorUserID: creator,
			ActorRole:   model.ActorRoleRequester,
			FromStep:    nil,
			ToStep:      model.StepPtr(model.StepSupervisor),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("letter submitted",
		zap.String("letter_id", letter.ID.String()),
		zap.String("created_by", creatorID))
	s.broadcast(letter, model.ActionSubmitted)

	return s.reload(ctx, letter.ID)
}

func (s *letterService) Approve(ctx context.Context, letterID, callerID string, req ApproveLetterRequest) (*LetterResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}

	var result *model.Letter
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, step, txErr := s.lockProcessing(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireAssignee(letter, step, caller); txErr != nil {
			return txErr
		}

		// The numbering step has no approve transition; its only operation
		// is AssignNumber, which is the sole COMPLETED trigger.
		if step == model.StepNumbering {
			return fmt.Errorf("step %d finishes via number assignment, not approval: %w", step, apperr.ErrInvalidState)
		}

		if step == model.StepSupervisor {
			if txErr := s.checkMandatoryAttachments(txCtx, letter.ID); txErr != nil {
				return txErr
			}
		}

		if step == model.StepViceDean {
			if txErr := s.signLetter(txCtx, letter, caller, req.SignatureDataURL); txErr != nil {
				return txErr
			}
		}

		next := step + 1
		letter.SetStep(next)
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to advance letter: %w", txErr)
		}

		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionApproved,
			Step:        model.StepPtr(step),
			ActorUserID: caller,
			ActorRole:   step.RoleKey(),
			Comment:     optionalComment(req.Comment),
			FromStep:    model.StepPtr(step),
			ToStep:      model.StepPtr(next),
		}); txErr != nil {
			return txErr
		}

		result = letter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(result, model.ActionApproved)
	return s.reload(ctx, result.ID)
}

func (s *letterService) Reject(ctx context.Context, letterID, callerID string, req CommentRequest) (*LetterResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}
	if err := requireComment(req.Comment); err != nil {
		return nil, err
	}

	var result *model.Letter
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, step, txErr := s.lockProcessing(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireAssignee(letter, step, caller); txErr != nil {
			return txErr
		}

		letter.Status = model.LetterRejected
		letter.CurrentStep = nil
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to reject letter: %w", txErr)
		}

		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionRejected,
			Step:        model.StepPtr(step),
			ActorUserID: caller,
			ActorRole:   step.RoleKey(),
			Comment:     optionalComment(req.Comment),
			FromStep:    model.StepPtr(step),
			ToStep:      nil, // terminal
		}); txErr != nil {
			return txErr
		}

		result = letter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(result, model.ActionRejected)
	return s.reload(ctx, result.ID)
}

func (s *letterService) Revise(ctx context.Context, letterID, callerID string, req CommentRequest) (*LetterResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}
	if err := requireComment(req.Comment); err != nil {
		return nil, err
	}

	var result *model.Letter
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, step, txErr := s.lockProcessing(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireAssignee(letter, step, caller); txErr != nil {
			return txErr
		}

		target := step.RollbackTarget()
		letter.SetStep(target)
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to roll letter back: %w", txErr)
		}

		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionRevised,
			Step:        model.StepPtr(step),
			ActorUserID: caller,
			ActorRole:   step.RoleKey(),
			Comment:     optionalComment(req.Comment),
			FromStep:    model.StepPtr(step),
			ToStep:      model.StepPtr(target),
		}); txErr != nil {
			return txErr
		}

		result = letter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(result, model.ActionRevised)
	return s.reload(ctx, result.ID)
}

func (s *letterService) SelfRevise(ctx context.Context, letterID, callerID string) (*LetterResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}

	var result *model.Letter
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, step, txErr := s.lockProcessing(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if letter.CreatedBy != caller {
			return fmt.Errorf("only the requester may self-revise: %w", apperr.ErrForbidden)
		}
		if letter.SignedAt != nil {
			return fmt.Errorf("letter is signed: %w", apperr.ErrAlreadySigned)
		}

		target := step.RollbackTarget()
		letter.SetStep(target)
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to roll letter back: %w", txErr)
		}

		comment := "Direvisi mandiri oleh pemohon"
		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionSelfRevised,
			Step:        model.StepPtr(step),
			ActorUserID: caller,
			ActorRole:   model.ActorRoleRequester,
			Comment:     &comment,
			FromStep:    model.StepPtr(step),
			ToStep:      model.StepPtr(target),
		}); txErr != nil {
			return txErr
		}

		result = letter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(result, model.ActionSelfRevised)
	return s.reload(ctx, result.ID)
}

func (s *letterService) Resubmit(ctx context.Context, letterID, callerID string, req ResubmitLetterRequest) (*LetterResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}

	var result *model.Letter
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, step, txErr := s.lockProcessing(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if letter.CreatedBy != caller {
			return fmt.Errorf("only the requester may resubmit: %w", apperr.ErrForbidden)
		}

		revisions, txErr := s.history.CountByActions(txCtx, letter.ID, model.ActionRevised, model.ActionSelfRevised)
		if txErr != nil {
			return txErr
		}
		if revisions == 0 {
			return fmt.Errorf("letter was never sent back for revision: %w", apperr.ErrNothingToRevise)
		}

		letter.Values = model.JSONMap(req.Values)
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to update letter values: %w", txErr)
		}

		// No step change here. The marker row records that content changed
		// while awaiting re-approval.
		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionResubmitted,
			Step:        model.StepPtr(step),
			ActorUserID: caller,
			ActorRole:   model.ActorRoleRequester,
			FromStep:    model.StepPtr(step),
			ToStep:      model.StepPtr(step),
		}); txErr != nil {
			return txErr
		}

		result = letter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(result, model.ActionResubmitted)
	return s.reload(ctx, result.ID)
}

func (s *letterService) Cancel(ctx context.Context, letterID, callerID string) (*LetterResponse, error) {
	id, caller, err := parseIDs(letterID, callerID)
	if err != nil {
		return nil, err
	}

	var result *model.Letter
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		letter, step, txErr := s.lockProcessing(txCtx, id)
		if txErr != nil {
			return txErr
		}
		if letter.CreatedBy != caller {
			return fmt.Errorf("only the requester may cancel: %w", apperr.ErrForbidden)
		}
		if letter.SignedAt != nil {
			return fmt.Errorf("letter is signed: %w", apperr.ErrAlreadySigned)
		}

		letter.Status = model.LetterCancelled
		letter.CurrentStep = nil
		if txErr := s.letters.Update(txCtx, letter); txErr != nil {
			return fmt.Errorf("failed to cancel letter: %w", txErr)
		}

		if txErr := s.history.Append(txCtx, &model.LetterStepHistory{
			LetterID:    letter.ID,
			Action:      model.ActionCancelled,
			Step:        model.StepPtr(step),
			ActorUserID: caller,
			ActorRole:   model.ActorRoleRequester,
			FromStep:    model.StepPtr(step),
			ToStep:      nil, // terminal
		}); txErr != nil {
			return txErr
		}

		result = letter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(result, model.ActionCancelled)
	return s.reload(ctx, result.ID)
}

func (s *letterService) GetLetter(ctx context.Context, letterID string) (*LetterResponse, error) {
	id, err := uuid.Parse(letterID)
	if err != nil {
		return nil, fmt.Errorf("invalid letter id: %w", apperr.ErrValidation)
	}
	return s.reload(ctx, id)
}

func (s *letterService) ListLetters(ctx context.Context, filter repository.LetterFilter) ([]LetterResponse, int64, error) {
	letters, total, err := s.letters.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]LetterResponse, 0, len(letters))
	for i := range letters {
		result = append(result, *toLetterResponse(&letters[i]))
	}
	return result, total, nil
}

func (s *letterService) ListHistory(ctx context.Context, letterID string) ([]HistoryResponse, error) {
	id, err := uuid.Parse(letterID)
	if err != nil {
		return nil, fmt.Errorf("invalid letter id: %w", apperr.ErrValidation)
	}
	if _, err := s.letters.FindByID(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.history.ListByLetter(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]HistoryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		resp := HistoryResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			Step:      e.Step,
			ActorID:   e.ActorUserID.String(),
			ActorRole: e.ActorRole,
			Comment:   e.Comment,
			FromStep:  e.FromStep,
			ToStep:    e.ToStep,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.Actor != nil {
			resp.ActorName = e.Actor.Username
		}
		result = append(result, resp)
	}
	return result, nil
}

// --- Transition plumbing ---

// lockProcessing loads the letter under a row lock and verifies it is still
// in flight. All transition preconditions are evaluated against this locked
// snapshot, so a concurrent transition that committed first makes this one
// fail with InvalidState instead of double-applying.
func (s *letterService) lockProcessing(ctx context.Context, id uuid.UUID) (*model.Letter, model.WorkflowStep, error) {
	letter, err := s.letters.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, 0, fmt.Errorf("letter %s: %w", id, apperr.ErrNotFound)
		}
		return nil, 0, err
	}
	if letter.Status != model.LetterProcessing || letter.CurrentStep == nil {
		return nil, 0, fmt.Errorf("letter is %s: %w", letter.Status, apperr.ErrInvalidState)
	}
	return letter, letter.Step(), nil
}

func requireAssignee(letter *model.Letter, step model.WorkflowStep, caller uuid.UUID) error {
	assignee, ok := letter.Approvers.ForStep(step)
	if !ok {
		return fmt.Errorf("no assignee frozen for step %d: %w", step, apperr.ErrInvalidState)
	}
	if assignee != caller {
		return fmt.Errorf("caller is not the assignee of step %d: %w", step, apperr.ErrForbidden)
	}
	return nil
}

func requireComment(comment string) error {
	if len(strings.TrimSpace(comment)) < minCommentLength {
		return fmt.Errorf("comment must be at least %d characters: %w", minCommentLength, apperr.ErrValidation)
	}
	return nil
}

func optionalComment(comment string) *string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil
	}
	return &comment
}

// checkMandatoryAttachments is the gate before the very first approval:
// at least one proposal AND one KTM attachment, or two tagged utama.
func (s *letterService) checkMandatoryAttachments(ctx context.Context, letterID uuid.UUID) error {
	attachments, err := s.attachments.ListActive(ctx, letterID)
	if err != nil {
		return err
	}

	var proposal, ktm, utama int
	for _, a := range attachments {
		switch a.Category {
		case model.AttachmentProposal:
			proposal++
		case model.AttachmentKTM:
			ktm++
		case model.AttachmentUtama:
			utama++
		}
	}

	if (proposal >= 1 && ktm >= 1) || utama >= 2 {
		return nil
	}
	return fmt.Errorf("need proposal+ktm or two utama attachments: %w", apperr.ErrMissingAttachments)
}

// signLetter decodes the signature payload, stores it and writes the SIGNED
// ledger row. Runs inside the approval transaction, before the approval's
// own row.
func (s *letterService) signLetter(ctx context.Context, letter *model.Letter, caller uuid.UUID, dataURL string) error {
	if strings.TrimSpace(dataURL) == "" {
		return fmt.Errorf("signature payload is required at the signing step: %w", apperr.ErrValidation)
	}

	content, mimeType, err := decodeDataURL(dataURL)
	if err != nil {
		return fmt.Errorf("invalid signature payload: %w", apperr.ErrValidation)
	}

	stored, err := s.blobs.Store(content, "signatures/"+letter.ID.String(), mimeType)
	if err != nil {
		return fmt.Errorf("failed to store signature: %w", apperr.ErrStorage)
	}

	now := time.Now()
	letter.SignedAt = &now
	letter.SignatureURL = stored.URL

	return s.history.Append(ctx, &model.LetterStepHistory{
		LetterID:    letter.ID,
		Action:      model.ActionSigned,
		Step:        model.StepPtr(model.StepViceDean),
		ActorUserID: caller,
		ActorRole:   model.StepViceDean.RoleKey(),
		FromStep:    model.StepPtr(model.StepViceDean),
		ToStep:      model.StepPtr(model.StepViceDean),
		Metadata:    model.JSONMap{"signature_url": stored.URL},
	})
}

// decodeDataURL splits a data:<mime>;base64,<payload> URL.
func decodeDataURL(dataURL string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", errors.New("not a data url")
	}
	meta, payload, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("malformed data url")
	}
	mimeType := strings.TrimSuffix(meta, ";base64")

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return content, mimeType, nil
}

func parseLetterID(letterID string) (uuid.UUID, error) {
	id, err := uuid.Parse(letterID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid letter id: %w", apperr.ErrValidation)
	}
	return id, nil
}

func parseIDs(letterID, callerID string) (uuid.UUID, uuid.UUID, error) {
	id, err := uuid.Parse(letterID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid letter id: %w", apperr.ErrValidation)
	}
	caller, err := uuid.Parse(callerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid caller id: %w", apperr.ErrValidation)
	}
	return id, caller, nil
}

func (s *letterService) broadcast(letter *model.Letter, action string) {
	if s.hub == nil || letter == nil {
		return
	}

	event, _ := json.Marshal(map[string]interface{}{
		"type":      "letter_event",
		"letter_id": letter.ID.String(),
		"action":    action,
		"step":      letter.CurrentStep,
		"status":    letter.Status,
	})

	select {
	case s.hub.GetBroadcast() <- event:
	default:
		s.logger.Warn("notification hub busy, event dropped",
			zap.String("letter_id", letter.ID.String()),
			zap.String("action", action))
	}
}

func (s *letterService) reload(ctx context.Context, id uuid.UUID) (*LetterResponse, error) {
	letter, err := s.letters.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLetterResponse(letter), nil
}

func toLetterResponse(l *model.Letter) *LetterResponse {
	resp := &LetterResponse{
		ID:            l.ID.String(),
		CreatedBy:     l.CreatedBy.String(),
		ProgramID:     l.StudyProgramID.String(),
		Status:        l.Status,
		CurrentStep:   l.CurrentStep,
		Values:        l.Values,
		SignatureURL:  l.SignatureURL,
		LatestVersion: l.LatestEditableVersion,
		LatestPDF:     l.LatestPDFVersion,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}

	resp.Approvers = make(map[string]string, len(l.Approvers))
	for slot, id := range l.Approvers {
		resp.Approvers[slot] = id.String()
	}

	if l.CurrentStep != nil {
		resp.CurrentRole = model.WorkflowStep(*l.CurrentStep).RoleKey()
	}
	if l.Creator != nil {
		resp.CreatorName = l.Creator.Username
	}
	if l.SignedAt != nil {
		signed := l.SignedAt.Format(time.RFC3339)
		resp.SignedAt = &signed
	}
	if l.Number != nil {
		resp.Number = l.Number.Number
	}

	return resp
}
