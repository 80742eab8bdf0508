package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
)

// ApproverResolver freezes the concrete user behind each of the eight
// approval slots at submission time. The resulting map stays authoritative
// for the letter's whole lifetime even if program assignments or role
// holders change later. Routing must not shift mid-flight.
type ApproverResolver interface {
	Resolve(ctx context.Context, programID, supervisorID uuid.UUID) (model.ApproverMap, error)
}

type approverResolver struct {
	users    repository.UserRepository
	programs repository.StudyProgramRepository
}

func NewApproverResolver(users repository.UserRepository, programs repository.StudyProgramRepository) ApproverResolver {
	return &approverResolver{users: users, programs: programs}
}

// fixedRoleSteps are filled from the directory: the first configured holder
// of each institutional role, system-wide.
var fixedRoleSteps = []model.WorkflowStep{
	model.StepFacultyAdmin,
	model.StepAcademicSupervisor,
	model.StepOfficeManager,
	model.StepViceDean,
	model.StepNumbering,
}

func (r *approverResolver) Resolve(ctx context.Context, programID, supervisorID uuid.UUID) (model.ApproverMap, error) {
	approvers := make(model.ApproverMap, model.StepCount)

	// Step 1: the student-chosen supervisor, validated for the capability.
	supervisor, err := r.users.GetByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("chosen supervisor does not exist: %w", apperr.ErrInvalidAssignment)
		}
		return nil, err
	}
	if !supervisor.CanSupervise {
		return nil, fmt.Errorf("user %s cannot act as pembimbing utama: %w", supervisor.Username, apperr.ErrInvalidAssignment)
	}
	approvers[model.StepSupervisor.SlotKey()] = supervisor.ID

	// Steps 2 and 3 come from the study program configuration.
	program, err := r.programs.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("study program does not exist: %w", apperr.ErrInvalidAssignment)
		}
		return nil, err
	}
	if program.CoordinatorID == nil {
		return nil, fmt.Errorf("program %s has no koordinator PKL: %w", program.Code, apperr.ErrInvalidAssignment)
	}
	if program.HeadID == nil {
		return nil, fmt.Errorf("program %s has no kaprodi: %w", program.Code, apperr.ErrInvalidAssignment)
	}
	approvers[model.StepCoordinator.SlotKey()] = *program.CoordinatorID
	approvers[model.StepProgramHead.SlotKey()] = *program.HeadID

	// Steps 4..8: fixed institutional roles, one holder each.
	for _, step := range fixedRoleSteps {
		holder, err := r.users.FindFirstByRole(ctx, step.RoleKey())
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, fmt.Errorf("no holder configured for role %s: %w", step.RoleKey(), apperr.ErrInvalidAssignment)
			}
			return nil, err
		}
		approvers[step.SlotKey()] = holder.ID
	}

	return approvers, nil
}
