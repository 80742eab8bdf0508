package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
)

type CreateStudyProgramRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Faculty string `json:"faculty" binding:"required"`
}

type UpdateStudyProgramRequest struct {
	Name          string `json:"name"`
	Faculty       string `json:"faculty"`
	CoordinatorID string `json:"coordinator_id"`
	HeadID        string `json:"head_id"`
}

type StudyProgramResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Faculty       string  `json:"faculty"`
	CoordinatorID *string `json:"coordinator_id"`
	Coordinator   string  `json:"coordinator,omitempty"`
	HeadID        *string `json:"head_id"`
	Head          string  `json:"head,omitempty"`
}

// StudyProgramService manages program configuration. The koordinator PKL and
// kaprodi assignments set here feed approver resolution at submission time;
// changing them never re-routes letters already in flight.
type StudyProgramService interface {
	Create(ctx context.Context, req CreateStudyProgramRequest) (*StudyProgramResponse, error)
	GetByID(ctx context.Context, id string) (*StudyProgramResponse, error)
	List(ctx context.Context, page, limit int) ([]StudyProgramResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateStudyProgramRequest) (*StudyProgramResponse, error)
}

type studyProgramService struct {
	programs repository.StudyProgramRepository
	users    repository.UserRepository
}

func NewStudyProgramService(programs repository.StudyProgramRepository, users repository.UserRepository) StudyProgramService {
	return &studyProgramService{programs: programs, users: users}
}

func (s *studyProgramService) Create(ctx context.Context, req CreateStudyProgramRequest) (*StudyProgramResponse, error) {
	program := &model.StudyProgram{
		Code:    req.Code,
		Name:    req.Name,
		Faculty: req.Faculty,
	}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, err
	}
	return toProgramResponse(program), nil
}

func (s *studyProgramService) GetByID(ctx context.Context, id string) (*StudyProgramResponse, error) {
	programID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid study program id: %w", apperr.ErrValidation)
	}
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	return toProgramResponse(program), nil
}

func (s *studyProgramService) List(ctx context.Context, page, limit int) ([]StudyProgramResponse, int64, error) {
	programs, total, err := s.programs.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]StudyProgramResponse, 0, len(programs))
	for i := range programs {
		result = append(result, *toProgramResponse(&programs[i]))
	}
	return result, total, nil
}

func (s *studyProgramService) Update(ctx context.Context, id string, req UpdateStudyProgramRequest) (*StudyProgramResponse, error) {
	programID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid study program id: %w", apperr.ErrValidation)
	}
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		program.Name = req.Name
	}
	if req.Faculty != "" {
		program.Faculty = req.Faculty
	}
	if req.CoordinatorID != "" {
		coordinator, err := s.assignableUser(ctx, req.CoordinatorID, model.RoleCoordinator)
		if err != nil {
			return nil, err
		}
		program.CoordinatorID = &coordinator.ID
	}
	if req.HeadID != "" {
		head, err := s.assignableUser(ctx, req.HeadID, model.RoleProgramHead)
		if err != nil {
			return nil, err
		}
		program.HeadID = &head.ID
	}

	if err := s.programs.Update(ctx, program); err != nil {
		return nil, err
	}

	updated, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	return toProgramResponse(updated), nil
}

func (s *studyProgramService) assignableUser(ctx context.Context, id, wantRole string) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", apperr.ErrValidation)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != wantRole {
		return nil, fmt.Errorf("user %s does not hold role %s: %w", user.Username, wantRole, apperr.ErrInvalidAssignment)
	}
	return user, nil
}

func toProgramResponse(p *model.StudyProgram) *StudyProgramResponse {
	resp := &StudyProgramResponse{
		ID:      p.ID.String(),
		Code:    p.Code,
		Name:    p.Name,
		Faculty: p.Faculty,
	}
	if p.CoordinatorID != nil {
		id := p.CoordinatorID.String()
		resp.CoordinatorID = &id
		if p.Coordinator != nil {
			resp.Coordinator = p.Coordinator.Username
		}
	}
	if p.HeadID != nil {
		id := p.HeadID.String()
		resp.HeadID = &id
		if p.Head != nil {
			resp.Head = p.Head.Username
		}
	}
	return resp
}
