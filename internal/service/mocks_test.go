package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Function-field mocks: each test sets only the calls it expects.

type mockLetterRepo struct {
	CreateFn              func(ctx context.Context, letter *model.Letter) error
	FindByIDFn            func(ctx context.Context, id uuid.UUID) (*model.Letter, error)
	FindByIDForUpdateFn   func(ctx context.Context, id uuid.UUID) (*model.Letter, error)
	FindActiveByCreatorFn func(ctx context.Context, creatorID uuid.UUID) (*model.Letter, error)
	ListFn                func(ctx context.Context, filter repository.LetterFilter) ([]model.Letter, int64, error)
	UpdateFn              func(ctx context.Context, letter *model.Letter) error
}

func (m *mockLetterRepo) Create(ctx context.Context, letter *model.Letter) error {
	return m.CreateFn(ctx, letter)
}
func (m *mockLetterRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
	return m.FindByIDFn(ctx, id)
}
func (m *mockLetterRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
	return m.FindByIDForUpdateFn(ctx, id)
}
func (m *mockLetterRepo) FindActiveByCreator(ctx context.Context, creatorID uuid.UUID) (*model.Letter, error) {
	return m.FindActiveByCreatorFn(ctx, creatorID)
}
func (m *mockLetterRepo) List(ctx context.Context, filter repository.LetterFilter) ([]model.Letter, int64, error) {
	return m.ListFn(ctx, filter)
}
func (m *mockLetterRepo) Update(ctx context.Context, letter *model.Letter) error {
	return m.UpdateFn(ctx, letter)
}

// mockHistoryRepo records every appended ledger row.
type mockHistoryRepo struct {
	entries          []model.LetterStepHistory
	AppendErr        error
	CountByActionsFn func(ctx context.Context, letterID uuid.UUID, actions ...string) (int64, error)
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *model.LetterStepHistory) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}
func (m *mockHistoryRepo) ListByLetter(ctx context.Context, letterID uuid.UUID) ([]model.LetterStepHistory, error) {
	var out []model.LetterStepHistory
	for _, e := range m.entries {
		if e.LetterID == letterID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (m *mockHistoryRepo) CountByActions(ctx context.Context, letterID uuid.UUID, actions ...string) (int64, error) {
	if m.CountByActionsFn != nil {
		return m.CountByActionsFn(ctx, letterID, actions...)
	}
	match := make(map[string]bool, len(actions))
	for _, a := range actions {
		match[a] = true
	}
	var count int64
	for _, e := range m.entries {
		if e.LetterID == letterID && match[e.Action] {
			count++
		}
	}
	return count, nil
}

func (m *mockHistoryRepo) actions() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type mockAttachmentRepo struct {
	CreateFn     func(ctx context.Context, attachment *model.LetterAttachment) error
	FindByIDFn   func(ctx context.Context, id uuid.UUID) (*model.LetterAttachment, error)
	ListActiveFn func(ctx context.Context, letterID uuid.UUID) ([]model.LetterAttachment, error)
	DeactivateFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAttachmentRepo) Create(ctx context.Context, attachment *model.LetterAttachment) error {
	return m.CreateFn(ctx, attachment)
}
func (m *mockAttachmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LetterAttachment, error) {
	return m.FindByIDFn(ctx, id)
}
func (m *mockAttachmentRepo) ListActive(ctx context.Context, letterID uuid.UUID) ([]model.LetterAttachment, error) {
	return m.ListActiveFn(ctx, letterID)
}
func (m *mockAttachmentRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.DeactivateFn(ctx, id)
}

type mockVersionRepo struct {
	versions      []model.LetterDocumentVersion
	CreateErr     error
	NextVersionFn func(ctx context.Context, letterID uuid.UUID) (int, error)
}

func (m *mockVersionRepo) Create(ctx context.Context, version *model.LetterDocumentVersion) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.versions = append(m.versions, *version)
	return nil
}
func (m *mockVersionRepo) NextVersion(ctx context.Context, letterID uuid.UUID) (int, error) {
	if m.NextVersionFn != nil {
		return m.NextVersionFn(ctx, letterID)
	}
	max := 0
	for _, v := range m.versions {
		if v.LetterID == letterID && v.Version > max {
			max = v.Version
		}
	}
	return max + 1, nil
}
func (m *mockVersionRepo) FindByLetterAndVersion(ctx context.Context, letterID uuid.UUID, version int) (*model.LetterDocumentVersion, error) {
	for i := range m.versions {
		if m.versions[i].LetterID == letterID && m.versions[i].Version == version {
			return &m.versions[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}
func (m *mockVersionRepo) ListByLetter(ctx context.Context, letterID uuid.UUID) ([]model.LetterDocumentVersion, error) {
	var out []model.LetterDocumentVersion
	for _, v := range m.versions {
		if v.LetterID == letterID {
			out = append(out, v)
		}
	}
	return out, nil
}

type mockNumberRepo struct {
	NextCounterFn  func(ctx context.Context, typeCode string, date time.Time) (int, error)
	CreateFn       func(ctx context.Context, number *model.LetterNumber) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	FindByLetterFn func(ctx context.Context, letterID uuid.UUID) (*model.LetterNumber, error)

	deleted []uuid.UUID
}

func (m *mockNumberRepo) NextCounter(ctx context.Context, typeCode string, date time.Time) (int, error) {
	return m.NextCounterFn(ctx, typeCode, date)
}
func (m *mockNumberRepo) Create(ctx context.Context, number *model.LetterNumber) error {
	return m.CreateFn(ctx, number)
}
func (m *mockNumberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
func (m *mockNumberRepo) FindByLetter(ctx context.Context, letterID uuid.UUID) (*model.LetterNumber, error) {
	return m.FindByLetterFn(ctx, letterID)
}

type mockUserRepo struct {
	users map[uuid.UUID]*model.User
	// byRole returns the earliest-configured holder, mirroring the repository
	// ordering contract.
	byRole map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[uuid.UUID]*model.User),
		byRole: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) add(user *model.User) *model.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	if _, ok := m.byRole[user.Role]; !ok {
		m.byRole[user.Role] = user
	}
	return user
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.add(user)
	return nil
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperr.ErrNotFound
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.ErrNotFound
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.ErrNotFound
}
func (m *mockUserRepo) FindFirstByRole(ctx context.Context, role string) (*model.User, error) {
	if u, ok := m.byRole[role]; ok {
		return u, nil
	}
	return nil, apperr.ErrNotFound
}
func (m *mockUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}
func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}
func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}
func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return nil
}
func (m *mockUserRepo) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	return nil, apperr.ErrNotFound
}
func (m *mockUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	return nil
}

type mockProgramRepo struct {
	programs map[uuid.UUID]*model.StudyProgram
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[uuid.UUID]*model.StudyProgram)}
}

func (m *mockProgramRepo) add(program *model.StudyProgram) *model.StudyProgram {
	if program.ID == uuid.Nil {
		program.ID = uuid.New()
	}
	m.programs[program.ID] = program
	return program
}

func (m *mockProgramRepo) Create(ctx context.Context, program *model.StudyProgram) error {
	m.add(program)
	return nil
}
func (m *mockProgramRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StudyProgram, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, apperr.ErrNotFound
}
func (m *mockProgramRepo) List(ctx context.Context, page, limit int) ([]model.StudyProgram, int64, error) {
	var out []model.StudyProgram
	for _, p := range m.programs {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}
func (m *mockProgramRepo) Update(ctx context.Context, program *model.StudyProgram) error {
	m.programs[program.ID] = program
	return nil
}

// mockTx runs the function directly; the workflow code under test treats the
// callback context as the transaction scope.
type mockTx struct{}

func (mockTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type mockBlobStorage struct {
	StoreFn func(content []byte, pathHint string, mimeType string) (*storage.StoredObject, error)
	FetchFn func(storageKey string) ([]byte, error)
}

func (m *mockBlobStorage) Store(content []byte, pathHint string, mimeType string) (*storage.StoredObject, error) {
	if m.StoreFn != nil {
		return m.StoreFn(content, pathHint, mimeType)
	}
	return &storage.StoredObject{
		URL:        "http://files.test/" + pathHint + "/blob",
		StoredName: "blob",
		StorageKey: pathHint + "/blob",
	}, nil
}
func (m *mockBlobStorage) Fetch(storageKey string) ([]byte, error) {
	if m.FetchFn != nil {
		return m.FetchFn(storageKey)
	}
	return []byte("content"), nil
}

type mockRenderer struct {
	RenderFn func(values map[string]interface{}, numberOverride *string, signatureURL string) ([]byte, error)
	ToPDFFn  func(html []byte) ([]byte, error)
}

func (m *mockRenderer) Render(values map[string]interface{}, numberOverride *string, signatureURL string) ([]byte, error) {
	if m.RenderFn != nil {
		return m.RenderFn(values, numberOverride, signatureURL)
	}
	return []byte("<html></html>"), nil
}
func (m *mockRenderer) ToPDF(html []byte) ([]byte, error) {
	if m.ToPDFFn != nil {
		return m.ToPDFFn(html)
	}
	return []byte("%PDF-1.7"), nil
}

type mockResolver struct {
	ResolveFn func(ctx context.Context, programID, supervisorID uuid.UUID) (model.ApproverMap, error)
}

func (m *mockResolver) Resolve(ctx context.Context, programID, supervisorID uuid.UUID) (model.ApproverMap, error) {
	return m.ResolveFn(ctx, programID, supervisorID)
}

var errBoom = errors.New("boom")

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// chainIDs returns a full approver map plus the per-step assignee ids.
func chainIDs() (model.ApproverMap, map[model.WorkflowStep]uuid.UUID) {
	byStep := make(map[model.WorkflowStep]uuid.UUID, model.StepCount)
	approvers := make(model.ApproverMap, model.StepCount)
	for s := model.StepSupervisor; s <= model.StepNumbering; s++ {
		id := uuid.New()
		byStep[s] = id
		approvers[s.SlotKey()] = id
	}
	return approvers, byStep
}

// processingLetter builds an in-flight letter at the given step.
func processingLetter(step model.WorkflowStep) (*model.Letter, map[model.WorkflowStep]uuid.UUID) {
	approvers, byStep := chainIDs()
	letter := &model.Letter{
		ID:             uuid.New(),
		CreatedBy:      uuid.New(),
		StudyProgramID: uuid.New(),
		Status:         model.LetterProcessing,
		Approvers:      approvers,
		Values:         model.JSONMap{"nama": "Budi"},
		CreatedAt:      time.Now(),
	}
	letter.SetStep(step)
	return letter, byStep
}

// singleLetterRepo serves one in-memory letter for transition tests.
func singleLetterRepo(letter *model.Letter) *mockLetterRepo {
	return &mockLetterRepo{
		FindByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
			if id != letter.ID {
				return nil, apperr.ErrNotFound
			}
			return letter, nil
		},
		FindByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
			if id != letter.ID {
				return nil, apperr.ErrNotFound
			}
			return letter, nil
		},
		UpdateFn: func(ctx context.Context, updated *model.Letter) error {
			*letter = *updated
			return nil
		},
	}
}
