package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	users    *mockUserRepo
	programs *mockProgramRepo

	supervisor  *model.User
	coordinator *model.User
	head        *model.User
	program     *model.StudyProgram
}

func newResolverFixture() *resolverFixture {
	f := &resolverFixture{
		users:    newMockUserRepo(),
		programs: newMockProgramRepo(),
	}

	f.supervisor = f.users.add(&model.User{Username: "dr-siti", Role: model.RoleSupervisor, CanSupervise: true})
	f.coordinator = f.users.add(&model.User{Username: "koordinator", Role: model.RoleCoordinator})
	f.head = f.users.add(&model.User{Username: "kaprodi", Role: model.RoleProgramHead})

	f.users.add(&model.User{Username: "admin-fak", Role: model.RoleFacultyAdmin})
	f.users.add(&model.User{Username: "dosen-pa", Role: model.RoleAcademicSupervisor})
	f.users.add(&model.User{Username: "kepala-tu", Role: model.RoleOfficeManager})
	f.users.add(&model.User{Username: "wadek", Role: model.RoleViceDean})
	f.users.add(&model.User{Username: "penomoran", Role: model.RoleNumbering})

	f.program = f.programs.add(&model.StudyProgram{
		Code:          "TI",
		Name:          "Teknik Informatika",
		CoordinatorID: &f.coordinator.ID,
		HeadID:        &f.head.ID,
	})
	return f
}

func TestResolveFreezesAllEightSlots(t *testing.T) {
	f := newResolverFixture()
	resolver := NewApproverResolver(f.users, f.programs)

	approvers, err := resolver.Resolve(context.Background(), f.program.ID, f.supervisor.ID)
	require.NoError(t, err)
	require.Len(t, approvers, model.StepCount)

	assert.Equal(t, f.supervisor.ID, approvers[model.StepSupervisor.SlotKey()])
	assert.Equal(t, f.coordinator.ID, approvers[model.StepCoordinator.SlotKey()])
	assert.Equal(t, f.head.ID, approvers[model.StepProgramHead.SlotKey()])

	for s := model.StepFacultyAdmin; s <= model.StepNumbering; s++ {
		holder, lookupErr := f.users.FindFirstByRole(context.Background(), s.RoleKey())
		require.NoError(t, lookupErr)
		assert.Equal(t, holder.ID, approvers[s.SlotKey()], "slot %s", s.SlotKey())
	}
}

func TestResolveRejectsNonSupervisingLecturer(t *testing.T) {
	f := newResolverFixture()
	plain := f.users.add(&model.User{Username: "dosen-biasa", Role: model.RoleAcademicSupervisor})
	resolver := NewApproverResolver(f.users, f.programs)

	_, err := resolver.Resolve(context.Background(), f.program.ID, plain.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidAssignment)
}

func TestResolveRejectsUnknownSupervisor(t *testing.T) {
	f := newResolverFixture()
	resolver := NewApproverResolver(f.users, f.programs)

	_, err := resolver.Resolve(context.Background(), f.program.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrInvalidAssignment)
}

func TestResolveRejectsUnconfiguredProgram(t *testing.T) {
	f := newResolverFixture()
	bare := f.programs.add(&model.StudyProgram{Code: "SI", Name: "Sistem Informasi"})
	resolver := NewApproverResolver(f.users, f.programs)

	_, err := resolver.Resolve(context.Background(), bare.ID, f.supervisor.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidAssignment)
}

func TestResolveRejectsMissingRoleHolder(t *testing.T) {
	f := newResolverFixture()
	delete(f.users.byRole, model.RoleNumbering)
	resolver := NewApproverResolver(f.users, f.programs)

	_, err := resolver.Resolve(context.Background(), f.program.ID, f.supervisor.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidAssignment)
}
