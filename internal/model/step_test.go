package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepProjectionsAreBijective(t *testing.T) {
	seenRoles := make(map[string]bool)
	seenSlots := make(map[string]bool)

	for s := StepSupervisor; s <= StepNumbering; s++ {
		require.True(t, s.Valid())
		require.NotEmpty(t, s.RoleKey())
		require.NotEmpty(t, s.SlotKey())
		require.NotEmpty(t, s.Label())

		assert.False(t, seenRoles[s.RoleKey()], "role %s mapped twice", s.RoleKey())
		assert.False(t, seenSlots[s.SlotKey()], "slot %s mapped twice", s.SlotKey())
		seenRoles[s.RoleKey()] = true
		seenSlots[s.SlotKey()] = true

		back, ok := StepForRole(s.RoleKey())
		require.True(t, ok)
		assert.Equal(t, s, back)

		back, ok = StepForSlot(s.SlotKey())
		require.True(t, ok)
		assert.Equal(t, s, back)
	}
}

func TestStepValidBounds(t *testing.T) {
	assert.False(t, WorkflowStep(0).Valid())
	assert.False(t, WorkflowStep(9).Valid())
	assert.Empty(t, WorkflowStep(0).RoleKey())
	assert.Empty(t, WorkflowStep(9).SlotKey())

	_, ok := StepForRole("mahasiswa")
	assert.False(t, ok, "requester role is not part of the chain")
}

func TestRollbackTargetFloorsAtFirstStep(t *testing.T) {
	assert.Equal(t, StepSupervisor, StepSupervisor.RollbackTarget())
	assert.Equal(t, StepSupervisor, StepCoordinator.RollbackTarget())
	assert.Equal(t, StepViceDean, StepNumbering.RollbackTarget())
}

func TestLetterStepHelpers(t *testing.T) {
	var l Letter
	assert.Equal(t, WorkflowStep(0), l.Step())

	l.SetStep(StepViceDean)
	require.NotNil(t, l.CurrentStep)
	assert.Equal(t, StepViceDean, l.Step())

	l.Status = LetterProcessing
	assert.False(t, l.Terminal())
	l.Status = LetterCompleted
	assert.True(t, l.Terminal())
}

func TestApproverMapForStep(t *testing.T) {
	approvers := ApproverMap{}
	_, ok := approvers.ForStep(StepSupervisor)
	assert.False(t, ok)
}
