package model

// WorkflowStep is the ordinal position of an approver in the fixed PKL
// approval chain. Step, role key and assignee slot key are three projections
// of the same value; keeping them on one type avoids the string-key drift the
// old system suffered from.
type WorkflowStep int

const (
	StepSupervisor         WorkflowStep = 1 // pembimbing utama, chosen by the student
	StepCoordinator        WorkflowStep = 2 // koordinator PKL of the study program
	StepProgramHead        WorkflowStep = 3 // kaprodi
	StepFacultyAdmin       WorkflowStep = 4
	StepAcademicSupervisor WorkflowStep = 5 // dosen pembimbing akademik
	StepOfficeManager      WorkflowStep = 6 // kepala tata usaha
	StepViceDean           WorkflowStep = 7 // wakil dekan, signing authority
	StepNumbering          WorkflowStep = 8 // bagian penomoran, terminal approver

	StepCount = 8
)

type stepInfo struct {
	role  string // role key in the user directory
	slot  string // key into Letter.Approvers
	label string // display name on history entries
}

// The chain is static. Step N+1 is always N+1; only rollback computes a
// different target, and it floors at step 1.
var stepTable = [StepCount + 1]stepInfo{
	StepSupervisor:         {role: RoleSupervisor, slot: "pembimbing_utama", label: "Pembimbing Utama"},
	StepCoordinator:        {role: RoleCoordinator, slot: "koordinator_pkl", label: "Koordinator PKL"},
	StepProgramHead:        {role: RoleProgramHead, slot: "kaprodi", label: "Ketua Program Studi"},
	StepFacultyAdmin:       {role: RoleFacultyAdmin, slot: "admin_fakultas", label: "Admin Fakultas"},
	StepAcademicSupervisor: {role: RoleAcademicSupervisor, slot: "dosen_pa", label: "Dosen Pembimbing Akademik"},
	StepOfficeManager:      {role: RoleOfficeManager, slot: "kepala_tu", label: "Kepala Tata Usaha"},
	StepViceDean:           {role: RoleViceDean, slot: "wakil_dekan", label: "Wakil Dekan"},
	StepNumbering:          {role: RoleNumbering, slot: "bagian_penomoran", label: "Bagian Penomoran"},
}

// Valid reports whether s is inside the 1..8 chain.
func (s WorkflowStep) Valid() bool {
	return s >= StepSupervisor && s <= StepNumbering
}

// RoleKey returns the directory role that holds this step.
func (s WorkflowStep) RoleKey() string {
	if !s.Valid() {
		return ""
	}
	return stepTable[s].role
}

// SlotKey returns the key under which the assignee is frozen on the letter.
func (s WorkflowStep) SlotKey() string {
	if !s.Valid() {
		return ""
	}
	return stepTable[s].slot
}

// Label returns the human-readable role name stamped on history entries.
func (s WorkflowStep) Label() string {
	if !s.Valid() {
		return ""
	}
	return stepTable[s].label
}

// RollbackTarget steps back exactly one position, never below the first step.
func (s WorkflowStep) RollbackTarget() WorkflowStep {
	if s <= StepSupervisor {
		return StepSupervisor
	}
	return s - 1
}

// StepForRole is the inverse of RoleKey.
func StepForRole(role string) (WorkflowStep, bool) {
	for s := StepSupervisor; s <= StepNumbering; s++ {
		if stepTable[s].role == role {
			return s, true
		}
	}
	return 0, false
}

// StepForSlot is the inverse of SlotKey.
func StepForSlot(slot string) (WorkflowStep, bool) {
	for s := StepSupervisor; s <= StepNumbering; s++ {
		if stepTable[s].slot == slot {
			return s, true
		}
	}
	return 0, false
}
