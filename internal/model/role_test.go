package model

import "testing"

func TestResolveRole(t *testing.T) {
	tests := []struct {
		raw         string
		isStaff     bool
		isSuperuser bool
		want        Role
	}{
		{raw: "manager", want: RoleManager},
		{raw: " Branch_Manager ", want: RoleManager},
		{raw: "general_manager", want: RoleGeneralManager},
		{raw: "HR", want: RoleHR},
		{raw: "human_resources", want: RoleHR},
		{raw: "", want: RoleEmployee},
		{raw: "intern", want: RoleEmployee},
		{raw: "", isStaff: true, want: RoleHR},
		{raw: "", isSuperuser: true, want: RoleGeneralManager},
		{raw: "", isStaff: true, isSuperuser: true, want: RoleGeneralManager},
		{raw: "manager", isSuperuser: true, want: RoleManager},
		{raw: "hr", isSuperuser: true, want: RoleHR},
		{raw: "janitor", isStaff: true, want: RoleHR},
	}
	for _, tt := range tests {
		got := ResolveRole(tt.raw, tt.isStaff, tt.isSuperuser)
		if got != tt.want {
			t.Errorf("ResolveRole(%q, staff=%v, super=%v) = %q, want %q",
				tt.raw, tt.isStaff, tt.isSuperuser, got, tt.want)
		}
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role                              Role
		management, surveyAuthor, creator bool
	}{
		{role: RoleEmployee},
		{role: RoleHR, surveyAuthor: true, creator: true},
		{role: RoleManager, management: true, surveyAuthor: true, creator: true},
		{role: RoleGeneralManager, management: true, creator: true},
	}
	for _, tt := range tests {
		if got := tt.role.IsManagement(); got != tt.management {
			t.Errorf("%s.IsManagement() = %v", tt.role, got)
		}
		if got := tt.role.IsSurveyAuthor(); got != tt.surveyAuthor {
			t.Errorf("%s.IsSurveyAuthor() = %v", tt.role, got)
		}
		if got := tt.role.IsTaskCreator(); got != tt.creator {
			t.Errorf("%s.IsTaskCreator() = %v", tt.role, got)
		}
	}
}

func TestComplaintRecipientFor(t *testing.T) {
	if r, ok := ComplaintRecipientFor(RoleHR); !ok || r != ComplaintRecipientHR {
		t.Errorf("hr inbox = %q, %v", r, ok)
	}
	if r, ok := ComplaintRecipientFor(RoleManager); !ok || r != ComplaintRecipientManager {
		t.Errorf("manager inbox = %q, %v", r, ok)
	}
	for _, role := range []Role{RoleEmployee, RoleGeneralManager} {
		if _, ok := ComplaintRecipientFor(role); ok {
			t.Errorf("%s should have no inbox", role)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	phases := func(statuses ...PhaseStatus) []TaskPhase {
		out := make([]TaskPhase, len(statuses))
		for i, s := range statuses {
			out[i] = TaskPhase{Order: i + 1, Status: s}
		}
		return out
	}

	tests := []struct {
		name   string
		phases []TaskPhase
		want   float64
	}{
		{name: "no phases", want: 0},
		{name: "one of three", phases: phases(PhaseStatusSuccess, PhaseStatusPending, PhaseStatusPending), want: 33.33},
		{name: "two of three", phases: phases(PhaseStatusSuccess, PhaseStatusSuccess, PhaseStatusFailed), want: 66.67},
		{name: "failed does not count", phases: phases(PhaseStatusFailed, PhaseStatusFailed), want: 0},
		{name: "all done", phases: phases(PhaseStatusSuccess, PhaseStatusSuccess), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Phases: tt.phases}
			if got := task.ProgressPercent(); got != tt.want {
				t.Errorf("ProgressPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{user: User{Username: "jdoe", FirstName: "Jane", LastName: "Doe"}, want: "Jane Doe"},
		{user: User{Username: "jdoe", FirstName: " Jane "}, want: "Jane"},
		{user: User{Username: "jdoe"}, want: "jdoe"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}
