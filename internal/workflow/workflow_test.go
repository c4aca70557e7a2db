package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

func TestPermitted(t *testing.T) {
	cases := []struct {
		role policy.Role
		t    Transition
		want bool
	}{
		{policy.RoleBuildingExecutive, TransitionReview, true},
		{policy.RoleAdmin, TransitionReview, true},
		{policy.RoleCSR, TransitionReview, false},
		{policy.RoleTechnician, TransitionReview, false},

		{policy.RoleBuildingExecutive, TransitionAssign, true},
		{policy.RoleTechnician, TransitionAssign, false},

		{policy.RoleTechnician, TransitionOngoing, true},
		{policy.RoleAdmin, TransitionOngoing, true},
		{policy.RoleBuildingExecutive, TransitionOngoing, false},

		{policy.RoleTechnician, TransitionDone, true},
		{policy.RoleCSR, TransitionDone, false},

		{policy.RoleBuildingExecutive, TransitionComplete, true},
		{policy.RoleTechnician, TransitionComplete, false},

		{policy.RoleBuildingExecutive, TransitionReopen, true},
		{policy.RoleAdmin, TransitionReopen, true},
		{policy.RoleCSR, TransitionReopen, false},
	}

	for _, tc := range cases {
		if got := Permitted(tc.role, tc.t); got != tc.want {
			t.Errorf("Permitted(%s, %s) = %v, want %v", tc.role, tc.t, got, tc.want)
		}
	}
}

func TestRequiresOwnership(t *testing.T) {
	if !RequiresOwnership(policy.RoleTechnician, TransitionOngoing) {
		t.Error("technician ongoing must require self-assignment")
	}
	if !RequiresOwnership(policy.RoleTechnician, TransitionDone) {
		t.Error("technician done must require self-assignment")
	}
	if RequiresOwnership(policy.RoleAdmin, TransitionDone) {
		t.Error("admin must not be ownership-bound")
	}
	if RequiresOwnership(policy.RoleTechnician, TransitionReview) {
		t.Error("ownership only applies to ongoing/done")
	}
}

func TestApplyStampsAndClearsTimestamps(t *testing.T) {
	now := time.Now()
	tech := uuid.New()
	d := &models.Defect{Status: models.StatusOpen, AssignedTechnicianID: &tech}

	Apply(d, TransitionReview, now)
	if d.Status != models.StatusReviewed {
		t.Fatalf("status = %s, want Reviewed", d.Status)
	}

	Apply(d, TransitionAssign, now)
	if d.Status != models.StatusOngoing {
		t.Fatalf("status = %s, want Ongoing", d.Status)
	}

	Apply(d, TransitionDone, now)
	if d.Status != models.StatusDone {
		t.Fatalf("status = %s, want Done", d.Status)
	}
	if d.DoneAt == nil || !d.DoneAt.Equal(now) {
		t.Fatal("done_at must be stamped")
	}

	Apply(d, TransitionComplete, now)
	if d.Status != models.StatusCompleted {
		t.Fatalf("status = %s, want Completed", d.Status)
	}
	if d.CompletedAt == nil {
		t.Fatal("completed_at must be stamped")
	}

	Apply(d, TransitionReopen, now)
	if d.Status != models.StatusOpen {
		t.Fatalf("status = %s, want Open", d.Status)
	}
	if d.DoneAt != nil || d.CompletedAt != nil {
		t.Error("reopen must clear done_at and completed_at")
	}
	if d.AssignedTechnicianID == nil {
		t.Error("reopen must not clear the assignment")
	}
}

// Transitions carry no forward-progress check: assigning a Completed defect
// is allowed and simply moves it back to Ongoing.
func TestApplyHasNoOrderingGuard(t *testing.T) {
	d := &models.Defect{Status: models.StatusCompleted}
	Apply(d, TransitionAssign, time.Now())
	if d.Status != models.StatusOngoing {
		t.Fatalf("status = %s, want Ongoing", d.Status)
	}
}

func TestValidStatusAndPriority(t *testing.T) {
	for _, s := range []string{"Open", "Reviewed", "Ongoing", "Done", "Completed"} {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be a valid status", s)
		}
	}
	if ValidStatus("open") || ValidStatus("Closed") || ValidStatus("") {
		t.Error("unexpected status accepted")
	}

	for _, p := range []string{"low", "medium", "high"} {
		if !ValidPriority(p) {
			t.Errorf("expected %q to be a valid priority", p)
		}
	}
	if ValidPriority("urgent") || ValidPriority("High") {
		t.Error("unexpected priority accepted")
	}
}
