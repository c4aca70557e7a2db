// Package workflow holds the defect lifecycle state machine: which roles may
// perform each transition and what each transition does to the defect row.
//
// Transitions deliberately do not check that they move the status forward.
// The executive flows re-assign and re-review defects in any state, so the
// machine gates on role (and self-assignment for technicians) only.
package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

// Transition names a lifecycle step.
type Transition string

const (
	TransitionReview   Transition = "review"
	TransitionAssign   Transition = "assign"
	TransitionOngoing  Transition = "ongoing"
	TransitionDone     Transition = "done"
	TransitionComplete Transition = "complete"
	TransitionReopen   Transition = "reopen"
)

var transitionRoles = map[Transition][]policy.Role{
	TransitionReview:   {policy.RoleBuildingExecutive, policy.RoleAdmin},
	TransitionAssign:   {policy.RoleBuildingExecutive, policy.RoleAdmin},
	TransitionOngoing:  {policy.RoleTechnician, policy.RoleAdmin},
	TransitionDone:     {policy.RoleTechnician, policy.RoleAdmin},
	TransitionComplete: {policy.RoleBuildingExecutive, policy.RoleAdmin},
	TransitionReopen:   {policy.RoleBuildingExecutive, policy.RoleAdmin},
}

// Permitted reports whether the role may perform the transition at all.
// Self-assignment for technicians is checked separately via RequiresOwnership.
func Permitted(role policy.Role, t Transition) bool {
	for _, r := range transitionRoles[t] {
		if r == role {
			return true
		}
	}
	return false
}

// RequiresOwnership reports whether the actor must be the defect's assigned
// technician. Only technicians are ownership-bound; admins act on any defect.
func RequiresOwnership(role policy.Role, t Transition) bool {
	if role != policy.RoleTechnician {
		return false
	}
	return t == TransitionOngoing || t == TransitionDone
}

// OwnsDefect reports whether userID is the defect's assigned technician.
func OwnsDefect(userID uuid.UUID, defect *models.Defect) bool {
	return defect.AssignedTechnicianID != nil && *defect.AssignedTechnicianID == userID
}

// Apply mutates the defect's status and timestamps for the transition.
// Reopen clears done_at/completed_at but keeps assignment and review
// history. Assignment and reviewer stamping are done by the caller, which
// knows the acting and target users.
func Apply(defect *models.Defect, t Transition, now time.Time) {
	switch t {
	case TransitionReview:
		defect.Status = models.StatusReviewed
	case TransitionAssign, TransitionOngoing:
		defect.Status = models.StatusOngoing
	case TransitionDone:
		defect.Status = models.StatusDone
		defect.DoneAt = &now
	case TransitionComplete:
		defect.Status = models.StatusCompleted
		defect.CompletedAt = &now
	case TransitionReopen:
		defect.Status = models.StatusOpen
		defect.DoneAt = nil
		defect.CompletedAt = nil
	}
}

// ValidStatus reports whether s is one of the five defect statuses.
func ValidStatus(s string) bool {
	switch s {
	case models.StatusOpen, models.StatusReviewed, models.StatusOngoing,
		models.StatusDone, models.StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether s is one of the three priorities.
func ValidPriority(s string) bool {
	switch s {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}
