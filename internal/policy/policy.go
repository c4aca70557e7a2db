package policy

import (
	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/models"
)

// Resource names a guarded entity collection.
type Resource string

const (
	ResourceBuildings Resource = "buildings"
	ResourceUsers     Resource = "users"
	ResourceDefects   Resource = "defects"
	ResourceAnalytics Resource = "analytics"
)

// Action names an operation on a resource.
type Action string

const (
	ActionCreate          Action = "create"
	ActionRead            Action = "read"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionListTechnicians Action = "list_technicians"
)

// table is the (role × resource) capability matrix. Row-level restrictions
// (technician visibility of defects) are layered on top by CanAccessDefect;
// Allows answers the coarse question only.
var table = map[Role]map[Resource][]Action{
	RoleAdmin: {
		ResourceBuildings: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
		ResourceUsers:     {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionListTechnicians},
		ResourceDefects:   {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
		ResourceAnalytics: {ActionRead},
	},
	RoleCSR: {
		ResourceBuildings: {ActionRead},
		ResourceDefects:   {ActionCreate, ActionRead, ActionUpdate},
		ResourceAnalytics: {ActionRead},
	},
	RoleBuildingExecutive: {
		ResourceBuildings: {ActionRead},
		ResourceUsers:     {ActionListTechnicians},
		ResourceDefects:   {ActionCreate, ActionRead, ActionUpdate},
		ResourceAnalytics: {ActionRead},
	},
	RoleTechnician: {
		ResourceBuildings: {ActionRead},
		ResourceUsers:     {ActionListTechnicians},
		// Update is limited to technician_report_image on self-assigned
		// defects; the defect service enforces both restrictions.
		ResourceDefects: {ActionRead, ActionUpdate},
	},
}

// Allows resolves (role, action, resource) against the capability matrix.
func Allows(role Role, action Action, resource Resource) bool {
	actions, ok := table[role][resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// CanAccessDefect is the row-level read rule: admins always, reporters for
// their own submissions, csr and building executives for everything,
// technicians only for defects assigned to them.
func CanAccessDefect(role Role, userID uuid.UUID, defect *models.Defect) bool {
	if role == RoleAdmin {
		return true
	}
	if defect.ReporterID == userID {
		return true
	}
	switch role {
	case RoleCSR, RoleBuildingExecutive:
		return true
	case RoleTechnician:
		return defect.AssignedTechnicianID != nil && *defect.AssignedTechnicianID == userID
	}
	return false
}

// Comment ledger field names.
const (
	FieldInitialReport      = "initial_report"
	FieldExecutiveDecision  = "executive_decision"
	FieldTechnicianReport   = "technician_report"
	FieldVerificationReport = "verification_report"
	FieldFinalCompletion    = "final_completion"
)

// LegacyInitialReportField is accepted as a write-boundary synonym for
// initial_report, kept for clients that predate the column rename.
const LegacyInitialReportField = "csr_prognosis"

var commentFields = map[Role][]string{
	RoleCSR:               {FieldInitialReport},
	RoleBuildingExecutive: {FieldExecutiveDecision, FieldVerificationReport, FieldFinalCompletion},
	RoleTechnician:        {FieldTechnicianReport, FieldVerificationReport},
	RoleAdmin: {
		FieldInitialReport, FieldExecutiveDecision, FieldTechnicianReport,
		FieldVerificationReport, FieldFinalCompletion,
	},
}

// CommentFields returns the ledger fields the role may write. Fields outside
// the list are silently dropped at the write boundary, never rejected.
func CommentFields(role Role) []string {
	return commentFields[role]
}

// CanWriteCommentField reports whether role may write a single ledger field.
func CanWriteCommentField(role Role, field string) bool {
	for _, f := range commentFields[role] {
		if f == field {
			return true
		}
	}
	return false
}
