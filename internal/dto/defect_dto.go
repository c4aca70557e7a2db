package dto

import (
	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/policy"
)

type CreateDefectRequest struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Priority           string    `json:"priority"`
	BuildingID         uuid.UUID `json:"building_id"`
	ImageURL           *string   `json:"image_url"`
	InitialReportImage *string   `json:"initial_report_image"`
	ExternalContractor bool      `json:"external_contractor"`
	ContractorName     *string   `json:"contractor_name"`
	InitialReport      *string   `json:"initial_report"`
	// Legacy synonym for initial_report.
	CsrPrognosis *string `json:"csr_prognosis"`
}

// Report returns the initial report text, honoring the legacy key.
func (r *CreateDefectRequest) Report() *string {
	if r.InitialReport != nil {
		return r.InitialReport
	}
	return r.CsrPrognosis
}

// UpdateDefectRequest carries the free-form field update; which fields
// actually apply depends on the caller's role.
type UpdateDefectRequest struct {
	Title                 *string `json:"title"`
	Description           *string `json:"description"`
	Status                *string `json:"status"`
	Priority              *string `json:"priority"`
	ImageURL              *string `json:"image_url"`
	InitialReportImage    *string `json:"initial_report_image"`
	TechnicianReportImage *string `json:"technician_report_image"`
	ExternalContractor    *bool   `json:"external_contractor"`
	ContractorName        *string `json:"contractor_name"`
}

type ReviewDefectRequest struct {
	ExternalContractor *bool   `json:"external_contractor"`
	ContractorName     *string `json:"contractor_name"`
	ExecutiveDecision  *string `json:"executive_decision"`
}

type AssignDefectRequest struct {
	AssignedTechnicianID uuid.UUID `json:"assigned_technician_id"`
	ExternalContractor   *bool     `json:"external_contractor"`
	ContractorName       *string   `json:"contractor_name"`
}

type OngoingDefectRequest struct {
	TechnicianReport *string `json:"technician_report"`
}

type DoneDefectRequest struct {
	TechnicianReport      *string `json:"technician_report"`
	VerificationReport    *string `json:"verification_report"`
	TechnicianReportImage *string `json:"technician_report_image"`
}

type CompleteDefectRequest struct {
	VerificationReport *string `json:"verification_report"`
	FinalCompletion    *string `json:"final_completion"`
}

type UpsertCommentsRequest struct {
	InitialReport      *string `json:"initial_report"`
	CsrPrognosis       *string `json:"csr_prognosis"`
	ExecutiveDecision  *string `json:"executive_decision"`
	TechnicianReport   *string `json:"technician_report"`
	VerificationReport *string `json:"verification_report"`
	FinalCompletion    *string `json:"final_completion"`
}

// Fields flattens the request into ledger field names, folding the legacy
// csr_prognosis key into initial_report when the canonical key is absent.
func (r *UpsertCommentsRequest) Fields() map[string]*string {
	fields := make(map[string]*string)
	if r.InitialReport != nil {
		fields[policy.FieldInitialReport] = r.InitialReport
	} else if r.CsrPrognosis != nil {
		fields[policy.FieldInitialReport] = r.CsrPrognosis
	}
	if r.ExecutiveDecision != nil {
		fields[policy.FieldExecutiveDecision] = r.ExecutiveDecision
	}
	if r.TechnicianReport != nil {
		fields[policy.FieldTechnicianReport] = r.TechnicianReport
	}
	if r.VerificationReport != nil {
		fields[policy.FieldVerificationReport] = r.VerificationReport
	}
	if r.FinalCompletion != nil {
		fields[policy.FieldFinalCompletion] = r.FinalCompletion
	}
	return fields
}
