package models

import (
	"time"

	"github.com/google/uuid"
)

// Defect statuses, ordered by workflow progression. Reopen resets any later
// status back to StatusOpen.
const (
	StatusOpen      = "Open"
	StatusReviewed  = "Reviewed"
	StatusOngoing   = "Ongoing"
	StatusDone      = "Done"
	StatusCompleted = "Completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Defect struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title                 string     `gorm:"size:255;not null" json:"title"`
	Description           string     `gorm:"type:text;not null" json:"description"`
	Status                string     `gorm:"size:20;not null;default:'Open'" json:"status"`
	Priority              string     `gorm:"size:10;not null" json:"priority"`
	ImageURL              *string    `json:"image_url"`
	InitialReportImage    *string    `gorm:"type:text" json:"initial_report_image"`
	TechnicianReportImage *string    `gorm:"type:text" json:"technician_report_image"`
	BuildingID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"building_id"`
	ReporterID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReviewedByID          *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	AssignedTechnicianID  *uuid.UUID `gorm:"type:uuid;index" json:"assigned_technician_id"`
	ExternalContractor    bool       `gorm:"default:false" json:"external_contractor"`
	ContractorName        *string    `gorm:"size:255" json:"contractor_name"`
	DoneAt                *time.Time `json:"done_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	Building   Building        `gorm:"foreignKey:BuildingID" json:"-"`
	Reporter   User            `gorm:"foreignKey:ReporterID" json:"-"`
	Reviewer   *User           `gorm:"foreignKey:ReviewedByID" json:"-"`
	Technician *User           `gorm:"foreignKey:AssignedTechnicianID" json:"-"`
	Comments   []DefectComment `gorm:"foreignKey:DefectID;constraint:OnDelete:CASCADE" json:"-"`
}
