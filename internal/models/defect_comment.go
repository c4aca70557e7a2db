package models

import (
	"time"

	"github.com/google/uuid"
)

// DefectComment is a snapshot of the per-defect report fields. Each role
// fills in its own columns over the defect's life; the "current" record for
// a defect is the one with the latest (updated_at, created_at).
type DefectComment struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DefectID           uuid.UUID `gorm:"type:uuid;not null;index" json:"defect_id"`
	InitialReport      *string   `gorm:"type:text" json:"initial_report"`
	ExecutiveDecision  *string   `gorm:"type:text" json:"executive_decision"`
	TechnicianReport   *string   `gorm:"type:text" json:"technician_report"`
	VerificationReport *string   `gorm:"type:text" json:"verification_report"`
	FinalCompletion    *string   `gorm:"type:text" json:"final_completion"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
