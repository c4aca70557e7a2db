package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
	"github.com/buildcare/defect-backend/internal/workflow"
)

// DefectService drives the defect lifecycle. Every mutation that touches
// both the defect row and the comment ledger runs inside one transaction.
type DefectService struct {
	db *gorm.DB
}

func NewDefectService(db *gorm.DB) *DefectService {
	return &DefectService{db: db}
}

func (s *DefectService) Create(actor Actor, req *dto.CreateDefectRequest) (*models.Defect, error) {
	if !policy.Allows(actor.Role, policy.ActionCreate, policy.ResourceDefects) {
		return nil, ErrForbidden
	}
	if req.Title == "" || req.Description == "" || req.Priority == "" || req.BuildingID == uuid.Nil {
		return nil, Validation("missing required fields")
	}
	if !workflow.ValidPriority(req.Priority) {
		return nil, Validation("invalid priority")
	}

	var building models.Building
	if err := s.db.First(&building, "id = ?", req.BuildingID).Error; err != nil {
		return nil, NotFound("building")
	}

	defect := models.Defect{
		ID:                 uuid.New(),
		Title:              req.Title,
		Description:        req.Description,
		Status:             models.StatusOpen,
		Priority:           req.Priority,
		ImageURL:           req.ImageURL,
		InitialReportImage: req.InitialReportImage,
		BuildingID:         req.BuildingID,
		ReporterID:         actor.ID,
		ExternalContractor: req.ExternalContractor,
		ContractorName:     req.ContractorName,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&defect).Error; err != nil {
			return err
		}
		if report := req.Report(); report != nil && *report != "" {
			comment, err := currentComment(tx, defect.ID)
			if err != nil {
				return err
			}
			comment.InitialReport = report
			return tx.Save(comment).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &defect, nil
}

// List returns all defects for admin/csr/building_executive and only the
// assigned ones for technicians.
func (s *DefectService) List(actor Actor) ([]models.Defect, error) {
	var defects []models.Defect
	switch actor.Role {
	case policy.RoleAdmin, policy.RoleCSR, policy.RoleBuildingExecutive:
		if err := s.db.Order("created_at DESC").Find(&defects).Error; err != nil {
			return nil, err
		}
	case policy.RoleTechnician:
		if err := s.db.Where("assigned_technician_id = ?", actor.ID).
			Order("created_at DESC").Find(&defects).Error; err != nil {
			return nil, err
		}
	}
	return defects, nil
}

func (s *DefectService) Get(actor Actor, id uuid.UUID) (*models.Defect, error) {
	defect, err := s.fetch(s.db, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessDefect(actor.Role, actor.ID, defect) {
		return nil, ErrForbidden
	}
	return defect, nil
}

// Update applies the role-scoped field matrix: csr may set priority only,
// building executives status/contractor fields, admins everything, and a
// self-assigned technician their report image only.
func (s *DefectService) Update(actor Actor, id uuid.UUID, req *dto.UpdateDefectRequest) (*models.Defect, error) {
	if !policy.Allows(actor.Role, policy.ActionUpdate, policy.ResourceDefects) {
		return nil, ErrForbidden
	}

	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.fetch(tx, id)
		if err != nil {
			return err
		}

		switch actor.Role {
		case policy.RoleTechnician:
			if !workflow.OwnsDefect(actor.ID, defect) {
				return ErrForbidden
			}
			if req.TechnicianReportImage != nil {
				defect.TechnicianReportImage = req.TechnicianReportImage
			}
		case policy.RoleCSR:
			if req.Priority != nil {
				if !workflow.ValidPriority(*req.Priority) {
					return Validation("invalid priority")
				}
				defect.Priority = *req.Priority
			}
		case policy.RoleBuildingExecutive:
			if req.Status != nil {
				if !workflow.ValidStatus(*req.Status) {
					return Validation("invalid status")
				}
				defect.Status = *req.Status
			}
			if req.ExternalContractor != nil {
				defect.ExternalContractor = *req.ExternalContractor
			}
			if req.ContractorName != nil {
				defect.ContractorName = req.ContractorName
			}
			if req.TechnicianReportImage != nil {
				defect.TechnicianReportImage = req.TechnicianReportImage
			}
		case policy.RoleAdmin:
			if req.Status != nil {
				if !workflow.ValidStatus(*req.Status) {
					return Validation("invalid status")
				}
				defect.Status = *req.Status
			}
			if req.Title != nil {
				defect.Title = *req.Title
			}
			if req.Description != nil {
				defect.Description = *req.Description
			}
			if req.Priority != nil {
				if !workflow.ValidPriority(*req.Priority) {
					return Validation("invalid priority")
				}
				defect.Priority = *req.Priority
			}
			if req.ImageURL != nil {
				defect.ImageURL = req.ImageURL
			}
			if req.InitialReportImage != nil {
				defect.InitialReportImage = req.InitialReportImage
			}
			if req.TechnicianReportImage != nil {
				defect.TechnicianReportImage = req.TechnicianReportImage
			}
			if req.ExternalContractor != nil {
				defect.ExternalContractor = *req.ExternalContractor
			}
			if req.ContractorName != nil {
				defect.ContractorName = req.ContractorName
			}
		}

		return tx.Save(defect).Error
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

// Review moves the defect to Reviewed and stamps the reviewer. Optional
// contractor fields and an executive_decision ledger entry ride along.
func (s *DefectService) Review(actor Actor, id uuid.UUID, req *dto.ReviewDefectRequest) (*models.Defect, error) {
	if !workflow.Permitted(actor.Role, workflow.TransitionReview) {
		return nil, ErrForbidden
	}

	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.fetch(tx, id)
		if err != nil {
			return err
		}

		workflow.Apply(defect, workflow.TransitionReview, time.Now())
		reviewer := actor.ID
		defect.ReviewedByID = &reviewer
		if req.ExternalContractor != nil {
			defect.ExternalContractor = *req.ExternalContractor
		}
		if req.ContractorName != nil {
			defect.ContractorName = req.ContractorName
		}
		if err := tx.Save(defect).Error; err != nil {
			return err
		}

		if req.ExecutiveDecision != nil && *req.ExecutiveDecision != "" {
			comment, err := currentComment(tx, defect.ID)
			if err != nil {
				return err
			}
			comment.ExecutiveDecision = req.ExecutiveDecision
			return tx.Save(comment).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

// Assign puts the defect in a technician's queue and moves it to Ongoing.
// The target must actually hold the technician role.
func (s *DefectService) Assign(actor Actor, id uuid.UUID, req *dto.AssignDefectRequest) (*models.Defect, error) {
	if !workflow.Permitted(actor.Role, workflow.TransitionAssign) {
		return nil, ErrForbidden
	}
	if req.AssignedTechnicianID == uuid.Nil {
		return nil, Validation("assigned_technician_id is required")
	}

	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.fetch(tx, id)
		if err != nil {
			return err
		}

		var technician models.User
		if err := tx.First(&technician, "id = ?", req.AssignedTechnicianID).Error; err != nil {
			return Validation("invalid technician")
		}
		if policy.ParseRole(technician.Role) != policy.RoleTechnician {
			return Validation("invalid technician")
		}

		workflow.Apply(defect, workflow.TransitionAssign, time.Now())
		tech := req.AssignedTechnicianID
		defect.AssignedTechnicianID = &tech
		if req.ExternalContractor != nil {
			defect.ExternalContractor = *req.ExternalContractor
		}
		if req.ContractorName != nil {
			defect.ContractorName = req.ContractorName
		}
		return tx.Save(defect).Error
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

func (s *DefectService) MarkOngoing(actor Actor, id uuid.UUID, req *dto.OngoingDefectRequest) (*models.Defect, error) {
	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.guardTransition(tx, actor, id, workflow.TransitionOngoing)
		if err != nil {
			return err
		}

		workflow.Apply(defect, workflow.TransitionOngoing, time.Now())
		if err := tx.Save(defect).Error; err != nil {
			return err
		}

		if req.TechnicianReport != nil && *req.TechnicianReport != "" {
			comment, err := currentComment(tx, defect.ID)
			if err != nil {
				return err
			}
			comment.TechnicianReport = req.TechnicianReport
			return tx.Save(comment).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

func (s *DefectService) MarkDone(actor Actor, id uuid.UUID, req *dto.DoneDefectRequest) (*models.Defect, error) {
	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.guardTransition(tx, actor, id, workflow.TransitionDone)
		if err != nil {
			return err
		}

		workflow.Apply(defect, workflow.TransitionDone, time.Now())
		if req.TechnicianReportImage != nil && *req.TechnicianReportImage != "" {
			defect.TechnicianReportImage = req.TechnicianReportImage
		}
		if err := tx.Save(defect).Error; err != nil {
			return err
		}

		if hasText(req.TechnicianReport) || hasText(req.VerificationReport) {
			comment, err := currentComment(tx, defect.ID)
			if err != nil {
				return err
			}
			if hasText(req.TechnicianReport) {
				comment.TechnicianReport = req.TechnicianReport
			}
			if hasText(req.VerificationReport) {
				comment.VerificationReport = req.VerificationReport
			}
			return tx.Save(comment).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

func (s *DefectService) Complete(actor Actor, id uuid.UUID, req *dto.CompleteDefectRequest) (*models.Defect, error) {
	if !workflow.Permitted(actor.Role, workflow.TransitionComplete) {
		return nil, ErrForbidden
	}

	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.fetch(tx, id)
		if err != nil {
			return err
		}

		workflow.Apply(defect, workflow.TransitionComplete, time.Now())
		if err := tx.Save(defect).Error; err != nil {
			return err
		}

		if hasText(req.VerificationReport) || hasText(req.FinalCompletion) {
			comment, err := currentComment(tx, defect.ID)
			if err != nil {
				return err
			}
			if hasText(req.VerificationReport) {
				comment.VerificationReport = req.VerificationReport
			}
			if hasText(req.FinalCompletion) {
				comment.FinalCompletion = req.FinalCompletion
			}
			return tx.Save(comment).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

// Reopen resets the defect to Open and clears the completion timestamps.
// Assignment and review history are kept.
func (s *DefectService) Reopen(actor Actor, id uuid.UUID) (*models.Defect, error) {
	if !workflow.Permitted(actor.Role, workflow.TransitionReopen) {
		return nil, ErrForbidden
	}

	var defect *models.Defect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		defect, err = s.fetch(tx, id)
		if err != nil {
			return err
		}

		workflow.Apply(defect, workflow.TransitionReopen, time.Now())
		// Save skips zeroed fields for timestamps held in pointers; use
		// explicit column writes so the NULLs stick.
		return tx.Model(defect).Updates(map[string]interface{}{
			"status":       defect.Status,
			"done_at":      nil,
			"completed_at": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

// Delete hard-deletes the defect and its comment rows.
func (s *DefectService) Delete(actor Actor, id uuid.UUID) error {
	if !policy.Allows(actor.Role, policy.ActionDelete, policy.ResourceDefects) {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		defect, err := s.fetch(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("defect_id = ?", defect.ID).Delete(&models.DefectComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(defect).Error
	})
}

// UpsertComments writes the role-permitted subset of the submitted ledger
// fields onto the defect's current comment record. Disallowed fields are
// silently dropped.
func (s *DefectService) UpsertComments(actor Actor, id uuid.UUID, req *dto.UpsertCommentsRequest) (*models.DefectComment, error) {
	var comment *models.DefectComment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		defect, err := s.fetch(tx, id)
		if err != nil {
			return err
		}
		if !policy.CanAccessDefect(actor.Role, actor.ID, defect) {
			return ErrForbidden
		}

		comment, err = currentComment(tx, defect.ID)
		if err != nil {
			return err
		}

		for field, value := range req.Fields() {
			if !policy.CanWriteCommentField(actor.Role, field) {
				continue
			}
			switch field {
			case policy.FieldInitialReport:
				comment.InitialReport = value
			case policy.FieldExecutiveDecision:
				comment.ExecutiveDecision = value
			case policy.FieldTechnicianReport:
				comment.TechnicianReport = value
			case policy.FieldVerificationReport:
				comment.VerificationReport = value
			case policy.FieldFinalCompletion:
				comment.FinalCompletion = value
			}
		}
		return tx.Save(comment).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns all historical ledger rows, oldest first.
func (s *DefectService) ListComments(actor Actor, id uuid.UUID) ([]models.DefectComment, error) {
	defect, err := s.fetch(s.db, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessDefect(actor.Role, actor.ID, defect) {
		return nil, ErrForbidden
	}

	var comments []models.DefectComment
	err = s.db.Where("defect_id = ?", id).
		Order("created_at ASC").Order("updated_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *DefectService) fetch(tx *gorm.DB, id uuid.UUID) (*models.Defect, error) {
	var defect models.Defect
	if err := tx.First(&defect, "id = ?", id).Error; err != nil {
		return nil, NotFound("defect")
	}
	return &defect, nil
}

// guardTransition checks role permission plus the technician self-assignment
// rule and returns the defect.
func (s *DefectService) guardTransition(tx *gorm.DB, actor Actor, id uuid.UUID, t workflow.Transition) (*models.Defect, error) {
	if !workflow.Permitted(actor.Role, t) {
		return nil, ErrForbidden
	}
	defect, err := s.fetch(tx, id)
	if err != nil {
		return nil, err
	}
	if workflow.RequiresOwnership(actor.Role, t) && !workflow.OwnsDefect(actor.ID, defect) {
		return nil, ErrForbidden
	}
	return defect, nil
}

// currentComment resolves the defect's current ledger record: the row with
// the latest (updated_at, created_at), created lazily if none exists.
func currentComment(tx *gorm.DB, defectID uuid.UUID) (*models.DefectComment, error) {
	var comment models.DefectComment
	err := tx.Where("defect_id = ?", defectID).
		Order("updated_at DESC").Order("created_at DESC").
		First(&comment).Error
	if err == nil {
		return &comment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	comment = models.DefectComment{
		ID:       uuid.New(),
		DefectID: defectID,
	}
	if err := tx.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
