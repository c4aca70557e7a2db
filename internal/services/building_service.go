package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

type BuildingService struct {
	db *gorm.DB
}

func NewBuildingService(db *gorm.DB) *BuildingService {
	return &BuildingService{db: db}
}

func (s *BuildingService) List(actor Actor) ([]models.Building, error) {
	if !policy.Allows(actor.Role, policy.ActionRead, policy.ResourceBuildings) {
		return nil, ErrForbidden
	}
	var buildings []models.Building
	if err := s.db.Order("created_at ASC").Find(&buildings).Error; err != nil {
		return nil, err
	}
	return buildings, nil
}

func (s *BuildingService) Get(actor Actor, id uuid.UUID) (*models.Building, error) {
	if !policy.Allows(actor.Role, policy.ActionRead, policy.ResourceBuildings) {
		return nil, ErrForbidden
	}
	var building models.Building
	if err := s.db.First(&building, "id = ?", id).Error; err != nil {
		return nil, NotFound("building")
	}
	return &building, nil
}

func (s *BuildingService) Create(actor Actor, req *dto.CreateBuildingRequest) (*models.Building, error) {
	if !policy.Allows(actor.Role, policy.ActionCreate, policy.ResourceBuildings) {
		return nil, ErrForbidden
	}
	if req.Name == "" || req.Address == "" {
		return nil, Validation("missing required fields")
	}

	building := models.Building{
		ID:      uuid.New(),
		Name:    req.Name,
		Address: req.Address,
	}
	if err := s.db.Create(&building).Error; err != nil {
		return nil, err
	}
	return &building, nil
}

func (s *BuildingService) Update(actor Actor, id uuid.UUID, req *dto.UpdateBuildingRequest) (*models.Building, error) {
	if !policy.Allows(actor.Role, policy.ActionUpdate, policy.ResourceBuildings) {
		return nil, ErrForbidden
	}
	var building models.Building
	if err := s.db.First(&building, "id = ?", id).Error; err != nil {
		return nil, NotFound("building")
	}

	if req.Name != nil {
		building.Name = *req.Name
	}
	if req.Address != nil {
		building.Address = *req.Address
	}
	if err := s.db.Save(&building).Error; err != nil {
		return nil, err
	}
	return &building, nil
}

func (s *BuildingService) Delete(actor Actor, id uuid.UUID) error {
	if !policy.Allows(actor.Role, policy.ActionDelete, policy.ResourceBuildings) {
		return ErrForbidden
	}
	var building models.Building
	if err := s.db.First(&building, "id = ?", id).Error; err != nil {
		return NotFound("building")
	}
	return s.db.Delete(&building).Error
}
