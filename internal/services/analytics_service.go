package services

import (
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/policy"
)

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// DefectsPerBuilding counts defects per building, including buildings with none.
func (s *AnalyticsService) DefectsPerBuilding(actor Actor) ([]dto.BuildingDefectCount, error) {
	if !policy.Allows(actor.Role, policy.ActionRead, policy.ResourceAnalytics) {
		return nil, ErrForbidden
	}

	var rows []dto.BuildingDefectCount
	err := s.db.Table("buildings").
		Select("buildings.id AS building_id, buildings.name AS building_name, COUNT(defects.id) AS defect_count").
		Joins("LEFT JOIN defects ON defects.building_id = buildings.id").
		Group("buildings.id, buildings.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DefectsByStatus counts defects grouped by workflow status.
func (s *AnalyticsService) DefectsByStatus(actor Actor) ([]dto.StatusCount, error) {
	if !policy.Allows(actor.Role, policy.ActionRead, policy.ResourceAnalytics) {
		return nil, ErrForbidden
	}

	var rows []dto.StatusCount
	err := s.db.Table("defects").
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
