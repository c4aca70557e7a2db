package dto

import "github.com/google/uuid"

type BuildingDefectCount struct {
	BuildingID   uuid.UUID `json:"building_id"`
	BuildingName string    `json:"building_name"`
	DefectCount  int64     `json:"defect_count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
