package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

func TestDefectsPerBuilding(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)
	csr := seedUser(t, db, "csr", policy.RoleCSR)
	busy := seedBuilding(t, db, "Busy")
	quiet := seedBuilding(t, db, "Quiet")

	for i := 0; i < 2; i++ {
		defect := models.Defect{
			ID:          uuid.New(),
			Title:       "defect",
			Description: "d",
			Status:      models.StatusOpen,
			Priority:    models.PriorityLow,
			BuildingID:  busy.ID,
			ReporterID:  csr.ID,
		}
		if err := db.Create(&defect).Error; err != nil {
			t.Fatal(err)
		}
	}

	rows, err := svc.DefectsPerBuilding(asActor(csr))
	if err != nil {
		t.Fatal(err)
	}
	counts := map[uuid.UUID]int64{}
	for _, r := range rows {
		counts[r.BuildingID] = r.DefectCount
	}
	if counts[busy.ID] != 2 {
		t.Errorf("busy count = %d, want 2", counts[busy.ID])
	}
	// Zero-defect buildings still appear.
	if got, ok := counts[quiet.ID]; !ok || got != 0 {
		t.Errorf("quiet count = %d (present=%v), want 0", got, ok)
	}
}

func TestDefectsByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)
	csr := seedUser(t, db, "csr", policy.RoleCSR)
	tech := seedUser(t, db, "tech", policy.RoleTechnician)
	building := seedBuilding(t, db, "Annex")

	for _, status := range []string{models.StatusOpen, models.StatusOpen, models.StatusDone} {
		defect := models.Defect{
			ID:          uuid.New(),
			Title:       "defect",
			Description: "d",
			Status:      status,
			Priority:    models.PriorityLow,
			BuildingID:  building.ID,
			ReporterID:  csr.ID,
		}
		if err := db.Create(&defect).Error; err != nil {
			t.Fatal(err)
		}
	}

	rows, err := svc.DefectsByStatus(asActor(csr))
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	if counts[models.StatusOpen] != 2 || counts[models.StatusDone] != 1 {
		t.Errorf("counts = %v, want Open:2 Done:1", counts)
	}

	// Technicians have no analytics access.
	if _, err := svc.DefectsByStatus(asActor(tech)); !errors.Is(err, ErrForbidden) {
		t.Errorf("technician analytics: got %v, want ErrForbidden", err)
	}
	if _, err := svc.DefectsPerBuilding(asActor(tech)); !errors.Is(err, ErrForbidden) {
		t.Errorf("technician analytics: got %v, want ErrForbidden", err)
	}
}
