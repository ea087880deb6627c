package services_test

import (
	"testing"

	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.Request{},
		&models.Update{},
		&models.ChatMessage{},
		&models.FormAttachment{},
		&models.Post{},
		&models.Highlight{},
		&models.Resource{},
		&models.LayoutSection{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func adminCaller() types.Caller {
	return types.Caller{
		ID:       "11111111-1111-1111-1111-111111111111",
		Email:    "kapitan@barangay.test",
		Roles:    []string{"admin", "user"},
		Approved: true,
	}
}

func citizenCaller() types.Caller {
	return types.Caller{
		ID:       "22222222-2222-2222-2222-222222222222",
		Email:    "resident@barangay.test",
		Roles:    []string{"user", services.ApprovedRole},
		Approved: true,
	}
}

func otherCitizenCaller() types.Caller {
	return types.Caller{
		ID:       "33333333-3333-3333-3333-333333333333",
		Email:    "neighbor@barangay.test",
		Roles:    []string{"user", services.ApprovedRole},
		Approved: true,
	}
}

// seedRequest files a request as the given citizen directly through the
// service so the record carries the usual defaults.
func seedRequest(t *testing.T, db *gorm.DB, caller types.Caller) *models.Request {
	t.Helper()

	req, err := services.CreateRequest(db, caller, 3, services.CreateRequestInput{
		Type:    "barangay-clearance",
		Details: "Clearance for employment",
	})
	if err != nil {
		t.Fatalf("Failed to seed request: %v", err)
	}
	return req
}

// seedUpdate appends an admin update to the request.
func seedUpdate(t *testing.T, db *gorm.DB, req *models.Request, in services.AddUpdateInput) *models.Update {
	t.Helper()

	if in.Message == "" {
		in.Message = "We are processing your request"
	}
	update, err := services.AddUpdate(db, adminCaller(), req.PublicID, in)
	if err != nil {
		t.Fatalf("Failed to seed update: %v", err)
	}
	return update
}

func expectKind(t *testing.T, err error, kind types.ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", kind)
	}
	pe, ok := types.AsPortalError(err)
	if !ok {
		t.Fatalf("Expected PortalError, got %T: %v", err, err)
	}
	if pe.Kind != kind {
		t.Fatalf("Expected %s error, got %s: %v", kind, pe.Kind, err)
	}
}
