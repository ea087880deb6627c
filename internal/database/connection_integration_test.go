package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/containers"
	"github.com/barangay-konek/portal-api/internal/database"
	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/types"
)

// TestWithMariaDB exercises connect, migrate, and the request lifecycle
// against a real MariaDB container.
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	mariadb, err := containers.StartMariaDB(ctx, containers.MariaDBConfig{
		Database:     "portal_test",
		User:         "portal",
		Password:     "portal",
		RootPassword: "rootpass",
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadb.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            mariadb.Host,
		DBPort:            mariadb.Port,
		DBDatabase:        "portal_test",
		DBUser:            "portal",
		DBPassword:        "portal",
		DBConnectionLimit: 5,
		PriorityOpenLimit: 3,
	}

	// Wait for the server to finish its first-boot init
	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	citizen := types.Caller{
		ID:       "22222222-2222-2222-2222-222222222222",
		Roles:    []string{"user", services.ApprovedRole},
		Approved: true,
	}

	t.Run("RequestLifecycle", func(t *testing.T) {
		req, err := services.CreateRequest(db, citizen, cfg.PriorityOpenLimit, services.CreateRequestInput{
			Type:    "barangay-clearance",
			Details: "Integration clearance",
		})
		if err != nil {
			t.Fatalf("Failed to create request: %v", err)
		}

		if err := services.TransitionStatus(db, req, models.StatusReviewed); err != nil {
			t.Fatalf("Failed to transition to reviewed: %v", err)
		}
		if err := services.TransitionStatus(db, req, models.StatusApproved); err != nil {
			t.Fatalf("Failed to approve: %v", err)
		}
		if err := services.TransitionStatus(db, req, models.StatusReviewed); err == nil {
			t.Error("Expected a conflict moving an approved request")
		}
	})

	t.Run("LayoutSeed", func(t *testing.T) {
		sections, err := services.DefaultLayoutSections()
		if err != nil {
			t.Fatalf("Failed to parse default sections: %v", err)
		}
		if err := services.SeedLayout(db, sections); err != nil {
			t.Fatalf("Failed to seed layout: %v", err)
		}
		layout, err := services.GetLayout(db)
		if err != nil {
			t.Fatalf("Failed to get layout: %v", err)
		}
		if len(layout) != len(sections) {
			t.Errorf("Expected %d sections, got %d", len(sections), len(layout))
		}
	})
}
