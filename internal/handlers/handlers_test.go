package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/barangay-konek/portal-api/internal/cache"
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/docgen"
	"github.com/barangay-konek/portal-api/internal/handlers"
	"github.com/barangay-konek/portal-api/internal/middleware"
	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/storage"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

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

func testConfig() *config.Config {
	return &config.Config{
		StorageBaseURL:    "https://files.barangay.test",
		ContentCacheTTL:   time.Minute,
		LayoutCacheTTL:    time.Minute,
		PriorityOpenLimit: 3,
	}
}

var (
	testAdmin = types.Caller{
		ID:       "11111111-1111-1111-1111-111111111111",
		Roles:    []string{"admin", "user"},
		Approved: true,
	}
	testCitizen = types.Caller{
		ID:       "22222222-2222-2222-2222-222222222222",
		Roles:    []string{"user", services.ApprovedRole},
		Approved: true,
	}
)

// withCaller stands in for the auth middleware in handler tests.
func withCaller(caller types.Caller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.CallerKey, caller)
		return c.Next()
	}
}

// setupApps builds two fiber apps on the same database, one wired as the
// citizen and one as the admin, so route behavior per role is testable
// without a live Authorizer.
func setupApps(t *testing.T, db *gorm.DB) (citizen *fiber.App, admin *fiber.App) {
	cfg := testConfig()
	files := storage.NewPublicResolver(cfg.StorageBaseURL)
	docs, err := docgen.New()
	if err != nil {
		t.Fatalf("Failed to load certificate templates: %v", err)
	}

	build := func(caller types.Caller) *fiber.App {
		app := fiber.New()

		requestHandler := &handlers.RequestHandler{DB: db, Cfg: cfg, Files: files}
		updateHandler := &handlers.UpdateHandler{DB: db, Docs: docs}
		contentHandler := &handlers.ContentHandler{DB: db, Cfg: cfg, Store: cache.Noop{}, Files: files}
		uploadHandler := &handlers.UploadHandler{Files: files}

		auth := withCaller(caller)

		app.Post("/api/requests", auth, requestHandler.CreateRequest)
		app.Get("/api/requests", auth, requestHandler.ListRequests)
		app.Get("/api/requests/:id", auth, requestHandler.GetRequest)
		app.Get("/api/requests/:id/updates", auth, requestHandler.ListUpdates)
		app.Post("/api/requests/:id/updates", auth, requestHandler.AddUpdate)
		app.Post("/api/updates/:id/close", auth, updateHandler.CloseUpdate)
		app.Get("/api/updates/:id/messages", auth, updateHandler.ListMessages)
		app.Post("/api/updates/:id/messages", auth, updateHandler.PostMessage)
		app.Get("/api/updates/:id/form", auth, updateHandler.GetForm)
		app.Post("/api/updates/:id/form", auth, updateHandler.SubmitForm)
		app.Get("/api/updates/:id/document", auth, updateHandler.GetDocument)
		app.Post("/api/uploads", auth, uploadHandler.CreateUpload)

		app.Get("/api/content/posts", contentHandler.ListPosts)
		app.Get("/api/content/posts/:id", contentHandler.GetPost)
		app.Get("/api/content/highlights", contentHandler.ListHighlights)
		app.Get("/api/content/resources", contentHandler.ListResources)
		app.Get("/api/content/resources/:id/download", contentHandler.DownloadResource)
		app.Get("/api/content/layout", contentHandler.GetLayout)
		app.Post("/api/admin/content/posts", auth, contentHandler.CreatePost)
		app.Put("/api/admin/content/posts/:id", auth, contentHandler.UpdatePost)
		app.Delete("/api/admin/content/posts/:id", auth, contentHandler.DeletePost)
		app.Post("/api/admin/content/highlights", auth, contentHandler.CreateHighlight)
		app.Put("/api/admin/content/highlights", auth, contentHandler.ReorderHighlights)
		app.Put("/api/admin/content/highlights/:id", auth, contentHandler.UpdateHighlight)
		app.Delete("/api/admin/content/highlights/:id", auth, contentHandler.DeleteHighlight)
		app.Post("/api/admin/content/resources", auth, contentHandler.CreateResource)
		app.Put("/api/admin/content/resources/:id", auth, contentHandler.UpdateResource)
		app.Delete("/api/admin/content/resources/:id", auth, contentHandler.DeleteResource)
		app.Put("/api/admin/content/layout", auth, contentHandler.ReorderLayout)

		return app
	}

	return build(testCitizen), build(testAdmin)
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}) (*fiber.Map, int) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute %s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	var result fiber.Map
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		if err := json.Unmarshal(raw, &result); err != nil {
			// Array bodies land in the caller's hands via re-request
			result = fiber.Map{"_raw": string(raw)}
		}
	}

	return &result, resp.StatusCode
}

// createRequestVia files a request through the citizen app and returns its
// public id.
func createRequestVia(t *testing.T, citizen *fiber.App) string {
	t.Helper()

	result, status := doJSON(t, citizen, "POST", "/api/requests", map[string]interface{}{
		"type":    "barangay-clearance",
		"details": "Clearance for employment",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}

	data, ok := (*result)["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data envelope, got %v", *result)
	}
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatal("Expected a public id in the response")
	}
	return id
}

// TestCreateRequestEndpoint tests POST /api/requests
func TestCreateRequestEndpoint(t *testing.T) {
	db := setupTestDB(t)
	citizen, _ := setupApps(t, db)

	id := createRequestVia(t, citizen)

	var stored models.Request
	if err := db.Where("public_id = ?", id).First(&stored).Error; err != nil {
		t.Fatalf("Failed to find stored request: %v", err)
	}
	if stored.Status != models.StatusSubmitted {
		t.Errorf("Expected status submitted, got %s", stored.Status)
	}

	// Validation failures surface as 400 with the error envelope
	result, status := doJSON(t, citizen, "POST", "/api/requests", map[string]interface{}{
		"type": "barangay-clearance",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %v", status, *result)
	}
	if ok, _ := (*result)["ok"].(bool); ok {
		t.Error("Expected ok=false in error envelope")
	}
}

// TestRequestDetailEndpoint tests GET /api/requests/:id with the progress
// field and the picture URL resolution.
func TestRequestDetailEndpoint(t *testing.T) {
	db := setupTestDB(t)
	citizen, _ := setupApps(t, db)

	result, status := doJSON(t, citizen, "POST", "/api/requests", map[string]interface{}{
		"type":       "barangay-clearance",
		"details":    "Clearance",
		"pictureKey": "abc123.jpg",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}
	data := (*result)["data"].(map[string]interface{})
	id := data["id"].(string)

	detail, status := doJSON(t, citizen, "GET", "/api/requests/"+id, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if (*detail)["pictureUrl"] != "https://files.barangay.test/abc123.jpg" {
		t.Errorf("Expected resolved picture URL, got %v", (*detail)["pictureUrl"])
	}
	if progress, ok := (*detail)["progress"].(float64); !ok || progress != 0 {
		t.Errorf("Expected progress 0 for submitted, got %v", (*detail)["progress"])
	}

	// Unknown ids are 404
	_, status = doJSON(t, citizen, "GET", "/api/requests/00000000-0000-0000-0000-000000000000", nil)
	if status != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", status)
	}
}

// TestAdminUpdateFlow tests the update, chat, and close endpoints.
func TestAdminUpdateFlow(t *testing.T) {
	db := setupTestDB(t)
	citizen, admin := setupApps(t, db)

	id := createRequestVia(t, citizen)

	// Admin posts an update
	result, status := doJSON(t, admin, "POST", "/api/requests/"+id+"/updates", map[string]interface{}{
		"message": "We are on it",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}
	data := (*result)["data"].(map[string]interface{})
	updateID := strconv.Itoa(int(data["id"].(float64)))

	// Citizen chats on the channel
	_, status = doJSON(t, citizen, "POST", "/api/updates/"+updateID+"/messages", map[string]interface{}{
		"body": "Thank you po",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201 posting chat, got %d", status)
	}

	// Admin closes the channel; a repeat close still succeeds
	for i := 0; i < 2; i++ {
		_, status = doJSON(t, admin, "POST", "/api/updates/"+updateID+"/close", nil)
		if status != fiber.StatusOK {
			t.Fatalf("Expected status 200 closing channel, got %d", status)
		}
	}

	// Chat on the closed channel conflicts
	_, status = doJSON(t, citizen, "POST", "/api/updates/"+updateID+"/messages", map[string]interface{}{
		"body": "Still there?",
	})
	if status != fiber.StatusConflict {
		t.Errorf("Expected status 409 on closed channel, got %d", status)
	}

	// Citizens cannot author updates
	_, status = doJSON(t, citizen, "POST", "/api/requests/"+id+"/updates", map[string]interface{}{
		"message": "Approving myself",
	})
	if status != fiber.StatusForbidden {
		t.Errorf("Expected status 403 for citizen update, got %d", status)
	}
}

// TestFormAndDocumentFlow tests the form slot lifecycle down to the
// generated certificate.
func TestFormAndDocumentFlow(t *testing.T) {
	db := setupTestDB(t)
	citizen, admin := setupApps(t, db)

	id := createRequestVia(t, citizen)

	result, status := doJSON(t, admin, "POST", "/api/requests/"+id+"/updates", map[string]interface{}{
		"message":  "Please fill out the clearance form",
		"kind":     "form",
		"formType": "clearance",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}
	data := (*result)["data"].(map[string]interface{})
	updateID := strconv.Itoa(int(data["id"].(float64)))

	// The document is not ready before submission
	_, status = doJSON(t, citizen, "GET", "/api/updates/"+updateID+"/document", nil)
	if status != fiber.StatusConflict {
		t.Errorf("Expected status 409 before submission, got %d", status)
	}

	// Submit the form
	payload := map[string]interface{}{
		"fullName":        "Juan Dela Cruz",
		"birthDate":       "1990-04-12",
		"birthPlace":      "Quezon City",
		"completeAddress": "456 Rizal Ave",
		"purpose":         "Employment",
	}
	_, status = doJSON(t, citizen, "POST", "/api/updates/"+updateID+"/form", payload)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 submitting form, got %d", status)
	}

	// A second submission conflicts
	_, status = doJSON(t, citizen, "POST", "/api/updates/"+updateID+"/form", payload)
	if status != fiber.StatusConflict {
		t.Errorf("Expected status 409 on resubmission, got %d", status)
	}

	// The certificate renders with the submitted name
	req := httptest.NewRequest("GET", "/api/updates/"+updateID+"/document", nil)
	resp, err := citizen.Test(req)
	if err != nil {
		t.Fatalf("Failed to download document: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200 downloading document, got %d", resp.StatusCode)
	}
	doc, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(doc), "Juan Dela Cruz") {
		t.Error("Expected the certificate to carry the submitted name")
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "certificate-of-clearance.txt") {
		t.Errorf("Expected download filename, got %q", resp.Header.Get("Content-Disposition"))
	}
}

// TestContentEndpoints tests the public reads and the admin console.
func TestContentEndpoints(t *testing.T) {
	db := setupTestDB(t)
	_, admin := setupApps(t, db)

	// Create one published and one draft post via the console
	result, status := doJSON(t, admin, "POST", "/api/admin/content/posts", map[string]interface{}{
		"title":     "Fiesta schedule",
		"body":      "All week",
		"published": true,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}
	_, status = doJSON(t, admin, "POST", "/api/admin/content/posts", map[string]interface{}{
		"title": "Draft",
		"body":  "Not yet",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}

	// The public list carries only the published post
	req := httptest.NewRequest("GET", "/api/content/posts", nil)
	resp, err := admin.Test(req)
	if err != nil {
		t.Fatalf("Failed to list posts: %v", err)
	}
	defer resp.Body.Close()
	var posts []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		t.Fatalf("Failed to decode posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 published post, got %d", len(posts))
	}
	if posts[0]["title"] != "Fiesta schedule" {
		t.Errorf("Expected the published post, got %v", posts[0]["title"])
	}
}

// TestHighlightConsoleEndpoints tests editing and reordering carousel
// entries in place.
func TestHighlightConsoleEndpoints(t *testing.T) {
	db := setupTestDB(t)
	_, admin := setupApps(t, db)

	result, status := doJSON(t, admin, "POST", "/api/admin/content/highlights", map[string]interface{}{
		"title":    "Cleanup drive",
		"imageKey": "cleanup.jpg",
		"position": 1,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}
	data := (*result)["data"].(map[string]interface{})
	highlightID := strconv.Itoa(int(data["id"].(float64)))

	// Edit the entry without recreating it
	result, status = doJSON(t, admin, "PUT", "/api/admin/content/highlights/"+highlightID, map[string]interface{}{
		"title":    "Coastal cleanup drive",
		"imageKey": "cleanup-v2.jpg",
		"position": 1,
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, *result)
	}
	data = (*result)["data"].(map[string]interface{})
	if data["title"] != "Coastal cleanup drive" {
		t.Errorf("Expected edited title, got %v", data["title"])
	}
	if data["imageUrl"] != "https://files.barangay.test/cleanup-v2.jpg" {
		t.Errorf("Expected resolved image URL, got %v", data["imageUrl"])
	}

	// Reorder accepts a single entry as well as the full carousel
	result, status = doJSON(t, admin, "PUT", "/api/admin/content/highlights", map[string]interface{}{
		"highlightId": int(data["id"].(float64)),
		"position":    7,
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 reordering, got %d: %v", status, *result)
	}

	var stored models.Highlight
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("Failed to reload highlight: %v", err)
	}
	if stored.Position != 7 {
		t.Errorf("Expected position 7 after reorder, got %d", stored.Position)
	}

	// Unknown entries are 404 on edit
	_, status = doJSON(t, admin, "PUT", "/api/admin/content/highlights/99999", map[string]interface{}{
		"title": "Ghost", "imageKey": "ghost.jpg",
	})
	if status != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", status)
	}
}

// TestResourceConsoleEndpoints tests editing a resource keeps its counter.
func TestResourceConsoleEndpoints(t *testing.T) {
	db := setupTestDB(t)
	_, admin := setupApps(t, db)

	result, status := doJSON(t, admin, "POST", "/api/admin/content/resources", map[string]interface{}{
		"title":   "Permit form",
		"fileKey": "forms/permit.pdf",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}
	data := (*result)["data"].(map[string]interface{})
	resourceID := strconv.Itoa(int(data["id"].(float64)))

	_, status = doJSON(t, admin, "GET", "/api/content/resources/"+resourceID+"/download", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 downloading, got %d", status)
	}

	result, status = doJSON(t, admin, "PUT", "/api/admin/content/resources/"+resourceID, map[string]interface{}{
		"title":       "Permit form (2026)",
		"description": "Updated fee schedule",
		"fileKey":     "forms/permit-2026.pdf",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, *result)
	}
	data = (*result)["data"].(map[string]interface{})
	if data["fileUrl"] != "https://files.barangay.test/forms/permit-2026.pdf" {
		t.Errorf("Expected resolved file URL, got %v", data["fileUrl"])
	}
	if downloads, _ := data["downloads"].(float64); downloads != 1 {
		t.Errorf("Expected the download counter to survive the edit, got %v", data["downloads"])
	}
}

// TestUploadEndpoint tests POST /api/uploads
func TestUploadEndpoint(t *testing.T) {
	db := setupTestDB(t)
	citizen, _ := setupApps(t, db)

	result, status := doJSON(t, citizen, "POST", "/api/uploads", map[string]interface{}{
		"filename": "valid-id.PNG",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, *result)
	}

	data := (*result)["data"].(map[string]interface{})
	key, _ := data["key"].(string)
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("Expected key to keep a lowered extension, got %q", key)
	}
	url, _ := data["url"].(string)
	if !strings.HasPrefix(url, "https://files.barangay.test/") {
		t.Errorf("Expected resolved URL, got %q", url)
	}

	// Missing filename is rejected
	_, status = doJSON(t, citizen, "POST", "/api/uploads", map[string]interface{}{})
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", status)
	}
}
