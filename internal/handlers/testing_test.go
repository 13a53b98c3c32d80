package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/imf-ops/gadgetry/internal/config"
	"github.com/imf-ops/gadgetry/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Gadget{}); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	cfg := &config.Config{
		NodeEnv:   "test",
		JWTSecret: "test-secret-key-12345",
	}
	return NewRouter(db, cfg)
}

// do runs one request through the router and decodes the JSON body
func do(t *testing.T, r *Router, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			// List endpoints return arrays; callers use doList for those
			decoded = nil
		}
	}
	return rec.Code, decoded
}

// doList is do for endpoints returning a JSON array
func doList(t *testing.T, r *Router, path, token string) (int, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded []map[string]interface{}
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode list response: %v", err)
		}
	}
	return rec.Code, decoded
}

// registerUser registers a user through the API and returns the token
func registerUser(t *testing.T, r *Router, username, role string) string {
	t.Helper()

	code, body := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "hunter2!",
		"role":     role,
	})
	if code != http.StatusCreated {
		t.Fatalf("Registration of %s failed with status %d: %v", username, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("Registration of %s returned no token", username)
	}
	return token
}
