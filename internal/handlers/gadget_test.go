package handlers

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/imf-ops/gadgetry/internal/models"
)

var codenamePattern = regexp.MustCompile(
	`^The (Phantom|Shadow|Silent|Stealth|Covert|Midnight|Golden|Silver|Iron|Ghost) ` +
		`(Eagle|Phoenix|Hawk|Falcon|Wolf|Viper|Cobra|Raven|Panther|Tiger)( \d+)?$`)

func TestGadgetEndpointsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/gadgets"},
		{http.MethodGet, "/api/gadgets/some-id"},
		{http.MethodPost, "/api/gadgets"},
		{http.MethodPatch, "/api/gadgets/some-id"},
		{http.MethodDelete, "/api/gadgets/some-id"},
		{http.MethodPost, "/api/gadgets/some-id/self-destruct"},
		{http.MethodGet, "/api/gadgets/status/Available"},
	}
	for _, p := range paths {
		code, _ := do(t, r, p.method, p.path, "", nil)
		if code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: expected 401, got %d", p.method, p.path, code)
		}
	}
}

func TestAdminEndpointsForbiddenForAgents(t *testing.T) {
	r := newTestRouter(t)
	agentToken := registerUser(t, r, "agent007", "agent")

	code, _ := do(t, r, http.MethodPost, "/api/gadgets", agentToken, map[string]string{"name": "Pen"})
	if code != http.StatusForbidden {
		t.Errorf("POST as agent: expected 403, got %d", code)
	}

	code, _ = do(t, r, http.MethodPatch, "/api/gadgets/some-id", agentToken, map[string]string{"name": "Pen"})
	if code != http.StatusForbidden {
		t.Errorf("PATCH as agent: expected 403, got %d", code)
	}

	code, _ = do(t, r, http.MethodDelete, "/api/gadgets/some-id", agentToken, nil)
	if code != http.StatusForbidden {
		t.Errorf("DELETE as agent: expected 403, got %d", code)
	}
}

func TestCreateGadget(t *testing.T) {
	r := newTestRouter(t)
	adminToken := registerUser(t, r, "imfadmin", "admin")

	code, body := do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{
		"name": "Invisible Pen",
	})
	if code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", code, body)
	}
	if body["name"] != "Invisible Pen" {
		t.Errorf("Unexpected name: %v", body["name"])
	}
	if body["status"] != string(models.StatusAvailable) {
		t.Errorf("Expected status Available, got %v", body["status"])
	}
	cn, _ := body["codename"].(string)
	if !codenamePattern.MatchString(cn) {
		t.Errorf("Codename %q does not match expected format", cn)
	}
	if id, _ := body["id"].(string); id == "" {
		t.Error("Created gadget should carry an id")
	}
	// Creation response is not decorated with a probability
	if _, ok := body["successProbability"]; ok {
		t.Error("Create response should not include successProbability")
	}

	// Missing name
	code, _ = do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{})
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 without name, got %d", code)
	}
}

func TestListGadgets(t *testing.T) {
	r := newTestRouter(t)
	adminToken := registerUser(t, r, "imfadmin", "admin")
	agentToken := registerUser(t, r, "agent007", "agent")

	_, g1 := do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{"name": "Pen"})
	do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{"name": "Watch"})

	// Deploy one gadget
	code, _ := do(t, r, http.MethodPatch, "/api/gadgets/"+g1["id"].(string), adminToken, map[string]string{
		"status": "Deployed",
	})
	if code != http.StatusOK {
		t.Fatalf("PATCH failed with %d", code)
	}

	// Agents can list
	code, all := doList(t, r, "/api/gadgets", agentToken)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 gadgets, got %d", len(all))
	}
	for _, g := range all {
		p, ok := g["successProbability"].(float64)
		if !ok {
			t.Fatalf("Gadget %v missing successProbability", g["codename"])
		}
		if p < 1 || p > 100 {
			t.Errorf("Probability out of range: %v", p)
		}
	}

	// Query filter
	code, deployed := doList(t, r, "/api/gadgets?status=Deployed", agentToken)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(deployed) != 1 {
		t.Fatalf("Expected 1 deployed gadget, got %d", len(deployed))
	}
	if deployed[0]["status"] != "Deployed" {
		t.Errorf("Filter leaked status %v", deployed[0]["status"])
	}

	// Path variant
	code, available := doList(t, r, "/api/gadgets/status/Available", agentToken)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(available) != 1 {
		t.Errorf("Expected 1 available gadget, got %d", len(available))
	}

	// Path variant rejects unknown statuses
	code, _ = do(t, r, http.MethodGet, "/api/gadgets/status/Broken", agentToken, nil)
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", code)
	}
}

func TestGetGadget(t *testing.T) {
	r := newTestRouter(t)
	adminToken := registerUser(t, r, "imfadmin", "admin")

	_, created := do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{"name": "Pen"})

	code, body := do(t, r, http.MethodGet, "/api/gadgets/"+created["id"].(string), adminToken, nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body["id"] != created["id"] {
		t.Errorf("ID mismatch: %v", body["id"])
	}
	if _, ok := body["successProbability"]; !ok {
		t.Error("Get response should include successProbability")
	}

	code, _ = do(t, r, http.MethodGet, "/api/gadgets/"+uuid.NewString(), adminToken, nil)
	if code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown id, got %d", code)
	}
}

func TestUpdateGadgetValidation(t *testing.T) {
	r := newTestRouter(t)
	adminToken := registerUser(t, r, "imfadmin", "admin")

	_, created := do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{"name": "Pen"})
	id := created["id"].(string)

	// Neither field supplied
	code, _ := do(t, r, http.MethodPatch, "/api/gadgets/"+id, adminToken, map[string]string{})
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty update, got %d", code)
	}

	// Unknown status value
	code, _ = do(t, r, http.MethodPatch, "/api/gadgets/"+id, adminToken, map[string]string{
		"status": "Lost",
	})
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", code)
	}

	// Unknown id
	code, _ = do(t, r, http.MethodPatch, "/api/gadgets/"+uuid.NewString(), adminToken, map[string]string{
		"name": "Gone",
	})
	if code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown id, got %d", code)
	}
}

func TestDecommissionGadget(t *testing.T) {
	r := newTestRouter(t)
	adminToken := registerUser(t, r, "imfadmin", "admin")

	_, created := do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{"name": "Pen"})
	id := created["id"].(string)

	code, body := do(t, r, http.MethodDelete, "/api/gadgets/"+id, adminToken, nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", code, body)
	}
	if body["message"] != "Gadget decommissioned successfully" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	g, _ := body["gadget"].(map[string]interface{})
	if g["status"] != string(models.StatusDecommissioned) {
		t.Errorf("Expected status Decommissioned, got %v", g["status"])
	}
	if ts, _ := g["decommissionedAt"].(string); ts == "" {
		t.Error("Decommission should stamp decommissionedAt")
	}

	// The record survives decommissioning
	code, _ = do(t, r, http.MethodGet, "/api/gadgets/"+id, adminToken, nil)
	if code != http.StatusOK {
		t.Errorf("Decommissioned gadget should still be readable, got %d", code)
	}

	code, _ = do(t, r, http.MethodDelete, "/api/gadgets/"+uuid.NewString(), adminToken, nil)
	if code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown id, got %d", code)
	}
}

func TestSelfDestructRequiresUnknowableCode(t *testing.T) {
	r := newTestRouter(t)
	adminToken := registerUser(t, r, "imfadmin", "admin")
	agentToken := registerUser(t, r, "agent007", "agent")

	_, created := do(t, r, http.MethodPost, "/api/gadgets", adminToken, map[string]string{"name": "Pen"})
	id := created["id"].(string)

	// Any guessed code fails: the expected code is drawn fresh inside
	// the request and only revealed in this very response
	code, body := do(t, r, http.MethodPost, "/api/gadgets/"+id+"/self-destruct", agentToken, map[string]string{
		"confirmationCode": "ABC123",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %v", code, body)
	}
	if body["error"] != "Invalid confirmation code" {
		t.Errorf("Unexpected error: %v", body["error"])
	}
	echoed, _ := body["expectedCode"].(string)
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(echoed) {
		t.Errorf("Echoed code %q does not match expected format", echoed)
	}
	if echoed == "ABC123" {
		t.Skip("astronomically unlikely collision between guess and generated code")
	}

	// Replaying the echoed code races a fresh random draw and fails again
	code, body = do(t, r, http.MethodPost, "/api/gadgets/"+id+"/self-destruct", agentToken, map[string]string{
		"confirmationCode": echoed,
	})
	if code != http.StatusBadRequest && code != http.StatusOK {
		t.Fatalf("Unexpected status %d: %v", code, body)
	}

	// The gadget is untouched by failed attempts
	_, g := do(t, r, http.MethodGet, "/api/gadgets/"+id, agentToken, nil)
	if g["status"] == string(models.StatusDestroyed) {
		// Only reachable via back-to-back identical random draws
		t.Logf("gadget destroyed by colliding draws; statistically negligible")
	}

	// Code check runs before existence: unknown id with a bad code is 400
	code, _ = do(t, r, http.MethodPost, "/api/gadgets/"+uuid.NewString()+"/self-destruct", agentToken, map[string]string{
		"confirmationCode": "XXXXXX",
	})
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad code on unknown id, got %d", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	code, body := do(t, r, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("Unexpected status: %v", body["status"])
	}
	if body["message"] != "IMF API operational" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}
