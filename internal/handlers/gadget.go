package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/imf-ops/gadgetry/internal/models"
	"github.com/imf-ops/gadgetry/internal/services/gadget"
	"github.com/imf-ops/gadgetry/internal/utils"
)

// CreateGadgetRequest represents a gadget creation request
type CreateGadgetRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateGadgetRequest represents a partial gadget update
type UpdateGadgetRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// SelfDestructRequest carries the caller-supplied confirmation code
type SelfDestructRequest struct {
	ConfirmationCode string `json:"confirmationCode"`
}

// listGadgets returns all gadgets, optionally filtered by ?status=
func (r *Router) listGadgets(w http.ResponseWriter, req *http.Request) {
	var status *models.GadgetStatus
	if raw := req.URL.Query().Get("status"); raw != "" {
		s := models.GadgetStatus(raw)
		status = &s
	}

	gadgets, err := r.gadgets.List(status)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve gadgets")
		return
	}
	respondJSON(w, http.StatusOK, gadgets)
}

// getGadget returns a single gadget by ID
func (r *Router) getGadget(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	g, err := r.gadgets.GetByID(id)
	if err != nil {
		if errors.Is(err, gadget.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Gadget not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to retrieve gadget")
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// createGadget creates a new gadget with a generated codename
func (r *Router) createGadget(w http.ResponseWriter, req *http.Request) {
	var createReq CreateGadgetRequest
	if err := json.NewDecoder(req.Body).Decode(&createReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.validate.Struct(createReq); err != nil {
		respondError(w, http.StatusBadRequest, "Gadget name is required")
		return
	}

	g, err := r.gadgets.Create(createReq.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create gadget")
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

// updateGadget overwrites the supplied fields of a gadget
func (r *Router) updateGadget(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var updateReq UpdateGadgetRequest
	if err := json.NewDecoder(req.Body).Decode(&updateReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if updateReq.Name == nil && updateReq.Status == nil {
		respondError(w, http.StatusBadRequest, "At least one field to update is required")
		return
	}

	params := gadget.UpdateParams{Name: updateReq.Name}
	if updateReq.Status != nil {
		status := models.GadgetStatus(*updateReq.Status)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "Invalid status value")
			return
		}
		params.Status = &status
	}

	g, err := r.gadgets.Update(id, params)
	if err != nil {
		if errors.Is(err, gadget.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Gadget not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update gadget")
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// decommissionGadget marks a gadget as decommissioned. Gadgets are
// never physically deleted.
func (r *Router) decommissionGadget(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	g, err := r.gadgets.Decommission(id)
	if err != nil {
		if errors.Is(err, gadget.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Gadget not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to decommission gadget")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Gadget decommissioned successfully",
		"gadget":  g,
	})
}

// selfDestructGadget runs the self-destruct sequence. The expected code
// is generated fresh at verification time and never stored, so the only
// way a caller sees it is the echo in this endpoint's own error body.
// Simulation behavior, kept as designed.
func (r *Router) selfDestructGadget(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var sdReq SelfDestructRequest
	if err := json.NewDecoder(req.Body).Decode(&sdReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	expectedCode := utils.ConfirmationCode()
	if sdReq.ConfirmationCode == "" || sdReq.ConfirmationCode != expectedCode {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":        "Invalid confirmation code",
			"expectedCode": expectedCode,
			"message":      "This is a simulation - in a real app, this code would be sent securely",
		})
		return
	}

	g, err := r.gadgets.Destroy(id)
	if err != nil {
		if errors.Is(err, gadget.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Gadget not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Self-destruct sequence failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Gadget self-destruct sequence completed successfully",
		"gadget":  g,
	})
}

// getGadgetsByStatus returns all gadgets with exactly the given status
func (r *Router) getGadgetsByStatus(w http.ResponseWriter, req *http.Request) {
	status := models.GadgetStatus(mux.Vars(req)["status"])
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	gadgets, err := r.gadgets.ListByStatus(status)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve gadgets by status")
		return
	}
	respondJSON(w, http.StatusOK, gadgets)
}
