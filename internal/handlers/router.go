package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/imf-ops/gadgetry/internal/buildinfo"
	"github.com/imf-ops/gadgetry/internal/config"
	"github.com/imf-ops/gadgetry/internal/middleware"
	"github.com/imf-ops/gadgetry/internal/models"
	"github.com/imf-ops/gadgetry/internal/services/gadget"
	"gorm.io/gorm"
)

// Router wraps the mux router with the database and services
type Router struct {
	*mux.Router
	db       *gorm.DB
	cfg      *config.Config
	validate *validator.Validate
	gadgets  *gadget.Service
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *gorm.DB, cfg *config.Config) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       db,
		cfg:      cfg,
		validate: validator.New(),
		gadgets:  gadget.NewService(db),
	}

	r.Use(r.recoverPanic)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes (public)
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/login", r.login).Methods("POST")

	// Gadget routes (protected)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	gadgets := r.PathPrefix("/api/gadgets").Subrouter()
	gadgets.Use(middleware.Authenticate(cfg.JWTSecret))
	gadgets.HandleFunc("/status/{status}", r.getGadgetsByStatus).Methods("GET")
	gadgets.HandleFunc("", r.listGadgets).Methods("GET")
	gadgets.Handle("", adminOnly(http.HandlerFunc(r.createGadget))).Methods("POST")
	gadgets.HandleFunc("/{id}", r.getGadget).Methods("GET")
	gadgets.Handle("/{id}", adminOnly(http.HandlerFunc(r.updateGadget))).Methods("PATCH")
	gadgets.Handle("/{id}", adminOnly(http.HandlerFunc(r.decommissionGadget))).Methods("DELETE")
	gadgets.HandleFunc("/{id}/self-destruct", r.selfDestructGadget).Methods("POST")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "IMF API operational",
		"version": buildinfo.CommitHash,
	})
}

// recoverPanic is the last-resort net for errors escaping the routing
// layer: log, then return a generic message in production and the real
// one otherwise.
func (r *Router) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", req.Method, req.URL.Path, rec)

				message := "An unexpected error occurred"
				if !r.cfg.IsProduction() {
					message = panicMessage(rec)
				}
				respondJSON(w, http.StatusInternalServerError, map[string]string{
					"error":   "Server error",
					"message": message,
				})
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func panicMessage(rec interface{}) string {
	if e, ok := rec.(error); ok {
		return e.Error()
	}
	return fmt.Sprintf("%v", rec)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
