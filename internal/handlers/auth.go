package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/imf-ops/gadgetry/internal/models"
	"github.com/imf-ops/gadgetry/internal/utils"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin agent"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// register handles user registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.validate.Struct(regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	// 1. Reject duplicate usernames
	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", regReq.Username).Count(&count).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	// 2. Hash password
	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	// 3. Create user (role defaults to agent)
	role := regReq.Role
	if role == "" {
		role = models.RoleAgent
	}
	user := models.User{
		Username: regReq.Username,
		Password: hashedPassword,
		Role:     role,
	}
	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	// 4. Issue token for immediate login
	token, err := utils.GenerateToken(&user, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"token":   token,
	})
}

// login handles user login. Unknown usernames and wrong passwords get
// the same generic response.
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.validate.Struct(loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	if err := r.db.Where("username = ?", loginReq.Username).First(&user).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(&user, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}
