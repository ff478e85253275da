package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

type AuthHandler struct {
	userRepo      repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// SignToken issues an HS256 token carrying the user's id, email and role.
func SignToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// Signup registers a new account. Self-registered accounts always get the
// employee role; admin and HR accounts are provisioned by operators.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if !assessment.ValidEmail(req.Email) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "validation failed",
			Fields:  map[string]string{"email": assessment.MsgEmailInvalid},
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error hashing password")
		return
	}

	user, err := h.userRepo.CreateUser(r.Context(), &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleEmployee,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		logger.Error("signup: create user", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "error creating user")
		return
	}

	h.respondWithToken(w, user)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	user, err := h.userRepo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error("signin: lookup", slog.Any("err", err))
		}
		writeError(w, http.StatusUnauthorized, "credentials not found")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "credentials not found")
		return
	}

	h.respondWithToken(w, user)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, u *models.User) {
	tokenStr, err := SignToken(h.jwtSecret, u, h.tokenDuration)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error signing token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: tokenStr, Role: u.Role})
}
