package api

import (
	"errors"
	"net/http"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/platform/logger"
	"github.com/taskhive/taskhive/internal/service/auth"
	"github.com/taskhive/taskhive/internal/store"
)

// invalidCredentialsMessage is returned for every login failure so the
// response never reveals whether the email is registered.
const invalidCredentialsMessage = "Invalid credentials"

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
	}
}

// Register handles the /register endpoint. A duplicate email is reported
// as a bad request, matching the registration contract.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	// Parse request
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Validate request
	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// Create user
	user, err := domain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	// Store user; the store hashes the password before persisting
	if err := h.userStore.Create(r.Context(), user); err != nil {
		if store.IsDuplicateError(err) {
			HandleAPIError(w, r, err, "Email already registered")
			return
		}
		logger.FromContext(r.Context()).Error("failed to create user",
			"error", err)
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	// Return success response
	RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// Login handles the /login endpoint. The request is form-encoded with the
// email carried in the "username" field.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Normalize the same way NewUser does at registration, so mixed-case
	// logins still find the stored account.
	email := domain.NormalizeEmail(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		RespondWithError(w, r, http.StatusBadRequest, "Username and password are required")
		return
	}

	// Get user by email
	user, err := h.userStore.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			RespondWithError(w, r, http.StatusUnauthorized, invalidCredentialsMessage)
			return
		}
		logger.FromContext(r.Context()).Error("failed to get user by email",
			"error", err)
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	// Verify password using the injected verifier
	if err := h.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		RespondWithError(w, r, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	// Generate token
	token, err := h.jwtService.GenerateToken(r.Context(), user.Email)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to generate token",
			"error", err, "user_id", user.ID)
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	// Return success response
	RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
