package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"filevault/internal/auth"
	"filevault/internal/domain"
	"filevault/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	auth        *auth.Auth
	validate    *validator.Validate
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(authService *service.AuthService, auth *auth.Auth) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auth:        auth,
		validate:    validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, registrationValidationError(err))
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.auth.CookieFor(session))
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.auth.SessionID(r)
	if err == nil {
		if err := h.authService.Logout(r.Context(), sessionID); err != nil {
			writeError(w, err)
			return
		}
	}

	// Куку стираем в любом случае
	http.SetCookie(w, h.auth.ClearCookie())
	w.WriteHeader(http.StatusOK)
}

// registrationValidationError переводит первую ошибку validator в
// доменную ошибку с привязкой к полю.
func registrationValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return domain.NewValidationError("body", "invalid request")
	}

	fieldErr := validationErrors[0]
	switch fieldErr.Field() {
	case "Email":
		return domain.NewValidationError("email", "enter a valid email address")
	case "ConfirmPassword":
		return domain.NewValidationError("confirm_password", "passwords do not match")
	default:
		return domain.NewValidationError("password", "password is required")
	}
}
