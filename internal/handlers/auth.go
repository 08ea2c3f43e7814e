package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/middleware"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Cfg      *config.Config
	Log      *logrus.Entry
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, profiles *services.ProfileService, cfg *config.Config, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{Auth: auth, Profiles: profiles, Cfg: cfg, Log: log}
}

// RegisterRequest represents the request body for patient self-registration.
type RegisterRequest struct {
	FirstName        string     `json:"firstName" binding:"required,max=100"`
	LastName         string     `json:"lastName" binding:"required,max=100"`
	Email            string     `json:"email" binding:"required,email"`
	Password         string     `json:"password" binding:"required,min=8"`
	PhoneNumber      string     `json:"phoneNumber" binding:"max=30"`
	DateOfBirth      *time.Time `json:"dateOfBirth"`
	Gender           string     `json:"gender" binding:"max=20"`
	Address          string     `json:"address" binding:"max=255"`
	BloodGroup       string     `json:"bloodGroup" binding:"max=5"`
	EmergencyContact string     `json:"emergencyContact" binding:"max=100"`
	Allergies        string     `json:"allergies"`
}

// Register creates a patient account and its profile.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	patient := models.Patient{
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		Address:          req.Address,
		BloodGroup:       req.BloodGroup,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
	}
	if err := h.Auth.RegisterPatient(c.Request.Context(), &user, req.Password, &patient); err != nil {
		respondError(c, h.Log, err, "register patient")
		return
	}

	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, tokens, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Log, err, "log in")
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates the refresh token taken from the cookie or the body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	tokens, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.Log, err, "refresh token")
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	utils.Success(c, "Token refreshed successfully", RefreshTokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout revokes the caller's refresh token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		var req RefreshTokenRequest
		if c.ShouldBindJSON(&req) == nil {
			token = req.RefreshToken
		}
	}
	if token != "" {
		if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
			respondError(c, h.Log, err, "log out")
			return
		}
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", !h.Cfg.IsDevelopment(), true)
	utils.Success(c, "Logout successful", nil)
}

// ProfileResponse is the caller's account plus their role profile, if any.
type ProfileResponse struct {
	User    models.UserSanitized `json:"user"`
	Doctor  *models.Doctor       `json:"doctor,omitempty"`
	Patient *models.Patient      `json:"patient,omitempty"`
}

// GetProfile returns the authenticated user's account and profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	user, err := h.Auth.User(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err, "load profile")
		return
	}

	resp := ProfileResponse{User: user.Sanitize()}
	switch user.Role {
	case models.RoleDoctor:
		resp.Doctor, err = h.Profiles.DoctorForUser(c.Request.Context(), user.ID)
	case models.RolePatient:
		resp.Patient, err = h.Profiles.PatientForUser(c.Request.Context(), user.ID)
	}
	if err != nil {
		respondError(c, h.Log, err, "load profile")
		return
	}
	utils.Success(c, "Profile retrieved successfully", resp)
}

// UpdateProfileRequest represents the editable fields of a patient's profile.
type UpdateProfileRequest struct {
	FirstName        string     `json:"firstName" binding:"max=100"`
	LastName         string     `json:"lastName" binding:"max=100"`
	PhoneNumber      string     `json:"phoneNumber" binding:"max=30"`
	DateOfBirth      *time.Time `json:"dateOfBirth"`
	Gender           string     `json:"gender" binding:"max=20"`
	Address          string     `json:"address" binding:"max=255"`
	BloodGroup       string     `json:"bloodGroup" binding:"max=5"`
	EmergencyContact string     `json:"emergencyContact" binding:"max=100"`
	Allergies        string     `json:"allergies"`
}

// UpdateProfile lets a patient edit their own profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := middleware.GetPatientFromContext(c)
	updated, err := h.Profiles.UpdatePatient(c.Request.Context(), patient.ID, services.PatientUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Profile: models.Patient{
			DateOfBirth:      req.DateOfBirth,
			Gender:           req.Gender,
			Address:          req.Address,
			BloodGroup:       req.BloodGroup,
			EmergencyContact: req.EmergencyContact,
			Allergies:        req.Allergies,
		},
	})
	if err != nil {
		respondError(c, h.Log, err, "update profile")
		return
	}
	utils.Success(c, "Profile updated successfully", updated)
}

// ForgotPasswordRequest represents the request body for a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword emails a reset link. The response does not reveal whether
// the address is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := h.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.Log, err, "request password reset")
		return
	}
	utils.Success(c, "If the email is registered, a reset link has been sent", nil)
}

// ResetPasswordRequest represents the request body for setting a new password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword sets a new password using a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.Log, err, "reset password")
		return
	}
	utils.Success(c, "Password reset successfully", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(
		refreshCookie,
		token,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		!h.Cfg.IsDevelopment(),
		true,
	)
}
