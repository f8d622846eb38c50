package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/service"
	"github.com/roamio-app/roamio-backend/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	g := e.Group("/api/v1/auth")
	g.POST("/register", handler.register)
	g.POST("/login", handler.login)
	g.POST("/google", handler.loginWithGoogle)
	g.POST("/verify-email", handler.verifyEmail)
	g.POST("/resend-verification", handler.resendVerification)
	g.POST("/forgot-password", handler.forgotPassword)
	g.POST("/reset-password", handler.resetPassword)
}

// register handles POST /api/v1/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to register"))
		}
	}
	return c.JSON(http.StatusCreated, util.Data("user", toUserResponse(user)))
}

// login handles POST /api/v1/auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to login"))
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// loginWithGoogle handles POST /api/v1/auth/google
func (h *AuthHandler) loginWithGoogle(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to login"))
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// verifyEmail handles POST /api/v1/auth/verify-email
func (h *AuthHandler) verifyEmail(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.VerifyEmail(c.Request().Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrInvalidOTP):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to verify email"))
		}
	}
	return c.JSON(http.StatusOK, util.Success())
}

// resendVerification handles POST /api/v1/auth/resend-verification
func (h *AuthHandler) resendVerification(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to send verification email"))
	}
	return c.JSON(http.StatusOK, util.Success())
}

// forgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to send reset email"))
	}
	return c.JSON(http.StatusOK, util.Success())
}

// resetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrInvalidOTP), errors.Is(err, service.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to reset password"))
		}
	}
	return c.JSON(http.StatusOK, util.Success())
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Nickname  string  `json:"nickname"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Verified  bool    `json:"verified"`
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Nickname:  user.Nickname,
		Role:      string(user.Role),
		AvatarURL: user.AvatarURL,
		Verified:  user.Verified,
	}
}

func toAuthResponse(result *service.AuthResult) util.Envelope {
	return util.Envelope{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       toUserResponse(result.User),
	}
}
