package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viewtube/internal/app"
	"viewtube/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	cookies     CookieSettings
}

// CookieSettings controls the session cookies set on login/refresh.
type CookieSettings struct {
	Secure        bool
	AccessMaxAge  int
	RefreshMaxAge int
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

func (h *AuthHandler) Register(c *gin.Context) {
	input := app.RegisterInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar is required")
		return
	}
	avatarPath, avatarCleanup, err := saveTempFile(c, avatar)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "store uploaded avatar failed")
		return
	}
	defer avatarCleanup()
	input.AvatarPath = avatarPath

	if cover, coverErr := c.FormFile("coverImages"); coverErr == nil {
		coverPath, coverCleanup, saveErr := saveTempFile(c, cover)
		if saveErr == nil {
			defer coverCleanup()
			input.CoverImagePath = coverPath
		}
	}

	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "register failed")
		return
	}

	response.OK(c, http.StatusCreated, "user registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "login failed")
		return
	}

	h.setSessionCookies(c, result.Tokens)
	response.OK(c, http.StatusOK, "user logged in successfully", gin.H{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	if err := h.authService.Logout(user.ID); err != nil {
		respondServiceError(c, err, "logout failed")
		return
	}

	h.clearSessionCookies(c)
	response.OK(c, http.StatusOK, "user logged out successfully", gin.H{})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, _ := c.Cookie("refreshToken")
	if presented == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		response.Error(c, http.StatusBadRequest, "refresh token is required")
		return
	}

	tokens, err := h.authService.Rotate(presented)
	if err != nil {
		respondServiceError(c, err, "refresh token failed")
		return
	}

	h.setSessionCookies(c, *tokens)
	response.OK(c, http.StatusOK, "access token refreshed", tokens)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "old and new password are required")
		return
	}

	if err := h.authService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "change password failed")
		return
	}

	response.OK(c, http.StatusOK, "password changed successfully", gin.H{})
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, tokens app.TokenPair) {
	c.SetCookie("accessToken", tokens.AccessToken, h.cookies.AccessMaxAge, "/", "", h.cookies.Secure, true)
	c.SetCookie("refreshToken", tokens.RefreshToken, h.cookies.RefreshMaxAge, "/", "", h.cookies.Secure, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie("accessToken", "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie("refreshToken", "", -1, "/", "", h.cookies.Secure, true)
}
