package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Chai Aur Code",
			"email":    "chai@example.com",
			"username": "ChaiAurCode",
			"password": "secret-password",
		},
		map[string]string{"avatar": "avatar.png", "coverImages": "cover.png"},
	))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"username":"chaiaurcode"`)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "refresh_token")
	assert.Contains(t, body, "cover_image_url")
}

func TestRegisterEndpointMissingAvatar(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Chai Aur Code",
			"email":    "chai@example.com",
			"username": "chaiaurcode",
			"password": "secret-password",
		},
		nil,
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpointMissingField(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Chai Aur Code",
			"email":    "chai@example.com",
			"username": "chaiaurcode",
		},
		map[string]string{"avatar": "avatar.png"},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)

	w := env.do(multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Someone Else",
			"email":    "else@example.com",
			"username": "chaiaurcode",
			"password": "other-password",
		},
		map[string]string{"avatar": "avatar.png"},
	))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpointSetsCookies(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)

	w := env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"email":    "chai@example.com",
		"password": "secret-password",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Header().Values("Set-Cookie")
	joined := strings.Join(cookies, "\n")
	assert.Contains(t, joined, "accessToken=")
	assert.Contains(t, joined, "refreshToken=")
	assert.Contains(t, joined, "HttpOnly")
	assert.Contains(t, joined, "Secure")

	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestLoginEndpointFailures(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)

	w := env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "chaiaurcode",
		"password": "wrong-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "nobody",
		"password": "secret-password",
	}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "chaiaurcode",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshEndpointRotatesAndDetectsReuse(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)
	tokens := loginDefaultUser(t, env)

	// First refresh via request body.
	w := env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{
		"refresh_token": tokens.RefreshToken,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Replaying the superseded token must be rejected.
	w = env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{
		"refresh_token": tokens.RefreshToken,
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpointReadsCookie(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)
	tokens := loginDefaultUser(t, env)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: tokens.RefreshToken})
	w := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRefreshEndpointMissingToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutEndpointInvalidatesRefresh(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)
	tokens := loginDefaultUser(t, env)

	w := env.do(withBearer(jsonRequest(t, http.MethodPost, "/api/v1/users/logout", nil), tokens.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := strings.Join(w.Header().Values("Set-Cookie"), "\n")
	assert.Contains(t, cookies, "accessToken=;")

	// The pre-logout refresh token is dead.
	w = env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{
		"refresh_token": tokens.RefreshToken,
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndpointRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)
	tokens := loginDefaultUser(t, env)

	w := env.do(withBearer(jsonRequest(t, http.MethodPost, "/api/v1/users/change-password", gin.H{
		"old_password": "wrong-password",
		"new_password": "brand-new-password",
	}), tokens.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(withBearer(jsonRequest(t, http.MethodPost, "/api/v1/users/change-password", gin.H{
		"old_password": "secret-password",
		"new_password": "brand-new-password",
	}), tokens.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password is rejected, the new one logs in.
	w = env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "chaiaurcode",
		"password": "secret-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "chaiaurcode",
		"password": "brand-new-password",
	}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionGuardAcceptsCookie(t *testing.T) {
	env := newTestEnv(t)
	registerDefaultUser(t, env)
	tokens := loginDefaultUser(t, env)

	req := jsonRequest(t, http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: tokens.AccessToken})
	w := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSessionGuardRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(withBearer(jsonRequest(t, http.MethodGet, "/api/v1/users/current-user", nil), "garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
