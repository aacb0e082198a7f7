package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"viewtube/internal/app"
	"viewtube/internal/testsupport"
	"viewtube/internal/transport/http/middleware"
)

type testEnv struct {
	router    *gin.Engine
	users     *testsupport.MemUserStore
	subs      *testsupport.MemSubscriptionStore
	videos    *testsupport.MemVideoStore
	watches   *testsupport.MemWatchEventStore
	publisher *testsupport.StubPublisher
	uploader  *testsupport.StubUploader
	auth      *app.AuthService
}

// envelope mirrors response.APIResponse for decoding.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:     testsupport.NewMemUserStore(),
		subs:      testsupport.NewMemSubscriptionStore(),
		videos:    testsupport.NewMemVideoStore(),
		watches:   testsupport.NewMemWatchEventStore(),
		publisher: &testsupport.StubPublisher{},
		uploader:  &testsupport.StubUploader{},
	}

	env.auth = app.NewAuthService(env.users, env.uploader, "access-secret", 15*time.Minute, "refresh-secret", time.Hour)
	accountService := app.NewAccountService(env.users, env.uploader)
	channelService := app.NewChannelService(env.users, env.subs, env.videos, env.watches, testsupport.NewMemHistoryCache())
	videoService := app.NewVideoService(env.videos, env.uploader, env.publisher, nil)

	authHandler := NewAuthHandler(env.auth, CookieSettings{Secure: true, AccessMaxAge: 900, RefreshMaxAge: 3600})
	accountHandler := NewAccountHandler(accountService)
	channelHandler := NewChannelHandler(channelService)
	videoHandler := NewVideoHandler(videoService)

	guard := middleware.SessionGuard(env.auth)
	optional := middleware.OptionalSession(env.auth)

	router := gin.New()
	v1 := router.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.RefreshToken)
	users.GET("/c/:username", optional, channelHandler.Profile)
	users.POST("/c/:username/subscribe", guard, channelHandler.ToggleSubscription)
	users.POST("/logout", guard, authHandler.Logout)
	users.POST("/change-password", guard, authHandler.ChangePassword)
	users.PATCH("/update-account", guard, accountHandler.UpdateAccount)
	users.PATCH("/avatar", guard, accountHandler.UpdateAvatar)
	users.PATCH("/cover-image", guard, accountHandler.UpdateCoverImage)
	users.GET("/current-user", guard, accountHandler.CurrentUser)
	users.GET("/history", guard, channelHandler.WatchHistory)

	videos := v1.Group("/videos")
	videos.POST("", guard, videoHandler.Publish)
	videos.GET("/:id", optional, videoHandler.Get)

	env.router = router
	return env
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake file bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func registerDefaultUser(t *testing.T, env *testEnv) {
	t.Helper()
	w := env.do(multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Chai Aur Code",
			"email":    "chai@example.com",
			"username": "chaiaurcode",
			"password": "secret-password",
		},
		map[string]string{"avatar": "avatar.png"},
	))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

type loginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func loginDefaultUser(t *testing.T, env *testEnv) loginData {
	t.Helper()
	w := env.do(jsonRequest(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "chaiaurcode",
		"password": "secret-password",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data loginData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	require.NotEmpty(t, data.AccessToken)
	require.NotEmpty(t, data.RefreshToken)
	return data
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
