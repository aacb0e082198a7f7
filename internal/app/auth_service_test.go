package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"viewtube/internal/model"
	"viewtube/internal/testsupport"
)

func newAuthService(users UserStore, uploader MediaUploader) *AuthService {
	return NewAuthService(users, uploader, "access-secret", 15*time.Minute, "refresh-secret", time.Hour)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName:   "Chai Aur Code",
		Email:      "chai@example.com",
		Username:   "ChaiAurCode",
		Password:   "secret-password",
		AvatarPath: "/tmp/avatar.png",
	}
}

func registerUser(t *testing.T, s *AuthService) *model.User {
	t.Helper()
	user, err := s.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	return user
}

func TestRegisterSuccess(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})

	user, err := s.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.Equal(t, "chaiaurcode", user.Username, "username must be lower-cased")
	assert.Equal(t, "chai@example.com", user.Email)
	assert.NotEmpty(t, user.AvatarURL)
	assert.NotEqual(t, "secret-password", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-password")))
}

func TestRegisterMissingFields(t *testing.T) {
	s := newAuthService(testsupport.NewMemUserStore(), &testsupport.StubUploader{})

	for _, mutate := range []func(*RegisterInput){
		func(in *RegisterInput) { in.FullName = "  " },
		func(in *RegisterInput) { in.Email = "" },
		func(in *RegisterInput) { in.Username = "" },
		func(in *RegisterInput) { in.Password = "" },
	} {
		input := validRegisterInput()
		mutate(&input)
		_, err := s.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestRegisterMissingAvatar(t *testing.T) {
	s := newAuthService(testsupport.NewMemUserStore(), &testsupport.StubUploader{})

	input := validRegisterInput()
	input.AvatarPath = ""
	_, err := s.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterDuplicate(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	registerUser(t, s)

	sameUsername := validRegisterInput()
	sameUsername.Email = "other@example.com"
	_, err := s.Register(context.Background(), sameUsername)
	assert.ErrorIs(t, err, ErrConflict)

	sameEmail := validRegisterInput()
	sameEmail.Username = "someoneelse"
	_, err = s.Register(context.Background(), sameEmail)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterAvatarUploadFails(t *testing.T) {
	s := newAuthService(testsupport.NewMemUserStore(), &testsupport.StubUploader{Err: testsupport.ErrUploadBroken})

	_, err := s.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	registerUser(t, s)

	byUsername, err := s.Login(LoginInput{Username: "chaiaurcode", Password: "secret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, byUsername.Tokens.AccessToken)
	assert.NotEmpty(t, byUsername.Tokens.RefreshToken)

	byEmail, err := s.Login(LoginInput{Email: "chai@example.com", Password: "secret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Tokens.RefreshToken)

	// The second login's refresh token replaced the first one.
	stored, err := users.GetByID(byEmail.User.ID)
	require.NoError(t, err)
	assert.Equal(t, byEmail.Tokens.RefreshToken, stored.RefreshToken)
	assert.NotEqual(t, byUsername.Tokens.RefreshToken, stored.RefreshToken)
}

func TestLoginFailures(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	registerUser(t, s)

	_, err := s.Login(LoginInput{Password: "secret-password"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Login(LoginInput{Username: "chaiaurcode"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Login(LoginInput{Username: "nobody", Password: "secret-password"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Login(LoginInput{Username: "chaiaurcode", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRotateIssuesFreshPairAndDetectsReuse(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	registerUser(t, s)

	login, err := s.Login(LoginInput{Username: "chaiaurcode", Password: "secret-password"})
	require.NoError(t, err)
	firstRefresh := login.Tokens.RefreshToken

	rotated, err := s.Rotate(firstRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, firstRefresh, rotated.RefreshToken)

	// Replaying the superseded token must fail.
	_, err = s.Rotate(firstRefresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The rotated-in token still works.
	_, err = s.Rotate(rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRotateRejectsGarbage(t *testing.T) {
	s := newAuthService(testsupport.NewMemUserStore(), &testsupport.StubUploader{})

	_, err := s.Rotate("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Rotate("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	registerUser(t, s)

	login, err := s.Login(LoginInput{Username: "chaiaurcode", Password: "secret-password"})
	require.NoError(t, err)

	require.NoError(t, s.Logout(login.User.ID))

	_, err = s.Rotate(login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	user := registerUser(t, s)

	before, err := users.GetByID(user.ID)
	require.NoError(t, err)

	err = s.ChangePassword(user.ID, "wrong-password", "new-password")
	assert.ErrorIs(t, err, ErrUnauthorized)

	after, err := users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash, "failed change must not touch the hash")

	require.NoError(t, s.ChangePassword(user.ID, "secret-password", "new-password"))

	_, err = s.Login(LoginInput{Username: "chaiaurcode", Password: "secret-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Login(LoginInput{Username: "chaiaurcode", Password: "new-password"})
	assert.NoError(t, err)
}

func TestChangePasswordValidation(t *testing.T) {
	s := newAuthService(testsupport.NewMemUserStore(), &testsupport.StubUploader{})

	assert.ErrorIs(t, s.ChangePassword(1, "", "new"), ErrInvalidInput)
	assert.ErrorIs(t, s.ChangePassword(1, "old", ""), ErrInvalidInput)
	assert.ErrorIs(t, s.ChangePassword(99, "old", "new"), ErrNotFound)
}

func TestVerifyAccess(t *testing.T) {
	users := testsupport.NewMemUserStore()
	s := newAuthService(users, &testsupport.StubUploader{})
	registerUser(t, s)

	login, err := s.Login(LoginInput{Username: "chaiaurcode", Password: "secret-password"})
	require.NoError(t, err)

	userID, err := s.VerifyAccess(login.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, userID)

	_, err = s.VerifyAccess("bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// A refresh token is not an access token.
	_, err = s.VerifyAccess(login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
