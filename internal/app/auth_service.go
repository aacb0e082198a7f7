package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"viewtube/internal/model"
	"viewtube/internal/pkg/jwtutil"
	"viewtube/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("user already exists with this email or username")
	ErrUploadFailed = errors.New("media upload failed")
)

// UserStore is the credential-store surface the services need. The
// targeted update methods write single columns and never re-validate
// the rest of the record.
type UserStore interface {
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByIDs(ids []uint) ([]model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByUsernameOrEmail(username, email string) (*model.User, error)
	SetRefreshToken(id uint, token string) error
	ClearRefreshToken(id uint) error
	RotateRefreshToken(id uint, oldToken, newToken string) (bool, error)
	UpdatePasswordHash(id uint, hash string) error
	UpdateProfile(id uint, fields map[string]interface{}) error
	UpdateAvatar(id uint, url string) error
	UpdateCoverImage(id uint, url string) error
}

type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type AuthService struct {
	users         UserStore
	uploader      MediaUploader
	accessSecret  string
	accessExpiry  time.Duration
	refreshSecret string
	refreshExpiry time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User   *model.User
	Tokens TokenPair
}

func NewAuthService(
	users UserStore,
	uploader MediaUploader,
	accessSecret string,
	accessExpiry time.Duration,
	refreshSecret string,
	refreshExpiry time.Duration,
) *AuthService {
	return &AuthService{
		users:         users,
		uploader:      uploader,
		accessSecret:  accessSecret,
		accessExpiry:  accessExpiry,
		refreshSecret: refreshSecret,
		refreshExpiry: refreshExpiry,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	username := strings.TrimSpace(strings.ToLower(input.Username))
	password := strings.TrimSpace(input.Password)

	if fullName == "" || email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if input.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar is required", ErrInvalidInput)
	}

	existing, err := s.users.GetByUsernameOrEmail(username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	avatarURL, err := s.uploader.Upload(ctx, input.AvatarPath)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar: %v", ErrUploadFailed, err)
	}

	// Cover image is optional and a failed upload does not abort
	// registration.
	coverURL := ""
	if input.CoverImagePath != "" {
		if url, coverErr := s.uploader.Upload(ctx, input.CoverImagePath); coverErr == nil {
			coverURL = url
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  string(hash),
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := s.users.Create(user); err != nil {
		// Two concurrent registrations can both pass the pre-check;
		// the unique index decides the winner.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	created, err := s.users.GetByID(user.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("user %d not found after create", user.ID)
	}
	return created, nil
}

func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(strings.ToLower(input.Username))
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if (username == "" && email == "") || password == "" {
		return nil, fmt.Errorf("%w: username or email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByUsernameOrEmail(username, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user with this username or email", ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: password is incorrect", ErrUnauthorized)
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Logout(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	return s.users.ClearRefreshToken(userID)
}

// Rotate validates a presented refresh token and swaps it for a fresh
// pair. The stored-token swap is conditional on the presented value
// still being current, so a raced or replayed token loses.
func (s *AuthService) Rotate(presented string) (*TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrInvalidInput)
	}

	claims, err := jwtutil.ParseToken(s.refreshSecret, presented)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}
	if user.RefreshToken != presented {
		return nil, fmt.Errorf("%w: refresh token is expired or already used", ErrUnauthorized)
	}

	accessToken, err := jwtutil.GenerateToken(s.accessSecret, s.accessExpiry, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := jwtutil.GenerateToken(s.refreshSecret, s.refreshExpiry, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	swapped, err := s.users.RotateRefreshToken(user.ID, presented, refreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, fmt.Errorf("%w: refresh token is expired or already used", ErrUnauthorized)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) VerifyAccess(token string) (uint, error) {
	claims, err := jwtutil.ParseToken(s.accessSecret, token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims.UserID, nil
}

func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	oldPassword = strings.TrimSpace(oldPassword)
	newPassword = strings.TrimSpace(newPassword)
	if userID == 0 || oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user no longer exists", ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: old password is incorrect", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	return s.users.UpdatePasswordHash(userID, string(hash))
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(id)
}

func (s *AuthService) issueTokenPair(user *model.User) (TokenPair, error) {
	accessToken, err := jwtutil.GenerateToken(s.accessSecret, s.accessExpiry, user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := jwtutil.GenerateToken(s.refreshSecret, s.refreshExpiry, user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	// A new login overwrites whatever refresh token was stored before,
	// invalidating the previous session.
	if err := s.users.SetRefreshToken(user.ID, refreshToken); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
