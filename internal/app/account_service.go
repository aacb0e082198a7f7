package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"viewtube/internal/model"
	"viewtube/internal/repository"
)

type AccountService struct {
	users    UserStore
	uploader MediaUploader
}

type UpdateProfileInput struct {
	UserID   uint
	FullName string
	Email    string
}

func NewAccountService(users UserStore, uploader MediaUploader) *AccountService {
	return &AccountService{users: users, uploader: uploader}
}

func (s *AccountService) UpdateProfile(input UpdateProfileInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if input.UserID == 0 || (fullName == "" && email == "") {
		return nil, fmt.Errorf("%w: full name or email is required", ErrInvalidInput)
	}

	fields := map[string]interface{}{}
	if fullName != "" {
		fields["full_name"] = fullName
	}
	if email != "" {
		fields["email"] = email
	}

	if err := s.users.UpdateProfile(input.UserID, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return s.refetch(input.UserID)
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*model.User, error) {
	if userID == 0 || localPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", ErrInvalidInput)
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar: %v", ErrUploadFailed, err)
	}
	if err := s.users.UpdateAvatar(userID, url); err != nil {
		return nil, err
	}
	return s.refetch(userID)
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*model.User, error) {
	if userID == 0 || localPath == "" {
		return nil, fmt.Errorf("%w: cover image file is required", ErrInvalidInput)
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cover image: %v", ErrUploadFailed, err)
	}
	if err := s.users.UpdateCoverImage(userID, url); err != nil {
		return nil, err
	}
	return s.refetch(userID)
}

func (s *AccountService) refetch(userID uint) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrNotFound)
	}
	return user, nil
}
