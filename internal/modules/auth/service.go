package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"picshare/internal/domain"
	"picshare/internal/repository"
)

type jwtService interface {
	GenerateToken(userID int64, username string) (string, error)
}

// Service contains all business logic for registration, login and profile
// updates. The plaintext password never leaves this package and is never
// stored or logged.
type Service struct {
	users UserRepositoryInterface
	jwt   jwtService
}

func NewService(users UserRepositoryInterface, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates a new account and issues a session token. The existence
// pre-check gives a friendly error on the common path; the unique index
// behind repository.ErrDuplicateKey is what closes the race between two
// concurrent registrations of the same name.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error) {
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown usernames and bad
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpdateProfile renames a user. No new token is issued; the caller keeps
// using the one it has and refreshes its cached identity from the response.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	newUsername := strings.TrimSpace(req.Username)
	if newUsername == user.Username {
		return user, nil
	}

	exists, err := s.users.ExistsByUsername(ctx, newUsername)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	if err := s.users.UpdateUsername(ctx, userID, newUsername); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrUsernameTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Username = newUsername
	return user, nil
}
