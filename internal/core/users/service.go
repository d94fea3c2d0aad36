package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
)

// Letters, digits and @/./+/-/_ only
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

type userService struct {
	userRepo UserRepository
	hashCost int
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register validates the request, hashes the password and stores the user
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     req.Username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// Authenticate checks a username/password pair
func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key
func (s *userService) GetUserByID(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, ErrUserNotFound
	}
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByUsername retrieves a user by username
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *userService) validateRegisterRequest(req RegisterRequest) error {
	if req.Username == "" {
		return NewValidationError("username", "username is required")
	}
	if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		return NewValidationError("username", fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	if !usernameRegex.MatchString(req.Username) {
		return NewValidationError("username", "username may contain only letters, digits and @/./+/-/_")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(req.Password) > maxPasswordBytes {
		return NewValidationError("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}
