package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/permissions"
	"github.com/yukikurage/crm-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUsernameRequired     = errors.New("username is required")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication, profiles and capability lookup.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// CreateUserInput represents the required information to create a new user.
type CreateUserInput struct {
	Username    string
	Password    string
	IsSuperuser bool
}

// CreateUser creates a new user with a hashed password.
func (s *AuthService) CreateUser(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsSuperuser:  input.IsSuperuser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Capabilities returns what the user may do. Superusers hold everything.
func (s *AuthService) Capabilities(userID uint64) (permissions.Set, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return permissions.Set{}, err
	}
	if user.IsSuperuser {
		return permissions.SuperuserSet(), nil
	}

	names, err := s.userRepo.ListCapabilities(userID)
	if err != nil {
		return permissions.Set{}, fmt.Errorf("failed to list capabilities: %w", err)
	}

	caps := make([]permissions.Capability, 0, len(names))
	for _, name := range names {
		c, err := permissions.Parse(name)
		if err != nil {
			log.Warn().Uint64("user_id", userID).Str("capability", name).Msg("Ignoring unknown stored capability")
			continue
		}
		caps = append(caps, c)
	}

	return permissions.NewSet(caps...), nil
}

// ProfileInput is the self-editable part of a user.
type ProfileInput struct {
	FirstName string  `json:"first_name" validate:"max=150"`
	LastName  string  `json:"last_name" validate:"max=150"`
	Email     string  `json:"email" validate:"omitempty,email,max=254"`
	Photo     string  `json:"photo" validate:"max=255"`
	Bio       string  `json:"bio"`
	Password  *string `json:"password"`
}

// UpdateProfile saves the acting user's own profile. A submitted password is
// hashed unless it already is a bcrypt hash.
func (s *AuthService) UpdateProfile(userID uint64, input ProfileInput) (*models.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)

	errs := forms.Struct(input)

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.Password != nil && *input.Password != "" {
		password := *input.Password
		if isPasswordHash(password) {
			user.PasswordHash = password
		} else if len(password) < constants.MinPasswordLength {
			errs.Add("password", fmt.Sprintf("Ensure this value has at least %d characters.", constants.MinPasswordLength))
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return nil, ErrFailedToHashPassword
			}
			user.PasswordHash = string(hashed)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = input.Email
	user.Photo = input.Photo
	user.Bio = input.Bio

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func isPasswordHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Grant gives capabilities to the named user.
func (s *AuthService) Grant(username string, capabilities []string) error {
	user, names, err := s.resolveGrant(username, capabilities)
	if err != nil {
		return err
	}
	return s.userRepo.Grant(user.ID, names)
}

// Revoke takes capabilities away from the named user.
func (s *AuthService) Revoke(username string, capabilities []string) error {
	user, names, err := s.resolveGrant(username, capabilities)
	if err != nil {
		return err
	}
	return s.userRepo.Revoke(user.ID, names)
}

func (s *AuthService) resolveGrant(username string, capabilities []string) (*models.User, []string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	names := make([]string, 0, len(capabilities))
	for _, raw := range capabilities {
		c, err := permissions.Parse(raw)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, c.String())
	}

	return user, names, nil
}
