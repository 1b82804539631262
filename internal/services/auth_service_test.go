package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/permissions"
	"github.com/yukikurage/crm-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthService(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()
	db := setupServiceDB(t)
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo), userRepo
}

func TestAuthService_CreateUserAndLogin(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.CreateUser(CreateUserInput{Username: "alice", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	user, err := svc.CreateUser(CreateUserInput{Username: " alice ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.CreateUser(CreateUserInput{Username: "alice", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Login(LoginInput{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginInput{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := svc.Login(LoginInput{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestAuthService_Capabilities(t *testing.T) {
	svc, userRepo := setupAuthService(t)

	user, err := svc.CreateUser(CreateUserInput{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Grant("alice", []string{"management.view_interaction", "company.add_project"}))
	require.NoError(t, userRepo.Grant(user.ID, []string{"legacy.unknown"}))

	set, err := svc.Capabilities(user.ID)
	require.NoError(t, err)
	assert.True(t, set.Has(permissions.ViewInteraction, permissions.AddProject))
	assert.False(t, set.Has(permissions.ChangeInteraction))
	assert.Equal(t, []string{"company.add_project", "management.view_interaction"}, set.Strings())

	assert.ErrorIs(t, svc.Grant("alice", []string{"company.fly_company"}), permissions.ErrUnknownCapability)
	assert.ErrorIs(t, svc.Grant("nobody", []string{"company.add_company"}), ErrUserNotFound)

	require.NoError(t, svc.Revoke("alice", []string{"company.add_project"}))
	set, err = svc.Capabilities(user.ID)
	require.NoError(t, err)
	assert.False(t, set.Has(permissions.AddProject))

	admin, err := svc.CreateUser(CreateUserInput{Username: "root", Password: "password123", IsSuperuser: true})
	require.NoError(t, err)
	set, err = svc.Capabilities(admin.ID)
	require.NoError(t, err)
	assert.True(t, set.Has(permissions.All()...))
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _ := setupAuthService(t)

	user, err := svc.CreateUser(CreateUserInput{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	newPassword := "another-secret"
	updated, err := svc.UpdateProfile(user.ID, ProfileInput{
		FirstName: " Alice ",
		Bio:       "Account manager",
		Password:  &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(newPassword)))

	// an already hashed password is stored as submitted
	hashed := updated.PasswordHash
	again, err := svc.UpdateProfile(user.ID, ProfileInput{Password: &hashed})
	require.NoError(t, err)
	assert.Equal(t, hashed, again.PasswordHash)

	_, err = svc.Login(LoginInput{Username: "alice", Password: newPassword})
	require.NoError(t, err)

	short := "abc"
	_, err = svc.UpdateProfile(user.ID, ProfileInput{Email: "not-an-email", Password: &short})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}
