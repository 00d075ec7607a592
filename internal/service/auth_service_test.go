package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/strawhatacademy/academy-api/internal/models"
	appErrors "github.com/strawhatacademy/academy-api/pkg/errors"
)

type mockUserRepo struct {
	users          map[string]*models.User
	nextID         int64
	findErr        error
	registerErr    error
	registeredWith string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) Register(ctx context.Context, user *models.User, passwordHash string) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	user.ID = m.nextID
	m.nextID++
	user.PasswordHash = passwordHash
	user.RegistrationDate = time.Now().UTC()
	m.registeredWith = passwordHash
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func newAuthService(repo authUserRepository) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "academy-api",
	})
}

func TestAuthServiceRegisterThenLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "nami",
		Password:  "weather123",
		Role:      "teacher",
		FirstName: "Nami",
		LastName:  "Navigator",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.NotEqual(t, "weather123", repo.registeredWith)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "nami", Password: "weather123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleTeacher, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthServiceLoginUnknownUsername(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	repo := newMockUserRepo()
	repo.users["luffy"] = &models.User{ID: 2, Username: "luffy", PasswordHash: string(hash), Role: models.RoleStudent}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "luffy", Password: "wrong"})
	require.Error(t, err)
	// Same outcome as an unknown username, nothing leaks about which part failed.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStoreUnavailable(t *testing.T) {
	repo := newMockUserRepo()
	repo.findErr = driver.ErrBadConn
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "luffy", Password: "pw1234"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErr.Code)
	assert.NotEqual(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["nami"] = &models.User{ID: 1, Username: "nami", Role: models.RoleTeacher}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "nami",
		Password:  "weather123",
		Role:      "TEACHER",
		FirstName: "Nami",
		LastName:  "Navigator",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterUnknownRole(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "buggy",
		Password:  "clown123",
		Role:      "CLOWN",
		FirstName: "Buggy",
		LastName:  "Clown",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterStoreUnavailable(t *testing.T) {
	repo := newMockUserRepo()
	repo.registerErr = driver.ErrBadConn
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "franky",
		Password:  "superrr",
		Role:      "STUDENT",
		FirstName: "Franky",
		LastName:  "Shipwright",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
