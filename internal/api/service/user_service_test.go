package service

import (
	"context"
	"testing"

	"ctchen222/Task-Tracker/internal/api/mocks"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newUserServiceForTest(t *testing.T) (UserService, *mocks.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	return NewUserService(userRepo), userRepo
}

func storedUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := password.Hash("secret1")
	require.NoError(t, err)
	return &models.User{
		ID:           1,
		FullName:     "Ada Lovelace",
		Username:     "ada",
		Email:        "ada@x.com",
		PasswordHash: hash,
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "ada").Return(nil, nil)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@x.com").Return(nil, nil)
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user *models.User) error {
			user.ID = 1
			return nil
		})

	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		FullName: "Ada Lovelace",
		Username: "ada",
		Email:    "ada@x.com",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, password.Verify("secret1", user.PasswordHash))
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "ada").Return(storedUser(t), nil)

	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		FullName: "Other Ada",
		Username: "ada",
		Email:    "other@x.com",
		Password: "secret1",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "ada2").Return(nil, nil)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "ada@x.com").Return(storedUser(t), nil)

	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		FullName: "Ada Again",
		Username: "ada2",
		Email:    "ada@x.com",
		Password: "secret1",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestAuthenticateSucceedsWithCorrectPassword(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "ada").Return(storedUser(t), nil)

	user, err := svc.Authenticate(context.Background(), "ada", "secret1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "ada").Return(storedUser(t), nil)

	user, err := svc.Authenticate(context.Background(), "ada", "wrong")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrInvalidCredentials)
}

func TestAuthenticateRejectsUnknownUserIdentically(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "nobody").Return(nil, nil)

	user, err := svc.Authenticate(context.Background(), "nobody", "secret1")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrInvalidCredentials)
}

func TestUpdateReturnsNotFoundBeforeOwnership(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByID(gomock.Any(), int64(42)).Return(nil, nil)

	actor := &models.User{ID: 1}
	user, err := svc.Update(context.Background(), actor, 42, &models.UpdateUserRequest{})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestUpdateRejectsOtherUsersProfile(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(storedUser(t), nil)

	actor := &models.User{ID: 2}
	user, err := svc.Update(context.Background(), actor, 1, &models.UpdateUserRequest{})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	existing := storedUser(t)
	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(existing, nil)
	userRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	newPassword := "secret2"
	actor := &models.User{ID: 1}
	user, err := svc.Update(context.Background(), actor, 1, &models.UpdateUserRequest{Password: &newPassword})

	require.NoError(t, err)
	assert.True(t, password.Verify("secret2", user.PasswordHash))
	assert.False(t, password.Verify("secret1", user.PasswordHash))
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	existing := storedUser(t)
	other := &models.User{ID: 2, Email: "taken@x.com"}
	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(existing, nil)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "taken@x.com").Return(other, nil)

	email := "taken@x.com"
	actor := &models.User{ID: 1}
	user, err := svc.Update(context.Background(), actor, 1, &models.UpdateUserRequest{Email: &email})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestDeleteIsSelfServiceOnly(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(storedUser(t), nil)

	actor := &models.User{ID: 2}
	user, err := svc.Delete(context.Background(), actor, 1)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestDeleteRemovesOwnAccount(t *testing.T) {
	svc, userRepo := newUserServiceForTest(t)

	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(storedUser(t), nil)
	userRepo.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)

	actor := &models.User{ID: 1}
	user, err := svc.Delete(context.Background(), actor, 1)

	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
}
