package service

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"ctchen222/Task-Tracker/internal/api/mocks"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTokenServiceForTest(t *testing.T, now time.Time) (*tokenService, *mocks.MockUserRepository, *mocks.MockTokenCache) {
	t.Helper()
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	cache := mocks.NewMockTokenCache(ctrl)
	svc := &tokenService{
		userRepo:      userRepo,
		cache:         cache,
		ttl:           time.Hour,
		refreshMargin: time.Minute,
		now:           func() time.Time { return now },
	}
	return svc, userRepo, cache
}

func userWithToken(token string, expiration time.Time) *models.User {
	return &models.User{
		ID:              1,
		Username:        "ada",
		Token:           sql.NullString{String: token, Valid: true},
		TokenExpiration: sql.NullTime{Time: expiration, Valid: true},
	}
}

func TestIssueOrRefreshReusesValidToken(t *testing.T) {
	now := time.Now().UTC()
	svc, _, _ := newTokenServiceForTest(t, now)

	existing := userWithToken("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", now.Add(30*time.Minute))
	token, expiration, err := svc.IssueOrRefresh(context.Background(), existing)

	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", token)
	assert.Equal(t, existing.TokenExpiration.Time, expiration)
}

func TestIssueOrRefreshIsIdempotentWithinMargin(t *testing.T) {
	now := time.Now().UTC()
	svc, _, _ := newTokenServiceForTest(t, now)

	existing := userWithToken("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", now.Add(30*time.Minute))
	first, _, err := svc.IssueOrRefresh(context.Background(), existing)
	require.NoError(t, err)
	second, _, err := svc.IssueOrRefresh(context.Background(), existing)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIssueOrRefreshRotatesInsideMargin(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	old := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	existing := userWithToken(old, now.Add(30*time.Second))

	userRepo.EXPECT().SetToken(gomock.Any(), int64(1), gomock.Any(), now.Add(time.Hour)).Return(nil)
	cache.EXPECT().Delete(gomock.Any(), old).Return(nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), int64(1), time.Hour).Return(nil)

	token, expiration, err := svc.IssueOrRefresh(context.Background(), existing)

	require.NoError(t, err)
	assert.NotEqual(t, old, token)
	assert.Len(t, token, 32)
	_, decodeErr := hex.DecodeString(token)
	assert.NoError(t, decodeErr)
	assert.Equal(t, now.Add(time.Hour), expiration)
	assert.Equal(t, token, existing.Token.String)
}

func TestIssueOrRefreshIssuesForNewUser(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	user := &models.User{ID: 7, Username: "ada"}
	userRepo.EXPECT().SetToken(gomock.Any(), int64(7), gomock.Any(), now.Add(time.Hour)).Return(nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), int64(7), time.Hour).Return(nil)

	token, expiration, err := svc.IssueOrRefresh(context.Background(), user)

	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Equal(t, now.Add(time.Hour), expiration)
	assert.True(t, user.Token.Valid)
	assert.True(t, user.TokenExpiration.Valid)
}

func TestIssueOrRefreshRetriesOnCollision(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	user := &models.User{ID: 7, Username: "ada"}
	collision := errors.New("constraint failed: UNIQUE constraint failed: users.token")
	gomock.InOrder(
		userRepo.EXPECT().SetToken(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(collision),
		userRepo.EXPECT().SetToken(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(nil),
	)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), int64(7), gomock.Any()).Return(nil)

	token, _, err := svc.IssueOrRefresh(context.Background(), user)

	require.NoError(t, err)
	assert.Len(t, token, 32)
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	svc, _, _ := newTokenServiceForTest(t, time.Now().UTC())

	user, err := svc.Verify(context.Background(), "")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrInvalidToken)
}

func TestVerifyRejectsUnknownToken(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	cache.EXPECT().Get(gomock.Any(), "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb").Return(int64(0), false, nil)
	userRepo.EXPECT().GetByToken(gomock.Any(), "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb").Return(nil, nil)

	user, err := svc.Verify(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	token := "cccccccccccccccccccccccccccccccc"
	holder := userWithToken(token, now.Add(-time.Second))
	cache.EXPECT().Get(gomock.Any(), token).Return(int64(0), false, nil)
	userRepo.EXPECT().GetByToken(gomock.Any(), token).Return(holder, nil)

	user, err := svc.Verify(context.Background(), token)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrInvalidToken)
}

func TestVerifyResolvesUserThroughCache(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	token := "dddddddddddddddddddddddddddddddd"
	holder := userWithToken(token, now.Add(30*time.Minute))
	cache.EXPECT().Get(gomock.Any(), token).Return(int64(1), true, nil)
	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(holder, nil)

	user, err := svc.Verify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestVerifyRejectsStaleCacheEntry(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	// The cache still maps the old token, but the row has rotated on.
	old := "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	holder := userWithToken("ffffffffffffffffffffffffffffffff", now.Add(time.Hour))
	cache.EXPECT().Get(gomock.Any(), old).Return(int64(1), true, nil)
	userRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(holder, nil)

	user, err := svc.Verify(context.Background(), old)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, response.ErrInvalidToken)
}

func TestVerifyFallsBackWhenCacheFails(t *testing.T) {
	now := time.Now().UTC()
	svc, userRepo, cache := newTokenServiceForTest(t, now)

	token := "abcdefabcdefabcdefabcdefabcdefab"
	holder := userWithToken(token, now.Add(30*time.Minute))
	cache.EXPECT().Get(gomock.Any(), token).Return(int64(0), false, errors.New("redis unavailable"))
	userRepo.EXPECT().GetByToken(gomock.Any(), token).Return(holder, nil)
	cache.EXPECT().Set(gomock.Any(), token, int64(1), gomock.Any()).Return(errors.New("redis unavailable"))

	user, err := svc.Verify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}
