package services

import (
	"testing"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/config"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	activity := NewActivityService(repositories.NewActivityLogRepository(db))
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		activity,
		config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  30,
			RefreshTokenDays: 7,
		},
	)
}

func TestLoginSuccess(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newAuthService(db)
	loggedIn, pair, err := svc.Login(testCtx, "sales1", "sales1123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// refresh token hash persisted, plaintext never stored
	var stored models.RefreshToken
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, password.HashToken(pair.RefreshToken), stored.TokenHash)
	assert.NotEqual(t, pair.RefreshToken, stored.TokenHash)

	assert.Equal(t, int64(1), countLogs(t, db, models.ActionLogin))
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newAuthService(db)
	_, _, err := svc.Login(testCtx, "sales1", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(testCtx, "nobody", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// no session, no audit entry
	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, int64(0), countLogs(t, db, models.ActionLogin))
}

func TestLoginInactiveUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sales1", "SL1", models.RoleSales)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	svc := newAuthService(db)
	_, _, err := svc.Login(testCtx, "sales1", "sales1123456")
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newAuthService(db)
	_, pair, err := svc.Login(testCtx, "sales1", "sales1123456")
	require.NoError(t, err)

	_, newPair, err := svc.Refresh(testCtx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// the old token is now revoked
	var old models.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", password.HashToken(pair.RefreshToken)).First(&old).Error)
	assert.True(t, old.IsRevoked())
}

func TestRefreshReuseRevokesAllSessions(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newAuthService(db)
	_, pair, err := svc.Login(testCtx, "sales1", "sales1123456")
	require.NoError(t, err)

	_, _, err = svc.Refresh(testCtx, pair.RefreshToken)
	require.NoError(t, err)

	// replaying the already-rotated token is treated as theft
	_, _, err = svc.Refresh(testCtx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	var active int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL").Count(&active).Error)
	assert.Equal(t, int64(0), active)
}

func TestLogoutRevokesSession(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newAuthService(db)
	_, pair, err := svc.Login(testCtx, "sales1", "sales1123456")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(testCtx, actorFor(user), pair.RefreshToken))

	_, _, err = svc.Refresh(testCtx, pair.RefreshToken)
	assert.Error(t, err)
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionLogout))
}
