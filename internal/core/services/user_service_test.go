package services

import (
	"testing"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	activity := NewActivityService(repositories.NewActivityLogRepository(db))
	return NewUserService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		activity,
	)
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	svc := newUserService(db)

	user, err := svc.Create(testCtx, actorFor(admin), CreateUserInput{
		Username:  "sales2",
		FullName:  "Sales Two",
		ShortName: "sl2",
		Password:  "longenough",
		Role:      models.RoleSales,
	})
	require.NoError(t, err)
	assert.Equal(t, "SL2", user.ShortName)
	assert.True(t, user.IsActive)
	assert.True(t, password.Verify("longenough", user.Password))
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionAddUser))

	// duplicate username
	_, err = svc.Create(testCtx, actorFor(admin), CreateUserInput{
		Username: "sales2", FullName: "X", ShortName: "SX", Password: "longenough", Role: models.RoleSales,
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// weak password
	_, err = svc.Create(testCtx, actorFor(admin), CreateUserInput{
		Username: "sales3", FullName: "X", ShortName: "SX", Password: "short", Role: models.RoleSales,
	})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	// unknown role
	_, err = svc.Create(testCtx, actorFor(admin), CreateUserInput{
		Username: "sales3", FullName: "X", ShortName: "SX", Password: "longenough", Role: "Boss",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateUserOwnRoleGuard(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	other := createTestUser(t, db, "sales1", "SL1", models.RoleSales)
	svc := newUserService(db)

	role := models.RoleSales
	_, err := svc.Update(testCtx, actorFor(admin), admin.ID, UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, domain.ErrCannotChangeOwnRole)

	// promoting someone else works
	promote := models.RoleCommercial
	updated, err := svc.Update(testCtx, actorFor(admin), other.ID, UpdateUserInput{Role: &promote})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCommercial, updated.Role)
}

func TestDeleteUserSelfGuard(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	other := createTestUser(t, db, "sales1", "SL1", models.RoleSales)
	svc := newUserService(db)

	err := svc.Delete(testCtx, actorFor(admin), admin.ID)
	assert.ErrorIs(t, err, domain.ErrCannotDeleteSelf)

	require.NoError(t, svc.Delete(testCtx, actorFor(admin), other.ID))
	_, err = svc.GetByID(testCtx, other.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeactivateRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	auth := newAuthService(db)
	_, _, err := auth.Login(testCtx, "sales1", "sales1123456")
	require.NoError(t, err)

	svc := newUserService(db)
	_, err = svc.SetActive(testCtx, actorFor(admin), sales.ID, false)
	require.NoError(t, err)

	var active int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL").Count(&active).Error)
	assert.Equal(t, int64(0), active)

	// self-deactivation refused
	_, err = svc.SetActive(testCtx, actorFor(admin), admin.ID, false)
	assert.ErrorIs(t, err, domain.ErrCannotDisableSelf)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)
	svc := newUserService(db)

	err := svc.ChangePassword(testCtx, actorFor(sales), "wrong", "newpassword1")
	assert.ErrorIs(t, err, domain.ErrWrongCurrentPassword)

	err = svc.ChangePassword(testCtx, actorFor(sales), "sales1123456", "short")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(testCtx, actorFor(sales), "sales1123456", "newpassword1"))

	updated, err := svc.GetByID(testCtx, sales.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("newpassword1", updated.Password))
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionChangePassword))
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)
	svc := newUserService(db)

	require.NoError(t, svc.ResetPassword(testCtx, actorFor(admin), sales.ID, "brandnewpass"))

	updated, err := svc.GetByID(testCtx, sales.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("brandnewpass", updated.Password))
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionResetPassword))
}
