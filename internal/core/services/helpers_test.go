package services

import (
	"context"
	"testing"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/password"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory DB
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, shortName, role string) *models.User {
	t.Helper()

	hashed, err := password.Hash(username + "123456")
	require.NoError(t, err)

	user := &models.User{
		Username:  username,
		FullName:  "Test " + username,
		ShortName: shortName,
		Password:  hashed,
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func actorFor(user *models.User) domain.Actor {
	return domain.Actor{
		ID:        user.ID,
		Username:  user.Username,
		ShortName: user.ShortName,
		Role:      domain.Role(user.Role),
	}
}

func createTestSettings(t *testing.T, db *gorm.DB, mutate func(*models.AppSettings)) *models.AppSettings {
	t.Helper()

	settings := &models.AppSettings{
		ID:             models.SettingsRowID,
		CutoffEnabled:  false,
		CutoffStart:    "10:00",
		CutoffEnd:      "15:00",
		AutoDeleteDays: 14,
	}
	if mutate != nil {
		mutate(settings)
	}
	require.NoError(t, db.Create(settings).Error)
	return settings
}

func newInstructionService(db *gorm.DB) *InstructionService {
	activity := NewActivityService(repositories.NewActivityLogRepository(db))
	return NewInstructionService(
		db,
		repositories.NewInstructionRepository(db),
		repositories.NewCustomerCodeRepository(db),
		repositories.NewSettingsRepository(db),
		activity,
	)
}

func countLogs(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

var testCtx = context.Background()
