package repositories

import (
	"context"
	"errors"

	"sdi-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the singleton settings row, creating it with defaults on
// first access so callers never see a missing row
func (r *settingsRepository) Get(ctx context.Context) (*models.AppSettings, error) {
	var settings models.AppSettings
	err := r.db.WithContext(ctx).First(&settings, models.SettingsRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = models.AppSettings{
				ID:             models.SettingsRowID,
				CutoffEnabled:  false,
				CutoffStart:    "10:00",
				CutoffEnd:      "15:00",
				AutoDeleteDays: 14,
			}
			if createErr := r.db.WithContext(ctx).Create(&settings).Error; createErr != nil {
				return nil, createErr
			}
			return &settings, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.AppSettings) error {
	settings.ID = models.SettingsRowID
	return r.db.WithContext(ctx).Save(settings).Error
}
