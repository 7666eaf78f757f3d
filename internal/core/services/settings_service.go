package services

import (
	"context"
	"fmt"
	"time"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
)

// SettingsService manages the singleton settings row, backups and the
// retention sweep
type SettingsService struct {
	settingsRepo    repositories.SettingsRepository
	userRepo        repositories.UserRepository
	codeRepo        repositories.CustomerCodeRepository
	instructionRepo repositories.InstructionRepository
	activityRepo    repositories.ActivityLogRepository
	activity        *ActivityService
	now             func() time.Time
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	settingsRepo repositories.SettingsRepository,
	userRepo repositories.UserRepository,
	codeRepo repositories.CustomerCodeRepository,
	instructionRepo repositories.InstructionRepository,
	activityRepo repositories.ActivityLogRepository,
	activity *ActivityService,
) *SettingsService {
	return &SettingsService{
		settingsRepo:    settingsRepo,
		userRepo:        userRepo,
		codeRepo:        codeRepo,
		instructionRepo: instructionRepo,
		activityRepo:    activityRepo,
		activity:        activity,
		now:             time.Now,
	}
}

// Get returns the current settings
func (s *SettingsService) Get(ctx context.Context) (*models.AppSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettingsInput holds the editable settings fields
type UpdateSettingsInput struct {
	CutoffEnabled  *bool   `json:"cutoff_enabled"`
	CutoffStart    *string `json:"cutoff_start"`
	CutoffEnd      *string `json:"cutoff_end"`
	AutoDeleteDays *int    `json:"auto_delete_days"`
}

// Update applies settings changes
func (s *SettingsService) Update(ctx context.Context, actor domain.Actor, input UpdateSettingsInput) (*models.AppSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.CutoffStart != nil {
		if _, ok := parseMinuteOfDay(*input.CutoffStart); !ok {
			return nil, fmt.Errorf("%w: cutoff start must be HH:MM", domain.ErrInvalidInput)
		}
		settings.CutoffStart = *input.CutoffStart
	}
	if input.CutoffEnd != nil {
		if _, ok := parseMinuteOfDay(*input.CutoffEnd); !ok {
			return nil, fmt.Errorf("%w: cutoff end must be HH:MM", domain.ErrInvalidInput)
		}
		settings.CutoffEnd = *input.CutoffEnd
	}
	if input.CutoffEnabled != nil {
		settings.CutoffEnabled = *input.CutoffEnabled
	}
	if input.AutoDeleteDays != nil {
		if *input.AutoDeleteDays < 1 {
			return nil, fmt.Errorf("%w: auto delete days must be at least 1", domain.ErrInvalidInput)
		}
		settings.AutoDeleteDays = *input.AutoDeleteDays
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.activity.RecordActor(ctx, actor, models.ActionUpdateSettings,
		fmt.Sprintf("Settings updated: cutoff %s-%s enabled=%t, retention %d days",
			settings.CutoffStart, settings.CutoffEnd, settings.CutoffEnabled, settings.AutoDeleteDays))
	return settings, nil
}

// BackupDocument is the full-database export produced by Backup
type BackupDocument struct {
	GeneratedAt   time.Time              `json:"generated_at"`
	Users         []*models.UserResponse `json:"users"`
	CustomerCodes []*models.CustomerCode `json:"customer_codes"`
	Instructions  []*models.Instruction  `json:"instructions"`
	ActivityLogs  []*models.ActivityLog  `json:"activity_logs"`
	Settings      *models.AppSettings    `json:"settings"`
}

// Backup assembles a snapshot of every table and stamps last_backup.
// Password hashes are excluded from the export.
func (s *SettingsService) Backup(ctx context.Context, actor domain.Actor) (*BackupDocument, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := s.codeRepo.List(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	instructions, err := s.instructionRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.activityRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	userResponses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		userResponses[i] = u.ToResponse()
	}

	now := s.now()
	settings.LastBackup = &now
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.activity.RecordActor(ctx, actor, models.ActionBackup, "Full backup generated")

	return &BackupDocument{
		GeneratedAt:   now,
		Users:         userResponses,
		CustomerCodes: codes,
		Instructions:  instructions,
		ActivityLogs:  logs,
		Settings:      settings,
	}, nil
}

// Cleanup hard-deletes completed instructions older than the retention
// window and returns how many rows were removed. A run that removes
// nothing writes no audit entry, so repeated runs stay quiet.
func (s *SettingsService) Cleanup(ctx context.Context, actor domain.Actor) (int64, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -settings.AutoDeleteDays)
	removed, err := s.instructionRepo.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.activity.RecordActor(ctx, actor, models.ActionCleanup,
			fmt.Sprintf("Removed %d completed instruction(s) older than %d days", removed, settings.AutoDeleteDays))
	}
	return removed, nil
}
