package services

import (
	"context"
	"log"
	"time"

	"sdi-portal/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// systemActor is the identity used for scheduled maintenance runs
var systemActor = domain.Actor{
	ID:        0,
	Username:  "system",
	ShortName: "SYS",
	Role:      domain.RoleAdmin,
}

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron     *cron.Cron
	settings *SettingsService
}

// NewCronService creates the scheduler with the retention sweep
// registered to run every night at 02:00 server time
func NewCronService(settings *SettingsService) (*CronService, error) {
	s := &CronService{
		cron:     cron.New(),
		settings: settings,
	}

	if _, err := s.cron.AddFunc("0 2 * * *", s.runCleanup); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the scheduler
func (s *CronService) Start() {
	s.cron.Start()
	log.Println("✅ Cron scheduler started (retention sweep daily at 02:00)")
}

// Stop halts the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		log.Println("⚠️ Cron jobs still running after 30s, giving up the wait")
	}
}

func (s *CronService) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := s.settings.Cleanup(ctx, systemActor)
	if err != nil {
		log.Printf("❌ Retention sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ Retention sweep removed %d completed instruction(s)", removed)
	}
}
