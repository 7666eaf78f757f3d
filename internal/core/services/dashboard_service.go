package services

import (
	"context"
	"time"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService aggregates instruction statistics for the landing page
type DashboardService struct {
	db              *gorm.DB
	instructionRepo repositories.InstructionRepository
	settingsRepo    repositories.SettingsRepository
	now             func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, instructionRepo repositories.InstructionRepository, settingsRepo repositories.SettingsRepository) *DashboardService {
	return &DashboardService{
		db:              db,
		instructionRepo: instructionRepo,
		settingsRepo:    settingsRepo,
		now:             time.Now,
	}
}

// TrendPoint is one day of submission volume
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// SubmitterCount is the submission volume of one sales user
type SubmitterCount struct {
	UserID    uint   `json:"user_id"`
	ShortName string `json:"short_name"`
	Count     int64  `json:"count"`
}

// CutoffStatus reports the configured window and whether it currently
// blocks submissions
type CutoffStatus struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Active  bool   `json:"active"`
}

// DashboardData is the full dashboard payload
type DashboardData struct {
	Total      int64                         `json:"total"`
	Pending    int64                         `json:"pending"`
	Completed  int64                         `json:"completed"`
	Unassigned int64                         `json:"unassigned"`
	Cutoff     CutoffStatus                  `json:"cutoff"`
	Trend      []TrendPoint                  `json:"trend"`
	Submitters []SubmitterCount              `json:"submitters,omitempty"`
	Recent     []*models.InstructionResponse `json:"recent"`
}

// Get builds the dashboard for the actor. Counts honor the same role
// scoping as the review listing; the per-submitter table is hidden from
// sales users, who only ever see their own numbers anyway.
func (s *DashboardService) Get(ctx context.Context, actor domain.Actor) (*DashboardData, error) {
	data := &DashboardData{}

	if err := s.scopedQuery(ctx, actor).Count(&data.Total).Error; err != nil {
		return nil, err
	}
	if err := s.scopedQuery(ctx, actor).Where("status = ?", models.StatusPending).Count(&data.Pending).Error; err != nil {
		return nil, err
	}
	if err := s.scopedQuery(ctx, actor).Where("status = ?", models.StatusCompleted).Count(&data.Completed).Error; err != nil {
		return nil, err
	}
	if err := s.scopedQuery(ctx, actor).Where("assigned_commercial_user_id IS NULL").Count(&data.Unassigned).Error; err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	data.Cutoff = CutoffStatus{
		Enabled: settings.CutoffEnabled,
		Start:   settings.CutoffStart,
		End:     settings.CutoffEnd,
		Active:  CutoffBlocked(settings, s.now()),
	}

	trend, err := s.weeklyTrend(ctx, actor)
	if err != nil {
		return nil, err
	}
	data.Trend = trend

	if actor.Role != domain.RoleSales {
		submitters, err := s.submitterCounts(ctx)
		if err != nil {
			return nil, err
		}
		data.Submitters = submitters
	}

	recent, err := s.instructionRepo.Recent(ctx, scopeFor(actor), 5)
	if err != nil {
		return nil, err
	}
	data.Recent = make([]*models.InstructionResponse, len(recent))
	for i, ins := range recent {
		data.Recent[i] = ins.ToResponse()
	}

	return data, nil
}

// weeklyTrend counts submissions per day over the trailing seven days,
// zero-filling days without activity
func (s *DashboardService) weeklyTrend(ctx context.Context, actor domain.Actor) ([]TrendPoint, error) {
	start := s.now().AddDate(0, 0, -6)
	startOfDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	type dayCount struct {
		Day   string
		Count int64
	}
	var counts []dayCount
	err := s.scopedQuery(ctx, actor).
		Where("created_at >= ?", startOfDay).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Group("DATE(created_at)").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		// DATE() may come back with a time suffix depending on driver
		day := c.Day
		if len(day) > 10 {
			day = day[:10]
		}
		byDay[day] = c.Count
	}

	trend := make([]TrendPoint, 7)
	for i := 0; i < 7; i++ {
		day := startOfDay.AddDate(0, 0, i).Format("2006-01-02")
		trend[i] = TrendPoint{Date: day, Count: byDay[day]}
	}
	return trend, nil
}

// submitterCounts counts non-deleted instructions per submitting user
func (s *DashboardService) submitterCounts(ctx context.Context) ([]SubmitterCount, error) {
	var submitters []SubmitterCount
	err := s.db.WithContext(ctx).Model(&models.Instruction{}).
		Select("users.id AS user_id, users.short_name, COUNT(*) AS count").
		Joins("JOIN users ON users.id = instructions.cre_user_id").
		Where("instructions.is_deleted = ?", false).
		Group("users.id, users.short_name").
		Order("count DESC").
		Scan(&submitters).Error
	return submitters, err
}

// scopedQuery starts an instruction count query with soft-delete and
// role scoping applied
func (s *DashboardService) scopedQuery(ctx context.Context, actor domain.Actor) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Instruction{}).
		Where("is_deleted = ?", false)

	switch actor.Role {
	case domain.RoleSales:
		query = query.Where("cre_user_id = ?", actor.ID)
	case domain.RoleCommercial:
		query = query.Where("assigned_commercial_user_id = ?", actor.ID)
	}
	return query
}
