package routes

import (
	"sdi-portal/internal/adapters/http/handlers"
	"sdi-portal/internal/adapters/http/middleware"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/config"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the
// services that outlive the request cycle (cron, AI client).
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) (*services.CronService, *services.AIService, error) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	instructionRepo := repositories.NewInstructionRepository(db)
	codeRepo := repositories.NewCustomerCodeRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Initialize services
	activityService := services.NewActivityService(activityRepo)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, activityService, cfg.JWT)
	userService := services.NewUserService(userRepo, refreshTokenRepo, activityService)
	instructionService := services.NewInstructionService(db, instructionRepo, codeRepo, settingsRepo, activityService)
	mappingService := services.NewMappingService(codeRepo, userRepo, activityService)
	settingsService := services.NewSettingsService(settingsRepo, userRepo, codeRepo, instructionRepo, activityRepo, activityService)
	dashboardService := services.NewDashboardService(db, instructionRepo, settingsRepo)
	aiService := services.NewAIService(cfg.AI, instructionRepo)

	cronService, err := services.NewCronService(settingsService)
	if err != nil {
		return nil, nil, err
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	instructionHandler := handlers.NewInstructionHandler(instructionService)
	mappingHandler := handlers.NewMappingHandler(mappingService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	activityHandler := handlers.NewActivityHandler(activityService)
	aiHandler := handlers.NewAIHandler(aiService)

	// Health check
	app.Get("/health", healthHandler.Check)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	api := app.Group("/api/v1")
	auth := middleware.AuthMiddleware(cfg)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authGroup.Post("/refresh", middleware.AuthRateLimiter(), authHandler.Refresh)
	authGroup.Post("/logout", auth, authHandler.Logout)
	authGroup.Post("/logout-all", auth, authHandler.LogoutAll)
	authGroup.Get("/me", auth, authHandler.Me)

	// Instruction routes
	instructions := api.Group("/instructions", auth)
	instructions.Post("/", middleware.RequireAction(domain.ActionSubmitInstructions), instructionHandler.Submit)
	instructions.Get("/", middleware.RequireAction(domain.ActionReviewInstructions), instructionHandler.List)
	instructions.Get("/export", middleware.RequireAction(domain.ActionReviewInstructions), instructionHandler.Export)
	instructions.Get("/updates", middleware.RequireAction(domain.ActionReviewInstructions), instructionHandler.QuickUpdates)
	instructions.Patch("/:id", middleware.RequireAction(domain.ActionReviewInstructions), instructionHandler.Update)
	instructions.Delete("/:id", middleware.RequireAction(domain.ActionDeleteInstruction), instructionHandler.Delete)

	// User administration routes
	users := api.Group("/users", auth, middleware.RequireAction(domain.ActionManageUsers))
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/commercial", userHandler.ListCommercial)
	users.Put("/:id", userHandler.Update)
	users.Put("/:id/status", userHandler.SetStatus)
	users.Put("/:id/password", middleware.StrictRateLimiter(), userHandler.ResetPassword)
	users.Delete("/:id", userHandler.Delete)

	// Customer code mapping routes
	mappings := api.Group("/mappings", auth, middleware.RequireAction(domain.ActionManageMappings))
	mappings.Get("/", mappingHandler.List)
	mappings.Post("/", mappingHandler.Create)
	mappings.Put("/:id", mappingHandler.Update)
	mappings.Delete("/:id", mappingHandler.Delete)

	// Settings routes
	settings := api.Group("/settings", auth, middleware.RequireAction(domain.ActionManageSettings))
	settings.Get("/", settingsHandler.Get)
	settings.Put("/", settingsHandler.Update)
	settings.Get("/backup", settingsHandler.Backup)
	settings.Post("/cleanup", settingsHandler.Cleanup)

	// Profile routes
	profile := api.Group("/profile", auth)
	profile.Get("/", userHandler.Profile)
	profile.Put("/password", middleware.StrictRateLimiter(), userHandler.ChangePassword)

	// Dashboard
	api.Get("/dashboard", auth, middleware.RequireAction(domain.ActionViewDashboard), dashboardHandler.Get)

	// Activity logs
	api.Get("/logs", auth, middleware.RequireAction(domain.ActionViewActivityLogs), activityHandler.List)

	// AI assist
	ai := api.Group("/ai", auth)
	ai.Post("/summary", aiHandler.Summary)
	ai.Post("/polish", aiHandler.Polish)

	return cronService, aiService, nil
}
