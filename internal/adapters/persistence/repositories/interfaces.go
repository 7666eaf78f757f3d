package repositories

import (
	"context"
	"time"

	"sdi-portal/internal/adapters/persistence/models"
)

// UserRepository defines user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
}

// InstructionScope restricts listings to what the caller may see.
// Zero value means no restriction (admin).
type InstructionScope struct {
	CreUserID                *uint
	AssignedCommercialUserID *uint
}

// InstructionFilter holds the review-screen filters; empty fields add
// no constraint and all constraints AND together.
type InstructionFilter struct {
	SalesOrder      string // substring, case-insensitive
	ProductionOrder string // substring, case-insensitive
	AssignedTo      *uint  // commercial user id
	Unassigned      bool   // only rows with no assignee
	Status          string
	CurrentUpdate   string
	SubmittedBy     string // creName
}

// InstructionRepository defines instruction data access
type InstructionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Instruction, error)
	Update(ctx context.Context, instruction *models.Instruction) error
	List(ctx context.Context, scope InstructionScope, filter InstructionFilter) ([]*models.Instruction, error)
	Recent(ctx context.Context, scope InstructionScope, limit int) ([]*models.Instruction, error)
	ExistsByOrderPair(ctx context.Context, salesOrder, productionOrder string) (bool, error)
	DeleteCompletedBefore(ctx context.Context, before time.Time) (int64, error)
	All(ctx context.Context) ([]*models.Instruction, error)
}

// CustomerCodeRepository defines customer code mapping data access
type CustomerCodeRepository interface {
	Create(ctx context.Context, code *models.CustomerCode) error
	GetByID(ctx context.Context, id uint) (*models.CustomerCode, error)
	GetByCode(ctx context.Context, code string) (*models.CustomerCode, error)
	Update(ctx context.Context, code *models.CustomerCode) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, codeFilter string, commercialUserID *uint) ([]*models.CustomerCode, error)
}

// ActivityLogFilter filters the audit listing
type ActivityLogFilter struct {
	Action string
	UserID *uint
}

// ActivityLogRepository defines audit log data access (append-only)
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter, offset, limit int) ([]*models.ActivityLog, int64, error)
	All(ctx context.Context) ([]*models.ActivityLog, error)
}

// SettingsRepository defines access to the singleton settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Save(ctx context.Context, settings *models.AppSettings) error
}
