package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/core/domain"

	"gorm.io/gorm"
)

type instructionRepository struct {
	db *gorm.DB
}

// NewInstructionRepository creates a new instruction repository
func NewInstructionRepository(db *gorm.DB) InstructionRepository {
	return &instructionRepository{db: db}
}

func (r *instructionRepository) GetByID(ctx context.Context, id uint) (*models.Instruction, error) {
	var instruction models.Instruction
	err := r.db.WithContext(ctx).
		Preload("AssignedToUser").
		Where("is_deleted = ?", false).
		First(&instruction, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInstructionNotFound
		}
		return nil, err
	}
	return &instruction, nil
}

func (r *instructionRepository) Update(ctx context.Context, instruction *models.Instruction) error {
	return r.db.WithContext(ctx).Save(instruction).Error
}

func (r *instructionRepository) List(ctx context.Context, scope InstructionScope, filter InstructionFilter) ([]*models.Instruction, error) {
	var instructions []*models.Instruction
	query := r.scoped(ctx, scope)

	if filter.SalesOrder != "" {
		query = query.Where("LOWER(sales_order) LIKE ?", "%"+strings.ToLower(filter.SalesOrder)+"%")
	}
	if filter.ProductionOrder != "" {
		query = query.Where("LOWER(production_order) LIKE ?", "%"+strings.ToLower(filter.ProductionOrder)+"%")
	}
	if filter.Unassigned {
		query = query.Where("assigned_commercial_user_id IS NULL")
	} else if filter.AssignedTo != nil {
		query = query.Where("assigned_commercial_user_id = ?", *filter.AssignedTo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CurrentUpdate != "" {
		query = query.Where("current_update = ?", filter.CurrentUpdate)
	}
	if filter.SubmittedBy != "" {
		query = query.Where("cre_name = ?", filter.SubmittedBy)
	}

	err := query.Order("created_at DESC").Find(&instructions).Error
	return instructions, err
}

func (r *instructionRepository) Recent(ctx context.Context, scope InstructionScope, limit int) ([]*models.Instruction, error) {
	var instructions []*models.Instruction
	err := r.scoped(ctx, scope).
		Order("created_at DESC").
		Limit(limit).
		Find(&instructions).Error
	return instructions, err
}

func (r *instructionRepository) ExistsByOrderPair(ctx context.Context, salesOrder, productionOrder string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Instruction{}).
		Where("sales_order = ? AND production_order = ? AND is_deleted = ?", salesOrder, productionOrder, false).
		Count(&count).Error
	return count > 0, err
}

func (r *instructionRepository) DeleteCompletedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND completed_at IS NOT NULL AND completed_at < ?", models.StatusCompleted, before).
		Delete(&models.Instruction{})
	return result.RowsAffected, result.Error
}

func (r *instructionRepository) All(ctx context.Context) ([]*models.Instruction, error) {
	var instructions []*models.Instruction
	err := r.db.WithContext(ctx).Order("id ASC").Find(&instructions).Error
	return instructions, err
}

// scoped applies soft-delete and role visibility constraints
func (r *instructionRepository) scoped(ctx context.Context, scope InstructionScope) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Instruction{}).
		Preload("AssignedToUser").
		Where("is_deleted = ?", false)

	if scope.CreUserID != nil {
		query = query.Where("cre_user_id = ?", *scope.CreUserID)
	}
	if scope.AssignedCommercialUserID != nil {
		query = query.Where("assigned_commercial_user_id = ?", *scope.AssignedCommercialUserID)
	}
	return query
}
