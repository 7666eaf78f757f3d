package repositories

import (
	"context"
	"errors"
	"strings"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/core/domain"

	"gorm.io/gorm"
)

type customerCodeRepository struct {
	db *gorm.DB
}

// NewCustomerCodeRepository creates a new customer code repository
func NewCustomerCodeRepository(db *gorm.DB) CustomerCodeRepository {
	return &customerCodeRepository{db: db}
}

func (r *customerCodeRepository) Create(ctx context.Context, code *models.CustomerCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *customerCodeRepository) GetByID(ctx context.Context, id uint) (*models.CustomerCode, error) {
	var code models.CustomerCode
	err := r.db.WithContext(ctx).Preload("CommercialUser").First(&code, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *customerCodeRepository) GetByCode(ctx context.Context, code string) (*models.CustomerCode, error) {
	var mapping models.CustomerCode
	err := r.db.WithContext(ctx).
		Preload("CommercialUser").
		Where("code = ?", code).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerCodeNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *customerCodeRepository) Update(ctx context.Context, code *models.CustomerCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *customerCodeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerCode{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCustomerCodeNotFound
	}
	return nil
}

func (r *customerCodeRepository) List(ctx context.Context, codeFilter string, commercialUserID *uint) ([]*models.CustomerCode, error) {
	var codes []*models.CustomerCode
	query := r.db.WithContext(ctx).Preload("CommercialUser")

	if codeFilter != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(codeFilter)+"%")
	}
	if commercialUserID != nil {
		query = query.Where("commercial_user_id = ?", *commercialUserID)
	}

	err := query.Order("code ASC").Find(&codes).Error
	return codes, err
}
