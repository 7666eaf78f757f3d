package services

import (
	"context"
	"fmt"
	"strings"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
)

// MappingService administers customer code to commercial user routing
type MappingService struct {
	codeRepo repositories.CustomerCodeRepository
	userRepo repositories.UserRepository
	activity *ActivityService
}

// NewMappingService creates a new mapping service
func NewMappingService(
	codeRepo repositories.CustomerCodeRepository,
	userRepo repositories.UserRepository,
	activity *ActivityService,
) *MappingService {
	return &MappingService{
		codeRepo: codeRepo,
		userRepo: userRepo,
		activity: activity,
	}
}

// MappingInput holds the fields of a mapping create or edit
type MappingInput struct {
	Code             string `json:"code"`
	Description      string `json:"description"`
	CommercialUserID *uint  `json:"commercial_user_id"`
	Status           string `json:"status"`
}

// Create adds a new customer code mapping
func (s *MappingService) Create(ctx context.Context, actor domain.Actor, input MappingInput) (*models.CustomerCode, error) {
	input.Code = strings.TrimSpace(input.Code)
	if input.Code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}
	if input.Status == "" {
		input.Status = models.CodeStatusActive
	}
	if input.Status != models.CodeStatusActive && input.Status != models.CodeStatusInactive {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}

	if _, err := s.codeRepo.GetByCode(ctx, input.Code); err == nil {
		return nil, domain.ErrCustomerCodeExists
	}

	if err := s.validateAssignee(ctx, input.CommercialUserID); err != nil {
		return nil, err
	}

	mapping := &models.CustomerCode{
		Code:             input.Code,
		Description:      strings.TrimSpace(input.Description),
		CommercialUserID: input.CommercialUserID,
		Status:           input.Status,
	}
	if err := s.codeRepo.Create(ctx, mapping); err != nil {
		return nil, err
	}

	s.activity.RecordActor(ctx, actor, models.ActionAddMapping,
		fmt.Sprintf("Customer code %s created", mapping.Code))
	return s.codeRepo.GetByID(ctx, mapping.ID)
}

// MappingUpdateInput carries the optional per-field changes of a
// mapping edit. Nil means "leave unchanged"; Unassign clears the
// assignee.
type MappingUpdateInput struct {
	Description      *string `json:"description"`
	CommercialUserID *uint   `json:"commercial_user_id"`
	Unassign         bool    `json:"unassign"`
	Status           *string `json:"status"`
}

// Update edits a mapping. The code itself is immutable once created;
// only description, assignee and status change, and omitted fields
// stay as they are.
func (s *MappingService) Update(ctx context.Context, actor domain.Actor, id uint, input MappingUpdateInput) (*models.CustomerCode, error) {
	mapping, err := s.codeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil &&
		*input.Status != models.CodeStatusActive && *input.Status != models.CodeStatusInactive {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *input.Status)
	}
	if err := s.validateAssignee(ctx, input.CommercialUserID); err != nil {
		return nil, err
	}

	if input.Description != nil {
		mapping.Description = strings.TrimSpace(*input.Description)
	}
	if input.Unassign {
		mapping.CommercialUserID = nil
		mapping.CommercialUser = nil
	} else if input.CommercialUserID != nil {
		mapping.CommercialUserID = input.CommercialUserID
		mapping.CommercialUser = nil
	}
	if input.Status != nil {
		mapping.Status = *input.Status
	}

	if err := s.codeRepo.Update(ctx, mapping); err != nil {
		return nil, err
	}

	s.activity.RecordActor(ctx, actor, models.ActionUpdateMapping,
		fmt.Sprintf("Customer code %s updated", mapping.Code))
	return s.codeRepo.GetByID(ctx, mapping.ID)
}

// Delete removes a mapping. Existing instructions keep the code string
// they were submitted with; only future routing is affected.
func (s *MappingService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	mapping, err := s.codeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.codeRepo.Delete(ctx, mapping.ID); err != nil {
		return err
	}

	s.activity.RecordActor(ctx, actor, models.ActionDeleteMapping,
		fmt.Sprintf("Customer code %s deleted", mapping.Code))
	return nil
}

// List returns mappings, optionally filtered by code substring and assignee
func (s *MappingService) List(ctx context.Context, codeFilter string, commercialUserID *uint) ([]*models.CustomerCode, error) {
	return s.codeRepo.List(ctx, codeFilter, commercialUserID)
}

// GetByID returns one mapping
func (s *MappingService) GetByID(ctx context.Context, id uint) (*models.CustomerCode, error) {
	return s.codeRepo.GetByID(ctx, id)
}

// validateAssignee checks that a non-nil assignee is an active
// commercial user
func (s *MappingService) validateAssignee(ctx context.Context, userID *uint) error {
	if userID == nil {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, *userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleCommercial {
		return fmt.Errorf("%w: assignee must be a commercial user", domain.ErrInvalidInput)
	}
	return nil
}
