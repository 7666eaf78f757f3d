package services

import (
	"testing"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMappingService(db *gorm.DB) *MappingService {
	activity := NewActivityService(repositories.NewActivityLogRepository(db))
	return NewMappingService(
		repositories.NewCustomerCodeRepository(db),
		repositories.NewUserRepository(db),
		activity,
	)
}

func TestMappingCreate(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	comm := createTestUser(t, db, "comm1", "CM1", models.RoleCommercial)
	svc := newMappingService(db)

	mapping, err := svc.Create(testCtx, actorFor(admin), MappingInput{
		Code:             "CUST001",
		Description:      "Tech Corp",
		CommercialUserID: &comm.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CodeStatusActive, mapping.Status)
	require.NotNil(t, mapping.CommercialUser)
	assert.Equal(t, "CM1", mapping.CommercialUser.ShortName)
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionAddMapping))

	// duplicate code
	_, err = svc.Create(testCtx, actorFor(admin), MappingInput{Code: "CUST001"})
	assert.ErrorIs(t, err, domain.ErrCustomerCodeExists)

	// assignee must hold the Commercial role
	_, err = svc.Create(testCtx, actorFor(admin), MappingInput{
		Code:             "CUST002",
		CommercialUserID: &admin.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMappingUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	comm := createTestUser(t, db, "comm1", "CM1", models.RoleCommercial)
	svc := newMappingService(db)

	mapping, err := svc.Create(testCtx, actorFor(admin), MappingInput{Code: "CUST001"})
	require.NoError(t, err)
	assert.Nil(t, mapping.CommercialUserID)

	description := "Now assigned"
	inactive := models.CodeStatusInactive
	updated, err := svc.Update(testCtx, actorFor(admin), mapping.ID, MappingUpdateInput{
		Description:      &description,
		CommercialUserID: &comm.ID,
		Status:           &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Now assigned", updated.Description)
	assert.Equal(t, models.CodeStatusInactive, updated.Status)
	require.NotNil(t, updated.CommercialUserID)
	assert.Equal(t, comm.ID, *updated.CommercialUserID)

	require.NoError(t, svc.Delete(testCtx, actorFor(admin), mapping.ID))
	_, err = svc.GetByID(testCtx, mapping.ID)
	assert.ErrorIs(t, err, domain.ErrCustomerCodeNotFound)

	err = svc.Delete(testCtx, actorFor(admin), mapping.ID)
	assert.ErrorIs(t, err, domain.ErrCustomerCodeNotFound)
}

func TestMappingUpdateLeavesOmittedFields(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	comm := createTestUser(t, db, "comm1", "CM1", models.RoleCommercial)
	svc := newMappingService(db)

	mapping, err := svc.Create(testCtx, actorFor(admin), MappingInput{
		Code:             "CUST001",
		Description:      "Tech Corp",
		CommercialUserID: &comm.ID,
	})
	require.NoError(t, err)

	// a status-only edit keeps the description and the assignee
	inactive := models.CodeStatusInactive
	updated, err := svc.Update(testCtx, actorFor(admin), mapping.ID, MappingUpdateInput{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, models.CodeStatusInactive, updated.Status)
	assert.Equal(t, "Tech Corp", updated.Description)
	require.NotNil(t, updated.CommercialUserID)
	assert.Equal(t, comm.ID, *updated.CommercialUserID)

	// clearing the assignee is an explicit request, not an omission
	updated, err = svc.Update(testCtx, actorFor(admin), mapping.ID, MappingUpdateInput{Unassign: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CommercialUserID)
	assert.Equal(t, "Tech Corp", updated.Description)
}

func TestMappingListFilters(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)
	comm := createTestUser(t, db, "comm1", "CM1", models.RoleCommercial)
	svc := newMappingService(db)

	_, err := svc.Create(testCtx, actorFor(admin), MappingInput{Code: "CUST001", CommercialUserID: &comm.ID})
	require.NoError(t, err)
	_, err = svc.Create(testCtx, actorFor(admin), MappingInput{Code: "OTHER01"})
	require.NoError(t, err)

	list, err := svc.List(testCtx, "cust", nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.List(testCtx, "", &comm.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "CUST001", list[0].Code)

	list, err = svc.List(testCtx, "", nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
