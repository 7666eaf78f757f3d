package services

import (
	"strings"
	"testing"
	"time"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRoutesMappedCode(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)
	comm := createTestUser(t, db, "comm1", "CM1", models.RoleCommercial)

	require.NoError(t, db.Create(&models.CustomerCode{
		Code:             "CUST001",
		Description:      "Tech Corp",
		CommercialUserID: &comm.ID,
		Status:           models.CodeStatusActive,
	}).Error)

	svc := newInstructionService(db)
	created, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "Warehouse A",
		Rows:         []SubmitRow{{SalesOrder: "SO-100", ProductionOrder: "PO-100"}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	ins := created[0]
	require.NotNil(t, ins.AssignedCommercialUserID)
	assert.Equal(t, comm.ID, *ins.AssignedCommercialUserID)
	assert.Equal(t, models.StatusPending, ins.Status)
	assert.Equal(t, "SL1", ins.CreName)
	assert.True(t, strings.Contains(ins.ReferenceNumber, "SL1"))
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionSubmit))
}

func TestSubmitAutoCreatesUnknownCode(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)
	created, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST009",
		Location:     "Dock 3",
		Rows: []SubmitRow{
			{SalesOrder: "SO-200", ProductionOrder: "PO-200"},
			{SalesOrder: "SO-201", ProductionOrder: "PO-201"},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// both rows stay unassigned
	for _, ins := range created {
		assert.Nil(t, ins.AssignedCommercialUserID)
	}

	// the code exists exactly once, flagged as auto-created
	var mapping models.CustomerCode
	require.NoError(t, db.Where("code = ?", "CUST009").First(&mapping).Error)
	assert.Equal(t, "Auto-created", mapping.Description)
	assert.Nil(t, mapping.CommercialUserID)

	var codeCount int64
	require.NoError(t, db.Model(&models.CustomerCode{}).Where("code = ?", "CUST009").Count(&codeCount).Error)
	assert.Equal(t, int64(1), codeCount)

	// one audit entry for the auto-created code
	assert.Equal(t, int64(1), countLogs(t, db, models.ActionAutoCreateCode))
}

func TestSubmitAllowsEmptyProductionOrder(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)
	created, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "Dock 1",
		Rows:         []SubmitRow{{SalesOrder: "SO-300"}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Empty(t, created[0].ProductionOrder)
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)

	// missing location
	_, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// missing customer code
	_, err = svc.Submit(testCtx, actorFor(sales), SubmitInput{
		Location: "A",
		Rows:     []SubmitRow{{SalesOrder: "SO-1"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// no rows at all
	_, err = svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// a row without a sales order
	_, err = svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{ProductionOrder: "PO-1"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitRejectsInBatchDuplicates(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows: []SubmitRow{
			{SalesOrder: "SO-1", ProductionOrder: "PO-1"},
			{SalesOrder: "SO-1", ProductionOrder: "PO-1"},
		},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderPair)

	// nothing was stored
	var count int64
	require.NoError(t, db.Model(&models.Instruction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSubmitRejectsStoredDuplicateAtomically(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)

	// second batch has one fresh row and one stored duplicate
	_, err = svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "B",
		Rows: []SubmitRow{
			{SalesOrder: "SO-2", ProductionOrder: "PO-2"},
			{SalesOrder: "SO-1", ProductionOrder: "PO-1"},
		},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderPair)

	// the fresh row rolled back with the batch
	var count int64
	require.NoError(t, db.Model(&models.Instruction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCutoffWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		at      string
		blocked bool
	}{
		{"before window", "10:00", "15:00", "09:59", false},
		{"window opens", "10:00", "15:00", "10:00", true},
		{"inside window", "10:00", "15:00", "12:30", true},
		{"window closes", "10:00", "15:00", "15:00", true},
		{"after window", "10:00", "15:00", "15:01", false},
		{"wrap before midnight", "22:00", "02:00", "23:30", true},
		{"wrap after midnight", "22:00", "02:00", "01:15", true},
		{"wrap end boundary", "22:00", "02:00", "02:00", true},
		{"wrap outside", "22:00", "02:00", "12:00", false},
		{"wrap just after end", "22:00", "02:00", "02:01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, err := time.Parse("15:04", tt.at)
			require.NoError(t, err)
			now := time.Date(2026, 8, 30, at.Hour(), at.Minute(), 0, 0, time.UTC)

			settings := &models.AppSettings{
				CutoffEnabled: true,
				CutoffStart:   tt.start,
				CutoffEnd:     tt.end,
			}
			assert.Equal(t, tt.blocked, CutoffBlocked(settings, now))
		})
	}
}

func TestCutoffDisabledNeverBlocks(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	settings := &models.AppSettings{CutoffEnabled: false, CutoffStart: "10:00", CutoffEnd: "15:00"}
	assert.False(t, CutoffBlocked(settings, now))
}

func TestSubmitBlockedDuringCutoff(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, func(s *models.AppSettings) {
		s.CutoffEnabled = true
		s.CutoffStart = "00:00"
		s.CutoffEnd = "23:59"
	})
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	assert.ErrorIs(t, err, domain.ErrCutoffActive)
}

func TestListIsRoleScoped(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	salesA := createTestUser(t, db, "salesA", "SLA", models.RoleSales)
	salesB := createTestUser(t, db, "salesB", "SLB", models.RoleSales)
	comm := createTestUser(t, db, "comm1", "CM1", models.RoleCommercial)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)

	require.NoError(t, db.Create(&models.CustomerCode{
		Code: "CUST001", CommercialUserID: &comm.ID, Status: models.CodeStatusActive,
	}).Error)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(salesA), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)
	_, err = svc.Submit(testCtx, actorFor(salesB), SubmitInput{
		CustomerCode: "UNKNOWN",
		Location:     "B",
		Rows:         []SubmitRow{{SalesOrder: "SO-2", ProductionOrder: "PO-2"}},
	})
	require.NoError(t, err)

	listA, err := svc.List(testCtx, actorFor(salesA), repositories.InstructionFilter{})
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, "SO-1", listA[0].SalesOrder)

	// commercial user sees only what routes to them
	listC, err := svc.List(testCtx, actorFor(comm), repositories.InstructionFilter{})
	require.NoError(t, err)
	require.Len(t, listC, 1)
	assert.Equal(t, "SO-1", listC[0].SalesOrder)

	listAdmin, err := svc.List(testCtx, actorFor(admin), repositories.InstructionFilter{})
	require.NoError(t, err)
	assert.Len(t, listAdmin, 2)
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-100", ProductionOrder: "PO-100"}},
	})
	require.NoError(t, err)
	_, err = svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST002",
		Location:     "B",
		Rows:         []SubmitRow{{SalesOrder: "SO-200", ProductionOrder: "PO-999"}},
	})
	require.NoError(t, err)

	// substring match is case-insensitive
	list, err := svc.List(testCtx, actorFor(admin), repositories.InstructionFilter{SalesOrder: "so-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SO-100", list[0].SalesOrder)

	list, err = svc.List(testCtx, actorFor(admin), repositories.InstructionFilter{ProductionOrder: "999"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PO-999", list[0].ProductionOrder)

	list, err = svc.List(testCtx, actorFor(admin), repositories.InstructionFilter{Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdateStampsCompletedAt(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)

	svc := newInstructionService(db)
	created, err := svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)

	completed := models.StatusCompleted
	updated, err := svc.Update(testCtx, actorFor(admin), created[0].ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	firstCompletion := *updated.CompletedAt

	// revert keeps the completion timestamp
	pending := models.StatusPending
	updated, err = svc.Update(testCtx, actorFor(admin), created[0].ID, UpdateInput{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(firstCompletion))

	assert.Equal(t, int64(2), countLogs(t, db, models.ActionUpdateInstr))
}

func TestUpdateFieldGates(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	sales := createTestUser(t, db, "sales1", "SL1", models.RoleSales)

	svc := newInstructionService(db)
	created, err := svc.Submit(testCtx, actorFor(sales), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)
	id := created[0].ID

	// sales may edit their own comments
	comment := "please prioritize"
	updated, err := svc.Update(testCtx, actorFor(sales), id, UpdateInput{CommentsSales: &comment})
	require.NoError(t, err)
	assert.Equal(t, comment, updated.CommentsSales)

	// but not status or commercial comments
	completed := models.StatusCompleted
	_, err = svc.Update(testCtx, actorFor(sales), id, UpdateInput{Status: &completed})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	commComment := "checked"
	_, err = svc.Update(testCtx, actorFor(sales), id, UpdateInput{CommentsCommercial: &commComment})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// mixing an allowed and a forbidden field rejects the whole request
	_, err = svc.Update(testCtx, actorFor(sales), id, UpdateInput{CommentsSales: &comment, Status: &completed})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteHidesInstruction(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)

	svc := newInstructionService(db)
	created, err := svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(testCtx, actorFor(admin), created[0].ID))

	_, err = svc.GetByID(testCtx, actorFor(admin), created[0].ID)
	assert.ErrorIs(t, err, domain.ErrInstructionNotFound)

	list, err := svc.List(testCtx, actorFor(admin), repositories.InstructionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// the row itself survives for the audit trail
	var count int64
	require.NoError(t, db.Model(&models.Instruction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the freed order pair may be submitted again
	_, err = svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	assert.NoError(t, err)
}

func TestExportQuotesEveryField(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST001",
		Location:     `Dock "North"`,
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)

	csv, err := svc.Export(testCtx, actorFor(admin), repositories.InstructionFilter{}, nil)
	require.NoError(t, err)

	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Reference #","Submitted Date","Customer Code","Submitted By","Sales Order","Prod Order","Location","Assigned To","Status","Current Update","Sales Comments","Commercial Comments"`, lines[0])
	assert.Contains(t, lines[1], `"Dock ""North"""`)
	assert.Contains(t, lines[1], `"Unassigned"`)
}

func TestExportColumnSelection(t *testing.T) {
	db := newTestDB(t)
	createTestSettings(t, db, nil)
	admin := createTestUser(t, db, "admin", "ADM", models.RoleAdmin)

	svc := newInstructionService(db)
	_, err := svc.Submit(testCtx, actorFor(admin), SubmitInput{
		CustomerCode: "CUST001",
		Location:     "A",
		Rows:         []SubmitRow{{SalesOrder: "SO-1", ProductionOrder: "PO-1"}},
	})
	require.NoError(t, err)

	csv, err := svc.Export(testCtx, actorFor(admin), repositories.InstructionFilter{},
		[]string{"salesOrder", "status", "bogus"})
	require.NoError(t, err)

	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Sales Order","Status"`, lines[0])
	assert.Equal(t, `"SO-1","Pending"`, lines[1])
}
