package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/csvutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstructionService handles submission, review and lifecycle of
// delivery instructions
type InstructionService struct {
	db              *gorm.DB
	instructionRepo repositories.InstructionRepository
	codeRepo        repositories.CustomerCodeRepository
	settingsRepo    repositories.SettingsRepository
	activity        *ActivityService
	now             func() time.Time
}

// NewInstructionService creates a new instruction service
func NewInstructionService(
	db *gorm.DB,
	instructionRepo repositories.InstructionRepository,
	codeRepo repositories.CustomerCodeRepository,
	settingsRepo repositories.SettingsRepository,
	activity *ActivityService,
) *InstructionService {
	return &InstructionService{
		db:              db,
		instructionRepo: instructionRepo,
		codeRepo:        codeRepo,
		settingsRepo:    settingsRepo,
		activity:        activity,
		now:             time.Now,
	}
}

// SubmitRow is one order row in a submission batch. The production
// order is optional.
type SubmitRow struct {
	SalesOrder      string `json:"sales_order"`
	ProductionOrder string `json:"production_order"`
}

// SubmitInput is one submission batch: a shared customer code, location
// and sales comment, with one or more order rows
type SubmitInput struct {
	CustomerCode  string      `json:"customer_code"`
	Location      string      `json:"location"`
	CommentsSales string      `json:"comments_sales"`
	Rows          []SubmitRow `json:"rows"`
}

// Submit validates and stores a batch of instructions atomically:
// either every row is stored or none are. An unknown customer code is
// auto-created with no assignee so the batch never bounces on routing.
func (s *InstructionService) Submit(ctx context.Context, actor domain.Actor, input SubmitInput) ([]*models.Instruction, error) {
	input.CustomerCode = strings.TrimSpace(input.CustomerCode)
	input.Location = strings.TrimSpace(input.Location)
	input.CommentsSales = strings.TrimSpace(input.CommentsSales)

	if input.CustomerCode == "" || input.Location == "" {
		return nil, fmt.Errorf("%w: customer code and location are required", domain.ErrInvalidInput)
	}
	if len(input.Rows) == 0 {
		return nil, fmt.Errorf("%w: at least one order row is required", domain.ErrInvalidInput)
	}

	// Normalize and validate every row before touching the database
	rows := input.Rows
	seen := make(map[string]int, len(rows))
	for i := range rows {
		rows[i].SalesOrder = strings.TrimSpace(rows[i].SalesOrder)
		rows[i].ProductionOrder = strings.TrimSpace(rows[i].ProductionOrder)

		if rows[i].SalesOrder == "" {
			return nil, fmt.Errorf("%w: row %d is missing a sales order", domain.ErrInvalidInput, i+1)
		}

		pair := rows[i].SalesOrder + "|" + rows[i].ProductionOrder
		if prev, dup := seen[pair]; dup {
			return nil, fmt.Errorf("%w: rows %d and %d carry the same sales order and production order",
				domain.ErrDuplicateOrderPair, prev+1, i+1)
		}
		seen[pair] = i
	}

	var created []*models.Instruction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settingsRepo := repositories.NewSettingsRepository(tx)
		instructionRepo := repositories.NewInstructionRepository(tx)
		codeRepo := repositories.NewCustomerCodeRepository(tx)

		settings, err := settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if s.cutoffActive(settings) {
			return domain.ErrCutoffActive
		}

		mapping, err := codeRepo.GetByCode(ctx, input.CustomerCode)
		if err != nil {
			if !errors.Is(err, domain.ErrCustomerCodeNotFound) {
				return err
			}
			mapping = &models.CustomerCode{
				Code:        input.CustomerCode,
				Description: "Auto-created",
				Status:      models.CodeStatusActive,
			}
			if createErr := codeRepo.Create(ctx, mapping); createErr != nil {
				return createErr
			}
			s.recordInTx(tx, actor, models.ActionAutoCreateCode,
				fmt.Sprintf("Customer code %s auto-created during submission", input.CustomerCode))
		}

		for _, row := range rows {
			exists, err := instructionRepo.ExistsByOrderPair(ctx, row.SalesOrder, row.ProductionOrder)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: sales order %s / production order %s",
					domain.ErrDuplicateOrderPair, row.SalesOrder, row.ProductionOrder)
			}

			instruction := &models.Instruction{
				ReferenceNumber:          s.newReferenceNumber(actor),
				CreName:                  actor.ShortName,
				CreUserID:                actor.ID,
				CustomerCode:             input.CustomerCode,
				Location:                 input.Location,
				SalesOrder:               row.SalesOrder,
				ProductionOrder:          row.ProductionOrder,
				AssignedCommercialUserID: mapping.CommercialUserID,
				Status:                   models.StatusPending,
				CommentsSales:            input.CommentsSales,
			}
			if err := tx.Create(instruction).Error; err != nil {
				return err
			}
			created = append(created, instruction)
		}

		refs := make([]string, len(created))
		for i, ins := range created {
			refs[i] = ins.ReferenceNumber
		}
		s.recordInTx(tx, actor, models.ActionSubmit,
			fmt.Sprintf("Submitted %d instruction(s): %s", len(created), strings.Join(refs, ", ")))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// reload with the assignee relation for the response payload
	for i, ins := range created {
		loaded, loadErr := s.instructionRepo.GetByID(ctx, ins.ID)
		if loadErr == nil {
			created[i] = loaded
		}
	}
	return created, nil
}

// List returns instructions visible to the actor, filtered
func (s *InstructionService) List(ctx context.Context, actor domain.Actor, filter repositories.InstructionFilter) ([]*models.Instruction, error) {
	return s.instructionRepo.List(ctx, scopeFor(actor), filter)
}

// GetByID returns one instruction if the actor may see it
func (s *InstructionService) GetByID(ctx context.Context, actor domain.Actor, id uint) (*models.Instruction, error) {
	instruction, err := s.instructionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, instruction) {
		return nil, domain.ErrInstructionNotFound
	}
	return instruction, nil
}

// UpdateInput carries the optional per-field changes of a review edit.
// Nil means "leave unchanged".
type UpdateInput struct {
	Status             *string `json:"status"`
	CurrentUpdate      *string `json:"current_update"`
	CommentsSales      *string `json:"comments_sales"`
	CommentsCommercial *string `json:"comments_commercial"`
	AssignedToUserID   *uint   `json:"assigned_to_user_id"`
}

// Update applies a gated partial update. Each field requires its own
// capability, so a request mixing an allowed and a forbidden field is
// rejected as a whole.
func (s *InstructionService) Update(ctx context.Context, actor domain.Actor, id uint, input UpdateInput) (*models.Instruction, error) {
	instruction, err := s.instructionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, instruction) {
		return nil, domain.ErrInstructionNotFound
	}

	changes := make(map[string]interface{})

	if input.Status != nil {
		if !actor.Can(domain.ActionEditStatus) {
			return nil, domain.ErrForbidden
		}
		status := strings.TrimSpace(*input.Status)
		if status != models.StatusPending && status != models.StatusCompleted {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
		}
		if status != instruction.Status {
			changes["status"] = fmt.Sprintf("%s -> %s", instruction.Status, status)
			instruction.Status = status
			if status == models.StatusCompleted {
				now := s.now()
				instruction.CompletedAt = &now
			}
			// completed_at stays set on a revert to Pending so the
			// retention sweep and reports keep the completion history
		}
	}

	if input.CurrentUpdate != nil {
		if !actor.Can(domain.ActionEditStatus) {
			return nil, domain.ErrForbidden
		}
		if *input.CurrentUpdate != instruction.CurrentUpdate {
			changes["current_update"] = fmt.Sprintf("%s -> %s", instruction.CurrentUpdate, *input.CurrentUpdate)
			instruction.CurrentUpdate = *input.CurrentUpdate
		}
	}

	if input.CommentsSales != nil {
		if !actor.Can(domain.ActionEditSalesComments) {
			return nil, domain.ErrForbidden
		}
		if *input.CommentsSales != instruction.CommentsSales {
			changes["comments_sales"] = "updated"
			instruction.CommentsSales = *input.CommentsSales
		}
	}

	if input.CommentsCommercial != nil {
		if !actor.Can(domain.ActionEditCommComments) {
			return nil, domain.ErrForbidden
		}
		if *input.CommentsCommercial != instruction.CommentsCommercial {
			changes["comments_commercial"] = "updated"
			instruction.CommentsCommercial = *input.CommentsCommercial
		}
	}

	if input.AssignedToUserID != nil {
		if actor.Role != domain.RoleAdmin {
			return nil, domain.ErrForbidden
		}
		changes["assigned_to"] = strconv.FormatUint(uint64(*input.AssignedToUserID), 10)
		instruction.AssignedCommercialUserID = input.AssignedToUserID
	}

	if len(changes) == 0 {
		return instruction, nil
	}

	if err := s.instructionRepo.Update(ctx, instruction); err != nil {
		return nil, err
	}

	changeSet, _ := json.Marshal(changes)
	s.activity.RecordActor(ctx, actor, models.ActionUpdateInstr,
		fmt.Sprintf("Instruction %s updated: %s", instruction.ReferenceNumber, string(changeSet)))

	return s.instructionRepo.GetByID(ctx, id)
}

// Delete soft-deletes an instruction. The row stays in the table for
// audit purposes but disappears from every listing and duplicate check.
func (s *InstructionService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	instruction, err := s.instructionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	instruction.IsDeleted = true
	if err := s.instructionRepo.Update(ctx, instruction); err != nil {
		return err
	}

	s.activity.RecordActor(ctx, actor, models.ActionDeleteInstr,
		fmt.Sprintf("Instruction %s deleted", instruction.ReferenceNumber))
	return nil
}

// QuickUpdates returns the fixed suggestion list for the current-update field
func (s *InstructionService) QuickUpdates() []string {
	return models.QuickUpdates
}

// exportColumn pairs a column key with its CSV header
type exportColumn struct {
	Key    string
	Header string
}

// exportColumns is the full column set of the review export, in order
var exportColumns = []exportColumn{
	{"referenceNumber", "Reference #"},
	{"createdAt", "Submitted Date"},
	{"customerCode", "Customer Code"},
	{"creName", "Submitted By"},
	{"salesOrder", "Sales Order"},
	{"productionOrder", "Prod Order"},
	{"location", "Location"},
	{"assignedTo", "Assigned To"},
	{"status", "Status"},
	{"currentUpdate", "Current Update"},
	{"commentsSales", "Sales Comments"},
	{"commentsCommercial", "Commercial Comments"},
}

// Export renders the actor's filtered instruction list as CSV.
// columns selects and orders the output; unknown keys are ignored and
// an empty selection falls back to the full column set.
func (s *InstructionService) Export(ctx context.Context, actor domain.Actor, filter repositories.InstructionFilter, columns []string) (string, error) {
	instructions, err := s.List(ctx, actor, filter)
	if err != nil {
		return "", err
	}

	selected := selectColumns(columns)

	var w csvutil.Writer
	headers := make([]string, len(selected))
	for i, col := range selected {
		headers[i] = col.Header
	}
	w.WriteRow(headers)

	for _, ins := range instructions {
		resp := ins.ToResponse()
		row := make([]string, len(selected))
		for i, col := range selected {
			row[i] = exportValue(resp, col.Key)
		}
		w.WriteRow(row)
	}

	return w.String(), nil
}

func selectColumns(keys []string) []exportColumn {
	if len(keys) == 0 {
		return exportColumns
	}
	byKey := make(map[string]exportColumn, len(exportColumns))
	for _, col := range exportColumns {
		byKey[col.Key] = col
	}
	var selected []exportColumn
	for _, key := range keys {
		if col, ok := byKey[strings.TrimSpace(key)]; ok {
			selected = append(selected, col)
		}
	}
	if len(selected) == 0 {
		return exportColumns
	}
	return selected
}

func exportValue(resp *models.InstructionResponse, key string) string {
	switch key {
	case "referenceNumber":
		return resp.ReferenceNumber
	case "createdAt":
		return resp.CreatedAt.Format("2006-01-02")
	case "customerCode":
		return resp.CustomerCode
	case "creName":
		return resp.CreName
	case "salesOrder":
		return resp.SalesOrder
	case "productionOrder":
		return resp.ProductionOrder
	case "location":
		return resp.Location
	case "assignedTo":
		return resp.AssignedTo
	case "status":
		return resp.Status
	case "currentUpdate":
		return resp.CurrentUpdate
	case "commentsSales":
		return resp.CommentsSales
	case "commentsCommercial":
		return resp.CommentsCommercial
	}
	return ""
}

// newReferenceNumber builds a reference like 20260830SL1A3F09C2:
// submission date, submitter short name, four random bytes in hex
func (s *InstructionService) newReferenceNumber(actor domain.Actor) string {
	id := uuid.New()
	return s.now().Format("20060102") +
		strings.ToUpper(actor.ShortName) +
		strings.ToUpper(hex.EncodeToString(id[:4]))
}

func (s *InstructionService) cutoffActive(settings *models.AppSettings) bool {
	return CutoffBlocked(settings, s.now())
}

// CutoffBlocked reports whether the cutoff window blocks submissions at
// the given time. A window whose end is before its start wraps midnight.
func CutoffBlocked(settings *models.AppSettings, now time.Time) bool {
	if !settings.CutoffEnabled {
		return false
	}

	start, okStart := parseMinuteOfDay(settings.CutoffStart)
	end, okEnd := parseMinuteOfDay(settings.CutoffEnd)
	if !okStart || !okEnd {
		return false
	}

	t := now.Hour()*60 + now.Minute()

	if start <= end {
		return t >= start && t <= end
	}
	return t >= start || t <= end
}

// parseMinuteOfDay parses "HH:MM" into minutes since midnight
func parseMinuteOfDay(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// recordInTx writes an audit entry inside the submission transaction so
// the audit trail rolls back together with the batch
func (s *InstructionService) recordInTx(tx *gorm.DB, actor domain.Actor, action, details string) {
	entry := &models.ActivityLog{
		UserID:   actor.ID,
		UserName: actor.Username,
		Action:   action,
		Details:  details,
	}
	tx.Create(entry)
}

// scopeFor maps the actor's role onto a listing scope: sales users see
// their own submissions, commercial users see what is assigned to them,
// admins see everything
func scopeFor(actor domain.Actor) repositories.InstructionScope {
	switch actor.Role {
	case domain.RoleSales:
		id := actor.ID
		return repositories.InstructionScope{CreUserID: &id}
	case domain.RoleCommercial:
		id := actor.ID
		return repositories.InstructionScope{AssignedCommercialUserID: &id}
	}
	return repositories.InstructionScope{}
}

// visibleTo applies the same role scoping to a single row
func visibleTo(actor domain.Actor, instruction *models.Instruction) bool {
	switch actor.Role {
	case domain.RoleSales:
		return instruction.CreUserID == actor.ID
	case domain.RoleCommercial:
		return instruction.AssignedCommercialUserID != nil &&
			*instruction.AssignedCommercialUserID == actor.ID
	}
	return true
}
