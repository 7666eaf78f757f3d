package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles
const (
	RoleAdmin      = "Admin"
	RoleCommercial = "Commercial"
	RoleSales      = "Sales"
)

// Instruction statuses
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Customer code statuses
const (
	CodeStatusActive   = "Active"
	CodeStatusInactive = "Inactive"
)

// QuickUpdates is the fixed suggestion list for the current-update field
var QuickUpdates = []string{
	"Not ready to invoice",
	"Approval pending",
	"Mismatch",
	"FG Transit",
	"Delayed",
	"Under review",
	"Separate Pending",
	"QA Data Error",
	"Approved",
}

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	ShortName string         `gorm:"size:10;not null" json:"short_name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'Sales'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	ShortName string    `json:"short_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		ShortName: u.ShortName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Routing Table
// ============================================================

// CustomerCode represents customer_codes table.
// code is the routing key: submissions resolve the assigned commercial
// user by matching code. Unknown codes are auto-created with a null
// assignee on first submission.
type CustomerCode struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Code             string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description      string    `gorm:"size:200" json:"description"`
	CommercialUserID *uint     `gorm:"index" json:"commercial_user_id"`
	Status           string    `gorm:"size:20;not null;default:'Active'" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	CommercialUser *User `gorm:"foreignKey:CommercialUserID" json:"commercial_user,omitempty"`
}

func (CustomerCode) TableName() string {
	return "customer_codes"
}

// ============================================================
// Main Table
// ============================================================

// Instruction represents instructions table (routed delivery instructions)
type Instruction struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	ReferenceNumber          string     `gorm:"size:50;uniqueIndex;not null" json:"reference_number"`
	CreName                  string     `gorm:"size:10;not null" json:"cre_name"`
	CreUserID                uint       `gorm:"not null;index" json:"cre_user_id"`
	CustomerCode             string     `gorm:"size:50;not null;index" json:"customer_code"`
	Location                 string     `gorm:"size:100;not null" json:"location"`
	SalesOrder               string     `gorm:"size:50;not null;index" json:"sales_order"`
	ProductionOrder          string     `gorm:"size:50" json:"production_order"`
	AssignedCommercialUserID *uint      `gorm:"index" json:"assigned_commercial_user_id"`
	Status                   string     `gorm:"size:20;not null;default:'Pending'" json:"status"`
	CurrentUpdate            string     `gorm:"size:100" json:"current_update"`
	CommentsSales            string     `gorm:"type:text" json:"comments_sales"`
	CommentsCommercial       string     `gorm:"type:text" json:"comments_commercial"`
	CompletedAt              *time.Time `json:"completed_at"`
	IsDeleted                bool       `gorm:"default:false;index" json:"is_deleted"`
	CreatedAt                time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Creator        *User `gorm:"foreignKey:CreUserID" json:"creator,omitempty"`
	AssignedToUser *User `gorm:"foreignKey:AssignedCommercialUserID" json:"assigned_to_user,omitempty"`
}

func (Instruction) TableName() string {
	return "instructions"
}

// InstructionResponse DTO
type InstructionResponse struct {
	ID                       uint       `json:"id"`
	ReferenceNumber          string     `json:"reference_number"`
	CreName                  string     `json:"cre_name"`
	CreUserID                uint       `json:"cre_user_id"`
	CustomerCode             string     `json:"customer_code"`
	Location                 string     `json:"location"`
	SalesOrder               string     `json:"sales_order"`
	ProductionOrder          string     `json:"production_order"`
	AssignedCommercialUserID *uint      `json:"assigned_commercial_user_id"`
	AssignedTo               string     `json:"assigned_to"`
	Status                   string     `json:"status"`
	CurrentUpdate            string     `json:"current_update"`
	CommentsSales            string     `json:"comments_sales"`
	CommentsCommercial       string     `json:"comments_commercial"`
	CompletedAt              *time.Time `json:"completed_at"`
	CreatedAt                time.Time  `json:"created_at"`
}

func (i *Instruction) ToResponse() *InstructionResponse {
	resp := &InstructionResponse{
		ID:                       i.ID,
		ReferenceNumber:          i.ReferenceNumber,
		CreName:                  i.CreName,
		CreUserID:                i.CreUserID,
		CustomerCode:             i.CustomerCode,
		Location:                 i.Location,
		SalesOrder:               i.SalesOrder,
		ProductionOrder:          i.ProductionOrder,
		AssignedCommercialUserID: i.AssignedCommercialUserID,
		AssignedTo:               "Unassigned",
		Status:                   i.Status,
		CurrentUpdate:            i.CurrentUpdate,
		CommentsSales:            i.CommentsSales,
		CommentsCommercial:       i.CommentsCommercial,
		CompletedAt:              i.CompletedAt,
		CreatedAt:                i.CreatedAt,
	}

	if i.AssignedToUser != nil {
		resp.AssignedTo = i.AssignedToUser.ShortName
	}

	return resp
}

// ============================================================
// Audit & Settings Tables
// ============================================================

// ActivityLog represents activity_logs table.
// Append-only: the application never mutates or deletes rows here.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	UserName  string    `gorm:"size:50;not null" json:"user_name"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// Audit actions
const (
	ActionLogin          = "Login"
	ActionLogout         = "Logout"
	ActionSubmit         = "Submit Instructions"
	ActionAutoCreateCode = "Auto-Create Code"
	ActionUpdateInstr    = "Update Instruction"
	ActionDeleteInstr    = "Delete Instruction"
	ActionAddUser        = "Add User"
	ActionUpdateUser     = "Update User"
	ActionDeleteUser     = "Delete User"
	ActionResetPassword  = "Reset Password"
	ActionChangePassword = "Change Password"
	ActionAddMapping     = "Add Mapping"
	ActionUpdateMapping  = "Update Mapping"
	ActionDeleteMapping  = "Delete Mapping"
	ActionUpdateSettings = "Update Settings"
	ActionBackup         = "Backup"
	ActionCleanup        = "Cleanup"
)

// SettingsRowID is the fixed primary key of the singleton settings row
const SettingsRowID uint = 1

// AppSettings represents the singleton app_settings row
type AppSettings struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	CutoffEnabled  bool       `gorm:"default:false" json:"cutoff_enabled"`
	CutoffStart    string     `gorm:"size:5;not null;default:'10:00'" json:"cutoff_start"`
	CutoffEnd      string     `gorm:"size:5;not null;default:'15:00'" json:"cutoff_end"`
	AutoDeleteDays int        `gorm:"not null;default:14" json:"auto_delete_days"`
	LastBackup     *time.Time `json:"last_backup"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AppSettings) TableName() string {
	return "app_settings"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&CustomerCode{},
		&Instruction{},
		&ActivityLog{},
		&AppSettings{},
	)
}
