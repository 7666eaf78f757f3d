package domain

// Role represents a user role in the system
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleCommercial Role = "Commercial"
	RoleSales      Role = "Sales"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCommercial, RoleSales:
		return true
	}
	return false
}

// Action represents a capability a role may or may not hold.
// Route guards and field-level gates are derived from the single
// capability table below rather than re-implemented per handler.
type Action string

const (
	ActionSubmitInstructions   Action = "instructions:submit"
	ActionReviewInstructions   Action = "instructions:review"
	ActionEditStatus           Action = "instructions:edit-status"
	ActionEditSalesComments    Action = "instructions:edit-sales-comments"
	ActionEditCommComments     Action = "instructions:edit-commercial-comments"
	ActionDeleteInstruction    Action = "instructions:delete"
	ActionManageUsers          Action = "users:manage"
	ActionManageMappings       Action = "mappings:manage"
	ActionManageSettings       Action = "settings:manage"
	ActionViewActivityLogs     Action = "logs:view"
	ActionViewDashboard        Action = "dashboard:view"
)

var capabilities = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionSubmitInstructions: true,
		ActionReviewInstructions: true,
		ActionEditStatus:         true,
		ActionEditSalesComments:  true,
		ActionEditCommComments:   true,
		ActionDeleteInstruction:  true,
		ActionManageUsers:        true,
		ActionManageMappings:     true,
		ActionManageSettings:     true,
		ActionViewActivityLogs:   true,
		ActionViewDashboard:      true,
	},
	RoleCommercial: {
		ActionReviewInstructions: true,
		ActionEditStatus:         true,
		ActionEditCommComments:   true,
		ActionViewDashboard:      true,
	},
	RoleSales: {
		ActionSubmitInstructions: true,
		ActionReviewInstructions: true,
		ActionEditSalesComments:  true,
		ActionViewDashboard:      true,
	},
}

// Can reports whether the role holds the given capability
func (r Role) Can(a Action) bool {
	return capabilities[r][a]
}

// Actor is the authenticated user for the current request, built once
// by the auth middleware and passed explicitly to every service call.
// There is no process-wide signed-in-user state.
type Actor struct {
	ID        uint
	Username  string
	ShortName string
	Role      Role
}

// Can reports whether the actor holds the given capability
func (a Actor) Can(action Action) bool {
	return a.Role.Can(action)
}
