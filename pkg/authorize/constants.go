package authorize

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionList   Action = "list"

	// Power actions
	ActionManage Action = "manage" // CRUD + list
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionList: {},
	ActionManage: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceDashboard   Resource = "dashboard"
	ResourcePatient     Resource = "patient"
	ResourceDoctor      Resource = "doctor"
	ResourceDepartment  Resource = "department"
	ResourceAppointment Resource = "appointment"
	ResourceTreatment   Resource = "treatment"
)

var KnownResources = map[Resource]struct{}{
	ResourceDashboard: {}, ResourcePatient: {}, ResourceDoctor: {},
	ResourceDepartment: {}, ResourceAppointment: {}, ResourceTreatment: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Roles are the request subjects: a session maps to exactly one of them.

const (
	RoleAdmin   Role = "role:admin"
	RolePatient Role = "role:patient"
	RoleDoctor  Role = "role:doctor"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin:   {},
	RolePatient: {},
	RoleDoctor:  {},
}

// Subject kinds as stored in sessions.
const (
	KindPatient = "patient"
	KindDoctor  = "doctor"
)

// RoleFor maps a session kind and admin flag to its role.
func RoleFor(kind string, isAdmin bool) (Role, bool) {
	switch {
	case kind == KindDoctor:
		return RoleDoctor, true
	case kind == KindPatient && isAdmin:
		return RoleAdmin, true
	case kind == KindPatient:
		return RolePatient, true
	}
	return "", false
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Grouping rows: g, member, role
type GroupingPolicy struct {
	Member Role
	Role   Role
}

// Permission rows: p, role, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
