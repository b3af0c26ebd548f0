package access

// Permission names one action on one kind of record.
type Permission string

const (
	ViewMachine   Permission = "view_machine"
	AddMachine    Permission = "add_machine"
	ChangeMachine Permission = "change_machine"
	DeleteMachine Permission = "delete_machine"

	ViewMaintenance   Permission = "view_maintenance"
	AddMaintenance    Permission = "add_maintenance"
	ChangeMaintenance Permission = "change_maintenance"
	DeleteMaintenance Permission = "delete_maintenance"

	ViewClaim   Permission = "view_claim"
	AddClaim    Permission = "add_claim"
	ChangeClaim Permission = "change_claim"
	DeleteClaim Permission = "delete_claim"

	ViewReference   Permission = "view_reference"
	ManageReference Permission = "manage_reference"

	ManageParties Permission = "manage_parties"
)

// rolePermissions lists grants for non-admin roles. Admins hold every permission.
var rolePermissions = map[Role]map[Permission]bool{
	RoleClient: {
		ViewMachine:       true,
		ViewMaintenance:   true,
		AddMaintenance:    true,
		ChangeMaintenance: true,
		ViewClaim:         true,
		ViewReference:     true,
	},
	RoleServiceCompany: {
		ViewMachine:       true,
		ViewMaintenance:   true,
		AddMaintenance:    true,
		ChangeMaintenance: true,
		ViewClaim:         true,
		AddClaim:          true,
		ChangeClaim:       true,
		ViewReference:     true,
	},
}
