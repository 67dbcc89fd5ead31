package domain

// ActorRole identifies which principal is issuing a lifecycle command.
type ActorRole string

const (
	RoleRenter  ActorRole = "RENTER"
	RoleOwner   ActorRole = "OWNER"
	RoleSystem  ActorRole = "SYSTEM"
	RoleArbiter ActorRole = "ARBITER"
)

// Actor is the authenticated identity behind a command. UserID is zero for
// the system actor.
type Actor struct {
	UserID int64
	Role   ActorRole
}

// SystemActor is the identity the scheduler and other automated callers use.
var SystemActor = Actor{Role: RoleSystem}

// allowedRoles is the fixed authorization table for each command.
var allowedRoles = map[Command][]ActorRole{
	CommandCompletePayment:          {RoleRenter, RoleSystem},
	CommandDecline:                  {RoleOwner},
	CommandCancel:                   {RoleRenter},
	CommandCompletePickupInspection: {RoleRenter},
	CommandStartRental:              {RoleSystem, RoleRenter},
	CommandInitiateReturn:           {RoleRenter},
	CommandCompleteReturnInspection: {RoleRenter},
	CommandConfirmCompletion:        {RoleOwner},
	CommandReportDamage:             {RoleOwner},
	CommandResolveDispute:           {RoleArbiter},
}

// CommandAllowsRole reports whether the role may issue the command at all.
// Ownership checks (is this renter THE renter of the rental) are evaluated
// by the lifecycle service against the loaded record.
func CommandAllowsRole(cmd Command, role ActorRole) bool {
	for _, r := range allowedRoles[cmd] {
		if r == role {
			return true
		}
	}
	return false
}
