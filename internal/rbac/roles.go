package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
//
// - owner: platform operator; manages global rates and any account's credits.
// - agency: reseller; manages its own rate overrides and its clients' credits.
// - client: end tenant; runs agents and is billed per call.
const (
	RoleOwner  = "owner"
	RoleAgency = "agency"
	RoleClient = "client"
)

func IsOwner(role string) bool { return role == RoleOwner }

func IsAgency(role string) bool { return role == RoleAgency }
