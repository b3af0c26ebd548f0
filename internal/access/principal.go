// Package access resolves who is calling and narrows queries to what that
// caller may see.
package access

import "fmt"

// Role tags a resolved Principal.
type Role int

const (
	// RoleAnonymous is a caller without credentials.
	RoleAnonymous Role = iota
	// RoleAdmin is a superuser or staff member. Sees everything.
	RoleAdmin
	// RoleClient sees machines the client owns.
	RoleClient
	// RoleServiceCompany sees machines the company services.
	RoleServiceCompany
	// RoleUnrecognized is authenticated but linked to no party.
	RoleUnrecognized
)

func (r Role) String() string {
	switch r {
	case RoleAnonymous:
		return "anonymous"
	case RoleAdmin:
		return "admin"
	case RoleClient:
		return "client"
	case RoleServiceCompany:
		return "service_company"
	case RoleUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Principal is the authorization context of one request. PartyID holds the
// client ID for RoleClient and the service company ID for RoleServiceCompany.
type Principal struct {
	Role     Role
	UserID   int64
	Username string
	PartyID  int64
}

// Anonymous is the principal of unauthenticated requests.
var Anonymous = Principal{Role: RoleAnonymous}

// Admin returns an administrator principal.
func Admin(userID int64) Principal {
	return Principal{Role: RoleAdmin, UserID: userID}
}

// Client returns a client principal.
func Client(userID, clientID int64) Principal {
	return Principal{Role: RoleClient, UserID: userID, PartyID: clientID}
}

// ServiceCompany returns a service company principal.
func ServiceCompany(userID, companyID int64) Principal {
	return Principal{Role: RoleServiceCompany, UserID: userID, PartyID: companyID}
}

// Authenticated reports whether the request carried valid credentials.
func (p Principal) Authenticated() bool {
	return p.Role != RoleAnonymous
}

// Can reports whether the principal's role grants perm.
func (p Principal) Can(perm Permission) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return rolePermissions[p.Role][perm]
}
