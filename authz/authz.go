// Package authz is the single authorization decision point for the API.
// Every protected handler asks the same policy table who may do what,
// instead of re-branching on role strings per endpoint.
package authz

import (
	"net/http"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleWorker = "worker"
)

// Actor is the resolved request identity, built from JWT claims by the
// auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role string
}

type Resource string

const (
	ResourceRestaurant    Resource = "restaurant"
	ResourceStaff         Resource = "staff"
	ResourceTip           Resource = "tip"
	ResourceReview        Resource = "review"
	ResourceAdminUsers    Resource = "admin_users"
	ResourceFeatureToggle Resource = "feature_toggle"
)

type Action string

const (
	ActionList     Action = "list"
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionModerate Action = "moderate"
)

// Grant describes how far a role's access reaches for one (resource,
// action) pair. GrantOwned and GrantSelf only assert that an ownership
// comparison is required; the comparison itself runs in CheckOwnership
// once the target row is loaded.
type Grant int

const (
	// GrantNone denies before any data is fetched.
	GrantNone Grant = iota
	// GrantAny allows unconditionally.
	GrantAny
	// GrantOwned allows rows reachable through a restaurant the actor owns.
	GrantOwned
	// GrantSelf allows only the actor's own staff record (or rows hanging
	// off it).
	GrantSelf
)

// Denial is a policy rejection, carrying the HTTP status and the stable
// machine-readable code the client branches on.
type Denial struct {
	Status  int
	Code    string
	Message string
}

func deny(status int, code, message string) *Denial {
	return &Denial{Status: status, Code: code, Message: message}
}

// policy is the authoritative role × resource × action table. A role
// absent from an entry has no access for that action.
var policy = map[Resource]map[Action]map[string]Grant{
	ResourceRestaurant: {
		ActionList:   {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		ActionRead:   {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		ActionCreate: {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		ActionUpdate: {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		ActionDelete: {RoleAdmin: GrantAny},
	},
	ResourceStaff: {
		ActionList:   {RoleAdmin: GrantAny, RoleOwner: GrantOwned, RoleWorker: GrantSelf},
		ActionRead:   {RoleAdmin: GrantAny, RoleOwner: GrantOwned, RoleWorker: GrantSelf},
		ActionCreate: {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		ActionUpdate: {RoleAdmin: GrantAny, RoleOwner: GrantOwned, RoleWorker: GrantSelf},
		ActionDelete: {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
	},
	ResourceTip: {
		ActionList: {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		// Per-staff tip listing: workers may read their own record's tips.
		ActionRead: {RoleAdmin: GrantAny, RoleOwner: GrantOwned, RoleWorker: GrantSelf},
	},
	ResourceReview: {
		ActionList:     {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
		ActionModerate: {RoleAdmin: GrantAny, RoleOwner: GrantOwned},
	},
	ResourceAdminUsers: {
		ActionList:   {RoleAdmin: GrantAny},
		ActionUpdate: {RoleAdmin: GrantAny},
	},
	ResourceFeatureToggle: {
		ActionCreate: {RoleAdmin: GrantAny},
		ActionUpdate: {RoleAdmin: GrantAny},
		ActionDelete: {RoleAdmin: GrantAny},
	},
}

// GrantFor returns the actor's grant for the given resource and action.
func GrantFor(actor Actor, action Action, resource Resource) Grant {
	actions, ok := policy[resource]
	if !ok {
		return GrantNone
	}
	grants, ok := actions[action]
	if !ok {
		return GrantNone
	}
	return grants[actor.Role]
}

// CanAccess checks the policy table and returns a Denial when the actor's
// role has no access at all for the action. Callers with GrantOwned or
// GrantSelf must still run CheckOwnership against the loaded row.
func CanAccess(actor Actor, action Action, resource Resource) *Denial {
	if GrantFor(actor, action, resource) == GrantNone {
		return deny(http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
	}
	return nil
}

// CheckOwnership enforces a GrantOwned/GrantSelf grant against the id the
// row is owned by: the restaurant's owner for GrantOwned, the staff
// record's linked user for GrantSelf. A nil ownerID never matches.
func CheckOwnership(actor Actor, grant Grant, ownerID *uuid.UUID) *Denial {
	switch grant {
	case GrantAny:
		return nil
	case GrantOwned, GrantSelf:
		if ownerID != nil && *ownerID == actor.ID {
			return nil
		}
		return deny(http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
	default:
		return deny(http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
	}
}

// staffUpdateFields is the per-role allow-list for PATCH /staff/:id.
// Workers get the two self-service fields only; anything else in their
// request body fails the whole request.
var staffUpdateFields = map[string]map[string]bool{
	// Owners may relink a slot on update; assigning userId at creation
	// time remains admin only.
	RoleAdmin:  {"displayName": true, "role": true, "status": true, "userId": true, "upiId": true},
	RoleOwner:  {"displayName": true, "role": true, "status": true, "userId": true, "upiId": true},
	RoleWorker: {"displayName": true, "upiId": true},
}

// StaffFieldAllowed reports whether the role may set the named staff field
// through the update endpoint.
func StaffFieldAllowed(role, field string) bool {
	return staffUpdateFields[role][field]
}

// CheckStaffFields verifies every provided field against the role's
// allow-list. A single forbidden field is a hard deny for the whole
// request, not a silent drop.
func CheckStaffFields(actor Actor, provided []string) *Denial {
	for _, f := range provided {
		if !StaffFieldAllowed(actor.Role, f) {
			return deny(http.StatusForbidden, "RESTRICTED_FIELDS",
				"Access denied: field "+f+" cannot be updated by your role")
		}
	}
	return nil
}
