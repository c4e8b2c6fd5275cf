package list

import (
	errors "github.com/frahmantamala/shopping-list/internal"
)

// Permission is the access level granted to a share recipient.
type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

func (p Permission) Valid() bool {
	_, ok := acceptedShares[p]
	return ok
}

// acceptedShares lists, per required level, the share levels that satisfy it.
var acceptedShares = map[Permission][]Permission{
	PermissionView:  {PermissionView, PermissionEdit, PermissionAdmin},
	PermissionEdit:  {PermissionEdit, PermissionAdmin},
	PermissionAdmin: {PermissionAdmin},
}

// Satisfies reports whether a share at level p meets required.
func (p Permission) Satisfies(required Permission) bool {
	for _, ok := range acceptedShares[required] {
		if p == ok {
			return true
		}
	}
	return false
}

type DenyReason string

const (
	ReasonNoAccess     DenyReason = "no access"
	ReasonInsufficient DenyReason = "insufficient permission"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

var allow = Decision{Allowed: true}

// Err converts a deny into the matching PermissionDenied error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonNoAccess {
		return errors.ErrNoAccess
	}
	return errors.ErrInsufficientPermission
}

// Evaluate decides whether userID may act on l at the required level.
// The owner is always allowed. Callers handle a missing list before calling.
func Evaluate(userID string, l *List, required Permission) Decision {
	if userID == l.OwnerID {
		return allow
	}
	share, ok := l.ShareFor(userID)
	if !ok {
		return Decision{Reason: ReasonNoAccess}
	}
	if !share.Permission.Satisfies(required) {
		return Decision{Reason: ReasonInsufficient}
	}
	return allow
}

// Operation names an action on a list or its items.
type Operation string

const (
	OpView         Operation = "view"
	OpListItems    Operation = "list_items"
	OpToggleCheck  Operation = "toggle_check"
	OpUpdate       Operation = "update"
	OpUpdateStatus Operation = "update_status"
	OpComplete     Operation = "complete"
	OpAddItem      Operation = "add_item"
	OpUpdateItem   Operation = "update_item"
	OpDeleteItem   Operation = "delete_item"
	OpShare        Operation = "share"
	OpUnshareOther Operation = "unshare_other"
	OpDelete       Operation = "delete"
)

// Toggling a checkbox is a write but only needs view access.
var operationPermissions = map[Operation]Permission{
	OpView:         PermissionView,
	OpListItems:    PermissionView,
	OpToggleCheck:  PermissionView,
	OpUpdate:       PermissionEdit,
	OpUpdateStatus: PermissionEdit,
	OpComplete:     PermissionEdit,
	OpAddItem:      PermissionEdit,
	OpUpdateItem:   PermissionEdit,
	OpDeleteItem:   PermissionEdit,
	OpShare:        PermissionAdmin,
	OpUnshareOther: PermissionAdmin,
	OpDelete:       PermissionAdmin,
}

// RequiredPermission returns the level op needs; unknown operations need admin.
func RequiredPermission(op Operation) Permission {
	if p, ok := operationPermissions[op]; ok {
		return p
	}
	return PermissionAdmin
}

// Authorize evaluates op for userID and returns a PermissionDenied error on deny.
func Authorize(userID string, l *List, op Operation) error {
	return Evaluate(userID, l, RequiredPermission(op)).Err()
}
