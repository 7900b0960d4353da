// Package policy decides whether a caller may perform an action on a
// credential. It is a pure decision table with no I/O.
package policy

import "github.com/ericfisherdev/accessvault/internal/domain/model"

// Action is an operation subject to authorization.
type Action string

const (
	ActionCreate          Action = "create"
	ActionRead            Action = "read"
	ActionReveal          Action = "reveal"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionPromoteToShared Action = "promote_to_shared"
)

// Request carries every input the decision table looks at. Current is the
// stored visibility (empty on create); Requested is the visibility asked for
// on create or update.
type Request struct {
	Action    Action
	Role      model.Role
	IsOwner   bool
	Current   model.Visibility
	Requested model.Visibility
}

// Decision is the outcome of Evaluate. Reason is empty when Allowed is true.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluate applies the visibility rules to req.
func Evaluate(req Request) Decision {
	admin := req.Role == model.RoleAdmin

	switch req.Action {
	case ActionCreate:
		if req.Requested == model.VisibilityShared && !admin {
			return deny("only admins can create shared credentials")
		}
		return allow()

	case ActionRead, ActionReveal:
		if req.Current == model.VisibilityShared || req.IsOwner || admin {
			return allow()
		}
		return deny("personal credential belongs to another user")

	case ActionUpdate, ActionDelete:
		if req.IsOwner || admin {
			return allow()
		}
		return deny("only the owner or an admin can modify this credential")

	case ActionPromoteToShared:
		if req.Current == model.VisibilityShared || req.Requested != model.VisibilityShared {
			return allow()
		}
		if !admin {
			return deny("only admins can make a credential shared")
		}
		return allow()

	default:
		return deny("unknown action")
	}
}

// Allowed is shorthand for Evaluate(req).Allowed.
func Allowed(req Request) bool {
	return Evaluate(req).Allowed
}
