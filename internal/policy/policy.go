// Package policy holds the field-level capability tables for the admin
// surface. Rules are data keyed by (entity state, actor role) instead of
// branching inside each handler.
package policy

type Role int

const (
	RoleMember Role = iota
	RoleOperator
)

type State int

const (
	// Requests are pending until their approval/review flag flips.
	StatePending State = iota
	StateApproved
	// Events are active until soft-cancelled.
	StateActive
	StateCancelled
)

// Table maps an entity state and role to the set of writable fields.
// A state with no entry is fully read-only.
type Table map[State]map[Role][]string

func (t Table) Writable(state State, role Role, field string) bool {
	for _, f := range t[state][role] {
		if f == field {
			return true
		}
	}
	return false
}

// Filter returns the subset of a requested field update the role may apply.
func (t Table) Filter(state State, role Role, fields map[string]any) map[string]any {
	allowed := make(map[string]any, len(fields))
	for field, value := range fields {
		if t.Writable(state, role, field) {
			allowed[field] = value
		}
	}
	return allowed
}

// StoreRequests: members edit their own pending request but never the
// approval flag or ownership; approval freezes everything.
var StoreRequests = Table{
	StatePending: {
		RoleMember:   {"name", "city", "number"},
		RoleOperator: {"name", "city", "number", "user_id"},
	},
}

// UserRequests arrive through the public form; operators only ever flip the
// approval flag, which goes through the workflow rather than a field update.
var UserRequests = Table{
	StatePending: {
		RoleOperator: {"message"},
	},
}

// CancelEventRequests: the reviewed flag belongs to operators.
var CancelEventRequests = Table{
	StatePending: {
		RoleMember:   {"reason"},
		RoleOperator: {"reason"},
	},
}

// Events: cancelled events are read-only; members cannot reassign ownership.
var Events = Table{
	StateActive: {
		RoleMember:   {"title", "description", "start_time", "end_time", "address", "lodge_id", "is_cancelled"},
		RoleOperator: {"title", "description", "start_time", "end_time", "address", "lodge_id", "user_id", "is_cancelled"},
	},
}

func RoleFor(privileged bool) Role {
	if privileged {
		return RoleOperator
	}
	return RoleMember
}

func RequestState(approved bool) State {
	if approved {
		return StateApproved
	}
	return StatePending
}

func EventState(cancelled bool) State {
	if cancelled {
		return StateCancelled
	}
	return StateActive
}

// CanDeleteRequest: approved requests are undeletable by anyone; pending ones
// only by operators.
func CanDeleteRequest(state State, role Role) bool {
	return role == RoleOperator && state != StateApproved
}

// CanDeleteEvent is always false; events are soft-cancelled, never deleted.
func CanDeleteEvent(State, Role) bool {
	return false
}
