package roles

import (
	"fmt"
	"time"

	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

// Trigger identifies the event asking for a role change.
type Trigger string

const (
	TriggerEnrollmentConfirmed Trigger = "enrollment_confirmed"
	TriggerEnrollmentCancelled Trigger = "enrollment_cancelled"
	TriggerPaymentRegistration Trigger = "payment_registration"
	TriggerAdminAction         Trigger = "admin_action"
)

// ErrIllegalTransition is returned when no table entry allows the requested
// change.
var ErrIllegalTransition = fmt.Errorf("%w: illegal role transition", shared.ErrConflict)

// transitions is the single authority on legal role changes. Entries that
// map a role onto itself are explicit no-ops: the engine neither mutates
// nor logs them.
var transitions = map[users.Role]map[Trigger]users.Role{
	users.RoleClient: {
		TriggerEnrollmentConfirmed: users.RoleStudent,
		TriggerPaymentRegistration: users.RoleStudent,
		TriggerEnrollmentCancelled: users.RoleClient,
	},
	users.RoleStudent: {
		TriggerEnrollmentConfirmed: users.RoleStudent,
		TriggerPaymentRegistration: users.RoleStudent,
		TriggerEnrollmentCancelled: users.RoleClient,
	},
}

// Next resolves the role a trigger leads to from the current role. Admin
// actions carry an explicit target and may set any valid role.
func Next(current users.Role, trigger Trigger, target users.Role) (users.Role, error) {
	if trigger == TriggerAdminAction {
		if !target.Valid() {
			return "", ErrIllegalTransition
		}
		return target, nil
	}
	next, ok := transitions[current][trigger]
	if !ok {
		return "", ErrIllegalTransition
	}
	return next, nil
}

// Entry is one append-only audit record of a role change.
type Entry struct {
	ID         int64
	UserID     int64
	OldRole    users.Role
	NewRole    users.Role
	Reason     string
	Meta       map[string]any
	OccurredAt time.Time
}

// Request describes a role transition to apply.
type Request struct {
	UserID  int64
	Trigger Trigger
	// Target is only consulted for TriggerAdminAction.
	Target users.Role
	Reason string
	Meta   map[string]any
}

// Result reports what the engine did.
type Result struct {
	Changed bool
	OldRole users.Role
	NewRole users.Role
}
