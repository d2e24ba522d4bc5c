package user

import "errors"

// ErrPermissionDenied is returned when an account lacks the role a view
// transition requires.
var ErrPermissionDenied = errors.New("permission denied")

// ViewState is the per-session dashboard preference of a dual-capable admin.
// It is advisory UI state: absent means the admin view, and it is ignored
// entirely for accounts the toggle does not apply to.
type ViewState string

const (
	// ViewStateKey is the session-store key the flag lives under.
	ViewStateKey = "view_as_user"

	ViewStateUnset ViewState = ""
	ViewStateUser  ViewState = "user"
)

// DashboardMode is the effective dashboard rendered for a request.
type DashboardMode string

const (
	AdminDashboard DashboardMode = "admin"
	UserDashboard  DashboardMode = "user"
)

// ResolveDashboard computes the effective dashboard for a principal and its
// current session view-state. It is total: every flag combination resolves,
// and a stale UserView flag on an admin-only account is treated as unset.
//
// Precedence: admin-only > view-state > role.
func ResolveDashboard(usr User, state ViewState) DashboardMode {
	switch {
	case usr.IsAdminOnly:
		return AdminDashboard
	case usr.IsAdmin:
		if state == ViewStateUser {
			return UserDashboard
		}
		return AdminDashboard
	default:
		return UserDashboard
	}
}

// SwitchToUser yields the view-state placing a dual-capable admin on the user
// dashboard. Denied for non-admins (nothing to switch from) and for admin-only
// accounts (the user dashboard is unreachable for them).
func SwitchToUser(usr User) (ViewState, error) {
	if !usr.IsAdmin || usr.IsAdminOnly {
		return ViewStateUnset, ErrPermissionDenied
	}
	return ViewStateUser, nil
}

// SwitchToAdmin clears the toggle. Allowed for any admin and idempotent;
// entering the admin dashboard route performs the same transition.
func SwitchToAdmin(usr User) (ViewState, error) {
	if !usr.IsAdmin {
		return ViewStateUnset, ErrPermissionDenied
	}
	return ViewStateUnset, nil
}
