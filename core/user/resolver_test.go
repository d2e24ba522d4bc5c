package user

import "testing"

func TestResolveDashboard(t *testing.T) {
	regular := User{}
	admin := User{IsAdmin: true}
	adminOnly := User{IsAdmin: true, IsAdminOnly: true}

	tests := []struct {
		name  string
		usr   User
		state ViewState
		want  DashboardMode
	}{
		{"regular, unset", regular, ViewStateUnset, UserDashboard},
		{"regular, forced user view", regular, ViewStateUser, UserDashboard},
		{"regular, junk state", regular, ViewState("whatever"), UserDashboard},
		{"admin, unset", admin, ViewStateUnset, AdminDashboard},
		{"admin, user view", admin, ViewStateUser, UserDashboard},
		{"admin, junk state", admin, ViewState("whatever"), AdminDashboard},
		{"admin-only, unset", adminOnly, ViewStateUnset, AdminDashboard},
		{"admin-only, forced user view", adminOnly, ViewStateUser, AdminDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDashboard(tt.usr, tt.state); got != tt.want {
				t.Errorf("ResolveDashboard() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSwitchRoundTrip(t *testing.T) {
	admin := User{IsAdmin: true}

	state, err := SwitchToUser(admin)
	if err != nil {
		t.Fatalf("SwitchToUser() error = %v", err)
	}
	if got := ResolveDashboard(admin, state); got != UserDashboard {
		t.Errorf("after SwitchToUser, ResolveDashboard() = %v; want %v", got, UserDashboard)
	}

	state, err = SwitchToAdmin(admin)
	if err != nil {
		t.Fatalf("SwitchToAdmin() error = %v", err)
	}
	if state != ViewStateUnset {
		t.Errorf("SwitchToAdmin() state = %q; want unset", state)
	}
	if got := ResolveDashboard(admin, state); got != AdminDashboard {
		t.Errorf("after SwitchToAdmin, ResolveDashboard() = %v; want %v", got, AdminDashboard)
	}
}

func TestSwitchToUser_denied(t *testing.T) {
	tests := []struct {
		name string
		usr  User
	}{
		{"regular user", User{}},
		{"admin-only", User{IsAdmin: true, IsAdminOnly: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SwitchToUser(tt.usr); err != ErrPermissionDenied {
				t.Errorf("SwitchToUser() error = %v; want ErrPermissionDenied", err)
			}
			// denied switch must not leak a user view
			if got := ResolveDashboard(tt.usr, ViewStateUnset); tt.usr.IsAdminOnly && got != AdminDashboard {
				t.Errorf("ResolveDashboard() = %v; want %v", got, AdminDashboard)
			}
		})
	}
}

func TestSwitchToAdmin_idempotent(t *testing.T) {
	admin := User{IsAdmin: true}
	for i := 0; i < 2; i++ {
		state, err := SwitchToAdmin(admin)
		if err != nil || state != ViewStateUnset {
			t.Fatalf("SwitchToAdmin() #%d = (%q, %v); want (unset, nil)", i+1, state, err)
		}
	}
	if _, err := SwitchToAdmin(User{}); err != ErrPermissionDenied {
		t.Errorf("SwitchToAdmin() for non-admin error = %v; want ErrPermissionDenied", err)
	}
}
