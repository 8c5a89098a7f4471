package rbac

import "testing"

func TestSatisfies(t *testing.T) {
	tests := []struct {
		role     string
		required string
		expected bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleModerator, true},
		{RoleOwner, RoleOwner, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleOwner, false},
		{RoleAdmin, RoleModerator, true},
		{RoleModerator, RoleAdmin, false},
		{RoleModerator, RoleUser, true},
		{RoleUser, RoleModerator, false},
		{RoleUser, RoleAnyone, true},
		{RoleAnyone, RoleUser, false},
		{"nonexistent", RoleUser, false},
		{"nonexistent", RoleAnyone, true},
	}

	for _, tt := range tests {
		t.Run(tt.role+"->"+tt.required, func(t *testing.T) {
			if got := Satisfies(tt.role, tt.required); got != tt.expected {
				t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.role, tt.required, got, tt.expected)
			}
		})
	}
}
