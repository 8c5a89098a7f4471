package rbac

// Role tiers, descending privilege. The owner is implicitly an admin and a
// moderator everywhere those tiers gate a call; it is never stored in the
// role maps.
const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
	RoleAnyone    = "anyone"
)

var tierLevel = map[string]int{
	RoleOwner:     4,
	RoleAdmin:     3,
	RoleModerator: 2,
	RoleUser:      1,
	RoleAnyone:    0,
}

// Satisfies reports whether a caller holding tier `role` clears a gate
// requiring tier `required`. A call gated at tier T accepts any caller at T
// or a stronger tier.
func Satisfies(role, required string) bool {
	return tierLevel[role] >= tierLevel[required]
}
