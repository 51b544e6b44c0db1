// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// UserRole is the authorization level carried in [AuthClaims.Role].
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"

	// RoleAuthor may publish and unpublish comics.
	RoleAuthor UserRole = "author"

	RoleMember UserRole = "member"
)

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleAuthor:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
