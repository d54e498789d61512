package entity

import "encoding/json"

// RoleList tolerates the two legacy wire shapes of the "roles" field: a
// plain string or an array of strings.
type RoleList []string

// UnmarshalJSON accepts either "ROLE_X" or ["ROLE_X", ...].
func (r *RoleList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = RoleList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = RoleList(many)
	return nil
}

// Identity is the authenticated user record returned by login, signup or
// the OAuth callback, persisted alongside the bearer token.
type Identity struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     string   `json:"role,omitempty"`
	Roles    RoleList `json:"roles,omitempty"`
}

// HasRole reports whether the identity holds the given role. It tolerates
// the three legacy shapes: scalar "role", scalar "roles" and array "roles".
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	if i.Role == role {
		return true
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole returns the role used for dashboard routing. The scalar role
// field wins; otherwise the first entry of the roles list; employees by
// default.
func (i *Identity) PrimaryRole() string {
	if i == nil {
		return ""
	}
	if i.Role != "" {
		return i.Role
	}
	if len(i.Roles) > 0 {
		return i.Roles[0]
	}
	return RoleEmployee
}
