package session

import (
	"encoding/json"
	"sort"
	"strings"
)

// Role is a named role carried by an authenticated user
type Role string

const (
	// RoleUser is granted to every registered customer
	RoleUser Role = "USER"
	// RoleAdmin unlocks the administration views
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a backend role name ("admin", "ROLE_ADMIN") to a Role
func ParseRole(name string) Role {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "ROLE_")
	return Role(name)
}

// RoleSet is the set of roles of a session, computed once when the session
// is established so that role checks never rescan the backend payload.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from raw role names, skipping blanks
func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, name := range names {
		role := ParseRole(name)
		if role == "" {
			continue
		}
		set[role] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the role
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Names returns the role names in sorted order
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for role := range s {
		names = append(names, string(role))
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the set as a sorted array of names
func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON decodes an array of names
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewRoleSet(names...)
	return nil
}
