package shared

import "fmt"

// Role is the closed set of account roles. Admin dominates the other two for
// every authorization rule; Teacher and Student are not comparable.
type Role string

const (
	// RoleStudent marks an enrolled student account.
	RoleStudent Role = "student"
	// RoleTeacher marks a teaching staff account.
	RoleTeacher Role = "teacher"
	// RoleAdmin marks an administrator account.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("shared: unknown role %q", raw)
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
