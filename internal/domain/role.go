package domain

import "fmt"

type Role string

const (
	RoleDBA        Role = "DBA"
	RoleDBATrainee Role = "DBA_Becario"
	RoleDevJunior  Role = "DEV_Junior"
	RoleDevSenior  Role = "DEV_Senior"
	RoleQAJunior   Role = "QA_Junior"
	RoleQASenior   Role = "QA_Senior"
)

// DefaultRole is assigned to developers created without an explicit role.
const DefaultRole = RoleDevJunior

var roleLabels = map[Role]string{
	RoleDBA:        "Administrador de Base de Datos",
	RoleDBATrainee: "Becario DBA",
	RoleDevJunior:  "Desarrollador Junior",
	RoleDevSenior:  "Desarrollador Senior",
	RoleQAJunior:   "QA Junior",
	RoleQASenior:   "QA Senior",
}

func ParseRole(s string) (Role, error) {
	if s == "" {
		return DefaultRole, nil
	}
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return role, nil
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human readable name shown in the dashboard.
func (r Role) Label() string {
	return roleLabels[r]
}
