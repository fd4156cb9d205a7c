package entity

import "time"

// Roles válidos para User.
const (
	RoleOwner      = "owner"
	RoleEmployee   = "employee"
	RoleSuperadmin = "superadmin"
)

// User representa un funcionario de una Company (el superadmin no tiene company: CompanyID = 0).
// PeriodStartedAt marca el inicio del período de vendas abierto; siempre hay exactamente uno.
type User struct {
	ID                  int64
	CompanyID           int64
	Name                string
	Email               string
	PasswordHash        string // bcrypt
	Role                string
	PeriodStartedAt     time.Time
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
}

// IsSuperadmin indica si el usuario administra la plataforma.
func (u *User) IsSuperadmin() bool { return u.Role == RoleSuperadmin }
