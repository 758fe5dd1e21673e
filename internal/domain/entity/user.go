package entity

import (
	"strings"
	"time"
)

// User representa un usuario del sistema. El email es el identificador de login.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	IsStaff      bool   // recibe alertas de stock bajo
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName devuelve "Nombre Apellido" sin espacios sobrantes.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName devuelve el nombre completo o, si está vacío, el username.
func (u *User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Username
}
