package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// ListStaffEmails devuelve los emails de usuarios staff activos (destinatarios de alertas).
	ListStaffEmails(ctx context.Context) ([]string, error)
}
