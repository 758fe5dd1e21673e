package entity

import "time"

// Category agrupa productos. Borrar una categoría borra sus productos y, en cascada, sus movimientos.
type Category struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
