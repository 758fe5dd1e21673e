package domain

import (
	"errors"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// ValidationError agrupa errores de validación por campo (field -> mensajes).
// Kind es ErrInvalidInput o ErrDuplicate; errors.Is funciona contra ambos.
type ValidationError struct {
	Kind   error
	Fields map[string][]string
}

// NewValidationError crea un error de validación con un primer campo.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{Kind: ErrInvalidInput, Fields: map[string][]string{}}
	v.Add(field, message)
	return v
}

// NewUniqueError crea el error de violación de unicidad para un campo.
func NewUniqueError(field, message string) *ValidationError {
	v := NewValidationError(field, message)
	v.Kind = ErrDuplicate
	return v
}

// Add agrega un mensaje al campo indicado.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors indica si hay al menos un campo con error.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// OrNil devuelve nil cuando no hay errores, para usar como `return v.OrNil()`.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], ", "))
	}
	return "validación: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Unwrap() error {
	if v.Kind == nil {
		return ErrInvalidInput
	}
	return v.Kind
}
