package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stock-api/internal/domain"
)

// Códigos SQLSTATE usados por los repos y el TxRunner.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// constraintFields traduce nombres de constraint a campos de la API.
var constraintFields = map[string]string{
	"users_email_key":           "email",
	"users_email_lower_idx":     "email",
	"users_username_key":        "username",
	"categories_name_key":       "name",
	"products_code_key":         "code",
	"products_category_id_fkey": "category_id",
	"movements_product_id_fkey": "product_id",
	"movements_user_id_fkey":    "user_id",
}

func pgCode(err error) (string, *pgconn.PgError) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr
	}
	return "", nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	if code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isRetryable indica errores transitorios de concurrencia: la tx completa puede repetirse.
func isRetryable(err error) bool {
	switch code, _ := pgCode(err); code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// translateConstraint convierte violaciones de unicidad y de FK en errores de validación por campo.
// Un NUMERIC fuera de rango también es un error de validación.
// Cualquier otro error se devuelve sin tocar.
func translateConstraint(err error) error {
	code, pgErr := pgCode(err)
	if pgErr == nil {
		if isUniqueViolation(err) {
			return domain.NewUniqueError("non_field_errors", "registro duplicado")
		}
		return err
	}
	field := constraintFields[pgErr.ConstraintName]
	if field == "" {
		field = "non_field_errors"
	}
	switch code {
	case codeUniqueViolation:
		return domain.NewUniqueError(field, "ya existe un registro con este valor")
	case codeForeignKeyViolation:
		return domain.NewValidationError(field, "el registro referenciado no existe")
	case codeNumericOutOfRange:
		return domain.NewValidationError(field, "valor numérico fuera de rango")
	}
	return err
}

// orderBy resuelve el parámetro ordering ("campo" o "-campo") contra una lista blanca de columnas.
// Valores desconocidos usan def.
func orderBy(ordering string, allowed map[string]string, def string) string {
	desc := strings.HasPrefix(ordering, "-")
	col, ok := allowed[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return def
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
