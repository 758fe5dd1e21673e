package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/shopspring/decimal"
)

// validate aplica los tags `validate:` de los DTO. Los nombres de campo salen del tag json
// y decimal.Decimal se compara como número.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validateStruct devuelve *domain.ValidationError con un mensaje por campo inválido.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &domain.ValidationError{Kind: domain.ErrInvalidInput}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "este campo es obligatorio"
	case "email":
		return "email inválido"
	case "uuid":
		return "identificador inválido"
	case "gte":
		return "debe ser mayor o igual a " + fe.Param()
	case "min":
		return "longitud mínima " + fe.Param()
	case "max":
		return "longitud máxima " + fe.Param()
	case "oneof":
		return "valor no permitido; opciones: " + fe.Param()
	}
	return "valor inválido"
}

// bindJSON parsea el body JSON y valida el DTO.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return validateStruct(out)
}

// pathID lee :id; un identificador que no es UUID no puede existir, así que es 404.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrNotFound
	}
	return id, nil
}
