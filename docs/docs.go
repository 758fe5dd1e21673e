// Package docs expone la especificación OpenAPI de la API (Swagger 2.0) y la registra en swag.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

// SwaggerJSON documento servido en /docs.
//
//go:embed swagger.json
var SwaggerJSON []byte

// SwaggerInfo metadatos exportados para que main ajuste host o basePath en runtime.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Stock API",
	Description:      "Inventario: categorías, productos, movimientos de stock y métricas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  string(SwaggerJSON),
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
