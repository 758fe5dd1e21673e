package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerRegistrado(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	for _, p := range []string{"/api/auth/login", "/api/products/{id}/adjust-stock", "/api/movements", "/api/dashboard"} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.NotContains(t, doc.Paths["/api/movements/{id}"], "delete", "los movimientos no se eliminan")
}
