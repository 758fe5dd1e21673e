package postgres

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/migrations"
)

func TestSourceVersions_OrdenaEIgnoraOtrosArchivos(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_indices.up.sql": {Data: []byte("CREATE INDEX x ON t (c);")},
		"0001_init.up.sql":    {Data: []byte("CREATE TABLE t (c int);")},
		"0001_init.down.sql":  {Data: []byte("DROP TABLE t;")},
		"README.md":           {Data: []byte("ignorado")},
		"0003_datos.sql":      {Data: []byte("sin sufijo up/down, ignorado")},
	}
	versions, err := SourceVersions(fsys)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, versions)
}

func TestSourceVersions_SinUpFalla(t *testing.T) {
	_, err := SourceVersions(fstest.MapFS{"0001_init.down.sql": {Data: []byte("DROP TABLE t;")}})
	assert.Error(t, err)
}

func TestSourceVersions_VersionDuplicadaFalla(t *testing.T) {
	_, err := SourceVersions(fstest.MapFS{
		"0001_init.up.sql": {Data: []byte("a")},
		"0001_otro.up.sql": {Data: []byte("b")},
	})
	assert.Error(t, err)
}

func TestCountBetween(t *testing.T) {
	versions := []uint{1, 2, 5}
	assert.Equal(t, 3, countBetween(versions, 0, 5))
	assert.Equal(t, 1, countBetween(versions, 2, 5))
	assert.Zero(t, countBetween(versions, 5, 5))
}

func TestMigracionesEmbebidas(t *testing.T) {
	versions, err := SourceVersions(migrations.FS)
	require.NoError(t, err)
	require.Equal(t, []uint{1}, versions)

	src, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer src.Close()

	up, _, err := src.ReadUp(1)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	up.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS movements")

	down, _, err := src.ReadDown(1)
	require.NoError(t, err)
	down.Close()
}
