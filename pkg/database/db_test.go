package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDialector(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres", "mysql", "sqlserver"} {
		d, err := buildDialector(driver, "dsn")
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}
}

func TestBuildDialector_Unsupported(t *testing.T) {
	_, err := buildDialector("oracle", "dsn")
	assert.ErrorContains(t, err, `unsupported DB_DRIVER "oracle"`)
}
