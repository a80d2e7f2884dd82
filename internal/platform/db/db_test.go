package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
)

func TestDialector(t *testing.T) {
	cases := []struct {
		driver cfgpkg.DBDriver
		name   string
	}{
		{"", "postgres"},
		{cfgpkg.DBDriverPostgres, "postgres"},
		{cfgpkg.DBDriverMySQL, "mysql"},
		{cfgpkg.DBDriverSQLite, "sqlite"},
	}
	for _, tc := range cases {
		t.Run(string(tc.driver), func(t *testing.T) {
			d, err := Dialector(tc.driver, "dsn")
			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())
		})
	}

	_, err := Dialector("oracle", "dsn")
	require.Error(t, err)
}
