package sqlbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sql2ldap/sql2ldap/pkg/config"
)

func TestDSNWithTCPHostAndPort(t *testing.T) {
	d := dsn(config.SQLConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "gateway",
		Pass:     "secret",
		Database: "directory",
	})
	assert.Contains(t, d, "db.internal:5432")
	assert.Contains(t, d, "/directory")
}

func TestDSNWithUnixSocket(t *testing.T) {
	d := dsn(config.SQLConfig{
		Host:     "unix:///var/run/postgresql/.s.PGSQL.5432",
		User:     "gateway",
		Pass:     "secret",
		Database: "directory",
	})
	assert.NotContains(t, d, "unix://")
	assert.Contains(t, d, "/var/run/postgresql/.s.PGSQL.5432")
}
