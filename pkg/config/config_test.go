package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sql2ldap.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validConfig = `
[server]
ip = "127.0.0.1"
port = 1389

[sql]
backend = "postgresql"
host = "localhost"
port = 5432
user = "gateway"
pass = "secret"
database = "directory"
table = "people"

[ldap]
suffix = "dc=example,dc=com"

[mappings]
cn = "c_name"
mail = "c_mail"
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.IP)
	assert.Equal(t, uint16(1389), cfg.Server.Port)
	assert.Equal(t, "dc=example,dc=com", cfg.LDAP.Suffix)
	assert.Equal(t, "c_name", cfg.Mappings["cn"])
}

func TestLoadAppliesServerDefaults(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), cfg.Server.Threads)
	assert.False(t, cfg.Server.Debug)
}

func TestLoadRejectsNonPostgresBackend(t *testing.T) {
	path := writeConfig(t, `
[sql]
backend = "mysql"
table = "people"
[ldap]
suffix = "dc=example,dc=com"
[mappings]
cn = "c_name"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "sql.backend")
}

func TestLoadRejectsMissingCNMapping(t *testing.T) {
	path := writeConfig(t, `
[sql]
backend = "postgresql"
table = "people"
[ldap]
suffix = "dc=example,dc=com"
[mappings]
mail = "c_mail"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "mappings")
}

func TestLoadRejectsBadSuffixRDNType(t *testing.T) {
	path := writeConfig(t, `
[sql]
backend = "postgresql"
table = "people"
[ldap]
suffix = "o=example"
[mappings]
cn = "c_name"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "ldap.suffix")
}

func TestSQLConfigSocket(t *testing.T) {
	tcp := SQLConfig{Host: "localhost"}
	_, ok := tcp.Socket()
	assert.False(t, ok)

	unix := SQLConfig{Host: "unix:///var/run/postgresql/.s.PGSQL.5432"}
	path, ok := unix.Socket()
	require.True(t, ok)
	assert.Equal(t, "/var/run/postgresql/.s.PGSQL.5432", path)
}
