// Package config loads and validates the gateway's TOML configuration file.
package config

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level shape of the configuration file.
type Config struct {
	Server   ServerConfig      `toml:"server"`
	SQL      SQLConfig         `toml:"sql"`
	LDAP     LDAPConfig        `toml:"ldap"`
	Mappings map[string]string `toml:"mappings"`
}

// ServerConfig controls the LDAP listener and ambient behavior.
type ServerConfig struct {
	IP   string `toml:"ip"`
	Port uint16 `toml:"port"`
	// Threads defaults to runtime.NumCPU() and is passed to
	// runtime.GOMAXPROCS at startup, the Go analog of the original's
	// num_cpus::get()-sized worker pool.
	Threads int  `toml:"threads"`
	Debug   bool `toml:"debug"`
}

// SQLConfig describes the backing PostgreSQL connection.
type SQLConfig struct {
	Backend  string `toml:"backend"`
	Host     string `toml:"host"`
	Port     uint16 `toml:"port"`
	User     string `toml:"user"`
	Pass     string `toml:"pass"`
	Database string `toml:"database"`
	Table    string `toml:"table"`
}

// Socket returns the filesystem path of a unix-domain-socket host, and
// false if Host names a TCP endpoint instead.
func (s SQLConfig) Socket() (string, bool) {
	const prefix = "unix://"
	if strings.HasPrefix(s.Host, prefix) {
		return s.Host[len(prefix):], true
	}
	return "", false
}

// LDAPConfig names the single naming context this gateway serves.
type LDAPConfig struct {
	Suffix string `toml:"suffix"`
}

const (
	defaultServerIP   = "0.0.0.0"
	defaultServerPort = 389
)

// Load reads, parses, and validates the configuration file at path.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			IP:      defaultServerIP,
			Port:    defaultServerPort,
			Threads: runtime.NumCPU(),
		},
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.EqualFold(c.SQL.Backend, "postgresql") {
		return fmt.Errorf("sql.backend: unsupported backend %q (only \"postgresql\" is implemented)", c.SQL.Backend)
	}
	if c.SQL.Table == "" {
		return fmt.Errorf("sql.table: must not be empty")
	}
	if c.LDAP.Suffix == "" {
		return fmt.Errorf("ldap.suffix: must not be empty")
	}
	if err := validateSuffix(c.LDAP.Suffix); err != nil {
		return fmt.Errorf("ldap.suffix: %w", err)
	}
	if len(c.Mappings) == 0 {
		return fmt.Errorf("mappings: must not be empty")
	}
	if _, ok := lookupFold(c.Mappings, "cn"); !ok {
		return fmt.Errorf("mappings: must include an entry for \"cn\"")
	}
	return nil
}

// validateSuffix requires a leading "dc=" or "ou=" RDN followed by at least
// one more RDN ("<dc|ou>=<value>,..."), resolving Open Question #4:
// malformed configuration fails fast at load time rather than producing
// silent misclassifications at query time.
func validateSuffix(suffix string) error {
	lower := strings.ToLower(suffix)
	eq := strings.IndexByte(lower, '=')
	if eq <= 0 {
		return fmt.Errorf("must start with a \"<type>=<value>\" RDN, got %q", suffix)
	}
	typ := lower[:eq]
	if typ != "dc" && typ != "ou" {
		return fmt.Errorf("leading RDN type must be \"dc\" or \"ou\", got %q", typ)
	}
	if comma := strings.IndexByte(lower, ','); comma < eq {
		return fmt.Errorf("must have the form \"<type>=<value>,...\", got %q", suffix)
	}
	return nil
}

func lookupFold(m map[string]string, key string) (string, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Print logs a summary of the loaded configuration, omitting the SQL
// password.
func (c *Config) Print() {
	slog.Info("configuration loaded",
		"server.ip", c.Server.IP,
		"server.port", c.Server.Port,
		"server.threads", c.Server.Threads,
		"server.debug", c.Server.Debug,
		"sql.backend", c.SQL.Backend,
		"sql.host", c.SQL.Host,
		"sql.database", c.SQL.Database,
		"sql.table", c.SQL.Table,
		"ldap.suffix", c.LDAP.Suffix,
		"mappings.count", len(c.Mappings),
	)
}
