// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, c.Database.Driver)
	assert.Equal(t, "medassist.db", c.Database.URL)
	assert.True(t, c.Database.Migrate)
	assert.False(t, c.Redis.Enabled())
	assert.False(t, c.JWT.Enabled)
	assert.Equal(t, 6, c.Accounts.MinPasswordLength)
	assert.Equal(t, "caruntu.emanuel@gmail.com", c.Accounts.AdminEmail)
	assert.Equal(t, 5000, c.Query.MaxRows)
	assert.Equal(t, 10*time.Second, c.Query.Timeout)
	assert.Equal(t, []string{"*"}, c.CORS.AllowedOrigins)
	assert.Contains(t, c.CORS.AllowedMethods, "OPTIONS")
	assert.True(t, c.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: Postgres
  url: postgres://app@localhost/medassist
accounts:
  admin_email: " Root@Example.COM "
query:
  max_rows: 100
server:
  port: 7000
`)
	t.Setenv("PORT", "9090")
	t.Setenv("QUERY_TIMEOUT", "3s")
	t.Setenv("PUBLIC_BASE_URL", "https://rx.example.org")

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, c.Database.Driver)
	assert.Equal(t, "root@example.com", c.Accounts.AdminEmail)
	assert.Equal(t, 100, c.Query.MaxRows)
	assert.Equal(t, 3*time.Second, c.Query.Timeout)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "https://rx.example.org", c.App.PublicURL)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"unknown driver": `
database:
  driver: mysql
`,
		"wildcard with credentials": `
cors:
  allow_credentials: true
`,
		"bad admin email": `
accounts:
  admin_email: not-an-address
`,
		"zero row cap": `
query:
  max_rows: 0
`,
		"zero rate window": `
rate_limit:
  window: 0s
`,
		"generated keys in production": `
app:
  environment: production
jwt:
  enabled: true
  generate_keys: true
`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestServerConfig_Address(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", s.Address())
}
