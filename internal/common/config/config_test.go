package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("CRM_A", "va")
	out := resolveEnv([]byte("a: ${CRM_A:da}\nb: ${CRM_B:db}\nc: ${CRM_C}"))
	assert.Contains(t, string(out), "a: va")
	assert.Contains(t, string(out), "b: db")
	assert.Contains(t, string(out), "c: \n")
}

func TestLoadConfig_APIServer(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	require.NoError(t, os.Chdir(tmp))
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "configs"), 0o755))

	t.Setenv("CRM_DB_TYPE", "sqlite")
	yaml := `
database:
  type: ${CRM_DB_TYPE:postgres}
  dbname: ${CRM_DB_NAME:./data/crm.db}
jwt:
  secret_key: ${CRM_JWT_SECRET:0123456789abcdef0123456789abcdef}
redis:
  addr: ""
email:
  from_email: noreply@example.com
cors:
  allow_origins: ["http://localhost:3000"]
`
	file := filepath.Join(tmp, "configs", "apiserver.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, path, err := LoadConfig[APIServerConfig]("apiserver.yaml")
	require.NoError(t, err)
	realFile, _ := filepath.EvalSymlinks(file)
	realPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, realFile, realPath)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "./data/crm.db", cfg.Database.DBName)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWT.SecretKey)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)

	// defaults
	assert.Equal(t, 5234, cfg.HTTP.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, 10*time.Minute, cfg.Dropdown.CacheTTL)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, NotifierTypeDirect, cfg.Notifier.Type)
	assert.Equal(t, "nextcrm:notifications", cfg.Notifier.Stream)
	assert.Equal(t, "en", cfg.I18n.DefaultLang)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	tmp := t.TempDir()
	_, _, err := LoadConfig[APIServerConfig](filepath.Join(tmp, "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	pg := &DatabaseConfig{Type: "postgres", Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", pg.GetDSN())

	my := &DatabaseConfig{Type: "mysql", Host: "h", Port: 3306, User: "u", Password: "p", DBName: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	mem := &DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	assert.Equal(t, ":memory:", mem.GetDSN())

	assert.Equal(t, "", (&DatabaseConfig{Type: "oracle"}).GetDSN())
}

func TestDatabaseConfig_GetDSN_SQLiteCreatesDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "crm.sqlite")
	c := &DatabaseConfig{Type: "sqlite", DBName: dbPath}
	assert.Equal(t, dbPath, c.GetDSN())
	_, err := os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}
