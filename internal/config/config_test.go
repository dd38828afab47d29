package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.IntegrationTimeout)
	assert.Equal(t, "LoanService", cfg.TOTPIssuer)
	assert.Equal(t, "0 0 * * *", cfg.ReportCron)
	assert.False(t, cfg.ZoomEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("INTEGRATION_TIMEOUT", "2500ms")
	t.Setenv("ZOOM_BASE_URL", "https://zoom.example.com/v2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 2500*time.Millisecond, cfg.IntegrationTimeout)
	assert.True(t, cfg.ZoomEnabled())
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("INTEGRATION_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "INTEGRATION_TIMEOUT")
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{DBUser: "loan", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "loans"}
	assert.Equal(t, "loan:pw@tcp(db:3306)/loans?charset=utf8mb4&parseTime=True&loc=UTC", cfg.MySQLDSN())

	cfg.DatabaseURL = "root@tcp(127.0.0.1:3306)/test"
	assert.Equal(t, "root@tcp(127.0.0.1:3306)/test", cfg.MySQLDSN())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOAN_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOAN_TEST_VALUE") })

	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path)
	assert.Equal(t, "from-dotenv", os.Getenv("LOAN_TEST_VALUE"))
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, log.DebugLevel, NewLogger("DEBUG").GetLevel())
	assert.Equal(t, log.InfoLevel, NewLogger("chatty").GetLevel())
}
