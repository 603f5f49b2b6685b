package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/GoArmGo/geeklib/internal/database/client"
	"github.com/GoArmGo/geeklib/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// PostgresDSNEnv — переменная с DSN тестовой postgres-базы (URL или key/value).
const PostgresDSNEnv = "TEST_POSTGRES_DSN"

// OpenTestClient открывает мигрированную in-memory sqlite базу, свою для каждого теста.
// Клиент закрывается через t.Cleanup.
func OpenTestClient(t *testing.T) *client.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    "file:" + name + "?mode=memory&cache=shared",
		Name:   name,
	}

	c, err := client.NewClient(cfg, logger.NewNop())
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.MigrateUp(), "migrate test db")
	return c
}

// OpenPostgresTestClient открывает мигрированную postgres базу из TEST_POSTGRES_DSN
// с обычным многосоединительным пулом. Без переменной тест пропускается.
// База общая для всех тестов: данные нужно создавать с уникальными именами.
func OpenPostgresTestClient(t *testing.T) *client.Client {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", PostgresDSNEnv)
	}

	cfg := config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		URL:          dsn,
		Name:         "geeklib_test",
		MaxOpenConns: 8,
	}

	c, err := client.NewClient(cfg, logger.NewNop())
	require.NoError(t, err, "open postgres test db")
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.MigrateUp(), "migrate postgres test db")
	return c
}

// UniqueName добавляет к prefix случайный суффикс.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
