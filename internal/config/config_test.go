package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "ENVIRONMENT",
	"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME", "DB_LOG_LEVEL",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"CACHE_ENABLED", "CACHE_TODO_TTL", "CACHE_LIST_TTL",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	"CORS_ALLOWED_ORIGINS", "CORS_ALLOW_CREDENTIALS",
}

func setEnvVars(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func clearEnvVars(vars []string) {
	for _, k := range vars {
		os.Unsetenv(k)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Port != "3000" {
		t.Errorf("Expected default port '3000', got %s", config.Server.Port)
	}

	if config.Server.Host != "" {
		t.Errorf("Expected default host to be empty, got %s", config.Server.Host)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", config.Server.ShutdownTimeout)
	}

	if config.Database.Driver != DriverSQLite {
		t.Errorf("Expected default driver %q, got %q", DriverSQLite, config.Database.Driver)
	}

	if config.Database.Path != "todoApplication.db" {
		t.Errorf("Expected default DB path 'todoApplication.db', got %s", config.Database.Path)
	}

	if config.Database.MaxOpenConns != 1 {
		t.Errorf("Expected sqlite max open conns 1, got %d", config.Database.MaxOpenConns)
	}

	if config.Database.MaxIdleConns != 1 {
		t.Errorf("Expected sqlite max idle conns 1, got %d", config.Database.MaxIdleConns)
	}

	if config.Database.LogLevel != "warn" {
		t.Errorf("Expected default DB log level 'warn', got %s", config.Database.LogLevel)
	}

	if config.Redis.Port != "6379" {
		t.Errorf("Expected default Redis port '6379', got %s", config.Redis.Port)
	}

	if config.Cache.Enabled {
		t.Error("Expected cache to be disabled by default")
	}

	if config.Cache.TodoTTL != 30*time.Minute {
		t.Errorf("Expected default todo TTL 30m, got %v", config.Cache.TodoTTL)
	}

	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled by default")
	}

	if config.RateLimit.RequestsPerMin != 100 {
		t.Errorf("Expected default requests per minute 100, got %d", config.RateLimit.RequestsPerMin)
	}

	if len(config.CORS.AllowedOrigins) != 1 || config.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default CORS origins [*], got %v", config.CORS.AllowedOrigins)
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	clearEnvVars(allEnvVars)
	envVars := map[string]string{
		"HOST":                 "0.0.0.0",
		"PORT":                 "9000",
		"DB_PATH":              "/var/lib/todo/todo.db",
		"DB_LOG_LEVEL":         "INFO",
		"REDIS_HOST":           "redis.example.com",
		"REDIS_DB":             "2",
		"CACHE_ENABLED":        "true",
		"CACHE_LIST_TTL":       "90s",
		"RATE_LIMIT_ENABLED":   "true",
		"RATE_LIMIT_RPM":       "600",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
	}
	setEnvVars(envVars)
	defer clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.GetServerAddr() != "0.0.0.0:9000" {
		t.Errorf("Expected server addr '0.0.0.0:9000', got %s", config.GetServerAddr())
	}

	if config.GetDatabaseDSN() != "/var/lib/todo/todo.db" {
		t.Errorf("Expected sqlite DSN to be the DB path, got %s", config.GetDatabaseDSN())
	}

	if config.Database.LogLevel != "info" {
		t.Errorf("Expected log level to be lower-cased, got %s", config.Database.LogLevel)
	}

	if config.GetRedisAddr() != "redis.example.com:6379" {
		t.Errorf("Expected redis addr 'redis.example.com:6379', got %s", config.GetRedisAddr())
	}

	if config.Redis.DB != 2 {
		t.Errorf("Expected Redis DB 2, got %d", config.Redis.DB)
	}

	if !config.Cache.Enabled {
		t.Error("Expected cache to be enabled")
	}

	if config.Cache.ListTTL != 90*time.Second {
		t.Errorf("Expected list TTL 90s, got %v", config.Cache.ListTTL)
	}

	if !config.RateLimit.Enabled || config.RateLimit.RequestsPerMin != 600 {
		t.Errorf("Expected rate limit enabled at 600 rpm, got %+v", config.RateLimit)
	}

	expectedOrigins := []string{"https://a.example.com", "https://b.example.com"}
	if len(config.CORS.AllowedOrigins) != len(expectedOrigins) {
		t.Fatalf("Expected origins %v, got %v", expectedOrigins, config.CORS.AllowedOrigins)
	}
	for i, origin := range expectedOrigins {
		if config.CORS.AllowedOrigins[i] != origin {
			t.Errorf("Expected origin %s at %d, got %s", origin, i, config.CORS.AllowedOrigins[i])
		}
	}
}

func TestLoadConfig_PostgresDefaults(t *testing.T) {
	clearEnvVars(allEnvVars)
	setEnvVars(map[string]string{
		"DB_DRIVER":   "Postgres",
		"DB_HOST":     "db.example.com",
		"DB_PASSWORD": "secret",
	})
	defer clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.Database.Driver != DriverPostgres {
		t.Errorf("Expected driver %q, got %q", DriverPostgres, config.Database.Driver)
	}

	if config.Database.MaxOpenConns != 25 || config.Database.MaxIdleConns != 10 {
		t.Errorf("Expected postgres pool 25/10, got %d/%d",
			config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}

	expected := "host=db.example.com port=5432 user=postgres password=secret dbname=todo_application sslmode=disable"
	if config.GetDatabaseDSN() != expected {
		t.Errorf("Expected DSN %q, got %q", expected, config.GetDatabaseDSN())
	}
}

func TestConfigValidation_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		hasError bool
		errorMsg string
	}{
		{
			name: "Production sqlite needs no password",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
			},
			hasError: false,
		},
		{
			name: "Production postgres without password",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"DB_DRIVER":   "postgres",
			},
			hasError: true,
			errorMsg: "database password is required in production",
		},
		{
			name: "Development postgres without password",
			envVars: map[string]string{
				"DB_DRIVER": "postgres",
			},
			hasError: false,
		},
		{
			name: "Unknown driver",
			envVars: map[string]string{
				"DB_DRIVER": "mysql",
			},
			hasError: true,
			errorMsg: `unsupported database driver "mysql"`,
		},
		{
			name: "Production wildcard origin with credentials",
			envVars: map[string]string{
				"ENVIRONMENT":            "production",
				"CORS_ALLOW_CREDENTIALS": "true",
			},
			hasError: true,
			errorMsg: "wildcard CORS origin cannot allow credentials in production",
		},
		{
			name: "Production explicit origin with credentials",
			envVars: map[string]string{
				"ENVIRONMENT":            "production",
				"CORS_ALLOW_CREDENTIALS": "true",
				"CORS_ALLOWED_ORIGINS":   "https://todo.example.com",
			},
			hasError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(allEnvVars)
			setEnvVars(tt.envVars)
			defer clearEnvVars(allEnvVars)

			config, err := LoadConfig()

			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if err.Error() != tt.errorMsg {
					t.Errorf("Expected error '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				if config == nil {
					t.Error("Expected config to be loaded")
				}
			}
		})
	}
}

func TestLoadENV(t *testing.T) {
	key := "TODO_TEST_DOTENV_VALUE"
	os.Unsetenv(key)
	defer os.Unsetenv(key)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	if err := LoadENV(path); err != nil {
		t.Fatalf("Expected no error loading env file, got: %v", err)
	}

	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("Expected %s to be 'from-file', got '%s'", key, got)
	}
}

func TestLoadENV_DoesNotOverrideEnvironment(t *testing.T) {
	key := "TODO_TEST_DOTENV_OVERRIDE"
	os.Setenv(key, "from-env")
	defer os.Unsetenv(key)

	path := filepath.Join(t.TempDir(), "override.env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	if err := LoadENV(path); err != nil {
		t.Fatalf("Expected no error loading env file, got: %v", err)
	}

	if got := os.Getenv(key); got != "from-env" {
		t.Errorf("Expected existing value to win, got '%s'", got)
	}
}

func TestLoadENV_MissingFile(t *testing.T) {
	if err := LoadENV(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Expected missing env file to be ignored, got: %v", err)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, test := range tests {
		config := &Config{Server: ServerConfig{Environment: test.environment}}
		actual := config.IsProduction()
		if actual != test.expected {
			t.Errorf("For environment '%s', expected IsProduction() = %v, got %v",
				test.environment, test.expected, actual)
		}
	}
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	defaultValue := "default"

	os.Unsetenv(key)
	result := getEnv(key, defaultValue)
	if result != defaultValue {
		t.Errorf("Expected default value '%s', got '%s'", defaultValue, result)
	}

	expectedValue := "custom_value"
	os.Setenv(key, expectedValue)
	defer os.Unsetenv(key)

	result = getEnv(key, defaultValue)
	if result != expectedValue {
		t.Errorf("Expected env value '%s', got '%s'", expectedValue, result)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	key := "TEST_INT_VAR"
	defaultValue := 42

	os.Unsetenv(key)
	result := getEnvAsInt(key, defaultValue)
	if result != defaultValue {
		t.Errorf("Expected default value %d, got %d", defaultValue, result)
	}

	os.Setenv(key, "100")
	defer os.Unsetenv(key)

	result = getEnvAsInt(key, defaultValue)
	if result != 100 {
		t.Errorf("Expected env value 100, got %d", result)
	}

	os.Setenv(key, "not-a-number")
	result = getEnvAsInt(key, defaultValue)
	if result != defaultValue {
		t.Errorf("Expected default value %d for invalid int, got %d", defaultValue, result)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	key := "TEST_BOOL_VAR"
	defaultValue := true

	os.Unsetenv(key)
	result := getEnvAsBool(key, defaultValue)
	if result != defaultValue {
		t.Errorf("Expected default value %v, got %v", defaultValue, result)
	}

	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"invalid", defaultValue},
	}

	for _, tc := range testCases {
		os.Setenv(key, tc.value)
		result = getEnvAsBool(key, defaultValue)
		if result != tc.expected {
			t.Errorf("For value '%s', expected %v, got %v", tc.value, tc.expected, result)
		}
	}

	os.Unsetenv(key)
}

func TestGetEnvAsDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	defaultValue := 30 * time.Second

	os.Unsetenv(key)
	result := getEnvAsDuration(key, defaultValue)
	if result != defaultValue {
		t.Errorf("Expected default value %v, got %v", defaultValue, result)
	}

	os.Setenv(key, "5m")
	defer os.Unsetenv(key)

	result = getEnvAsDuration(key, defaultValue)
	if result != 5*time.Minute {
		t.Errorf("Expected env value 5m, got %v", result)
	}

	os.Setenv(key, "not-a-duration")
	result = getEnvAsDuration(key, defaultValue)
	if result != defaultValue {
		t.Errorf("Expected default value %v for invalid duration, got %v", defaultValue, result)
	}
}

func TestGetEnvAsList(t *testing.T) {
	key := "TEST_LIST_VAR"
	defaultValue := []string{"fallback"}

	os.Unsetenv(key)
	if result := getEnvAsList(key, defaultValue); len(result) != 1 || result[0] != "fallback" {
		t.Errorf("Expected default list, got %v", result)
	}

	os.Setenv(key, " , ,")
	defer os.Unsetenv(key)
	if result := getEnvAsList(key, defaultValue); len(result) != 1 || result[0] != "fallback" {
		t.Errorf("Expected default list for blank items, got %v", result)
	}

	os.Setenv(key, "a,b")
	if result := getEnvAsList(key, defaultValue); len(result) != 2 || result[1] != "b" {
		t.Errorf("Expected [a b], got %v", result)
	}
}

func BenchmarkLoadConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = LoadConfig()
	}
}

func BenchmarkGetEnvAsDuration(b *testing.B) {
	os.Setenv("BENCH_DURATION", "5m")
	defer os.Unsetenv("BENCH_DURATION")
	for i := 0; i < b.N; i++ {
		_ = getEnvAsDuration("BENCH_DURATION", time.Second)
	}
}
