package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"outlethr/internal/domain/payroll"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	Environment        string
	LogLevel           string
	RunMigrations      bool
	RunSeed            bool
	MigrationsDir      string
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	JobQueueSize       int
	RateLimitPerMinute int
	TrustedProxies     []string
	MetricsEnabled     bool
	Payroll            payroll.Settings
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "err", err)
	}

	defaults := payroll.DefaultSettings()
	settings := defaults
	settings.OTRateMultiplier = getEnvDecimal("PAYROLL_OT_MULTIPLIER", defaults.OTRateMultiplier)
	settings.RegularHoursPerDay = getEnvDecimal("PAYROLL_REGULAR_HOURS_PER_DAY", defaults.RegularHoursPerDay)
	settings.WorkingDaysPerMonth = getEnvInt("PAYROLL_WORKING_DAYS_PER_MONTH", defaults.WorkingDaysPerMonth)
	settings.UnresolvedHolidayChoice = getEnv("PAYROLL_UNRESOLVED_HOLIDAY_CHOICE", defaults.UnresolvedHolidayChoice)
	settings.LeaveProration = getEnv("PAYROLL_LEAVE_PRORATION", defaults.LeaveProration)
	settings.DefaultStatutory.TAPEnabled = getEnvBool("PAYROLL_TAP_ENABLED", defaults.DefaultStatutory.TAPEnabled)
	settings.DefaultStatutory.TAPEmployeeRate = getEnvDecimal("PAYROLL_TAP_EMPLOYEE_RATE", defaults.DefaultStatutory.TAPEmployeeRate)
	settings.DefaultStatutory.TAPEmployerRate = getEnvDecimal("PAYROLL_TAP_EMPLOYER_RATE", defaults.DefaultStatutory.TAPEmployerRate)
	settings.DefaultStatutory.SCPEnabled = getEnvBool("PAYROLL_SCP_ENABLED", defaults.DefaultStatutory.SCPEnabled)
	settings.DefaultStatutory.SCPEmployeeRate = getEnvDecimal("PAYROLL_SCP_EMPLOYEE_RATE", defaults.DefaultStatutory.SCPEmployeeRate)
	settings.DefaultStatutory.SCPEmployerRate = getEnvDecimal("PAYROLL_SCP_EMPLOYER_RATE", defaults.DefaultStatutory.SCPEmployerRate)

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", false),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		JobQueueSize:       getEnvInt("JOB_QUEUE_SIZE", 128),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		Payroll:            settings,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be positive")
	}
	if c.Environment == "production" {
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS must not be * in production")
			}
		}
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if err := c.Payroll.Validate(); err != nil {
		return fmt.Errorf("PAYROLL_* settings: %w", err)
	}
	return nil
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. Bare addresses are taken as
// single-host prefixes.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
